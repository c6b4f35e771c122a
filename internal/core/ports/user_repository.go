package ports

import (
	"context"

	"github.com/userdesk/user-portal/internal/core/domain"
)

// UserRepository defines the interface for account persistence.
// Create must be atomic with respect to email uniqueness: a concurrent insert
// of the same email yields domain.ErrUserExists for exactly one caller.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, email string) error
	FindAll(ctx context.Context) ([]*domain.User, error)
}
