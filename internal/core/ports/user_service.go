package ports

import (
	"context"

	"github.com/userdesk/user-portal/internal/core/domain"
)

// RegistrationInput is the DTO passed from the transport layer to UserService.
// The transport layer is responsible for format validation; the service only
// normalizes and persists.
type RegistrationInput struct {
	Email    string
	Password string
	Role     string // empty defaults to domain.RoleUser
}

// UserService defines the account lifecycle use cases.
type UserService interface {
	// Register creates an account with a freshly computed password hash.
	// Returns domain.ErrUserExists when the email is already taken.
	Register(ctx context.Context, input RegistrationInput) (*domain.User, error)

	// DeleteByEmail removes the account with the given email.
	// Returns domain.ErrUserNotFound when no such account exists and
	// domain.ErrAdminUndeletable when the target carries the admin role.
	DeleteByEmail(ctx context.Context, email string) error

	// ListUsers returns all accounts, ordered by email.
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
