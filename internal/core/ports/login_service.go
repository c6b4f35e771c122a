package ports

import (
	"context"

	"github.com/userdesk/user-portal/internal/core/domain"
)

// LoginService validates submitted credentials against the credential store.
// Unknown email and wrong password are both reported as
// domain.ErrInvalidCredentials so callers cannot distinguish the two.
type LoginService interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}
