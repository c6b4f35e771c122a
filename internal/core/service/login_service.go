package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
	"github.com/userdesk/user-portal/pkg/mask"
)

// LoginService validates credentials against the credential store.
type LoginService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewLoginService(repo ports.UserRepository, log zerolog.Logger) *LoginService {
	return &LoginService{repo: repo, log: log}
}

// Authenticate looks up the account and verifies the password hash. Unknown
// email and wrong password both return domain.ErrInvalidCredentials so the
// response gives no oracle on which of the two occurred.
func (s *LoginService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			s.log.Warn().Str("email", mask.Anonymize(email)).Msg("login failed")
			return nil, domain.ErrInvalidCredentials
		}
		s.log.Error().Err(err).Str("email", mask.Anonymize(email)).Msg("login lookup failed")
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Warn().Str("email", mask.Anonymize(email)).Msg("login failed")
		return nil, domain.ErrInvalidCredentials
	}

	s.log.Debug().Str("email", mask.Anonymize(email)).Msg("login succeeded")
	return user, nil
}
