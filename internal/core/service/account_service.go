package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
	"github.com/userdesk/user-portal/pkg/mask"
)

// AccountService implements the account lifecycle: registration, role-gated
// deletion, and listing.
type AccountService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewAccountService(repo ports.UserRepository, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, log: log}
}

func (s *AccountService) Register(ctx context.Context, input ports.RegistrationInput) (*domain.User, error) {
	email := NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidCredentials
	}

	// The raw password lives only on this stack frame; only the hash is kept.
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if err == domain.ErrUserExists {
			s.log.Warn().Str("email", mask.Anonymize(email)).Msg("registration rejected: email already registered")
		} else {
			s.log.Error().Err(err).Str("email", mask.Anonymize(email)).Msg("registration failed")
		}
		return nil, err
	}

	s.log.Debug().Str("email", mask.Anonymize(email)).Msg("user registered")
	return created, nil
}

func (s *AccountService) DeleteByEmail(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			s.log.Warn().Str("email", mask.Anonymize(email)).Msg("user not found for deletion")
		} else {
			s.log.Error().Err(err).Str("email", mask.Anonymize(email)).Msg("deletion lookup failed")
		}
		return err
	}

	// Admin accounts are never deletable through this path: guards against
	// accidental or malicious lockout.
	if user.IsAdmin() {
		s.log.Warn().Str("email", mask.Anonymize(email)).Msg("admin cannot be deleted")
		return domain.ErrAdminUndeletable
	}

	if err := s.repo.Delete(ctx, user.Email); err != nil {
		s.log.Error().Err(err).Str("email", mask.Anonymize(email)).Msg("deletion failed")
		return err
	}

	s.log.Debug().Str("email", mask.Anonymize(email)).Msg("user deleted")
	return nil
}

func (s *AccountService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.FindAll(ctx)
}

// NormalizeEmail lowercases and trims an email so lookups and uniqueness are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
