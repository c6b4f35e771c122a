package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
)

type stubUserRepo struct {
	users   map[string]*domain.User
	findErr error
	delErr  error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = user.Email
	}
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Delete(_ context.Context, email string) error {
	if r.delErr != nil {
		return r.delErr
	}
	if _, ok := r.users[email]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, email)
	return nil
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func TestAccountService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	user, err := svc.Register(context.Background(), ports.RegistrationInput{Email: "alice@example.com", Password: "pass123"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil {
		t.Fatalf("expected user, got nil")
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role %q, got %q", domain.RoleUser, user.Role)
	}
}

func TestAccountService_Register_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	if _, err := svc.Register(context.Background(), ports.RegistrationInput{Email: "", Password: "pass"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegistrationInput{Email: "a@x.com", Password: ""}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegistrationInput{Email: "a@x.com", Password: "pw", Role: "superuser"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad role, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatalf("no account should be persisted on validation failure")
	}
}

func TestAccountService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	if _, err := svc.Register(context.Background(), ports.RegistrationInput{Email: "bob@example.com", Password: "pw1"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegistrationInput{Email: "bob@example.com", Password: "pw2"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected exactly one persisted account, got %d", len(repo.users))
	}
}

func TestAccountService_Register_CaseInsensitiveEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	if _, err := svc.Register(context.Background(), ports.RegistrationInput{Email: "Carol@Example.COM", Password: "pw"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegistrationInput{Email: "carol@example.com", Password: "pw"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists for case variant, got %v", err)
	}
}

func TestAccountService_DeleteByEmail_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	_, _ = svc.Register(context.Background(), ports.RegistrationInput{Email: "dave@example.com", Password: "pw"})

	if err := svc.DeleteByEmail(context.Background(), "dave@example.com"); err != nil {
		t.Fatalf("DeleteByEmail returned error: %v", err)
	}
	if _, ok := repo.users["dave@example.com"]; ok {
		t.Fatalf("account still present after deletion")
	}
}

func TestAccountService_DeleteByEmail_AdminRefused(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	_, _ = svc.Register(context.Background(), ports.RegistrationInput{Email: "root@example.com", Password: "pw", Role: domain.RoleAdmin})

	if err := svc.DeleteByEmail(context.Background(), "root@example.com"); err != domain.ErrAdminUndeletable {
		t.Fatalf("expected ErrAdminUndeletable, got %v", err)
	}
	if _, ok := repo.users["root@example.com"]; !ok {
		t.Fatalf("admin account must not be deleted")
	}
}

func TestAccountService_DeleteByEmail_NotFound(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	if err := svc.DeleteByEmail(context.Background(), "ghost@example.com"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_DeleteByEmail_LookupFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("connection reset")
	svc := NewAccountService(repo, zerolog.Nop())

	err := svc.DeleteByEmail(context.Background(), "x@example.com")
	if err == nil || err == domain.ErrUserNotFound {
		t.Fatalf("expected unexpected error to propagate, got %v", err)
	}
}

func TestAccountService_ListUsers_Ordered(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	_, _ = svc.Register(context.Background(), ports.RegistrationInput{Email: "zoe@example.com", Password: "pw"})
	_, _ = svc.Register(context.Background(), ports.RegistrationInput{Email: "amy@example.com", Password: "pw"})

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(users) != 2 || users[0].Email != "amy@example.com" || users[1].Email != "zoe@example.com" {
		t.Fatalf("unexpected listing: %+v", users)
	}
}

// Full lifecycle: register, login, wrong password, delete, delete again.
func TestAccountLifecycle_Scenario(t *testing.T) {
	repo := newStubUserRepo()
	accounts := NewAccountService(repo, zerolog.Nop())
	login := NewLoginService(repo, zerolog.Nop())

	if _, err := accounts.Register(context.Background(), ports.RegistrationInput{Email: "a@x.com", Password: "pw1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := login.Authenticate(context.Background(), "a@x.com", "pw1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := login.Authenticate(context.Background(), "a@x.com", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := accounts.DeleteByEmail(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := accounts.DeleteByEmail(context.Background(), "a@x.com"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}
