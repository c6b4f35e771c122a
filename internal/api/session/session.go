// Package session manages the browser session: a signed JWT carried in an
// HttpOnly cookie, bound to the account's email and role.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-portal/internal/core/domain"
)

const CookieName = "portal_session"

var ErrNoSession = errors.New("no session")

// Identity is the authenticated principal carried by a valid session.
type Identity struct {
	Email string
	Role  string
}

// Manager issues and parses session cookies.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Issue establishes a fresh session for the user, replacing any cookie the
// browser held before.
func (m *Manager) Issue(c echo.Context, user *domain.User) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.Email,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	c.SetCookie(m.cookie(signed, m.ttl))
	return nil
}

// Parse extracts the identity from the request's session cookie. Absent,
// expired, or tampered cookies yield ErrNoSession: the request stays
// anonymous and the policy layer decides what that means.
func (m *Manager) Parse(c echo.Context) (*Identity, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrNoSession
	}

	email, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if email == "" || role == "" {
		return nil, ErrNoSession
	}

	return &Identity{Email: email, Role: role}, nil
}

// Clear destroys the session by expiring the cookie.
func (m *Manager) Clear(c echo.Context) {
	c.SetCookie(m.cookie("", -time.Hour))
}

func (m *Manager) cookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
