package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-portal/internal/api/session"
	"github.com/userdesk/user-portal/internal/core/domain"
)

func sessionCookie(t *testing.T, m *session.Manager, user *domain.User) *http.Cookie {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)
	if err := m.Issue(c, user); err != nil {
		t.Fatalf("issue: %v", err)
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	t.Fatalf("cookie not set")
	return nil
}

func TestSession_ValidCookieSetsIdentity(t *testing.T) {
	m := session.NewManager("secret", time.Hour, false)
	cookie := sessionCookie(t, m, &domain.User{Email: "alice@example.com", Role: domain.RoleAdmin})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/homepage", nil)
	req.AddCookie(cookie)
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := Session(m)(func(c echo.Context) error {
		called = true
		if c.Get("email") != "alice@example.com" {
			t.Fatalf("email not set")
		}
		if c.Get("role") != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})(c)

	if err != nil || !called {
		t.Fatalf("middleware failed (called=%v err=%v)", called, err)
	}
}

func TestSession_NoCookieStaysAnonymous(t *testing.T) {
	m := session.NewManager("secret", time.Hour, false)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/homepage", nil), httptest.NewRecorder())

	err := Session(m)(func(c echo.Context) error {
		if c.Get("email") != nil || c.Get("role") != nil {
			t.Fatalf("anonymous request must carry no identity")
		}
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
}

func TestSession_TamperedCookieStaysAnonymous(t *testing.T) {
	m := session.NewManager("secret", time.Hour, false)
	cookie := sessionCookie(t, m, &domain.User{Email: "bob@example.com", Role: domain.RoleUser})
	cookie.Value = cookie.Value + "tampered"

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/homepage", nil)
	req.AddCookie(cookie)
	c := e.NewContext(req, httptest.NewRecorder())

	err := Session(m)(func(c echo.Context) error {
		if c.Get("role") != nil {
			t.Fatalf("tampered cookie must not authenticate")
		}
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
}
