package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userdesk/user-portal/internal/api/metrics"
	"github.com/userdesk/user-portal/internal/api/session"
	"github.com/userdesk/user-portal/internal/core/ports"
	"github.com/userdesk/user-portal/pkg/mask"
)

// AuthHandler serves the login page and the login/logout flows.
type AuthHandler struct {
	login    ports.LoginService
	sessions *session.Manager
	log      zerolog.Logger
}

func NewAuthHandler(login ports.LoginService, sessions *session.Manager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{login: login, sessions: sessions, log: log}
}

type loginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// LoginPage renders the login form. The error banner is driven by the
// ?error=true query parameter set after a failed submit.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	h.log.Debug().Msg("showing login page")
	return c.Render(http.StatusOK, "login", map[string]any{
		"Error": c.QueryParam("error") == "true",
		"CSRF":  csrfToken(c),
	})
}

// Login validates submitted credentials and establishes a session. Every
// failure redirects to /login?error=true without distinguishing unknown user
// from wrong password. Success always redirects to /homepage, ignoring any
// originally requested URL; this always-redirect behavior is a deliberate
// product decision, flagged for review in DESIGN.md.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return c.Redirect(http.StatusFound, "/login?error=true")
	}

	user, err := h.login.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return c.Redirect(http.StatusFound, "/login?error=true")
	}

	if err := h.sessions.Issue(c, user); err != nil {
		h.log.Error().Err(err).Str("email", mask.Anonymize(user.Email)).Msg("session issue failed")
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return c.Redirect(http.StatusFound, "/login?error=true")
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.Redirect(http.StatusFound, "/homepage")
}

// Logout destroys the session and returns to the login page. The route is
// open to everyone: logging out never requires being logged in.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Clear(c)
	h.log.Debug().Msg("session terminated")
	return c.Redirect(http.StatusFound, "/login")
}

// csrfToken returns the per-request CSRF token injected by the CSRF
// middleware, for embedding in form templates.
func csrfToken(c echo.Context) string {
	token, _ := c.Get("csrf").(string)
	return token
}
