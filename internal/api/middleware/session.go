package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/userdesk/user-portal/internal/api/session"
)

// Session resolves the request's session cookie and injects the identity into
// context. It never rejects: anonymous requests pass through untouched and
// the access policy decides whether that is acceptable for the path.
func Session(manager *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, err := manager.Parse(c); err == nil {
				c.Set("email", id.Email)
				c.Set("role", id.Role)
			}
			return next(c)
		}
	}
}
