package handler

import (
	"errors"
	"html"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userdesk/user-portal/internal/api/metrics"
	"github.com/userdesk/user-portal/internal/core/domain"
	"github.com/userdesk/user-portal/internal/core/ports"
	"github.com/userdesk/user-portal/pkg/mask"
)

// UserHandler serves the registration flow, the landing pages, and the
// admin-only user-management pages.
type UserHandler struct {
	users ports.UserService
	log   zerolog.Logger
}

func NewUserHandler(users ports.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type registerRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

type deleteRequest struct {
	Email string `form:"email"`
}

// RegisterForm renders the empty registration form.
func (h *UserHandler) RegisterForm(c echo.Context) error {
	h.log.Debug().Msg("showing registration form")
	return c.Render(http.StatusOK, "register_form", map[string]any{
		"CSRF":   csrfToken(c),
		"Email":  "",
		"Errors": nil,
	})
}

// Register processes a registration submission. Malformed input re-renders
// the form with field errors and touches no state; a duplicate email yields
// a specific, actionable message; anything else yields a generic error page
// with the detail going to the logs only.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("validation_error").Inc()
		return c.Render(http.StatusBadRequest, "register_form", map[string]any{
			"CSRF":   csrfToken(c),
			"Email":  "",
			"Errors": ValidationErrors{{Field: "form", Message: "invalid form submission"}},
		})
	}

	h.log.Debug().Str("email", mask.Anonymize(req.Email)).Msg("processing registration")

	if err := c.Validate(&req); err != nil {
		var ve ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		h.log.Warn().Str("email", mask.Anonymize(req.Email)).Msg("registration failed validation")
		metrics.RegistrationsTotal.WithLabelValues("validation_error").Inc()
		return c.Render(http.StatusBadRequest, "register_form", map[string]any{
			"CSRF":   csrfToken(c),
			"Email":  req.Email,
			"Errors": ve,
		})
	}

	_, err := h.users.Register(c.Request().Context(), ports.RegistrationInput{
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		h.log.Debug().Str("email", mask.Anonymize(req.Email)).Msg("user registered")
		metrics.RegistrationsTotal.WithLabelValues("success").Inc()
		return c.Render(http.StatusOK, "register_success", nil)

	case errors.Is(err, domain.ErrUserExists):
		h.log.Warn().Str("email", mask.Anonymize(req.Email)).Msg("registration rejected: email already registered")
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return c.Render(http.StatusConflict, "register_error", map[string]any{
			"Error": "Email already registered",
		})

	default:
		h.log.Error().Err(err).Str("email", mask.Anonymize(req.Email)).Msg("unexpected error during registration")
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return c.Render(http.StatusInternalServerError, "register_error", map[string]any{
			"Error": "An unexpected error occurred",
		})
	}
}

// Homepage renders the landing page every successful login redirects to.
func (h *UserHandler) Homepage(c echo.Context) error {
	email, _ := c.Get("email").(string)
	return c.Render(http.StatusOK, "homepage", map[string]any{
		"Email": email,
		"CSRF":  csrfToken(c),
	})
}

// AdminPage renders the admin landing page.
func (h *UserHandler) AdminPage(c echo.Context) error {
	h.log.Debug().Msg("admin accessed admin page")
	return c.Render(http.StatusOK, "admin_page", nil)
}

// UsersPage lists all registered accounts.
func (h *UserHandler) UsersPage(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	h.log.Debug().Int("count", len(users)).Msg("showing users list")
	return c.Render(http.StatusOK, "users_list", map[string]any{"Users": users})
}

// DeleteForm renders the deletion form together with the account listing.
func (h *UserHandler) DeleteForm(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	h.log.Debug().Msg("showing user deletion form")
	return c.Render(http.StatusOK, "delete_form", map[string]any{
		"CSRF":  csrfToken(c),
		"Users": users,
	})
}

// Delete removes the account named in the form. The submitted email is
// HTML-escaped before it is used for lookup or echoed back. Admin accounts
// are refused; a missing account echoes the sanitized email back for
// operator confirmation.
func (h *UserHandler) Delete(c echo.Context) error {
	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		metrics.DeletionsTotal.WithLabelValues("error").Inc()
		return c.Render(http.StatusBadRequest, "delete_error", map[string]any{
			"Error": "An error occurred while deleting the user.",
		})
	}

	sanitized := html.EscapeString(strings.TrimSpace(req.Email))
	h.log.Debug().Msg("processing user deletion")

	err := h.users.DeleteByEmail(c.Request().Context(), sanitized)
	switch {
	case err == nil:
		h.log.Debug().Str("email", mask.Anonymize(sanitized)).Msg("user deleted")
		metrics.DeletionsTotal.WithLabelValues("success").Inc()
		return c.Render(http.StatusOK, "delete_success", nil)

	case errors.Is(err, domain.ErrAdminUndeletable):
		h.log.Warn().Msg("admin cannot be deleted")
		metrics.DeletionsTotal.WithLabelValues("admin_refused").Inc()
		return c.Render(http.StatusForbidden, "admin_error", nil)

	case errors.Is(err, domain.ErrUserNotFound):
		h.log.Warn().Str("email", mask.Anonymize(sanitized)).Msg("user not found for deletion")
		metrics.DeletionsTotal.WithLabelValues("not_found").Inc()
		return c.Render(http.StatusNotFound, "user_not_found", map[string]any{
			"ID": sanitized,
		})

	default:
		h.log.Error().Err(err).Str("email", mask.Anonymize(sanitized)).Msg("error while deleting user")
		metrics.DeletionsTotal.WithLabelValues("error").Inc()
		return c.Render(http.StatusInternalServerError, "delete_error", map[string]any{
			"Error": "An error occurred while deleting the user.",
		})
	}
}

// DeleteSuccess renders the static deletion confirmation page.
func (h *UserHandler) DeleteSuccess(c echo.Context) error {
	return c.Render(http.StatusOK, "delete_success", nil)
}

// DeleteError renders the static deletion failure page.
func (h *UserHandler) DeleteError(c echo.Context) error {
	return c.Render(http.StatusOK, "delete_error", map[string]any{
		"Error": "An error occurred while deleting the user.",
	})
}
