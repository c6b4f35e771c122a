package api

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler acting as the safety
// net under the page handlers: every lifecycle error is already mapped to a
// view at the handler boundary, so anything arriving here is either an echo
// routing/authorization error or an unexpected fault. Unexpected faults are
// logged in full and answered with a generic page — detail never reaches the
// response body.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.HTML(code, errorPage(code, msg))
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors: 404 from the router, 403 from the access policy,
	// CSRF rejections, bind failures.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func errorPage(code int, msg string) string {
	return fmt.Sprintf(
		"<!DOCTYPE html><html><head><title>%d</title></head><body><h1>%d %s</h1><p>%s</p></body></html>",
		code, code, http.StatusText(code), html.EscapeString(msg),
	)
}
