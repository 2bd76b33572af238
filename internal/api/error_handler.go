package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/api/middleware"
	"github.com/busticket/client/internal/api/view"
	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

// errorResponse is the error envelope of the JSON API.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain and backend errors to HTTP status codes.
//   - Logs unexpected errors without leaking details to the user.
//   - Answers {"error": "<message>"} under /api and an HTML page elsewhere.
//
// A page that lost its session between the guard and the handler is sent to
// the login screen instead.
func NewHTTPErrorHandler(sessions ports.SessionReader, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")
		if !isAPI && errors.Is(err, domain.ErrNotAuthenticated) {
			_ = c.Redirect(http.StatusSeeOther, domain.LoginPath)
			return
		}

		code, msg := resolveError(err, log, c)
		if isAPI || c.Request().Method == http.MethodHead {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}
		page := view.Page{Title: http.StatusText(code), Session: sessions.Get(), Data: msg}
		page.CSRF, _ = c.Get(middleware.CSRFKey).(string)
		if rerr := c.Render(code, "error", page); rerr != nil {
			log.Error().Err(rerr).Msg("render error page")
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var (
		authErr *domain.AuthenticationError
		regErr  *domain.RegistrationError
		apiErr  *ports.APIError
		netErr  net.Error
	)
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, authErr.Error()
	case errors.As(err, &regErr):
		return http.StatusBadRequest, regErr.Message
	case errors.Is(err, domain.ErrLoginSuperseded):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not logged in"
	case errors.Is(err, domain.ErrMissingSearchParams),
		errors.Is(err, domain.ErrMissingBookingParams),
		errors.Is(err, domain.ErrInvalidSeatCount),
		errors.Is(err, domain.ErrSeatsUnavailable),
		errors.Is(err, domain.ErrIncompletePassengers):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidResourceKind):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &apiErr):
		return backendStatus(apiErr)
	case errors.As(err, &netErr):
		log.Warn().Err(err).Str("path", c.Path()).Msg("booking service unreachable")
		return http.StatusBadGateway, "the booking service is unreachable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// backendStatus passes client errors through and hides server errors behind
// 502.
func backendStatus(e *ports.APIError) (int, string) {
	if e.StatusCode >= 500 {
		return http.StatusBadGateway, "the booking service failed to answer"
	}
	msg := e.Message
	if msg == "" {
		msg = strings.ToLower(http.StatusText(e.StatusCode))
	}
	return e.StatusCode, msg
}
