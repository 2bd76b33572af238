// Package middleware holds the echo middleware of the client web UI.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/busticket/client/internal/api/metrics"
	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

// SessionKey is the context key under which Guard stores the session
// snapshot it evaluated, so the handler sees the same session.
const SessionKey = "session"

// Guard lets a request through only when the current session satisfies
// access. Otherwise it answers 303 See Other to the decision's target; the
// wrapped handler does not run.
//
// The session is read on every request, so a login or logout takes effect on
// the next navigation.
func Guard(sessions ports.SessionReader, access domain.Access) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := sessions.Get()
			decision := access.Evaluate(sess)
			metrics.GuardDecisionsTotal.WithLabelValues(access.String(), outcome(decision)).Inc()

			if !decision.Allowed() {
				return c.Redirect(http.StatusSeeOther, decision.RedirectTo)
			}
			c.Set(SessionKey, sess)
			return next(c)
		}
	}
}

// RequireAuthenticated guards customer pages: bookings, passengers, ticket, profile.
func RequireAuthenticated(sessions ports.SessionReader) echo.MiddlewareFunc {
	return Guard(sessions, domain.AccessAuthenticated)
}

// RequireAdmin guards the admin console.
func RequireAdmin(sessions ports.SessionReader) echo.MiddlewareFunc {
	return Guard(sessions, domain.AccessAdmin)
}

func outcome(d domain.Decision) string {
	switch d.RedirectTo {
	case "":
		return "allowed"
	case domain.LoginPath:
		return "redirect_login"
	default:
		return "redirect_home"
	}
}
