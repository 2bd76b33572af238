package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// ErrCrossSite is returned for requests another site made on the user's behalf.
var ErrCrossSite = echo.NewHTTPError(http.StatusForbidden, "cross-site request rejected")

// SameOrigin rejects requests that did not come from this client's own pages.
//
// The session is shared by everything that can reach the port, so the
// browser's own provenance headers decide: a state-changing request, or any
// request under /api, is refused when Sec-Fetch-Site says it came from another
// site or when its Origin names a different host. When hosts is non-empty the
// Host header must be one of them, which keeps a rebound DNS name from
// turning a foreign page into a same-origin one.
func SameOrigin(hosts []string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		allowed[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if len(allowed) > 0 {
				if _, ok := allowed[hostname(req.Host)]; !ok {
					return echo.NewHTTPError(http.StatusMisdirectedRequest, "unknown host")
				}
			}
			if !isSafeMethod(req.Method) || strings.HasPrefix(req.URL.Path, "/api/") {
				if crossSite(req) {
					return ErrCrossSite
				}
			}
			return next(c)
		}
	}
}

// CSRF wraps echo's double-submit token check. Forms send the token as
// _csrf, scripts as X-CSRF-Token; the cookie is SameSite=Strict so another
// site can neither read nor replay it.
func CSRF() echo.MiddlewareFunc {
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/health") || p == "/metrics" || strings.HasPrefix(p, "/swagger/")
		},
		TokenLookup:    "header:" + echo.HeaderXCSRFToken + ",form:" + CSRFField,
		CookieName:     CSRFField,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteStrictMode,
		ContextKey:     CSRFKey,
		ErrorHandler: func(error, echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "invalid or missing csrf token")
		},
	})
}

// CSRFField names both the form field and the cookie carrying the token.
const CSRFField = "_csrf"

// CSRFKey is the context key holding the current request's token.
const CSRFKey = "csrf"

func crossSite(req *http.Request) bool {
	switch req.Header.Get("Sec-Fetch-Site") {
	case "cross-site", "same-site":
		return true
	}
	origin := req.Header.Get(echo.HeaderOrigin)
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return true
	}
	return !strings.EqualFold(u.Host, req.Host)
}

func hostname(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		hostport = h
	}
	return strings.ToLower(strings.Trim(hostport, "[]"))
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
