package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/busticket/client/internal/api/middleware"
	"github.com/busticket/client/internal/api/view"
	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

// Query parameters carrying one-shot messages across a redirect.
const (
	noticeParam = "notice"
	errorParam  = "error"
)

// currentSession prefers the snapshot the route guard evaluated so a page
// never renders a different session than the one that was let through.
func currentSession(c echo.Context, sessions ports.SessionReader) domain.Session {
	if sess, ok := c.Get(middleware.SessionKey).(domain.Session); ok {
		return sess
	}
	return sessions.Get()
}

// newPage starts a view.Page with the session and any redirect messages.
func newPage(c echo.Context, sessions ports.SessionReader, title string) view.Page {
	return view.Page{
		Title:   title,
		Session: currentSession(c, sessions),
		Notice:  c.QueryParam(noticeParam),
		Error:   c.QueryParam(errorParam),
		CSRF:    csrfToken(c),
	}
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.CSRFKey).(string)
	return token
}

// redirect answers 303 to path, attaching msg under key when non-empty.
func redirect(c echo.Context, path, key, msg string) error {
	if msg != "" {
		u := url.URL{Path: path}
		q := url.Values{}
		q.Set(key, msg)
		u.RawQuery = q.Encode()
		path = u.String()
	}
	return c.Redirect(http.StatusSeeOther, path)
}

// redirectQuery answers 303 to path with q as the query string.
func redirectQuery(c echo.Context, path string, q url.Values) error {
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.Redirect(http.StatusSeeOther, path)
}
