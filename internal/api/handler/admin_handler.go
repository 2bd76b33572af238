package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

const adminPath = "/admin"

// AdminHandler serves the admin dashboard. Every route sits behind the
// admin guard.
type AdminHandler struct {
	admin    ports.AdminService
	bookings ports.BookingService
	sessions ports.SessionReader
	log      zerolog.Logger
}

func NewAdminHandler(admin ports.AdminService, bookings ports.BookingService, sessions ports.SessionReader, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, bookings: bookings, sessions: sessions, log: log}
}

// Dashboard renders the forms and, when from/to/date are given, the
// matching schedules for editing.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	data := searchData{From: c.QueryParam("from"), To: c.QueryParam("to"), Date: c.QueryParam("date")}
	page := newPage(c, h.sessions, "Admin Dashboard")

	if data.From != "" || data.To != "" || data.Date != "" {
		schedules, err := h.bookings.Search(c.Request().Context(), ports.SearchQuery{
			Source: data.From, Destination: data.To, Date: data.Date,
		})
		switch {
		case errors.Is(err, domain.ErrMissingSearchParams):
			page.Error = msgMissingSearch
		case err != nil:
			page.Error = msgNoBuses
		}
		data.Schedules = schedules
	}
	page.Data = data
	return c.Render(http.StatusOK, "admin", page)
}

func (h *AdminHandler) AddBus(c echo.Context) error {
	var in domain.BusInput
	if err := bindForm(c, &in); err != nil {
		return h.back(c, "", err)
	}
	msg, err := h.admin.AddBus(c.Request().Context(), in)
	return h.back(c, msg, err)
}

func (h *AdminHandler) AddRoute(c echo.Context) error {
	var in domain.RouteInput
	if err := bindForm(c, &in); err != nil {
		return h.back(c, "", err)
	}
	msg, err := h.admin.AddRoute(c.Request().Context(), in)
	return h.back(c, msg, err)
}

func (h *AdminHandler) AddSchedule(c echo.Context) error {
	var in domain.ScheduleInput
	if err := bindForm(c, &in); err != nil {
		return h.back(c, "", err)
	}
	msg, err := h.admin.AddSchedule(c.Request().Context(), in)
	return h.back(c, msg, err)
}

// UpdateSchedule handles POST /admin/schedule/:id; HTML forms cannot PUT.
func (h *AdminHandler) UpdateSchedule(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return h.back(c, "", errors.New("invalid schedule id"))
	}
	var in domain.ScheduleUpdate
	if err := bindForm(c, &in); err != nil {
		return h.back(c, "", err)
	}
	msg, err := h.admin.UpdateSchedule(c.Request().Context(), id, in)
	return h.back(c, msg, err)
}

func (h *AdminHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.FormValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return h.back(c, "", errors.New("invalid id"))
	}
	msg, err := h.admin.Delete(c.Request().Context(), c.FormValue("kind"), id)
	return h.back(c, msg, err)
}

// back returns to the dashboard with the outcome of an action.
func (h *AdminHandler) back(c echo.Context, msg string, err error) error {
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return err
		}
		h.log.Warn().Err(err).Str("path", c.Path()).Msg("admin action failed")
		return redirect(c, adminPath, errorParam, adminMessage(err))
	}
	if msg == "" {
		msg = "Saved."
	}
	return redirect(c, adminPath, noticeParam, msg)
}

func bindForm(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errors.New("the form contains invalid values")
	}
	return c.Validate(v)
}

func adminMessage(err error) string {
	var apiErr *ports.APIError
	switch {
	case errors.As(err, &apiErr):
		return backendMessage(err)
	case errors.Is(err, domain.ErrInvalidResourceKind):
		return "unknown resource kind"
	}
	return err.Error()
}
