package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

const (
	msgMissingSearch        = "Missing search parameters."
	msgNoBuses              = "No buses found for this route or date."
	msgIncompletePassengers = "Please fill in all details for all passengers."
	msgScheduleGone         = "This bus is no longer available."
	xlsxContentType         = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// BookingHandler serves the customer screens: search, passengers, bookings,
// ticket and profile.
type BookingHandler struct {
	bookings ports.BookingService
	sessions ports.SessionReader
	log      zerolog.Logger
}

func NewBookingHandler(bookings ports.BookingService, sessions ports.SessionReader, log zerolog.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, sessions: sessions, log: log}
}

type searchData struct {
	From, To, Date string
	Schedules      []domain.Schedule
}

type passengerData struct {
	ScheduleID int64
	Passengers []domain.Passenger
}

type bookingsData struct {
	Bookings []domain.Booking
}

func (h *BookingHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "home", newPage(c, h.sessions, ""))
}

// Search is public.
func (h *BookingHandler) Search(c echo.Context) error {
	data := searchData{From: c.QueryParam("from"), To: c.QueryParam("to"), Date: c.QueryParam("date")}
	page := newPage(c, h.sessions, "Search")

	schedules, err := h.bookings.Search(c.Request().Context(), ports.SearchQuery{
		Source: data.From, Destination: data.To, Date: data.Date,
	})
	switch {
	case errors.Is(err, domain.ErrMissingSearchParams):
		page.Error = msgMissingSearch
	case err != nil:
		h.log.Warn().Err(err).Msg("search failed")
		page.Error = msgNoBuses
	}
	data.Schedules = schedules
	page.Data = data
	return c.Render(http.StatusOK, "search", page)
}

// SelectSeats checks the seat count picked on a search result against the
// schedule's current inventory and moves on to the passenger form.
func (h *BookingHandler) SelectSeats(c echo.Context) error {
	back := url.Values{}
	back.Set("from", c.FormValue("from"))
	back.Set("to", c.FormValue("to"))
	back.Set("date", c.FormValue("date"))

	if !h.sessions.Get().IsAuthenticated() {
		return redirect(c, domain.LoginPath, errorParam, msgPleaseLogInToBuy)
	}

	scheduleID, _ := strconv.ParseInt(c.FormValue("scheduleId"), 10, 64)
	schedule, err := h.findSchedule(c, scheduleID, back)
	if err != nil {
		h.log.Warn().Err(err).Int64("schedule_id", scheduleID).Msg("schedule lookup failed")
		back.Set(errorParam, msgScheduleGone)
		return redirectQuery(c, "/search", back)
	}

	seats, _ := strconv.Atoi(c.FormValue("seats"))
	available := schedule.AvailableSeats
	if err := h.bookings.ValidateSeatRequest(seats, available); err != nil {
		back.Set(errorParam, seatMessage(err, available))
		return redirectQuery(c, "/search", back)
	}

	next := url.Values{}
	next.Set("scheduleId", strconv.FormatInt(schedule.ScheduleID, 10))
	next.Set("seats", strconv.Itoa(seats))
	return redirectQuery(c, "/book/passengers", next)
}

// findSchedule re-runs the search the result came from; the seat count in
// the submitted form is not trusted.
func (h *BookingHandler) findSchedule(c echo.Context, id int64, q url.Values) (domain.Schedule, error) {
	schedules, err := h.bookings.Search(c.Request().Context(), ports.SearchQuery{
		Source: q.Get("from"), Destination: q.Get("to"), Date: q.Get("date"),
	})
	if err != nil {
		return domain.Schedule{}, err
	}
	for _, s := range schedules {
		if s.ScheduleID == id {
			return s, nil
		}
	}
	return domain.Schedule{}, fmt.Errorf("schedule %d: %w", id, domain.ErrScheduleNotFound)
}

// PassengerForm renders the passenger rows for the chosen seat count.
func (h *BookingHandler) PassengerForm(c echo.Context) error {
	scheduleID, _ := strconv.ParseInt(c.QueryParam("scheduleId"), 10, 64)
	seats, _ := strconv.Atoi(c.QueryParam("seats"))
	if scheduleID <= 0 {
		return c.Redirect(http.StatusSeeOther, domain.HomePath)
	}

	passengers, err := h.bookings.NewPassengerForm(seats)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return err
		}
		return c.Redirect(http.StatusSeeOther, domain.HomePath)
	}

	page := newPage(c, h.sessions, "Passenger Details")
	page.Data = passengerData{ScheduleID: scheduleID, Passengers: passengers}
	return c.Render(http.StatusOK, "passengers", page)
}

// Book submits the passenger form.
func (h *BookingHandler) Book(c echo.Context) error {
	scheduleID, _ := strconv.ParseInt(c.FormValue("scheduleId"), 10, 64)
	seats, _ := strconv.Atoi(c.FormValue("seats"))
	if seats <= 0 || seats > domain.MaxSeatsPerBooking {
		return c.Redirect(http.StatusSeeOther, domain.HomePath)
	}

	passengers := make([]domain.Passenger, seats)
	for i := range passengers {
		idx := strconv.Itoa(i)
		age, _ := strconv.Atoi(c.FormValue("age_" + idx))
		passengers[i] = domain.Passenger{
			Name:   c.FormValue("name_" + idx),
			Age:    age,
			Gender: c.FormValue("gender_" + idx),
			Seat:   c.FormValue("seat_" + idx),
		}
	}

	msg, err := h.bookings.Book(c.Request().Context(), scheduleID, passengers)
	if err != nil {
		page := newPage(c, h.sessions, "Passenger Details")
		page.Data = passengerData{ScheduleID: scheduleID, Passengers: passengers}
		switch {
		case errors.Is(err, domain.ErrIncompletePassengers):
			page.Error = msgIncompletePassengers
		case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrMissingBookingParams):
			return err
		default:
			page.Error = "Booking Failed: " + backendMessage(err)
		}
		return c.Render(http.StatusUnprocessableEntity, "passengers", page)
	}

	return redirect(c, "/bookings", noticeParam, msg)
}

func (h *BookingHandler) Bookings(c echo.Context) error {
	bookings, err := h.bookings.ListBookings(c.Request().Context())
	if err != nil {
		return err
	}
	page := newPage(c, h.sessions, "My Bookings")
	page.Data = bookingsData{Bookings: bookings}
	return c.Render(http.StatusOK, "bookings", page)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	msg, err := h.bookings.Cancel(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return err
		}
		return redirect(c, "/bookings", errorParam, backendMessage(err))
	}
	return redirect(c, "/bookings", noticeParam, msg)
}

// Export downloads the bookings list as an XLSX workbook.
func (h *BookingHandler) Export(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.bookings.ExportBookings(c.Request().Context(), &buf); err != nil {
		return err
	}
	name := "bookings-" + time.Now().Format("20060102") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *BookingHandler) Ticket(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	details, err := h.bookings.Ticket(c.Request().Context(), id)
	if err != nil {
		return err
	}
	page := newPage(c, h.sessions, "Ticket")
	page.Data = details
	return c.Render(http.StatusOK, "ticket", page)
}

func (h *BookingHandler) Profile(c echo.Context) error {
	return c.Render(http.StatusOK, "profile", newPage(c, h.sessions, "Profile"))
}

func seatMessage(err error, available int) string {
	if errors.Is(err, domain.ErrSeatsUnavailable) {
		return "Booking failed: Only " + strconv.Itoa(available) + " seats are available."
	}
	return "Please enter a valid number between 1 and 6."
}

// backendMessage is the backend's explanation when it sent one.
func backendMessage(err error) string {
	var apiErr *ports.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "the booking service could not complete the request"
}
