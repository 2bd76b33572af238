package devbackend

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/core/domain"
)

// Handler serves the backend API under /api.
type Handler struct {
	store *Store
	auth  *Authenticator
	log   zerolog.Logger
}

func NewHandler(store *Store, auth *Authenticator, log zerolog.Logger) *Handler {
	return &Handler{store: store, auth: auth, log: log}
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

type bookingResponse struct {
	Message   string `json:"Message"`
	BookingID int64  `json:"BookingID"`
}

type cancelRequest struct {
	BookingID int64 `json:"bookingId" validate:"required,gt=0"`
}

type createdResponse struct {
	Message string `json:"Message"`
	ID      int64  `json:"id"`
}

// Register creates a customer account. Admins are only seeded.
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	u, err := h.store.CreateUser(domain.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
		Role:  domain.RoleCustomer,
	}, hash)
	if err != nil {
		return err
	}

	h.log.Info().Str("user_id", u.ID.String()).Msg("user registered")
	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, hash, err := h.store.FindAccount(req.Email)
	if err != nil || !h.auth.CheckPassword(hash, req.Password) {
		return ErrInvalidCredentials
	}
	token, err := h.auth.Issue(u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{User: u, Token: token})
}

func (h *Handler) Search(c echo.Context) error {
	source := strings.TrimSpace(c.QueryParam("source"))
	destination := strings.TrimSpace(c.QueryParam("destination"))
	date := strings.TrimSpace(c.QueryParam("date"))
	if source == "" || destination == "" || date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "source, destination and date are required")
	}
	return c.JSON(http.StatusOK, h.store.Search(source, destination, date))
}

func (h *Handler) Book(c echo.Context) error {
	var req domain.BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	claims := callerClaims(c)
	if req.UserID != claims.UserID && !claims.IsAdmin() {
		return ErrForbidden
	}
	if req.ScheduleID <= 0 || len(req.Passengers) == 0 || req.NumOfSeats != len(req.Passengers) {
		return echo.NewHTTPError(http.StatusBadRequest, "scheduleId, numOfSeats and passengers are required and must agree")
	}
	if len(req.Passengers) > domain.MaxSeatsPerBooking {
		return echo.NewHTTPError(http.StatusBadRequest, "at most 6 seats per booking")
	}
	for i := range req.Passengers {
		if err := c.Validate(&req.Passengers[i]); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "passenger "+strconv.Itoa(i+1)+": "+err.Error())
		}
	}

	id, err := h.store.Book(req.UserID, req.ScheduleID, req.Passengers)
	if err != nil {
		return err
	}
	h.log.Info().Int64("booking_id", id).Int64("schedule_id", req.ScheduleID).Msg("booking created")
	return c.JSON(http.StatusCreated, bookingResponse{Message: "Booking successful", BookingID: id})
}

func (h *Handler) Cancel(c echo.Context) error {
	var req cancelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	claims := callerClaims(c)
	if err := h.store.Cancel(claims.UserID, claims.IsAdmin(), req.BookingID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Booking cancelled successfully"})
}

func (h *Handler) ListBookings(c echo.Context) error {
	userID := domain.UserID(c.Param("userId"))
	claims := callerClaims(c)
	if userID != claims.UserID && !claims.IsAdmin() {
		return ErrForbidden
	}
	return c.JSON(http.StatusOK, h.store.Bookings(userID))
}

func (h *Handler) BookingDetails(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	details, owner, err := h.store.BookingDetails(id)
	if err != nil {
		return err
	}
	claims := callerClaims(c)
	if owner != claims.UserID && !claims.IsAdmin() {
		return ErrForbidden
	}
	return c.JSON(http.StatusOK, details)
}

func (h *Handler) CreateResource(c echo.Context) error {
	var (
		id  int64
		err error
	)
	switch kind := c.Param("kind"); kind {
	case domain.ResourceBus:
		var in domain.BusInput
		if err := bindAndValidate(c, &in); err != nil {
			return err
		}
		id = h.store.AddBus(in)
	case domain.ResourceRoute:
		var in domain.RouteInput
		if err := bindAndValidate(c, &in); err != nil {
			return err
		}
		id = h.store.AddRoute(in)
	case domain.ResourceSchedule:
		var in domain.ScheduleInput
		if err := bindAndValidate(c, &in); err != nil {
			return err
		}
		if id, err = h.store.AddSchedule(in); err != nil {
			return err
		}
	default:
		return domain.ErrInvalidResourceKind
	}

	kind := c.Param("kind")
	h.log.Info().Str("kind", kind).Int64("id", id).Msg("resource created")
	return c.JSON(http.StatusCreated, createdResponse{Message: strings.ToUpper(kind[:1]) + kind[1:] + " added successfully", ID: id})
}

func (h *Handler) UpdateSchedule(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in domain.ScheduleUpdate
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	if err := h.store.UpdateSchedule(id, in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Schedule updated successfully"})
}

func (h *Handler) DeleteResource(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	kind := c.Param("kind")
	if err := h.store.Delete(kind, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: strings.ToUpper(kind[:1]) + kind[1:] + " deleted successfully"})
}

func bindAndValidate(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// errorHandler renders every failure as {"message": ...}, the shape the
// client reads.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := statusFor(err)
		if code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("unhandled error")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, messageResponse{Message: msg})
	}
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, http.StatusText(he.Code)
	}

	switch {
	case errors.Is(err, ErrUserExists):
		return http.StatusConflict, ErrUserExists.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrInvalidCredentials.Error()
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrSeatsUnavailable),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrInUse):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidResourceKind):
		return http.StatusNotFound, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
