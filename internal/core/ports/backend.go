package ports

import (
	"context"
	"fmt"

	"github.com/busticket/client/internal/core/domain"
)

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Name     string `json:"name"     form:"name"     validate:"required"`
	Email    string `json:"email"    form:"email"    validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Phone    string `json:"phone"    form:"phone"`
}

// SearchQuery selects schedules by route and travel date.
type SearchQuery struct {
	Source      string
	Destination string
	Date        string
}

// AuthBackend is the remote authentication API.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) error
}

// BookingBackend is the remote customer API. Every call but Search needs the
// bearer token.
type BookingBackend interface {
	Search(ctx context.Context, q SearchQuery) ([]domain.Schedule, error)
	Book(ctx context.Context, token string, req domain.BookingRequest) (string, error)
	Cancel(ctx context.Context, token string, bookingID int64) (string, error)
	ListBookings(ctx context.Context, token string, userID domain.UserID) ([]domain.Booking, error)
	BookingDetails(ctx context.Context, token string, bookingID int64) (*domain.BookingDetails, error)
}

// AdminBackend manages buses, routes and schedules. Results are the
// backend's acknowledgement message.
type AdminBackend interface {
	CreateResource(ctx context.Context, token, kind string, body any) (string, error)
	UpdateResource(ctx context.Context, token, kind string, id int64, body any) (string, error)
	DeleteResource(ctx context.Context, token, kind string, id int64) (string, error)
}

// APIError is a non-success answer from the backend. Message is the plain
// text of the backend's {"message": ...} payload, empty when there was none.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}
