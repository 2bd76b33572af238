package ports

import (
	"context"
	"io"

	"github.com/busticket/client/internal/core/domain"
)

// BookingService drives the customer screens.
type BookingService interface {
	Search(ctx context.Context, q SearchQuery) ([]domain.Schedule, error)
	ValidateSeatRequest(seats, available int) error
	NewPassengerForm(seats int) ([]domain.Passenger, error)
	Book(ctx context.Context, scheduleID int64, passengers []domain.Passenger) (string, error)
	Cancel(ctx context.Context, bookingID int64) (string, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	Ticket(ctx context.Context, bookingID int64) (*domain.BookingDetails, error)
	ExportBookings(ctx context.Context, w io.Writer) error
}

// AdminService drives the admin dashboard.
type AdminService interface {
	AddBus(ctx context.Context, in domain.BusInput) (string, error)
	AddRoute(ctx context.Context, in domain.RouteInput) (string, error)
	AddSchedule(ctx context.Context, in domain.ScheduleInput) (string, error)
	UpdateSchedule(ctx context.Context, id int64, in domain.ScheduleUpdate) (string, error)
	Delete(ctx context.Context, kind string, id int64) (string, error)
}
