package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

const bookingsSheet = "Bookings"

type BookingService struct {
	backend  ports.BookingBackend
	sessions ports.SessionReader
	validate *validator.Validate
	log      zerolog.Logger
}

func NewBookingService(backend ports.BookingBackend, sessions ports.SessionReader, log zerolog.Logger) *BookingService {
	return &BookingService{
		backend:  backend,
		sessions: sessions,
		validate: validator.New(),
		log:      log,
	}
}

// Search is public: it needs no session.
func (s *BookingService) Search(ctx context.Context, q ports.SearchQuery) ([]domain.Schedule, error) {
	q.Source = strings.TrimSpace(q.Source)
	q.Destination = strings.TrimSpace(q.Destination)
	q.Date = strings.TrimSpace(q.Date)
	if q.Source == "" || q.Destination == "" || q.Date == "" {
		return nil, domain.ErrMissingSearchParams
	}
	schedules, err := s.backend.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return schedules, nil
}

// ValidateSeatRequest checks a requested seat count against the per-booking
// cap and the seats still available on the schedule.
func (s *BookingService) ValidateSeatRequest(seats, available int) error {
	if seats <= 0 || seats > domain.MaxSeatsPerBooking {
		return domain.ErrInvalidSeatCount
	}
	if seats > available {
		return fmt.Errorf("%w: only %d seats are available", domain.ErrSeatsUnavailable, available)
	}
	return nil
}

// NewPassengerForm returns the initial passenger rows for seats passengers.
// The first row is prefilled with the signed-in user's name.
func (s *BookingService) NewPassengerForm(seats int) ([]domain.Passenger, error) {
	if seats <= 0 || seats > domain.MaxSeatsPerBooking {
		return nil, domain.ErrInvalidSeatCount
	}
	sess := s.sessions.Get()
	if !sess.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	passengers := make([]domain.Passenger, seats)
	for i := range passengers {
		passengers[i] = domain.Passenger{Gender: domain.Genders[0], Seat: fmt.Sprintf("S%d", i+1)}
	}
	passengers[0].Name = sess.User.Name
	return passengers, nil
}

// Book submits a booking for the signed-in user.
func (s *BookingService) Book(ctx context.Context, scheduleID int64, passengers []domain.Passenger) (string, error) {
	if scheduleID <= 0 || len(passengers) == 0 {
		return "", domain.ErrMissingBookingParams
	}
	if len(passengers) > domain.MaxSeatsPerBooking {
		return "", domain.ErrInvalidSeatCount
	}
	sess := s.sessions.Get()
	if !sess.IsAuthenticated() {
		return "", domain.ErrNotAuthenticated
	}
	for i := range passengers {
		passengers[i].Name = strings.TrimSpace(passengers[i].Name)
		if passengers[i].Seat == "" {
			passengers[i].Seat = fmt.Sprintf("S%d", i+1)
		}
		if err := s.validate.Struct(passengers[i]); err != nil {
			return "", domain.ErrIncompletePassengers
		}
	}

	msg, err := s.backend.Book(ctx, sess.Token, domain.BookingRequest{
		UserID:     sess.User.ID,
		ScheduleID: scheduleID,
		NumOfSeats: len(passengers),
		Passengers: passengers,
	})
	if err != nil {
		s.log.Warn().Err(err).Int64("schedule_id", scheduleID).Msg("booking failed")
		return "", fmt.Errorf("book: %w", err)
	}
	s.log.Info().Int64("schedule_id", scheduleID).Int("seats", len(passengers)).Msg("booking placed")
	return msg, nil
}

func (s *BookingService) Cancel(ctx context.Context, bookingID int64) (string, error) {
	sess := s.sessions.Get()
	if !sess.IsAuthenticated() {
		return "", domain.ErrNotAuthenticated
	}
	msg, err := s.backend.Cancel(ctx, sess.Token, bookingID)
	if err != nil {
		return "", fmt.Errorf("cancel booking %d: %w", bookingID, err)
	}
	s.log.Info().Int64("booking_id", bookingID).Msg("booking cancelled")
	return msg, nil
}

// ListBookings returns the signed-in user's bookings.
func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	sess := s.sessions.Get()
	if !sess.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	bookings, err := s.backend.ListBookings(ctx, sess.Token, sess.User.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) Ticket(ctx context.Context, bookingID int64) (*domain.BookingDetails, error) {
	sess := s.sessions.Get()
	if !sess.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	details, err := s.backend.BookingDetails(ctx, sess.Token, bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %d: %w", bookingID, err)
	}
	return details, nil
}

// ExportBookings writes the signed-in user's bookings to w as an XLSX workbook.
func (s *BookingService) ExportBookings(ctx context.Context, w io.Writer) error {
	bookings, err := s.ListBookings(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", bookingsSheet); err != nil {
		return fmt.Errorf("export bookings: %w", err)
	}
	header := []any{"Booking ID", "From", "To", "Departure", "Arrival", "Seats", "Amount", "Status", "Booked On", "Bus", "Reg. Number"}
	if err := f.SetSheetRow(bookingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("export bookings: %w", err)
	}
	for i, b := range bookings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export bookings: %w", err)
		}
		row := []any{b.BookingID, b.Source, b.Destination, b.DepartureTime, b.ArrivalTime,
			b.NumOfSeats, b.TotalAmount, b.Status, b.BookingDate, b.BusType, b.RegNumber}
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			return fmt.Errorf("export bookings: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export bookings: %w", err)
	}
	return nil
}
