package devbackend

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/busticket/client/internal/core/domain"
)

// Store errors.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrSeatsUnavailable   = errors.New("not enough seats available")
	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrInUse              = errors.New("resource is referenced by a schedule")
)

// timeLayout is how the backend formats schedule times.
const timeLayout = "2006-01-02 15:04:05"

type account struct {
	user         domain.User
	passwordHash string
}

type bus struct {
	id int64
	domain.BusInput
}

type route struct {
	id int64
	domain.RouteInput
}

type schedule struct {
	id int64
	domain.ScheduleInput
}

type booking struct {
	id         int64
	scheduleID int64
	userID     domain.UserID
	seats      int
	amount     float64
	status     string
	bookedAt   time.Time
	passengers []domain.PassengerRecord
}

// Store is the dev backend's in-memory database.
type Store struct {
	mu     sync.Mutex
	nextID int64
	now    func() time.Time

	accounts  map[string]*account // by lower-cased email
	buses     map[int64]*bus
	routes    map[int64]*route
	schedules map[int64]*schedule
	bookings  map[int64]*booking
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		accounts:  make(map[string]*account),
		buses:     make(map[int64]*bus),
		routes:    make(map[int64]*route),
		schedules: make(map[int64]*schedule),
		bookings:  make(map[int64]*booking),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// CreateUser stores a new account. Emails are unique, case-insensitively.
func (s *Store) CreateUser(u domain.User, passwordHash string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := s.accounts[key]; ok {
		return domain.User{}, ErrUserExists
	}
	u.ID = domain.UserID(strconv.FormatInt(s.id(), 10))
	s.accounts[key] = &account{user: u, passwordHash: passwordHash}
	return u, nil
}

// FindAccount returns the user and password hash registered for email.
func (s *Store) FindAccount(email string) (domain.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return domain.User{}, "", ErrNotFound
	}
	return a.user, a.passwordHash, nil
}

func (s *Store) AddBus(in domain.BusInput) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &bus{id: s.id(), BusInput: in}
	s.buses[b.id] = b
	return b.id
}

func (s *Store) AddRoute(in domain.RouteInput) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &route{id: s.id(), RouteInput: in}
	s.routes[r.id] = r
	return r.id
}

// AddSchedule requires the bus and route to exist. Zero available seats
// means "all of the bus".
func (s *Store) AddSchedule(in domain.ScheduleInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buses[in.BusID]
	if !ok {
		return 0, ErrNotFound
	}
	if _, ok := s.routes[in.RouteID]; !ok {
		return 0, ErrNotFound
	}
	if in.AvailableSeats == 0 || in.AvailableSeats > b.TotalSeats {
		in.AvailableSeats = b.TotalSeats
	}
	in.DepartureTime = normalizeTime(in.DepartureTime)
	in.ArrivalTime = normalizeTime(in.ArrivalTime)

	sc := &schedule{id: s.id(), ScheduleInput: in}
	s.schedules[sc.id] = sc
	return sc.id, nil
}

func (s *Store) UpdateSchedule(id int64, upd domain.ScheduleUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.schedules[id]
	if !ok {
		return ErrNotFound
	}
	sc.DepartureTime = normalizeTime(upd.DepartureTime)
	sc.ArrivalTime = normalizeTime(upd.ArrivalTime)
	sc.Fare = upd.Fare
	sc.AvailableSeats = upd.AvailableSeats
	return nil
}

// Delete removes a bus, route or schedule. Buses and routes still used by a
// schedule are refused.
func (s *Store) Delete(kind string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.ResourceBus:
		if _, ok := s.buses[id]; !ok {
			return ErrNotFound
		}
		for _, sc := range s.schedules {
			if sc.BusID == id {
				return ErrInUse
			}
		}
		delete(s.buses, id)
	case domain.ResourceRoute:
		if _, ok := s.routes[id]; !ok {
			return ErrNotFound
		}
		for _, sc := range s.schedules {
			if sc.RouteID == id {
				return ErrInUse
			}
		}
		delete(s.routes, id)
	case domain.ResourceSchedule:
		if _, ok := s.schedules[id]; !ok {
			return ErrNotFound
		}
		delete(s.schedules, id)
	default:
		return domain.ErrInvalidResourceKind
	}
	return nil
}

// Search matches source and destination case-insensitively and the date
// against the departure day. Results are ordered by departure.
func (s *Store) Search(source, destination, date string) []domain.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Schedule{}
	for _, sc := range s.schedules {
		r := s.routes[sc.RouteID]
		if r == nil || !strings.EqualFold(r.Source, source) || !strings.EqualFold(r.Destination, destination) {
			continue
		}
		if !strings.HasPrefix(sc.DepartureTime, date) {
			continue
		}
		out = append(out, s.scheduleView(sc))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureTime == out[j].DepartureTime {
			return out[i].ScheduleID < out[j].ScheduleID
		}
		return out[i].DepartureTime < out[j].DepartureTime
	})
	return out
}

// Book reserves seats on a schedule for userID.
func (s *Store) Book(userID domain.UserID, scheduleID int64, passengers []domain.Passenger) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.schedules[scheduleID]
	if !ok {
		return 0, ErrNotFound
	}
	if len(passengers) > sc.AvailableSeats {
		return 0, ErrSeatsUnavailable
	}
	sc.AvailableSeats -= len(passengers)

	records := make([]domain.PassengerRecord, len(passengers))
	for i, p := range passengers {
		records[i] = domain.PassengerRecord{Name: p.Name, Age: p.Age, Gender: p.Gender, SeatNumber: p.Seat}
	}
	b := &booking{
		id:         s.id(),
		scheduleID: scheduleID,
		userID:     userID,
		seats:      len(passengers),
		amount:     sc.Fare * float64(len(passengers)),
		status:     domain.BookingConfirmed,
		bookedAt:   s.now(),
		passengers: records,
	}
	s.bookings[b.id] = b
	return b.id, nil
}

// Cancel marks a booking cancelled and returns its seats. Only the owner or
// an admin may cancel.
func (s *Store) Cancel(caller domain.UserID, admin bool, bookingID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return ErrNotFound
	}
	if !admin && b.userID != caller {
		return ErrForbidden
	}
	if b.status == domain.BookingCancelled {
		return ErrAlreadyCancelled
	}
	b.status = domain.BookingCancelled
	if sc, ok := s.schedules[b.scheduleID]; ok {
		sc.AvailableSeats += b.seats
	}
	return nil
}

// Bookings lists userID's bookings, newest first.
func (s *Store) Bookings(userID domain.UserID) []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Booking{}
	for _, b := range s.bookings {
		if b.userID == userID {
			out = append(out, s.bookingView(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingID > out[j].BookingID })
	return out
}

// BookingDetails returns one booking with its passengers plus its owner.
func (s *Store) BookingDetails(bookingID int64) (domain.BookingDetails, domain.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return domain.BookingDetails{}, "", ErrNotFound
	}
	passengers := make([]domain.PassengerRecord, len(b.passengers))
	copy(passengers, b.passengers)
	return domain.BookingDetails{Details: s.bookingView(b), Passengers: passengers}, b.userID, nil
}

func (s *Store) scheduleView(sc *schedule) domain.Schedule {
	v := domain.Schedule{
		ScheduleID:     sc.id,
		DepartureTime:  sc.DepartureTime,
		ArrivalTime:    sc.ArrivalTime,
		Fare:           sc.Fare,
		AvailableSeats: sc.AvailableSeats,
		BusID:          sc.BusID,
		RouteID:        sc.RouteID,
	}
	if r := s.routes[sc.RouteID]; r != nil {
		v.Source, v.Destination = r.Source, r.Destination
	}
	if b := s.buses[sc.BusID]; b != nil {
		v.BusType, v.RegNumber = b.BusType, b.RegNumber
	}
	return v
}

func (s *Store) bookingView(b *booking) domain.Booking {
	v := domain.Booking{
		BookingID:   b.id,
		ScheduleID:  b.scheduleID,
		NumOfSeats:  b.seats,
		TotalAmount: b.amount,
		Status:      b.status,
		BookingDate: b.bookedAt.Format(timeLayout),
	}
	// The schedule may have been deleted since; the booking still lists.
	if sc, ok := s.schedules[b.scheduleID]; ok {
		sv := s.scheduleView(sc)
		v.Source, v.Destination = sv.Source, sv.Destination
		v.DepartureTime, v.ArrivalTime = sv.DepartureTime, sv.ArrivalTime
		v.BusType, v.RegNumber = sv.BusType, sv.RegNumber
	}
	return v
}

// normalizeTime turns HTML datetime-local values ("2025-11-21T10:10") into
// the backend layout ("2025-11-21 10:10:00"). Other input is kept as is.
func normalizeTime(v string) string {
	v = strings.TrimSpace(v)
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339, timeLayout} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(timeLayout)
		}
	}
	return v
}
