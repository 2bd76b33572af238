package domain

// MaxSeatsPerBooking caps a single booking.
const MaxSeatsPerBooking = 6

const (
	BookingConfirmed = "Confirmed"
	BookingCancelled = "Cancelled"
)

// Genders accepted on the passenger form.
var Genders = []string{"Male", "Female", "Other"}

// Schedule is one search result: a bus departing on a route at a time.
// Times are kept as the backend formats them.
type Schedule struct {
	ScheduleID     int64   `json:"ScheduleID"`
	Source         string  `json:"Source"`
	Destination    string  `json:"Destination"`
	DepartureTime  string  `json:"DepartureTime"`
	ArrivalTime    string  `json:"ArrivalTime"`
	Fare           float64 `json:"Fare"`
	AvailableSeats int     `json:"AvailableSeats"`
	BusType        string  `json:"BusType"`
	RegNumber      string  `json:"RegNumber"`
	BusID          int64   `json:"BusID,omitempty"`
	RouteID        int64   `json:"RouteID,omitempty"`
}

// Full reports whether the schedule has no seats left.
func (s Schedule) Full() bool { return s.AvailableSeats <= 0 }

// Booking is a row of the user's bookings list.
type Booking struct {
	BookingID     int64   `json:"BookingID"`
	ScheduleID    int64   `json:"ScheduleID,omitempty"`
	Source        string  `json:"Source"`
	Destination   string  `json:"Destination"`
	DepartureTime string  `json:"DepartureTime"`
	ArrivalTime   string  `json:"ArrivalTime"`
	NumOfSeats    int     `json:"NumOfSeats"`
	TotalAmount   float64 `json:"TotalAmount"`
	Status        string  `json:"Status"`
	BookingDate   string  `json:"BookingDate"`
	BusType       string  `json:"BusType"`
	RegNumber     string  `json:"RegNumber"`
}

// Cancelled reports whether the booking was cancelled.
func (b Booking) Cancelled() bool { return b.Status == BookingCancelled }

// PassengerRecord is a passenger as stored by the backend.
type PassengerRecord struct {
	Name       string `json:"Name"`
	Age        int    `json:"Age"`
	Gender     string `json:"Gender"`
	SeatNumber string `json:"SeatNumber"`
}

// BookingDetails backs the ticket screen.
type BookingDetails struct {
	Details    Booking           `json:"details"`
	Passengers []PassengerRecord `json:"passengers"`
}

// Passenger is one entry of a booking request.
type Passenger struct {
	Name   string `json:"name"   form:"name"   validate:"required"`
	Age    int    `json:"age"    form:"age"    validate:"required,gt=0,lt=150"`
	Gender string `json:"gender" form:"gender" validate:"required,oneof=Male Female Other"`
	Seat   string `json:"seat"   form:"seat"`
}

// BookingRequest is the body of POST /book.
type BookingRequest struct {
	UserID     UserID      `json:"userId"`
	ScheduleID int64       `json:"scheduleId"`
	NumOfSeats int         `json:"numOfSeats"`
	Passengers []Passenger `json:"passengers"`
}

// Admin-managed resource kinds.
const (
	ResourceBus      = "bus"
	ResourceRoute    = "route"
	ResourceSchedule = "schedule"
)

// ValidResourceKind reports whether kind names an admin resource.
func ValidResourceKind(kind string) bool {
	switch kind {
	case ResourceBus, ResourceRoute, ResourceSchedule:
		return true
	}
	return false
}

type BusInput struct {
	RegNumber  string `json:"regNumber"  form:"regNumber"  validate:"required"`
	BusType    string `json:"busType"    form:"busType"    validate:"required"`
	TotalSeats int    `json:"totalSeats" form:"totalSeats" validate:"required,gt=0"`
}

type RouteInput struct {
	Source      string  `json:"source"      form:"source"      validate:"required"`
	Destination string  `json:"destination" form:"destination" validate:"required,nefield=Source"`
	DistanceKm  float64 `json:"distance"    form:"distance"    validate:"gte=0"`
}

type ScheduleInput struct {
	BusID          int64   `json:"busId"          form:"busId"          validate:"required,gt=0"`
	RouteID        int64   `json:"routeId"        form:"routeId"        validate:"required,gt=0"`
	DepartureTime  string  `json:"departureTime"  form:"departureTime"  validate:"required"`
	ArrivalTime    string  `json:"arrivalTime"    form:"arrivalTime"    validate:"required"`
	Fare           float64 `json:"fare"           form:"fare"           validate:"required,gt=0"`
	AvailableSeats int     `json:"availableSeats" form:"availableSeats" validate:"gte=0"`
}

// ScheduleUpdate is the body of PUT /admin/schedule/{id}.
type ScheduleUpdate struct {
	DepartureTime  string  `json:"departureTime"  form:"departureTime"  validate:"required"`
	ArrivalTime    string  `json:"arrivalTime"    form:"arrivalTime"    validate:"required"`
	Fare           float64 `json:"fare"           form:"fare"           validate:"required,gt=0"`
	AvailableSeats int     `json:"availableSeats" form:"availableSeats" validate:"gte=0"`
}
