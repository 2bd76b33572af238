package devbackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/core/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(Config{
		JWTSecret:     "secret",
		TokenTTL:      time.Hour,
		AdminEmail:    "admin@test.io",
		AdminPassword: "adminpass",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func do(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *Server, email, password string) (domain.User, string) {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp.User, resp.Token
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return m.Message
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func created(t *testing.T, rec *httptest.ResponseRecorder) int64 {
	t.Helper()
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp createdResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp.ID
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/auth/register", "", `{"name":"Ada","email":"ada@test.io","password":"secret1","phone":"555"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodPost, "/api/auth/register", "", `{"name":"Ada","email":"ada@test.io","password":"secret1"}`)
	if rec.Code != http.StatusConflict || messageOf(t, rec) != "user already exists" {
		t.Fatalf("expected 409 user already exists, got %d %q", rec.Code, rec.Body.String())
	}

	user, token := login(t, srv, "ada@test.io", "secret1")
	if user.Role != domain.RoleCustomer || user.Name != "Ada" || token == "" {
		t.Fatalf("unexpected login result %+v", user)
	}

	rec = do(t, srv, http.MethodPost, "/api/auth/login", "", `{"email":"ada@test.io","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRegister_ValidationMessage(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/auth/register", "", `{"name":"Ada","email":"not-an-email","password":"secret1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := messageOf(t, rec); msg != "email must be a valid email" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestProtectedEndpoints_RequireToken(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/bookings/1", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, "/api/bookings/1", "garbage", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestAdminEndpoints_RoleCheck(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/auth/register", "", `{"name":"Ada","email":"ada@test.io","password":"secret1"}`)
	_, customerToken := login(t, srv, "ada@test.io", "secret1")
	_, adminToken := login(t, srv, "admin@test.io", "adminpass")

	body := `{"regNumber":"MH-12","busType":"Seater","totalSeats":30}`
	if rec := do(t, srv, http.MethodPost, "/api/admin/bus", customerToken, body); rec.Code != http.StatusForbidden {
		t.Fatalf("customer should get 403, got %d", rec.Code)
	}
	rec := do(t, srv, http.MethodPost, "/api/admin/bus", adminToken, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin should get 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, srv, http.MethodPost, "/api/admin/depot", adminToken, body); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown kind should be 404, got %d", rec.Code)
	}
}

func TestBookingFlow(t *testing.T) {
	srv := newTestServer(t)
	_, adminToken := login(t, srv, "admin@test.io", "adminpass")

	busID := created(t, do(t, srv, http.MethodPost, "/api/admin/bus", adminToken, `{"regNumber":"MH-12","busType":"Seater","totalSeats":10}`))
	routeID := created(t, do(t, srv, http.MethodPost, "/api/admin/route", adminToken, `{"source":"Pune","destination":"Goa","distance":450}`))
	rec := do(t, srv, http.MethodPost, "/api/admin/schedule", adminToken, `{"busId":`+itoa(busID)+`,"routeId":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("incomplete schedule should be 400, got %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/api/admin/schedule", adminToken,
		`{"busId":`+itoa(busID)+`,"routeId":`+itoa(routeID)+`,"departureTime":"2025-12-01T08:00","arrivalTime":"2025-12-01T16:00","fare":700}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodGet, "/api/search?source=Pune&destination=Goa&date=2025-12-01", "", "")
	var schedules []domain.Schedule
	if err := json.Unmarshal(rec.Body.Bytes(), &schedules); err != nil || len(schedules) != 1 {
		t.Fatalf("expected one schedule, got %s (%v)", rec.Body.String(), err)
	}

	do(t, srv, http.MethodPost, "/api/auth/register", "", `{"name":"Ada","email":"ada@test.io","password":"secret1"}`)
	user, token := login(t, srv, "ada@test.io", "secret1")

	book := `{"userId":` + user.ID.String() + `,"scheduleId":` + itoa(schedules[0].ScheduleID) +
		`,"numOfSeats":2,"passengers":[{"name":"Ada","age":36,"gender":"Female","seat":"S1"},{"name":"Bob","age":40,"gender":"Male","seat":"S2"}]}`
	rec = do(t, srv, http.MethodPost, "/api/book", token, book)
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var booked bookingResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &booked)

	rec = do(t, srv, http.MethodGet, "/api/bookings/"+user.ID.String(), token, "")
	var bookings []domain.Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &bookings); err != nil || len(bookings) != 1 {
		t.Fatalf("expected one booking, got %s", rec.Body.String())
	}
	if rec := do(t, srv, http.MethodGet, "/api/bookings/999", token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("listing another user's bookings should be 403, got %d", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, "/api/booking/"+itoa(booked.BookingID), token, "")
	var details domain.BookingDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil || len(details.Passengers) != 2 {
		t.Fatalf("unexpected details %s", rec.Body.String())
	}

	rec = do(t, srv, http.MethodPost, "/api/cancel", token, `{"bookingId":`+itoa(booked.BookingID)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
