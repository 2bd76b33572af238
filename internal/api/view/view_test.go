package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/busticket/client/internal/core/domain"
)

func render(t *testing.T, r *Renderer, name string, page Page) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, name, page, nil); err != nil {
		t.Fatalf("Render(%s): %v", name, err)
	}
	return buf.String()
}

func TestRenderer_AllPagesRenderEmpty(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	for _, name := range []string{"home", "login", "register", "search", "passengers", "bookings", "ticket", "profile", "admin", "error"} {
		out := render(t, r, name, Page{})
		if !strings.Contains(out, "<nav>") {
			t.Fatalf("%s: layout missing", name)
		}
	}
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, "nope", Page{}, nil); err == nil {
		t.Fatalf("expected error for unknown page")
	}
}

func TestRenderer_NavFollowsSession(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	anon := render(t, r, "home", Page{})
	if !strings.Contains(anon, `href="/login"`) || strings.Contains(anon, `action="/logout"`) {
		t.Fatalf("anonymous nav should offer login only")
	}

	customer := render(t, r, "home", Page{Session: domain.Session{User: &domain.User{Name: "Alice", Role: domain.RoleCustomer}, Token: "t"}})
	if !strings.Contains(customer, "Hi, Alice") || !strings.Contains(customer, `href="/bookings"`) {
		t.Fatalf("customer nav missing links")
	}
	if strings.Contains(customer, "Admin Dashboard") {
		t.Fatalf("customer must not see the admin link")
	}

	admin := render(t, r, "home", Page{Session: domain.Session{User: &domain.User{Name: "Root", Role: domain.RoleAdmin}, Token: "t"}})
	if !strings.Contains(admin, "Admin Dashboard") || strings.Contains(admin, "My Bookings") {
		t.Fatalf("admin nav wrong")
	}
}

func TestRenderer_EscapesMessages(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out := render(t, r, "home", Page{Error: "<script>x</script>"})
	if strings.Contains(out, "<script>x</script>") {
		t.Fatalf("error message was not escaped")
	}
}

func TestRenderer_TicketAndFuncs(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out := render(t, r, "ticket", Page{Data: &domain.BookingDetails{
		Details: domain.Booking{
			BookingID:     42,
			Source:        "Bangalore",
			Destination:   "Chennai",
			DepartureTime: "2026-10-17 21:30:00",
			TotalAmount:   1700,
			Status:        domain.BookingCancelled,
		},
		Passengers: []domain.PassengerRecord{{Name: "Alice", Age: 30, Gender: "Female", SeatNumber: "S1"}},
	}})

	for _, want := range []string{"CANCELLED", "17 Oct 2026, 21:30", "₹1700.00", "<td>Alice</td>", "Print (Cancelled Ticket)", "window.print()"} {
		if !strings.Contains(out, want) {
			t.Fatalf("ticket missing %q", want)
		}
	}
}

func TestRenderer_ConfirmedTicketPrints(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out := render(t, r, "ticket", Page{Data: &domain.BookingDetails{
		Details: domain.Booking{BookingID: 7, Status: domain.BookingConfirmed},
	}})
	if !strings.Contains(out, ">Print Ticket<") || strings.Contains(out, "Cancelled Ticket") {
		t.Fatalf("confirmed ticket should offer a plain print button")
	}
	if !strings.Contains(out, "@media print") {
		t.Fatalf("layout should hide navigation when printing")
	}
}

func TestRenderer_FormsCarryCSRFToken(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	admin := domain.Session{User: &domain.User{Name: "Root", Role: domain.RoleAdmin}, Token: "t"}
	out := render(t, r, "admin", Page{Session: admin, CSRF: "tok123"})

	forms := strings.Count(out, `method="post"`)
	tokens := strings.Count(out, `name="_csrf" value="tok123"`)
	if forms == 0 || forms != tokens {
		t.Fatalf("every POST form needs the token: %d forms, %d tokens", forms, tokens)
	}
}
