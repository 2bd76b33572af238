package domain

import "testing"

func TestAccess_Evaluate(t *testing.T) {
	customer := &User{ID: "7", Role: RoleCustomer}
	admin := &User{ID: "1", Role: RoleAdmin}

	cases := []struct {
		name   string
		access Access
		sess   Session
		want   string
	}{
		{"anonymous on user screen", AccessAuthenticated, Session{}, LoginPath},
		{"anonymous on admin screen", AccessAdmin, Session{}, LoginPath},
		{"customer on user screen", AccessAuthenticated, Session{User: customer, Token: "t"}, ""},
		{"customer on admin screen", AccessAdmin, Session{User: customer, Token: "t"}, HomePath},
		{"admin on admin screen", AccessAdmin, Session{User: admin, Token: "t"}, ""},
		{"admin on user screen", AccessAuthenticated, Session{User: admin, Token: "t"}, ""},
		{"unknown role on admin screen", AccessAdmin, Session{User: &User{Role: "Driver"}, Token: "t"}, HomePath},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.access.Evaluate(tc.sess)
			if d.RedirectTo != tc.want {
				t.Fatalf("expected redirect %q, got %q", tc.want, d.RedirectTo)
			}
			if d.Allowed() != (tc.want == "") {
				t.Fatalf("Allowed() disagrees with RedirectTo %q", d.RedirectTo)
			}
		})
	}
}

func TestSession_IsAdminFollowsRole(t *testing.T) {
	u := &User{ID: "1", Role: RoleAdmin}
	s := Session{User: u, Token: "t"}
	if !s.IsAdmin() {
		t.Fatalf("expected admin")
	}
	u.Role = RoleCustomer
	if s.IsAdmin() {
		t.Fatalf("admin flag must be derived from the current role")
	}
}

func TestSession_CloneDoesNotShareUser(t *testing.T) {
	s := Session{User: &User{Name: "Alice"}, Token: "t"}
	c := s.Clone()
	c.User.Name = "Mallory"
	if s.User.Name != "Alice" {
		t.Fatalf("clone shares user memory")
	}
	if (Session{}).Clone().User != nil {
		t.Fatalf("empty clone should stay empty")
	}
}
