package domain

import (
	"encoding/json"
	"testing"
)

func TestUserID_JSON(t *testing.T) {
	cases := []struct {
		in        string
		want      UserID
		roundTrip string
	}{
		{`42`, "42", `42`},
		{`"42"`, "42", `42`},
		{`"u-9f"`, "u-9f", `"u-9f"`},
		{`null`, "", `""`},
	}

	for _, tc := range cases {
		var id UserID
		if err := json.Unmarshal([]byte(tc.in), &id); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tc.in, err)
		}
		if id != tc.want {
			t.Fatalf("Unmarshal(%s) = %q, want %q", tc.in, id, tc.want)
		}
		out, err := json.Marshal(id)
		if err != nil {
			t.Fatalf("Marshal(%q): %v", id, err)
		}
		if string(out) != tc.roundTrip {
			t.Fatalf("Marshal(%q) = %s, want %s", id, out, tc.roundTrip)
		}
	}
}

func TestUser_DecodeBackendRecord(t *testing.T) {
	raw := `{"id":3,"name":"Admin","email":"admin@busticket.local","userType":"Admin","phone":"555"}`
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if u.ID != "3" || u.Role != RoleAdmin || u.Phone != "555" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestAuthenticationError_IsGeneric(t *testing.T) {
	err := NewAuthenticationError(json.Unmarshal([]byte("{"), &struct{}{}))
	if err.Error() != "invalid email or password" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err.Unwrap() == nil {
		t.Fatalf("cause should be kept for logging")
	}
	if !IsAuthenticationError(err) {
		t.Fatalf("IsAuthenticationError = false")
	}
}
