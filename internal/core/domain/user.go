package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Role is the backend's userType discriminator.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleAdmin    Role = "Admin"
)

// UserID is the backend's opaque user identifier. It is usually numeric on
// the wire but strings are accepted and round-trip unchanged.
type UserID string

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = UserID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as JSON numbers, anything else as a string.
func (id UserID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id UserID) String() string { return string(id) }

// User is the identity record returned by the backend at login.
type User struct {
	ID    UserID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"userType"`
	Phone string `json:"phone,omitempty"`
}
