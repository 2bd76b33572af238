package domain

// Session is the identity currently using the client together with the
// bearer credential the backend issued for it. The zero value is the empty
// (anonymous) session.
//
// User and Token are set and cleared together; the session store is the
// only writer and upholds that.
type Session struct {
	User  *User
	Token string
}

// IsAuthenticated reports whether the session carries an identity.
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// IsAdmin is derived from the user's role on every call.
func (s Session) IsAdmin() bool {
	return s.User != nil && s.User.Role == RoleAdmin
}

// Clone returns a copy whose User can be handed out without sharing memory
// with the store.
func (s Session) Clone() Session {
	if s.User == nil {
		return Session{}
	}
	u := *s.User
	return Session{User: &u, Token: s.Token}
}
