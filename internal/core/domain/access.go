package domain

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Access is the privilege level a screen requires.
type Access int

const (
	AccessAuthenticated Access = iota
	AccessAdmin
)

func (a Access) String() string {
	switch a {
	case AccessAdmin:
		return "admin"
	default:
		return "authenticated"
	}
}

// Decision is the outcome of evaluating an Access policy against a session.
// A zero RedirectTo means the requested screen may be rendered.
type Decision struct {
	RedirectTo string
}

// Allowed reports whether the screen may be rendered.
func (d Decision) Allowed() bool { return d.RedirectTo == "" }

// Evaluate decides whether a session may see a screen guarded by a. It is a
// pure function of its inputs:
//
//	no user                      → redirect to /login
//	admin required, not an admin → redirect to /
//	otherwise                    → render
func (a Access) Evaluate(s Session) Decision {
	if s.User == nil {
		return Decision{RedirectTo: LoginPath}
	}
	if a == AccessAdmin && !s.IsAdmin() {
		return Decision{RedirectTo: HomePath}
	}
	return Decision{}
}
