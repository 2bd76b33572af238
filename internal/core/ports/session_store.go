package ports

import (
	"context"

	"github.com/busticket/client/internal/core/domain"
)

// SessionReader is all a route guard or a screen needs from the session.
type SessionReader interface {
	Get() domain.Session
}

// SessionStore is the single writer of session state.
type SessionStore interface {
	SessionReader
	Restore(ctx context.Context) domain.Session
	Set(ctx context.Context, user domain.User, token string) error
	Clear(ctx context.Context)
}
