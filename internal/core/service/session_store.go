package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

// Durable storage keys. Both must be present for a session to be restored.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

const defaultStorageTimeout = 3 * time.Second

// SessionStore is the single source of truth for who is using the client.
// The in-memory session is authoritative; durable storage is a best-effort
// mirror used to survive restarts.
type SessionStore struct {
	mu      sync.RWMutex
	session domain.Session

	storage ports.KeyValueStore
	timeout time.Duration
	log     zerolog.Logger
}

// NewSessionStore returns an empty store. Call Restore once before serving.
func NewSessionStore(storage ports.KeyValueStore, timeout time.Duration, log zerolog.Logger) *SessionStore {
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	return &SessionStore{storage: storage, timeout: timeout, log: log}
}

// Get returns a copy of the current session. Before Restore it is empty.
func (s *SessionStore) Get() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

// Restore loads the durable record into memory. A missing, partial or
// corrupt record yields the empty session; it is never an error.
func (s *SessionStore) Restore(ctx context.Context) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	values, err := s.storage.Load(ctx, KeyUser, KeyToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("session storage unavailable, starting anonymous")
		s.session = domain.Session{}
		return s.session
	}
	if len(values) == 0 {
		s.session = domain.Session{}
		return s.session
	}

	sess, err := decodeRecord(values)
	if err != nil {
		s.log.Debug().Err(err).Msg("discarding stored session")
		if rmErr := s.storage.Remove(ctx, KeyUser, KeyToken); rmErr != nil {
			s.log.Warn().Err(rmErr).Msg("failed to remove corrupt session record")
		}
		s.session = domain.Session{}
		return s.session
	}

	s.session = sess
	s.log.Info().Str("user_id", sess.User.ID.String()).Str("role", string(sess.User.Role)).Msg("session restored")
	return s.session.Clone()
}

// Set replaces the session and mirrors it to durable storage. Only a call
// that would break the user/token pairing is rejected; storage failures are
// logged and the in-memory session still takes effect.
func (s *SessionStore) Set(ctx context.Context, user domain.User, token string) error {
	if token == "" {
		return domain.ErrInvalidSession
	}
	entries, err := encodeRecord(user, token)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := user
	s.session = domain.Session{User: &u, Token: token}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.storage.Store(ctx, entries); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist session")
	}
	return nil
}

// Clear drops the session from memory and durable storage.
func (s *SessionStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = domain.Session{}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.storage.Remove(ctx, KeyUser, KeyToken); err != nil {
		s.log.Warn().Err(err).Msg("failed to remove persisted session")
	}
}

func encodeRecord(user domain.User, token string) (map[string]string, error) {
	u, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	t, err := json.Marshal(token)
	if err != nil {
		return nil, err
	}
	return map[string]string{KeyUser: string(u), KeyToken: string(t)}, nil
}

func decodeRecord(values map[string]string) (domain.Session, error) {
	rawUser, okUser := values[KeyUser]
	rawToken, okToken := values[KeyToken]
	if !okUser || !okToken {
		return domain.Session{}, fmt.Errorf("%w: partial record", domain.ErrSessionCorrupt)
	}

	var token string
	if err := json.Unmarshal([]byte(rawToken), &token); err != nil || token == "" {
		return domain.Session{}, fmt.Errorf("%w: token", domain.ErrSessionCorrupt)
	}
	var user *domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user == nil {
		return domain.Session{}, fmt.Errorf("%w: user", domain.ErrSessionCorrupt)
	}
	return domain.Session{User: user, Token: token}, nil
}
