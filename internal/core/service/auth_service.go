package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

// AuthService implements login, logout and registration against the remote
// backend. Login is the only operation that establishes a session.
type AuthService struct {
	backend ports.AuthBackend
	store   ports.SessionStore
	log     zerolog.Logger

	// seq orders login attempts and logouts; a login whose ticket is no
	// longer the latest when its response arrives is discarded.
	mu  sync.Mutex
	seq uint64
}

func NewAuthService(backend ports.AuthBackend, store ports.SessionStore, log zerolog.Logger) *AuthService {
	return &AuthService{backend: backend, store: store, log: log}
}

// Login authenticates against the backend and, on success, establishes the
// session. The returned user lets the caller branch on role right away.
//
// Every failure is an *domain.AuthenticationError (or ErrLoginSuperseded)
// and leaves the session untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.NewAuthenticationError(errors.New("missing credentials"))
	}

	ticket := s.nextTicket()

	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.log.Warn().Err(err).Msg("login rejected")
		return nil, domain.NewAuthenticationError(err)
	}
	if res == nil || res.User == nil || res.Token == "" {
		s.log.Warn().Msg("login response missing user or token")
		return nil, domain.NewAuthenticationError(errors.New("incomplete login response"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.seq {
		s.log.Info().Msg("discarding stale login response")
		return nil, domain.ErrLoginSuperseded
	}
	if err := s.store.Set(ctx, *res.User, res.Token); err != nil {
		return nil, domain.NewAuthenticationError(err)
	}

	s.log.Info().Str("user_id", res.User.ID.String()).Str("role", string(res.User.Role)).Msg("logged in")
	user := *res.User
	return &user, nil
}

// Logout clears the session. It never fails and makes no remote call. Any
// login still in flight is superseded.
func (s *AuthService) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.store.Clear(ctx)
	s.log.Info().Msg("logged out")
}

// Register creates an account. It never establishes a session; the caller
// has to log in separately.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) error {
	if err := s.backend.Register(ctx, in); err != nil {
		var apiErr *ports.APIError
		if errors.As(err, &apiErr) {
			s.log.Info().Int("status", apiErr.StatusCode).Msg("registration rejected")
			return domain.NewRegistrationError(apiErr.Message, err)
		}
		s.log.Warn().Err(err).Msg("registration failed")
		return domain.NewRegistrationError("", err)
	}
	s.log.Info().Msg("account registered")
	return nil
}

func (s *AuthService) nextTicket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}
