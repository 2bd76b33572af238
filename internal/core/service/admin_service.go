package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

// AdminService forwards admin console actions to the backend with the
// signed-in admin's token. Authorization itself is the backend's call; the
// admin guard only keeps customers off the screen.
type AdminService struct {
	backend  ports.AdminBackend
	sessions ports.SessionReader
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAdminService(backend ports.AdminBackend, sessions ports.SessionReader, log zerolog.Logger) *AdminService {
	return &AdminService{backend: backend, sessions: sessions, validate: validator.New(), log: log}
}

func (s *AdminService) AddBus(ctx context.Context, in domain.BusInput) (string, error) {
	return s.create(ctx, domain.ResourceBus, in)
}

func (s *AdminService) AddRoute(ctx context.Context, in domain.RouteInput) (string, error) {
	return s.create(ctx, domain.ResourceRoute, in)
}

func (s *AdminService) AddSchedule(ctx context.Context, in domain.ScheduleInput) (string, error) {
	return s.create(ctx, domain.ResourceSchedule, in)
}

func (s *AdminService) UpdateSchedule(ctx context.Context, id int64, in domain.ScheduleUpdate) (string, error) {
	token, err := s.token()
	if err != nil {
		return "", err
	}
	if err := s.validate.Struct(in); err != nil {
		return "", err
	}
	msg, err := s.backend.UpdateResource(ctx, token, domain.ResourceSchedule, id, in)
	if err != nil {
		return "", fmt.Errorf("update schedule %d: %w", id, err)
	}
	s.log.Info().Int64("schedule_id", id).Msg("schedule updated")
	return msg, nil
}

func (s *AdminService) Delete(ctx context.Context, kind string, id int64) (string, error) {
	if !domain.ValidResourceKind(kind) {
		return "", domain.ErrInvalidResourceKind
	}
	token, err := s.token()
	if err != nil {
		return "", err
	}
	msg, err := s.backend.DeleteResource(ctx, token, kind, id)
	if err != nil {
		return "", fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	s.log.Info().Str("kind", kind).Int64("id", id).Msg("resource deleted")
	return msg, nil
}

func (s *AdminService) create(ctx context.Context, kind string, in any) (string, error) {
	token, err := s.token()
	if err != nil {
		return "", err
	}
	if err := s.validate.Struct(in); err != nil {
		return "", err
	}
	msg, err := s.backend.CreateResource(ctx, token, kind, in)
	if err != nil {
		return "", fmt.Errorf("add %s: %w", kind, err)
	}
	s.log.Info().Str("kind", kind).Msg("resource added")
	return msg, nil
}

func (s *AdminService) token() (string, error) {
	sess := s.sessions.Get()
	if !sess.IsAuthenticated() {
		return "", domain.ErrNotAuthenticated
	}
	return sess.Token, nil
}
