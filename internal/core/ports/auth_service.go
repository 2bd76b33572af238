package ports

import (
	"context"

	"github.com/busticket/client/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, in RegisterInput) error
}
