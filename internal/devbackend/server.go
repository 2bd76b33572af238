// Package devbackend is a small in-memory implementation of the booking
// backend API. It exists so the client can be run and tested end to end
// without the real service.
package devbackend

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/api/handler"
	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/infrastructure/http/handlers"
)

type Config struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	// SeedDemo adds a bus, a route and a schedule departing tomorrow.
	SeedDemo bool
}

// Server bundles the echo instance with the store behind it.
type Server struct {
	Echo  *echo.Echo
	Store *Store
	Auth  *Authenticator
}

// New builds the backend and seeds the admin account.
func New(cfg Config, log zerolog.Logger) (*Server, error) {
	store := NewStore()
	auth := NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL)

	if cfg.AdminEmail != "" {
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
		if _, err := store.CreateUser(domain.User{Name: "Administrator", Email: cfg.AdminEmail, Role: domain.RoleAdmin}, hash); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}
	if cfg.SeedDemo {
		if err := seedDemo(store, time.Now()); err != nil {
			return nil, err
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	h := NewHandler(store, auth, log)
	health := handlers.NewHealthHandler()
	e.GET("/health", health.Liveness)

	api := e.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/search", h.Search)
	api.HEAD("/search", h.Search)

	user := api.Group("", Bearer(auth))
	user.POST("/book", h.Book)
	user.POST("/cancel", h.Cancel)
	user.GET("/bookings/:userId", h.ListBookings)
	user.GET("/booking/:id", h.BookingDetails)

	admin := api.Group("/admin", Bearer(auth), RequireRole(domain.RoleAdmin))
	admin.POST("/:kind", h.CreateResource)
	admin.PUT("/schedule/:id", h.UpdateSchedule)
	admin.DELETE("/:kind/:id", h.DeleteResource)

	return &Server{Echo: e, Store: store, Auth: auth}, nil
}

func seedDemo(store *Store, now time.Time) error {
	busID := store.AddBus(domain.BusInput{RegNumber: "KA-01-F-1234", BusType: "AC Sleeper", TotalSeats: 40})
	routeID := store.AddRoute(domain.RouteInput{Source: "Bangalore", Destination: "Chennai", DistanceKm: 346})

	day := now.AddDate(0, 0, 1)
	dep := time.Date(day.Year(), day.Month(), day.Day(), 21, 30, 0, 0, time.Local)
	_, err := store.AddSchedule(domain.ScheduleInput{
		BusID:         busID,
		RouteID:       routeID,
		DepartureTime: dep.Format(timeLayout),
		ArrivalTime:   dep.Add(6 * time.Hour).Format(timeLayout),
		Fare:          850,
	})
	if err != nil {
		return fmt.Errorf("seed demo schedule: %w", err)
	}
	return nil
}
