package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/busticket/client/internal/api/docs"
	"github.com/busticket/client/internal/api/handler"
	"github.com/busticket/client/internal/api/middleware"
	"github.com/busticket/client/internal/api/view"
	"github.com/busticket/client/internal/core/ports"
	"github.com/busticket/client/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions ports.SessionReader
	Auth     ports.AuthService
	Bookings ports.BookingService
	Admin    ports.AdminService

	// Ready lists the dependencies checked by /health/ready.
	Ready map[string]handlers.Pinger

	// Registerer receives the HTTP metrics and Gatherer serves /metrics.
	// Either may be nil to skip that part.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// AllowedHosts restricts the Host header; empty accepts any host.
	AllowedHosts []string

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Sessions, d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	if d.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "busticket",
			Registerer: d.Registerer,
		}))
	}
	e.Use(middleware.SameOrigin(d.AllowedHosts))
	e.Use(middleware.CSRF())

	authHandler := handler.NewAuthHandler(d.Auth, d.Sessions, d.Log)
	bookingHandler := handler.NewBookingHandler(d.Bookings, d.Sessions, d.Log)
	adminHandler := handler.NewAdminHandler(d.Admin, d.Bookings, d.Sessions, d.Log)

	requireUser := middleware.RequireAuthenticated(d.Sessions)
	requireAdmin := middleware.RequireAdmin(d.Sessions)

	// --- Public pages ---
	e.GET("/", bookingHandler.Home)
	e.GET("/search", bookingHandler.Search)
	e.POST("/search/select", bookingHandler.SelectSeats)
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.GET("/register", authHandler.RegisterPage)
	e.POST("/register", authHandler.Register)
	e.POST("/logout", authHandler.Logout)

	// --- Customer pages ---
	e.GET("/bookings", bookingHandler.Bookings, requireUser)
	e.GET("/bookings/export", bookingHandler.Export, requireUser)
	e.POST("/bookings/:id/cancel", bookingHandler.Cancel, requireUser)
	e.GET("/book/passengers", bookingHandler.PassengerForm, requireUser)
	e.POST("/book/passengers", bookingHandler.Book, requireUser)
	e.GET("/ticket/:id", bookingHandler.Ticket, requireUser)
	e.GET("/profile", bookingHandler.Profile, requireUser)

	// --- Admin console ---
	admin := e.Group("/admin", requireAdmin)
	admin.GET("", adminHandler.Dashboard)
	admin.POST("/bus", adminHandler.AddBus)
	admin.POST("/route", adminHandler.AddRoute)
	admin.POST("/schedule", adminHandler.AddSchedule)
	admin.POST("/schedule/:id", adminHandler.UpdateSchedule)
	admin.POST("/delete", adminHandler.Delete)

	// --- JSON session API ---
	api := e.Group("/api")
	api.GET("/session", authHandler.SessionJSON)
	api.POST("/auth/login", authHandler.LoginJSON)
	api.POST("/auth/logout", authHandler.LogoutJSON)
	api.POST("/auth/register", authHandler.RegisterJSON)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes and metrics (no guard) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Ready)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	if d.Gatherer != nil {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	}

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
