// Command busticket runs the bus ticket booking client as a local web app.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/busticket/client/internal/api"
	"github.com/busticket/client/internal/core/service"
	"github.com/busticket/client/internal/infrastructure/backend"
	"github.com/busticket/client/internal/infrastructure/config"
	"github.com/busticket/client/internal/infrastructure/http/handlers"
	"github.com/busticket/client/internal/infrastructure/storage"
	"github.com/busticket/client/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "busticket",
	})

	ctx := context.Background()

	kv, closer, err := storage.Open(ctx, storage.Config{
		Driver:    cfg.Storage.Driver,
		Path:      cfg.Storage.Path,
		Timeout:   cfg.Storage.Timeout,
		RedisAddr: cfg.Storage.RedisAddr,
		RedisDB:   cfg.Storage.RedisDB,
		MongoURI:  cfg.Storage.MongoURI,
		MongoDB:   cfg.Storage.MongoDB,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open session storage")
	}
	defer closer.Close()

	sessions := service.NewSessionStore(kv, cfg.Storage.Timeout, logger.Component("session"))
	// The session must be known before the first request is guarded.
	sess := sessions.Restore(ctx)
	log.Info().Bool("authenticated", sess.IsAuthenticated()).Msg("session state loaded")

	client := backend.NewClient(nil, backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
		RPS:     cfg.Backend.RPS,
	}, logger.Component("backend"))

	router, err := api.NewRouter(api.Deps{
		Sessions: sessions,
		Auth:     service.NewAuthService(client, sessions, logger.Component("auth")),
		Bookings: service.NewBookingService(client, sessions, logger.Component("booking")),
		Admin:    service.NewAdminService(client, sessions, logger.Component("admin")),
		Ready: map[string]handlers.Pinger{
			"storage": kv,
			"backend": client,
		},
		Registerer:   prometheus.DefaultRegisterer,
		Gatherer:     prometheus.DefaultGatherer,
		AllowedHosts: cfg.AllowedHosts,
		Log:          logger.Component("http"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("backend", cfg.Backend.URL).Msg("client starting")
		if err := router.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server listen error")
		}
	}()

	<-stop
	log.Info().Msg("shutting down client...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
