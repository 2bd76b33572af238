// Command devbackend runs an in-memory booking backend for local development.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/busticket/client/internal/devbackend"
	"github.com/busticket/client/internal/infrastructure/config"
	"github.com/busticket/client/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "devbackend",
	})

	srv, err := devbackend.New(devbackend.Config{
		JWTSecret:     cfg.Dev.JWTSecret,
		TokenTTL:      cfg.Dev.TokenTTL,
		AdminEmail:    cfg.Dev.AdminEmail,
		AdminPassword: cfg.Dev.AdminPassword,
		SeedDemo:      true,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build dev backend")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", ":"+cfg.Dev.Port).Str("admin", cfg.Dev.AdminEmail).Msg("dev backend starting")
		if err := srv.Echo.Start(":" + cfg.Dev.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server listen error")
		}
	}()

	<-stop
	log.Info().Msg("shutting down dev backend...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
