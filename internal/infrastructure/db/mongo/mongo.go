// Package mongo keeps the client's durable session record in a MongoDB
// collection.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultDatabase = "busticket"
	appName         = "busticket-client"
)

// Config captures the settings for the MongoDB session storage.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Open connects, pings the primary and returns a Store on the configured
// database. Server selection is bounded by cfg.Timeout.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	database := cfg.Database
	if database == "" {
		database = defaultDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(timeout).
		SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo storage connect: %w", err)
	}

	s := NewStore(client.Database(database))
	if err := s.Ping(connectCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("mongo storage ping: %w", err)
	}
	return s, nil
}
