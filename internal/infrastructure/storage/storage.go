// Package storage selects and opens the durable key/value store that mirrors
// the client session.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/busticket/client/internal/core/ports"
	"github.com/busticket/client/internal/infrastructure/db/mongo"
	"github.com/busticket/client/internal/infrastructure/db/redis"
)

// Supported drivers.
const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

type Config struct {
	Driver  string
	Path    string
	Timeout time.Duration

	RedisAddr string
	RedisDB   int

	MongoURI string
	MongoDB  string
}

// Open connects the configured driver. The returned closer is never nil.
func Open(ctx context.Context, cfg Config) (ports.KeyValueStore, io.Closer, error) {
	switch cfg.Driver {
	case "", DriverFile:
		f, err := NewFile(cfg.Path)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return f, nopCloser{}, nil

	case DriverMemory:
		return NewMemory(), nopCloser{}, nil

	case DriverRedis:
		s, err := redis.Open(ctx, redis.Config{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Timeout: cfg.Timeout})
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil

	case DriverMongo:
		s, err := mongo.Open(ctx, mongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDB, Timeout: cfg.Timeout})
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil

	default:
		return nil, nopCloser{}, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
