// Package redis keeps the client's durable session record in Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for the Redis session storage.
type Config struct {
	Addr string
	DB   int
	// Prefix namespaces the keys; empty means "busticket:".
	Prefix  string
	Timeout time.Duration
}

// Open dials Redis, checks it answers and returns a Store over it. Every
// socket operation is bounded by cfg.Timeout so a stalled server cannot hang
// a login or logout.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	s := NewStore(redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}), cfg.Prefix)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("redis storage at %s: %w", cfg.Addr, err)
	}
	return s, nil
}
