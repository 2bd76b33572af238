// Package config loads process configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// Host is the listen address. The session belongs to whoever reaches the
	// port, so it stays on loopback unless set explicitly.
	Host     string `env:"HOST,      default=127.0.0.1"`
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// AllowedHosts lists the Host header values pages may be served under.
	AllowedHosts []string `env:"ALLOWED_HOSTS,default=localhost,127.0.0.1,::1"`

	Backend BackendConfig
	Storage StorageConfig
	Dev     DevConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8080/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
	RPS     float64       `env:"BACKEND_RPS,     default=10"`
}

type StorageConfig struct {
	Driver  string        `env:"STORAGE_DRIVER,  default=file"`
	Path    string        `env:"STORAGE_PATH"`
	Timeout time.Duration `env:"STORAGE_TIMEOUT, default=3s"`

	RedisAddr string `env:"REDIS_ADDR, default=localhost:6379"`
	RedisDB   int    `env:"REDIS_DB,   default=0"`

	MongoURI string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB,  default=busticket"`
}

// DevConfig is only read by the development backend.
type DevConfig struct {
	Port          string        `env:"DEV_PORT,           default=8080"`
	JWTSecret     string        `env:"JWT_SECRET,         default=dev-secret-change-me"`
	AdminEmail    string        `env:"DEV_ADMIN_EMAIL,    default=admin@busticket.local"`
	AdminPassword string        `env:"DEV_ADMIN_PASSWORD, default=admin123"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,          default=24h"`
}

// Addr is the host:port the client listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads a .env file when one exists, then the environment. It panics on
// invalid configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("config: failed to read .env: %v", err))
	}
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "file", "memory", "redis", "mongo":
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of file, memory, redis, mongo; got %q", c.Storage.Driver)
	}
	if len(c.AllowedHosts) == 0 {
		return fmt.Errorf("ALLOWED_HOSTS must name at least one host")
	}
	if c.Backend.RPS < 0 {
		return fmt.Errorf("BACKEND_RPS must not be negative")
	}
	return nil
}
