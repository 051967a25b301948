package config

import (
	"fmt"
	"strings"
	"time"

	"ignita/pkg/logger"
	"ignita/pkg/retry"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	ListenAddress  string `env:"LISTEN_ADDRESS,default=:8080"`
	StoreDriver    string `env:"STORE_DRIVER,default=postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
	SQLitePath     string `env:"SQLITE_PATH,default=ignita.db"`
	JWTSecret      string `env:"JWT_SECRET"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	MutationMaxAttempts   int `env:"MUTATION_MAX_ATTEMPTS,default=3"`
	MutationBackoffBaseMS int `env:"MUTATION_BACKOFF_BASE_MS,default=10"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Sugar.Debug("No .env file found, using environment variables from OS")
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", c.StoreDriver)
		}
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.MutationMaxAttempts < 1 {
		return fmt.Errorf("MUTATION_MAX_ATTEMPTS must be at least 1, got %d", c.MutationMaxAttempts)
	}
	if c.MutationBackoffBaseMS < 0 {
		return fmt.Errorf("MUTATION_BACKOFF_BASE_MS must not be negative, got %d", c.MutationBackoffBaseMS)
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.MutationMaxAttempts,
		BaseDelay:   time.Duration(c.MutationBackoffBaseMS) * time.Millisecond,
	}
}
