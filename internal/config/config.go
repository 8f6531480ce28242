// Package config loads the server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Config contains server configuration parameters.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP     HTTP     `envPrefix:"HTTP_"`
	Store    Store    `envPrefix:"STORE_"`
	Postgres Postgres `envPrefix:"POSTGRES_"`
	SQLite   SQLite   `envPrefix:"SQLITE_"`
	Mongo    Mongo    `envPrefix:"MONGO_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Clerk    Clerk    `envPrefix:"CLERK_"`
	Gemini   Gemini   `envPrefix:"GEMINI_"`
	Stripe   Stripe   `envPrefix:"STRIPE_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Store selects the user store backend.
type Store struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

// Postgres contains PostgreSQL connection parameters.
// InstanceName selects the Cloud SQL unix socket instead of Host and Port.
type Postgres struct {
	Host         string        `env:"HOST" envDefault:"localhost"`
	Port         string        `env:"PORT" envDefault:"5432"`
	User         string        `env:"USER" envDefault:"evolve"`
	Password     string        `env:"PASSWORD"`
	Name         string        `env:"DB" envDefault:"evolve"`
	SSLMode      string        `env:"SSLMODE" envDefault:"disable"`
	InstanceName string        `env:"INSTANCE_CONNECTION_NAME"`
	ConnTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"60s"`
}

// SQLite contains the SQLite database file.
type SQLite struct {
	Path string `env:"PATH" envDefault:"evolve.db"`
}

// Mongo contains MongoDB connection parameters.
type Mongo struct {
	URI      string        `env:"URI"`
	Database string        `env:"DATABASE" envDefault:"evolve"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Redis contains cache parameters. An empty Host disables the cache.
type Redis struct {
	Host     string        `env:"HOST"`
	Port     string        `env:"PORT" envDefault:"6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"1m"`
}

// Enabled reports whether a Redis host is configured.
func (r Redis) Enabled() bool { return r.Host != "" }

// Addr returns host:port.
func (r Redis) Addr() string { return r.Host + ":" + r.Port }

// Clerk contains session token verification parameters.
// Without JWTKey authentication is disabled.
type Clerk struct {
	JWTKey string        `env:"JWT_KEY"`
	Leeway time.Duration `env:"LEEWAY" envDefault:"5s"`
}

// Gemini contains assistant parameters. Without APIKey the assistant route is not mounted.
type Gemini struct {
	APIKey  string        `env:"API_KEY"`
	Model   string        `env:"MODEL" envDefault:"gemini-2.5-flash"`
	BaseURL string        `env:"BASE_URL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
	// RequestsPerMinute caps upstream calls. 0 disables the limit.
	RequestsPerMinute int `env:"REQUESTS_PER_MINUTE" envDefault:"60"`
}

// Stripe contains payment webhook parameters. Without WebhookSecret the webhook route is not mounted.
type Stripe struct {
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// Load reads an optional .env file and then parses the environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return Parse()
}

// Parse parses and validates the environment without reading .env.
func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Postgres.Host == "" && c.Postgres.InstanceName == "" {
			return errors.New("config: POSTGRES_HOST or POSTGRES_INSTANCE_CONNECTION_NAME is required")
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return errors.New("config: SQLITE_PATH is required")
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("config: MONGO_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (want postgres, sqlite or mongo)", c.Store.Driver)
	}
	return nil
}
