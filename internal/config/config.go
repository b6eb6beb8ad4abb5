package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Prefix is the environment variable prefix, e.g. EVENTFINDER_HTTP_PORT.
const Prefix = "EVENTFINDER"

const devSessionSecret = "dev-only-session-secret-change-me"

// Config holds the configuration for the event service.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage: memory, sqlite or postgres
	DBDriver    string `envconfig:"DB_DRIVER" default:"memory"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/eventfinder.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Sessions
	SessionSecret string        `envconfig:"SESSION_SECRET" default:""`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`
	BcryptCost    int           `envconfig:"BCRYPT_COST" default:"10"`

	// Event cache
	EventCacheSize int           `envconfig:"EVENT_CACHE_SIZE" default:"2048"`
	EventCacheTTL  time.Duration `envconfig:"EVENT_CACHE_TTL" default:"6h"`

	// External event source (OpenAI-compatible chat completions)
	EventSourceURL     string        `envconfig:"EVENT_SOURCE_URL" default:"https://api.openai.com/v1"`
	EventSourceAPIKey  string        `envconfig:"EVENT_SOURCE_API_KEY" default:""`
	EventSourceModel   string        `envconfig:"EVENT_SOURCE_MODEL" default:"gpt-4o-mini"`
	EventSourceTimeout time.Duration `envconfig:"EVENT_SOURCE_TIMEOUT" default:"60s"`

	// Activity publishing; empty disables NATS and activity is only logged
	NATSURL   string `envconfig:"NATS_URL" default:""`
	BusBuffer int    `envconfig:"BUS_BUFFER" default:"1024"`

	// Health
	HealthInterval     time.Duration `envconfig:"HEALTH_INTERVAL" default:"30s"`
	HealthProbeTimeout time.Duration `envconfig:"HEALTH_PROBE_TIMEOUT" default:"2s"`
	StartupTimeout     time.Duration `envconfig:"STARTUP_TIMEOUT" default:"60s"`
}

// ResolveDefaults validates the driver selection and fills values that depend on the environment.
func (c *Config) ResolveDefaults() error {
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}

	allowedDB := map[string]bool{"memory": true, "sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER=postgres")
	}
	if c.DBDriver == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=sqlite")
	}

	if c.SessionSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("SESSION_SECRET is required in production")
		}
		c.SessionSecret = devSessionSecret
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.EventCacheSize <= 0 {
		return fmt.Errorf("EVENT_CACHE_SIZE must be positive")
	}
	if c.HealthInterval <= 0 {
		c.HealthInterval = 30 * time.Second
	}
	return nil
}

// New creates a new Config from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
// Example: EVENTFINDER_DB_DRIVER=sqlite, EVENTFINDER_HTTP_PORT=9000
func New() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Dur("session_ttl", cfg.SessionTTL).
		Int("event_cache_size", cfg.EventCacheSize).
		Dur("event_cache_ttl", cfg.EventCacheTTL).
		Str("event_source_url", cfg.EventSourceURL).
		Str("event_source_model", cfg.EventSourceModel).
		Bool("event_source_key_present", cfg.EventSourceAPIKey != "").
		Bool("nats_enabled", cfg.NATSURL != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates an in-memory config with fast hashing and short intervals.
func NewForTesting() *Config {
	return &Config{
		Environment:        EnvTesting,
		LogLevel:           "debug",
		HTTPPort:           8080,
		DBDriver:           "memory",
		SessionSecret:      "test-secret",
		SessionTTL:         time.Hour,
		BcryptCost:         4,
		EventCacheSize:     128,
		EventCacheTTL:      time.Hour,
		EventSourceURL:     "http://127.0.0.1:0",
		EventSourceModel:   "test-model",
		EventSourceTimeout: 5 * time.Second,
		BusBuffer:          64,
		HealthInterval:     50 * time.Millisecond,
		HealthProbeTimeout: time.Second,
		StartupTimeout:     5 * time.Second,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
