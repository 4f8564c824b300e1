package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the demo backend
type Config struct {
	// Identity
	AppName     string `env:"APP_NAME" envDefault:"Demo Backend"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`

	// Server configuration
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"9090"`
	GRPCEnabled bool   `env:"GRPC_ENABLED" envDefault:"true"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	SeedData    bool   `env:"SEED_DATA" envDefault:"true"`

	MaxBodyBytes       int64    `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Downstream database service
	Database DatabaseConfig

	// Event bus
	Events EventsConfig

	// Redis configuration, used by the redis event bus
	Redis RedisConfig

	ShutdownTimeout time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// DatabaseConfig holds settings for the downstream database service
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL" envDefault:"http://demo-database:8080"`
	StatusTimeout   time.Duration `env:"DB_STATUS_TIMEOUT" envDefault:"5s"`
	QueryTimeout    time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"10s"`
	MonitorInterval time.Duration `env:"DB_MONITOR_INTERVAL" envDefault:"30s"`

	// QueryRateLimit is requests per second for /api/db/query; 0 disables
	QueryRateLimit float64 `env:"DB_QUERY_RATE_LIMIT" envDefault:"0"`
	QueryBurst     int     `env:"DB_QUERY_BURST" envDefault:"10"`
}

// EventsConfig selects the event bus
type EventsConfig struct {
	Backend string `env:"EVENTS_BACKEND" envDefault:"memory"`
	Prefix  string `env:"EVENTS_PREFIX" envDefault:"demo-backend"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Event bus backends
const (
	EventsBackendMemory = "memory"
	EventsBackendRedis  = "redis"
)

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCEnabled && (c.GRPCPort < 1 || c.GRPCPort > 65535) {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}

	u, err := url.Parse(c.Database.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid DATABASE_URL: %q", c.Database.URL)
	}
	if c.Database.StatusTimeout <= 0 || c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("database timeouts must be positive")
	}
	if c.Database.MonitorInterval < 0 {
		return fmt.Errorf("database monitor interval must not be negative")
	}
	if c.Database.QueryRateLimit < 0 {
		return fmt.Errorf("query rate limit must not be negative")
	}
	if c.Database.QueryRateLimit > 0 && c.Database.QueryBurst < 1 {
		return fmt.Errorf("query burst must be at least 1")
	}

	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("max body bytes must be positive")
	}

	switch c.Events.Backend {
	case EventsBackendMemory:
	case EventsBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis event bus")
		}
	default:
		return fmt.Errorf("unsupported events backend: %s (must be memory or redis)", c.Events.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
