package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// Storage drivers.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	// Storage
	DataDir          string        `env:"WALLET_DATA_DIR"    envDefault:"wallet_data"`
	StorageDriver    string        `env:"STORAGE_DRIVER"     envDefault:"file"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	DatabaseMaxConns int           `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	DatabaseMinConns int           `env:"DATABASE_MIN_CONNS" envDefault:"1"`
	DatabaseTimeout  time.Duration `env:"DATABASE_TIMEOUT"   envDefault:"30s"`

	// Redis (optional - leave empty to disable the cache)
	RedisURL       string        `env:"REDIS_URL"`
	CacheTTL       time.Duration `env:"CACHE_TTL"       envDefault:"5m"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RateLimitRPS        float64       `env:"RATE_LIMIT_RPS"        envDefault:"10"`
	RateLimitBurst      int           `env:"RATE_LIMIT_BURST"      envDefault:"20"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Authentication (required by the HTTP server only)
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`

	// Wallet policy
	DailyInterestRate string `env:"DAILY_INTEREST_RATE" envDefault:"0.0005"`
	DailyLimit        string `env:"DAILY_LIMIT"         envDefault:"20000"`
	Timezone          string `env:"TIMEZONE"            envDefault:"Local"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageFile:
		if c.DataDir == "" {
			return errors.New("WALLET_DATA_DIR must not be empty")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Policy returns the default ledger policy with configured overrides.
func (c *Config) Policy() (domain.Policy, error) {
	p := domain.DefaultPolicy()

	rate, err := decimal.NewFromString(c.DailyInterestRate)
	if err != nil || rate.IsNegative() {
		return p, fmt.Errorf("invalid DAILY_INTEREST_RATE %q", c.DailyInterestRate)
	}
	p.DailyInterestRate = rate

	limit, err := decimal.NewFromString(c.DailyLimit)
	if err != nil || !limit.IsPositive() {
		return p, fmt.Errorf("invalid DAILY_LIMIT %q", c.DailyLimit)
	}
	p.DefaultDailyLimit = limit

	return p, nil
}

// Location returns the time zone calendar days are computed in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
