// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration.
type Config struct {
	Port       int    `env:"PORT"        envDefault:"8080"`
	DBPath     string `env:"DB_PATH"     envDefault:"./data/mess.db"`
	StaticPath string `env:"STATIC_PATH" envDefault:"../frontend/static"`
	LogLevel   string `env:"LOG_LEVEL"   envDefault:"info"`

	// JWTSecret signs session tokens. When empty the server generates a
	// random secret, so tokens do not survive a restart.
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// AdminKey, when set, is written to config/secrets at startup.
	AdminKey string `env:"ADMIN_KEY"`

	DuesPerMember     float64 `env:"DUES_PER_MEMBER"    envDefault:"200"`
	FanoutConcurrency int     `env:"FANOUT_CONCURRENCY" envDefault:"8"`

	RegisterRatePerMinute float64 `env:"REGISTER_RATE_PER_MINUTE" envDefault:"10"`
	RegisterBurst         int     `env:"REGISTER_BURST"           envDefault:"5"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be served.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.DuesPerMember < 0 {
		errs = append(errs, errors.New("DUES_PER_MEMBER must not be negative"))
	}
	if c.FanoutConcurrency <= 0 {
		errs = append(errs, errors.New("FANOUT_CONCURRENCY must be positive"))
	}
	if c.RegisterRatePerMinute <= 0 || c.RegisterBurst <= 0 {
		errs = append(errs, errors.New("registration rate and burst must be positive"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
