package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/lukman83/skinscout/internal/transport"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "SKINSCOUT_"

// Config holds all application configuration.
type Config struct {
	// Catalog sources
	CatalogURL     string   `env:"CATALOG_URL" validate:"required,url"`
	BeautyFactsURL string   `env:"BEAUTYFACTS_URL" validate:"required,url"`
	FallbackBrands []string `env:"FALLBACK_BRANDS" envSeparator:"," validate:"dive,required"`

	// Outbound requests
	SearchTimeout time.Duration `env:"SEARCH_TIMEOUT" validate:"gt=0"`
	UserAgent     string        `env:"USER_AGENT"`
	RespectRobots bool          `env:"RESPECT_ROBOTS"`
	DelayProfile  string        `env:"DELAY_PROFILE" validate:"delay_profile"`
	ProxyURL      string        `env:"PROXY_URL" validate:"omitempty,url"`

	// Rate limiting
	RatePerSecond float64 `env:"RATE_PER_SECOND" validate:"gt=0"`
	RateBurst     int     `env:"RATE_BURST" validate:"gte=1"`
	MaxConcurrent int     `env:"MAX_CONCURRENT" validate:"gte=1"`

	// Storage
	DBPath string `env:"DB_PATH" validate:"required"`

	// HTTP server
	HTTPPort string `env:"HTTP_PORT" validate:"required,numeric"`
	APIKey   string `env:"API_KEY"`

	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CatalogURL:     "https://makeup-api.herokuapp.com",
		BeautyFactsURL: "https://world.openbeautyfacts.org",
		FallbackBrands: []string{"clinique", "maybelline", "revlon", "l'oreal", "nyx"},
		SearchTimeout:  30 * time.Second,
		RespectRobots:  true,
		DelayProfile:   "normal",
		RatePerSecond:  2.0,
		RateBurst:      3,
		MaxConcurrent:  3,
		DBPath:         defaultDBPath(),
		HTTPPort:       "8080",
		LogLevel:       "info",
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "products.db"
	}
	return filepath.Join(home, ".skinscout", "products.db")
}

// LoadFromEnv loads .env file (if present) then overrides config from
// SKINSCOUT_* environment variables. PORT is honoured for hosted deployments.
func (c *Config) LoadFromEnv() error {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	return nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("delay_profile", func(fl validator.FieldLevel) bool {
		return transport.ValidProfile(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register validation: %w", err)
	}
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Errorf("%s: failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %w", errors.Join(msgs...))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
