// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components through
their constructors. No package keeps it in a global.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the BookGod API server.
type Config struct {

	// Server settings
	ServerPort       string `env:"SERVER_PORT"        envDefault:"8080"`
	Environment      string `env:"ENVIRONMENT"        envDefault:"development"`
	Debug            bool   `env:"DEBUG"              envDefault:"false"`
	CORSOriginSuffix string `env:"CORS_ORIGIN_SUFFIX" envDefault:"bookgod.app"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL     string        `env:"REDIS_URL,required"`
	BookCacheTTL time.Duration `env:"BOOK_CACHE_TTL" envDefault:"5m"`

	// Cryptographic keys for identity signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Object Storage (MinIO / S3-compatible)
	MinioEndpoint  string        `env:"MINIO_ENDPOINT"   envDefault:"localhost:9000"`
	MinioAccessKey string        `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string        `env:"MINIO_SECRET_KEY"`
	MinioBucket    string        `env:"MINIO_BUCKET"     envDefault:"bookgod-artwork"`
	MinioUseSSL    bool          `env:"MINIO_USE_SSL"    envDefault:"false"`
	ArtworkURLTTL  time.Duration `env:"ARTWORK_URL_TTL"  envDefault:"15m"`

	// Checkout
	CheckoutTTL          time.Duration `env:"CHECKOUT_TTL"           envDefault:"30m"`
	CheckoutCurrency     string        `env:"CHECKOUT_CURRENCY"      envDefault:"INR"`
	CheckoutExchangeRate float64       `env:"CHECKOUT_EXCHANGE_RATE" envDefault:"82"`
	PublicBaseURL        string        `env:"PUBLIC_BASE_URL"        envDefault:"http://localhost:3000"`

	// Scheduled maintenance (cron spec syntax, robfig/cron)
	SessionPurgeSchedule string `env:"SESSION_PURGE_SCHEDULE" envDefault:"@every 1h"`
	RatingRepairSchedule string `env:"RATING_REPAIR_SCHEDULE" envDefault:"@daily"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.CheckoutExchangeRate <= 0 {
		return nil, fmt.Errorf("config: CHECKOUT_EXCHANGE_RATE must be positive, got %v", cfg.CheckoutExchangeRate)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOriginSuffix is the domain suffix accepted by CORS outside development.
func (c *Config) AllowedOriginSuffix() string {
	return c.CORSOriginSuffix
}
