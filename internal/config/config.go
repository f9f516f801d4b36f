// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the catalog service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Storage backends accepted by CATALOG_STORAGE.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageMySQL    = "mysql"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageS3       = "s3"
)

// Tracing exporters accepted by CATALOG_TRACING.
const (
	TracingNone   = "none"
	TracingStdout = "stdout"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env           string `env:"CATALOG_ENV" envDefault:"development"`
	ServerHost    string `env:"CATALOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CATALOG_SERVER_PORT" envDefault:"8080"`
	LogLevel      string `env:"CATALOG_LOG_LEVEL" envDefault:"info"`
	SessionSecret string `env:"CATALOG_SESSION_SECRET,required"`
	DBPath        string `env:"CATALOG_DB_PATH" envDefault:"./data/catalog.db"`

	// Durable storage backend for the item collection
	Storage       string `env:"CATALOG_STORAGE" envDefault:"sqlite"`
	MySQLDSN      string `env:"CATALOG_MYSQL_DSN"`
	RedisURL      string `env:"CATALOG_REDIS_URL"`
	PostgresDSN   string `env:"CATALOG_POSTGRES_DSN"`
	StoragePrefix string `env:"CATALOG_STORAGE_PREFIX" envDefault:"catalog:"`

	// S3 (or MinIO) bucket used when CATALOG_STORAGE=s3
	S3Bucket    string `env:"CATALOG_S3_BUCKET"`
	S3Region    string `env:"CATALOG_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"CATALOG_S3_ENDPOINT"`
	S3AccessKey string `env:"CATALOG_S3_ACCESS_KEY"`
	S3SecretKey string `env:"CATALOG_S3_SECRET_KEY"`
	S3PathStyle bool   `env:"CATALOG_S3_PATH_STYLE" envDefault:"false"`

	// Span exporter: none or stdout
	Tracing string `env:"CATALOG_TRACING" envDefault:"none"`

	// The single credential pair accepted by the login form
	AdminUsername string `env:"CATALOG_ADMIN_USERNAME,required"`
	AdminPassword string `env:"CATALOG_ADMIN_PASSWORD,required"`

	// Simulated latency of the orchestration layer
	MutationDelay time.Duration `env:"CATALOG_MUTATION_DELAY" envDefault:"500ms"`
	LoginDelay    time.Duration `env:"CATALOG_LOGIN_DELAY" envDefault:"1s"`

	// Login protection
	LoginRateLimit   float64 `env:"CATALOG_LOGIN_RATE_LIMIT" envDefault:"0.5"`
	LoginMaxAttempts int     `env:"CATALOG_LOGIN_MAX_ATTEMPTS" envDefault:"5"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// SlogLevel maps LogLevel onto a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("CATALOG_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("CATALOG_SESSION_SECRET is a known default value and must not be used")
		}
	}

	switch c.Storage {
	case StorageMemory, StorageSQLite:
	case StorageMySQL:
		if c.MySQLDSN == "" {
			return errors.New("CATALOG_MYSQL_DSN is required when CATALOG_STORAGE=mysql")
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("CATALOG_REDIS_URL is required when CATALOG_STORAGE=redis")
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return errors.New("CATALOG_POSTGRES_DSN is required when CATALOG_STORAGE=postgres")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return errors.New("CATALOG_S3_BUCKET is required when CATALOG_STORAGE=s3")
		}
	default:
		return fmt.Errorf("CATALOG_STORAGE %q is not one of memory, sqlite, mysql, postgres, redis, s3", c.Storage)
	}

	if c.Tracing != TracingNone && c.Tracing != TracingStdout {
		return fmt.Errorf("CATALOG_TRACING %q is not one of none, stdout", c.Tracing)
	}

	if c.MutationDelay < 0 || c.LoginDelay < 0 {
		return errors.New("simulated delays must not be negative")
	}

	return nil
}
