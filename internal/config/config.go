// Package config provides environment-driven configuration for gigadmin.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL     Secret
	Port            string
	ListenHost      string
	MetricsPort     string
	CORSOrigins     []string
	LogLevel        string
	JWTSecret       Secret
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	DBMaxConns      int32

	RedisAddr     string
	RedisPassword Secret
	RedisDB       int
	RedisChannel  string

	BootstrapAdminEmail    string
	BootstrapAdminPassword Secret

	LoginMaxAttempts int
	LoginWindow      time.Duration
	LoginLockout     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present; real
// environment variables always win over it.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // a missing .env is normal.

	cfg := &Config{
		DatabaseURL:            Secret(envOrDefault("DATABASE_URL", "")),
		Port:                   envOrDefault("PORT", "3030"),
		ListenHost:             envOrDefault("LISTEN_HOST", "127.0.0.1"),
		MetricsPort:            envOrDefault("METRICS_PORT", "9091"),
		LogLevel:               envOrDefault("LOG_LEVEL", "info"),
		JWTSecret:              Secret(envOrDefault("JWT_SECRET", "")),
		RedisAddr:              envOrDefault("REDIS_ADDR", ""),
		RedisPassword:          Secret(envOrDefault("REDIS_PASSWORD", "")),
		RedisChannel:           envOrDefault("REDIS_CHANNEL", "gigadmin:admin-actions"),
		BootstrapAdminEmail:    envOrDefault("BOOTSTRAP_ADMIN_EMAIL", ""),
		BootstrapAdminPassword: Secret(envOrDefault("BOOTSTRAP_ADMIN_PASSWORD", "")),
	}

	var err error

	if cfg.AccessTokenTTL, err = durationEnv("ACCESS_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}

	if cfg.RefreshTokenTTL, err = durationEnv("REFRESH_TOKEN_TTL", 360*time.Hour); err != nil {
		return nil, err
	}

	if cfg.LoginWindow, err = durationEnv("LOGIN_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}

	if cfg.LoginLockout, err = durationEnv("LOGIN_LOCKOUT", 5*time.Minute); err != nil {
		return nil, err
	}

	attempts, err := strconv.Atoi(envOrDefault("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil || attempts < 1 || attempts > 100 {
		return nil, fmt.Errorf("LOGIN_MAX_ATTEMPTS must be an integer between 1 and 100")
	}
	cfg.LoginMaxAttempts = attempts

	maxConns, err := strconv.Atoi(envOrDefault("DB_MAX_CONNS", "21"))
	if err != nil || maxConns < 1 || maxConns > 500 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 1 and 500")
	}
	cfg.DBMaxConns = int32(maxConns) //nolint:gosec // bounded above.

	redisDB, err := strconv.Atoi(envOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 || redisDB > 15 {
		return nil, fmt.Errorf("REDIS_DB must be an integer between 0 and 15")
	}
	cfg.RedisDB = redisDB

	for _, o := range strings.Split(envOrDefault("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the API listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

// RedisEnabled reports whether admin actions are fanned out to redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 1h or 30m", key)
	}

	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
