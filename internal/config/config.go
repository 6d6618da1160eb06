package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Admin    AdminConfig
	LogLevel slog.Level
}

// HTTPConfig contains HTTP and health endpoint settings.
type HTTPConfig struct {
	Port           string
	GRPCHealthAddr string // empty disables the gRPC health server
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// AuthConfig contains credential and session settings.
type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	CookieMaxAge time.Duration
	CookieSecure bool
	BcryptCost   int

	// Login and registration throttling per client address. A zero burst
	// disables it.
	RateLimitPerMinute float64
	RateLimitBurst     int
}

// AdminConfig describes the administrator account seeded at startup.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// Enabled reports whether an admin account should be seeded.
func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// Load reads configuration from environment variables, applying defaults and
// rejecting invalid values.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{
			Port:           getEnv("PORT", "8080"),
			GRPCHealthAddr: getEnv("GRPC_HEALTH_ADDR", ""),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "task-tracker.db"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			// Default to secure cookies; disable only for local development.
			CookieSecure: os.Getenv("COOKIE_SECURE") != "false",
		},
		Admin: AdminConfig{
			Email:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
			Password: os.Getenv("ADMIN_PASSWORD"),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}

	var err error
	if cfg.Auth.TokenTTL, err = getEnvDuration("TOKEN_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Auth.CookieMaxAge, err = getEnvDuration("COOKIE_MAX_AGE", 72*time.Hour); err != nil {
		return nil, err
	}

	if cfg.Auth.BcryptCost, err = getEnvInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 14 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cfg.Auth.BcryptCost)
	}

	if cfg.Auth.RateLimitBurst, err = getEnvInt("AUTH_RATE_BURST", 10); err != nil {
		return nil, err
	}
	perMinute, err := getEnvInt("AUTH_RATE_PER_MINUTE", 5)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.RateLimitBurst < 0 || perMinute < 0 {
		return nil, fmt.Errorf("AUTH_RATE_BURST and AUTH_RATE_PER_MINUTE must not be negative")
	}
	cfg.Auth.RateLimitPerMinute = float64(perMinute)

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if cfg.Admin.Email != "" && len(cfg.Admin.Password) < 8 {
		return nil, fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters when ADMIN_EMAIL is set")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, DB: %s, GRPCHealth: %q, TokenTTL: %s, Auth: *** (masked) ***}",
		c.HTTP.Port, c.Database.Path, c.HTTP.GRPCHealthAddr, c.Auth.TokenTTL)
}
