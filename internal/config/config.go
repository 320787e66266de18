// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinJWTSecretLen is the shortest accepted JWT_SECRET.
const MinJWTSecretLen = 32

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// Env is "development" or "production". Production turns on Secure
	// session cookies. Defaults to "development".
	Env string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret signs session tokens. Required, at least MinJWTSecretLen bytes.
	JWTSecret string

	// JWTExpiry is the session lifetime. Defaults to 7 days.
	JWTExpiry time.Duration

	// MaxBodyBytes caps request bodies. Cover images may arrive as base64
	// data URIs, so the default is 12 MiB.
	MaxBodyBytes int64

	// AuthRateLimit is register and login requests allowed per client IP per
	// minute. Zero disables the limit. Defaults to 20.
	AuthRateLimit int

	// AutoMigrate applies pending migrations at startup. Defaults to true.
	AutoMigrate bool

	// S3 configures presigned media uploads. Uploads are disabled when
	// S3.Bucket is empty.
	S3 S3Config
}

// S3Config is the object storage section of Config.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	PresignTTL      time.Duration
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// IsProduction reports whether APP_ENV is "production".
func (c Config) IsProduction() bool { return c.Env == "production" }

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set win. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config.LoadDotEnv: %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing every required variable that is missing and every
// variable that could not be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		S3: S3Config{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          os.Getenv("S3_REGION"),
			Bucket:          os.Getenv("S3_BUCKET"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PublicURL:       os.Getenv("S3_PUBLIC_URL"),
		},
	}

	var missing, invalid []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	switch {
	case cfg.JWTSecret == "":
		missing = append(missing, "JWT_SECRET")
	case len(cfg.JWTSecret) < MinJWTSecretLen:
		invalid = append(invalid, fmt.Sprintf("JWT_SECRET must be at least %d characters", MinJWTSecretLen))
	}

	if cfg.Env != "development" && cfg.Env != "production" {
		invalid = append(invalid, fmt.Sprintf("APP_ENV %q must be development or production", cfg.Env))
	}

	var err error
	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRY", 7*24*time.Hour); err != nil {
		invalid = append(invalid, err.Error())
	}
	if cfg.S3.PresignTTL, err = getDuration("S3_PRESIGN_TTL", 15*time.Minute); err != nil {
		invalid = append(invalid, err.Error())
	}
	if cfg.MaxBodyBytes, err = getInt64("MAX_BODY_BYTES", 12<<20); err != nil {
		invalid = append(invalid, err.Error())
	}
	limit, err := getInt64("AUTH_RATE_LIMIT", 20)
	if err != nil {
		invalid = append(invalid, err.Error())
	}
	cfg.AuthRateLimit = int(limit)
	if cfg.AutoMigrate, err = getBool("AUTO_MIGRATE", true); err != nil {
		invalid = append(invalid, err.Error())
	}

	if cfg.S3.Enabled() && (cfg.S3.AccessKeyID == "" || cfg.S3.SecretAccessKey == "") {
		invalid = append(invalid, "S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required when S3_BUCKET is set")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(invalid, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("%s %q is not a positive duration", key, v)
	}
	return d, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return fallback, fmt.Errorf("%s %q is not a non-negative integer", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s %q is not a boolean", key, v)
	}
	return b, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
