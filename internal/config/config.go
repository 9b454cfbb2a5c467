package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends understood by storage.Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// DefaultJWTSecret is the placeholder signing key used when JWT_SECRET is unset.
const DefaultJWTSecret = "change-me"

// ErrDefaultJWTSecret rejects the placeholder key on shared backends.
var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set when storage is shared (redis or postgres)")

// Config holds the runtime configuration of the complaint desk.
type Config struct {
	HTTPAddr string

	StorageBackend string
	DataFile       string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string
	PostgresDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	PollInterval        time.Duration
	NotificationTimeout time.Duration

	SeedDemoData bool

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from environment variables, falling back to
// defaults for anything unset or unparsable.
func Load() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
		DataFile:       getEnv("DATA_FILE", "data/complaintdesk.json"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getIntEnv("REDIS_DB", 0),
		RedisPrefix:    getEnv("REDIS_PREFIX", "scs:"),
		PostgresDSN:    getEnv("POSTGRES_DSN", "host=localhost user=user password=password dbname=complaintdesk port=5432 sslmode=disable"),

		JWTSecret: getEnv("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:  getDurationEnv("TOKEN_TTL", DefaultTokenTTL),

		PollInterval:        getDurationEnv("POLL_INTERVAL", DefaultPollInterval),
		NotificationTimeout: getDurationEnv("NOTIFICATION_TIMEOUT", DefaultNotificationTimeout),

		SeedDemoData: getBoolEnv("SEED_DEMO_DATA", true),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// DefaultSecret reports whether tokens are signed with the placeholder key.
func (c *Config) DefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// Validate refuses settings that are only acceptable for local runs.
func (c *Config) Validate() error {
	if c.DefaultSecret() && (c.StorageBackend == BackendRedis || c.StorageBackend == BackendPostgres) {
		return ErrDefaultJWTSecret
	}
	return nil
}
