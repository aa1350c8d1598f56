package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	Port    string
	AppName string

	// Database
	DatabaseURL     string
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMaxIdleConns  int
	DBMaxOpenConns  int
	DBConnLifetime  time.Duration
	DBLogLevel      string
	AutoMigrate     bool
	SeedReferenceDB bool

	// Auth
	JWTSecret string

	// Redis (optional, only used for cross-instance rebuild locks)
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Ledger
	MaxDueBackdateDays int
	RebuildLockTTL     time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		AppName:            getEnv("APP_NAME", "Document Ledger v1.0"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBName:             getEnv("DB_NAME", "ledger"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBMaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 100),
		DBConnLifetime:     getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		DBLogLevel:         getEnv("DB_LOG_LEVEL", "warn"),
		AutoMigrate:        getEnvBool("AUTO_MIGRATE", true),
		SeedReferenceDB:    getEnvBool("SEED_REFERENCE_DATA", true),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		RedisAddress:       getEnv("REDIS_ADDRESS", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		MaxDueBackdateDays: getEnvInt("LEDGER_MAX_DUE_BACKDATE_DAYS", 365),
		RebuildLockTTL:     getEnvDuration("LEDGER_REBUILD_LOCK_TTL", 10*time.Minute),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" && c.DBHost == "" {
		return fmt.Errorf("DATABASE_URL or DB_HOST is required")
	}
	if c.MaxDueBackdateDays < 0 {
		return fmt.Errorf("LEDGER_MAX_DUE_BACKDATE_DAYS must not be negative")
	}
	if c.DBMaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	return nil
}

// DSN returns DATABASE_URL or a key/value DSN built from DB_* values.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
