// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Jobs     JobsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver   string
	Path     string // sqlite file
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
	Seed       bool
	LogLevel   string
}

// AuthConfig holds the signing secret and token lifetime.
type AuthConfig struct {
	Secret       string
	TokenTTL     time.Duration
	OrgLookupTTL time.Duration
}

// RedisConfig enables the distributed schedule lock when Address is set.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	LockTTL  time.Duration
	LockWait time.Duration
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool { return r.Address != "" }

// JobsConfig holds background job schedules. An empty cron expression disables the job.
type JobsConfig struct {
	OverdueCron string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Path:     getEnv("DB_PATH", "backoffice.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "backoffice"),
			Password: getEnv("DB_PASSWORD", "backoffice"),
			DBName:   getEnv("DB_NAME", "backoffice"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", false),
			Seed:       getEnvBool("DB_SEED", true),
			LogLevel:   getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			Secret:       getEnv("SESSION_SECRET", ""),
			TokenTTL:     getEnvDuration("TOKEN_TTL", 24*time.Hour),
			OrgLookupTTL: getEnvDuration("ORG_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			LockTTL:  getEnvDuration("SCHEDULE_LOCK_TTL", 30*time.Second),
			LockWait: getEnvDuration("SCHEDULE_LOCK_WAIT", 5*time.Second),
		},
		Jobs: JobsConfig{
			OverdueCron: lookupEnv("OVERDUE_CRON", "0 2 * * *"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv is getEnv, except that a variable set to "" stays empty.
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration parses a Go duration ("30s", "5m") or returns a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
