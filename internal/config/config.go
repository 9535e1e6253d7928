package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	NATS       NATSConfig
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// AttendanceConfig holds the calculation engine settings
type AttendanceConfig struct {
	Timezone                string
	DefaultToleranceMinutes int
	RecalcWorkers           int
	RetryInterval           time.Duration
}

// NATSConfig holds the optional record event sink. Empty URL disables it.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "ponto"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "ponto.db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("APP_FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	tolerance, err := strconv.Atoi(getEnv("ATTENDANCE_DEFAULT_TOLERANCE_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_DEFAULT_TOLERANCE_MINUTES: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("ATTENDANCE_RECALC_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_RECALC_WORKERS: %w", err)
	}
	retryInterval, err := time.ParseDuration(getEnv("ATTENDANCE_RETRY_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_RETRY_INTERVAL: %w", err)
	}

	config.Attendance = AttendanceConfig{
		Timezone:                getEnv("ATTENDANCE_TIMEZONE", "America/Sao_Paulo"),
		DefaultToleranceMinutes: tolerance,
		RecalcWorkers:           workers,
		RetryInterval:           retryInterval,
	}

	// NATS configuration
	config.NATS = NATSConfig{
		URL:           getEnv("NATS_URL", ""),
		SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "ponto"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return errors.New("DB_PASSWORD is required")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}
	if c.Attendance.DefaultToleranceMinutes < 0 {
		return errors.New("ATTENDANCE_DEFAULT_TOLERANCE_MINUTES must not be negative")
	}
	if c.Attendance.RecalcWorkers < 1 {
		return errors.New("ATTENDANCE_RECALC_WORKERS must be at least 1")
	}
	if c.Attendance.RetryInterval <= 0 {
		return errors.New("ATTENDANCE_RETRY_INTERVAL must be positive")
	}
	if c.NATS.URL != "" && strings.ContainsAny(c.NATS.SubjectPrefix, "*> ") {
		return errors.New("NATS_SUBJECT_PREFIX must not contain wildcards or spaces")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the attendance timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AllowedOrigins splits APP_FRONTEND_URL on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.App.FrontendURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
