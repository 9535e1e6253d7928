package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/ponto.db")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("APP_FRONTEND_URL", "http://a.test, http://b.test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ATTENDANCE_DEFAULT_TOLERANCE_MINUTES", "10")
	t.Setenv("ATTENDANCE_RETRY_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/ponto.db", cfg.Database.SQLitePath)
	assert.Equal(t, 10, cfg.Attendance.DefaultToleranceMinutes)
	assert.Equal(t, 4, cfg.Attendance.RecalcWorkers)
	assert.Equal(t, 5*time.Minute, cfg.Attendance.RetryInterval)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "ponto", cfg.NATS.SubjectPrefix)
}

func TestLoadInvalidNumber(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("ATTENDANCE_RECALC_WORKERS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ATTENDANCE_RECALC_WORKERS")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: DriverPostgres, Password: "pw"},
			JWT:      JWTConfig{Secret: "s", AccessExpiration: "1h"},
			Attendance: AttendanceConfig{
				Timezone:      "America/Sao_Paulo",
				RecalcWorkers: 4,
				RetryInterval: time.Minute,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "postgres needs password", mutate: func(c *Config) { c.Database.Password = "" }, wantErr: "DB_PASSWORD"},
		{name: "sqlite needs no password", mutate: func(c *Config) {
			c.Database = DatabaseConfig{Driver: DriverSQLite, SQLitePath: "x.db"}
		}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "missing secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: "JWT_SECRET_KEY"},
		{name: "bad expiration", mutate: func(c *Config) { c.JWT.AccessExpiration = "soon" }, wantErr: "JWT_ACCESS_EXPIRATION_TIME"},
		{name: "bad timezone", mutate: func(c *Config) { c.Attendance.Timezone = "Mars/Olympus" }, wantErr: "ATTENDANCE_TIMEZONE"},
		{name: "negative tolerance", mutate: func(c *Config) { c.Attendance.DefaultToleranceMinutes = -1 }, wantErr: "TOLERANCE"},
		{name: "no workers", mutate: func(c *Config) { c.Attendance.RecalcWorkers = 0 }, wantErr: "WORKERS"},
		{name: "wildcard subject", mutate: func(c *Config) {
			c.NATS = NATSConfig{URL: "nats://localhost:4222", SubjectPrefix: "ponto.>"}
		}, wantErr: "NATS_SUBJECT_PREFIX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Name: "ponto", SSLMode: "disable",
	}}
	assert.Equal(t, "postgres://u:p@db:5432/ponto?sslmode=disable", cfg.DatabaseURL())
}
