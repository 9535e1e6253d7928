package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// MigratePostgreSQL applies every pending migration to the pool's database.
func MigratePostgreSQL(db *DB) error {
	driver, err := migratepgx.WithInstance(stdlib.OpenDBFromPool(db.Pool), &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migration driver: %w", err)
	}
	return runMigrations("migrations/postgres", "pgx5", driver)
}

// MigrateSQLite applies every pending migration to the embedded database.
func MigrateSQLite(db *SQLiteDB) error {
	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}
	return runMigrations("migrations/sqlite", "sqlite3", driver)
}

func runMigrations(dir, driverName string, driver migratedb.Driver) error {
	source, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		slog.Warn("database migration is dirty", "driver", driverName, "version", version)
	} else {
		slog.Info("database migrations applied", "driver", driverName, "version", version)
	}
	return nil
}
