// Package app assembles the store and services from configuration. It is
// shared by the API server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/ponto-backend-go/internal/config"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/natspub"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/ponto-backend-go/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/ponto-backend-go/internal/service/calendar"
	reportService "github.com/cmlabs-hris/ponto-backend-go/internal/service/report"
	scheduleService "github.com/cmlabs-hris/ponto-backend-go/internal/service/schedule"
)

type App struct {
	Config *config.Config
	Store  repository.Store
	Hub    *sse.Hub

	Attendance attendance.AttendanceService
	Schedule   schedule.ScheduleService
	Calendar   calendar.CalendarService
	Report     report.ReportService

	publisher *natspub.Publisher
}

// SetupLogger installs the JSON slog handler at the configured level.
func SetupLogger(cfg *config.Config) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
}

// OpenStore connects to the configured driver and applies pending migrations.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.MigratePostgreSQL(db); err != nil {
			db.Close()
			return nil, err
		}
		return postgresql.NewStore(db), nil

	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := database.MigrateSQLite(db); err != nil {
			db.Close()
			return nil, err
		}
		return sqlite.NewStore(db), nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// New wires the services over an open store. publisher may be nil.
func New(cfg *config.Config, store repository.Store, publisher *natspub.Publisher) *App {
	loc := cfg.Location()
	hub := sse.NewHub()

	serviceCfg := attendanceService.Config{Workers: cfg.Attendance.RecalcWorkers}
	if publisher != nil {
		serviceCfg.Publisher = publisher
	}
	engine := attendanceService.NewEngine(loc, cfg.Attendance.DefaultToleranceMinutes)
	attendanceSvc := attendanceService.NewAttendanceService(store, engine, hub, serviceCfg)

	return &App{
		publisher:  publisher,
		Config:     cfg,
		Store:      store,
		Hub:        hub,
		Attendance: attendanceSvc,
		Schedule:   scheduleService.NewScheduleService(store, attendanceSvc),
		Calendar:   calendarService.NewCalendarService(store, attendanceSvc, loc),
		Report:     reportService.NewReportService(store, loc),
	}
}

// Open opens the store for cfg, connects the NATS sink when NATS_URL is set
// and wires the services.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var publisher *natspub.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = natspub.Connect(natspub.Config{
			URL:           cfg.NATS.URL,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
		})
		if err != nil {
			store.Close()
			return nil, err
		}
		slog.Info("Publishing recalculated records to NATS", "url", cfg.NATS.URL, "prefix", cfg.NATS.SubjectPrefix)
	}

	return New(cfg, store, publisher), nil
}

func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	a.Store.Close()
}
