package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/app"
	"github.com/cmlabs-hris/ponto-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/ponto-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/jwt"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	app.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		slog.Error("Error opening database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer a.Close()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.AllowedOrigins(),
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		appHTTP.Handlers{
			Attendance: appHTTP.NewAttendanceHandler(a.Attendance),
			Schedule:   appHTTP.NewScheduleHandler(a.Schedule),
			Calendar:   appHTTP.NewCalendarHandler(a.Calendar),
			Report:     appHTTP.NewReportHandler(a.Report),
			Stream:     appHTTP.NewStreamHandler(a.Hub, JWTService),
		},
	)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(a.Attendance, cron.AttendanceJobsConfig{
		Location:      cfg.Location(),
		RetryInterval: cfg.Attendance.RetryInterval,
	}).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelled on shutdown so open record streams return.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "driver", cfg.Database.Driver, "timezone", cfg.Attendance.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
