package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/ponto-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

type Handlers struct {
	Attendance AttendanceHandler
	Schedule   ScheduleHandler
	Calendar   CalendarHandler
	Report     ReportHandler
	Stream     StreamHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ponto-backend"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// SSE authenticates with a short-lived token in the query string
		r.Get("/records/stream", h.Stream.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/records", func(r chi.Router) {
				r.Get("/", h.Report.ListRecords)
				r.Get("/export", h.Report.ExportXLSX)
				r.Post("/stream/token", h.Stream.GetSSEToken)
			})

			r.With(middleware.RequireWriter).Post("/punches", h.Attendance.IngestPunches)

			r.Route("/employees/{employeeID}", func(r chi.Router) {
				r.Get("/summary", h.Report.MonthlySummary)
				r.Get("/schedules", h.Schedule.ListWorkSchedules)
				r.Get("/exceptions", h.Schedule.ListExceptions)

				r.Route("/days/{date}", func(r chi.Router) {
					r.Get("/", h.Attendance.GetRecord)
					r.Get("/correction", h.Attendance.GetCorrection)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireWriter)
						r.Put("/correction", h.Attendance.UpsertCorrection)
						r.Delete("/correction", h.Attendance.DeleteCorrection)
						r.Put("/occurrence", h.Attendance.SetOccurrence)
						r.Delete("/occurrence", h.Attendance.ClearOccurrence)
					})
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireWriter)
					r.Put("/schedules/{weekday}", h.Schedule.UpsertWorkSchedule)
					r.Delete("/schedules/{weekday}", h.Schedule.DeleteWorkSchedule)
					r.Put("/exceptions/{date}", h.Schedule.UpsertException)
					r.Delete("/exceptions/{date}", h.Schedule.DeleteException)
				})
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/events", h.Calendar.ListEvents)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireWriter)
					r.Post("/events", h.Calendar.CreateEvent)
					r.Delete("/events/{date}/{type}", h.Calendar.DeleteEvent)
					r.Post("/import", h.Calendar.ImportICS)
				})
			})

			// Admin only
			r.Route("/recalculations", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.Attendance.Recalculate)
				r.Post("/retry", h.Attendance.RetryPending)
			})
		})
	})
	return r
}
