package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
)

// AttendanceJobsConfig holds the schedule of the attendance jobs
type AttendanceJobsConfig struct {
	Location      *time.Location
	NightlyHour   int           // local hour the nightly recompute runs in, default 1
	RetryInterval time.Duration // default: 15 minutes
	RetryBatch    int           // default: 200
}

type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	config        AttendanceJobsConfig
	now           func() time.Time
}

func NewAttendanceJobs(attendanceSvc attendance.AttendanceService, cfg AttendanceJobsConfig) *AttendanceJobs {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.NightlyHour <= 0 || cfg.NightlyHour > 23 {
		cfg.NightlyHour = 1
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 15 * time.Minute
	}
	if cfg.RetryBatch == 0 {
		cfg.RetryBatch = 200
	}
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		config:        cfg,
		now:           time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("recompute_previous_day", 1*time.Hour, j.RecomputePreviousDay)
	scheduler.AddJob("retry_pending_recalculations", j.config.RetryInterval, j.RetryPendingRecalculations)
}

// RecomputePreviousDay recomputes every employee of yesterday so late punches
// and schedule edits are reflected. It only does work during the nightly hour.
func (j *AttendanceJobs) RecomputePreviousDay(ctx context.Context) error {
	local := j.now().In(j.config.Location)
	if local.Hour() != j.config.NightlyHour {
		return nil
	}

	yesterday := utils.CivilDate(local.AddDate(0, 0, -1), j.config.Location)
	slog.Info("Cron: Recomputing previous day", "date", utils.FormatDate(yesterday))

	resp, err := j.attendanceSvc.RecalculateDate(ctx, yesterday)
	var batchErr *attendance.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		return fmt.Errorf("failed to recompute %s: %w", utils.FormatDate(yesterday), err)
	}

	slog.Info("Cron: Previous day recomputed",
		"date", utils.FormatDate(yesterday),
		"processed", resp.Processed,
		"queued_for_retry", len(resp.Failed),
	)
	return nil
}

// RetryPendingRecalculations drains the retry queue in batches.
func (j *AttendanceJobs) RetryPendingRecalculations(ctx context.Context) error {
	resp, err := j.attendanceSvc.RetryPending(ctx, j.config.RetryBatch)
	var batchErr *attendance.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		return fmt.Errorf("failed to retry pending recalculations: %w", err)
	}
	if resp.Processed == 0 && len(resp.Failed) == 0 {
		return nil
	}

	slog.Info("Cron: Retried pending recalculations",
		"processed", resp.Processed,
		"still_failing", len(resp.Failed),
	)
	return nil
}
