package attendance

import (
	"context"
	"time"
)

// AttendanceService owns the daily calculation engine and the commands that
// feed it.
type AttendanceService interface {
	// Recompute derives and upserts the record of one employee day.
	Recompute(ctx context.Context, employeeID string, date time.Time) (ProcessedRecord, error)

	// Refresh recomputes after an upstream write. On failure the key is queued
	// for retry and the error wraps ErrRecalculationPending.
	Refresh(ctx context.Context, employeeID string, date time.Time) (*ProcessedRecord, error)

	// RefreshDate is Refresh for every affected employee of a date.
	RefreshDate(ctx context.Context, date time.Time) error

	// RecalculateDate recomputes every affected employee of a date. Failures
	// are collected into a *BatchError; the rest of the batch still runs.
	RecalculateDate(ctx context.Context, date time.Time) (RecalculationResponse, error)

	// RecalculateAll recomputes every distinct punch date.
	RecalculateAll(ctx context.Context) (RecalculationResponse, error)

	// Recalculate dispatches a trigger request to RecalculateDate or RecalculateAll.
	Recalculate(ctx context.Context, req RecalculateRequest) (RecalculationResponse, error)

	// RetryPending recomputes queued keys and drops the ones that succeed.
	RetryPending(ctx context.Context, limit int) (RecalculationResponse, error)

	IngestPunches(ctx context.Context, req IngestPunchesRequest) (IngestPunchesResponse, error)

	GetCorrection(ctx context.Context, employeeID string, date string) (CorrectionResponse, error)
	UpsertCorrection(ctx context.Context, req UpsertCorrectionRequest) (CorrectionResponse, error)
	DeleteCorrection(ctx context.Context, employeeID string, date string) (RecordResponse, error)

	SetOccurrence(ctx context.Context, req SetOccurrenceRequest) (RecordResponse, error)
	ClearOccurrence(ctx context.Context, employeeID string, date string) (RecordResponse, error)

	GetRecord(ctx context.Context, employeeID string, date string) (RecordResponse, error)
}
