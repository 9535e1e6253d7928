package attendance

import (
	"context"
	"time"
)

// PunchRepository reads and appends raw time-clock punches.
type PunchRepository interface {
	// Append stores punches; existing rows are never modified.
	Append(ctx context.Context, punches []RawPunch) error

	// ListByEmployeeAndDate returns the day's punches ordered by timestamp,
	// malformed punches last.
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]RawPunch, error)

	// DistinctDates returns every work date that has at least one punch.
	DistinctDates(ctx context.Context) ([]time.Time, error)
}

type CorrectionRepository interface {
	Get(ctx context.Context, employeeID string, date time.Time) (*ManualCorrection, error)
	Upsert(ctx context.Context, correction ManualCorrection) (ManualCorrection, error)
	Delete(ctx context.Context, employeeID string, date time.Time) error
}

type ProcessedRecordRepository interface {
	Get(ctx context.Context, employeeID string, date time.Time) (*ProcessedRecord, error)

	// Upsert writes the computed fields keyed on (employee_id, date). The
	// occurrence columns are left untouched.
	Upsert(ctx context.Context, record ProcessedRecord) error

	// SetOccurrence stores (or clears, when nil) the day's occurrence,
	// creating a placeholder row when none exists yet.
	SetOccurrence(ctx context.Context, employeeID string, date time.Time, occurrence *Occurrence) error

	List(ctx context.Context, filter RecordFilter) ([]ProcessedRecord, int64, error)

	// EmployeesForDate returns every employee with punches, corrections,
	// exceptions, records or a weekly schedule relevant to the date.
	EmployeesForDate(ctx context.Context, date time.Time) ([]string, error)
}

// RecalcQueueRepository tracks keys whose recomputation must be retried.
type RecalcQueueRepository interface {
	Enqueue(ctx context.Context, key RecalcKey, cause string) error
	List(ctx context.Context, limit int) ([]PendingRecalc, error)
	Remove(ctx context.Context, key RecalcKey) error
}
