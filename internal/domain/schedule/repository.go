package schedule

import (
	"context"
	"time"
)

type WorkScheduleRepository interface {
	// Get returns nil, nil when the employee has no schedule for the weekday.
	Get(ctx context.Context, employeeID string, dayOfWeek int) (*WorkSchedule, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]WorkSchedule, error)
	Upsert(ctx context.Context, ws WorkSchedule) (WorkSchedule, error)
	Delete(ctx context.Context, employeeID string, dayOfWeek int) error
}

type ExceptionRepository interface {
	// Get returns nil, nil when no exception exists for the date.
	Get(ctx context.Context, employeeID string, date time.Time) (*ScheduleException, error)
	ListByEmployee(ctx context.Context, employeeID string, filter ExceptionFilter) ([]ScheduleException, error)
	Upsert(ctx context.Context, ex ScheduleException) (ScheduleException, error)
	Delete(ctx context.Context, employeeID string, date time.Time) error
}
