package schedule

import "context"

type ScheduleService interface {
	// Weekly schedule
	UpsertWorkSchedule(ctx context.Context, req UpsertWorkScheduleRequest) (WorkScheduleResponse, error)
	ListWorkSchedules(ctx context.Context, employeeID string) ([]WorkScheduleResponse, error)
	DeleteWorkSchedule(ctx context.Context, employeeID string, dayOfWeek int) error

	// Date-specific exceptions, each write recomputes the affected day
	UpsertException(ctx context.Context, req UpsertExceptionRequest) (ExceptionResponse, error)
	ListExceptions(ctx context.Context, employeeID string, filter ExceptionFilter) ([]ExceptionResponse, error)
	DeleteException(ctx context.Context, employeeID string, date string) error
}
