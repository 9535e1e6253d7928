package schedule

import "errors"

var (
	ErrWorkScheduleNotFound      = errors.New("work schedule not found")
	ErrScheduleExceptionNotFound = errors.New("schedule exception not found")

	ErrEmployeeIDRequired = errors.New("employee_id is required")
	ErrInvalidDateFormat  = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidDayOfWeek   = errors.New("day of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrPeriodOrder        = errors.New("afternoon_start must not be before morning_end")
)
