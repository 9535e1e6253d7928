package report

import "errors"

var (
	ErrInvalidMonth = errors.New("month must be in YYYY-MM format")
	// ErrNoDataFound is returned by exports that would produce an empty sheet.
	ErrNoDataFound            = errors.New("no data found for the specified criteria")
	ErrReportGenerationFailed = errors.New("failed to generate report")
	ErrEmployeeIDRequired     = errors.New("employee_id is required")
)
