package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Malformed request bodies
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		BadRequest(w, "Invalid request body", nil)
		return
	}

	var batchErr *attendance.BatchError
	switch {
	// Committed writes whose recalculation was queued
	case errors.Is(err, attendance.ErrRecalculationPending):
		Accepted(w, err.Error(), nil)
	case errors.As(err, &batchErr):
		Accepted(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Processed record not found")
	case errors.Is(err, attendance.ErrCorrectionNotFound):
		NotFound(w, "Manual correction not found")
	case errors.Is(err, attendance.ErrOccurrenceNotFound):
		NotFound(w, "No occurrence set for this day")
	case errors.Is(err, attendance.ErrNoPunchesInRequest):
		BadRequest(w, err.Error(), nil)

	// Schedule domain errors
	case errors.Is(err, schedule.ErrWorkScheduleNotFound):
		NotFound(w, "Work schedule not found")
	case errors.Is(err, schedule.ErrScheduleExceptionNotFound):
		NotFound(w, "Schedule exception not found")

	// Calendar domain errors
	case errors.Is(err, calendar.ErrEventNotFound):
		NotFound(w, "Calendar event not found")
	case errors.Is(err, calendar.ErrInvalidCalendar), errors.Is(err, calendar.ErrEmptyCalendarFile):
		BadRequest(w, err.Error(), nil)

	// Report domain errors
	case errors.Is(err, report.ErrNoDataFound):
		NotFound(w, "No records found for the specified criteria")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
