package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/ponto-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	// Punches
	IngestPunches(w http.ResponseWriter, r *http.Request)

	// Day commands
	GetCorrection(w http.ResponseWriter, r *http.Request)
	UpsertCorrection(w http.ResponseWriter, r *http.Request)
	DeleteCorrection(w http.ResponseWriter, r *http.Request)
	SetOccurrence(w http.ResponseWriter, r *http.Request)
	ClearOccurrence(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)

	// Recalculation
	Recalculate(w http.ResponseWriter, r *http.Request)
	RetryPending(w http.ResponseWriter, r *http.Request)
}

const defaultRetryLimit = 200

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// IngestPunches implements AttendanceHandler.
func (h *attendanceHandlerImpl) IngestPunches(w http.ResponseWriter, r *http.Request) {
	var req attendance.IngestPunchesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.IngestPunches(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punches ingested successfully", result)
}

// GetCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetCorrection(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetCorrection(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpsertCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpsertCorrection(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpsertCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	req.Date = chi.URLParam(r, "date")
	req.CorrectedBy = middleware.UserIDFromContext(r.Context())

	result, err := h.attendanceService.UpsertCorrection(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Warning != nil {
		response.Accepted(w, *result.Warning, result)
		return
	}
	response.SuccessWithMessage(w, "Correction saved successfully", result)
}

// DeleteCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) DeleteCorrection(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.DeleteCorrection(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Correction deleted successfully", result)
}

// SetOccurrence implements AttendanceHandler.
func (h *attendanceHandlerImpl) SetOccurrence(w http.ResponseWriter, r *http.Request) {
	var req attendance.SetOccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	req.Date = chi.URLParam(r, "date")

	result, err := h.attendanceService.SetOccurrence(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Occurrence saved successfully", result)
}

// ClearOccurrence implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClearOccurrence(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ClearOccurrence(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Occurrence cleared successfully", result)
}

// GetRecord implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetRecord(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Recalculate implements AttendanceHandler.
func (h *attendanceHandlerImpl) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Recalculate(r.Context(), req)
	h.writeRecalculation(w, result, err)
}

// RetryPending implements AttendanceHandler.
func (h *attendanceHandlerImpl) RetryPending(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if limit <= 0 {
		limit = defaultRetryLimit
	}

	result, err := h.attendanceService.RetryPending(r.Context(), limit)
	h.writeRecalculation(w, result, err)
}

// writeRecalculation reports a batch with failed keys as 202 with the
// failure list; the failed keys are already queued for retry.
func (h *attendanceHandlerImpl) writeRecalculation(w http.ResponseWriter, result attendance.RecalculationResponse, err error) {
	if err != nil {
		var batchErr *attendance.BatchError
		if errors.As(err, &batchErr) {
			response.Accepted(w, "Recalculation finished with failures, failed days are queued for retry", result)
			return
		}
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Recalculation finished", result)
}
