package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type ScheduleHandler interface {
	// Weekly schedule
	UpsertWorkSchedule(w http.ResponseWriter, r *http.Request)
	ListWorkSchedules(w http.ResponseWriter, r *http.Request)
	DeleteWorkSchedule(w http.ResponseWriter, r *http.Request)

	// Date exceptions
	UpsertException(w http.ResponseWriter, r *http.Request)
	ListExceptions(w http.ResponseWriter, r *http.Request)
	DeleteException(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
	}
}

// weekdayParam returns -1 for an invalid weekday so the service reports it.
func weekdayParam(r *http.Request) int {
	d, ok := validator.IsValidWeekday(chi.URLParam(r, "weekday"))
	if !ok {
		return -1
	}
	return d
}

// ==================== WORK SCHEDULE HANDLERS ====================

func (h *scheduleHandlerImpl) UpsertWorkSchedule(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpsertWorkScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	req.DayOfWeek = weekdayParam(r)

	result, err := h.scheduleService.UpsertWorkSchedule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work schedule saved successfully", result)
}

func (h *scheduleHandlerImpl) ListWorkSchedules(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleService.ListWorkSchedules(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *scheduleHandlerImpl) DeleteWorkSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.DeleteWorkSchedule(r.Context(), chi.URLParam(r, "employeeID"), weekdayParam(r)); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work schedule deleted successfully", nil)
}

// ==================== SCHEDULE EXCEPTION HANDLERS ====================

func (h *scheduleHandlerImpl) UpsertException(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpsertExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	req.Date = chi.URLParam(r, "date")

	result, err := h.scheduleService.UpsertException(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Warning != nil {
		response.Accepted(w, *result.Warning, result)
		return
	}
	response.SuccessWithMessage(w, "Schedule exception saved successfully", result)
}

func (h *scheduleHandlerImpl) ListExceptions(w http.ResponseWriter, r *http.Request) {
	filter := schedule.ExceptionFilter{
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
	}

	result, err := h.scheduleService.ListExceptions(r.Context(), chi.URLParam(r, "employeeID"), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *scheduleHandlerImpl) DeleteException(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.DeleteException(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "date")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Schedule exception deleted successfully", nil)
}
