package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// maxICSUploadSize bounds a multipart calendar upload.
const maxICSUploadSize = 5 << 20

type CalendarHandler interface {
	CreateEvent(w http.ResponseWriter, r *http.Request)
	DeleteEvent(w http.ResponseWriter, r *http.Request)
	ListEvents(w http.ResponseWriter, r *http.Request)
	ImportICS(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.CalendarService
}

func NewCalendarHandler(calendarService calendar.CalendarService) CalendarHandler {
	return &calendarHandlerImpl{
		calendarService: calendarService,
	}
}

// CreateEvent implements CalendarHandler.
func (h *calendarHandlerImpl) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req calendar.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.calendarService.CreateEvent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Warning != nil {
		response.Accepted(w, *result.Warning, result)
		return
	}
	response.Created(w, "Calendar event saved successfully", result)
}

// DeleteEvent implements CalendarHandler.
func (h *calendarHandlerImpl) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.calendarService.DeleteEvent(r.Context(), chi.URLParam(r, "date"), chi.URLParam(r, "type")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Calendar event deleted successfully", nil)
}

// ListEvents implements CalendarHandler.
func (h *calendarHandlerImpl) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := calendar.EventFilter{
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		EventType: queryString(r, "event_type"),
	}

	result, err := h.calendarService.ListEvents(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ImportICS implements CalendarHandler. Accepts either a raw text/calendar
// body or a multipart form with the feed in the "file" field.
func (h *calendarHandlerImpl) ImportICS(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if err := r.ParseMultipartForm(maxICSUploadSize); err == nil {
		file, _, err := r.FormFile("file")
		if err != nil {
			response.BadRequest(w, "file field is required", nil)
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.calendarService.ImportICS(r.Context(), body)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Warning != nil {
		response.Accepted(w, *result.Warning, result)
		return
	}
	response.Created(w, "Calendar imported successfully", result)
}
