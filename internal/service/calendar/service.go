package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository"
	"github.com/google/uuid"
)

type calendarServiceImpl struct {
	store         repository.Store
	attendanceSvc attendance.AttendanceService
	loc           *time.Location
}

func newEventResponse(ev calendar.Event) calendar.EventResponse {
	return calendar.EventResponse{
		ID:                    ev.ID,
		Date:                  utils.FormatDate(ev.Date),
		EventType:             string(ev.EventType),
		AppliesToAllEmployees: ev.AppliesToAllEmployees,
		EmployeeIDs:           ev.EmployeeIDs,
		Description:           ev.Description,
	}
}

// CreateEvent implements calendar.CalendarService.
func (s *calendarServiceImpl) CreateEvent(ctx context.Context, req calendar.CreateEventRequest) (calendar.EventResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.EventResponse{}, err
	}
	day, _ := utils.ParseDate(req.Date)

	event := calendar.Event{
		ID:                    uuid.Must(uuid.NewV7()).String(),
		Date:                  day,
		EventType:             calendar.EventType(req.EventType),
		AppliesToAllEmployees: *req.AppliesToAllEmployees,
		Description:           strings.TrimSpace(req.Description),
	}
	if !event.AppliesToAllEmployees {
		event.EmployeeIDs = slices.Compact(slices.Sorted(slices.Values(req.EmployeeIDs)))
	}

	var err error
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		event, err = s.store.Calendar().Upsert(ctx, event)
		return err
	})
	if err != nil {
		return calendar.EventResponse{}, fmt.Errorf("failed to save calendar event: %w", err)
	}

	slog.Info("calendar event saved",
		"date", req.Date,
		"event_type", event.EventType,
		"applies_to_all", event.AppliesToAllEmployees,
	)

	resp := newEventResponse(event)
	if err := s.attendanceSvc.RefreshDate(ctx, day); err != nil {
		warning := err.Error()
		resp.Warning = &warning
	}
	return resp, nil
}

// DeleteEvent implements calendar.CalendarService. The returned error wraps
// attendance.ErrRecalculationPending when the delete committed but part of
// the date could not be recomputed.
func (s *calendarServiceImpl) DeleteEvent(ctx context.Context, date string, eventType string) error {
	var errs validator.ValidationErrors
	day, ok := validator.IsValidDate(date)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}
	eventType = strings.ToUpper(strings.TrimSpace(eventType))
	if !validator.IsInSlice(eventType, calendar.EventTypeValues) {
		errs = append(errs, validator.ValidationError{Field: "event_type", Message: calendar.ErrInvalidEventType.Error()})
	}
	if len(errs) > 0 {
		return errs
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := s.store.Calendar().Delete(ctx, day, calendar.EventType(eventType))
		return err
	})
	if err != nil {
		if errors.Is(err, calendar.ErrEventNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}

	slog.Info("calendar event deleted", "date", date, "event_type", eventType)
	return s.attendanceSvc.RefreshDate(ctx, day)
}

// ListEvents implements calendar.CalendarService.
func (s *calendarServiceImpl) ListEvents(ctx context.Context, filter calendar.EventFilter) ([]calendar.EventResponse, error) {
	if filter.EventType != nil {
		upper := strings.ToUpper(strings.TrimSpace(*filter.EventType))
		filter.EventType = &upper
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	events, err := s.store.Calendar().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	resp := make([]calendar.EventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, newEventResponse(ev))
	}
	return resp, nil
}

// ImportICS implements calendar.CalendarService. Every date is stored in one
// transaction before any recompute runs; dates repeated in the feed keep the
// first summary.
func (s *calendarServiceImpl) ImportICS(ctx context.Context, r io.Reader) (calendar.ImportResponse, error) {
	holidays, skipped, err := parseHolidays(r, s.loc)
	if err != nil {
		return calendar.ImportResponse{}, err
	}

	seen := make(map[time.Time]struct{}, len(holidays))
	events := make([]calendar.Event, 0, len(holidays))
	for _, h := range holidays {
		if _, dup := seen[h.Date]; dup {
			skipped++
			continue
		}
		seen[h.Date] = struct{}{}
		events = append(events, calendar.Event{
			ID:                    uuid.Must(uuid.NewV7()).String(),
			Date:                  h.Date,
			EventType:             calendar.EventTypeFeriado,
			AppliesToAllEmployees: true,
			Description:           h.Summary,
		})
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		for i := range events {
			saved, err := s.store.Calendar().Upsert(ctx, events[i])
			if err != nil {
				return fmt.Errorf("failed to save holiday %s: %w", utils.FormatDate(events[i].Date), err)
			}
			events[i] = saved
		}
		return nil
	})
	if err != nil {
		return calendar.ImportResponse{}, err
	}

	slog.Info("calendar imported", "imported", len(events), "skipped", skipped)

	resp := calendar.ImportResponse{
		Imported: len(events),
		Skipped:  skipped,
		Events:   make([]calendar.EventResponse, 0, len(events)),
	}
	var refreshErrs []error
	for _, ev := range events {
		resp.Events = append(resp.Events, newEventResponse(ev))
		if err := s.attendanceSvc.RefreshDate(ctx, ev.Date); err != nil {
			refreshErrs = append(refreshErrs, err)
		}
	}
	if err := errors.Join(refreshErrs...); err != nil {
		warning := err.Error()
		resp.Warning = &warning
	}
	return resp, nil
}

// NewCalendarService creates the calendar service. loc is the timezone timed
// iCalendar events are converted to before their date is taken.
func NewCalendarService(store repository.Store, attendanceSvc attendance.AttendanceService, loc *time.Location) calendar.CalendarService {
	return &calendarServiceImpl{
		store:         store,
		attendanceSvc: attendanceSvc,
		loc:           loc,
	}
}
