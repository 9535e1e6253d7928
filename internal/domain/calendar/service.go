package calendar

import (
	"context"
	"io"
)

type CalendarService interface {
	// CreateEvent stores the event and recomputes its date.
	CreateEvent(ctx context.Context, req CreateEventRequest) (EventResponse, error)
	DeleteEvent(ctx context.Context, date string, eventType string) error
	ListEvents(ctx context.Context, filter EventFilter) ([]EventResponse, error)

	// ImportICS reads an iCalendar feed and stores each all-day event as a
	// FERIADO for every employee.
	ImportICS(ctx context.Context, r io.Reader) (ImportResponse, error)
}
