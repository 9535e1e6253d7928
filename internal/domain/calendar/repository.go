package calendar

import (
	"context"
	"time"
)

type EventRepository interface {
	// Upsert creates the event or replaces the one with the same (date, type).
	Upsert(ctx context.Context, event Event) (Event, error)
	Delete(ctx context.Context, date time.Time, eventType EventType) (Event, error)
	ListByDate(ctx context.Context, date time.Time) ([]Event, error)
	List(ctx context.Context, filter EventFilter) ([]Event, error)
}
