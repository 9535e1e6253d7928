package calendar

import (
	"slices"
	"time"
)

type EventType string

const (
	EventTypeFeriado EventType = "FERIADO" // public holiday
	EventTypeDSR     EventType = "DSR"     // weekly paid rest
)

var EventTypeValues = []string{
	string(EventTypeFeriado),
	string(EventTypeDSR),
}

// Event marks a date as non-working, for everyone or for the listed employees.
// Unique per (date, event type).
type Event struct {
	ID                    string
	Date                  time.Time
	EventType             EventType
	AppliesToAllEmployees bool
	EmployeeIDs           []string
	Description           string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (e Event) AppliesTo(employeeID string) bool {
	return e.AppliesToAllEmployees || slices.Contains(e.EmployeeIDs, employeeID)
}
