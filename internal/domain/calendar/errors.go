package calendar

import "errors"

var (
	ErrEventNotFound     = errors.New("calendar event not found")
	ErrInvalidEventType  = errors.New("event type must be FERIADO or DSR")
	ErrInvalidCalendar   = errors.New("invalid iCalendar data")
	ErrEmptyCalendarFile = errors.New("calendar file has no events")
)
