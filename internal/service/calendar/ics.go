package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
)

const (
	icsMaxFileSize = 5 * 1024 * 1024 // 5MB

	// maxEventDays caps the dates a single multi-day VEVENT expands to.
	maxEventDays = 31
)

// holiday is one date read from an iCalendar feed.
type holiday struct {
	Date    time.Time
	Summary string
}

// parseHolidays reads every VEVENT of the feed and expands it into civil
// dates. Events without a usable DTSTART are counted as skipped.
func parseHolidays(r io.Reader, loc *time.Location) ([]holiday, int, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(r, icsMaxFileSize))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", calendar.ErrInvalidCalendar, err)
	}

	events := cal.Events()
	if len(events) == 0 {
		return nil, 0, calendar.ErrEmptyCalendarFile
	}

	var (
		out     []holiday
		skipped int
	)
	for _, evt := range events {
		start, allDay, err := parseICSDate(evt, ics.ComponentPropertyDtStart, loc)
		if err != nil {
			skipped++
			continue
		}

		summary := ""
		if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil {
			summary = strings.TrimSpace(p.Value)
		}

		// DTEND of an all-day event is exclusive
		days := 1
		if end, _, err := parseICSDate(evt, ics.ComponentPropertyDtEnd, loc); err == nil && allDay {
			days = int(end.Sub(start).Hours() / 24)
		}
		days = min(max(days, 1), maxEventDays)

		for i := range days {
			out = append(out, holiday{Date: start.AddDate(0, 0, i), Summary: summary})
		}
	}
	return out, skipped, nil
}

// parseICSDate returns the civil date of a DTSTART/DTEND property as
// midnight UTC, and whether the property is a bare DATE value.
func parseICSDate(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}
	val := strings.TrimSpace(prop.Value)

	if t, err := time.Parse("20060102", val); err == nil {
		return t, true, nil
	}

	tzLoc := loc
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			if l, err := time.LoadLocation(v[0]); err == nil {
				tzLoc = l
			}
		}
	}

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return utils.CivilDate(t, loc), false, nil
	}
	if t, err := time.ParseInLocation("20060102T150405", val, tzLoc); err == nil {
		return utils.CivilDate(t, loc), false, nil
	}
	return time.Time{}, false, fmt.Errorf("unparsable date %q", val)
}
