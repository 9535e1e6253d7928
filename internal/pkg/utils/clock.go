package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a civil date.
const DateLayout = "2006-01-02"

// ClockLayout is the wire format of a time of day.
const ClockLayout = "15:04"

var ErrInvalidClockTime = errors.New("invalid time of day, use HH:mm")

// ClockTime is a wall-clock time of day with minute precision, stored as
// minutes since midnight.
type ClockTime int

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime accepts "HH:mm" and "HH:mm:ss" (seconds are dropped).
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, ErrInvalidClockTime
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 2 || hour < 0 || hour > 23 {
		return 0, ErrInvalidClockTime
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || minute < 0 || minute > 59 {
		return 0, ErrInvalidClockTime
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, ErrInvalidClockTime
		}
	}
	return NewClockTime(hour, minute), nil
}

// ParseClockTimePtr parses an optional value; nil or blank yields nil.
func ParseClockTimePtr(s *string) (*ClockTime, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	c, err := ParseClockTime(*s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (c ClockTime) Hour() int    { return int(c) / 60 }
func (c ClockTime) Minute() int  { return int(c) % 60 }
func (c ClockTime) Minutes() int { return int(c) }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On anchors the time of day to a civil date in loc.
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}

// ClockString formats an optional clock time, nil yields nil.
func ClockString(c *ClockTime) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

// FormatClock renders an optional clock time as HH:mm or "-".
func FormatClock(c *ClockTime) string {
	if c == nil {
		return "-"
	}
	return c.String()
}

// FormatHHMM renders an optional instant as HH:mm in loc or "-".
func FormatHHMM(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format(ClockLayout)
}

// ParseDate parses YYYY-MM-DD into midnight UTC, the canonical civil date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// CivilDate returns the local calendar day of t in loc as midnight UTC.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// FormatSignedMinutes renders a minute balance as [-]HH:mm.
func FormatSignedMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}
