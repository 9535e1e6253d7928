package validator

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects every field problem of one request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap keys messages by field. Repeated fields keep every message.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, err := range v {
		if prev, ok := result[err.Field]; ok {
			result[err.Field] = prev + "; " + err.Message
			continue
		}
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Employee identifiers come from the time-clock feed (registration number or PIS):
// 1-64 chars, A-Z, a-z, 0-9, ., _, -
var employeeIDRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

func IsValidEmployeeID(id string) bool {
	return employeeIDRegex.MatchString(id)
}

func IsValidDate(s string) (time.Time, bool) {
	date, err := time.Parse(DateLayout, s)
	return date, err == nil
}

func IsValidMonth(s string) (time.Time, bool) {
	month, err := time.Parse(MonthLayout, s)
	return month, err == nil
}

// "HH:mm" with an optional ":ss"
var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)

func IsValidClock(s string) bool {
	return clockRegex.MatchString(s)
}

// IsValidWeekday accepts a single digit, 0 (Sunday) to 6 (Saturday).
func IsValidWeekday(s string) (int, bool) {
	if len(s) != 1 {
		return 0, false
	}
	d, err := strconv.Atoi(s)
	if err != nil || d < 0 || d > 6 {
		return 0, false
	}
	return d, true
}

func IsInSlice(value string, slice []string) bool {
	return slices.Contains(slice, value)
}

func Itoa(i int) string {
	return strconv.Itoa(i)
}

// IsValidDateTime accepts an RFC 3339 timestamp with an explicit offset,
// fractional seconds allowed.
func IsValidDateTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	return t, err == nil
}
