package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
)

// Instants are stored as UTC text in a fixed-width layout so that string
// order equals time order. Dates are YYYY-MM-DD and times of day HH:mm.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func timeArg(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func timePtrArg(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timeArg(*t)
	return &s
}

func dateArg(d time.Time) string {
	return utils.FormatDate(d)
}

func clockArg(c *utils.ClockTime) *string {
	return utils.ClockString(c)
}

func nowArg() string {
	return timeArg(time.Now())
}

// parseTime also accepts the shorter strftime form written by column defaults.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return d, nil
}

func scanClock(s *string) (*utils.ClockTime, error) {
	c, err := utils.ParseClockTimePtr(s)
	if err != nil {
		return nil, fmt.Errorf("invalid stored time %q: %w", *s, err)
	}
	return c, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
