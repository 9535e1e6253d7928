package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		input   string
		want    ClockTime
		wantErr bool
	}{
		{"08:00", NewClockTime(8, 0), false},
		{"17:30", NewClockTime(17, 30), false},
		{"23:59:59", NewClockTime(23, 59), false},
		{"00:00", 0, false},
		{"24:00", 0, true},
		{"8:00", 0, true},
		{"08:60", 0, true},
		{"0800", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseClockTime(c.input)
		if c.wantErr {
			assert.ErrorIs(t, err, ErrInvalidClockTime, "input %q", c.input)
			continue
		}
		require.NoError(t, err, "input %q", c.input)
		assert.Equal(t, c.want, got, "input %q", c.input)
	}
}

func TestClockTime_On(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	got := NewClockTime(7, 56).On(date, loc)

	assert.Equal(t, "2025-03-10T07:56:00-03:00", got.Format(time.RFC3339))
}

func TestCivilDate(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:30 UTC is still the previous evening in Sao Paulo
	instant := time.Date(2025, time.March, 11, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10", FormatDate(CivilDate(instant, loc)))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "-", FormatClock(nil))
	assert.Equal(t, "-", FormatHHMM(nil, time.UTC))

	c := NewClockTime(13, 5)
	assert.Equal(t, "13:05", FormatClock(&c))

	assert.Equal(t, "-00:05", FormatSignedMinutes(-5))
	assert.Equal(t, "08:48", FormatSignedMinutes(528))
}
