package attendance

import (
	"testing"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestResolveSchedule(t *testing.T) {
	base := weekly(t, "08:00", "12:00", "13:00", "17:00")
	breakMinutes, tolerance := 30, 10
	exception := &schedule.ScheduleException{
		EmployeeID:               testEmployee,
		Date:                     testDate,
		Periods:                  periods(t, "09:00", "12:00", "12:30", "15:00"),
		ShiftType:                "REDUZIDO",
		BreakMinutes:             &breakMinutes,
		IntervalToleranceMinutes: &tolerance,
	}

	t.Run("weekly schedule", func(t *testing.T) {
		got := ResolveSchedule(testEmployee, testDate, nil, nil, base, 5)
		assert.Equal(t, attendance.SourceWeekly, got.Source)
		assert.Equal(t, 480, got.ScheduledMinutes())
		assert.Equal(t, 5, got.ToleranceMinutes)
	})

	t.Run("weekly schedule of another weekday is ignored", func(t *testing.T) {
		other := *base
		other.DayOfWeek = (base.DayOfWeek + 1) % 7
		got := ResolveSchedule(testEmployee, testDate, nil, nil, &other, 5)
		assert.Equal(t, attendance.SourceNone, got.Source)
		assert.Equal(t, 0, got.ScheduledMinutes())
	})

	t.Run("exception supersedes weekly", func(t *testing.T) {
		got := ResolveSchedule(testEmployee, testDate, nil, exception, base, 5)
		assert.Equal(t, attendance.SourceException, got.Source)
		assert.Equal(t, schedule.ShiftType("REDUZIDO"), got.ShiftType)
		assert.Equal(t, 180+150, got.ScheduledMinutes())
		assert.Equal(t, 10, got.ToleranceMinutes)

		expected, ok := ApplyOccurrence(got, nil).ExpectedIntervalMinutes()
		assert.True(t, ok)
		assert.Equal(t, 30, expected)
	})

	t.Run("non-working exception ignores its periods", func(t *testing.T) {
		dayOff := *exception
		dayOff.ShiftType = schedule.ShiftTypeNonWorking
		dayOff.Periods = periods(t, "08:00", "12:00", "13:00", "17:00")

		got := ResolveSchedule(testEmployee, testDate, nil, &dayOff, base, 5)
		assert.Equal(t, attendance.SourceException, got.Source)
		assert.Equal(t, schedule.ShiftTypeNonWorking, got.ShiftType)
		assert.Equal(t, 0, got.ScheduledMinutes())

		expectation := ApplyOccurrence(got, nil)
		assert.Equal(t, 0, expectation.ExpectedMinutes)
		assert.Nil(t, expectation.ExpectedStart())
		assert.Nil(t, expectation.ExpectedEnd())
		_, ok := expectation.ExpectedIntervalMinutes()
		assert.False(t, ok)
	})

	t.Run("holiday for another employee does not apply", func(t *testing.T) {
		events := []calendar.Event{{
			Date:        testDate,
			EventType:   calendar.EventTypeFeriado,
			EmployeeIDs: []string{"E999"},
		}}
		got := ResolveSchedule(testEmployee, testDate, events, nil, base, 5)
		assert.Equal(t, attendance.SourceWeekly, got.Source)
	})

	t.Run("holiday listing the employee applies", func(t *testing.T) {
		events := []calendar.Event{{
			Date:        testDate,
			EventType:   calendar.EventTypeFeriado,
			EmployeeIDs: []string{"E999", testEmployee},
		}}
		got := ResolveSchedule(testEmployee, testDate, events, exception, base, 5)
		assert.Equal(t, attendance.SourceCalendar, got.Source)
		assert.Equal(t, schedule.ShiftTypeNonWorking, got.ShiftType)
		assert.Equal(t, 0, got.ScheduledMinutes())
	})

	t.Run("nothing configured", func(t *testing.T) {
		got := ResolveSchedule(testEmployee, testDate, nil, nil, nil, 7)
		assert.Equal(t, attendance.SourceNone, got.Source)
		assert.Equal(t, schedule.ShiftTypeUnscheduled, got.ShiftType)
		assert.Equal(t, 7, got.ToleranceMinutes)
	})
}

func TestApplyOccurrence(t *testing.T) {
	resolved := ResolveSchedule(testEmployee, testDate, nil, nil, weekly(t, "08:00", "12:00", "13:00", "17:00"), 5)

	tests := []struct {
		name          string
		occurrence    *attendance.Occurrence
		wantMinutes   int
		wantStart     string
		wantEnd       string
		wantTwoPeriod bool
	}{
		{"none", nil, 480, "08:00", "17:00", true},
		{
			"completa without flags exempts the whole day",
			&attendance.Occurrence{Type: attendance.OccurrenceFalta, Duration: attendance.DurationFull},
			0, "-", "-", false,
		},
		{
			"completa with afternoon flags",
			&attendance.Occurrence{
				Type:     attendance.OccurrenceFolga,
				Duration: attendance.DurationFull,
				Slots:    attendance.OccurrenceSlots{FinalExit: true},
			},
			240, "08:00", "12:00", false,
		},
		{
			"meio periodo morning",
			&attendance.Occurrence{
				Type:     attendance.OccurrenceAtestado,
				Duration: attendance.DurationHalf,
				Slots:    attendance.OccurrenceSlots{MorningEntry: true},
			},
			240, "13:00", "17:00", false,
		},
		{
			"hours override larger than the schedule",
			&attendance.Occurrence{
				Type:         attendance.OccurrenceAtestado,
				HoursMinutes: ptr(600),
				Duration:     attendance.DurationFull,
			},
			0, "-", "-", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyOccurrence(resolved, tt.occurrence)
			assert.Equal(t, tt.wantMinutes, got.ExpectedMinutes)
			assert.Equal(t, tt.wantStart, utils.FormatClock(got.ExpectedStart()))
			assert.Equal(t, tt.wantEnd, utils.FormatClock(got.ExpectedEnd()))
			assert.Equal(t, tt.wantTwoPeriod, got.TwoPeriods())
		})
	}
}
