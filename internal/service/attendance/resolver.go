package attendance

import (
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
)

// ResolvedSchedule is the expected schedule of one employee day before
// occurrences are applied.
type ResolvedSchedule struct {
	Source           attendance.ScheduleSource
	ShiftType        schedule.ShiftType
	Periods          schedule.Periods
	BreakMinutes     *int
	ToleranceMinutes int
}

// ScheduledMinutes is the sum of the morning and afternoon spans.
func (s ResolvedSchedule) ScheduledMinutes() int {
	return s.Periods.MorningMinutes() + s.Periods.AfternoonMinutes()
}

// ResolveSchedule picks the day's expected schedule. First match wins: a
// FERIADO or DSR event that applies to the employee, the date exception, the
// weekday schedule. Nothing found means the employee is not scheduled.
func ResolveSchedule(
	employeeID string,
	date time.Time,
	events []calendar.Event,
	exception *schedule.ScheduleException,
	weekly *schedule.WorkSchedule,
	defaultTolerance int,
) ResolvedSchedule {
	for _, ev := range events {
		if !sameDay(ev.Date, date) {
			continue
		}
		if ev.EventType != calendar.EventTypeFeriado && ev.EventType != calendar.EventTypeDSR {
			continue
		}
		if ev.AppliesTo(employeeID) {
			return ResolvedSchedule{
				Source:           attendance.SourceCalendar,
				ShiftType:        schedule.ShiftTypeNonWorking,
				ToleranceMinutes: defaultTolerance,
			}
		}
	}

	if exception != nil {
		tolerance := defaultTolerance
		if exception.IntervalToleranceMinutes != nil {
			tolerance = *exception.IntervalToleranceMinutes
		}
		shift := exception.ShiftType
		if shift == "" {
			shift = schedule.ShiftTypeNormal
		}
		resolved := ResolvedSchedule{
			Source:           attendance.SourceException,
			ShiftType:        shift,
			Periods:          exception.Periods,
			BreakMinutes:     exception.BreakMinutes,
			ToleranceMinutes: tolerance,
		}
		// A day off expects nothing, whatever bounds the exception carries.
		if shift == schedule.ShiftTypeNonWorking {
			resolved.Periods = schedule.Periods{}
			resolved.BreakMinutes = nil
		}
		return resolved
	}

	if weekly != nil && weekly.DayOfWeek == int(date.Weekday()) {
		return ResolvedSchedule{
			Source:           attendance.SourceWeekly,
			ShiftType:        schedule.ShiftTypeNormal,
			Periods:          weekly.Periods,
			ToleranceMinutes: defaultTolerance,
		}
	}

	return ResolvedSchedule{
		Source:           attendance.SourceNone,
		ShiftType:        schedule.ShiftTypeUnscheduled,
		ToleranceMinutes: defaultTolerance,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
