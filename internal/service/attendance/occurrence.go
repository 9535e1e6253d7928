package attendance

import (
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
)

// Expectation is the resolved schedule after the day's occurrence has removed
// its exempt halves.
type Expectation struct {
	ResolvedSchedule

	MorningExempt   bool
	AfternoonExempt bool
	ExpectedMinutes int
}

func (e Expectation) MorningActive() bool {
	return e.Periods.HasMorning() && !e.MorningExempt
}

func (e Expectation) AfternoonActive() bool {
	return e.Periods.HasAfternoon() && !e.AfternoonExempt
}

// TwoPeriods reports whether both halves are still expected, which is when
// the lunch interval is measured.
func (e Expectation) TwoPeriods() bool {
	return e.MorningActive() && e.AfternoonActive()
}

// FullyExempt reports whether the occurrence removed every scheduled half.
func (e Expectation) FullyExempt() bool {
	return (e.MorningExempt || e.AfternoonExempt) && !e.MorningActive() && !e.AfternoonActive()
}

func (e Expectation) ExpectedStart() *utils.ClockTime {
	switch {
	case e.MorningActive():
		return e.Periods.MorningStart
	case e.AfternoonActive():
		return e.Periods.AfternoonStart
	}
	return nil
}

func (e Expectation) ExpectedEnd() *utils.ClockTime {
	switch {
	case e.AfternoonActive():
		return e.Periods.AfternoonEnd
	case e.MorningActive():
		return e.Periods.MorningEnd
	}
	return nil
}

// ExpectedIntervalMinutes is the scheduled break: the exception's
// break_minutes when set, else afternoon_start - morning_end.
func (e Expectation) ExpectedIntervalMinutes() (int, bool) {
	if !e.TwoPeriods() {
		return 0, false
	}
	if e.BreakMinutes != nil {
		return *e.BreakMinutes, true
	}
	return e.Periods.AfternoonStart.Minutes() - e.Periods.MorningEnd.Minutes(), true
}

// ApplyOccurrence derives the day's expectation from the stored occurrence
// alone. COMPLETA exempts the halves its flags cover, or the whole day when no
// flag is set. MEIO_PERIODO exempts only the flagged half. HoursMinutes, when
// set, replaces the exempted minute count.
func ApplyOccurrence(s ResolvedSchedule, occ *attendance.Occurrence) Expectation {
	e := Expectation{ResolvedSchedule: s}
	scheduled := s.ScheduledMinutes()

	if occ == nil {
		e.ExpectedMinutes = scheduled
		return e
	}

	switch occ.Duration {
	case attendance.DurationFull:
		if !occ.Slots.Any() {
			e.MorningExempt, e.AfternoonExempt = true, true
		} else {
			e.MorningExempt = occ.Slots.Morning()
			e.AfternoonExempt = occ.Slots.Afternoon()
		}
	case attendance.DurationHalf:
		e.MorningExempt = occ.Slots.Morning()
		e.AfternoonExempt = occ.Slots.Afternoon()
	}

	if occ.HoursMinutes != nil {
		e.ExpectedMinutes = max(0, scheduled-*occ.HoursMinutes)
		return e
	}

	exempted := 0
	if e.MorningExempt {
		exempted += s.Periods.MorningMinutes()
	}
	if e.AfternoonExempt {
		exempted += s.Periods.AfternoonMinutes()
	}
	e.ExpectedMinutes = max(0, scheduled-exempted)
	return e
}
