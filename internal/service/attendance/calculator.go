package attendance

import (
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
)

// Deltas are the raw, tolerance-free differences between the actual punches
// and the expectation.
type Deltas struct {
	DelaySeconds          int
	EarlyArrivalSeconds   int
	OvertimeSeconds       int
	EarlyExitSeconds      int
	IntervalExcessSeconds int

	WorkedMinutes   int
	ExpectedMinutes int
	BalanceSeconds  int
}

// arrivalAndExit returns the punches compared against the expected start and
// end. With both halves expected they are morning_entry and final_exit. With a
// single half, the pair recorded for that half is used; when only the other
// half's slots are filled (two punches stored positionally) that pair stands in.
func arrivalAndExit(p DayPunches, e Expectation) (*time.Time, *time.Time) {
	morningEntry, lunchExit := p.Get(attendance.SlotMorningEntry), p.Get(attendance.SlotLunchExit)
	afternoonEntry, finalExit := p.Get(attendance.SlotAfternoonEntry), p.Get(attendance.SlotFinalExit)

	switch {
	case e.TwoPeriods():
		return morningEntry, finalExit
	case e.AfternoonActive():
		if afternoonEntry != nil || finalExit != nil {
			return afternoonEntry, finalExit
		}
		return morningEntry, lunchExit
	default:
		if morningEntry != nil || lunchExit != nil {
			return morningEntry, lunchExit
		}
		return afternoonEntry, finalExit
	}
}

// CalculateDeltas computes second-level deltas and worked time for the day.
// Seconds to minutes conversions floor.
func CalculateDeltas(p DayPunches, e Expectation, date time.Time, loc *time.Location) Deltas {
	d := Deltas{ExpectedMinutes: e.ExpectedMinutes}

	arrival, exit := arrivalAndExit(p, e)
	if start := e.ExpectedStart(); start != nil && arrival != nil {
		diff := seconds(arrival.Sub(start.On(date, loc)))
		d.DelaySeconds = max(0, diff)
		d.EarlyArrivalSeconds = max(0, -diff)
	}
	if end := e.ExpectedEnd(); end != nil && exit != nil {
		diff := seconds(exit.Sub(end.On(date, loc)))
		d.OvertimeSeconds = max(0, diff)
		d.EarlyExitSeconds = max(0, -diff)
	}

	lunchExit, afternoonEntry := p.Get(attendance.SlotLunchExit), p.Get(attendance.SlotAfternoonEntry)
	if expected, ok := e.ExpectedIntervalMinutes(); ok && lunchExit != nil && afternoonEntry != nil {
		actual := seconds(afternoonEntry.Sub(*lunchExit))
		d.IntervalExcessSeconds = max(0, actual-expected*60)
	}

	worked := segmentSeconds(p.Get(attendance.SlotMorningEntry), lunchExit) +
		segmentSeconds(afternoonEntry, p.Get(attendance.SlotFinalExit))
	d.WorkedMinutes = worked / 60
	d.BalanceSeconds = (d.WorkedMinutes - d.ExpectedMinutes) * 60

	return d
}

// segmentSeconds is the length of a complete half-day segment; a missing punch
// or a reversed pair contributes nothing.
func segmentSeconds(from, to *time.Time) int {
	if from == nil || to == nil {
		return 0
	}
	return max(0, seconds(to.Sub(*from)))
}

// seconds truncates toward zero, which floors every non-negative delta.
func seconds(d time.Duration) int {
	return int(d / time.Second)
}
