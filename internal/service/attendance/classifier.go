package attendance

import (
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
)

// ClassifyDay decides whether a day's punches can be trusted. Days without any
// punch are OK; absence alone is never an inconsistency.
func ClassifyDay(p DayPunches, e Expectation) attendance.Status {
	if p.Malformed > 0 {
		return attendance.StatusInconsistent
	}
	if outOfOrder(p.Slots) {
		return attendance.StatusInconsistent
	}
	if p.Count > len(p.Slots) && !p.AllCorrected() {
		return attendance.StatusInconsistent
	}

	morning := pairCount(p.Get(attendance.SlotMorningEntry), p.Get(attendance.SlotLunchExit))
	afternoon := pairCount(p.Get(attendance.SlotAfternoonEntry), p.Get(attendance.SlotFinalExit))

	if !e.FullyExempt() {
		if morning == 1 && !e.MorningExempt {
			return attendance.StatusInconsistent
		}
		if afternoon == 1 && !e.AfternoonExempt {
			return attendance.StatusInconsistent
		}
	}

	// a worked half next to an expected half with no punch at all
	if e.TwoPeriods() && (morning == 0) != (afternoon == 0) {
		return attendance.StatusInconsistent
	}

	return attendance.StatusOK
}

func outOfOrder(slots [4]*time.Time) bool {
	var prev *time.Time
	for _, t := range slots {
		if t == nil {
			continue
		}
		if prev != nil && t.Before(*prev) {
			return true
		}
		prev = t
	}
	return false
}

func pairCount(a, b *time.Time) int {
	n := 0
	if a != nil {
		n++
	}
	if b != nil {
		n++
	}
	return n
}
