package attendance

import (
	"slices"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
)

// DayPunches is the canonical punch set of one employee day.
type DayPunches struct {
	Slots      [4]*time.Time
	Corrected  [4]bool
	FirstEntry *time.Time
	LastExit   *time.Time

	// Count is the number of parseable raw punches, Malformed the rest.
	Count     int
	Malformed int
}

func (p DayPunches) Get(s attendance.Slot) *time.Time { return p.Slots[s] }

// AllCorrected reports whether every slot comes from the manual correction.
func (p DayPunches) AllCorrected() bool {
	return p.Corrected[0] && p.Corrected[1] && p.Corrected[2] && p.Corrected[3]
}

// NormalizePunches assigns the day's valid punches positionally to the four
// canonical slots and overlays the manual correction. Punches past the fourth
// only feed the first/last diagnostics.
func NormalizePunches(raw []attendance.RawPunch, correction *attendance.ManualCorrection, date time.Time, loc *time.Location) DayPunches {
	var out DayPunches

	valid := make([]time.Time, 0, len(raw))
	for _, p := range raw {
		if p.PunchedAt == nil {
			out.Malformed++
			continue
		}
		valid = append(valid, *p.PunchedAt)
	}
	slices.SortStableFunc(valid, func(a, b time.Time) int { return a.Compare(b) })
	out.Count = len(valid)

	for i := 0; i < len(valid) && i < len(out.Slots); i++ {
		t := valid[i]
		out.Slots[i] = &t
	}
	if len(valid) > 0 {
		first, last := valid[0], valid[len(valid)-1]
		out.FirstEntry = &first
		out.LastExit = &last
	}

	if correction != nil {
		for _, s := range attendance.Slots {
			if c := correction.Slot(s); c != nil {
				t := c.On(date, loc)
				out.Slots[s] = &t
				out.Corrected[s] = true
			}
		}
	}

	return out
}
