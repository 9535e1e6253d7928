package attendance

import "math"

// CLTBuckets are the minute figures reported under the labor code.
type CLTBuckets struct {
	AtrasoMinutes       int
	ChegadaAntecMinutes int
	ExtraMinutes        int
	SaidaAntecMinutes   int
	SaldoMinutes        int
}

// TranslateCLT converts raw deltas into CLT buckets.
//
// The tolerance band suppresses overtime and early-arrival credit below the
// threshold; lateness and early exit are charged in full. Interval excess is
// discounted from overtime first and any shortfall is charged as lateness.
func TranslateCLT(d Deltas, toleranceMinutes int) CLTBuckets {
	tolerance := max(0, toleranceMinutes)

	extraRaw := max(0, d.OvertimeSeconds/60-tolerance)
	atraso := d.DelaySeconds / 60

	excess := int(math.Round(float64(d.IntervalExcessSeconds) / 60))
	extra := extraRaw - excess
	if extra < 0 {
		atraso += -extra
		extra = 0
	}

	b := CLTBuckets{
		AtrasoMinutes:       atraso,
		ChegadaAntecMinutes: max(0, d.EarlyArrivalSeconds/60-tolerance),
		ExtraMinutes:        extra,
		SaidaAntecMinutes:   d.EarlyExitSeconds / 60,
	}
	b.SaldoMinutes = b.ExtraMinutes + b.ChegadaAntecMinutes - b.AtrasoMinutes - b.SaidaAntecMinutes
	return b
}
