package attendance

import (
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
)

// DayInput is everything a processed record is derived from.
type DayInput struct {
	EmployeeID string
	Date       time.Time

	Punches    []attendance.RawPunch
	Correction *attendance.ManualCorrection
	Events     []calendar.Event
	Exception  *schedule.ScheduleException
	Weekly     *schedule.WorkSchedule
	Occurrence *attendance.Occurrence
}

// Engine computes processed records. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	loc              *time.Location
	defaultTolerance int
}

func NewEngine(loc *time.Location, defaultToleranceMinutes int) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{loc: loc, defaultTolerance: defaultToleranceMinutes}
}

func (e *Engine) Location() *time.Location { return e.loc }

// Compute runs normalizer, resolver, occurrence adjuster, calculator, CLT
// translator and classifier over one employee day. Same input, same output.
func (e *Engine) Compute(in DayInput) attendance.ProcessedRecord {
	punches := NormalizePunches(in.Punches, in.Correction, in.Date, e.loc)
	resolved := ResolveSchedule(in.EmployeeID, in.Date, in.Events, in.Exception, in.Weekly, e.defaultTolerance)
	expect := ApplyOccurrence(resolved, in.Occurrence)
	deltas := CalculateDeltas(punches, expect, in.Date, e.loc)
	clt := TranslateCLT(deltas, expect.ToleranceMinutes)

	rec := attendance.ProcessedRecord{
		EmployeeID: in.EmployeeID,
		Date:       in.Date,

		MorningEntry:   punches.Get(attendance.SlotMorningEntry),
		LunchExit:      punches.Get(attendance.SlotLunchExit),
		AfternoonEntry: punches.Get(attendance.SlotAfternoonEntry),
		FinalExit:      punches.Get(attendance.SlotFinalExit),
		FirstEntry:     punches.FirstEntry,
		LastExit:       punches.LastExit,
		PunchCount:     punches.Count + punches.Malformed,

		ExpectedStart:    expect.ExpectedStart(),
		ExpectedEnd:      expect.ExpectedEnd(),
		ShiftType:        string(expect.ShiftType),
		ScheduleSource:   expect.Source,
		ToleranceMinutes: expect.ToleranceMinutes,

		DelaySeconds:          deltas.DelaySeconds,
		EarlyArrivalSeconds:   deltas.EarlyArrivalSeconds,
		OvertimeSeconds:       deltas.OvertimeSeconds,
		EarlyExitSeconds:      deltas.EarlyExitSeconds,
		WorkedMinutes:         deltas.WorkedMinutes,
		ExpectedMinutes:       deltas.ExpectedMinutes,
		BalanceSeconds:        deltas.BalanceSeconds,
		IntervalExcessSeconds: deltas.IntervalExcessSeconds,

		AtrasoCLTMinutes:       clt.AtrasoMinutes,
		ChegadaAntecCLTMinutes: clt.ChegadaAntecMinutes,
		ExtraCLTMinutes:        clt.ExtraMinutes,
		SaidaAntecCLTMinutes:   clt.SaidaAntecMinutes,
		SaldoCLTMinutes:        clt.SaldoMinutes,

		Status:     ClassifyDay(punches, expect),
		Occurrence: in.Occurrence,
	}
	return rec
}
