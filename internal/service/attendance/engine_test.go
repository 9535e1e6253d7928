package attendance

import (
	"strconv"
	"testing"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmployee = "E001"

// 2024-03-04 is a Monday.
var testDate = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func clock(t *testing.T, s string) *utils.ClockTime {
	t.Helper()
	c, err := utils.ParseClockTime(s)
	require.NoError(t, err)
	return &c
}

func ptr[T any](v T) *T { return &v }

func periods(t *testing.T, ms, me, as, ae string) schedule.Periods {
	t.Helper()
	return schedule.Periods{
		MorningStart:   clock(t, ms),
		MorningEnd:     clock(t, me),
		AfternoonStart: clock(t, as),
		AfternoonEnd:   clock(t, ae),
	}
}

func weekly(t *testing.T, ms, me, as, ae string) *schedule.WorkSchedule {
	t.Helper()
	return &schedule.WorkSchedule{
		EmployeeID: testEmployee,
		DayOfWeek:  int(testDate.Weekday()),
		Periods:    periods(t, ms, me, as, ae),
	}
}

func punchesAt(t *testing.T, loc *time.Location, clocks ...string) []attendance.RawPunch {
	t.Helper()
	out := make([]attendance.RawPunch, 0, len(clocks))
	for i, s := range clocks {
		at := clock(t, s).On(testDate, loc)
		out = append(out, attendance.RawPunch{
			ID:         strconv.Itoa(i),
			EmployeeID: testEmployee,
			WorkDate:   testDate,
			PunchedAt:  &at,
			RawValue:   at.Format(time.RFC3339),
		})
	}
	return out
}

func TestCompute_IntervalExcess(t *testing.T) {
	loc := saoPaulo(t)
	engine := NewEngine(loc, 5)

	tests := []struct {
		name               string
		schedule           *schedule.WorkSchedule
		punches            []string
		wantExcessMinutes  int
		wantExtra          int
		wantAtraso         int
		wantSaldo          int
		wantWorkedMinutes  int
		wantOvertimeMinute int
	}{
		{
			name:               "interval excess consumes overtime and spills into atraso",
			schedule:           weekly(t, "08:00", "12:00", "13:00", "17:00"),
			punches:            []string{"07:56", "12:30", "14:00", "17:30"},
			wantExcessMinutes:  30,
			wantExtra:          0,
			wantAtraso:         5,
			wantSaldo:          -5,
			wantWorkedMinutes:  484,
			wantOvertimeMinute: 30,
		},
		{
			name:               "interval excess larger than earned overtime",
			schedule:           weekly(t, "08:00", "12:00", "13:00", "17:00"),
			punches:            []string{"07:55", "12:05", "14:08", "18:00"},
			wantExcessMinutes:  63,
			wantExtra:          0,
			wantAtraso:         8,
			wantSaldo:          -8,
			wantWorkedMinutes:  482,
			wantOvertimeMinute: 60,
		},
		{
			name:               "small interval excess discounted from overtime",
			schedule:           weekly(t, "07:00", "12:00", "13:00", "18:00"),
			punches:            []string{"06:58", "11:58", "13:00", "18:16"},
			wantExcessMinutes:  2,
			wantExtra:          9,
			wantAtraso:         0,
			wantSaldo:          9,
			wantWorkedMinutes:  616,
			wantOvertimeMinute: 16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := engine.Compute(DayInput{
				EmployeeID: testEmployee,
				Date:       testDate,
				Punches:    punchesAt(t, loc, tt.punches...),
				Weekly:     tt.schedule,
			})

			assert.Equal(t, tt.wantExcessMinutes, rec.IntervalExcessSeconds/60)
			assert.Equal(t, tt.wantOvertimeMinute, rec.OvertimeSeconds/60)
			assert.Equal(t, tt.wantExtra, rec.ExtraCLTMinutes)
			assert.Equal(t, tt.wantAtraso, rec.AtrasoCLTMinutes)
			assert.Equal(t, 0, rec.ChegadaAntecCLTMinutes)
			assert.Equal(t, 0, rec.SaidaAntecCLTMinutes)
			assert.Equal(t, tt.wantSaldo, rec.SaldoCLTMinutes)
			assert.Equal(t, tt.wantWorkedMinutes, rec.WorkedMinutes)
			assert.Equal(t, attendance.StatusOK, rec.Status)
			assert.Equal(t, attendance.SourceWeekly, rec.ScheduleSource)
		})
	}
}

func TestCompute_Idempotent(t *testing.T) {
	loc := saoPaulo(t)
	engine := NewEngine(loc, 5)
	hours := 90
	in := DayInput{
		EmployeeID: testEmployee,
		Date:       testDate,
		Punches:    punchesAt(t, loc, "08:10", "12:00", "13:30", "16:40", "16:45"),
		Correction: &attendance.ManualCorrection{FinalExit: clock(t, "17:20")},
		Weekly:     weekly(t, "08:00", "12:00", "13:00", "17:00"),
		Occurrence: &attendance.Occurrence{
			Type:         attendance.OccurrenceDeclaracao,
			HoursMinutes: &hours,
			Duration:     attendance.DurationHalf,
			Slots:        attendance.OccurrenceSlots{AfternoonEntry: true},
		},
	}

	first := engine.Compute(in)
	second := engine.Compute(in)
	assert.Equal(t, first, second)
}

func TestCompute_CorrectionPrecedence(t *testing.T) {
	loc := saoPaulo(t)
	engine := NewEngine(loc, 5)

	raw := punchesAt(t, loc, "08:00", "12:00", "13:00", "17:00")
	correction := &attendance.ManualCorrection{
		EmployeeID:     testEmployee,
		Date:           testDate,
		MorningEntry:   clock(t, "07:45"),
		AfternoonEntry: clock(t, "12:50"),
	}

	rec := engine.Compute(DayInput{
		EmployeeID: testEmployee,
		Date:       testDate,
		Punches:    raw,
		Correction: correction,
		Weekly:     weekly(t, "08:00", "12:00", "13:00", "17:00"),
	})

	require.NotNil(t, rec.MorningEntry)
	require.NotNil(t, rec.AfternoonEntry)
	assert.True(t, rec.MorningEntry.Equal(clock(t, "07:45").On(testDate, loc)))
	assert.True(t, rec.AfternoonEntry.Equal(clock(t, "12:50").On(testDate, loc)))
	// unset slots fall back to raw punches
	assert.True(t, rec.LunchExit.Equal(*raw[1].PunchedAt))
	assert.True(t, rec.FinalExit.Equal(*raw[3].PunchedAt))
}

func TestCompute_CorrectionOverridesEmptyDay(t *testing.T) {
	loc := saoPaulo(t)
	engine := NewEngine(loc, 5)

	rec := engine.Compute(DayInput{
		EmployeeID: testEmployee,
		Date:       testDate,
		Correction: &attendance.ManualCorrection{
			MorningEntry:   clock(t, "08:00"),
			LunchExit:      clock(t, "12:00"),
			AfternoonEntry: clock(t, "13:00"),
			FinalExit:      clock(t, "17:00"),
		},
		Weekly: weekly(t, "08:00", "12:00", "13:00", "17:00"),
	})

	assert.Equal(t, 480, rec.WorkedMinutes)
	assert.Equal(t, 480, rec.ExpectedMinutes)
	assert.Equal(t, 0, rec.BalanceSeconds)
	assert.Equal(t, attendance.StatusOK, rec.Status)
	assert.Equal(t, 0, rec.PunchCount)
}

func TestCompute_ToleranceMonotonicity(t *testing.T) {
	loc := saoPaulo(t)
	raw := punchesAt(t, loc, "06:58", "11:58", "13:00", "18:16")

	prev := -1
	for tolerance := 0; tolerance <= 30; tolerance++ {
		tol := tolerance
		rec := NewEngine(loc, 5).Compute(DayInput{
			EmployeeID: testEmployee,
			Date:       testDate,
			Punches:    raw,
			Exception: &schedule.ScheduleException{
				EmployeeID:               testEmployee,
				Date:                     testDate,
				Periods:                  periods(t, "07:00", "12:00", "13:00", "18:00"),
				IntervalToleranceMinutes: &tol,
			},
		})
		assert.Equal(t, tolerance, rec.ToleranceMinutes)
		if prev >= 0 {
			assert.LessOrEqual(t, rec.ExtraCLTMinutes, prev, "tolerance %d", tolerance)
		}
		prev = rec.ExtraCLTMinutes
	}
}

func TestCompute_FeriasCompletaZeroesEverything(t *testing.T) {
	loc := saoPaulo(t)
	engine := NewEngine(loc, 5)

	rec := engine.Compute(DayInput{
		EmployeeID: testEmployee,
		Date:       testDate,
		Punches:    punchesAt(t, loc, "07:00", "12:40", "14:00", "19:30"),
		Weekly:     weekly(t, "08:00", "12:00", "13:00", "17:00"),
		Occurrence: &attendance.Occurrence{
			Type:     attendance.OccurrenceFerias,
			Duration: attendance.DurationFull,
			Slots: attendance.OccurrenceSlots{
				MorningEntry: true, LunchExit: true, AfternoonEntry: true, FinalExit: true,
			},
		},
	})

	assert.Equal(t, 0, rec.ExpectedMinutes)
	assert.Nil(t, rec.ExpectedStart)
	assert.Nil(t, rec.ExpectedEnd)
	assert.Equal(t, 0, rec.AtrasoCLTMinutes)
	assert.Equal(t, 0, rec.ChegadaAntecCLTMinutes)
	assert.Equal(t, 0, rec.ExtraCLTMinutes)
	assert.Equal(t, 0, rec.SaidaAntecCLTMinutes)
	assert.Equal(t, 0, rec.SaldoCLTMinutes)
	assert.Equal(t, 0, rec.IntervalExcessSeconds)
	require.NotNil(t, rec.Occurrence)
	assert.Equal(t, attendance.OccurrenceFerias, rec.Occurrence.Type)
}

func TestCompute_DSROverridesSchedules(t *testing.T) {
	loc := saoPaulo(t)
	engine := NewEngine(loc, 5)

	rec := engine.Compute(DayInput{
		EmployeeID: testEmployee,
		Date:       testDate,
		Events: []calendar.Event{{
			Date:                  testDate,
			EventType:             calendar.EventTypeDSR,
			AppliesToAllEmployees: true,
		}},
		Exception: &schedule.ScheduleException{
			EmployeeID: testEmployee,
			Date:       testDate,
			Periods:    periods(t, "08:00", "12:00", "13:00", "17:00"),
		},
		Weekly: weekly(t, "08:00", "12:00", "13:00", "17:00"),
	})

	assert.Equal(t, 0, rec.ExpectedMinutes)
	assert.Equal(t, attendance.SourceCalendar, rec.ScheduleSource)
	assert.Equal(t, string(schedule.ShiftTypeNonWorking), rec.ShiftType)
	assert.Nil(t, rec.ExpectedStart)
	assert.Nil(t, rec.ExpectedEnd)
	assert.Equal(t, attendance.StatusOK, rec.Status)
}

func TestCompute_MeioPeriodo(t *testing.T) {
	loc := saoPaulo(t)
	engine := NewEngine(loc, 5)

	t.Run("afternoon exempt compares exit against morning end", func(t *testing.T) {
		rec := engine.Compute(DayInput{
			EmployeeID: testEmployee,
			Date:       testDate,
			Punches:    punchesAt(t, loc, "08:03", "11:50"),
			Weekly:     weekly(t, "08:00", "12:00", "13:00", "17:00"),
			Occurrence: &attendance.Occurrence{
				Type:     attendance.OccurrenceAtestado,
				Duration: attendance.DurationHalf,
				Slots:    attendance.OccurrenceSlots{AfternoonEntry: true, FinalExit: true},
			},
		})

		assert.Equal(t, 240, rec.ExpectedMinutes)
		assert.Equal(t, "08:00", utils.FormatClock(rec.ExpectedStart))
		assert.Equal(t, "12:00", utils.FormatClock(rec.ExpectedEnd))
		assert.Equal(t, 3, rec.AtrasoCLTMinutes)
		assert.Equal(t, 10, rec.SaidaAntecCLTMinutes)
		assert.Equal(t, -13, rec.SaldoCLTMinutes)
		assert.Equal(t, attendance.StatusOK, rec.Status)
	})

	t.Run("hours override replaces the exempted count", func(t *testing.T) {
		hours := 120
		rec := engine.Compute(DayInput{
			EmployeeID: testEmployee,
			Date:       testDate,
			Punches:    punchesAt(t, loc, "13:00", "17:00"),
			Weekly:     weekly(t, "08:00", "12:00", "13:00", "17:00"),
			Occurrence: &attendance.Occurrence{
				Type:         attendance.OccurrenceAtestado,
				HoursMinutes: &hours,
				Duration:     attendance.DurationHalf,
				Slots:        attendance.OccurrenceSlots{MorningEntry: true, LunchExit: true},
			},
		})

		assert.Equal(t, 360, rec.ExpectedMinutes)
		assert.Equal(t, "13:00", utils.FormatClock(rec.ExpectedStart))
		assert.Equal(t, 0, rec.AtrasoCLTMinutes)
		assert.Equal(t, 0, rec.SaidaAntecCLTMinutes)
		assert.Equal(t, 240, rec.WorkedMinutes)
	})

	t.Run("morning exempt with four punches compares the afternoon pair", func(t *testing.T) {
		rec := engine.Compute(DayInput{
			EmployeeID: testEmployee,
			Date:       testDate,
			Punches:    punchesAt(t, loc, "10:30", "12:00", "13:00", "17:00"),
			Weekly:     weekly(t, "08:00", "12:00", "13:00", "17:00"),
			Occurrence: &attendance.Occurrence{
				Type:     attendance.OccurrenceAtestado,
				Duration: attendance.DurationHalf,
				Slots:    attendance.OccurrenceSlots{MorningEntry: true, LunchExit: true},
			},
		})

		assert.Equal(t, "13:00", utils.FormatClock(rec.ExpectedStart))
		assert.Equal(t, "17:00", utils.FormatClock(rec.ExpectedEnd))
		assert.Equal(t, 0, rec.EarlyArrivalSeconds)
		assert.Equal(t, 0, rec.EarlyExitSeconds)
		assert.Equal(t, 0, rec.ChegadaAntecCLTMinutes)
		assert.Equal(t, 0, rec.SaidaAntecCLTMinutes)
		assert.Equal(t, 0, rec.SaldoCLTMinutes)
	})

	t.Run("afternoon exempt with four punches compares the morning pair", func(t *testing.T) {
		rec := engine.Compute(DayInput{
			EmployeeID: testEmployee,
			Date:       testDate,
			Punches:    punchesAt(t, loc, "08:00", "12:00", "13:00", "15:00"),
			Weekly:     weekly(t, "08:00", "12:00", "13:00", "17:00"),
			Occurrence: &attendance.Occurrence{
				Type:     attendance.OccurrenceAtestado,
				Duration: attendance.DurationHalf,
				Slots:    attendance.OccurrenceSlots{AfternoonEntry: true, FinalExit: true},
			},
		})

		assert.Equal(t, "12:00", utils.FormatClock(rec.ExpectedEnd))
		assert.Equal(t, 0, rec.AtrasoCLTMinutes)
		assert.Equal(t, 0, rec.SaidaAntecCLTMinutes)
		assert.Equal(t, 0, rec.SaldoCLTMinutes)
	})
}

func TestCompute_Unscheduled(t *testing.T) {
	loc := saoPaulo(t)
	rec := NewEngine(loc, 5).Compute(DayInput{
		EmployeeID: testEmployee,
		Date:       testDate,
		Punches:    punchesAt(t, loc, "09:00", "12:00"),
	})

	assert.Equal(t, attendance.SourceNone, rec.ScheduleSource)
	assert.Equal(t, 0, rec.ExpectedMinutes)
	assert.Equal(t, 180, rec.WorkedMinutes)
	assert.Equal(t, 180*60, rec.BalanceSeconds)
	assert.Equal(t, 5, rec.ToleranceMinutes)
	assert.Equal(t, attendance.StatusOK, rec.Status)
}
