package attendance

import (
	"testing"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDay(t *testing.T) {
	loc := saoPaulo(t)
	fullDay := weekly(t, "08:00", "12:00", "13:00", "17:00")
	malformed := attendance.RawPunch{EmployeeID: testEmployee, WorkDate: testDate, RawValue: "garbage"}

	tests := []struct {
		name       string
		punches    []attendance.RawPunch
		correction *attendance.ManualCorrection
		occurrence *attendance.Occurrence
		want       attendance.Status
	}{
		{
			name:    "complete day",
			punches: punchesAt(t, loc, "08:00", "12:00", "13:00", "17:00"),
			want:    attendance.StatusOK,
		},
		{
			name: "no punches is an absence, not an inconsistency",
			want: attendance.StatusOK,
		},
		{
			name:    "malformed punch",
			punches: append(punchesAt(t, loc, "08:00", "12:00", "13:00", "17:00"), malformed),
			want:    attendance.StatusInconsistent,
		},
		{
			name:       "correction puts slots out of order",
			punches:    punchesAt(t, loc, "08:00", "12:00", "13:00", "17:00"),
			correction: &attendance.ManualCorrection{LunchExit: clock(t, "07:30")},
			want:       attendance.StatusInconsistent,
		},
		{
			name:    "more than four punches",
			punches: punchesAt(t, loc, "08:00", "10:00", "10:10", "12:00", "13:00", "17:00"),
			want:    attendance.StatusInconsistent,
		},
		{
			name:    "more than four punches fully disambiguated by correction",
			punches: punchesAt(t, loc, "08:00", "10:00", "10:10", "12:00", "13:00", "17:00"),
			correction: &attendance.ManualCorrection{
				MorningEntry:   clock(t, "08:00"),
				LunchExit:      clock(t, "12:00"),
				AfternoonEntry: clock(t, "13:00"),
				FinalExit:      clock(t, "17:00"),
			},
			want: attendance.StatusOK,
		},
		{
			name:    "three punches leave the afternoon pair open",
			punches: punchesAt(t, loc, "08:00", "12:00", "13:00"),
			want:    attendance.StatusInconsistent,
		},
		{
			name:    "single punch",
			punches: punchesAt(t, loc, "08:00"),
			want:    attendance.StatusInconsistent,
		},
		{
			name:    "morning worked, afternoon never punched",
			punches: punchesAt(t, loc, "08:00", "12:00"),
			want:    attendance.StatusInconsistent,
		},
		{
			name:    "afternoon occurrence explains the gap",
			punches: punchesAt(t, loc, "08:00", "12:00"),
			occurrence: &attendance.Occurrence{
				Type:     attendance.OccurrenceDeclaracao,
				Duration: attendance.DurationHalf,
				Slots:    attendance.OccurrenceSlots{AfternoonEntry: true, FinalExit: true},
			},
			want: attendance.StatusOK,
		},
		{
			name:    "full-day occurrence excuses a stray punch",
			punches: punchesAt(t, loc, "09:00"),
			occurrence: &attendance.Occurrence{
				Type:     attendance.OccurrenceFalta,
				Duration: attendance.DurationFull,
			},
			want: attendance.StatusOK,
		},
	}

	engine := NewEngine(loc, 5)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := engine.Compute(DayInput{
				EmployeeID: testEmployee,
				Date:       testDate,
				Punches:    tt.punches,
				Correction: tt.correction,
				Weekly:     fullDay,
				Occurrence: tt.occurrence,
			})
			assert.Equal(t, tt.want, rec.Status)
		})
	}
}
