package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePunches_Positional(t *testing.T) {
	loc := saoPaulo(t)

	tests := []struct {
		name   string
		clocks []string
		filled int
	}{
		{"no punches", nil, 0},
		{"one punch", []string{"08:00"}, 1},
		{"two punches", []string{"08:00", "12:00"}, 2},
		{"three punches", []string{"08:00", "12:00", "13:00"}, 3},
		{"four punches", []string{"08:00", "12:00", "13:00", "17:00"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePunches(punchesAt(t, loc, tt.clocks...), nil, testDate, loc)
			for i, slot := range got.Slots {
				if i < tt.filled {
					assert.NotNil(t, slot, "slot %d", i)
				} else {
					assert.Nil(t, slot, "slot %d", i)
				}
			}
			assert.Equal(t, len(tt.clocks), got.Count)
		})
	}
}

func TestNormalizePunches_SortsByTimestamp(t *testing.T) {
	loc := saoPaulo(t)
	raw := punchesAt(t, loc, "17:00", "08:00", "13:00", "12:00")

	got := NormalizePunches(raw, nil, testDate, loc)

	assert.Equal(t, "08:00", got.Slots[attendance.SlotMorningEntry].In(loc).Format("15:04"))
	assert.Equal(t, "12:00", got.Slots[attendance.SlotLunchExit].In(loc).Format("15:04"))
	assert.Equal(t, "13:00", got.Slots[attendance.SlotAfternoonEntry].In(loc).Format("15:04"))
	assert.Equal(t, "17:00", got.Slots[attendance.SlotFinalExit].In(loc).Format("15:04"))
}

func TestNormalizePunches_ExtraPunchesAreDiagnostic(t *testing.T) {
	loc := saoPaulo(t)
	raw := punchesAt(t, loc, "08:00", "10:00", "10:15", "12:00", "13:00", "17:05")

	got := NormalizePunches(raw, nil, testDate, loc)

	assert.Equal(t, 6, got.Count)
	assert.Equal(t, "12:00", got.Slots[attendance.SlotFinalExit].In(loc).Format("15:04"))
	require.NotNil(t, got.FirstEntry)
	require.NotNil(t, got.LastExit)
	assert.Equal(t, "08:00", got.FirstEntry.In(loc).Format("15:04"))
	assert.Equal(t, "17:05", got.LastExit.In(loc).Format("15:04"))
}

func TestNormalizePunches_MalformedSkipped(t *testing.T) {
	loc := saoPaulo(t)
	raw := punchesAt(t, loc, "08:00", "12:00")
	raw = append(raw, attendance.RawPunch{EmployeeID: testEmployee, WorkDate: testDate, RawValue: "25:99"})

	got := NormalizePunches(raw, nil, testDate, loc)

	assert.Equal(t, 2, got.Count)
	assert.Equal(t, 1, got.Malformed)
	assert.NotNil(t, got.Slots[attendance.SlotLunchExit])
	assert.Nil(t, got.Slots[attendance.SlotAfternoonEntry])
}

func TestNormalizePunches_CorrectionAnchorsToLocalDate(t *testing.T) {
	loc := saoPaulo(t)

	got := NormalizePunches(nil, &attendance.ManualCorrection{FinalExit: clock(t, "22:30")}, testDate, loc)

	require.NotNil(t, got.Slots[attendance.SlotFinalExit])
	want := time.Date(2024, 3, 5, 1, 30, 0, 0, time.UTC)
	assert.True(t, got.Slots[attendance.SlotFinalExit].Equal(want))
	assert.Equal(t, [4]bool{false, false, false, true}, got.Corrected)
	assert.Nil(t, got.FirstEntry)
}
