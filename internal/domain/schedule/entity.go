package schedule

import (
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
)

type ShiftType string

const (
	ShiftTypeNormal      ShiftType = "NORMAL"
	ShiftTypeNonWorking  ShiftType = "NON_WORKING"
	ShiftTypeUnscheduled ShiftType = "UNSCHEDULED"
)

// ExceptionShiftTypes are the shift types an exception may declare.
var ExceptionShiftTypes = []string{
	string(ShiftTypeNormal),
	string(ShiftTypeNonWorking),
}

// Periods holds the two work periods of a day. A nil pair means the half is
// not worked.
type Periods struct {
	MorningStart   *utils.ClockTime
	MorningEnd     *utils.ClockTime
	AfternoonStart *utils.ClockTime
	AfternoonEnd   *utils.ClockTime
}

func (p Periods) HasMorning() bool {
	return p.MorningStart != nil && p.MorningEnd != nil
}

func (p Periods) HasAfternoon() bool {
	return p.AfternoonStart != nil && p.AfternoonEnd != nil
}

// MorningMinutes is the length of the morning period, 0 when not worked.
func (p Periods) MorningMinutes() int {
	if !p.HasMorning() {
		return 0
	}
	return max(0, p.MorningEnd.Minutes()-p.MorningStart.Minutes())
}

// AfternoonMinutes is the length of the afternoon period, 0 when not worked.
func (p Periods) AfternoonMinutes() int {
	if !p.HasAfternoon() {
		return 0
	}
	return max(0, p.AfternoonEnd.Minutes()-p.AfternoonStart.Minutes())
}

// WorkSchedule is the default schedule of an employee for one weekday.
type WorkSchedule struct {
	EmployeeID string
	DayOfWeek  int // 0=Sunday, ..., 6=Saturday
	Periods
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduleException replaces the weekday schedule of an employee on one date.
type ScheduleException struct {
	EmployeeID string
	Date       time.Time
	Periods
	ShiftType                ShiftType
	BreakMinutes             *int
	IntervalToleranceMinutes *int
	CreatedAt                time.Time
	UpdatedAt                time.Time
}
