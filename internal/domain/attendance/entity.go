package attendance

import (
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
)

type Direction string

const (
	DirectionIn      Direction = "IN"
	DirectionOut     Direction = "OUT"
	DirectionUnknown Direction = ""
)

// RawPunch is one clock event as received from the time-clock feed. Rows are
// append-only. PunchedAt is nil when the feed value could not be parsed.
type RawPunch struct {
	ID         string
	EmployeeID string
	WorkDate   time.Time
	PunchedAt  *time.Time
	RawValue   string
	Direction  Direction
	Source     string
	CreatedAt  time.Time
}

// ManualCorrection overrides any subset of the four canonical punches of a day.
type ManualCorrection struct {
	EmployeeID     string
	Date           time.Time
	MorningEntry   *utils.ClockTime
	LunchExit      *utils.ClockTime
	AfternoonEntry *utils.ClockTime
	FinalExit      *utils.ClockTime
	CorrectedBy    string
	Reason         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Slot returns the correction for a canonical slot.
func (c ManualCorrection) Slot(s Slot) *utils.ClockTime {
	switch s {
	case SlotMorningEntry:
		return c.MorningEntry
	case SlotLunchExit:
		return c.LunchExit
	case SlotAfternoonEntry:
		return c.AfternoonEntry
	case SlotFinalExit:
		return c.FinalExit
	}
	return nil
}

// Slot identifies one of the four canonical punches of a day.
type Slot int

const (
	SlotMorningEntry Slot = iota
	SlotLunchExit
	SlotAfternoonEntry
	SlotFinalExit
)

var Slots = [4]Slot{SlotMorningEntry, SlotLunchExit, SlotAfternoonEntry, SlotFinalExit}

func (s Slot) String() string {
	switch s {
	case SlotMorningEntry:
		return "morning_entry"
	case SlotLunchExit:
		return "lunch_exit"
	case SlotAfternoonEntry:
		return "afternoon_entry"
	case SlotFinalExit:
		return "final_exit"
	}
	return "unknown"
}

type OccurrenceType string

const (
	OccurrenceFeriado    OccurrenceType = "FERIADO"
	OccurrenceFalta      OccurrenceType = "FALTA"
	OccurrenceFolga      OccurrenceType = "FOLGA"
	OccurrenceAtestado   OccurrenceType = "ATESTADO"
	OccurrenceDeclaracao OccurrenceType = "DECLARACAO"
	OccurrenceFerias     OccurrenceType = "FERIAS"
)

var OccurrenceTypeValues = []string{
	string(OccurrenceFeriado),
	string(OccurrenceFalta),
	string(OccurrenceFolga),
	string(OccurrenceAtestado),
	string(OccurrenceDeclaracao),
	string(OccurrenceFerias),
}

type OccurrenceDuration string

const (
	DurationFull OccurrenceDuration = "COMPLETA"
	DurationHalf OccurrenceDuration = "MEIO_PERIODO"
)

var OccurrenceDurationValues = []string{
	string(DurationFull),
	string(DurationHalf),
}

// OccurrenceSlots flags which canonical punches an occurrence exempts.
type OccurrenceSlots struct {
	MorningEntry   bool
	LunchExit      bool
	AfternoonEntry bool
	FinalExit      bool
}

func (s OccurrenceSlots) Any() bool {
	return s.MorningEntry || s.LunchExit || s.AfternoonEntry || s.FinalExit
}

func (s OccurrenceSlots) Morning() bool   { return s.MorningEntry || s.LunchExit }
func (s OccurrenceSlots) Afternoon() bool { return s.AfternoonEntry || s.FinalExit }

// Occurrence is an operator-declared exemption stored on the day's record.
type Occurrence struct {
	Type OccurrenceType
	// HoursMinutes overrides the exempted minute count when set.
	HoursMinutes *int
	Duration     OccurrenceDuration
	Slots        OccurrenceSlots
}

type Status string

const (
	StatusOK           Status = "OK"
	StatusInconsistent Status = "INCONSISTENTE"
)

type ScheduleSource string

const (
	SourceCalendar  ScheduleSource = "CALENDAR"
	SourceException ScheduleSource = "EXCEPTION"
	SourceWeekly    ScheduleSource = "WEEKLY"
	SourceNone      ScheduleSource = "NONE"
)

// ProcessedRecord is the engine's authoritative output for one employee day.
type ProcessedRecord struct {
	EmployeeID string
	Date       time.Time

	MorningEntry   *time.Time
	LunchExit      *time.Time
	AfternoonEntry *time.Time
	FinalExit      *time.Time
	FirstEntry     *time.Time
	LastExit       *time.Time
	PunchCount     int

	ExpectedStart    *utils.ClockTime
	ExpectedEnd      *utils.ClockTime
	ShiftType        string
	ScheduleSource   ScheduleSource
	ToleranceMinutes int

	DelaySeconds          int
	EarlyArrivalSeconds   int
	OvertimeSeconds       int
	EarlyExitSeconds      int
	WorkedMinutes         int
	ExpectedMinutes       int
	BalanceSeconds        int
	IntervalExcessSeconds int

	AtrasoCLTMinutes       int
	ChegadaAntecCLTMinutes int
	ExtraCLTMinutes        int
	SaidaAntecCLTMinutes   int
	SaldoCLTMinutes        int

	Status Status

	Occurrence *Occurrence

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Punch returns the canonical punch stored for a slot.
func (r ProcessedRecord) Punch(s Slot) *time.Time {
	switch s {
	case SlotMorningEntry:
		return r.MorningEntry
	case SlotLunchExit:
		return r.LunchExit
	case SlotAfternoonEntry:
		return r.AfternoonEntry
	case SlotFinalExit:
		return r.FinalExit
	}
	return nil
}

// RecalcKey identifies one (employee, date) unit of recomputation.
type RecalcKey struct {
	EmployeeID string
	Date       time.Time
}

func (k RecalcKey) String() string {
	return k.EmployeeID + "@" + utils.FormatDate(k.Date)
}

// PendingRecalc is a key whose last recomputation failed and must be retried.
type PendingRecalc struct {
	RecalcKey
	Attempts  int
	LastError string
	QueuedAt  time.Time
}
