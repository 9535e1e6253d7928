package attendance

import (
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
)

// ========================================
// PUNCH INGESTION DTOs
// ========================================

type PunchInput struct {
	EmployeeID string `json:"employee_id"`
	Timestamp  string `json:"timestamp"`
	// Date is the work date to file the punch under when Timestamp cannot be parsed.
	Date      *string `json:"date,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Source    string  `json:"source,omitempty"`
}

type IngestPunchesRequest struct {
	Punches []PunchInput `json:"punches"`
}

func (r *IngestPunchesRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Punches) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "punches",
			Message: "at least one punch is required",
		})
	}

	for i, p := range r.Punches {
		field := "punches[" + validator.Itoa(i) + "]"
		if validator.IsEmpty(p.EmployeeID) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".employee_id",
				Message: "employee_id is required",
			})
		}
		if p.Direction != "" && !validator.IsInSlice(p.Direction, []string{string(DirectionIn), string(DirectionOut)}) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".direction",
				Message: "direction must be IN or OUT",
			})
		}
		if p.Date != nil {
			if _, ok := validator.IsValidDate(*p.Date); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   field + ".date",
					Message: "date must be in YYYY-MM-DD format",
				})
			}
		}
		if validator.IsEmpty(p.Timestamp) && p.Date == nil {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".timestamp",
				Message: "timestamp or date is required",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type IngestPunchesResponse struct {
	Accepted     int      `json:"accepted"`
	Malformed    int      `json:"malformed"`
	Recalculated int      `json:"recalculated"`
	Failed       []string `json:"failed,omitempty"`
}

// ========================================
// MANUAL CORRECTION DTOs
// ========================================

type UpsertCorrectionRequest struct {
	EmployeeID     string  `json:"-"`
	Date           string  `json:"-"`
	MorningEntry   *string `json:"morning_entry"`
	LunchExit      *string `json:"lunch_exit"`
	AfternoonEntry *string `json:"afternoon_entry"`
	FinalExit      *string `json:"final_exit"`
	Reason         string  `json:"reason"`
	CorrectedBy    string  `json:"-"`
}

func (r *UpsertCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"morning_entry", r.MorningEntry},
		{"lunch_exit", r.LunchExit},
		{"afternoon_entry", r.AfternoonEntry},
		{"final_exit", r.FinalExit},
	}
	set := 0
	for _, f := range fields {
		if f.value == nil || validator.IsEmpty(*f.value) {
			continue
		}
		set++
		if !validator.IsValidClock(*f.value) {
			errs = append(errs, validator.ValidationError{
				Field:   f.name,
				Message: f.name + " must be in HH:mm format",
			})
		}
	}
	if set == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "punches",
			Message: ErrEmptyCorrection.Error(),
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CorrectionResponse struct {
	EmployeeID     string          `json:"employee_id"`
	Date           string          `json:"date"`
	MorningEntry   *string         `json:"morning_entry"`
	LunchExit      *string         `json:"lunch_exit"`
	AfternoonEntry *string         `json:"afternoon_entry"`
	FinalExit      *string         `json:"final_exit"`
	CorrectedBy    string          `json:"corrected_by"`
	Reason         string          `json:"reason"`
	Record         *RecordResponse `json:"record,omitempty"`
	Warning        *string         `json:"warning,omitempty"`
}

// ========================================
// OCCURRENCE DTOs
// ========================================

type SetOccurrenceRequest struct {
	EmployeeID     string  `json:"-"`
	Date           string  `json:"-"`
	Type           string  `json:"type"`
	HoursMinutes   *string `json:"hours_minutes,omitempty"` // HH:mm
	Duration       string  `json:"duration"`
	MorningEntry   bool    `json:"morning_entry"`
	LunchExit      bool    `json:"lunch_exit"`
	AfternoonEntry bool    `json:"afternoon_entry"`
	FinalExit      bool    `json:"final_exit"`
}

func (r *SetOccurrenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if !validator.IsInSlice(r.Type, OccurrenceTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of FERIADO, FALTA, FOLGA, ATESTADO, DECLARACAO, FERIAS",
		})
	}
	if !validator.IsInSlice(r.Duration, OccurrenceDurationValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "duration",
			Message: "duration must be COMPLETA or MEIO_PERIODO",
		})
	}
	if r.HoursMinutes != nil && !validator.IsEmpty(*r.HoursMinutes) && !validator.IsValidClock(*r.HoursMinutes) {
		errs = append(errs, validator.ValidationError{
			Field:   "hours_minutes",
			Message: "hours_minutes must be in HH:mm format",
		})
	}

	slots := r.Slots()
	if OccurrenceDuration(r.Duration) == DurationHalf && slots.Morning() == slots.Afternoon() {
		errs = append(errs, validator.ValidationError{
			Field:   "duration",
			Message: "MEIO_PERIODO must flag punches of exactly one half of the day",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *SetOccurrenceRequest) Slots() OccurrenceSlots {
	return OccurrenceSlots{
		MorningEntry:   r.MorningEntry,
		LunchExit:      r.LunchExit,
		AfternoonEntry: r.AfternoonEntry,
		FinalExit:      r.FinalExit,
	}
}

// ToOccurrence converts a validated request into the stored occurrence.
func (r *SetOccurrenceRequest) ToOccurrence() (Occurrence, error) {
	occ := Occurrence{
		Type:     OccurrenceType(r.Type),
		Duration: OccurrenceDuration(r.Duration),
		Slots:    r.Slots(),
	}
	hm, err := utils.ParseClockTimePtr(r.HoursMinutes)
	if err != nil {
		return Occurrence{}, err
	}
	if hm != nil {
		minutes := hm.Minutes()
		occ.HoursMinutes = &minutes
	}
	return occ, nil
}

type OccurrenceResponse struct {
	Type           string  `json:"type"`
	HoursMinutes   *string `json:"hours_minutes,omitempty"`
	Duration       string  `json:"duration"`
	MorningEntry   bool    `json:"morning_entry"`
	LunchExit      bool    `json:"lunch_exit"`
	AfternoonEntry bool    `json:"afternoon_entry"`
	FinalExit      bool    `json:"final_exit"`
}

// ========================================
// RECALCULATION DTOs
// ========================================

type RecalculateRequest struct {
	Date *string `json:"date,omitempty"`
	All  bool    `json:"all"`
}

func (r *RecalculateRequest) Validate() error {
	var errs validator.ValidationErrors

	hasDate := r.Date != nil && !validator.IsEmpty(*r.Date)
	if hasDate == r.All {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "provide either date or all=true",
		})
	}
	if hasDate {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecalculationFailure struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Error      string `json:"error"`
}

type RecalculationResponse struct {
	Dates     int                    `json:"dates"`
	Processed int                    `json:"processed"`
	Failed    []RecalculationFailure `json:"failed,omitempty"`
}

// ========================================
// PROCESSED RECORD DTOs
// ========================================

type RecordFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination, Limit 0 means no limit
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 500",
		})
	}
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(StatusOK), string(StatusInconsistent)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be OK or INCONSISTENTE",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RecordResponse is the reporting view of a processed record: times as HH:mm,
// "-" when absent.
type RecordResponse struct {
	EmployeeID     string `json:"employee_id"`
	Date           string `json:"date"`
	MorningEntry   string `json:"morning_entry"`
	LunchExit      string `json:"lunch_exit"`
	AfternoonEntry string `json:"afternoon_entry"`
	FinalExit      string `json:"final_exit"`
	FirstEntry     string `json:"first_entry"`
	LastExit       string `json:"last_exit"`
	PunchCount     int    `json:"punch_count"`

	ExpectedStart    string `json:"expected_start"`
	ExpectedEnd      string `json:"expected_end"`
	ShiftType        string `json:"shift_type"`
	ScheduleSource   string `json:"schedule_source"`
	ToleranceMinutes int    `json:"tolerance_minutes"`

	DelaySeconds          int `json:"delay_seconds"`
	EarlyArrivalSeconds   int `json:"early_arrival_seconds"`
	OvertimeSeconds       int `json:"overtime_seconds"`
	EarlyExitSeconds      int `json:"early_exit_seconds"`
	WorkedMinutes         int `json:"worked_minutes"`
	ExpectedMinutes       int `json:"expected_minutes"`
	BalanceSeconds        int `json:"balance_seconds"`
	IntervalExcessSeconds int `json:"interval_excess_seconds"`

	AtrasoCLTMinutes       int    `json:"atraso_clt_minutes"`
	ChegadaAntecCLTMinutes int    `json:"chegada_antec_clt_minutes"`
	ExtraCLTMinutes        int    `json:"extra_clt_minutes"`
	SaidaAntecCLTMinutes   int    `json:"saida_antec_clt_minutes"`
	SaldoCLTMinutes        int    `json:"saldo_clt_minutes"`
	SaldoCLT               string `json:"saldo_clt"`

	Status     string              `json:"status"`
	Occurrence *OccurrenceResponse `json:"occurrence,omitempty"`
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Records    []RecordResponse `json:"records"`
}

// NewRecordResponse formats a record for the reporting layer in loc.
func NewRecordResponse(r ProcessedRecord, loc *time.Location) RecordResponse {
	resp := RecordResponse{
		EmployeeID:     r.EmployeeID,
		Date:           utils.FormatDate(r.Date),
		MorningEntry:   utils.FormatHHMM(r.MorningEntry, loc),
		LunchExit:      utils.FormatHHMM(r.LunchExit, loc),
		AfternoonEntry: utils.FormatHHMM(r.AfternoonEntry, loc),
		FinalExit:      utils.FormatHHMM(r.FinalExit, loc),
		FirstEntry:     utils.FormatHHMM(r.FirstEntry, loc),
		LastExit:       utils.FormatHHMM(r.LastExit, loc),
		PunchCount:     r.PunchCount,

		ExpectedStart:    utils.FormatClock(r.ExpectedStart),
		ExpectedEnd:      utils.FormatClock(r.ExpectedEnd),
		ShiftType:        r.ShiftType,
		ScheduleSource:   string(r.ScheduleSource),
		ToleranceMinutes: r.ToleranceMinutes,

		DelaySeconds:          r.DelaySeconds,
		EarlyArrivalSeconds:   r.EarlyArrivalSeconds,
		OvertimeSeconds:       r.OvertimeSeconds,
		EarlyExitSeconds:      r.EarlyExitSeconds,
		WorkedMinutes:         r.WorkedMinutes,
		ExpectedMinutes:       r.ExpectedMinutes,
		BalanceSeconds:        r.BalanceSeconds,
		IntervalExcessSeconds: r.IntervalExcessSeconds,

		AtrasoCLTMinutes:       r.AtrasoCLTMinutes,
		ChegadaAntecCLTMinutes: r.ChegadaAntecCLTMinutes,
		ExtraCLTMinutes:        r.ExtraCLTMinutes,
		SaidaAntecCLTMinutes:   r.SaidaAntecCLTMinutes,
		SaldoCLTMinutes:        r.SaldoCLTMinutes,
		SaldoCLT:               utils.FormatSignedMinutes(r.SaldoCLTMinutes),

		Status: string(r.Status),
	}

	if occ := r.Occurrence; occ != nil {
		o := &OccurrenceResponse{
			Type:           string(occ.Type),
			Duration:       string(occ.Duration),
			MorningEntry:   occ.Slots.MorningEntry,
			LunchExit:      occ.Slots.LunchExit,
			AfternoonEntry: occ.Slots.AfternoonEntry,
			FinalExit:      occ.Slots.FinalExit,
		}
		if occ.HoursMinutes != nil {
			hm := utils.ClockTime(*occ.HoursMinutes).String()
			o.HoursMinutes = &hm
		}
		resp.Occurrence = o
	}

	return resp
}
