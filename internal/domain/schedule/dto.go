package schedule

import (
	"strings"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
)

// PeriodsInput carries the four period bounds as HH:mm strings.
type PeriodsInput struct {
	MorningStart   *string `json:"morning_start"`
	MorningEnd     *string `json:"morning_end"`
	AfternoonStart *string `json:"afternoon_start"`
	AfternoonEnd   *string `json:"afternoon_end"`
}

func (p PeriodsInput) validate() validator.ValidationErrors {
	var errs validator.ValidationErrors

	fields := []struct {
		name  string
		value *string
	}{
		{"morning_start", p.MorningStart},
		{"morning_end", p.MorningEnd},
		{"afternoon_start", p.AfternoonStart},
		{"afternoon_end", p.AfternoonEnd},
	}
	for _, f := range fields {
		if f.value != nil && !validator.IsEmpty(*f.value) && !validator.IsValidClock(*f.value) {
			errs = append(errs, validator.ValidationError{
				Field:   f.name,
				Message: f.name + " must be in HH:mm format",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	periods, _ := p.ToPeriods()
	if (periods.MorningStart == nil) != (periods.MorningEnd == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "morning",
			Message: "both morning_start and morning_end must be provided or neither",
		})
	}
	if (periods.AfternoonStart == nil) != (periods.AfternoonEnd == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "afternoon",
			Message: "both afternoon_start and afternoon_end must be provided or neither",
		})
	}
	if periods.HasMorning() && *periods.MorningEnd <= *periods.MorningStart {
		errs = append(errs, validator.ValidationError{
			Field:   "morning_end",
			Message: "morning_end must be after morning_start",
		})
	}
	if periods.HasAfternoon() && *periods.AfternoonEnd <= *periods.AfternoonStart {
		errs = append(errs, validator.ValidationError{
			Field:   "afternoon_end",
			Message: "afternoon_end must be after afternoon_start",
		})
	}
	if periods.HasMorning() && periods.HasAfternoon() && *periods.AfternoonStart < *periods.MorningEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "afternoon_start",
			Message: ErrPeriodOrder.Error(),
		})
	}

	return errs
}

// ToPeriods parses the bounds; blank values are treated as absent.
func (p PeriodsInput) ToPeriods() (Periods, error) {
	var (
		out Periods
		err error
	)
	if out.MorningStart, err = utils.ParseClockTimePtr(p.MorningStart); err != nil {
		return Periods{}, err
	}
	if out.MorningEnd, err = utils.ParseClockTimePtr(p.MorningEnd); err != nil {
		return Periods{}, err
	}
	if out.AfternoonStart, err = utils.ParseClockTimePtr(p.AfternoonStart); err != nil {
		return Periods{}, err
	}
	if out.AfternoonEnd, err = utils.ParseClockTimePtr(p.AfternoonEnd); err != nil {
		return Periods{}, err
	}
	return out, nil
}

// ========================================
// WEEKLY SCHEDULE DTOs
// ========================================

type UpsertWorkScheduleRequest struct {
	EmployeeID string `json:"-"`
	DayOfWeek  int    `json:"-"`
	PeriodsInput
}

func (r *UpsertWorkScheduleRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidEmployeeID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: ErrEmployeeIDRequired.Error(),
		})
	}
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		errs = append(errs, validator.ValidationError{
			Field:   "day_of_week",
			Message: ErrInvalidDayOfWeek.Error(),
		})
	}
	errs = append(errs, r.PeriodsInput.validate()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WorkScheduleResponse struct {
	EmployeeID      string  `json:"employee_id"`
	DayOfWeek       int     `json:"day_of_week"`
	MorningStart    *string `json:"morning_start"`
	MorningEnd      *string `json:"morning_end"`
	AfternoonStart  *string `json:"afternoon_start"`
	AfternoonEnd    *string `json:"afternoon_end"`
	ExpectedMinutes int     `json:"expected_minutes"`
}

// ========================================
// SCHEDULE EXCEPTION DTOs
// ========================================

type UpsertExceptionRequest struct {
	EmployeeID string `json:"-"`
	Date       string `json:"-"`
	PeriodsInput
	ShiftType                string `json:"shift_type"`
	BreakMinutes             *int   `json:"break_minutes,omitempty"`
	IntervalToleranceMinutes *int   `json:"interval_tolerance_minutes,omitempty"`
}

func (r *UpsertExceptionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidEmployeeID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: ErrEmployeeIDRequired.Error(),
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: ErrInvalidDateFormat.Error(),
		})
	}
	r.ShiftType = strings.ToUpper(strings.TrimSpace(r.ShiftType))
	if r.ShiftType == "" {
		r.ShiftType = string(ShiftTypeNormal)
	}
	if !validator.IsInSlice(r.ShiftType, ExceptionShiftTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_type",
			Message: "shift_type must be one of: " + strings.Join(ExceptionShiftTypes, ", "),
		})
	}
	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_minutes",
			Message: "break_minutes must be a non-negative number",
		})
	}
	if r.IntervalToleranceMinutes != nil && *r.IntervalToleranceMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "interval_tolerance_minutes",
			Message: "interval_tolerance_minutes must be a non-negative number",
		})
	}
	errs = append(errs, r.PeriodsInput.validate()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ExceptionFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
}

func (f *ExceptionFilter) Validate() error {
	var errs validator.ValidationErrors

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

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ExceptionResponse struct {
	EmployeeID               string  `json:"employee_id"`
	Date                     string  `json:"date"`
	MorningStart             *string `json:"morning_start"`
	MorningEnd               *string `json:"morning_end"`
	AfternoonStart           *string `json:"afternoon_start"`
	AfternoonEnd             *string `json:"afternoon_end"`
	ShiftType                string  `json:"shift_type"`
	BreakMinutes             *int    `json:"break_minutes,omitempty"`
	IntervalToleranceMinutes *int    `json:"interval_tolerance_minutes,omitempty"`
	Warning                  *string `json:"warning,omitempty"`
}
