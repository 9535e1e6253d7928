package report

import (
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// MONTHLY SUMMARY
// ========================================

type MonthlySummaryRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      string `json:"month"` // YYYY-MM
}

func (r *MonthlySummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidEmployeeID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: ErrEmployeeIDRequired.Error(),
		})
	}
	if _, ok := validator.IsValidMonth(r.Month); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: ErrInvalidMonth.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlySummary struct {
	EmployeeID  string `json:"employee_id"`
	Month       string `json:"month"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	GeneratedAt string `json:"generated_at"`

	Totals    SummaryTotals               `json:"totals"`
	DailyLogs []attendance.RecordResponse `json:"daily_logs"`
}

type SummaryTotals struct {
	Days             int `json:"days"`
	DaysOK           int `json:"days_ok"`
	DaysInconsistent int `json:"days_inconsistent"`

	WorkedMinutes   int             `json:"worked_minutes"`
	ExpectedMinutes int             `json:"expected_minutes"`
	WorkedHours     decimal.Decimal `json:"worked_hours"`
	ExpectedHours   decimal.Decimal `json:"expected_hours"`
	BalanceHours    decimal.Decimal `json:"balance_hours"`

	AtrasoCLTMinutes       int             `json:"atraso_clt_minutes"`
	ChegadaAntecCLTMinutes int             `json:"chegada_antec_clt_minutes"`
	ExtraCLTMinutes        int             `json:"extra_clt_minutes"`
	SaidaAntecCLTMinutes   int             `json:"saida_antec_clt_minutes"`
	SaldoCLTMinutes        int             `json:"saldo_clt_minutes"`
	SaldoCLT               string          `json:"saldo_clt"`
	SaldoCLTHours          decimal.Decimal `json:"saldo_clt_hours"`

	Occurrences map[string]int `json:"occurrences"`
}
