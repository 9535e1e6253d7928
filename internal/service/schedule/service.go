package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository"
)

type scheduleServiceImpl struct {
	store         repository.Store
	attendanceSvc attendance.AttendanceService
}

func newWorkScheduleResponse(ws schedule.WorkSchedule) schedule.WorkScheduleResponse {
	return schedule.WorkScheduleResponse{
		EmployeeID:      ws.EmployeeID,
		DayOfWeek:       ws.DayOfWeek,
		MorningStart:    utils.ClockString(ws.MorningStart),
		MorningEnd:      utils.ClockString(ws.MorningEnd),
		AfternoonStart:  utils.ClockString(ws.AfternoonStart),
		AfternoonEnd:    utils.ClockString(ws.AfternoonEnd),
		ExpectedMinutes: ws.MorningMinutes() + ws.AfternoonMinutes(),
	}
}

func newExceptionResponse(ex schedule.ScheduleException) schedule.ExceptionResponse {
	return schedule.ExceptionResponse{
		EmployeeID:               ex.EmployeeID,
		Date:                     utils.FormatDate(ex.Date),
		MorningStart:             utils.ClockString(ex.MorningStart),
		MorningEnd:               utils.ClockString(ex.MorningEnd),
		AfternoonStart:           utils.ClockString(ex.AfternoonStart),
		AfternoonEnd:             utils.ClockString(ex.AfternoonEnd),
		ShiftType:                string(ex.ShiftType),
		BreakMinutes:             ex.BreakMinutes,
		IntervalToleranceMinutes: ex.IntervalToleranceMinutes,
	}
}

func validateEmployeeID(employeeID string) error {
	if !validator.IsValidEmployeeID(employeeID) {
		return validator.ValidationErrors{{
			Field:   "employee_id",
			Message: "invalid employee id",
		}}
	}
	return nil
}

// UpsertWorkSchedule implements schedule.ScheduleService. Weekly schedules only
// apply to days recomputed afterwards; stored records are left as they are.
func (s *scheduleServiceImpl) UpsertWorkSchedule(ctx context.Context, req schedule.UpsertWorkScheduleRequest) (schedule.WorkScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.WorkScheduleResponse{}, err
	}

	periods, err := req.ToPeriods()
	if err != nil {
		return schedule.WorkScheduleResponse{}, err
	}

	ws := schedule.WorkSchedule{
		EmployeeID: req.EmployeeID,
		DayOfWeek:  req.DayOfWeek,
		Periods:    periods,
	}
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		ws, err = s.store.WorkSchedules().Upsert(ctx, ws)
		return err
	})
	if err != nil {
		return schedule.WorkScheduleResponse{}, fmt.Errorf("failed to save work schedule: %w", err)
	}

	slog.Info("work schedule saved", "employee_id", ws.EmployeeID, "day_of_week", ws.DayOfWeek)
	return newWorkScheduleResponse(ws), nil
}

// ListWorkSchedules implements schedule.ScheduleService.
func (s *scheduleServiceImpl) ListWorkSchedules(ctx context.Context, employeeID string) ([]schedule.WorkScheduleResponse, error) {
	if err := validateEmployeeID(employeeID); err != nil {
		return nil, err
	}

	schedules, err := s.store.WorkSchedules().ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work schedules: %w", err)
	}

	resp := make([]schedule.WorkScheduleResponse, 0, len(schedules))
	for _, ws := range schedules {
		resp = append(resp, newWorkScheduleResponse(ws))
	}
	return resp, nil
}

// DeleteWorkSchedule implements schedule.ScheduleService.
func (s *scheduleServiceImpl) DeleteWorkSchedule(ctx context.Context, employeeID string, dayOfWeek int) error {
	var errs validator.ValidationErrors
	if !validator.IsValidEmployeeID(employeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "invalid employee id"})
	}
	if dayOfWeek < 0 || dayOfWeek > 6 {
		errs = append(errs, validator.ValidationError{Field: "day_of_week", Message: schedule.ErrInvalidDayOfWeek.Error()})
	}
	if len(errs) > 0 {
		return errs
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		return s.store.WorkSchedules().Delete(ctx, employeeID, dayOfWeek)
	})
	if err != nil {
		if errors.Is(err, schedule.ErrWorkScheduleNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete work schedule: %w", err)
	}

	slog.Info("work schedule deleted", "employee_id", employeeID, "day_of_week", dayOfWeek)
	return nil
}

// UpsertException implements schedule.ScheduleService. The exception is
// committed first; a failed recompute of its date becomes a warning.
func (s *scheduleServiceImpl) UpsertException(ctx context.Context, req schedule.UpsertExceptionRequest) (schedule.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.ExceptionResponse{}, err
	}
	day, _ := utils.ParseDate(req.Date)

	periods, err := req.ToPeriods()
	if err != nil {
		return schedule.ExceptionResponse{}, err
	}

	ex := schedule.ScheduleException{
		EmployeeID:               req.EmployeeID,
		Date:                     day,
		Periods:                  periods,
		ShiftType:                schedule.ShiftType(req.ShiftType),
		BreakMinutes:             req.BreakMinutes,
		IntervalToleranceMinutes: req.IntervalToleranceMinutes,
	}
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		ex, err = s.store.Exceptions().Upsert(ctx, ex)
		return err
	})
	if err != nil {
		return schedule.ExceptionResponse{}, fmt.Errorf("failed to save schedule exception: %w", err)
	}

	slog.Info("schedule exception saved",
		"employee_id", ex.EmployeeID,
		"date", req.Date,
		"shift_type", ex.ShiftType,
	)

	resp := newExceptionResponse(ex)
	if _, err := s.attendanceSvc.Refresh(ctx, ex.EmployeeID, day); err != nil {
		warning := err.Error()
		resp.Warning = &warning
	}
	return resp, nil
}

// ListExceptions implements schedule.ScheduleService.
func (s *scheduleServiceImpl) ListExceptions(ctx context.Context, employeeID string, filter schedule.ExceptionFilter) ([]schedule.ExceptionResponse, error) {
	if err := validateEmployeeID(employeeID); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	exceptions, err := s.store.Exceptions().ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule exceptions: %w", err)
	}

	resp := make([]schedule.ExceptionResponse, 0, len(exceptions))
	for _, ex := range exceptions {
		resp = append(resp, newExceptionResponse(ex))
	}
	return resp, nil
}

// DeleteException implements schedule.ScheduleService. The returned error
// wraps attendance.ErrRecalculationPending when the delete committed but the
// recompute of its date did not.
func (s *scheduleServiceImpl) DeleteException(ctx context.Context, employeeID string, date string) error {
	var errs validator.ValidationErrors
	if !validator.IsValidEmployeeID(employeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "invalid employee id"})
	}
	day, ok := validator.IsValidDate(date)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: schedule.ErrInvalidDateFormat.Error()})
	}
	if len(errs) > 0 {
		return errs
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		return s.store.Exceptions().Delete(ctx, employeeID, day)
	})
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleExceptionNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete schedule exception: %w", err)
	}

	slog.Info("schedule exception deleted", "employee_id", employeeID, "date", date)
	_, err = s.attendanceSvc.Refresh(ctx, employeeID, day)
	return err
}

func NewScheduleService(store repository.Store, attendanceSvc attendance.AttendanceService) schedule.ScheduleService {
	return &scheduleServiceImpl{
		store:         store,
		attendanceSvc: attendanceSvc,
	}
}
