package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type scheduleExceptionRepository struct {
	db *database.DB
}

const scheduleExceptionColumns = `
	employee_id, date,
	to_char(morning_start, 'HH24:MI'), to_char(morning_end, 'HH24:MI'),
	to_char(afternoon_start, 'HH24:MI'), to_char(afternoon_end, 'HH24:MI'),
	shift_type, break_minutes, interval_tolerance_minutes,
	created_at, updated_at
`

func scanScheduleException(row pgx.Row) (schedule.ScheduleException, error) {
	var (
		ex             schedule.ScheduleException
		ms, me, as, ae *string
		shiftType      string
	)
	err := row.Scan(
		&ex.EmployeeID, &ex.Date,
		&ms, &me, &as, &ae,
		&shiftType, &ex.BreakMinutes, &ex.IntervalToleranceMinutes,
		&ex.CreatedAt, &ex.UpdatedAt,
	)
	if err != nil {
		return schedule.ScheduleException{}, err
	}
	ex.ShiftType = schedule.ShiftType(shiftType)
	if err := scanPeriods(&ex.Periods, ms, me, as, ae); err != nil {
		return schedule.ScheduleException{}, err
	}
	return ex, nil
}

// Get implements schedule.ExceptionRepository.
func (r *scheduleExceptionRepository) Get(ctx context.Context, employeeID string, date time.Time) (*schedule.ScheduleException, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + scheduleExceptionColumns + ` FROM schedule_exceptions WHERE employee_id = $1 AND date = $2`
	ex, err := scanScheduleException(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule exception: %w", err)
	}
	return &ex, nil
}

// ListByEmployee implements schedule.ExceptionRepository.
func (r *scheduleExceptionRepository) ListByEmployee(ctx context.Context, employeeID string, filter schedule.ExceptionFilter) ([]schedule.ScheduleException, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"employee_id = $1"}
	args := []any{employeeID}
	argIdx := 2

	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("date >= $%d::date", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("date <= $%d::date", argIdx))
		args = append(args, *filter.EndDate)
	}

	query := `SELECT ` + scheduleExceptionColumns + ` FROM schedule_exceptions WHERE ` +
		strings.Join(whereClauses, " AND ") + ` ORDER BY date`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []schedule.ScheduleException
	for rows.Next() {
		ex, err := scanScheduleException(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule exception: %w", err)
		}
		exceptions = append(exceptions, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule exceptions: %w", err)
	}
	return exceptions, nil
}

// Upsert implements schedule.ExceptionRepository.
func (r *scheduleExceptionRepository) Upsert(ctx context.Context, ex schedule.ScheduleException) (schedule.ScheduleException, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO schedule_exceptions (
			employee_id, date, morning_start, morning_end, afternoon_start, afternoon_end,
			shift_type, break_minutes, interval_tolerance_minutes
		) VALUES ($1, $2, $3::time, $4::time, $5::time, $6::time, $7, $8, $9)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			morning_start              = EXCLUDED.morning_start,
			morning_end                = EXCLUDED.morning_end,
			afternoon_start            = EXCLUDED.afternoon_start,
			afternoon_end              = EXCLUDED.afternoon_end,
			shift_type                 = EXCLUDED.shift_type,
			break_minutes              = EXCLUDED.break_minutes,
			interval_tolerance_minutes = EXCLUDED.interval_tolerance_minutes,
			updated_at                 = NOW()
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		ex.EmployeeID, ex.Date,
		clockArg(ex.MorningStart), clockArg(ex.MorningEnd), clockArg(ex.AfternoonStart), clockArg(ex.AfternoonEnd),
		string(ex.ShiftType), ex.BreakMinutes, ex.IntervalToleranceMinutes,
	).Scan(&ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		return schedule.ScheduleException{}, fmt.Errorf("failed to upsert schedule exception: %w", err)
	}
	return ex, nil
}

// Delete implements schedule.ExceptionRepository.
func (r *scheduleExceptionRepository) Delete(ctx context.Context, employeeID string, date time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM schedule_exceptions WHERE employee_id = $1 AND date = $2`, employeeID, date)
	if err != nil {
		return fmt.Errorf("failed to delete schedule exception: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrScheduleExceptionNotFound
	}
	return nil
}

func NewScheduleExceptionRepository(db *database.DB) schedule.ExceptionRepository {
	return &scheduleExceptionRepository{db: db}
}
