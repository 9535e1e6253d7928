package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
)

type scheduleExceptionRepository struct {
	db *database.SQLiteDB
}

const scheduleExceptionColumns = `
	employee_id, date, morning_start, morning_end, afternoon_start, afternoon_end,
	shift_type, break_minutes, interval_tolerance_minutes, created_at, updated_at
`

func scanScheduleException(row rowScanner) (schedule.ScheduleException, error) {
	var (
		ex                      schedule.ScheduleException
		day, createdAt, updated string
		ms, me, as, ae          *string
		shiftType               string
	)
	err := row.Scan(
		&ex.EmployeeID, &day,
		&ms, &me, &as, &ae,
		&shiftType, &ex.BreakMinutes, &ex.IntervalToleranceMinutes,
		&createdAt, &updated,
	)
	if err != nil {
		return schedule.ScheduleException{}, err
	}
	ex.ShiftType = schedule.ShiftType(shiftType)
	if err := scanPeriods(&ex.Periods, ms, me, as, ae); err != nil {
		return schedule.ScheduleException{}, err
	}
	if ex.Date, err = parseDate(day); err != nil {
		return schedule.ScheduleException{}, err
	}
	if ex.CreatedAt, err = parseTime(createdAt); err != nil {
		return schedule.ScheduleException{}, err
	}
	if ex.UpdatedAt, err = parseTime(updated); err != nil {
		return schedule.ScheduleException{}, err
	}
	return ex, nil
}

// Get implements schedule.ExceptionRepository.
func (r *scheduleExceptionRepository) Get(ctx context.Context, employeeID string, date time.Time) (*schedule.ScheduleException, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + scheduleExceptionColumns + ` FROM schedule_exceptions WHERE employee_id = ? AND date = ?`
	ex, err := scanScheduleException(q.QueryRowContext(ctx, query, employeeID, dateArg(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule exception: %w", err)
	}
	return &ex, nil
}

// ListByEmployee implements schedule.ExceptionRepository.
func (r *scheduleExceptionRepository) ListByEmployee(ctx context.Context, employeeID string, filter schedule.ExceptionFilter) ([]schedule.ScheduleException, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"employee_id = ?"}
	args := []any{employeeID}

	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClauses = append(whereClauses, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClauses = append(whereClauses, "date <= ?")
		args = append(args, *filter.EndDate)
	}

	query := `SELECT ` + scheduleExceptionColumns + ` FROM schedule_exceptions WHERE ` +
		strings.Join(whereClauses, " AND ") + ` ORDER BY date`

	rows, err := q.QueryContext(ctx, query, args...)
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
			shift_type, break_minutes, interval_tolerance_minutes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			morning_start              = excluded.morning_start,
			morning_end                = excluded.morning_end,
			afternoon_start            = excluded.afternoon_start,
			afternoon_end              = excluded.afternoon_end,
			shift_type                 = excluded.shift_type,
			break_minutes              = excluded.break_minutes,
			interval_tolerance_minutes = excluded.interval_tolerance_minutes,
			updated_at                 = excluded.updated_at
		RETURNING created_at, updated_at
	`
	now := nowArg()
	var createdAt, updated string
	err := q.QueryRowContext(ctx, query,
		ex.EmployeeID, dateArg(ex.Date),
		clockArg(ex.MorningStart), clockArg(ex.MorningEnd), clockArg(ex.AfternoonStart), clockArg(ex.AfternoonEnd),
		string(ex.ShiftType), ex.BreakMinutes, ex.IntervalToleranceMinutes,
		now, now,
	).Scan(&createdAt, &updated)
	if err != nil {
		return schedule.ScheduleException{}, fmt.Errorf("failed to upsert schedule exception: %w", err)
	}
	if ex.CreatedAt, err = parseTime(createdAt); err != nil {
		return schedule.ScheduleException{}, err
	}
	if ex.UpdatedAt, err = parseTime(updated); err != nil {
		return schedule.ScheduleException{}, err
	}
	return ex, nil
}

// Delete implements schedule.ExceptionRepository.
func (r *scheduleExceptionRepository) Delete(ctx context.Context, employeeID string, date time.Time) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `DELETE FROM schedule_exceptions WHERE employee_id = ? AND date = ?`, employeeID, dateArg(date))
	if err != nil {
		return fmt.Errorf("failed to delete schedule exception: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrScheduleExceptionNotFound
	}
	return nil
}

func NewScheduleExceptionRepository(db *database.SQLiteDB) schedule.ExceptionRepository {
	return &scheduleExceptionRepository{db: db}
}
