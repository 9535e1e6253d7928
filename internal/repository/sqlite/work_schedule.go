package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
)

type workScheduleRepository struct {
	db *database.SQLiteDB
}

const workScheduleColumns = `
	employee_id, day_of_week, morning_start, morning_end, afternoon_start, afternoon_end, created_at, updated_at
`

func scanPeriods(p *schedule.Periods, ms, me, as, ae *string) error {
	var err error
	if p.MorningStart, err = scanClock(ms); err != nil {
		return err
	}
	if p.MorningEnd, err = scanClock(me); err != nil {
		return err
	}
	if p.AfternoonStart, err = scanClock(as); err != nil {
		return err
	}
	if p.AfternoonEnd, err = scanClock(ae); err != nil {
		return err
	}
	return nil
}

func scanWorkSchedule(row rowScanner) (schedule.WorkSchedule, error) {
	var (
		ws                 schedule.WorkSchedule
		ms, me, as, ae     *string
		createdAt, updated string
	)
	if err := row.Scan(&ws.EmployeeID, &ws.DayOfWeek, &ms, &me, &as, &ae, &createdAt, &updated); err != nil {
		return schedule.WorkSchedule{}, err
	}
	if err := scanPeriods(&ws.Periods, ms, me, as, ae); err != nil {
		return schedule.WorkSchedule{}, err
	}
	var err error
	if ws.CreatedAt, err = parseTime(createdAt); err != nil {
		return schedule.WorkSchedule{}, err
	}
	if ws.UpdatedAt, err = parseTime(updated); err != nil {
		return schedule.WorkSchedule{}, err
	}
	return ws, nil
}

// Get implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) Get(ctx context.Context, employeeID string, dayOfWeek int) (*schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workScheduleColumns + ` FROM work_schedules WHERE employee_id = ? AND day_of_week = ?`
	ws, err := scanWorkSchedule(q.QueryRowContext(ctx, query, employeeID, dayOfWeek))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work schedule: %w", err)
	}
	return &ws, nil
}

// ListByEmployee implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) ListByEmployee(ctx context.Context, employeeID string) ([]schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workScheduleColumns + ` FROM work_schedules WHERE employee_id = ? ORDER BY day_of_week`
	rows, err := q.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query work schedules: %w", err)
	}
	defer rows.Close()

	var schedules []schedule.WorkSchedule
	for rows.Next() {
		ws, err := scanWorkSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work schedule: %w", err)
		}
		schedules = append(schedules, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work schedules: %w", err)
	}
	return schedules, nil
}

// Upsert implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) Upsert(ctx context.Context, ws schedule.WorkSchedule) (schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO work_schedules (
			employee_id, day_of_week, morning_start, morning_end, afternoon_start, afternoon_end, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, day_of_week) DO UPDATE SET
			morning_start   = excluded.morning_start,
			morning_end     = excluded.morning_end,
			afternoon_start = excluded.afternoon_start,
			afternoon_end   = excluded.afternoon_end,
			updated_at      = excluded.updated_at
		RETURNING created_at, updated_at
	`
	now := nowArg()
	var createdAt, updated string
	err := q.QueryRowContext(ctx, query,
		ws.EmployeeID, ws.DayOfWeek,
		clockArg(ws.MorningStart), clockArg(ws.MorningEnd), clockArg(ws.AfternoonStart), clockArg(ws.AfternoonEnd),
		now, now,
	).Scan(&createdAt, &updated)
	if err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to upsert work schedule: %w", err)
	}
	if ws.CreatedAt, err = parseTime(createdAt); err != nil {
		return schedule.WorkSchedule{}, err
	}
	if ws.UpdatedAt, err = parseTime(updated); err != nil {
		return schedule.WorkSchedule{}, err
	}
	return ws, nil
}

// Delete implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) Delete(ctx context.Context, employeeID string, dayOfWeek int) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `DELETE FROM work_schedules WHERE employee_id = ? AND day_of_week = ?`, employeeID, dayOfWeek)
	if err != nil {
		return fmt.Errorf("failed to delete work schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrWorkScheduleNotFound
	}
	return nil
}

func NewWorkScheduleRepository(db *database.SQLiteDB) schedule.WorkScheduleRepository {
	return &workScheduleRepository{db: db}
}
