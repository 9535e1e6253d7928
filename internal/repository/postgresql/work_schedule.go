package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workScheduleRepository struct {
	db *database.DB
}

const workScheduleColumns = `
	employee_id, day_of_week,
	to_char(morning_start, 'HH24:MI'), to_char(morning_end, 'HH24:MI'),
	to_char(afternoon_start, 'HH24:MI'), to_char(afternoon_end, 'HH24:MI'),
	created_at, updated_at
`

// scanPeriods parses the four to_char'd bounds into p.
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

func scanWorkSchedule(row pgx.Row) (schedule.WorkSchedule, error) {
	var (
		ws             schedule.WorkSchedule
		ms, me, as, ae *string
	)
	if err := row.Scan(&ws.EmployeeID, &ws.DayOfWeek, &ms, &me, &as, &ae, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
		return schedule.WorkSchedule{}, err
	}
	if err := scanPeriods(&ws.Periods, ms, me, as, ae); err != nil {
		return schedule.WorkSchedule{}, err
	}
	return ws, nil
}

// Get implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) Get(ctx context.Context, employeeID string, dayOfWeek int) (*schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workScheduleColumns + ` FROM work_schedules WHERE employee_id = $1 AND day_of_week = $2`
	ws, err := scanWorkSchedule(q.QueryRow(ctx, query, employeeID, dayOfWeek))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work schedule: %w", err)
	}
	return &ws, nil
}

// ListByEmployee implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) ListByEmployee(ctx context.Context, employeeID string) ([]schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workScheduleColumns + ` FROM work_schedules WHERE employee_id = $1 ORDER BY day_of_week`
	rows, err := q.Query(ctx, query, employeeID)
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
		INSERT INTO work_schedules (employee_id, day_of_week, morning_start, morning_end, afternoon_start, afternoon_end)
		VALUES ($1, $2, $3::time, $4::time, $5::time, $6::time)
		ON CONFLICT (employee_id, day_of_week) DO UPDATE SET
			morning_start   = EXCLUDED.morning_start,
			morning_end     = EXCLUDED.morning_end,
			afternoon_start = EXCLUDED.afternoon_start,
			afternoon_end   = EXCLUDED.afternoon_end,
			updated_at      = NOW()
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		ws.EmployeeID, ws.DayOfWeek,
		clockArg(ws.MorningStart), clockArg(ws.MorningEnd), clockArg(ws.AfternoonStart), clockArg(ws.AfternoonEnd),
	).Scan(&ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("failed to upsert work schedule: %w", err)
	}
	return ws, nil
}

// Delete implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) Delete(ctx context.Context, employeeID string, dayOfWeek int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM work_schedules WHERE employee_id = $1 AND day_of_week = $2`, employeeID, dayOfWeek)
	if err != nil {
		return fmt.Errorf("failed to delete work schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrWorkScheduleNotFound
	}
	return nil
}

func NewWorkScheduleRepository(db *database.DB) schedule.WorkScheduleRepository {
	return &workScheduleRepository{db: db}
}
