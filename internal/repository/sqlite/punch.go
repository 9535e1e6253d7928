package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
)

type punchRepository struct {
	db *database.SQLiteDB
}

// Append implements attendance.PunchRepository.
func (r *punchRepository) Append(ctx context.Context, punches []attendance.RawPunch) error {
	if len(punches) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO raw_punches (id, employee_id, work_date, punched_at, raw_value, direction, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, p := range punches {
		_, err := q.ExecContext(ctx, query,
			p.ID, p.EmployeeID, dateArg(p.WorkDate), timePtrArg(p.PunchedAt), p.RawValue, string(p.Direction), p.Source, timeArg(p.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert raw punch: %w", err)
		}
	}
	return nil
}

// ListByEmployeeAndDate implements attendance.PunchRepository.
func (r *punchRepository) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.RawPunch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, work_date, punched_at, raw_value, direction, source, created_at
		FROM raw_punches
		WHERE employee_id = ? AND work_date = ?
		ORDER BY punched_at IS NULL, punched_at ASC, created_at ASC, id ASC
	`

	rows, err := q.QueryContext(ctx, query, employeeID, dateArg(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query raw punches: %w", err)
	}
	defer rows.Close()

	var punches []attendance.RawPunch
	for rows.Next() {
		var (
			p                   attendance.RawPunch
			workDate, createdAt string
			punchedAt           sql.NullString
			direction           string
		)
		if err := rows.Scan(&p.ID, &p.EmployeeID, &workDate, &punchedAt, &p.RawValue, &direction, &p.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan raw punch: %w", err)
		}
		if p.WorkDate, err = parseDate(workDate); err != nil {
			return nil, err
		}
		if p.PunchedAt, err = parseTimePtr(punchedAt); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		p.Direction = attendance.Direction(direction)
		punches = append(punches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raw punches: %w", err)
	}

	return punches, nil
}

// DistinctDates implements attendance.PunchRepository.
func (r *punchRepository) DistinctDates(ctx context.Context) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, `SELECT DISTINCT work_date FROM raw_punches ORDER BY work_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query punch dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan punch date: %w", err)
		}
		d, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punch dates: %w", err)
	}

	return dates, nil
}

func NewPunchRepository(db *database.SQLiteDB) attendance.PunchRepository {
	return &punchRepository{db: db}
}
