package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type punchRepository struct {
	db *database.DB
}

// Append implements attendance.PunchRepository.
func (r *punchRepository) Append(ctx context.Context, punches []attendance.RawPunch) error {
	if len(punches) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO raw_punches (id, employee_id, work_date, punched_at, raw_value, direction, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, p := range punches {
		batch.Queue(query, p.ID, p.EmployeeID, p.WorkDate, p.PunchedAt, p.RawValue, string(p.Direction), p.Source, p.CreatedAt)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for range punches {
		if _, err := results.Exec(); err != nil {
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
		WHERE employee_id = $1 AND work_date = $2
		ORDER BY punched_at ASC NULLS LAST, created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw punches: %w", err)
	}
	defer rows.Close()

	var punches []attendance.RawPunch
	for rows.Next() {
		var (
			p         attendance.RawPunch
			direction string
		)
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.WorkDate, &p.PunchedAt, &p.RawValue, &direction, &p.Source, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan raw punch: %w", err)
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

	rows, err := q.Query(ctx, `SELECT DISTINCT work_date FROM raw_punches ORDER BY work_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query punch dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan punch date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punch dates: %w", err)
	}

	return dates, nil
}

func NewPunchRepository(db *database.DB) attendance.PunchRepository {
	return &punchRepository{db: db}
}
