package sqlite

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
)

type recalcQueueRepository struct {
	db *database.SQLiteDB
}

// Enqueue implements attendance.RecalcQueueRepository.
func (r *recalcQueueRepository) Enqueue(ctx context.Context, key attendance.RecalcKey, cause string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO recalc_queue (employee_id, date, last_error, queued_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			attempts   = recalc_queue.attempts + 1,
			last_error = excluded.last_error,
			updated_at = excluded.updated_at
	`
	now := nowArg()
	if _, err := q.ExecContext(ctx, query, key.EmployeeID, dateArg(key.Date), cause, now, now); err != nil {
		return fmt.Errorf("failed to enqueue recalculation: %w", err)
	}
	return nil
}

// List implements attendance.RecalcQueueRepository.
func (r *recalcQueueRepository) List(ctx context.Context, limit int) ([]attendance.PendingRecalc, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, date, attempts, last_error, queued_at
		FROM recalc_queue
		ORDER BY queued_at ASC, employee_id ASC
		LIMIT ?
	`
	rows, err := q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recalculation queue: %w", err)
	}
	defer rows.Close()

	var pending []attendance.PendingRecalc
	for rows.Next() {
		var (
			p             attendance.PendingRecalc
			day, queuedAt string
		)
		if err := rows.Scan(&p.EmployeeID, &day, &p.Attempts, &p.LastError, &queuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending recalculation: %w", err)
		}
		if p.Date, err = parseDate(day); err != nil {
			return nil, err
		}
		if p.QueuedAt, err = parseTime(queuedAt); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recalculation queue: %w", err)
	}
	return pending, nil
}

// Remove implements attendance.RecalcQueueRepository.
func (r *recalcQueueRepository) Remove(ctx context.Context, key attendance.RecalcKey) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.ExecContext(ctx, `DELETE FROM recalc_queue WHERE employee_id = ? AND date = ?`, key.EmployeeID, dateArg(key.Date)); err != nil {
		return fmt.Errorf("failed to remove queued recalculation: %w", err)
	}
	return nil
}

func NewRecalcQueueRepository(db *database.SQLiteDB) attendance.RecalcQueueRepository {
	return &recalcQueueRepository{db: db}
}
