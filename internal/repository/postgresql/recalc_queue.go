package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
)

type recalcQueueRepository struct {
	db *database.DB
}

// Enqueue implements attendance.RecalcQueueRepository.
func (r *recalcQueueRepository) Enqueue(ctx context.Context, key attendance.RecalcKey, cause string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO recalc_queue (employee_id, date, last_error)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			attempts   = recalc_queue.attempts + 1,
			last_error = EXCLUDED.last_error,
			updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, key.EmployeeID, key.Date, cause); err != nil {
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
		LIMIT $1
	`
	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recalculation queue: %w", err)
	}
	defer rows.Close()

	var pending []attendance.PendingRecalc
	for rows.Next() {
		var p attendance.PendingRecalc
		if err := rows.Scan(&p.EmployeeID, &p.Date, &p.Attempts, &p.LastError, &p.QueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending recalculation: %w", err)
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

	if _, err := q.Exec(ctx, `DELETE FROM recalc_queue WHERE employee_id = $1 AND date = $2`, key.EmployeeID, key.Date); err != nil {
		return fmt.Errorf("failed to remove queued recalculation: %w", err)
	}
	return nil
}

func NewRecalcQueueRepository(db *database.DB) attendance.RecalcQueueRepository {
	return &recalcQueueRepository{db: db}
}
