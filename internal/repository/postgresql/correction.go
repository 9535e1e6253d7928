package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type correctionRepository struct {
	db *database.DB
}

// Get implements attendance.CorrectionRepository. A missing row is nil, nil.
func (r *correctionRepository) Get(ctx context.Context, employeeID string, date time.Time) (*attendance.ManualCorrection, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, date,
			   to_char(morning_entry, 'HH24:MI'), to_char(lunch_exit, 'HH24:MI'),
			   to_char(afternoon_entry, 'HH24:MI'), to_char(final_exit, 'HH24:MI'),
			   corrected_by, reason, created_at, updated_at
		FROM manual_corrections
		WHERE employee_id = $1 AND date = $2
	`

	var (
		c                                attendance.ManualCorrection
		morning, lunch, afternoon, final *string
	)
	err := q.QueryRow(ctx, query, employeeID, date).Scan(
		&c.EmployeeID, &c.Date,
		&morning, &lunch, &afternoon, &final,
		&c.CorrectedBy, &c.Reason, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get manual correction: %w", err)
	}

	if c.MorningEntry, err = scanClock(morning); err != nil {
		return nil, err
	}
	if c.LunchExit, err = scanClock(lunch); err != nil {
		return nil, err
	}
	if c.AfternoonEntry, err = scanClock(afternoon); err != nil {
		return nil, err
	}
	if c.FinalExit, err = scanClock(final); err != nil {
		return nil, err
	}

	return &c, nil
}

// Upsert implements attendance.CorrectionRepository.
func (r *correctionRepository) Upsert(ctx context.Context, c attendance.ManualCorrection) (attendance.ManualCorrection, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO manual_corrections (
			employee_id, date, morning_entry, lunch_exit, afternoon_entry, final_exit, corrected_by, reason
		) VALUES (
			$1, $2, $3::time, $4::time, $5::time, $6::time, $7, $8
		)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			morning_entry   = EXCLUDED.morning_entry,
			lunch_exit      = EXCLUDED.lunch_exit,
			afternoon_entry = EXCLUDED.afternoon_entry,
			final_exit      = EXCLUDED.final_exit,
			corrected_by    = EXCLUDED.corrected_by,
			reason          = EXCLUDED.reason,
			updated_at      = NOW()
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		c.EmployeeID, c.Date,
		clockArg(c.MorningEntry), clockArg(c.LunchExit), clockArg(c.AfternoonEntry), clockArg(c.FinalExit),
		c.CorrectedBy, c.Reason,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return attendance.ManualCorrection{}, fmt.Errorf("failed to upsert manual correction: %w", err)
	}

	return c, nil
}

// Delete implements attendance.CorrectionRepository.
func (r *correctionRepository) Delete(ctx context.Context, employeeID string, date time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM manual_corrections WHERE employee_id = $1 AND date = $2`, employeeID, date)
	if err != nil {
		return fmt.Errorf("failed to delete manual correction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrCorrectionNotFound
	}
	return nil
}

func NewCorrectionRepository(db *database.DB) attendance.CorrectionRepository {
	return &correctionRepository{db: db}
}
