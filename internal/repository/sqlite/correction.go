package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
)

type correctionRepository struct {
	db *database.SQLiteDB
}

// Get implements attendance.CorrectionRepository. A missing row is nil, nil.
func (r *correctionRepository) Get(ctx context.Context, employeeID string, date time.Time) (*attendance.ManualCorrection, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, date, morning_entry, lunch_exit, afternoon_entry, final_exit,
			   corrected_by, reason, created_at, updated_at
		FROM manual_corrections
		WHERE employee_id = ? AND date = ?
	`

	var (
		c                                attendance.ManualCorrection
		day, createdAt, updatedAt        string
		morning, lunch, afternoon, final *string
	)
	err := q.QueryRowContext(ctx, query, employeeID, dateArg(date)).Scan(
		&c.EmployeeID, &day,
		&morning, &lunch, &afternoon, &final,
		&c.CorrectedBy, &c.Reason, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get manual correction: %w", err)
	}

	if c.Date, err = parseDate(day); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
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
			employee_id, date, morning_entry, lunch_exit, afternoon_entry, final_exit,
			corrected_by, reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			morning_entry   = excluded.morning_entry,
			lunch_exit      = excluded.lunch_exit,
			afternoon_entry = excluded.afternoon_entry,
			final_exit      = excluded.final_exit,
			corrected_by    = excluded.corrected_by,
			reason          = excluded.reason,
			updated_at      = excluded.updated_at
		RETURNING created_at, updated_at
	`

	now := nowArg()
	var createdAt, updatedAt string
	err := q.QueryRowContext(ctx, query,
		c.EmployeeID, dateArg(c.Date),
		clockArg(c.MorningEntry), clockArg(c.LunchExit), clockArg(c.AfternoonEntry), clockArg(c.FinalExit),
		c.CorrectedBy, c.Reason, now, now,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return attendance.ManualCorrection{}, fmt.Errorf("failed to upsert manual correction: %w", err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return attendance.ManualCorrection{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return attendance.ManualCorrection{}, err
	}

	return c, nil
}

// Delete implements attendance.CorrectionRepository.
func (r *correctionRepository) Delete(ctx context.Context, employeeID string, date time.Time) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `DELETE FROM manual_corrections WHERE employee_id = ? AND date = ?`, employeeID, dateArg(date))
	if err != nil {
		return fmt.Errorf("failed to delete manual correction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.ErrCorrectionNotFound
	}
	return nil
}

func NewCorrectionRepository(db *database.SQLiteDB) attendance.CorrectionRepository {
	return &correctionRepository{db: db}
}
