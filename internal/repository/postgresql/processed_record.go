package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type processedRecordRepository struct {
	db *database.DB
}

const processedRecordColumns = `
	employee_id, date,
	morning_entry, lunch_exit, afternoon_entry, final_exit, first_entry, last_exit, punch_count,
	to_char(expected_start, 'HH24:MI'), to_char(expected_end, 'HH24:MI'),
	shift_type, schedule_source, tolerance_minutes,
	delay_seconds, early_arrival_seconds, overtime_seconds, early_exit_seconds,
	worked_minutes, expected_minutes, balance_seconds, interval_excess_seconds,
	atraso_clt_minutes, chegada_antec_clt_minutes, extra_clt_minutes, saida_antec_clt_minutes, saldo_clt_minutes,
	status,
	occurrence_type, occurrence_hours_minutes, occurrence_duration,
	occurrence_morning_entry, occurrence_lunch_exit, occurrence_afternoon_entry, occurrence_final_exit,
	created_at, updated_at
`

func scanProcessedRecord(row pgx.Row) (attendance.ProcessedRecord, error) {
	var (
		rec                      attendance.ProcessedRecord
		expectedStart, expectEnd *string
		source, status           string
		occType, occDuration     *string
		occHours                 *int
		occSlots                 attendance.OccurrenceSlots
	)

	err := row.Scan(
		&rec.EmployeeID, &rec.Date,
		&rec.MorningEntry, &rec.LunchExit, &rec.AfternoonEntry, &rec.FinalExit, &rec.FirstEntry, &rec.LastExit, &rec.PunchCount,
		&expectedStart, &expectEnd,
		&rec.ShiftType, &source, &rec.ToleranceMinutes,
		&rec.DelaySeconds, &rec.EarlyArrivalSeconds, &rec.OvertimeSeconds, &rec.EarlyExitSeconds,
		&rec.WorkedMinutes, &rec.ExpectedMinutes, &rec.BalanceSeconds, &rec.IntervalExcessSeconds,
		&rec.AtrasoCLTMinutes, &rec.ChegadaAntecCLTMinutes, &rec.ExtraCLTMinutes, &rec.SaidaAntecCLTMinutes, &rec.SaldoCLTMinutes,
		&status,
		&occType, &occHours, &occDuration,
		&occSlots.MorningEntry, &occSlots.LunchExit, &occSlots.AfternoonEntry, &occSlots.FinalExit,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.ProcessedRecord{}, err
	}

	rec.ScheduleSource = attendance.ScheduleSource(source)
	rec.Status = attendance.Status(status)
	if rec.ExpectedStart, err = scanClock(expectedStart); err != nil {
		return attendance.ProcessedRecord{}, err
	}
	if rec.ExpectedEnd, err = scanClock(expectEnd); err != nil {
		return attendance.ProcessedRecord{}, err
	}
	if occType != nil {
		occ := &attendance.Occurrence{
			Type:         attendance.OccurrenceType(*occType),
			HoursMinutes: occHours,
			Slots:        occSlots,
		}
		if occDuration != nil {
			occ.Duration = attendance.OccurrenceDuration(*occDuration)
		}
		rec.Occurrence = occ
	}

	return rec, nil
}

// Get implements attendance.ProcessedRecordRepository. A missing row is nil, nil.
func (r *processedRecordRepository) Get(ctx context.Context, employeeID string, date time.Time) (*attendance.ProcessedRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + processedRecordColumns + ` FROM processed_records WHERE employee_id = $1 AND date = $2`

	rec, err := scanProcessedRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get processed record: %w", err)
	}
	return &rec, nil
}

// Upsert implements attendance.ProcessedRecordRepository.
func (r *processedRecordRepository) Upsert(ctx context.Context, rec attendance.ProcessedRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO processed_records (
			employee_id, date,
			morning_entry, lunch_exit, afternoon_entry, final_exit, first_entry, last_exit, punch_count,
			expected_start, expected_end, shift_type, schedule_source, tolerance_minutes,
			delay_seconds, early_arrival_seconds, overtime_seconds, early_exit_seconds,
			worked_minutes, expected_minutes, balance_seconds, interval_excess_seconds,
			atraso_clt_minutes, chegada_antec_clt_minutes, extra_clt_minutes, saida_antec_clt_minutes, saldo_clt_minutes,
			status
		) VALUES (
			$1, $2,
			$3, $4, $5, $6, $7, $8, $9,
			$10::time, $11::time, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21, $22,
			$23, $24, $25, $26, $27,
			$28
		)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			morning_entry             = EXCLUDED.morning_entry,
			lunch_exit                = EXCLUDED.lunch_exit,
			afternoon_entry           = EXCLUDED.afternoon_entry,
			final_exit                = EXCLUDED.final_exit,
			first_entry               = EXCLUDED.first_entry,
			last_exit                 = EXCLUDED.last_exit,
			punch_count               = EXCLUDED.punch_count,
			expected_start            = EXCLUDED.expected_start,
			expected_end              = EXCLUDED.expected_end,
			shift_type                = EXCLUDED.shift_type,
			schedule_source           = EXCLUDED.schedule_source,
			tolerance_minutes         = EXCLUDED.tolerance_minutes,
			delay_seconds             = EXCLUDED.delay_seconds,
			early_arrival_seconds     = EXCLUDED.early_arrival_seconds,
			overtime_seconds          = EXCLUDED.overtime_seconds,
			early_exit_seconds        = EXCLUDED.early_exit_seconds,
			worked_minutes            = EXCLUDED.worked_minutes,
			expected_minutes          = EXCLUDED.expected_minutes,
			balance_seconds           = EXCLUDED.balance_seconds,
			interval_excess_seconds   = EXCLUDED.interval_excess_seconds,
			atraso_clt_minutes        = EXCLUDED.atraso_clt_minutes,
			chegada_antec_clt_minutes = EXCLUDED.chegada_antec_clt_minutes,
			extra_clt_minutes         = EXCLUDED.extra_clt_minutes,
			saida_antec_clt_minutes   = EXCLUDED.saida_antec_clt_minutes,
			saldo_clt_minutes         = EXCLUDED.saldo_clt_minutes,
			status                    = EXCLUDED.status,
			updated_at                = NOW()
		WHERE (
			processed_records.morning_entry,
			processed_records.lunch_exit,
			processed_records.afternoon_entry,
			processed_records.final_exit,
			processed_records.first_entry,
			processed_records.last_exit,
			processed_records.punch_count,
			processed_records.expected_start,
			processed_records.expected_end,
			processed_records.shift_type,
			processed_records.schedule_source,
			processed_records.tolerance_minutes,
			processed_records.delay_seconds,
			processed_records.early_arrival_seconds,
			processed_records.overtime_seconds,
			processed_records.early_exit_seconds,
			processed_records.worked_minutes,
			processed_records.expected_minutes,
			processed_records.balance_seconds,
			processed_records.interval_excess_seconds,
			processed_records.atraso_clt_minutes,
			processed_records.chegada_antec_clt_minutes,
			processed_records.extra_clt_minutes,
			processed_records.saida_antec_clt_minutes,
			processed_records.saldo_clt_minutes,
			processed_records.status
		) IS DISTINCT FROM (
			EXCLUDED.morning_entry,
			EXCLUDED.lunch_exit,
			EXCLUDED.afternoon_entry,
			EXCLUDED.final_exit,
			EXCLUDED.first_entry,
			EXCLUDED.last_exit,
			EXCLUDED.punch_count,
			EXCLUDED.expected_start,
			EXCLUDED.expected_end,
			EXCLUDED.shift_type,
			EXCLUDED.schedule_source,
			EXCLUDED.tolerance_minutes,
			EXCLUDED.delay_seconds,
			EXCLUDED.early_arrival_seconds,
			EXCLUDED.overtime_seconds,
			EXCLUDED.early_exit_seconds,
			EXCLUDED.worked_minutes,
			EXCLUDED.expected_minutes,
			EXCLUDED.balance_seconds,
			EXCLUDED.interval_excess_seconds,
			EXCLUDED.atraso_clt_minutes,
			EXCLUDED.chegada_antec_clt_minutes,
			EXCLUDED.extra_clt_minutes,
			EXCLUDED.saida_antec_clt_minutes,
			EXCLUDED.saldo_clt_minutes,
			EXCLUDED.status
		)
	`

	_, err := q.Exec(ctx, query,
		rec.EmployeeID, rec.Date,
		rec.MorningEntry, rec.LunchExit, rec.AfternoonEntry, rec.FinalExit, rec.FirstEntry, rec.LastExit, rec.PunchCount,
		clockArg(rec.ExpectedStart), clockArg(rec.ExpectedEnd), rec.ShiftType, string(rec.ScheduleSource), rec.ToleranceMinutes,
		rec.DelaySeconds, rec.EarlyArrivalSeconds, rec.OvertimeSeconds, rec.EarlyExitSeconds,
		rec.WorkedMinutes, rec.ExpectedMinutes, rec.BalanceSeconds, rec.IntervalExcessSeconds,
		rec.AtrasoCLTMinutes, rec.ChegadaAntecCLTMinutes, rec.ExtraCLTMinutes, rec.SaidaAntecCLTMinutes, rec.SaldoCLTMinutes,
		string(rec.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert processed record: %w", err)
	}
	return nil
}

// SetOccurrence implements attendance.ProcessedRecordRepository.
func (r *processedRecordRepository) SetOccurrence(ctx context.Context, employeeID string, date time.Time, occ *attendance.Occurrence) error {
	q := GetQuerier(ctx, r.db)

	if occ == nil {
		query := `
			UPDATE processed_records SET
				occurrence_type = NULL, occurrence_hours_minutes = NULL, occurrence_duration = NULL,
				occurrence_morning_entry = FALSE, occurrence_lunch_exit = FALSE,
				occurrence_afternoon_entry = FALSE, occurrence_final_exit = FALSE,
				updated_at = NOW()
			WHERE employee_id = $1 AND date = $2
		`
		tag, err := q.Exec(ctx, query, employeeID, date)
		if err != nil {
			return fmt.Errorf("failed to clear occurrence: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return attendance.ErrRecordNotFound
		}
		return nil
	}

	query := `
		INSERT INTO processed_records (
			employee_id, date,
			occurrence_type, occurrence_hours_minutes, occurrence_duration,
			occurrence_morning_entry, occurrence_lunch_exit, occurrence_afternoon_entry, occurrence_final_exit
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			occurrence_type            = EXCLUDED.occurrence_type,
			occurrence_hours_minutes   = EXCLUDED.occurrence_hours_minutes,
			occurrence_duration        = EXCLUDED.occurrence_duration,
			occurrence_morning_entry   = EXCLUDED.occurrence_morning_entry,
			occurrence_lunch_exit      = EXCLUDED.occurrence_lunch_exit,
			occurrence_afternoon_entry = EXCLUDED.occurrence_afternoon_entry,
			occurrence_final_exit      = EXCLUDED.occurrence_final_exit,
			updated_at                 = NOW()
	`
	_, err := q.Exec(ctx, query,
		employeeID, date,
		string(occ.Type), occ.HoursMinutes, string(occ.Duration),
		occ.Slots.MorningEntry, occ.Slots.LunchExit, occ.Slots.AfternoonEntry, occ.Slots.FinalExit,
	)
	if err != nil {
		return fmt.Errorf("failed to set occurrence: %w", err)
	}
	return nil
}

// List implements attendance.ProcessedRecordRepository.
func (r *processedRecordRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.ProcessedRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("date >= $%d::date", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("date <= $%d::date", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	baseWhere := strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM processed_records WHERE "+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count processed records: %w", err)
	}

	selectQuery := `SELECT ` + processedRecordColumns + ` FROM processed_records WHERE ` + baseWhere + ` ORDER BY date ASC, employee_id ASC`
	if filter.Limit > 0 {
		page := max(filter.Page, 1)
		selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query processed records: %w", err)
	}
	defer rows.Close()

	var records []attendance.ProcessedRecord
	for rows.Next() {
		rec, err := scanProcessedRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan processed record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate processed records: %w", err)
	}

	return records, total, nil
}

// EmployeesForDate implements attendance.ProcessedRecordRepository.
func (r *processedRecordRepository) EmployeesForDate(ctx context.Context, date time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id FROM raw_punches WHERE work_date = $1
		UNION
		SELECT employee_id FROM manual_corrections WHERE date = $1
		UNION
		SELECT employee_id FROM schedule_exceptions WHERE date = $1
		UNION
		SELECT employee_id FROM processed_records WHERE date = $1
		UNION
		SELECT employee_id FROM work_schedules WHERE day_of_week = $2
		UNION
		SELECT ee.employee_id
		FROM calendar_event_employees ee
		JOIN calendar_events ce ON ce.id = ee.event_id
		WHERE ce.date = $1
		ORDER BY 1
	`

	rows, err := q.Query(ctx, query, date, int(date.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("failed to query employees for date: %w", err)
	}
	defer rows.Close()

	var employees []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		employees = append(employees, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees for date: %w", err)
	}

	return employees, nil
}

func NewProcessedRecordRepository(db *database.DB) attendance.ProcessedRecordRepository {
	return &processedRecordRepository{db: db}
}
