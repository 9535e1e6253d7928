package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
)

type processedRecordRepository struct {
	db *database.SQLiteDB
}

const processedRecordColumns = `
	employee_id, date,
	morning_entry, lunch_exit, afternoon_entry, final_exit, first_entry, last_exit, punch_count,
	expected_start, expected_end,
	shift_type, schedule_source, tolerance_minutes,
	delay_seconds, early_arrival_seconds, overtime_seconds, early_exit_seconds,
	worked_minutes, expected_minutes, balance_seconds, interval_excess_seconds,
	atraso_clt_minutes, chegada_antec_clt_minutes, extra_clt_minutes, saida_antec_clt_minutes, saldo_clt_minutes,
	status,
	occurrence_type, occurrence_hours_minutes, occurrence_duration,
	occurrence_morning_entry, occurrence_lunch_exit, occurrence_afternoon_entry, occurrence_final_exit,
	created_at, updated_at
`

func scanProcessedRecord(row rowScanner) (attendance.ProcessedRecord, error) {
	var (
		rec                      attendance.ProcessedRecord
		day, createdAt, updated  string
		punches                  [6]sql.NullString
		expectedStart, expectEnd *string
		source, status           string
		occType, occDuration     *string
		occHours                 *int
		occSlots                 attendance.OccurrenceSlots
	)

	err := row.Scan(
		&rec.EmployeeID, &day,
		&punches[0], &punches[1], &punches[2], &punches[3], &punches[4], &punches[5], &rec.PunchCount,
		&expectedStart, &expectEnd,
		&rec.ShiftType, &source, &rec.ToleranceMinutes,
		&rec.DelaySeconds, &rec.EarlyArrivalSeconds, &rec.OvertimeSeconds, &rec.EarlyExitSeconds,
		&rec.WorkedMinutes, &rec.ExpectedMinutes, &rec.BalanceSeconds, &rec.IntervalExcessSeconds,
		&rec.AtrasoCLTMinutes, &rec.ChegadaAntecCLTMinutes, &rec.ExtraCLTMinutes, &rec.SaidaAntecCLTMinutes, &rec.SaldoCLTMinutes,
		&status,
		&occType, &occHours, &occDuration,
		&occSlots.MorningEntry, &occSlots.LunchExit, &occSlots.AfternoonEntry, &occSlots.FinalExit,
		&createdAt, &updated,
	)
	if err != nil {
		return attendance.ProcessedRecord{}, err
	}

	if rec.Date, err = parseDate(day); err != nil {
		return attendance.ProcessedRecord{}, err
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return attendance.ProcessedRecord{}, err
	}
	if rec.UpdatedAt, err = parseTime(updated); err != nil {
		return attendance.ProcessedRecord{}, err
	}
	targets := []**time.Time{&rec.MorningEntry, &rec.LunchExit, &rec.AfternoonEntry, &rec.FinalExit, &rec.FirstEntry, &rec.LastExit}
	for i, target := range targets {
		if *target, err = parseTimePtr(punches[i]); err != nil {
			return attendance.ProcessedRecord{}, err
		}
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

	query := `SELECT ` + processedRecordColumns + ` FROM processed_records WHERE employee_id = ? AND date = ?`

	rec, err := scanProcessedRecord(q.QueryRowContext(ctx, query, employeeID, dateArg(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
			status, created_at, updated_at
		) VALUES (
			?, ?,
			?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?
		)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			morning_entry             = excluded.morning_entry,
			lunch_exit                = excluded.lunch_exit,
			afternoon_entry           = excluded.afternoon_entry,
			final_exit                = excluded.final_exit,
			first_entry               = excluded.first_entry,
			last_exit                 = excluded.last_exit,
			punch_count               = excluded.punch_count,
			expected_start            = excluded.expected_start,
			expected_end              = excluded.expected_end,
			shift_type                = excluded.shift_type,
			schedule_source           = excluded.schedule_source,
			tolerance_minutes         = excluded.tolerance_minutes,
			delay_seconds             = excluded.delay_seconds,
			early_arrival_seconds     = excluded.early_arrival_seconds,
			overtime_seconds          = excluded.overtime_seconds,
			early_exit_seconds        = excluded.early_exit_seconds,
			worked_minutes            = excluded.worked_minutes,
			expected_minutes          = excluded.expected_minutes,
			balance_seconds           = excluded.balance_seconds,
			interval_excess_seconds   = excluded.interval_excess_seconds,
			atraso_clt_minutes        = excluded.atraso_clt_minutes,
			chegada_antec_clt_minutes = excluded.chegada_antec_clt_minutes,
			extra_clt_minutes         = excluded.extra_clt_minutes,
			saida_antec_clt_minutes   = excluded.saida_antec_clt_minutes,
			saldo_clt_minutes         = excluded.saldo_clt_minutes,
			status                    = excluded.status,
			updated_at                = excluded.updated_at
		WHERE processed_records.morning_entry IS NOT excluded.morning_entry
			OR processed_records.lunch_exit IS NOT excluded.lunch_exit
			OR processed_records.afternoon_entry IS NOT excluded.afternoon_entry
			OR processed_records.final_exit IS NOT excluded.final_exit
			OR processed_records.first_entry IS NOT excluded.first_entry
			OR processed_records.last_exit IS NOT excluded.last_exit
			OR processed_records.punch_count IS NOT excluded.punch_count
			OR processed_records.expected_start IS NOT excluded.expected_start
			OR processed_records.expected_end IS NOT excluded.expected_end
			OR processed_records.shift_type IS NOT excluded.shift_type
			OR processed_records.schedule_source IS NOT excluded.schedule_source
			OR processed_records.tolerance_minutes IS NOT excluded.tolerance_minutes
			OR processed_records.delay_seconds IS NOT excluded.delay_seconds
			OR processed_records.early_arrival_seconds IS NOT excluded.early_arrival_seconds
			OR processed_records.overtime_seconds IS NOT excluded.overtime_seconds
			OR processed_records.early_exit_seconds IS NOT excluded.early_exit_seconds
			OR processed_records.worked_minutes IS NOT excluded.worked_minutes
			OR processed_records.expected_minutes IS NOT excluded.expected_minutes
			OR processed_records.balance_seconds IS NOT excluded.balance_seconds
			OR processed_records.interval_excess_seconds IS NOT excluded.interval_excess_seconds
			OR processed_records.atraso_clt_minutes IS NOT excluded.atraso_clt_minutes
			OR processed_records.chegada_antec_clt_minutes IS NOT excluded.chegada_antec_clt_minutes
			OR processed_records.extra_clt_minutes IS NOT excluded.extra_clt_minutes
			OR processed_records.saida_antec_clt_minutes IS NOT excluded.saida_antec_clt_minutes
			OR processed_records.saldo_clt_minutes IS NOT excluded.saldo_clt_minutes
			OR processed_records.status IS NOT excluded.status
	`

	now := nowArg()
	_, err := q.ExecContext(ctx, query,
		rec.EmployeeID, dateArg(rec.Date),
		timePtrArg(rec.MorningEntry), timePtrArg(rec.LunchExit), timePtrArg(rec.AfternoonEntry), timePtrArg(rec.FinalExit),
		timePtrArg(rec.FirstEntry), timePtrArg(rec.LastExit), rec.PunchCount,
		clockArg(rec.ExpectedStart), clockArg(rec.ExpectedEnd), rec.ShiftType, string(rec.ScheduleSource), rec.ToleranceMinutes,
		rec.DelaySeconds, rec.EarlyArrivalSeconds, rec.OvertimeSeconds, rec.EarlyExitSeconds,
		rec.WorkedMinutes, rec.ExpectedMinutes, rec.BalanceSeconds, rec.IntervalExcessSeconds,
		rec.AtrasoCLTMinutes, rec.ChegadaAntecCLTMinutes, rec.ExtraCLTMinutes, rec.SaidaAntecCLTMinutes, rec.SaldoCLTMinutes,
		string(rec.Status), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert processed record: %w", err)
	}
	return nil
}

// SetOccurrence implements attendance.ProcessedRecordRepository.
func (r *processedRecordRepository) SetOccurrence(ctx context.Context, employeeID string, date time.Time, occ *attendance.Occurrence) error {
	q := GetQuerier(ctx, r.db)
	now := nowArg()

	if occ == nil {
		query := `
			UPDATE processed_records SET
				occurrence_type = NULL, occurrence_hours_minutes = NULL, occurrence_duration = NULL,
				occurrence_morning_entry = 0, occurrence_lunch_exit = 0,
				occurrence_afternoon_entry = 0, occurrence_final_exit = 0,
				updated_at = ?
			WHERE employee_id = ? AND date = ?
		`
		res, err := q.ExecContext(ctx, query, now, employeeID, dateArg(date))
		if err != nil {
			return fmt.Errorf("failed to clear occurrence: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return attendance.ErrRecordNotFound
		}
		return nil
	}

	query := `
		INSERT INTO processed_records (
			employee_id, date,
			occurrence_type, occurrence_hours_minutes, occurrence_duration,
			occurrence_morning_entry, occurrence_lunch_exit, occurrence_afternoon_entry, occurrence_final_exit,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			occurrence_type            = excluded.occurrence_type,
			occurrence_hours_minutes   = excluded.occurrence_hours_minutes,
			occurrence_duration        = excluded.occurrence_duration,
			occurrence_morning_entry   = excluded.occurrence_morning_entry,
			occurrence_lunch_exit      = excluded.occurrence_lunch_exit,
			occurrence_afternoon_entry = excluded.occurrence_afternoon_entry,
			occurrence_final_exit      = excluded.occurrence_final_exit,
			updated_at                 = excluded.updated_at
	`
	_, err := q.ExecContext(ctx, query,
		employeeID, dateArg(date),
		string(occ.Type), occ.HoursMinutes, string(occ.Duration),
		occ.Slots.MorningEntry, occ.Slots.LunchExit, occ.Slots.AfternoonEntry, occ.Slots.FinalExit,
		now, now,
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

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		whereClauses = append(whereClauses, "employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClauses = append(whereClauses, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClauses = append(whereClauses, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.Status != nil && *filter.Status != "" {
		whereClauses = append(whereClauses, "status = ?")
		args = append(args, *filter.Status)
	}
	baseWhere := strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM processed_records WHERE "+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count processed records: %w", err)
	}

	selectQuery := `SELECT ` + processedRecordColumns + ` FROM processed_records WHERE ` + baseWhere + ` ORDER BY date ASC, employee_id ASC`
	if filter.Limit > 0 {
		page := max(filter.Page, 1)
		selectQuery += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.QueryContext(ctx, selectQuery, args...)
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
		SELECT employee_id FROM raw_punches WHERE work_date = ?1
		UNION
		SELECT employee_id FROM manual_corrections WHERE date = ?1
		UNION
		SELECT employee_id FROM schedule_exceptions WHERE date = ?1
		UNION
		SELECT employee_id FROM processed_records WHERE date = ?1
		UNION
		SELECT employee_id FROM work_schedules WHERE day_of_week = ?2
		UNION
		SELECT ee.employee_id
		FROM calendar_event_employees ee
		JOIN calendar_events ce ON ce.id = ee.event_id
		WHERE ce.date = ?1
		ORDER BY 1
	`

	rows, err := q.QueryContext(ctx, query, dateArg(date), int(date.Weekday()))
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

func NewProcessedRecordRepository(db *database.SQLiteDB) attendance.ProcessedRecordRepository {
	return &processedRecordRepository{db: db}
}
