package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
)

type calendarEventRepository struct {
	db *database.SQLiteDB
}

// Employee ids never contain commas, so group_concat round-trips them.
const calendarEventSelect = `
	SELECT ce.id, ce.date, ce.event_type, ce.applies_to_all_employees, ce.description,
		   group_concat(ee.employee_id, ','), ce.created_at, ce.updated_at
	FROM calendar_events ce
	LEFT JOIN calendar_event_employees ee ON ee.event_id = ce.id
`

func scanCalendarEvent(row rowScanner) (calendar.Event, error) {
	var (
		ev                      calendar.Event
		day, createdAt, updated string
		eventType               string
		employees               sql.NullString
	)
	err := row.Scan(&ev.ID, &day, &eventType, &ev.AppliesToAllEmployees, &ev.Description, &employees, &createdAt, &updated)
	if err != nil {
		return calendar.Event{}, err
	}
	ev.EventType = calendar.EventType(eventType)
	if employees.Valid && employees.String != "" {
		ev.EmployeeIDs = strings.Split(employees.String, ",")
		slices.Sort(ev.EmployeeIDs)
	}
	if ev.Date, err = parseDate(day); err != nil {
		return calendar.Event{}, err
	}
	if ev.CreatedAt, err = parseTime(createdAt); err != nil {
		return calendar.Event{}, err
	}
	if ev.UpdatedAt, err = parseTime(updated); err != nil {
		return calendar.Event{}, err
	}
	return ev, nil
}

// Upsert implements calendar.EventRepository. Callers wrap it in a
// transaction so the employee list is replaced atomically.
func (r *calendarEventRepository) Upsert(ctx context.Context, ev calendar.Event) (calendar.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO calendar_events (id, date, event_type, applies_to_all_employees, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date, event_type) DO UPDATE SET
			applies_to_all_employees = excluded.applies_to_all_employees,
			description              = excluded.description,
			updated_at               = excluded.updated_at
		RETURNING id, created_at, updated_at
	`
	now := nowArg()
	var createdAt, updated string
	err := q.QueryRowContext(ctx, query, ev.ID, dateArg(ev.Date), string(ev.EventType), ev.AppliesToAllEmployees, ev.Description, now, now).
		Scan(&ev.ID, &createdAt, &updated)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("failed to upsert calendar event: %w", err)
	}
	if ev.CreatedAt, err = parseTime(createdAt); err != nil {
		return calendar.Event{}, err
	}
	if ev.UpdatedAt, err = parseTime(updated); err != nil {
		return calendar.Event{}, err
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM calendar_event_employees WHERE event_id = ?`, ev.ID); err != nil {
		return calendar.Event{}, fmt.Errorf("failed to reset calendar event employees: %w", err)
	}

	if ev.AppliesToAllEmployees {
		ev.EmployeeIDs = nil
		return ev, nil
	}
	for _, employeeID := range ev.EmployeeIDs {
		_, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO calendar_event_employees (event_id, employee_id) VALUES (?, ?)`, ev.ID, employeeID)
		if err != nil {
			return calendar.Event{}, fmt.Errorf("failed to insert calendar event employee: %w", err)
		}
	}
	return ev, nil
}

// Delete implements calendar.EventRepository.
func (r *calendarEventRepository) Delete(ctx context.Context, date time.Time, eventType calendar.EventType) (calendar.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := calendarEventSelect + `WHERE ce.date = ? AND ce.event_type = ? GROUP BY ce.id`
	ev, err := scanCalendarEvent(q.QueryRowContext(ctx, query, dateArg(date), string(eventType)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return calendar.Event{}, calendar.ErrEventNotFound
		}
		return calendar.Event{}, fmt.Errorf("failed to get calendar event: %w", err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, ev.ID); err != nil {
		return calendar.Event{}, fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return ev, nil
}

// ListByDate implements calendar.EventRepository.
func (r *calendarEventRepository) ListByDate(ctx context.Context, date time.Time) ([]calendar.Event, error) {
	return r.list(ctx, `WHERE ce.date = ?`, dateArg(date))
}

// List implements calendar.EventRepository.
func (r *calendarEventRepository) List(ctx context.Context, filter calendar.EventFilter) ([]calendar.Event, error) {
	whereClauses := []string{"1=1"}
	args := []any{}

	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClauses = append(whereClauses, "ce.date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClauses = append(whereClauses, "ce.date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.EventType != nil && *filter.EventType != "" {
		whereClauses = append(whereClauses, "ce.event_type = ?")
		args = append(args, *filter.EventType)
	}

	return r.list(ctx, "WHERE "+strings.Join(whereClauses, " AND "), args...)
}

func (r *calendarEventRepository) list(ctx context.Context, where string, args ...any) ([]calendar.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := calendarEventSelect + where + ` GROUP BY ce.id ORDER BY ce.date, ce.event_type`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	var events []calendar.Event
	for rows.Next() {
		ev, err := scanCalendarEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate calendar events: %w", err)
	}
	return events, nil
}

func NewCalendarEventRepository(db *database.SQLiteDB) calendar.EventRepository {
	return &calendarEventRepository{db: db}
}
