package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type calendarEventRepository struct {
	db *database.DB
}

const calendarEventSelect = `
	SELECT ce.id, ce.date, ce.event_type, ce.applies_to_all_employees, ce.description,
		   COALESCE(array_agg(ee.employee_id ORDER BY ee.employee_id) FILTER (WHERE ee.employee_id IS NOT NULL), '{}'),
		   ce.created_at, ce.updated_at
	FROM calendar_events ce
	LEFT JOIN calendar_event_employees ee ON ee.event_id = ce.id
`

func scanCalendarEvent(row pgx.Row) (calendar.Event, error) {
	var (
		ev        calendar.Event
		eventType string
	)
	err := row.Scan(&ev.ID, &ev.Date, &eventType, &ev.AppliesToAllEmployees, &ev.Description, &ev.EmployeeIDs, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return calendar.Event{}, err
	}
	ev.EventType = calendar.EventType(eventType)
	return ev, nil
}

// Upsert implements calendar.EventRepository. Callers wrap it in a
// transaction so the employee list is replaced atomically.
func (r *calendarEventRepository) Upsert(ctx context.Context, ev calendar.Event) (calendar.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO calendar_events (id, date, event_type, applies_to_all_employees, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date, event_type) DO UPDATE SET
			applies_to_all_employees = EXCLUDED.applies_to_all_employees,
			description              = EXCLUDED.description,
			updated_at               = NOW()
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, ev.ID, ev.Date, string(ev.EventType), ev.AppliesToAllEmployees, ev.Description).
		Scan(&ev.ID, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("failed to upsert calendar event: %w", err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM calendar_event_employees WHERE event_id = $1`, ev.ID); err != nil {
		return calendar.Event{}, fmt.Errorf("failed to reset calendar event employees: %w", err)
	}

	if !ev.AppliesToAllEmployees && len(ev.EmployeeIDs) > 0 {
		batch := &pgx.Batch{}
		for _, employeeID := range ev.EmployeeIDs {
			batch.Queue(`INSERT INTO calendar_event_employees (event_id, employee_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, ev.ID, employeeID)
		}
		results := q.SendBatch(ctx, batch)
		for range ev.EmployeeIDs {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return calendar.Event{}, fmt.Errorf("failed to insert calendar event employee: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return calendar.Event{}, fmt.Errorf("failed to insert calendar event employees: %w", err)
		}
	} else {
		ev.EmployeeIDs = nil
	}

	return ev, nil
}

// Delete implements calendar.EventRepository.
func (r *calendarEventRepository) Delete(ctx context.Context, date time.Time, eventType calendar.EventType) (calendar.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := calendarEventSelect + `WHERE ce.date = $1 AND ce.event_type = $2 GROUP BY ce.id`
	ev, err := scanCalendarEvent(q.QueryRow(ctx, query, date, string(eventType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calendar.Event{}, calendar.ErrEventNotFound
		}
		return calendar.Event{}, fmt.Errorf("failed to get calendar event: %w", err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, ev.ID); err != nil {
		return calendar.Event{}, fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return ev, nil
}

// ListByDate implements calendar.EventRepository.
func (r *calendarEventRepository) ListByDate(ctx context.Context, date time.Time) ([]calendar.Event, error) {
	return r.list(ctx, `WHERE ce.date = $1`, date)
}

// List implements calendar.EventRepository.
func (r *calendarEventRepository) List(ctx context.Context, filter calendar.EventFilter) ([]calendar.Event, error) {
	whereClauses := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("ce.date >= $%d::date", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("ce.date <= $%d::date", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.EventType != nil && *filter.EventType != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("ce.event_type = $%d", argIdx))
		args = append(args, *filter.EventType)
	}

	return r.list(ctx, "WHERE "+strings.Join(whereClauses, " AND "), args...)
}

func (r *calendarEventRepository) list(ctx context.Context, where string, args ...any) ([]calendar.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := calendarEventSelect + where + ` GROUP BY ce.id ORDER BY ce.date, ce.event_type`
	rows, err := q.Query(ctx, query, args...)
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
		if len(ev.EmployeeIDs) == 0 {
			ev.EmployeeIDs = nil
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate calendar events: %w", err)
	}
	return events, nil
}

func NewCalendarEventRepository(db *database.DB) calendar.EventRepository {
	return &calendarEventRepository{db: db}
}
