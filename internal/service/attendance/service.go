package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// EventRecordRecalculated is published on the SSE hub after every successful recompute.
const EventRecordRecalculated = "record.recalculated"

// RecordPublisher forwards recalculated records to an external sink.
type RecordPublisher interface {
	PublishRecord(ctx context.Context, rec attendance.RecordResponse) error
}

// Config holds attendance service configuration
type Config struct {
	Workers      int             // default: 4
	PunchSource  string          // default: "clock"
	SystemUserID string          // default: "system"
	Publisher    RecordPublisher // optional
}

type AttendanceServiceImpl struct {
	store  repository.Store
	engine *Engine
	hub    *sse.Hub
	config Config
}

// punchLayouts are tried in order for timestamps without an explicit offset.
var punchLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parsePunchTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := validator.IsValidDateTime(s); ok {
		return t, true
	}
	for _, layout := range punchLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseKey validates the (employee, date) path parameters of a request.
func parseKey(employeeID, date string) (time.Time, error) {
	var errs validator.ValidationErrors
	if !validator.IsValidEmployeeID(employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "invalid employee id",
		})
	}
	d, ok := validator.IsValidDate(date)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if len(errs) > 0 {
		return time.Time{}, errs
	}
	return d, nil
}

func (s *AttendanceServiceImpl) loadDay(ctx context.Context, employeeID string, date time.Time) (DayInput, error) {
	in := DayInput{EmployeeID: employeeID, Date: date}

	var err error
	if in.Punches, err = s.store.Punches().ListByEmployeeAndDate(ctx, employeeID, date); err != nil {
		return DayInput{}, err
	}
	if in.Correction, err = s.store.Corrections().Get(ctx, employeeID, date); err != nil {
		return DayInput{}, err
	}
	if in.Events, err = s.store.Calendar().ListByDate(ctx, date); err != nil {
		return DayInput{}, err
	}
	if in.Exception, err = s.store.Exceptions().Get(ctx, employeeID, date); err != nil {
		return DayInput{}, err
	}
	if in.Weekly, err = s.store.WorkSchedules().Get(ctx, employeeID, int(date.Weekday())); err != nil {
		return DayInput{}, err
	}

	existing, err := s.store.Records().Get(ctx, employeeID, date)
	if err != nil {
		return DayInput{}, err
	}
	if existing != nil {
		in.Occurrence = existing.Occurrence
	}
	return in, nil
}

// Recompute implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Recompute(ctx context.Context, employeeID string, date time.Time) (attendance.ProcessedRecord, error) {
	var rec attendance.ProcessedRecord
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		in, err := s.loadDay(ctx, employeeID, date)
		if err != nil {
			return fmt.Errorf("failed to load day inputs: %w", err)
		}
		rec = s.engine.Compute(in)
		return s.store.Records().Upsert(ctx, rec)
	})
	if err != nil {
		return attendance.ProcessedRecord{}, err
	}

	slog.Debug("attendance record recomputed",
		"employee_id", employeeID,
		"date", utils.FormatDate(date),
		"status", rec.Status,
		"worked_minutes", rec.WorkedMinutes,
		"saldo_clt_minutes", rec.SaldoCLTMinutes,
	)
	s.publish(ctx, rec)
	return rec, nil
}

// publish never fails the recompute; the record is already stored.
func (s *AttendanceServiceImpl) publish(ctx context.Context, rec attendance.ProcessedRecord) {
	resp := attendance.NewRecordResponse(rec, s.engine.Location())
	if s.hub != nil {
		s.hub.Broadcast(rec.EmployeeID, sse.Event{
			Event: EventRecordRecalculated,
			Data:  resp,
		})
	}
	if s.config.Publisher != nil {
		if err := s.config.Publisher.PublishRecord(ctx, resp); err != nil {
			slog.Warn("failed to publish recalculated record",
				"employee_id", rec.EmployeeID,
				"date", utils.FormatDate(rec.Date),
				"error", err,
			)
		}
	}
}

// Refresh implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Refresh(ctx context.Context, employeeID string, date time.Time) (*attendance.ProcessedRecord, error) {
	rec, err := s.Recompute(ctx, employeeID, date)
	if err == nil {
		return &rec, nil
	}

	key := attendance.RecalcKey{EmployeeID: employeeID, Date: date}
	slog.Warn("recalculation failed, queueing for retry", "key", key.String(), "error", err)
	if qErr := s.store.RecalcQueue().Enqueue(context.WithoutCancel(ctx), key, err.Error()); qErr != nil {
		return nil, errors.Join(err, fmt.Errorf("failed to queue recalculation: %w", qErr))
	}
	return nil, fmt.Errorf("%w: %v", attendance.ErrRecalculationPending, err)
}

// RefreshDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RefreshDate(ctx context.Context, date time.Time) error {
	_, err := s.RecalculateDate(ctx, date)
	var batchErr *attendance.BatchError
	if errors.As(err, &batchErr) {
		return fmt.Errorf("%w: %w", attendance.ErrRecalculationPending, err)
	}
	return err
}

// RecalculateDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecalculateDate(ctx context.Context, date time.Time) (attendance.RecalculationResponse, error) {
	employees, err := s.store.Records().EmployeesForDate(ctx, date)
	if err != nil {
		return attendance.RecalculationResponse{}, fmt.Errorf("failed to list employees for %s: %w", utils.FormatDate(date), err)
	}

	keys := make([]attendance.RecalcKey, 0, len(employees))
	for _, employeeID := range employees {
		keys = append(keys, attendance.RecalcKey{EmployeeID: employeeID, Date: date})
	}

	resp, err := s.recalculate(ctx, keys, false)
	resp.Dates = 1
	return resp, err
}

// RecalculateAll implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecalculateAll(ctx context.Context) (attendance.RecalculationResponse, error) {
	dates, err := s.store.Punches().DistinctDates(ctx)
	if err != nil {
		return attendance.RecalculationResponse{}, fmt.Errorf("failed to list punch dates: %w", err)
	}

	var keys []attendance.RecalcKey
	for _, date := range dates {
		employees, err := s.store.Records().EmployeesForDate(ctx, date)
		if err != nil {
			return attendance.RecalculationResponse{}, fmt.Errorf("failed to list employees for %s: %w", utils.FormatDate(date), err)
		}
		for _, employeeID := range employees {
			keys = append(keys, attendance.RecalcKey{EmployeeID: employeeID, Date: date})
		}
	}

	slog.Info("recalculating all attendance records", "dates", len(dates), "keys", len(keys))
	resp, err := s.recalculate(ctx, keys, false)
	resp.Dates = len(dates)
	return resp, err
}

// Recalculate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Recalculate(ctx context.Context, req attendance.RecalculateRequest) (attendance.RecalculationResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecalculationResponse{}, err
	}
	if req.All {
		return s.RecalculateAll(ctx)
	}
	date, _ := utils.ParseDate(*req.Date)
	return s.RecalculateDate(ctx, date)
}

// RetryPending implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RetryPending(ctx context.Context, limit int) (attendance.RecalculationResponse, error) {
	pending, err := s.store.RecalcQueue().List(ctx, limit)
	if err != nil {
		return attendance.RecalculationResponse{}, fmt.Errorf("failed to list queued recalculations: %w", err)
	}
	if len(pending) == 0 {
		return attendance.RecalculationResponse{}, nil
	}

	keys := make([]attendance.RecalcKey, 0, len(pending))
	dates := make(map[time.Time]struct{})
	for _, p := range pending {
		keys = append(keys, p.RecalcKey)
		dates[p.Date] = struct{}{}
	}

	resp, err := s.recalculate(ctx, keys, true)
	resp.Dates = len(dates)
	return resp, err
}

// recalculate recomputes keys on a bounded worker pool. A failing key is
// queued and reported; the rest of the batch still runs. When dequeue is set,
// keys that succeed are removed from the retry queue.
func (s *AttendanceServiceImpl) recalculate(ctx context.Context, keys []attendance.RecalcKey, dequeue bool) (attendance.RecalculationResponse, error) {
	var (
		processed atomic.Int64
		mu        sync.Mutex
		failures  []*attendance.KeyError
	)

	g := new(errgroup.Group)
	g.SetLimit(s.config.Workers)

	for _, key := range keys {
		g.Go(func() error {
			_, err := s.Recompute(ctx, key.EmployeeID, key.Date)
			if err == nil {
				processed.Add(1)
				if dequeue {
					if err := s.store.RecalcQueue().Remove(ctx, key); err != nil {
						slog.Error("failed to remove queued recalculation", "key", key.String(), "error", err)
					}
				}
				return nil
			}

			mu.Lock()
			failures = append(failures, &attendance.KeyError{Key: key, Err: err})
			mu.Unlock()

			if qErr := s.store.RecalcQueue().Enqueue(context.WithoutCancel(ctx), key, err.Error()); qErr != nil {
				slog.Error("failed to queue recalculation", "key", key.String(), "error", qErr)
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := attendance.RecalculationResponse{Processed: int(processed.Load())}
	if len(failures) == 0 {
		return resp, nil
	}

	slices.SortFunc(failures, func(a, b *attendance.KeyError) int {
		if c := a.Key.Date.Compare(b.Key.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Key.EmployeeID, b.Key.EmployeeID)
	})
	for _, f := range failures {
		resp.Failed = append(resp.Failed, attendance.RecalculationFailure{
			EmployeeID: f.Key.EmployeeID,
			Date:       utils.FormatDate(f.Key.Date),
			Error:      f.Err.Error(),
		})
	}
	slog.Warn("recalculation batch finished with failures", "processed", resp.Processed, "failed", len(failures))
	return resp, &attendance.BatchError{Failures: failures}
}

// IngestPunches implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) IngestPunches(ctx context.Context, req attendance.IngestPunchesRequest) (attendance.IngestPunchesResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.IngestPunchesResponse{}, err
	}

	loc := s.engine.Location()
	now := time.Now().UTC()

	var (
		resp    attendance.IngestPunchesResponse
		punches []attendance.RawPunch
		keys    []attendance.RecalcKey
		seen    = make(map[attendance.RecalcKey]struct{})
	)
	for i, in := range req.Punches {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.IngestPunchesResponse{}, fmt.Errorf("failed to generate punch id: %w", err)
		}

		p := attendance.RawPunch{
			ID:         id.String(),
			EmployeeID: in.EmployeeID,
			RawValue:   in.Timestamp,
			Direction:  attendance.Direction(strings.ToUpper(in.Direction)),
			Source:     in.Source,
			CreatedAt:  now,
		}
		if p.Source == "" {
			p.Source = s.config.PunchSource
		}

		ts, ok := parsePunchTime(in.Timestamp, loc)
		switch {
		case ok:
			p.PunchedAt = &ts
			p.WorkDate = utils.CivilDate(ts, loc)
		case in.Date != nil:
			resp.Malformed++
		default:
			resp.Failed = append(resp.Failed, fmt.Sprintf("punches[%d]: unparsable timestamp %q and no date", i, in.Timestamp))
			continue
		}
		// An explicit work date wins, so overnight shifts can be filed under the day they started.
		if in.Date != nil {
			p.WorkDate, _ = utils.ParseDate(*in.Date)
		}

		punches = append(punches, p)
		key := attendance.RecalcKey{EmployeeID: p.EmployeeID, Date: p.WorkDate}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	if len(punches) == 0 {
		return resp, attendance.ErrNoPunchesInRequest
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		return s.store.Punches().Append(ctx, punches)
	})
	if err != nil {
		return attendance.IngestPunchesResponse{}, fmt.Errorf("failed to store punches: %w", err)
	}
	resp.Accepted = len(punches)

	recalc, err := s.recalculate(ctx, keys, false)
	resp.Recalculated = recalc.Processed
	for _, f := range recalc.Failed {
		resp.Failed = append(resp.Failed, fmt.Sprintf("%s@%s: %s", f.EmployeeID, f.Date, f.Error))
	}
	if err != nil {
		slog.Warn("punches stored but some days could not be recalculated", "error", err)
	}

	slog.Info("punches ingested",
		"accepted", resp.Accepted,
		"malformed", resp.Malformed,
		"recalculated", resp.Recalculated,
	)
	return resp, nil
}

func newCorrectionResponse(c attendance.ManualCorrection) attendance.CorrectionResponse {
	return attendance.CorrectionResponse{
		EmployeeID:     c.EmployeeID,
		Date:           utils.FormatDate(c.Date),
		MorningEntry:   utils.ClockString(c.MorningEntry),
		LunchExit:      utils.ClockString(c.LunchExit),
		AfternoonEntry: utils.ClockString(c.AfternoonEntry),
		FinalExit:      utils.ClockString(c.FinalExit),
		CorrectedBy:    c.CorrectedBy,
		Reason:         c.Reason,
	}
}

// GetCorrection implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetCorrection(ctx context.Context, employeeID string, date string) (attendance.CorrectionResponse, error) {
	day, err := parseKey(employeeID, date)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}

	c, err := s.store.Corrections().Get(ctx, employeeID, day)
	if err != nil {
		return attendance.CorrectionResponse{}, fmt.Errorf("failed to get correction: %w", err)
	}
	if c == nil {
		return attendance.CorrectionResponse{}, attendance.ErrCorrectionNotFound
	}

	resp := newCorrectionResponse(*c)
	rec, err := s.store.Records().Get(ctx, employeeID, day)
	if err != nil {
		return attendance.CorrectionResponse{}, fmt.Errorf("failed to get record: %w", err)
	}
	if rec != nil {
		r := attendance.NewRecordResponse(*rec, s.engine.Location())
		resp.Record = &r
	}
	return resp, nil
}

// UpsertCorrection implements attendance.AttendanceService. The correction is
// committed before the day is recomputed; a failed recompute is reported as a
// warning and retried later.
func (s *AttendanceServiceImpl) UpsertCorrection(ctx context.Context, req attendance.UpsertCorrectionRequest) (attendance.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CorrectionResponse{}, err
	}
	day, _ := utils.ParseDate(req.Date)

	correction := attendance.ManualCorrection{
		EmployeeID:  req.EmployeeID,
		Date:        day,
		CorrectedBy: req.CorrectedBy,
		Reason:      strings.TrimSpace(req.Reason),
	}
	if correction.CorrectedBy == "" {
		correction.CorrectedBy = s.config.SystemUserID
	}

	var err error
	if correction.MorningEntry, err = utils.ParseClockTimePtr(req.MorningEntry); err != nil {
		return attendance.CorrectionResponse{}, err
	}
	if correction.LunchExit, err = utils.ParseClockTimePtr(req.LunchExit); err != nil {
		return attendance.CorrectionResponse{}, err
	}
	if correction.AfternoonEntry, err = utils.ParseClockTimePtr(req.AfternoonEntry); err != nil {
		return attendance.CorrectionResponse{}, err
	}
	if correction.FinalExit, err = utils.ParseClockTimePtr(req.FinalExit); err != nil {
		return attendance.CorrectionResponse{}, err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		correction, err = s.store.Corrections().Upsert(ctx, correction)
		return err
	})
	if err != nil {
		return attendance.CorrectionResponse{}, fmt.Errorf("failed to save correction: %w", err)
	}

	slog.Info("manual correction saved",
		"employee_id", correction.EmployeeID,
		"date", req.Date,
		"corrected_by", correction.CorrectedBy,
	)

	resp := newCorrectionResponse(correction)
	rec, err := s.Refresh(ctx, correction.EmployeeID, day)
	if err != nil {
		warning := err.Error()
		resp.Warning = &warning
		return resp, nil
	}
	r := attendance.NewRecordResponse(*rec, s.engine.Location())
	resp.Record = &r
	return resp, nil
}

// DeleteCorrection implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteCorrection(ctx context.Context, employeeID string, date string) (attendance.RecordResponse, error) {
	day, err := parseKey(employeeID, date)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		return s.store.Corrections().Delete(ctx, employeeID, day)
	})
	if err != nil {
		if errors.Is(err, attendance.ErrCorrectionNotFound) {
			return attendance.RecordResponse{}, err
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to delete correction: %w", err)
	}

	slog.Info("manual correction deleted", "employee_id", employeeID, "date", date)
	return s.refreshResponse(ctx, employeeID, day)
}

func (s *AttendanceServiceImpl) refreshResponse(ctx context.Context, employeeID string, day time.Time) (attendance.RecordResponse, error) {
	rec, err := s.Refresh(ctx, employeeID, day)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return attendance.NewRecordResponse(*rec, s.engine.Location()), nil
}

// SetOccurrence implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SetOccurrence(ctx context.Context, req attendance.SetOccurrenceRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}
	day, _ := utils.ParseDate(req.Date)

	occ, err := req.ToOccurrence()
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		return s.store.Records().SetOccurrence(ctx, req.EmployeeID, day, &occ)
	})
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to set occurrence: %w", err)
	}

	slog.Info("occurrence set",
		"employee_id", req.EmployeeID,
		"date", req.Date,
		"type", occ.Type,
		"duration", occ.Duration,
	)
	return s.refreshResponse(ctx, req.EmployeeID, day)
}

// ClearOccurrence implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClearOccurrence(ctx context.Context, employeeID string, date string) (attendance.RecordResponse, error) {
	day, err := parseKey(employeeID, date)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.store.Records().Get(ctx, employeeID, day)
		if err != nil {
			return err
		}
		if rec == nil || rec.Occurrence == nil {
			return attendance.ErrOccurrenceNotFound
		}
		return s.store.Records().SetOccurrence(ctx, employeeID, day, nil)
	})
	if err != nil {
		if errors.Is(err, attendance.ErrOccurrenceNotFound) {
			return attendance.RecordResponse{}, err
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to clear occurrence: %w", err)
	}

	slog.Info("occurrence cleared", "employee_id", employeeID, "date", date)
	return s.refreshResponse(ctx, employeeID, day)
}

// GetRecord implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetRecord(ctx context.Context, employeeID string, date string) (attendance.RecordResponse, error) {
	day, err := parseKey(employeeID, date)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := s.store.Records().Get(ctx, employeeID, day)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to get record: %w", err)
	}
	if rec == nil {
		return attendance.RecordResponse{}, attendance.ErrRecordNotFound
	}
	return attendance.NewRecordResponse(*rec, s.engine.Location()), nil
}

// NewAttendanceService creates the attendance service. hub may be nil.
func NewAttendanceService(store repository.Store, engine *Engine, hub *sse.Hub, cfg Config) attendance.AttendanceService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PunchSource == "" {
		cfg.PunchSource = "clock"
	}
	if cfg.SystemUserID == "" {
		cfg.SystemUserID = "system"
	}
	return &AttendanceServiceImpl{
		store:  store,
		engine: engine,
		hub:    hub,
		config: cfg,
	}
}
