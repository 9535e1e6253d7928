package attendance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

// flakyStore fails processed record upserts while failing is set.
type flakyStore struct {
	repository.Store
	failing atomic.Bool
}

type flakyRecords struct {
	attendance.ProcessedRecordRepository
	store *flakyStore
}

func (s *flakyStore) Records() attendance.ProcessedRecordRepository {
	return flakyRecords{ProcessedRecordRepository: s.Store.Records(), store: s}
}

func (r flakyRecords) Upsert(ctx context.Context, rec attendance.ProcessedRecord) error {
	if r.store.failing.Load() {
		return errStoreDown
	}
	return r.ProcessedRecordRepository.Upsert(ctx, rec)
}

type serviceFixture struct {
	svc   attendance.AttendanceService
	store *flakyStore
	hub   *sse.Hub
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	db, err := database.NewSQLiteDB(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.MigrateSQLite(db))

	store := &flakyStore{Store: sqlite.NewStore(db)}
	t.Cleanup(store.Close)

	hub := sse.NewHub()
	svc := NewAttendanceService(store, NewEngine(saoPaulo(t), 5), hub, Config{Workers: 2})
	return serviceFixture{svc: svc, store: store, hub: hub}
}

func (f serviceFixture) seedWeekly(t *testing.T) {
	t.Helper()
	_, err := f.store.WorkSchedules().Upsert(context.Background(), *weekly(t, "08:00", "12:00", "13:00", "17:00"))
	require.NoError(t, err)
}

func punchRequest(clocks ...string) attendance.IngestPunchesRequest {
	req := attendance.IngestPunchesRequest{}
	for _, c := range clocks {
		req.Punches = append(req.Punches, attendance.PunchInput{
			EmployeeID: testEmployee,
			Timestamp:  "2024-03-04 " + c + ":00",
		})
	}
	return req
}

func TestService_IngestPunches(t *testing.T) {
	f := newServiceFixture(t)
	f.seedWeekly(t)
	ctx := context.Background()

	events, cleanup := f.hub.Subscribe(testEmployee)
	defer cleanup()

	resp, err := f.svc.IngestPunches(ctx, punchRequest("07:58", "12:00", "13:00", "17:02"))
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Accepted)
	assert.Equal(t, 0, resp.Malformed)
	assert.Equal(t, 1, resp.Recalculated)
	assert.Empty(t, resp.Failed)

	rec, err := f.svc.GetRecord(ctx, testEmployee, "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, "07:58", rec.MorningEntry)
	assert.Equal(t, "17:02", rec.FinalExit)
	assert.Equal(t, "08:00", rec.ExpectedStart)
	assert.Equal(t, 484, rec.WorkedMinutes)
	assert.Equal(t, string(attendance.StatusOK), rec.Status)
	assert.Equal(t, string(attendance.SourceWeekly), rec.ScheduleSource)

	require.Len(t, events, 1)
	ev := <-events
	assert.Equal(t, EventRecordRecalculated, ev.Event)
}

func TestService_IngestPunches_Malformed(t *testing.T) {
	f := newServiceFixture(t)
	f.seedWeekly(t)
	ctx := context.Background()

	req := punchRequest("08:00", "12:00", "13:00", "17:00")
	req.Punches = append(req.Punches,
		attendance.PunchInput{EmployeeID: testEmployee, Timestamp: "25:99", Date: ptr("2024-03-04")},
		attendance.PunchInput{EmployeeID: testEmployee, Timestamp: "garbage"},
	)

	resp, err := f.svc.IngestPunches(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Accepted)
	assert.Equal(t, 1, resp.Malformed)
	require.Len(t, resp.Failed, 1, "a malformed punch without a date cannot be filed")

	rec, err := f.svc.GetRecord(ctx, testEmployee, "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusInconsistent), rec.Status)
	assert.Equal(t, 5, rec.PunchCount)
}

func TestService_IngestPunches_Validation(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.IngestPunches(context.Background(), attendance.IngestPunchesRequest{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestService_Corrections(t *testing.T) {
	f := newServiceFixture(t)
	f.seedWeekly(t)
	ctx := context.Background()

	_, err := f.svc.IngestPunches(ctx, punchRequest("08:10", "12:00", "13:00"))
	require.NoError(t, err)

	rec, err := f.svc.GetRecord(ctx, testEmployee, "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusInconsistent), rec.Status)

	_, err = f.svc.GetCorrection(ctx, testEmployee, "2024-03-04")
	assert.ErrorIs(t, err, attendance.ErrCorrectionNotFound)

	corrected, err := f.svc.UpsertCorrection(ctx, attendance.UpsertCorrectionRequest{
		EmployeeID:  testEmployee,
		Date:        "2024-03-04",
		FinalExit:   ptr("17:00"),
		Reason:      "forgot to punch out",
		CorrectedBy: "op-1",
	})
	require.NoError(t, err)
	assert.Nil(t, corrected.Warning)
	require.NotNil(t, corrected.Record)
	assert.Equal(t, "17:00", corrected.Record.FinalExit)
	assert.Equal(t, "08:10", corrected.Record.MorningEntry, "uncorrected slots keep the punch")
	assert.Equal(t, string(attendance.StatusOK), corrected.Record.Status)
	assert.Equal(t, "op-1", corrected.CorrectedBy)

	got, err := f.svc.GetCorrection(ctx, testEmployee, "2024-03-04")
	require.NoError(t, err)
	require.NotNil(t, got.FinalExit)
	assert.Equal(t, "17:00", *got.FinalExit)
	require.NotNil(t, got.Record)

	after, err := f.svc.DeleteCorrection(ctx, testEmployee, "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, "-", after.FinalExit)
	assert.Equal(t, string(attendance.StatusInconsistent), after.Status)

	_, err = f.svc.DeleteCorrection(ctx, testEmployee, "2024-03-04")
	assert.ErrorIs(t, err, attendance.ErrCorrectionNotFound)
}

func TestService_UpsertCorrection_Validation(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.UpsertCorrection(context.Background(), attendance.UpsertCorrectionRequest{
		EmployeeID:   testEmployee,
		Date:         "2024-03-04",
		MorningEntry: ptr("8h"),
		Reason:       "typo",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "morning_entry")
}

func TestService_Occurrences(t *testing.T) {
	f := newServiceFixture(t)
	f.seedWeekly(t)
	ctx := context.Background()

	rec, err := f.svc.SetOccurrence(ctx, attendance.SetOccurrenceRequest{
		EmployeeID: testEmployee,
		Date:       "2024-03-04",
		Type:       string(attendance.OccurrenceFerias),
		Duration:   string(attendance.DurationFull),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.ExpectedMinutes)
	assert.Equal(t, 0, rec.SaldoCLTMinutes)
	assert.Equal(t, string(attendance.StatusOK), rec.Status)
	require.NotNil(t, rec.Occurrence)
	assert.Equal(t, string(attendance.OccurrenceFerias), rec.Occurrence.Type)

	// A later recompute keeps the occurrence.
	_, err = f.svc.IngestPunches(ctx, punchRequest("08:00"))
	require.NoError(t, err)
	rec, err = f.svc.GetRecord(ctx, testEmployee, "2024-03-04")
	require.NoError(t, err)
	require.NotNil(t, rec.Occurrence)
	assert.Equal(t, 0, rec.ExpectedMinutes)

	cleared, err := f.svc.ClearOccurrence(ctx, testEmployee, "2024-03-04")
	require.NoError(t, err)
	assert.Nil(t, cleared.Occurrence)
	assert.Equal(t, 480, cleared.ExpectedMinutes)

	_, err = f.svc.ClearOccurrence(ctx, testEmployee, "2024-03-04")
	assert.ErrorIs(t, err, attendance.ErrOccurrenceNotFound)
}

func TestService_FailedRecomputeIsQueued(t *testing.T) {
	f := newServiceFixture(t)
	f.seedWeekly(t)
	ctx := context.Background()

	f.store.failing.Store(true)
	resp, err := f.svc.UpsertCorrection(ctx, attendance.UpsertCorrectionRequest{
		EmployeeID:   testEmployee,
		Date:         "2024-03-04",
		MorningEntry: ptr("08:00"),
		Reason:       "manual",
	})
	require.NoError(t, err, "the correction itself is durable")
	require.NotNil(t, resp.Warning)
	assert.Nil(t, resp.Record)

	saved, err := f.svc.GetCorrection(ctx, testEmployee, "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, "system", saved.CorrectedBy)

	pending, err := f.store.RecalcQueue().List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, testEmployee, pending[0].EmployeeID)

	_, err = f.svc.Refresh(ctx, testEmployee, testDate)
	assert.ErrorIs(t, err, attendance.ErrRecalculationPending)

	f.store.failing.Store(false)
	retried, err := f.svc.RetryPending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, retried.Processed)

	pending, err = f.store.RecalcQueue().List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	rec, err := f.svc.GetRecord(ctx, testEmployee, "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, "08:00", rec.MorningEntry)
}

func TestService_Recalculate(t *testing.T) {
	f := newServiceFixture(t)
	f.seedWeekly(t)
	ctx := context.Background()

	req := punchRequest("08:00", "12:00", "13:00", "17:00")
	req.Punches = append(req.Punches,
		attendance.PunchInput{EmployeeID: "E002", Timestamp: "2024-03-05T08:00:00-03:00"},
		attendance.PunchInput{EmployeeID: "E002", Timestamp: "2024-03-05T12:00:00-03:00"},
	)
	_, err := f.svc.IngestPunches(ctx, req)
	require.NoError(t, err)

	all, err := f.svc.Recalculate(ctx, attendance.RecalculateRequest{All: true})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Dates)
	// 2024-03-04: E001. 2024-03-05: E002 (punches) only; E001's schedule is Monday.
	assert.Equal(t, 2, all.Processed)

	one, err := f.svc.Recalculate(ctx, attendance.RecalculateRequest{Date: ptr("2024-03-04")})
	require.NoError(t, err)
	assert.Equal(t, 1, one.Dates)
	assert.Equal(t, 1, one.Processed)

	_, err = f.svc.Recalculate(ctx, attendance.RecalculateRequest{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	f.store.failing.Store(true)
	failed, err := f.svc.RecalculateDate(ctx, testDate)
	var batchErr *attendance.BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Failures, 1)
	assert.ErrorIs(t, err, errStoreDown)
	require.Len(t, failed.Failed, 1)
	assert.Equal(t, testEmployee, failed.Failed[0].EmployeeID)

	err = f.svc.RefreshDate(ctx, testDate)
	assert.ErrorIs(t, err, attendance.ErrRecalculationPending)
}

func TestService_GetRecord_InvalidKey(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.GetRecord(context.Background(), "bad id!", "2024-13-01")
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	_, err = f.svc.GetRecord(context.Background(), testEmployee, "2024-03-04")
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

type recordingPublisher struct {
	records []attendance.RecordResponse
	err     error
}

func (p *recordingPublisher) PublishRecord(_ context.Context, rec attendance.RecordResponse) error {
	p.records = append(p.records, rec)
	return p.err
}

func TestService_Publisher(t *testing.T) {
	db, err := database.NewSQLiteDB(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.MigrateSQLite(db))
	store := sqlite.NewStore(db)
	t.Cleanup(store.Close)

	pub := &recordingPublisher{err: assert.AnError}
	svc := NewAttendanceService(store, NewEngine(saoPaulo(t), 5), nil, Config{Publisher: pub})

	resp, err := svc.IngestPunches(context.Background(), punchRequest("08:00", "12:00"))
	require.NoError(t, err, "a failing sink does not fail the recompute")
	assert.Equal(t, 1, resp.Recalculated)
	assert.Empty(t, resp.Failed)

	require.Len(t, pub.records, 1)
	assert.Equal(t, testEmployee, pub.records[0].EmployeeID)
	assert.Equal(t, "2024-03-04", pub.records[0].Date)
}
