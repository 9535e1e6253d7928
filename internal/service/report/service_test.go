package report

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (report.ReportService, repository.Store) {
	t.Helper()

	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	db, err := database.NewSQLiteDB(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.MigrateSQLite(db))

	store := sqlite.NewStore(db)
	t.Cleanup(store.Close)
	return NewReportService(store, loc), store
}

func seedRecord(t *testing.T, store repository.Store, employeeID string, day int, worked, expected, saldo int, status attendance.Status) {
	t.Helper()

	entry := time.Date(2024, 3, day, 11, 0, 0, 0, time.UTC) // 08:00 in Sao Paulo
	err := store.Records().Upsert(context.Background(), attendance.ProcessedRecord{
		EmployeeID:      employeeID,
		Date:            time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		MorningEntry:    &entry,
		FirstEntry:      &entry,
		PunchCount:      1,
		ShiftType:       "NORMAL",
		ScheduleSource:  attendance.SourceWeekly,
		WorkedMinutes:   worked,
		ExpectedMinutes: expected,
		BalanceSeconds:  (worked - expected) * 60,
		SaldoCLTMinutes: saldo,
		ExtraCLTMinutes: max(saldo, 0),
		Status:          status,
	})
	require.NoError(t, err)
}

func TestReportService_ListRecords(t *testing.T) {
	svc, store := newTestService(t)
	seedRecord(t, store, "E001", 4, 480, 480, 0, attendance.StatusOK)
	seedRecord(t, store, "E001", 5, 300, 480, -180, attendance.StatusInconsistent)
	seedRecord(t, store, "E002", 4, 500, 480, 20, attendance.StatusOK)

	resp, err := svc.ListRecords(context.Background(), attendance.RecordFilter{EmployeeID: ptr("E001")})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.TotalCount)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "2024-03-04", resp.Records[0].Date)
	assert.Equal(t, "08:00", resp.Records[0].MorningEntry)
	assert.Equal(t, "-", resp.Records[0].LunchExit)
	assert.Equal(t, "-03:00", resp.Records[1].SaldoCLT)

	resp, err = svc.ListRecords(context.Background(), attendance.RecordFilter{Status: ptr("INCONSISTENTE")})
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "2024-03-05", resp.Records[0].Date)

	resp, err = svc.ListRecords(context.Background(), attendance.RecordFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.TotalCount)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "E001", resp.Records[0].EmployeeID)
	assert.Equal(t, "2024-03-05", resp.Records[0].Date)

	_, err = svc.ListRecords(context.Background(), attendance.RecordFilter{StartDate: ptr("March")})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "start_date")
}

func TestReportService_ExportXLSX(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.ExportXLSX(context.Background(), attendance.RecordFilter{})
	assert.ErrorIs(t, err, report.ErrNoDataFound)

	seedRecord(t, store, "E001", 4, 480, 480, 0, attendance.StatusOK)
	seedRecord(t, store, "E001", 5, 300, 480, -180, attendance.StatusInconsistent)

	buf, err := svc.ExportXLSX(context.Background(), attendance.RecordFilter{Limit: 1})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(recordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2024-03-04", rows[1][0])
	assert.Equal(t, "08:00", rows[1][2])
	assert.Equal(t, "INCONSISTENTE", rows[2][15])
	assert.Equal(t, "-03:00", rows[2][14])
}

func TestReportService_MonthlySummary(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	seedRecord(t, store, "E001", 4, 480, 480, 0, attendance.StatusOK)
	seedRecord(t, store, "E001", 5, 300, 480, -180, attendance.StatusInconsistent)
	seedRecord(t, store, "E001", 6, 510, 480, 25, attendance.StatusOK)
	seedRecord(t, store, "E002", 6, 480, 480, 0, attendance.StatusOK)

	require.NoError(t, store.Records().SetOccurrence(ctx, "E001", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), &attendance.Occurrence{
		Type:     attendance.OccurrenceAtestado,
		Duration: attendance.DurationHalf,
	}))

	summary, err := svc.MonthlySummary(ctx, report.MonthlySummaryRequest{EmployeeID: "E001", Month: "2024-03"})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", summary.PeriodStart)
	assert.Equal(t, "2024-03-31", summary.PeriodEnd)
	assert.Len(t, summary.DailyLogs, 3)

	totals := summary.Totals
	assert.Equal(t, 3, totals.Days)
	assert.Equal(t, 2, totals.DaysOK)
	assert.Equal(t, 1, totals.DaysInconsistent)
	assert.Equal(t, 1290, totals.WorkedMinutes)
	assert.Equal(t, 1440, totals.ExpectedMinutes)
	assert.Equal(t, "21.5", totals.WorkedHours.String())
	assert.Equal(t, "24", totals.ExpectedHours.String())
	assert.Equal(t, "-2.5", totals.BalanceHours.String())
	assert.Equal(t, -155, totals.SaldoCLTMinutes)
	assert.Equal(t, "-02:35", totals.SaldoCLT)
	assert.Equal(t, "-2.58", totals.SaldoCLTHours.String())
	assert.Equal(t, map[string]int{"ATESTADO": 1}, totals.Occurrences)
}

func TestReportService_MonthlySummary_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.MonthlySummary(context.Background(), report.MonthlySummaryRequest{Month: "2024-3"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "employee_id")
	assert.Contains(t, fields, "month")
}
