package cron

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAttendanceService records the calls made by the jobs.
type fakeAttendanceService struct {
	attendance.AttendanceService
	recalculated []time.Time
	retryLimit   int
	retryErr     error
}

func (f *fakeAttendanceService) RecalculateDate(_ context.Context, date time.Time) (attendance.RecalculationResponse, error) {
	f.recalculated = append(f.recalculated, date)
	return attendance.RecalculationResponse{Dates: 1, Processed: 3}, nil
}

func (f *fakeAttendanceService) RetryPending(_ context.Context, limit int) (attendance.RecalculationResponse, error) {
	f.retryLimit = limit
	return attendance.RecalculationResponse{Processed: 1}, f.retryErr
}

func TestRecomputePreviousDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	svc := &fakeAttendanceService{}
	jobs := NewAttendanceJobs(svc, AttendanceJobsConfig{Location: loc})

	// 03:30 UTC is 00:30 in Sao Paulo, outside the nightly hour.
	jobs.now = func() time.Time { return time.Date(2025, time.March, 11, 3, 30, 0, 0, time.UTC) }
	require.NoError(t, jobs.RecomputePreviousDay(context.Background()))
	assert.Empty(t, svc.recalculated)

	jobs.now = func() time.Time { return time.Date(2025, time.March, 11, 4, 30, 0, 0, time.UTC) }
	require.NoError(t, jobs.RecomputePreviousDay(context.Background()))
	require.Len(t, svc.recalculated, 1)
	assert.Equal(t, "2025-03-10", utils.FormatDate(svc.recalculated[0]))
}

func TestRetryPendingRecalculations(t *testing.T) {
	svc := &fakeAttendanceService{
		retryErr: &attendance.BatchError{Failures: []*attendance.KeyError{{Key: attendance.RecalcKey{EmployeeID: "E1"}, Err: assert.AnError}}},
	}
	jobs := NewAttendanceJobs(svc, AttendanceJobsConfig{RetryBatch: 50})

	require.NoError(t, jobs.RetryPendingRecalculations(context.Background()), "per-key failures stay queued")
	assert.Equal(t, 50, svc.retryLimit)

	svc.retryErr = assert.AnError
	assert.ErrorIs(t, jobs.RetryPendingRecalculations(context.Background()), assert.AnError)
}
