// Package storetest holds the behaviour every repository.Store adapter must
// share. Adapter packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store for one subtest.
type Factory func(t *testing.T) repository.Store

var day = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC) // a Monday

func clock(h, m int) *utils.ClockTime {
	c := utils.NewClockTime(h, m)
	return &c
}

func instant(h, m, s int) *time.Time {
	t := time.Date(2025, time.March, 10, h+3, m, s, 0, time.UTC)
	return &t
}

// Run exercises every repository of the store.
func Run(t *testing.T, newStore Factory) {
	t.Run("Punches", func(t *testing.T) { testPunches(t, newStore(t)) })
	t.Run("Corrections", func(t *testing.T) { testCorrections(t, newStore(t)) })
	t.Run("Records", func(t *testing.T) { testRecords(t, newStore(t)) })
	t.Run("RecalcQueue", func(t *testing.T) { testRecalcQueue(t, newStore(t)) })
	t.Run("WorkSchedules", func(t *testing.T) { testWorkSchedules(t, newStore(t)) })
	t.Run("Exceptions", func(t *testing.T) { testExceptions(t, newStore(t)) })
	t.Run("Calendar", func(t *testing.T) { testCalendar(t, newStore(t)) })
	t.Run("EmployeesForDate", func(t *testing.T) { testEmployeesForDate(t, newStore(t)) })
	t.Run("Transaction", func(t *testing.T) { testTransaction(t, newStore(t)) })
}

func testPunches(t *testing.T, s repository.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	punches := []attendance.RawPunch{
		{ID: uuid.NewString(), EmployeeID: "E1", WorkDate: day, PunchedAt: instant(12, 2, 0), RawValue: "12:02", Source: "clock", CreatedAt: now},
		{ID: uuid.NewString(), EmployeeID: "E1", WorkDate: day, PunchedAt: nil, RawValue: "garbage", Source: "clock", CreatedAt: now},
		{ID: uuid.NewString(), EmployeeID: "E1", WorkDate: day, PunchedAt: instant(7, 56, 30), RawValue: "07:56:30", Direction: attendance.DirectionIn, Source: "clock", CreatedAt: now},
		{ID: uuid.NewString(), EmployeeID: "E2", WorkDate: day.AddDate(0, 0, 1), PunchedAt: instant(8, 0, 0), RawValue: "08:00", Source: "clock", CreatedAt: now},
	}
	require.NoError(t, s.Punches().Append(ctx, punches))

	got, err := s.Punches().ListByEmployeeAndDate(ctx, "E1", day)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.NotNil(t, got[0].PunchedAt)
	assert.True(t, got[0].PunchedAt.Equal(*instant(7, 56, 30)))
	assert.Equal(t, attendance.DirectionIn, got[0].Direction)
	assert.True(t, got[1].PunchedAt.Equal(*instant(12, 2, 0)))
	assert.Nil(t, got[2].PunchedAt, "malformed punches sort last")
	assert.Equal(t, "garbage", got[2].RawValue)
	assert.Equal(t, utils.FormatDate(day), utils.FormatDate(got[0].WorkDate))

	dates, err := s.Punches().DistinctDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, "2025-03-10", utils.FormatDate(dates[0]))
	assert.Equal(t, "2025-03-11", utils.FormatDate(dates[1]))
}

func testCorrections(t *testing.T, s repository.Store) {
	ctx := context.Background()

	missing, err := s.Corrections().Get(ctx, "E1", day)
	require.NoError(t, err)
	assert.Nil(t, missing)

	saved, err := s.Corrections().Upsert(ctx, attendance.ManualCorrection{
		EmployeeID:   "E1",
		Date:         day,
		MorningEntry: clock(8, 0),
		FinalExit:    clock(17, 0),
		CorrectedBy:  "operator",
		Reason:       "clock offline",
	})
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := s.Corrections().Get(ctx, "E1", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "08:00", utils.FormatClock(got.MorningEntry))
	assert.Nil(t, got.LunchExit)
	assert.Equal(t, "17:00", utils.FormatClock(got.FinalExit))
	assert.Equal(t, "clock offline", got.Reason)

	_, err = s.Corrections().Upsert(ctx, attendance.ManualCorrection{
		EmployeeID:  "E1",
		Date:        day,
		LunchExit:   clock(12, 0),
		CorrectedBy: "operator",
		Reason:      "second pass",
	})
	require.NoError(t, err)

	got, err = s.Corrections().Get(ctx, "E1", day)
	require.NoError(t, err)
	assert.Nil(t, got.MorningEntry, "upsert replaces every slot")
	assert.Equal(t, "12:00", utils.FormatClock(got.LunchExit))

	require.NoError(t, s.Corrections().Delete(ctx, "E1", day))
	assert.ErrorIs(t, s.Corrections().Delete(ctx, "E1", day), attendance.ErrCorrectionNotFound)
}

func testRecords(t *testing.T, s repository.Store) {
	ctx := context.Background()

	rec := attendance.ProcessedRecord{
		EmployeeID:             "E1",
		Date:                   day,
		MorningEntry:           instant(7, 56, 0),
		LunchExit:              instant(12, 2, 0),
		FirstEntry:             instant(7, 56, 0),
		LastExit:               instant(12, 2, 0),
		PunchCount:             2,
		ExpectedStart:          clock(8, 0),
		ExpectedEnd:            clock(17, 0),
		ShiftType:              string(schedule.ShiftTypeNormal),
		ScheduleSource:         attendance.SourceWeekly,
		ToleranceMinutes:       10,
		EarlyArrivalSeconds:    240,
		WorkedMinutes:          366,
		ExpectedMinutes:        480,
		BalanceSeconds:         -6840,
		AtrasoCLTMinutes:       114,
		SaldoCLTMinutes:        -114,
		Status:                 attendance.StatusInconsistent,
		ChegadaAntecCLTMinutes: 0,
	}
	require.NoError(t, s.Records().Upsert(ctx, rec))

	got, err := s.Records().Get(ctx, "E1", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.MorningEntry.Equal(*rec.MorningEntry))
	assert.Nil(t, got.AfternoonEntry)
	assert.Equal(t, "08:00", utils.FormatClock(got.ExpectedStart))
	assert.Equal(t, attendance.SourceWeekly, got.ScheduleSource)
	assert.Equal(t, -6840, got.BalanceSeconds)
	assert.Equal(t, -114, got.SaldoCLTMinutes)
	assert.Equal(t, attendance.StatusInconsistent, got.Status)
	assert.Nil(t, got.Occurrence)

	hours := 240
	occ := &attendance.Occurrence{
		Type:         attendance.OccurrenceAtestado,
		HoursMinutes: &hours,
		Duration:     attendance.DurationHalf,
		Slots:        attendance.OccurrenceSlots{AfternoonEntry: true, FinalExit: true},
	}
	require.NoError(t, s.Records().SetOccurrence(ctx, "E1", day, occ))

	// A recompute must not wipe the occurrence.
	rec.Status = attendance.StatusOK
	require.NoError(t, s.Records().Upsert(ctx, rec))

	got, err = s.Records().Get(ctx, "E1", day)
	require.NoError(t, err)
	require.NotNil(t, got.Occurrence)
	assert.Equal(t, attendance.OccurrenceAtestado, got.Occurrence.Type)
	assert.Equal(t, attendance.DurationHalf, got.Occurrence.Duration)
	require.NotNil(t, got.Occurrence.HoursMinutes)
	assert.Equal(t, 240, *got.Occurrence.HoursMinutes)
	assert.True(t, got.Occurrence.Slots.Afternoon())
	assert.False(t, got.Occurrence.Slots.Morning())
	assert.Equal(t, attendance.StatusOK, got.Status)

	// Recomputing unchanged inputs leaves the row untouched.
	touched := got.UpdatedAt
	require.NoError(t, s.Records().Upsert(ctx, rec))
	got, err = s.Records().Get(ctx, "E1", day)
	require.NoError(t, err)
	assert.True(t, touched.Equal(got.UpdatedAt), "updated_at moved from %s to %s", touched, got.UpdatedAt)
	assert.Equal(t, attendance.StatusOK, got.Status)

	require.NoError(t, s.Records().SetOccurrence(ctx, "E1", day, nil))
	got, err = s.Records().Get(ctx, "E1", day)
	require.NoError(t, err)
	assert.Nil(t, got.Occurrence)

	err = s.Records().SetOccurrence(ctx, "E9", day, nil)
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)

	// Placeholder row for a day that was never computed.
	require.NoError(t, s.Records().SetOccurrence(ctx, "E2", day.AddDate(0, 0, 1), &attendance.Occurrence{
		Type:     attendance.OccurrenceFerias,
		Duration: attendance.DurationFull,
	}))

	all, total, err := s.Records().List(ctx, attendance.RecordFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, all, 2)
	assert.Equal(t, "E1", all[0].EmployeeID)
	assert.Equal(t, "E2", all[1].EmployeeID)

	start := "2025-03-11"
	filtered, total, err := s.Records().List(ctx, attendance.RecordFilter{StartDate: &start})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, filtered, 1)
	assert.Equal(t, attendance.OccurrenceFerias, filtered[0].Occurrence.Type)

	page, total, err := s.Records().List(ctx, attendance.RecordFilter{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "E2", page[0].EmployeeID)
}

func testRecalcQueue(t *testing.T, s repository.Store) {
	ctx := context.Background()
	key := attendance.RecalcKey{EmployeeID: "E1", Date: day}

	require.NoError(t, s.RecalcQueue().Enqueue(ctx, key, "first"))
	require.NoError(t, s.RecalcQueue().Enqueue(ctx, key, "second"))
	require.NoError(t, s.RecalcQueue().Enqueue(ctx, attendance.RecalcKey{EmployeeID: "E2", Date: day}, "other"))

	pending, err := s.RecalcQueue().List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "E1", pending[0].EmployeeID)
	assert.Equal(t, 2, pending[0].Attempts)
	assert.Equal(t, "second", pending[0].LastError)

	require.NoError(t, s.RecalcQueue().Remove(ctx, key))
	pending, err = s.RecalcQueue().List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "E2", pending[0].EmployeeID)
}

func testWorkSchedules(t *testing.T, s repository.Store) {
	ctx := context.Background()

	ws, err := s.WorkSchedules().Upsert(ctx, schedule.WorkSchedule{
		EmployeeID: "E1",
		DayOfWeek:  1,
		Periods: schedule.Periods{
			MorningStart:   clock(8, 0),
			MorningEnd:     clock(12, 0),
			AfternoonStart: clock(13, 0),
			AfternoonEnd:   clock(17, 0),
		},
	})
	require.NoError(t, err)
	assert.False(t, ws.UpdatedAt.IsZero())

	_, err = s.WorkSchedules().Upsert(ctx, schedule.WorkSchedule{
		EmployeeID: "E1",
		DayOfWeek:  6,
		Periods:    schedule.Periods{MorningStart: clock(8, 0), MorningEnd: clock(12, 0)},
	})
	require.NoError(t, err)

	got, err := s.WorkSchedules().Get(ctx, "E1", 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 480, got.MorningMinutes()+got.AfternoonMinutes())

	missing, err := s.WorkSchedules().Get(ctx, "E1", 0)
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := s.WorkSchedules().ListByEmployee(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 6, list[1].DayOfWeek)
	assert.False(t, list[1].HasAfternoon())

	require.NoError(t, s.WorkSchedules().Delete(ctx, "E1", 6))
	assert.ErrorIs(t, s.WorkSchedules().Delete(ctx, "E1", 6), schedule.ErrWorkScheduleNotFound)
}

func testExceptions(t *testing.T, s repository.Store) {
	ctx := context.Background()
	breakMinutes := 60

	_, err := s.Exceptions().Upsert(ctx, schedule.ScheduleException{
		EmployeeID: "E1",
		Date:       day,
		Periods: schedule.Periods{
			MorningStart:   clock(7, 0),
			MorningEnd:     clock(12, 0),
			AfternoonStart: clock(13, 0),
			AfternoonEnd:   clock(18, 0),
		},
		ShiftType:    schedule.ShiftTypeNormal,
		BreakMinutes: &breakMinutes,
	})
	require.NoError(t, err)

	got, err := s.Exceptions().Get(ctx, "E1", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "07:00", utils.FormatClock(got.MorningStart))
	require.NotNil(t, got.BreakMinutes)
	assert.Equal(t, 60, *got.BreakMinutes)
	assert.Nil(t, got.IntervalToleranceMinutes)

	_, err = s.Exceptions().Upsert(ctx, schedule.ScheduleException{
		EmployeeID: "E1",
		Date:       day.AddDate(0, 0, 5),
		ShiftType:  schedule.ShiftTypeNonWorking,
	})
	require.NoError(t, err)

	end := "2025-03-12"
	list, err := s.Exceptions().ListByEmployee(ctx, "E1", schedule.ExceptionFilter{EndDate: &end})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = s.Exceptions().ListByEmployee(ctx, "E1", schedule.ExceptionFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, schedule.ShiftTypeNonWorking, list[1].ShiftType)

	require.NoError(t, s.Exceptions().Delete(ctx, "E1", day))
	assert.ErrorIs(t, s.Exceptions().Delete(ctx, "E1", day), schedule.ErrScheduleExceptionNotFound)
}

func testCalendar(t *testing.T, s repository.Store) {
	ctx := context.Background()

	created, err := s.Calendar().Upsert(ctx, calendar.Event{
		ID:                    uuid.NewString(),
		Date:                  day,
		EventType:             calendar.EventTypeDSR,
		AppliesToAllEmployees: false,
		EmployeeIDs:           []string{"E2", "E1"},
		Description:           "rest day",
	})
	require.NoError(t, err)

	// Same (date, type) replaces the event and keeps its id.
	replaced, err := s.Calendar().Upsert(ctx, calendar.Event{
		ID:                    uuid.NewString(),
		Date:                  day,
		EventType:             calendar.EventTypeDSR,
		AppliesToAllEmployees: false,
		EmployeeIDs:           []string{"E3"},
		Description:           "rest day (moved)",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, replaced.ID)

	_, err = s.Calendar().Upsert(ctx, calendar.Event{
		ID:                    uuid.NewString(),
		Date:                  day,
		EventType:             calendar.EventTypeFeriado,
		AppliesToAllEmployees: true,
		Description:           "holiday",
	})
	require.NoError(t, err)

	events, err := s.Calendar().ListByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, calendar.EventTypeDSR, events[0].EventType)
	assert.Equal(t, []string{"E3"}, events[0].EmployeeIDs)
	assert.True(t, events[0].AppliesTo("E3"))
	assert.False(t, events[0].AppliesTo("E1"))
	assert.True(t, events[1].AppliesTo("anyone"))

	typ := string(calendar.EventTypeFeriado)
	filtered, err := s.Calendar().List(ctx, calendar.EventFilter{EventType: &typ})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "holiday", filtered[0].Description)

	deleted, err := s.Calendar().Delete(ctx, day, calendar.EventTypeDSR)
	require.NoError(t, err)
	assert.Equal(t, []string{"E3"}, deleted.EmployeeIDs)

	_, err = s.Calendar().Delete(ctx, day, calendar.EventTypeDSR)
	assert.ErrorIs(t, err, calendar.ErrEventNotFound)
}

func testEmployeesForDate(t *testing.T, s repository.Store) {
	ctx := context.Background()

	require.NoError(t, s.Punches().Append(ctx, []attendance.RawPunch{
		{ID: uuid.NewString(), EmployeeID: "P1", WorkDate: day, PunchedAt: instant(8, 0, 0), RawValue: "08:00", CreatedAt: time.Now()},
	}))
	_, err := s.WorkSchedules().Upsert(ctx, schedule.WorkSchedule{
		EmployeeID: "W1",
		DayOfWeek:  int(day.Weekday()),
		Periods:    schedule.Periods{MorningStart: clock(8, 0), MorningEnd: clock(12, 0)},
	})
	require.NoError(t, err)
	_, err = s.WorkSchedules().Upsert(ctx, schedule.WorkSchedule{
		EmployeeID: "W2",
		DayOfWeek:  int(day.Weekday()) + 1,
		Periods:    schedule.Periods{MorningStart: clock(8, 0), MorningEnd: clock(12, 0)},
	})
	require.NoError(t, err)
	_, err = s.Corrections().Upsert(ctx, attendance.ManualCorrection{
		EmployeeID: "C1", Date: day, MorningEntry: clock(8, 0), CorrectedBy: "op", Reason: "r",
	})
	require.NoError(t, err)

	employees, err := s.Records().EmployeesForDate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "P1", "W1"}, employees)
}

func testTransaction(t *testing.T, s repository.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := s.Corrections().Upsert(ctx, attendance.ManualCorrection{
			EmployeeID: "E1", Date: day, MorningEntry: clock(8, 0), CorrectedBy: "op", Reason: "r",
		})
		require.NoError(t, err)

		// Nested calls join the outer transaction.
		return s.WithTransaction(ctx, func(ctx context.Context) error {
			got, err := s.Corrections().Get(ctx, "E1", day)
			require.NoError(t, err)
			require.NotNil(t, got)
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Corrections().Get(ctx, "E1", day)
	require.NoError(t, err)
	assert.Nil(t, got, "rolled back")
}
