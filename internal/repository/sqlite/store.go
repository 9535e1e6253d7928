package sqlite

import (
	"context"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository"
)

type store struct {
	db *database.SQLiteDB

	punches       attendance.PunchRepository
	corrections   attendance.CorrectionRepository
	records       attendance.ProcessedRecordRepository
	recalcQueue   attendance.RecalcQueueRepository
	workSchedules schedule.WorkScheduleRepository
	exceptions    schedule.ExceptionRepository
	calendar      calendar.EventRepository
}

// NewStore wires every SQLite repository behind the storage port.
func NewStore(db *database.SQLiteDB) repository.Store {
	return &store{
		db:            db,
		punches:       NewPunchRepository(db),
		corrections:   NewCorrectionRepository(db),
		records:       NewProcessedRecordRepository(db),
		recalcQueue:   NewRecalcQueueRepository(db),
		workSchedules: NewWorkScheduleRepository(db),
		exceptions:    NewScheduleExceptionRepository(db),
		calendar:      NewCalendarEventRepository(db),
	}
}

func (s *store) Punches() attendance.PunchRepository            { return s.punches }
func (s *store) Corrections() attendance.CorrectionRepository   { return s.corrections }
func (s *store) Records() attendance.ProcessedRecordRepository  { return s.records }
func (s *store) RecalcQueue() attendance.RecalcQueueRepository  { return s.recalcQueue }
func (s *store) WorkSchedules() schedule.WorkScheduleRepository { return s.workSchedules }
func (s *store) Exceptions() schedule.ExceptionRepository       { return s.exceptions }
func (s *store) Calendar() calendar.EventRepository             { return s.calendar }

// WithTransaction joins the transaction already carried by ctx, if any.
func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return inTransaction(ctx, s.db, fn)
}

func (s *store) Close() {
	s.db.Close()
}
