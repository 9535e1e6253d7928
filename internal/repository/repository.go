package repository

import (
	"context"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/schedule"
)

// Store is the storage port. Services depend on it and never on a SQL dialect;
// internal/repository/postgresql and internal/repository/sqlite implement it.
type Store interface {
	Punches() attendance.PunchRepository
	Corrections() attendance.CorrectionRepository
	Records() attendance.ProcessedRecordRepository
	RecalcQueue() attendance.RecalcQueueRepository
	WorkSchedules() schedule.WorkScheduleRepository
	Exceptions() schedule.ExceptionRepository
	Calendar() calendar.EventRepository

	// WithTransaction runs fn in one transaction. Repository calls made with
	// the ctx handed to fn join it.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	Close()
}
