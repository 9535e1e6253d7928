package report

import (
	"bytes"
	"context"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
)

// ReportService is the read side over processed records.
type ReportService interface {
	ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error)

	// ExportXLSX renders the filtered records as a spreadsheet.
	ExportXLSX(ctx context.Context, filter attendance.RecordFilter) (*bytes.Buffer, error)

	MonthlySummary(ctx context.Context, req MonthlySummaryRequest) (MonthlySummary, error)
}
