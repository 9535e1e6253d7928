package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/ponto-backend-go/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const recordsSheet = "Records"

var minutesPerHour = decimal.NewFromInt(60)

type reportServiceImpl struct {
	store repository.Store
	loc   *time.Location
}

// ListRecords implements report.ReportService.
func (s *reportServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	records, total, err := s.store.Records().List(ctx, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list records: %w", err)
	}

	resp := attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Records:    make([]attendance.RecordResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, attendance.NewRecordResponse(rec, s.loc))
	}
	return resp, nil
}

// ExportXLSX implements report.ReportService. Pagination is ignored; every
// matching record is exported.
func (s *reportServiceImpl) ExportXLSX(ctx context.Context, filter attendance.RecordFilter) (*bytes.Buffer, error) {
	filter.Page, filter.Limit = 1, 0
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, _, err := s.store.Records().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	if len(records) == 0 {
		return nil, report.ErrNoDataFound
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(recordsSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Date", "Employee", "Morning Entry", "Lunch Exit", "Afternoon Entry", "Final Exit",
		"Expected Start", "Expected End", "Worked (min)", "Expected (min)",
		"Atraso CLT", "Chegada Antec. CLT", "Extra CLT", "Saida Antec. CLT", "Saldo CLT",
		"Status", "Occurrence",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	inconsistentStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000"},
	})

	if err := f.SetSheetRow(recordsSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(recordsSheet, "A1", lastCol+"1", headerStyle)
	f.SetColWidth(recordsSheet, "A", "B", 14)
	f.SetColWidth(recordsSheet, "C", lastCol, 12)
	f.SetPanes(recordsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i, rec := range records {
		r := attendance.NewRecordResponse(rec, s.loc)
		occurrence := "-"
		if r.Occurrence != nil {
			occurrence = r.Occurrence.Type + " " + r.Occurrence.Duration
		}

		row := []any{
			r.Date, r.EmployeeID, r.MorningEntry, r.LunchExit, r.AfternoonEntry, r.FinalExit,
			r.ExpectedStart, r.ExpectedEnd, r.WorkedMinutes, r.ExpectedMinutes,
			r.AtrasoCLTMinutes, r.ChegadaAntecCLTMinutes, r.ExtraCLTMinutes, r.SaidaAntecCLTMinutes, r.SaldoCLT,
			r.Status, occurrence,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(recordsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
		}
		if rec.Status == attendance.StatusInconsistent {
			end, _ := excelize.CoordinatesToCellName(len(headers), i+2)
			f.SetCellStyle(recordsSheet, cell, end, inconsistentStyle)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		slog.Error("failed to write xlsx", "error", err)
		return nil, report.ErrReportGenerationFailed
	}
	return buf, nil
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour).Round(2)
}

// MonthlySummary implements report.ReportService.
func (s *reportServiceImpl) MonthlySummary(ctx context.Context, req report.MonthlySummaryRequest) (report.MonthlySummary, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlySummary{}, err
	}

	month, _ := time.Parse("2006-01", req.Month)
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	startStr, endStr := utils.FormatDate(start), utils.FormatDate(end)

	records, _, err := s.store.Records().List(ctx, attendance.RecordFilter{
		EmployeeID: &req.EmployeeID,
		StartDate:  &startStr,
		EndDate:    &endStr,
		Page:       1,
	})
	if err != nil {
		return report.MonthlySummary{}, fmt.Errorf("failed to list records: %w", err)
	}

	summary := report.MonthlySummary{
		EmployeeID:  req.EmployeeID,
		Month:       start.Format("2006-01"),
		PeriodStart: startStr,
		PeriodEnd:   endStr,
		GeneratedAt: time.Now().In(s.loc).Format(time.RFC3339),
		DailyLogs:   make([]attendance.RecordResponse, 0, len(records)),
	}

	t := &summary.Totals
	t.Occurrences = make(map[string]int)
	for _, rec := range records {
		t.Days++
		if rec.Status == attendance.StatusInconsistent {
			t.DaysInconsistent++
		} else {
			t.DaysOK++
		}
		t.WorkedMinutes += rec.WorkedMinutes
		t.ExpectedMinutes += rec.ExpectedMinutes
		t.AtrasoCLTMinutes += rec.AtrasoCLTMinutes
		t.ChegadaAntecCLTMinutes += rec.ChegadaAntecCLTMinutes
		t.ExtraCLTMinutes += rec.ExtraCLTMinutes
		t.SaidaAntecCLTMinutes += rec.SaidaAntecCLTMinutes
		t.SaldoCLTMinutes += rec.SaldoCLTMinutes
		if rec.Occurrence != nil {
			t.Occurrences[string(rec.Occurrence.Type)]++
		}
		summary.DailyLogs = append(summary.DailyLogs, attendance.NewRecordResponse(rec, s.loc))
	}

	t.WorkedHours = minutesToHours(t.WorkedMinutes)
	t.ExpectedHours = minutesToHours(t.ExpectedMinutes)
	t.BalanceHours = minutesToHours(t.WorkedMinutes - t.ExpectedMinutes)
	t.SaldoCLT = utils.FormatSignedMinutes(t.SaldoCLTMinutes)
	t.SaldoCLTHours = minutesToHours(t.SaldoCLTMinutes)

	return summary, nil
}

// NewReportService creates the report service. Punch times are rendered in loc.
func NewReportService(store repository.Store, loc *time.Location) report.ReportService {
	return &reportServiceImpl{
		store: store,
		loc:   loc,
	}
}
