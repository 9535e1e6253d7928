package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/ponto-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	ListRecords(w http.ResponseWriter, r *http.Request)
	ExportXLSX(w http.ResponseWriter, r *http.Request)
	MonthlySummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func recordFilterFromQuery(r *http.Request) (attendance.RecordFilter, error) {
	filter := attendance.RecordFilter{
		EmployeeID: queryString(r, "employee_id"),
		StartDate:  queryString(r, "start_date"),
		EndDate:    queryString(r, "end_date"),
		Status:     queryString(r, "status"),
	}

	var err error
	if filter.Page, err = queryInt(r, "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}

// ListRecords implements ReportHandler.
func (h *reportHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := recordFilterFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.ListRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, response.NewPageMeta(result.Page, result.Limit, result.TotalCount))
}

// ExportXLSX implements ReportHandler.
func (h *reportHandlerImpl) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	filter, err := recordFilterFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	buf, err := h.reportService.ExportXLSX(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance_records_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// MonthlySummary implements ReportHandler.
func (h *reportHandlerImpl) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	req := report.MonthlySummaryRequest{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Month:      r.URL.Query().Get("month"),
	}
	if req.Month == "" {
		req.Month = time.Now().Format("2006-01")
	}

	result, err := h.reportService.MonthlySummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
