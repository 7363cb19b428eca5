package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/repair-desk/internal/adapters/export"
	"github.com/lorrc/repair-desk/internal/adapters/primary/validation"
	"github.com/lorrc/repair-desk/internal/core/domain"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout      = "2006-01-02"
)

// ReportHandler serves the SLA/KPI report and its exports.
type ReportHandler struct {
	reportService ports.ReportService
	errorHandler  *ErrorHandler
	location      *time.Location
	logger        *slog.Logger
}

func NewReportHandler(
	reportService ports.ReportService,
	errorHandler *ErrorHandler,
	loc *time.Location,
	logger *slog.Logger,
) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{
		reportService: reportService,
		errorHandler:  errorHandler,
		location:      loc,
		logger:        logger.With("handler", "report"),
	}
}

// RegisterRoutes sets up the JSON report endpoint.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sla", h.HandleGetReport)
}

// RegisterExportRoutes sets up the file download endpoint.
func (h *ReportHandler) RegisterExportRoutes(r chi.Router) {
	r.Get("/sla/export", h.HandleExportReport)
}

// --- DTOs ---

// ReportFilterDTO is the wire form of a report filter. Dates are YYYY-MM-DD.
type ReportFilterDTO struct {
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	Month      string `json:"month,omitempty"`
	Department string `json:"department,omitempty"`
	Technician string `json:"technician,omitempty"`
	Status     string `json:"status,omitempty"`
}

// toDomain validates the DTO into v and returns the parsed filter.
func (f ReportFilterDTO) toDomain(loc *time.Location, v *validation.Validator) domain.ReportFilter {
	filter := domain.ReportFilter{
		Month:      strings.TrimSpace(f.Month),
		Department: strings.TrimSpace(f.Department),
		Technician: strings.TrimSpace(f.Technician),
	}

	parseDate := func(field, raw string) time.Time {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return time.Time{}
		}
		t, err := time.ParseInLocation(dateLayout, raw, loc)
		v.Custom(field, err == nil, "Must be a date in YYYY-MM-DD format")
		return t
	}
	filter.Range.Start = parseDate("start", f.Start)
	filter.Range.End = parseDate("end", f.End)
	if !filter.Range.Start.IsZero() && !filter.Range.End.IsZero() && filter.Range.Start.After(filter.Range.End) {
		v.Custom("start", false, "Must not be after end")
	}

	v.Month("month", filter.Month)

	if raw := strings.TrimSpace(f.Status); raw != "" {
		status, ok := domain.ParseTicketStatus(raw)
		v.Custom("status", ok, "Must be one of: pending, in-progress, completed, cancelled")
		filter.Status = status
	}

	return filter
}

func toReportFilterDTO(f domain.ReportFilter) ReportFilterDTO {
	dto := ReportFilterDTO{
		Month:      f.Month,
		Department: f.Department,
		Technician: f.Technician,
		Status:     string(f.Status),
	}
	if !f.Range.Start.IsZero() {
		dto.Start = f.Range.Start.Format(dateLayout)
	}
	if !f.Range.End.IsZero() {
		dto.End = f.Range.End.Format(dateLayout)
	}
	return dto
}

type MonthlyStatDTO struct {
	Month                  string  `json:"month"`
	Count                  int64   `json:"count"`
	AverageResolutionHours float64 `json:"averageResolutionHours"`
}

type DepartmentStatDTO struct {
	Department             string  `json:"department"`
	Count                  int64   `json:"count"`
	AverageResolutionHours float64 `json:"averageResolutionHours"`
}

type TechnicianStatDTO struct {
	TechnicianID           string  `json:"technicianId"`
	Name                   string  `json:"name"`
	Count                  int64   `json:"count"`
	AverageResolutionHours float64 `json:"averageResolutionHours"`
}

type MonthlyStatusDTO struct {
	Month      string `json:"month"`
	Pending    int64  `json:"pending"`
	InProgress int64  `json:"inProgress"`
	Completed  int64  `json:"completed"`
}

// SLAReportDTO is the JSON form of a report.
type SLAReportDTO struct {
	Filter        ReportFilterDTO     `json:"filter"`
	TicketCount   int                 `json:"ticketCount"`
	UndatedCount  int                 `json:"undatedCount"`
	GeneratedAt   string              `json:"generatedAt"`
	Monthly       []MonthlyStatDTO    `json:"monthly"`
	Departments   []DepartmentStatDTO `json:"departments"`
	Technicians   []TechnicianStatDTO `json:"technicians"`
	StatusByMonth []MonthlyStatusDTO  `json:"statusByMonth"`
}

func toSLAReportDTO(report *domain.SLAReport, filter domain.ReportFilter) SLAReportDTO {
	dto := SLAReportDTO{
		Filter:        toReportFilterDTO(filter),
		TicketCount:   report.TicketCount,
		UndatedCount:  report.UndatedCount,
		GeneratedAt:   report.GeneratedAt.UTC().Format(time.RFC3339),
		Monthly:       make([]MonthlyStatDTO, 0, len(report.Monthly)),
		Departments:   make([]DepartmentStatDTO, 0, len(report.Departments)),
		Technicians:   make([]TechnicianStatDTO, 0, len(report.Technicians)),
		StatusByMonth: make([]MonthlyStatusDTO, 0, len(report.StatusByMonth)),
	}
	for _, m := range report.Monthly {
		dto.Monthly = append(dto.Monthly, MonthlyStatDTO{
			Month:                  m.Label,
			Count:                  m.Count,
			AverageResolutionHours: m.AverageResolutionHours,
		})
	}
	for _, d := range report.Departments {
		dto.Departments = append(dto.Departments, DepartmentStatDTO{
			Department:             d.Department,
			Count:                  d.Count,
			AverageResolutionHours: d.AverageResolutionHours,
		})
	}
	for _, t := range report.Technicians {
		dto.Technicians = append(dto.Technicians, TechnicianStatDTO{
			TechnicianID:           t.TechnicianID,
			Name:                   t.Name,
			Count:                  t.Count,
			AverageResolutionHours: t.AverageResolutionHours,
		})
	}
	for _, s := range report.StatusByMonth {
		dto.StatusByMonth = append(dto.StatusByMonth, MonthlyStatusDTO{
			Month:      s.Month,
			Pending:    s.Pending,
			InProgress: s.InProgress,
			Completed:  s.Completed,
		})
	}
	return dto
}

// --- Handlers ---

// HandleGetReport handles GET /reports/sla
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	filter, err := h.parseReportFilter(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	report, err := h.reportService.GetReport(r.Context(), actor, filter)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toSLAReportDTO(report, filter))
}

// HandleExportReport handles GET /reports/sla/export?format=csv|xlsx
func (h *ReportHandler) HandleExportReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = formatCSV
	}
	v := validation.NewValidator()
	v.OneOf("format", format, []string{formatCSV, formatXLSX})
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	filter, err := h.parseReportFilter(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	report, err := h.reportService.GetReport(r.Context(), actor, filter)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	filename := fmt.Sprintf("sla-report-%s.%s", report.GeneratedAt.In(h.location).Format("20060102"), format)

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if format == formatXLSX {
		contentType = xlsxContentType
		err = export.WriteReportXLSX(&buf, *report)
	} else {
		err = export.WriteReportCSV(&buf, *report)
	}
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "report exported",
		"format", format,
		"tickets", report.TicketCount,
	)

	writeAttachmentHeaders(w, contentType, filename)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *ReportHandler) parseReportFilter(r *http.Request) (domain.ReportFilter, error) {
	q := r.URL.Query()
	v := validation.NewValidator()
	filter := ReportFilterDTO{
		Start:      q.Get("start"),
		End:        q.Get("end"),
		Month:      q.Get("month"),
		Department: q.Get("department"),
		Technician: q.Get("technician"),
		Status:     q.Get("status"),
	}.toDomain(h.location, v)

	if v.HasErrors() {
		return domain.ReportFilter{}, v.Errors()
	}
	return filter, nil
}
