// Package export renders SLA reports and ticket lists for download and
// parses ticket CSV uploads.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
)

// Section titles shared by the CSV and XLSX report renderers.
const (
	SectionMonthly       = "Monthly KPI-SLA"
	SectionDepartments   = "Department KPI-SLA"
	SectionTechnicians   = "Technician KPI-SLA"
	SectionStatusByMonth = "Status by Month"
)

// TicketColumns is the header row of ticket CSV files.
var TicketColumns = []string{
	"id", "title", "description", "location", "priority", "status", "category",
	"requester", "phone", "department", "assigned_to", "image_url", "created_at", "updated_at",
}

type table struct {
	title  string
	header []string
	rows   [][]any // string, int64, or float64 hours
}

// roundHours keeps two decimals so XLSX cells match the CSV text.
func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// cellText renders a table value for CSV.
func cellText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	default:
		return fmt.Sprint(x)
	}
}

// reportTables flattens the four report views in display order.
func reportTables(r domain.SLAReport) []table {
	monthly := table{title: SectionMonthly, header: []string{"month", "count", "avg_resolution_hours"}}
	for _, s := range r.Monthly {
		monthly.rows = append(monthly.rows, []any{s.Label, s.Count, roundHours(s.AverageResolutionHours)})
	}

	depts := table{title: SectionDepartments, header: []string{"department", "count", "avg_resolution_hours"}}
	for _, s := range r.Departments {
		depts.rows = append(depts.rows, []any{s.Department, s.Count, roundHours(s.AverageResolutionHours)})
	}

	techs := table{title: SectionTechnicians, header: []string{"technician_id", "technician", "count", "avg_resolution_hours"}}
	for _, s := range r.Technicians {
		techs.rows = append(techs.rows, []any{s.TechnicianID, s.Name, s.Count, roundHours(s.AverageResolutionHours)})
	}

	status := table{title: SectionStatusByMonth, header: []string{"month", "pending", "in_progress", "completed"}}
	for _, s := range r.StatusByMonth {
		status.rows = append(status.rows, []any{s.Month, s.Pending, s.InProgress, s.Completed})
	}

	return []table{monthly, depts, techs, status}
}

// WriteReportCSV writes each report view as a titled section:
// a "--- title ---" line, a header row, then data rows.
func WriteReportCSV(w io.Writer, r domain.SLAReport) error {
	cw := csv.NewWriter(w)
	for _, t := range reportTables(r) {
		if err := cw.Write([]string{"--- " + t.title + " ---"}); err != nil {
			return err
		}
		if err := cw.Write(t.header); err != nil {
			return err
		}
		for _, row := range t.rows {
			record := make([]string, len(row))
			for i, v := range row {
				record[i] = cellText(v)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func ticketRow(t *domain.Ticket) []string {
	var assigned, updated string
	if t.AssignedTo != nil {
		assigned = *t.AssignedTo
	}
	if t.UpdatedAt != nil {
		updated = domain.FormatTimestamp(*t.UpdatedAt)
	}
	return []string{
		t.ID, t.Title, t.Description, t.Location, string(t.Priority), string(t.Status), t.Category,
		t.Requester, t.Phone, t.Department, assigned, t.ImageURL,
		domain.FormatTimestamp(t.CreatedAt), updated,
	}
}

// WriteTicketsCSV writes tickets with a TicketColumns header.
func WriteTicketsCSV(w io.Writer, tickets []*domain.Ticket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TicketColumns); err != nil {
		return err
	}
	for _, t := range tickets {
		if t == nil {
			continue
		}
		if err := cw.Write(ticketRow(t)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTicketsCSV parses a ticket CSV upload. Columns are matched by header
// name in any order and unknown columns are ignored. Rows with a blank id
// are skipped. Timestamps that cannot be parsed are kept as missing.
func ReadTicketsCSV(r io.Reader) ([]*domain.Ticket, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", apperrors.ErrInvalidImport)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidImport, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		index[name] = i
	}
	if _, ok := index["id"]; !ok {
		return nil, fmt.Errorf("%w: missing id column", apperrors.ErrInvalidImport)
	}

	tickets := make([]*domain.Ticket, 0)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidImport, err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		id := get("id")
		if id == "" {
			continue
		}
		t := &domain.Ticket{
			ID:          id,
			Title:       get("title"),
			Description: get("description"),
			Location:    get("location"),
			Priority:    domain.TicketPriority(strings.ToLower(get("priority"))),
			Status:      domain.TicketStatus(get("status")),
			Category:    get("category"),
			Requester:   get("requester"),
			Phone:       get("phone"),
			Department:  get("department"),
			ImageURL:    get("image_url"),
			CreatedAt:   domain.ParseTimestamp(get("created_at")),
			UpdatedAt:   domain.ParseOptionalTimestamp(get("updated_at")),
		}
		if assigned := get("assigned_to"); assigned != "" {
			t.AssignedTo = &assigned
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}
