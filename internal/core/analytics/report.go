package analytics

import (
	"time"

	"github.com/lorrc/repair-desk/internal/core/domain"
)

// BuildReport computes all four views over tickets and applies filter.
//
// Month-keyed views test the date range against the first instant of each
// month. Department and technician views have no month key, so the range is
// applied to each ticket's creation time before grouping. Label filters are
// applied after grouping.
func (a *Aggregator) BuildReport(tickets []*domain.Ticket, roster []domain.Technician, filter domain.ReportFilter) domain.SLAReport {
	scoped := a.ticketsInRange(tickets, filter.Range)
	total, undated := countScoped(scoped)

	return domain.SLAReport{
		Monthly:       a.FilterMonthly(a.AggregateByMonth(tickets), filter),
		Departments:   FilterDepartments(a.AggregateByDepartment(scoped), filter),
		Technicians:   FilterTechnicians(a.AggregateByTechnician(scoped, roster), filter),
		StatusByMonth: a.FilterStatusByMonth(a.AggregateStatusByMonth(tickets), filter),
		TicketCount:   total,
		UndatedCount:  undated,
		GeneratedAt:   time.Now().UTC(),
	}
}

func countScoped(tickets []*domain.Ticket) (total, undated int) {
	for _, t := range tickets {
		if t == nil {
			continue
		}
		total++
		if t.CreatedAt.IsZero() {
			undated++
		}
	}
	return total, undated
}

func (a *Aggregator) ticketsInRange(tickets []*domain.Ticket, r domain.DateRange) []*domain.Ticket {
	if r.IsZero() {
		return tickets
	}
	scoped := make([]*domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t == nil || t.CreatedAt.IsZero() {
			continue
		}
		if r.Contains(t.CreatedAt.In(a.loc)) {
			scoped = append(scoped, t)
		}
	}
	return scoped
}

func (a *Aggregator) monthInRange(label string, r domain.DateRange) bool {
	if r.IsZero() {
		return true
	}
	start, ok := a.monthStart(label)
	if !ok {
		return false
	}
	return r.Contains(start)
}

// FilterMonthly keeps months matching the selected month and date range.
func (a *Aggregator) FilterMonthly(stats []domain.MonthlyStat, filter domain.ReportFilter) []domain.MonthlyStat {
	out := make([]domain.MonthlyStat, 0, len(stats))
	for _, s := range stats {
		if filter.Month != "" && s.Label != filter.Month {
			continue
		}
		if !a.monthInRange(s.Label, filter.Range) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FilterStatusByMonth keeps months in the date range. A status filter
// zero-fills the other counters rather than dropping rows.
func (a *Aggregator) FilterStatusByMonth(stats []domain.MonthlyStatusStat, filter domain.ReportFilter) []domain.MonthlyStatusStat {
	status := filter.Status.Normalize()
	out := make([]domain.MonthlyStatusStat, 0, len(stats))
	for _, s := range stats {
		if filter.Month != "" && s.Month != filter.Month {
			continue
		}
		if !a.monthInRange(s.Month, filter.Range) {
			continue
		}
		if status != domain.StatusUnknown {
			s = domain.MonthlyStatusStat{
				Month:      s.Month,
				Pending:    pick(status == domain.StatusPending, s.Pending),
				InProgress: pick(status == domain.StatusInProgress, s.InProgress),
				Completed:  pick(status == domain.StatusCompleted, s.Completed),
			}
		}
		out = append(out, s)
	}
	return out
}

func pick(keep bool, n int64) int64 {
	if keep {
		return n
	}
	return 0
}

// FilterDepartments keeps only the selected department, if any.
func FilterDepartments(stats []domain.DepartmentStat, filter domain.ReportFilter) []domain.DepartmentStat {
	if filter.Department == "" {
		return stats
	}
	out := make([]domain.DepartmentStat, 0, 1)
	for _, s := range stats {
		if s.Department == filter.Department {
			out = append(out, s)
		}
	}
	return out
}

// FilterTechnicians keeps only the selected technician, if any.
func FilterTechnicians(stats []domain.TechnicianStat, filter domain.ReportFilter) []domain.TechnicianStat {
	if filter.Technician == "" {
		return stats
	}
	out := make([]domain.TechnicianStat, 0, 1)
	for _, s := range stats {
		if s.Name == filter.Technician {
			out = append(out, s)
		}
	}
	return out
}
