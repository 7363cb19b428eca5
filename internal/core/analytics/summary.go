package analytics

import (
	"math"

	"github.com/lorrc/repair-desk/internal/core/domain"
)

// Summarize computes dashboard totals. Unrecognized statuses are counted in
// Total only.
func Summarize(tickets []*domain.Ticket) domain.TicketStatistics {
	stats := domain.TicketStatistics{
		ByStatus:   make(map[domain.TicketStatus]int64, 4),
		ByPriority: make(map[domain.TicketPriority]int64, 3),
		ByCategory: make(map[string]int64),
	}
	for _, s := range domain.AllStatuses() {
		stats.ByStatus[s] = 0
	}
	for _, p := range []domain.TicketPriority{domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow} {
		stats.ByPriority[p] = 0
	}

	var hoursSum float64
	var resolved int64
	for _, t := range tickets {
		if t == nil {
			continue
		}
		stats.Total++
		if s := t.Status.Normalize(); s != domain.StatusUnknown {
			stats.ByStatus[s]++
		}
		if t.Priority.IsValid() {
			stats.ByPriority[t.Priority]++
		}
		if t.Category != "" {
			stats.ByCategory[t.Category]++
		}
		if hours, ok := t.ResolutionHours(); ok {
			hoursSum += hours
			resolved++
		}
	}
	if resolved > 0 {
		stats.AverageResponseHours = int64(math.Round(hoursSum / float64(resolved)))
	}
	return stats
}

// TechnicianKPI summarizes the tickets assigned to one technician. Tickets
// assigned to anyone else are ignored.
func TechnicianKPI(technicianID string, tickets []*domain.Ticket) domain.TechnicianKPI {
	kpi := domain.TechnicianKPI{TechnicianID: technicianID}

	var hoursSum float64
	var resolved int64
	for _, t := range tickets {
		if t == nil || !t.IsAssignedTo(technicianID) {
			continue
		}
		kpi.Total++
		if t.Status.Normalize() == domain.StatusCompleted {
			kpi.Completed++
		}
		if hours, ok := t.ResolutionHours(); ok {
			hoursSum += hours
			resolved++
		}
	}
	if resolved > 0 {
		kpi.AverageHours = int64(math.Round(hoursSum / float64(resolved)))
	}
	return kpi
}
