// Package analytics computes KPI/SLA report views from an in-memory ticket
// set. Every function is pure: buckets are rebuilt on each call and nothing
// is retained between calls.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/lorrc/repair-desk/internal/core/domain"
)

const monthLayout = "2006-01"

// Aggregator groups tickets into report buckets. Its settings are fixed at
// construction, so one value may be shared across goroutines.
type Aggregator struct {
	loc         *time.Location
	noDataLabel string
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLocation sets the time zone used to derive month labels.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithNoDataLabel sets the department label used for blank departments.
func WithNoDataLabel(label string) Option {
	return func(a *Aggregator) {
		if strings.TrimSpace(label) != "" {
			a.noDataLabel = label
		}
	}
}

// NewAggregator returns an Aggregator that labels months in UTC unless
// configured otherwise.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		loc:         time.UTC,
		noDataLabel: domain.NoDataLabel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// bucket accumulates one group.
type bucket struct {
	count              int64
	resolutionHoursSum float64
	resolutionCount    int64
}

func (b *bucket) observe(t *domain.Ticket) {
	b.count++
	if hours, ok := t.ResolutionHours(); ok {
		b.resolutionHoursSum += hours
		b.resolutionCount++
	}
}

func (b *bucket) averageResolutionHours() float64 {
	if b.resolutionCount == 0 {
		return 0
	}
	return b.resolutionHoursSum / float64(b.resolutionCount)
}

// MonthLabel returns the YYYY-MM label for t in the aggregator's location.
func (a *Aggregator) MonthLabel(t time.Time) string {
	return t.In(a.loc).Format(monthLayout)
}

// monthStart parses a label back to the first instant of that month.
func (a *Aggregator) monthStart(label string) (time.Time, bool) {
	t, err := time.ParseInLocation(monthLayout, label, a.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DepartmentLabel returns the bucket key for a department value.
func (a *Aggregator) DepartmentLabel(department string) string {
	if d := strings.TrimSpace(department); d != "" {
		return d
	}
	return a.noDataLabel
}

// AggregateByMonth groups tickets by the month they were filed. Tickets
// without a creation time are skipped. Output is in chronological order.
func (a *Aggregator) AggregateByMonth(tickets []*domain.Ticket) []domain.MonthlyStat {
	buckets := make(map[string]*bucket)
	for _, t := range tickets {
		if t == nil || t.CreatedAt.IsZero() {
			continue
		}
		label := a.MonthLabel(t.CreatedAt)
		b, ok := buckets[label]
		if !ok {
			b = &bucket{}
			buckets[label] = b
		}
		b.observe(t)
	}

	stats := make([]domain.MonthlyStat, 0, len(buckets))
	for label, b := range buckets {
		stats = append(stats, domain.MonthlyStat{
			Label:                  label,
			Count:                  b.count,
			AverageResolutionHours: b.averageResolutionHours(),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Label < stats[j].Label })
	return stats
}

// AggregateByDepartment groups tickets by department, with blank departments
// collected under the no-data label. Output is sorted by department name.
func (a *Aggregator) AggregateByDepartment(tickets []*domain.Ticket) []domain.DepartmentStat {
	buckets := make(map[string]*bucket)
	for _, t := range tickets {
		if t == nil {
			continue
		}
		label := a.DepartmentLabel(t.Department)
		b, ok := buckets[label]
		if !ok {
			b = &bucket{}
			buckets[label] = b
		}
		b.observe(t)
	}

	stats := make([]domain.DepartmentStat, 0, len(buckets))
	for label, b := range buckets {
		stats = append(stats, domain.DepartmentStat{
			Department:             label,
			Count:                  b.count,
			AverageResolutionHours: b.averageResolutionHours(),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Department < stats[j].Department })
	return stats
}

// AggregateByTechnician returns one entry per roster technician, including
// those with no tickets. Tickets that are unassigned or assigned to someone
// off the roster are skipped. Output is busiest first.
func (a *Aggregator) AggregateByTechnician(tickets []*domain.Ticket, roster []domain.Technician) []domain.TechnicianStat {
	buckets := make(map[string]*bucket, len(roster))
	order := make([]domain.Technician, 0, len(roster))
	for _, tech := range roster {
		if _, dup := buckets[tech.ID]; dup {
			continue
		}
		buckets[tech.ID] = &bucket{}
		order = append(order, tech)
	}

	for _, t := range tickets {
		if t == nil || t.AssignedTo == nil {
			continue
		}
		b, ok := buckets[*t.AssignedTo]
		if !ok {
			continue
		}
		b.observe(t)
	}

	stats := make([]domain.TechnicianStat, 0, len(order))
	for _, tech := range order {
		b := buckets[tech.ID]
		stats = append(stats, domain.TechnicianStat{
			TechnicianID:           tech.ID,
			Name:                   tech.Name,
			Count:                  b.count,
			AverageResolutionHours: b.averageResolutionHours(),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		if stats[i].Name != stats[j].Name {
			return stats[i].Name < stats[j].Name
		}
		return stats[i].TechnicianID < stats[j].TechnicianID
	})
	return stats
}

// AggregateStatusByMonth counts pending, in-progress and completed tickets
// per filing month. Cancelled and unrecognized statuses still open a month
// bucket but are not counted in it.
func (a *Aggregator) AggregateStatusByMonth(tickets []*domain.Ticket) []domain.MonthlyStatusStat {
	buckets := make(map[string]*domain.MonthlyStatusStat)
	for _, t := range tickets {
		if t == nil || t.CreatedAt.IsZero() {
			continue
		}
		label := a.MonthLabel(t.CreatedAt)
		s, ok := buckets[label]
		if !ok {
			s = &domain.MonthlyStatusStat{Month: label}
			buckets[label] = s
		}
		switch t.Status.Normalize() {
		case domain.StatusPending:
			s.Pending++
		case domain.StatusInProgress:
			s.InProgress++
		case domain.StatusCompleted:
			s.Completed++
		}
	}

	stats := make([]domain.MonthlyStatusStat, 0, len(buckets))
	for _, s := range buckets {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Month < stats[j].Month })
	return stats
}
