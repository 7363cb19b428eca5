package domain

import "time"

// DateRange is an inclusive calendar range. End covers its whole day. A zero
// Start or End leaves that side open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && !t.Before(endOfDay(r.End)) {
		return false
	}
	return true
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

// ReportFilter narrows an SLA report. Empty fields do not filter.
type ReportFilter struct {
	Range      DateRange
	Month      string // YYYY-MM
	Department string
	Technician string // roster display name
	Status     TicketStatus
}

// TicketFilter narrows a ticket listing.
type TicketFilter struct {
	Status      *TicketStatus
	Priority    *TicketPriority
	Category    *string
	Department  *string
	AssignedTo  *string
	Query       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// FilterPreset is a named, saved ReportFilter.
type FilterPreset struct {
	Name      string
	Filter    ReportFilter
	CreatedAt time.Time
}
