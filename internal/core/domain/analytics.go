package domain

import "time"

// NoDataLabel is the department bucket for tickets without a department.
const NoDataLabel = "no data"

// MonthlyStat is one calendar month of ticket demand and resolution time.
type MonthlyStat struct {
	Label                  string // YYYY-MM
	Count                  int64
	AverageResolutionHours float64
}

// DepartmentStat is the ticket volume and resolution time for a department.
type DepartmentStat struct {
	Department             string
	Count                  int64
	AverageResolutionHours float64
}

// TechnicianStat is the ticket volume and resolution time for a roster entry.
type TechnicianStat struct {
	TechnicianID           string
	Name                   string
	Count                  int64
	AverageResolutionHours float64
}

// MonthlyStatusStat breaks a month's tickets down by status. Cancelled
// tickets are not counted.
type MonthlyStatusStat struct {
	Month      string // YYYY-MM
	Pending    int64
	InProgress int64
	Completed  int64
}

// SLAReport bundles the four report views computed from one ticket set.
type SLAReport struct {
	Monthly       []MonthlyStat
	Departments   []DepartmentStat
	Technicians   []TechnicianStat
	StatusByMonth []MonthlyStatusStat
	// TicketCount is the number of tickets the department and technician
	// views were built from (date range applied, labels not).
	TicketCount int
	// UndatedCount is how many of those have no usable CreatedAt and so are
	// absent from the month-keyed views.
	UndatedCount int
	GeneratedAt  time.Time
}

// TicketStatistics is the dashboard summary over all tickets.
type TicketStatistics struct {
	Total                int64
	ByStatus             map[TicketStatus]int64
	ByPriority           map[TicketPriority]int64
	ByCategory           map[string]int64
	AverageResponseHours int64
}

// TechnicianKPI summarizes one technician's workload.
type TechnicianKPI struct {
	TechnicianID string
	Total        int64
	Completed    int64
	AverageHours int64
}
