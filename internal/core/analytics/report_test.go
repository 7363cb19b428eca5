package analytics_test

import (
	"testing"
	"time"

	"github.com/lorrc/repair-desk/internal/core/analytics"
	"github.com/lorrc/repair-desk/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportFixture() ([]*domain.Ticket, []domain.Technician) {
	a, b := "a", "b"
	tickets := []*domain.Ticket{
		{ID: "1", CreatedAt: at(2024, 1, 5), Status: domain.StatusPending, Department: "Ops", AssignedTo: &a},
		{ID: "2", CreatedAt: at(2024, 1, 20), Status: domain.StatusCompleted, UpdatedAt: ptr(at(2024, 1, 22)), Department: "Ops", AssignedTo: &a},
		{ID: "3", CreatedAt: at(2024, 2, 10), Status: domain.StatusInProgress, Department: "Admin", AssignedTo: &b},
		{ID: "4", CreatedAt: at(2024, 3, 1), Status: domain.StatusCompleted, UpdatedAt: ptr(at(2024, 3, 2)), Department: ""},
	}
	roster := []domain.Technician{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}}
	return tickets, roster
}

func TestBuildReport_NoFilter(t *testing.T) {
	agg := analytics.NewAggregator()
	tickets, roster := reportFixture()

	report := agg.BuildReport(tickets, roster, domain.ReportFilter{})

	assert.Len(t, report.Monthly, 3)
	assert.Len(t, report.Departments, 3)
	assert.Len(t, report.Technicians, 2)
	assert.Len(t, report.StatusByMonth, 3)
	assert.Equal(t, 4, report.TicketCount)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestBuildReport_TicketCountMatchesDepartmentTotals(t *testing.T) {
	agg := analytics.NewAggregator()
	tickets, roster := reportFixture()
	tickets = append(tickets, nil, &domain.Ticket{ID: "5", Department: "Ops", Status: domain.StatusPending})

	report := agg.BuildReport(tickets, roster, domain.ReportFilter{})

	var deptTotal, monthTotal int64
	for _, d := range report.Departments {
		deptTotal += d.Count
	}
	for _, m := range report.Monthly {
		monthTotal += m.Count
	}
	assert.Equal(t, 5, report.TicketCount)
	assert.Equal(t, 1, report.UndatedCount)
	assert.EqualValues(t, report.TicketCount, deptTotal)
	assert.EqualValues(t, report.TicketCount-report.UndatedCount, monthTotal)

	ranged := agg.BuildReport(tickets, roster, domain.ReportFilter{Range: domain.DateRange{Start: at(2024, 2, 1)}})
	assert.Equal(t, 2, ranged.TicketCount)
	assert.Zero(t, ranged.UndatedCount)
}

func TestBuildReport_DateRange(t *testing.T) {
	agg := analytics.NewAggregator()
	tickets, roster := reportFixture()

	filter := domain.ReportFilter{Range: domain.DateRange{Start: at(2024, 2, 1), End: at(2024, 3, 1)}}
	report := agg.BuildReport(tickets, roster, filter)

	labels := make([]string, 0, len(report.Monthly))
	for _, m := range report.Monthly {
		labels = append(labels, m.Label)
	}
	assert.Equal(t, []string{"2024-02", "2024-03"}, labels)
	require.Len(t, report.StatusByMonth, 2)
	assert.Equal(t, "2024-02", report.StatusByMonth[0].Month)

	// Department and technician views only see tickets created in range.
	assert.Equal(t, []domain.DepartmentStat{
		{Department: "Admin", Count: 1},
		{Department: domain.NoDataLabel, Count: 1, AverageResolutionHours: 24},
	}, report.Departments)
	assert.Equal(t, []domain.TechnicianStat{
		{TechnicianID: "b", Name: "Bob", Count: 1},
		{TechnicianID: "a", Name: "Alice", Count: 0},
	}, report.Technicians)
}

func TestBuildReport_MonthStartBeforeRangeIsExcluded(t *testing.T) {
	agg := analytics.NewAggregator()
	tickets, roster := reportFixture()

	report := agg.BuildReport(tickets, roster, domain.ReportFilter{
		Range: domain.DateRange{Start: at(2024, 1, 15)},
	})

	require.NotEmpty(t, report.Monthly)
	assert.Equal(t, "2024-02", report.Monthly[0].Label)
}

func TestBuildReport_LabelFilters(t *testing.T) {
	agg := analytics.NewAggregator()
	tickets, roster := reportFixture()

	report := agg.BuildReport(tickets, roster, domain.ReportFilter{
		Month:      "2024-01",
		Department: "Ops",
		Technician: "Alice",
		Status:     "in_progress",
	})

	assert.Equal(t, []domain.MonthlyStat{{Label: "2024-01", Count: 2, AverageResolutionHours: 48}}, report.Monthly)
	assert.Equal(t, []domain.DepartmentStat{{Department: "Ops", Count: 2, AverageResolutionHours: 48}}, report.Departments)
	assert.Equal(t, []domain.TechnicianStat{{TechnicianID: "a", Name: "Alice", Count: 2, AverageResolutionHours: 48}}, report.Technicians)
	assert.Equal(t, []domain.MonthlyStatusStat{{Month: "2024-01"}}, report.StatusByMonth)
}

func TestFilterStatusByMonth_ZeroFillsOtherCounters(t *testing.T) {
	agg := analytics.NewAggregator()
	stats := []domain.MonthlyStatusStat{{Month: "2024-01", Pending: 3, InProgress: 2, Completed: 1}}

	got := agg.FilterStatusByMonth(stats, domain.ReportFilter{Status: domain.StatusCompleted})

	assert.Equal(t, []domain.MonthlyStatusStat{{Month: "2024-01", Completed: 1}}, got)
}

func TestBuildReport_EmptyInput(t *testing.T) {
	agg := analytics.NewAggregator()
	roster := []domain.Technician{{ID: "a", Name: "Alice"}}

	report := agg.BuildReport(nil, roster, domain.ReportFilter{Range: domain.DateRange{Start: time.Now()}})

	assert.Empty(t, report.Monthly)
	assert.Empty(t, report.Departments)
	assert.Equal(t, []domain.TechnicianStat{{TechnicianID: "a", Name: "Alice"}}, report.Technicians)
	assert.Empty(t, report.StatusByMonth)
}
