package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lorrc/repair-desk/internal/adapters/secondary/sqlite"
	"github.com/lorrc/repair-desk/internal/core/analytics"
	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/lorrc/repair-desk/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr[T any](v T) *T {
	return &v
}

func ticketAt(id string, created time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:        id,
		Title:     "Ticket " + id,
		Priority:  domain.PriorityMedium,
		Status:    domain.StatusPending,
		Requester: "Anan",
		CreatedAt: created,
	}
}

func TestOpen_RejectsEmptyDataSource(t *testing.T) {
	_, err := sqlite.Open(context.Background(), sqlite.WithDataSource(""), sqlite.WithRetry(1, 0))
	assert.Error(t, err)
}

func TestTicketRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTicketRepository(setupTestDB(t))

	created := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	ticket := ticketAt("1", created)
	ticket.Department = "Facilities"

	stored, err := repo.Create(ctx, ticket)
	require.NoError(t, err)
	assert.True(t, created.Equal(stored.CreatedAt))
	assert.Equal(t, "Facilities", stored.Department)

	require.NoError(t, stored.Assign("tech-1"))
	require.NoError(t, stored.UpdateStatus(domain.StatusInProgress))
	updated, err := repo.Update(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.True(t, updated.IsAssignedTo("tech-1"))
	require.NotNil(t, updated.UpdatedAt)

	_, err = repo.Update(ctx, ticketAt("missing", created))
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	require.NoError(t, repo.Delete(ctx, "1"))
	_, err = repo.GetByID(ctx, "1")
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "1"), apperrors.ErrTicketNotFound)
}

func TestTicketRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTicketRepository(setupTestDB(t))

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := ticketAt("a", base)
	a.Title = "Broken Window"
	b := ticketAt("b", base.Add(24*time.Hour))
	b.AssignedTo = ptr("tech-1")
	b.Department = "IT"
	c := ticketAt("c", base.Add(48*time.Hour))
	c.Status = domain.StatusCompleted
	undated := ticketAt("z", time.Time{})

	for _, tk := range []*domain.Ticket{a, b, c, undated} {
		_, err := repo.Create(ctx, tk)
		require.NoError(t, err)
	}

	ids := func(ts []*domain.Ticket) []string {
		out := make([]string, 0, len(ts))
		for _, tk := range ts {
			out = append(out, tk.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter domain.TicketFilter
		want   []string
	}{
		{"newest first with undated last", domain.TicketFilter{}, []string{"c", "b", "a", "z"}},
		{"paged", domain.TicketFilter{Limit: 2, Offset: 1}, []string{"b", "a"}},
		{"offset past end", domain.TicketFilter{Offset: 10}, []string{}},
		{"status", domain.TicketFilter{Status: ptr(domain.StatusCompleted)}, []string{"c"}},
		{"assignee", domain.TicketFilter{AssignedTo: ptr("tech-1")}, []string{"b"}},
		{"department", domain.TicketFilter{Department: ptr("IT")}, []string{"b"}},
		{"query ignores case", domain.TicketFilter{Query: "window"}, []string{"a"}},
		{"created from", domain.TicketFilter{CreatedFrom: ptr(base.Add(time.Hour))}, []string{"c", "b"}},
		{"created to", domain.TicketFilter{CreatedTo: ptr(base)}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestTicketRepository_UpsertMany(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTicketRepository(setupTestDB(t))

	_, err := repo.Create(ctx, ticketAt("1", time.Now()))
	require.NoError(t, err)

	replaced := ticketAt("1", time.Now())
	replaced.Title = "Replaced"
	n, err := repo.UpsertMany(ctx, []*domain.Ticket{replaced, ticketAt("2", time.Now())})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Replaced", got.Title)

	all, err := repo.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTicketRepository_MalformedRowsSurvive(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := sqlite.NewTicketRepository(db)

	_, err := db.ExecContext(ctx, `INSERT INTO tickets (id, title, status, created_at, updated_at)
VALUES ('bad', 'Bad dates', 'done', 'not a date', 'also not a date'),
       ('old', 'Legacy', 'in-progress', '2024-01-10 08:00:00', NULL)`)
	require.NoError(t, err)

	bad, err := repo.GetByID(ctx, "bad")
	require.NoError(t, err)
	assert.True(t, bad.CreatedAt.IsZero())
	assert.Nil(t, bad.UpdatedAt)

	legacy, err := repo.GetByID(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), legacy.CreatedAt)
}

func TestTechnicianRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewTechnicianRepository(setupTestDB(t))

	roster, err := repo.ListTechnicians(ctx)
	require.NoError(t, err)
	assert.Empty(t, roster)

	require.NoError(t, repo.SaveTechnician(ctx, domain.Technician{ID: "t2", Name: "Suda"}))
	require.NoError(t, repo.SaveTechnician(ctx, domain.Technician{ID: "t1", Name: "Somchai"}))

	roster, err = repo.ListTechnicians(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Technician{{ID: "t1", Name: "Somchai"}, {ID: "t2", Name: "Suda"}}, roster)
}

// The report over stored data skips unparseable timestamps instead of
// failing, and recognizes legacy status spellings.
func TestReportOverStoredTickets(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	tickets := sqlite.NewTicketRepository(db)
	techs := sqlite.NewTechnicianRepository(db)

	require.NoError(t, techs.SaveTechnician(ctx, domain.Technician{ID: "t1", Name: "Somchai"}))
	_, err := db.ExecContext(ctx, `INSERT INTO tickets (id, status, department, assigned_to, created_at, updated_at) VALUES
	('1', 'completed',  'Ops', 't1', '2024-01-01T00:00:00Z', '2024-01-03T00:00:00Z'),
	('2', 'inprogress', 'Ops', 't1', '2024-01-15T00:00:00Z', NULL),
	('3', 'done',       '',    NULL, '2024-02-01T00:00:00Z', '2024-02-01T00:00:00Z'),
	('4', 'pending',    'Ops', NULL, 'garbage',              NULL)`)
	require.NoError(t, err)

	svc := services.NewReportService(tickets, techs, services.NewAuthorizationService(), analytics.NewAggregator())
	report, err := svc.GetReport(ctx, domain.Actor{UserID: "a", Role: domain.RoleAdmin}, domain.ReportFilter{})
	require.NoError(t, err)

	assert.Equal(t, []domain.MonthlyStat{
		{Label: "2024-01", Count: 2, AverageResolutionHours: 48},
		{Label: "2024-02", Count: 1, AverageResolutionHours: 0},
	}, report.Monthly)
	assert.Equal(t, []domain.MonthlyStatusStat{
		{Month: "2024-01", InProgress: 1, Completed: 1},
		{Month: "2024-02", Completed: 1},
	}, report.StatusByMonth)
	assert.Equal(t, []domain.TechnicianStat{
		{TechnicianID: "t1", Name: "Somchai", Count: 2, AverageResolutionHours: 48},
	}, report.Technicians)
	assert.Equal(t, []domain.DepartmentStat{
		{Department: "Ops", Count: 3, AverageResolutionHours: 48},
		{Department: domain.NoDataLabel, Count: 1, AverageResolutionHours: 0},
	}, report.Departments)
	assert.Equal(t, 4, report.TicketCount)
	assert.Equal(t, 1, report.UndatedCount)
}
