package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/lorrc/repair-desk/internal/core/mocks"
	"github.com/lorrc/repair-desk/internal/core/ports"
	"github.com/lorrc/repair-desk/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	admin      = domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	technician = domain.Actor{UserID: "tech-1", Role: domain.RoleTechnician}
	requester  = domain.Actor{UserID: "user-1", Role: domain.RoleUser}

	roster = []domain.Technician{
		{ID: "tech-1", Name: "Somchai"},
		{ID: "tech-2", Name: "Suda"},
	}
)

type ticketFixture struct {
	tickets *mocks.MockTicketRepository
	techs   *mocks.MockTechnicianRepository
	svc     ports.TicketService
}

func newTicketFixture() ticketFixture {
	tickets := mocks.NewMockTicketRepository()
	techs := mocks.NewMockTechnicianRepository()
	return ticketFixture{
		tickets: tickets,
		techs:   techs,
		svc:     services.NewTicketService(tickets, techs, services.NewAuthorizationService()),
	}
}

func strPtr(s string) *string { return &s }

func TestTicketService_CreateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newTicketFixture()
		var created *domain.Ticket
		f.tickets.On("Create", ctx, mock.MatchedBy(func(tk *domain.Ticket) bool {
			created = tk
			return tk.ID != "" && tk.Department == "Finance"
		})).Return(&domain.Ticket{ID: "stored", Status: domain.StatusPending, Priority: domain.PriorityMedium}, nil)

		ticket, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{
			Actor: requester,
			Ticket: domain.TicketParams{
				Title:      "Broken air conditioner",
				Requester:  "Anan",
				Department: "Finance",
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "stored", ticket.ID)
		require.NotNil(t, created)
		assert.Equal(t, domain.StatusPending, created.Status)
		assert.Equal(t, domain.PriorityMedium, created.Priority)
		assert.False(t, created.CreatedAt.IsZero())
		f.tickets.AssertExpectations(t)
	})

	t.Run("validation error for empty title", func(t *testing.T) {
		f := newTicketFixture()

		ticket, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{
			Actor:  requester,
			Ticket: domain.TicketParams{Requester: "Anan"},
		})

		assert.Nil(t, ticket)
		var verrs *apperrors.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.Errors, "title")
		f.tickets.AssertNotCalled(t, "Create")
	})

	t.Run("forbidden for unknown role", func(t *testing.T) {
		f := newTicketFixture()

		_, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{
			Actor:  domain.Actor{UserID: "x", Role: "guest"},
			Ticket: domain.TicketParams{Title: "t", Requester: "r"},
		})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestTicketService_ListTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("admin sees all", func(t *testing.T) {
		f := newTicketFixture()
		filter := domain.TicketFilter{Query: "pump"}
		f.tickets.On("List", ctx, filter).Return([]*domain.Ticket{{ID: "1"}}, nil)

		got, err := f.svc.ListTickets(ctx, ports.ListTicketsParams{Actor: admin, Filter: filter})

		require.NoError(t, err)
		assert.Len(t, got, 1)
		f.tickets.AssertExpectations(t)
	})

	t.Run("technician is scoped to assigned tickets", func(t *testing.T) {
		f := newTicketFixture()
		f.tickets.On("List", ctx, domain.TicketFilter{AssignedTo: strPtr("tech-1")}).Return([]*domain.Ticket{}, nil)

		_, err := f.svc.ListTickets(ctx, ports.ListTicketsParams{
			Actor:  technician,
			Filter: domain.TicketFilter{AssignedTo: strPtr("tech-2")},
		})

		require.NoError(t, err)
		f.tickets.AssertExpectations(t)
	})

	t.Run("user cannot list", func(t *testing.T) {
		f := newTicketFixture()

		_, err := f.svc.ListTickets(ctx, ports.ListTicketsParams{Actor: requester})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.tickets.AssertNotCalled(t, "List")
	})
}

func TestTicketService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("assigned technician completes ticket", func(t *testing.T) {
		f := newTicketFixture()
		ticket := &domain.Ticket{ID: "1", Status: domain.StatusInProgress, AssignedTo: strPtr("tech-1"), CreatedAt: time.Now().Add(-time.Hour)}
		f.tickets.On("GetByID", ctx, "1").Return(ticket, nil)
		f.tickets.On("Update", ctx, ticket).Return(ticket, nil)

		got, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: "1", Status: "done", Actor: technician})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got.Status)
		require.NotNil(t, got.UpdatedAt)
	})

	t.Run("technician cannot update someone else's ticket", func(t *testing.T) {
		f := newTicketFixture()
		f.tickets.On("GetByID", ctx, "1").Return(&domain.Ticket{ID: "1", Status: domain.StatusPending, AssignedTo: strPtr("tech-2")}, nil)

		_, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: "1", Status: domain.StatusInProgress, Actor: technician})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.tickets.AssertNotCalled(t, "Update")
	})

	t.Run("admin may update any ticket", func(t *testing.T) {
		f := newTicketFixture()
		ticket := &domain.Ticket{ID: "1", Status: domain.StatusPending}
		f.tickets.On("GetByID", ctx, "1").Return(ticket, nil)
		f.tickets.On("Update", ctx, ticket).Return(ticket, nil)

		_, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: "1", Status: domain.StatusCancelled, Actor: admin})

		require.NoError(t, err)
	})

	t.Run("terminal ticket rejects transition", func(t *testing.T) {
		f := newTicketFixture()
		f.tickets.On("GetByID", ctx, "1").Return(&domain.Ticket{ID: "1", Status: domain.StatusCompleted}, nil)

		_, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: "1", Status: domain.StatusPending, Actor: admin})

		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	})

	t.Run("not found", func(t *testing.T) {
		f := newTicketFixture()
		f.tickets.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrTicketNotFound)

		_, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: "missing", Status: domain.StatusPending, Actor: admin})

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}

func TestTicketService_AssignTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns roster technician", func(t *testing.T) {
		f := newTicketFixture()
		ticket := &domain.Ticket{ID: "1", Status: domain.StatusPending}
		f.techs.On("ListTechnicians", ctx).Return(roster, nil)
		f.tickets.On("GetByID", ctx, "1").Return(ticket, nil)
		f.tickets.On("Update", ctx, ticket).Return(ticket, nil)

		got, err := f.svc.AssignTicket(ctx, ports.AssignTicketParams{TicketID: "1", TechnicianID: "tech-2", Actor: admin})

		require.NoError(t, err)
		assert.True(t, got.IsAssignedTo("tech-2"))
	})

	t.Run("unknown technician", func(t *testing.T) {
		f := newTicketFixture()
		f.techs.On("ListTechnicians", ctx).Return(roster, nil)

		_, err := f.svc.AssignTicket(ctx, ports.AssignTicketParams{TicketID: "1", TechnicianID: "ghost", Actor: admin})

		assert.ErrorIs(t, err, apperrors.ErrTechnicianNotFound)
		f.tickets.AssertNotCalled(t, "GetByID")
	})

	t.Run("technicians cannot assign", func(t *testing.T) {
		f := newTicketFixture()

		_, err := f.svc.AssignTicket(ctx, ports.AssignTicketParams{TicketID: "1", TechnicianID: "tech-1", Actor: technician})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestTicketService_DeleteTicket(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture()
	f.tickets.On("Delete", ctx, "1").Return(nil)

	require.NoError(t, f.svc.DeleteTicket(ctx, admin, "1"))
	assert.ErrorIs(t, f.svc.DeleteTicket(ctx, technician, "1"), apperrors.ErrForbidden)
	f.tickets.AssertNumberOfCalls(t, "Delete", 1)
}

func TestTicketService_GetStatistics(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture()
	f.tickets.On("List", ctx, domain.TicketFilter{}).Return([]*domain.Ticket{
		{Status: domain.StatusPending, Priority: domain.PriorityHigh},
		{Status: "inprogress", Priority: domain.PriorityLow},
	}, nil)

	stats, err := f.svc.GetStatistics(ctx, admin)

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[domain.StatusInProgress])
}

func TestTicketService_GetTechnicianKPI(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	done := created.Add(3 * time.Hour)

	t.Run("technician reads own KPI", func(t *testing.T) {
		f := newTicketFixture()
		f.techs.On("ListTechnicians", ctx).Return(roster, nil)
		f.tickets.On("List", ctx, domain.TicketFilter{AssignedTo: strPtr("tech-1")}).Return([]*domain.Ticket{
			{AssignedTo: strPtr("tech-1"), Status: domain.StatusCompleted, CreatedAt: created, UpdatedAt: &done},
			{AssignedTo: strPtr("tech-1"), Status: domain.StatusPending, CreatedAt: created},
		}, nil)

		kpi, err := f.svc.GetTechnicianKPI(ctx, technician, "tech-1")

		require.NoError(t, err)
		assert.Equal(t, &domain.TechnicianKPI{TechnicianID: "tech-1", Total: 2, Completed: 1, AverageHours: 3}, kpi)
	})

	t.Run("technician cannot read another's KPI", func(t *testing.T) {
		f := newTicketFixture()

		_, err := f.svc.GetTechnicianKPI(ctx, technician, "tech-2")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("unknown technician", func(t *testing.T) {
		f := newTicketFixture()
		f.techs.On("ListTechnicians", ctx).Return(roster, nil)

		_, err := f.svc.GetTechnicianKPI(ctx, admin, "ghost")

		assert.ErrorIs(t, err, apperrors.ErrTechnicianNotFound)
	})
}

func TestTicketService_ImportTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("skips rows without id and normalizes status", func(t *testing.T) {
		f := newTicketFixture()
		rows := []*domain.Ticket{
			{ID: "a", Status: "Done"},
			{ID: "  "},
			nil,
			{ID: "b", Status: "archived"},
		}
		f.tickets.On("UpsertMany", ctx, mock.MatchedBy(func(ts []*domain.Ticket) bool {
			return len(ts) == 2 && ts[0].Status == domain.StatusCompleted && ts[1].Status == "archived"
		})).Return(2, nil)

		n, err := f.svc.ImportTickets(ctx, admin, rows)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		f.tickets.AssertExpectations(t)
	})

	t.Run("nothing to import", func(t *testing.T) {
		f := newTicketFixture()

		n, err := f.svc.ImportTickets(ctx, admin, []*domain.Ticket{{ID: ""}})

		require.NoError(t, err)
		assert.Zero(t, n)
		f.tickets.AssertNotCalled(t, "UpsertMany")
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		f := newTicketFixture()
		boom := errors.New("boom")
		f.tickets.On("UpsertMany", ctx, mock.Anything).Return(0, boom)

		_, err := f.svc.ImportTickets(ctx, admin, []*domain.Ticket{{ID: "a"}})

		assert.ErrorIs(t, err, boom)
	})

	t.Run("technicians cannot import", func(t *testing.T) {
		f := newTicketFixture()

		_, err := f.svc.ImportTickets(ctx, technician, []*domain.Ticket{{ID: "a"}})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestTicketService_AuthorizationErrorPropagates(t *testing.T) {
	ctx := context.Background()
	authz := mocks.NewMockAuthorizationService()
	svc := services.NewTicketService(mocks.NewMockTicketRepository(), mocks.NewMockTechnicianRepository(), authz)
	boom := errors.New("authz down")
	authz.On("Can", ctx, domain.RoleAdmin, services.PermTicketsRead).Return(false, boom)

	_, err := svc.GetTicket(ctx, admin, "1")

	assert.ErrorIs(t, err, boom)
}
