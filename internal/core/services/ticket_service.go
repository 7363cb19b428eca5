package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lorrc/repair-desk/internal/core/analytics"
	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

// TicketService implements business logic for ticket management
type TicketService struct {
	ticketRepo ports.TicketRepository
	techRepo   ports.TechnicianRepository
	authzSvc   ports.AuthorizationService
}

var _ ports.TicketService = (*TicketService)(nil)

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo ports.TicketRepository,
	techRepo ports.TechnicianRepository,
	authzSvc ports.AuthorizationService,
) ports.TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		techRepo:   techRepo,
		authzSvc:   authzSvc,
	}
}

// CreateTicket handles the use case for submitting a new repair request
func (s *TicketService) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	if err := requirePermission(ctx, s.authzSvc, params.Actor.Role, PermTicketsCreate); err != nil {
		return nil, err
	}

	ticket, err := domain.NewTicket(params.Ticket)
	if err != nil {
		return nil, err
	}
	ticket.ID = uuid.NewString()

	return s.ticketRepo.Create(ctx, ticket)
}

// GetTicket retrieves a single ticket. Any caller allowed to read tickets
// may look one up by ID, which is how requesters track their request.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermTicketsRead); err != nil {
		return nil, err
	}
	return s.ticketRepo.GetByID(ctx, ticketID)
}

// ListTickets returns all matching tickets for admins and only assigned
// tickets for technicians.
func (s *TicketService) ListTickets(ctx context.Context, params ports.ListTicketsParams) ([]*domain.Ticket, error) {
	filter, err := s.scopeFilter(ctx, params.Actor, params.Filter)
	if err != nil {
		return nil, err
	}
	return s.ticketRepo.List(ctx, filter)
}

func (s *TicketService) scopeFilter(ctx context.Context, actor domain.Actor, filter domain.TicketFilter) (domain.TicketFilter, error) {
	canListAll, err := s.authzSvc.Can(ctx, actor.Role, PermTicketsListAll)
	if err != nil {
		return filter, err
	}
	if canListAll {
		return filter, nil
	}

	canListAssigned, err := s.authzSvc.Can(ctx, actor.Role, PermTicketsListAssigned)
	if err != nil {
		return filter, err
	}
	if !canListAssigned {
		return filter, apperrors.ErrForbidden
	}

	userID := actor.UserID
	filter.AssignedTo = &userID
	return filter, nil
}

// UpdateStatus changes a ticket's status with business rule enforcement
func (s *TicketService) UpdateStatus(ctx context.Context, params ports.UpdateStatusParams) (*domain.Ticket, error) {
	if err := requirePermission(ctx, s.authzSvc, params.Actor.Role, PermTicketsUpdateStatus); err != nil {
		return nil, err
	}

	ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}

	// Technicians may only move tickets assigned to them.
	canUpdateAny, err := s.authzSvc.Can(ctx, params.Actor.Role, PermTicketsUpdateAny)
	if err != nil {
		return nil, err
	}
	if !canUpdateAny && !ticket.IsAssignedTo(params.Actor.UserID) {
		return nil, apperrors.ErrForbidden
	}

	if err := ticket.UpdateStatus(params.Status); err != nil {
		return nil, err
	}

	return s.ticketRepo.Update(ctx, ticket)
}

// AssignTicket assigns a ticket to a technician on the roster
func (s *TicketService) AssignTicket(ctx context.Context, params ports.AssignTicketParams) (*domain.Ticket, error) {
	if err := requirePermission(ctx, s.authzSvc, params.Actor.Role, PermTicketsAssign); err != nil {
		return nil, err
	}

	if _, err := s.findTechnician(ctx, params.TechnicianID); err != nil {
		return nil, err
	}

	ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}

	if err := ticket.Assign(params.TechnicianID); err != nil {
		return nil, err
	}

	return s.ticketRepo.Update(ctx, ticket)
}

// DeleteTicket removes a ticket permanently
func (s *TicketService) DeleteTicket(ctx context.Context, actor domain.Actor, ticketID string) error {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermTicketsDelete); err != nil {
		return err
	}
	return s.ticketRepo.Delete(ctx, ticketID)
}

// GetStatistics returns dashboard totals over every ticket
func (s *TicketService) GetStatistics(ctx context.Context, actor domain.Actor) (*domain.TicketStatistics, error) {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermStatisticsRead); err != nil {
		return nil, err
	}

	tickets, err := s.ticketRepo.List(ctx, domain.TicketFilter{})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	stats := analytics.Summarize(tickets)
	return &stats, nil
}

// ListTechnicians returns the roster
func (s *TicketService) ListTechnicians(ctx context.Context, actor domain.Actor) ([]domain.Technician, error) {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermTechniciansRead); err != nil {
		return nil, err
	}
	return s.techRepo.ListTechnicians(ctx)
}

// GetTechnicianKPI summarizes one technician's workload. Technicians may
// only read their own.
func (s *TicketService) GetTechnicianKPI(ctx context.Context, actor domain.Actor, technicianID string) (*domain.TechnicianKPI, error) {
	canReadAll, err := s.authzSvc.Can(ctx, actor.Role, PermKPIReadAll)
	if err != nil {
		return nil, err
	}
	if !canReadAll {
		if err := requirePermission(ctx, s.authzSvc, actor.Role, PermKPIReadOwn); err != nil {
			return nil, err
		}
		if actor.UserID != technicianID {
			return nil, apperrors.ErrForbidden
		}
	}

	if _, err := s.findTechnician(ctx, technicianID); err != nil {
		return nil, err
	}

	tickets, err := s.ticketRepo.List(ctx, domain.TicketFilter{AssignedTo: &technicianID})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	kpi := analytics.TechnicianKPI(technicianID, tickets)
	return &kpi, nil
}

// ImportTickets upserts tickets by ID. Rows without an ID are skipped.
// Recognized status spellings are stored in canonical form; anything else
// is kept verbatim so reports can skip it.
func (s *TicketService) ImportTickets(ctx context.Context, actor domain.Actor, tickets []*domain.Ticket) (int, error) {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermTicketsImport); err != nil {
		return 0, err
	}

	rows := make([]*domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t == nil || strings.TrimSpace(t.ID) == "" {
			continue
		}
		if status, ok := domain.ParseTicketStatus(string(t.Status)); ok {
			t.Status = status
		}
		rows = append(rows, t)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := s.ticketRepo.UpsertMany(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("import tickets: %w", err)
	}
	return n, nil
}

// ExportTickets returns the tickets matching filter for download
func (s *TicketService) ExportTickets(ctx context.Context, actor domain.Actor, filter domain.TicketFilter) ([]*domain.Ticket, error) {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermTicketsExport); err != nil {
		return nil, err
	}
	return s.ticketRepo.List(ctx, filter)
}

func (s *TicketService) findTechnician(ctx context.Context, technicianID string) (domain.Technician, error) {
	roster, err := s.techRepo.ListTechnicians(ctx)
	if err != nil {
		return domain.Technician{}, fmt.Errorf("list technicians: %w", err)
	}
	for _, tech := range roster {
		if tech.ID == technicianID {
			return tech, nil
		}
	}
	return domain.Technician{}, apperrors.ErrTechnicianNotFound
}
