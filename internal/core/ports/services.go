package ports

import (
	"context"

	"github.com/lorrc/repair-desk/internal/core/domain"
)

// AuthorizationService defines the port for checking role permissions.
type AuthorizationService interface {
	Can(ctx context.Context, role domain.Role, permission string) (bool, error)
	GetPermissions(ctx context.Context, role domain.Role) ([]string, error)
}

// CreateTicketParams defines the required input for creating a new ticket.
type CreateTicketParams struct {
	Actor  domain.Actor
	Ticket domain.TicketParams
}

// UpdateStatusParams defines the input for changing a ticket's status.
type UpdateStatusParams struct {
	TicketID string
	Status   domain.TicketStatus
	Actor    domain.Actor
}

// AssignTicketParams defines the input for assigning a ticket.
type AssignTicketParams struct {
	TicketID     string
	TechnicianID string
	Actor        domain.Actor
}

// ListTicketsParams defines the input for listing tickets.
type ListTicketsParams struct {
	Actor  domain.Actor
	Filter domain.TicketFilter
}

// TicketService defines the core business operations for managing tickets.
type TicketService interface {
	CreateTicket(ctx context.Context, params CreateTicketParams) (*domain.Ticket, error)
	GetTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error)
	ListTickets(ctx context.Context, params ListTicketsParams) ([]*domain.Ticket, error)
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (*domain.Ticket, error)
	AssignTicket(ctx context.Context, params AssignTicketParams) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, actor domain.Actor, ticketID string) error
	GetStatistics(ctx context.Context, actor domain.Actor) (*domain.TicketStatistics, error)
	ListTechnicians(ctx context.Context, actor domain.Actor) ([]domain.Technician, error)
	GetTechnicianKPI(ctx context.Context, actor domain.Actor, technicianID string) (*domain.TechnicianKPI, error)
	ImportTickets(ctx context.Context, actor domain.Actor, tickets []*domain.Ticket) (int, error)
	ExportTickets(ctx context.Context, actor domain.Actor, filter domain.TicketFilter) ([]*domain.Ticket, error)
}

// ReportService defines the port for SLA/KPI reporting.
type ReportService interface {
	GetReport(ctx context.Context, actor domain.Actor, filter domain.ReportFilter) (*domain.SLAReport, error)
}

// PresetService defines the port for managing saved report filters.
type PresetService interface {
	ListPresets(ctx context.Context, actor domain.Actor) ([]domain.FilterPreset, error)
	SavePreset(ctx context.Context, actor domain.Actor, name string, filter domain.ReportFilter) (*domain.FilterPreset, error)
	DeletePreset(ctx context.Context, actor domain.Actor, name string) error
	ClearPresets(ctx context.Context, actor domain.Actor) error
}
