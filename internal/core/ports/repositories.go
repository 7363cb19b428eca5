package ports

import (
	"context"

	"github.com/lorrc/repair-desk/internal/core/domain"
)

// TicketRepository defines the port for ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	// List returns tickets matching filter, newest first. A zero Limit
	// returns every match.
	List(ctx context.Context, filter domain.TicketFilter) ([]*domain.Ticket, error)
	// UpsertMany inserts or replaces tickets by ID and returns how many
	// rows were written.
	UpsertMany(ctx context.Context, tickets []*domain.Ticket) (int, error)
}

// TechnicianRepository defines the port for the technician roster.
type TechnicianRepository interface {
	ListTechnicians(ctx context.Context) ([]domain.Technician, error)
}

// PresetRepository defines the port for saved report filters.
type PresetRepository interface {
	List(ctx context.Context) ([]domain.FilterPreset, error)
	// Save stores preset, replacing any preset with the same name.
	Save(ctx context.Context, preset domain.FilterPreset) error
	Delete(ctx context.Context, name string) error
	DeleteAll(ctx context.Context) error
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
