package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

const ticketColumns = `id, title, description, location, priority, status, category,
	requester, phone, department, assigned_to, image_url, created_at, updated_at`

const upsertTicketSQL = `
INSERT INTO tickets (` + ticketColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	location = EXCLUDED.location,
	priority = EXCLUDED.priority,
	status = EXCLUDED.status,
	category = EXCLUDED.category,
	requester = EXCLUDED.requester,
	phone = EXCLUDED.phone,
	department = EXCLUDED.department,
	assigned_to = EXCLUDED.assigned_to,
	image_url = EXCLUDED.image_url,
	created_at = EXCLUDED.created_at,
	updated_at = EXCLUDED.updated_at`

// TicketRepository is the secondary adapter for ticket persistence.
type TicketRepository struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

// Ensure TicketRepository implements the ports.TicketRepository interface.
var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool, tm *TransactionManager) *TicketRepository {
	if tm == nil {
		tm = NewTransactionManager(pool)
	}
	return &TicketRepository{pool: pool, tm: tm}
}

// ticketArgs returns the positional arguments matching ticketColumns.
func ticketArgs(t *domain.Ticket) []any {
	return []any{
		t.ID,
		t.Title,
		toText(t.Description),
		toText(t.Location),
		string(t.Priority),
		string(t.Status),
		toText(t.Category),
		t.Requester,
		toText(t.Phone),
		toText(t.Department),
		toNullText(t.AssignedTo),
		toText(t.ImageURL),
		toTimestamptz(t.CreatedAt),
		toNullTimestamptz(t.UpdatedAt),
	}
}

// scanTicket reads one row selected with ticketColumns.
func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t                                      domain.Ticket
		priority, status                       string
		description, location, category, phone pgtype.Text
		department, assignedTo, imageURL       pgtype.Text
		createdAt, updatedAt                   pgtype.Timestamptz
	)
	err := row.Scan(
		&t.ID, &t.Title, &description, &location, &priority, &status, &category,
		&t.Requester, &phone, &department, &assignedTo, &imageURL, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Description = fromText(description)
	t.Location = fromText(location)
	t.Priority = domain.TicketPriority(priority)
	t.Status = domain.TicketStatus(status)
	t.Category = fromText(category)
	t.Phone = fromText(phone)
	t.Department = fromText(department)
	t.AssignedTo = fromNullText(assignedTo)
	t.ImageURL = fromText(imageURL)
	t.CreatedAt = fromTimestamptz(createdAt)
	t.UpdatedAt = fromNullTimestamptz(updatedAt)
	return &t, nil
}

// Create persists a new ticket entity.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	query := `INSERT INTO tickets (` + ticketColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + ticketColumns

	created, err := scanTicket(GetDBTX(ctx, r.pool).QueryRow(ctx, query, ticketArgs(ticket)...))
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
	return created, nil
}

// GetByID retrieves a single ticket by its ID.
func (r *TicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(GetDBTX(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

// Update persists changes to an existing ticket entity.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	query := `UPDATE tickets SET
	title = $2, description = $3, location = $4, priority = $5, status = $6,
	category = $7, requester = $8, phone = $9, department = $10,
	assigned_to = $11, image_url = $12, created_at = $13, updated_at = $14
WHERE id = $1
RETURNING ` + ticketColumns

	updated, err := scanTicket(GetDBTX(ctx, r.pool).QueryRow(ctx, query, ticketArgs(ticket)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return updated, nil
}

// Delete removes a ticket by ID.
func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

// List retrieves tickets matching filter, newest first. Tickets without a
// creation time sort last.
func (r *TicketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]*domain.Ticket, error) {
	where, args := buildTicketWhere(filter)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + ticketColumns + ` FROM tickets`)
	if where != "" {
		sb.WriteString(" WHERE " + where)
	}
	sb.WriteString(" ORDER BY created_at DESC NULLS LAST, id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func buildTicketWhere(filter domain.TicketFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.Priority != nil {
		add("priority = $%d", string(*filter.Priority))
	}
	if filter.Category != nil {
		add("category = $%d", *filter.Category)
	}
	if filter.Department != nil {
		add("department = $%d", *filter.Department)
	}
	if filter.AssignedTo != nil {
		add("assigned_to = $%d", *filter.AssignedTo)
	}
	if filter.CreatedFrom != nil {
		add("created_at >= $%d", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		add("created_at <= $%d", filter.CreatedTo.UTC())
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%[1]d OR description ILIKE $%[1]d OR location ILIKE $%[1]d OR requester ILIKE $%[1]d OR category ILIKE $%[1]d)", n))
	}

	return strings.Join(conds, " AND "), args
}

// UpsertMany inserts or replaces tickets by ID inside one transaction.
func (r *TicketRepository) UpsertMany(ctx context.Context, tickets []*domain.Ticket) (int, error) {
	if len(tickets) == 0 {
		return 0, nil
	}

	var written int
	err := r.tm.WithTransaction(ctx, func(ctx context.Context) error {
		batch := &pgx.Batch{}
		for _, t := range tickets {
			batch.Queue(upsertTicketSQL, ticketArgs(t)...)
		}

		results := GetDBTX(ctx, r.pool).SendBatch(ctx, batch)
		defer results.Close()

		for range tickets {
			tag, err := results.Exec()
			if err != nil {
				return fmt.Errorf("upsert ticket: %w", err)
			}
			written += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
