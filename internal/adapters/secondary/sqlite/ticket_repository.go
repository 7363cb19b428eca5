package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

const ticketColumns = `id, title, description, location, priority, status, category,
	requester, phone, department, assigned_to, image_url, created_at, updated_at`

const upsertTicketSQL = `
INSERT INTO tickets (` + ticketColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	description = excluded.description,
	location = excluded.location,
	priority = excluded.priority,
	status = excluded.status,
	category = excluded.category,
	requester = excluded.requester,
	phone = excluded.phone,
	department = excluded.department,
	assigned_to = excluded.assigned_to,
	image_url = excluded.image_url,
	created_at = excluded.created_at,
	updated_at = excluded.updated_at`

// TicketRepository stores tickets in SQLite.
type TicketRepository struct {
	db *sql.DB
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func ticketArgs(t *domain.Ticket) []any {
	var assignedTo sql.NullString
	if t.AssignedTo != nil {
		assignedTo = sql.NullString{String: *t.AssignedTo, Valid: true}
	}
	var updatedAt sql.NullString
	if t.UpdatedAt != nil {
		updatedAt = sql.NullString{String: domain.FormatTimestamp(*t.UpdatedAt), Valid: true}
	}
	return []any{
		t.ID, t.Title, t.Description, t.Location, string(t.Priority), string(t.Status),
		t.Category, t.Requester, t.Phone, t.Department, assignedTo, t.ImageURL,
		domain.FormatTimestamp(t.CreatedAt), updatedAt,
	}
}

func scanTicket(row scanner) (*domain.Ticket, error) {
	var (
		t                   domain.Ticket
		priority, status    string
		createdAt           string
		assignedTo, updated sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Location, &priority, &status, &t.Category,
		&t.Requester, &t.Phone, &t.Department, &assignedTo, &t.ImageURL, &createdAt, &updated,
	)
	if err != nil {
		return nil, err
	}
	t.Priority = domain.TicketPriority(priority)
	t.Status = domain.TicketStatus(status)
	t.CreatedAt = domain.ParseTimestamp(createdAt)
	if assignedTo.Valid {
		id := assignedTo.String
		t.AssignedTo = &id
	}
	if updated.Valid {
		t.UpdatedAt = domain.ParseOptionalTimestamp(updated.String)
	}
	return &t, nil
}

func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	query := `INSERT INTO tickets (` + ticketColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, ticketArgs(ticket)...); err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
	return r.GetByID(ctx, ticket.ID)
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := ticketArgs(ticket)
	// Move id from the front to the WHERE placeholder.
	args = append(args[1:], args[0])

	res, err := r.db.ExecContext(ctx, `UPDATE tickets SET
	title = ?, description = ?, location = ?, priority = ?, status = ?, category = ?,
	requester = ?, phone = ?, department = ?, assigned_to = ?, image_url = ?,
	created_at = ?, updated_at = ?
WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, apperrors.ErrTicketNotFound
	}
	return r.GetByID(ctx, ticket.ID)
}

func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if n == 0 {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

// List filters on exact-match columns and free text in SQL. Creation-time
// bounds, ordering and paging are applied after parsing, because stored
// timestamps are free-form text.
func (r *TicketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]*domain.Ticket, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		conds, args = append(conds, "status = ?"), append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		conds, args = append(conds, "priority = ?"), append(args, string(*filter.Priority))
	}
	if filter.Category != nil {
		conds, args = append(conds, "category = ?"), append(args, *filter.Category)
	}
	if filter.Department != nil {
		conds, args = append(conds, "department = ?"), append(args, *filter.Department)
	}
	if filter.AssignedTo != nil {
		conds, args = append(conds, "assigned_to = ?"), append(args, *filter.AssignedTo)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		conds = append(conds, `(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?
	OR LOWER(requester) LIKE ? OR LOWER(category) LIKE ?)`)
		args = append(args, like, like, like, like, like)
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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
		if filter.CreatedFrom != nil && (t.CreatedAt.IsZero() || t.CreatedAt.Before(*filter.CreatedFrom)) {
			continue
		}
		if filter.CreatedTo != nil && (t.CreatedAt.IsZero() || t.CreatedAt.After(*filter.CreatedTo)) {
			continue
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := tickets[i].CreatedAt, tickets[j].CreatedAt
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		if !a.Equal(b) {
			return a.After(b)
		}
		return tickets[i].ID < tickets[j].ID
	})

	return paginate(tickets, filter.Limit, filter.Offset), nil
}

func paginate(tickets []*domain.Ticket, limit, offset int) []*domain.Ticket {
	if offset > 0 {
		if offset >= len(tickets) {
			return []*domain.Ticket{}
		}
		tickets = tickets[offset:]
	}
	if limit > 0 && limit < len(tickets) {
		tickets = tickets[:limit]
	}
	return tickets
}

// UpsertMany writes all tickets in a single transaction.
func (r *TicketRepository) UpsertMany(ctx context.Context, tickets []*domain.Ticket) (int, error) {
	if len(tickets) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertTicketSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tickets {
		if _, err := stmt.ExecContext(ctx, ticketArgs(t)...); err != nil {
			return 0, fmt.Errorf("upsert ticket %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(tickets), nil
}
