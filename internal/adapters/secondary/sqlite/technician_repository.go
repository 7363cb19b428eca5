package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lorrc/repair-desk/internal/core/domain"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

type TechnicianRepository struct {
	db *sql.DB
}

var _ ports.TechnicianRepository = (*TechnicianRepository)(nil)

func NewTechnicianRepository(db *sql.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

func (r *TechnicianRepository) ListTechnicians(ctx context.Context) ([]domain.Technician, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM technicians ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	defer rows.Close()

	roster := make([]domain.Technician, 0)
	for rows.Next() {
		var tech domain.Technician
		if err := rows.Scan(&tech.ID, &tech.Name); err != nil {
			return nil, fmt.Errorf("scan technician: %w", err)
		}
		roster = append(roster, tech)
	}
	return roster, rows.Err()
}

// SaveTechnician adds or renames a roster entry.
func (r *TechnicianRepository) SaveTechnician(ctx context.Context, tech domain.Technician) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO technicians (id, name) VALUES (?, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name`, tech.ID, tech.Name)
	if err != nil {
		return fmt.Errorf("save technician: %w", err)
	}
	return nil
}
