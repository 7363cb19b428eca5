package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/repair-desk/internal/core/domain"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

// TechnicianRepository reads the technician roster.
type TechnicianRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TechnicianRepository = (*TechnicianRepository)(nil)

func NewTechnicianRepository(pool *pgxpool.Pool) *TechnicianRepository {
	return &TechnicianRepository{pool: pool}
}

// ListTechnicians returns the roster ordered by name.
func (r *TechnicianRepository) ListTechnicians(ctx context.Context) ([]domain.Technician, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx, `SELECT id, name FROM technicians ORDER BY name, id`)
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
	_, err := GetDBTX(ctx, r.pool).Exec(ctx, `
INSERT INTO technicians (id, name) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, tech.ID, tech.Name)
	if err != nil {
		return fmt.Errorf("save technician: %w", err)
	}
	return nil
}
