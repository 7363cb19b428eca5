package services

import (
	"context"

	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

// Permission names checked by the services.
const (
	PermTicketsCreate       = "tickets:create"
	PermTicketsRead         = "tickets:read"
	PermTicketsListAll      = "tickets:list:all"
	PermTicketsListAssigned = "tickets:list:assigned"
	PermTicketsUpdateStatus = "tickets:update:status"
	PermTicketsUpdateAny    = "tickets:update:any"
	PermTicketsAssign       = "tickets:assign"
	PermTicketsDelete       = "tickets:delete"
	PermTicketsImport       = "tickets:import"
	PermTicketsExport       = "tickets:export"
	PermTechniciansRead     = "technicians:read"
	PermKPIReadAll          = "kpi:read:all"
	PermKPIReadOwn          = "kpi:read:own"
	PermStatisticsRead      = "statistics:read"
	PermReportsRead         = "reports:read"
)

var rolePermissions = map[domain.Role][]string{
	domain.RoleAdmin: {
		PermTicketsCreate, PermTicketsRead, PermTicketsListAll,
		PermTicketsUpdateStatus, PermTicketsUpdateAny, PermTicketsAssign,
		PermTicketsDelete, PermTicketsImport, PermTicketsExport,
		PermTechniciansRead, PermKPIReadAll, PermStatisticsRead, PermReportsRead,
	},
	domain.RoleTechnician: {
		PermTicketsCreate, PermTicketsRead, PermTicketsListAssigned,
		PermTicketsUpdateStatus, PermTechniciansRead, PermKPIReadOwn,
		PermStatisticsRead,
	},
	domain.RoleUser: {
		PermTicketsCreate, PermTicketsRead,
	},
}

// AuthorizationService implements role-based access control from a static
// role to permission table.
type AuthorizationService struct {
	permissions map[domain.Role][]string
}

// Ensure implementation matches the interface.
var _ ports.AuthorizationService = (*AuthorizationService)(nil)

// NewAuthorizationService creates a new service for authorization logic.
func NewAuthorizationService() ports.AuthorizationService {
	return &AuthorizationService{
		permissions: rolePermissions,
	}
}

// Can checks if a role has a specific permission.
func (s *AuthorizationService) Can(_ context.Context, role domain.Role, permission string) (bool, error) {
	for _, p := range s.permissions[role] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// GetPermissions returns all permissions for a role. Unknown roles have none.
func (s *AuthorizationService) GetPermissions(_ context.Context, role domain.Role) ([]string, error) {
	perms := s.permissions[role]
	if perms == nil {
		return []string{}, nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out, nil
}

// requirePermission returns ErrForbidden unless role holds permission.
func requirePermission(ctx context.Context, authz ports.AuthorizationService, role domain.Role, permission string) error {
	allowed, err := authz.Can(ctx, role, permission)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}
