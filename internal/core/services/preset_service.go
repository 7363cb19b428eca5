package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

const maxPresetNameLength = 100

// PresetService manages saved report filters.
type PresetService struct {
	presetRepo ports.PresetRepository
	authzSvc   ports.AuthorizationService
}

var _ ports.PresetService = (*PresetService)(nil)

func NewPresetService(presetRepo ports.PresetRepository, authzSvc ports.AuthorizationService) ports.PresetService {
	return &PresetService{
		presetRepo: presetRepo,
		authzSvc:   authzSvc,
	}
}

// ListPresets returns saved presets sorted by name.
func (s *PresetService) ListPresets(ctx context.Context, actor domain.Actor) ([]domain.FilterPreset, error) {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermReportsRead); err != nil {
		return nil, err
	}

	presets, err := s.presetRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

// SavePreset stores filter under name, replacing an existing preset with the
// same name.
func (s *PresetService) SavePreset(ctx context.Context, actor domain.Actor, name string, filter domain.ReportFilter) (*domain.FilterPreset, error) {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermReportsRead); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrPresetNameRequired
	}
	if len(name) > maxPresetNameLength {
		return nil, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "preset name is too long")
	}
	filter.Status = filter.Status.Normalize()

	preset := domain.FilterPreset{
		Name:      name,
		Filter:    filter,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.presetRepo.Save(ctx, preset); err != nil {
		return nil, err
	}
	return &preset, nil
}

func (s *PresetService) DeletePreset(ctx context.Context, actor domain.Actor, name string) error {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermReportsRead); err != nil {
		return err
	}
	return s.presetRepo.Delete(ctx, strings.TrimSpace(name))
}

func (s *PresetService) ClearPresets(ctx context.Context, actor domain.Actor) error {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermReportsRead); err != nil {
		return err
	}
	return s.presetRepo.DeleteAll(ctx)
}
