// Package memory holds in-process adapters used when no external store is
// configured.
package memory

import (
	"context"
	"sync"

	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

// PresetRepository keeps report presets in a map. Contents are lost on
// restart.
type PresetRepository struct {
	mu      sync.RWMutex
	presets map[string]domain.FilterPreset
}

var _ ports.PresetRepository = (*PresetRepository)(nil)

func NewPresetRepository() *PresetRepository {
	return &PresetRepository{presets: make(map[string]domain.FilterPreset)}
}

func (r *PresetRepository) List(_ context.Context) ([]domain.FilterPreset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.FilterPreset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	return out, nil
}

func (r *PresetRepository) Save(_ context.Context, preset domain.FilterPreset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets[preset.Name] = preset
	return nil
}

func (r *PresetRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.presets[name]; !ok {
		return apperrors.ErrPresetNotFound
	}
	delete(r.presets, name)
	return nil
}

func (r *PresetRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets = make(map[string]domain.FilterPreset)
	return nil
}
