package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/repair-desk/internal/adapters/primary/validation"
	"github.com/lorrc/repair-desk/internal/core/domain"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

// PresetHandler manages saved report filters.
type PresetHandler struct {
	presetService ports.PresetService
	errorHandler  *ErrorHandler
	location      *time.Location
	logger        *slog.Logger
}

func NewPresetHandler(
	presetService ports.PresetService,
	errorHandler *ErrorHandler,
	loc *time.Location,
	logger *slog.Logger,
) *PresetHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PresetHandler{
		presetService: presetService,
		errorHandler:  errorHandler,
		location:      loc,
		logger:        logger.With("handler", "preset"),
	}
}

// RegisterRoutes sets up the routing for preset endpoints.
func (h *PresetHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListPresets)
	r.Post("/", h.HandleSavePreset)
	r.Delete("/", h.HandleClearPresets)
	r.Delete("/{name}", h.HandleDeletePreset)
}

// SavePresetRequest defines the expected JSON body for saving a preset
type SavePresetRequest struct {
	Name   string          `json:"name"`
	Filter ReportFilterDTO `json:"filter"`
}

type PresetDTO struct {
	Name      string          `json:"name"`
	Filter    ReportFilterDTO `json:"filter"`
	CreatedAt string          `json:"createdAt"`
}

func toPresetDTO(p domain.FilterPreset) PresetDTO {
	return PresetDTO{
		Name:      p.Name,
		Filter:    toReportFilterDTO(p.Filter),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleListPresets handles GET /reports/presets
func (h *PresetHandler) HandleListPresets(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	presets, err := h.presetService.ListPresets(r.Context(), actor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dtos := make([]PresetDTO, 0, len(presets))
	for _, p := range presets {
		dtos = append(dtos, toPresetDTO(p))
	}
	WriteList(w, dtos)
}

// HandleSavePreset handles POST /reports/presets
func (h *PresetHandler) HandleSavePreset(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[SavePresetRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	v := validation.NewValidator()
	v.Required("name", req.Name)
	filter := req.Filter.toDomain(h.location, v)
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	preset, err := h.presetService.SavePreset(r.Context(), actor, req.Name, filter)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "preset saved", "name", preset.Name)

	WriteCreated(w, toPresetDTO(*preset))
}

// HandleDeletePreset handles DELETE /reports/presets/{name}
func (h *PresetHandler) HandleDeletePreset(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	name := pathParam(r, "name")

	if err := h.presetService.DeletePreset(r.Context(), actor, name); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}

// HandleClearPresets handles DELETE /reports/presets
func (h *PresetHandler) HandleClearPresets(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	if err := h.presetService.ClearPresets(r.Context(), actor); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}
