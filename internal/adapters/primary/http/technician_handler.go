package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/repair-desk/internal/core/domain"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

// TechnicianHandler serves the roster and per-technician KPIs.
type TechnicianHandler struct {
	ticketService ports.TicketService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

func NewTechnicianHandler(ticketService ports.TicketService, errorHandler *ErrorHandler, logger *slog.Logger) *TechnicianHandler {
	return &TechnicianHandler{
		ticketService: ticketService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "technician"),
	}
}

// RegisterRoutes sets up the routing for the roster endpoints.
func (h *TechnicianHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTechnicians)
	r.Get("/{technicianID}/kpi", h.HandleGetKPI)
}

type TechnicianDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TechnicianKPIDTO struct {
	TechnicianID string `json:"technicianId"`
	Total        int64  `json:"total"`
	Completed    int64  `json:"completed"`
	AverageHours int64  `json:"averageHours"`
}

// HandleListTechnicians handles GET /technicians
func (h *TechnicianHandler) HandleListTechnicians(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	roster, err := h.ticketService.ListTechnicians(r.Context(), actor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dtos := make([]TechnicianDTO, 0, len(roster))
	for _, t := range roster {
		dtos = append(dtos, TechnicianDTO{ID: t.ID, Name: t.Name})
	}
	WriteList(w, dtos)
}

// HandleGetKPI handles GET /technicians/{technicianID}/kpi
func (h *TechnicianHandler) HandleGetKPI(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	kpi, err := h.ticketService.GetTechnicianKPI(r.Context(), actor, chi.URLParam(r, "technicianID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toTechnicianKPIDTO(kpi))
}

func toTechnicianKPIDTO(kpi *domain.TechnicianKPI) TechnicianKPIDTO {
	return TechnicianKPIDTO{
		TechnicianID: kpi.TechnicianID,
		Total:        kpi.Total,
		Completed:    kpi.Completed,
		AverageHours: kpi.AverageHours,
	}
}
