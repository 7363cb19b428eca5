package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/repair-desk/internal/adapters/export"
	"github.com/lorrc/repair-desk/internal/adapters/primary/validation"
	"github.com/lorrc/repair-desk/internal/core/domain"
	"github.com/lorrc/repair-desk/internal/core/ports"
)

const (
	maxTicketsPerPage = 100
	maxImportBytes    = 10 << 20
)

// TicketHandler handles HTTP requests for tickets
type TicketHandler struct {
	ticketService ports.TicketService
	errorHandler  *ErrorHandler
	location      *time.Location
	logger        *slog.Logger
}

// NewTicketHandler creates a new ticket handler. Date query parameters are
// read in loc.
func NewTicketHandler(
	ticketService ports.TicketService,
	errorHandler *ErrorHandler,
	loc *time.Location,
	logger *slog.Logger,
) *TicketHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TicketHandler{
		ticketService: ticketService,
		errorHandler:  errorHandler,
		location:      loc,
		logger:        logger.With("handler", "ticket"),
	}
}

// Router sets up a new chi Router for all ticket-related routes.
func (h *TicketHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all ticket endpoints.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTickets)
	r.Post("/", h.HandleCreateTicket)
	r.Get("/statistics", h.HandleGetStatistics)

	r.Route("/{ticketID}", func(r chi.Router) {
		r.Get("/", h.HandleGetTicket)
		r.Delete("/", h.HandleDeleteTicket)
		r.Patch("/status", h.HandleUpdateTicketStatus)
		r.Patch("/assign", h.HandleAssignTicket)
	})
}

// RegisterBulkRoutes sets up the CSV export and import endpoints. They are
// registered separately so the caller can put a stricter limiter in front.
func (h *TicketHandler) RegisterBulkRoutes(r chi.Router) {
	r.Get("/export.csv", h.HandleExportTickets)
	r.Post("/import", h.HandleImportTickets)
}

// --- Request/Response DTOs ---

// CreateTicketRequest defines the expected JSON body for creating a ticket
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Requester   string `json:"requester"`
	Phone       string `json:"phone"`
	Department  string `json:"department"`
	ImageURL    string `json:"imageUrl"`
}

// Validate validates the create ticket request
func (r *CreateTicketRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("title", r.Title).
		MaxLength("title", r.Title, domain.MaxTitleLength)

	v.MaxLength("description", r.Description, domain.MaxDescriptionLength)

	v.Required("requester", r.Requester).
		Phone("phone", r.Phone)

	v.OneOf("priority", strings.ToLower(r.Priority), []string{"low", "medium", "high"})

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

func (r *CreateTicketRequest) params() domain.TicketParams {
	return domain.TicketParams{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Priority:    domain.TicketPriority(strings.ToLower(r.Priority)),
		Category:    r.Category,
		Requester:   r.Requester,
		Phone:       r.Phone,
		Department:  r.Department,
		ImageURL:    r.ImageURL,
	}
}

// UpdateStatusRequest defines the expected JSON body for status updates
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate validates the update status request
func (r *UpdateStatusRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("status", r.Status)
	if strings.TrimSpace(r.Status) != "" {
		_, ok := domain.ParseTicketStatus(r.Status)
		v.Custom("status", ok, "Must be one of: pending, in-progress, completed, cancelled")
	}

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// AssignTicketRequest defines the expected JSON body for assigning a ticket
type AssignTicketRequest struct {
	TechnicianID string `json:"technicianId"`
}

// Validate validates the assign ticket request
func (r *AssignTicketRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("technicianId", r.TechnicianID)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// TicketDTO defines the JSON response for tickets.
type TicketDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	Category    string  `json:"category"`
	Requester   string  `json:"requester"`
	Phone       string  `json:"phone"`
	Department  string  `json:"department"`
	AssignedTo  *string `json:"assignedTo"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	CreatedAt   *string `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
}

func toTicketDTO(ticket *domain.Ticket) TicketDTO {
	var createdAt *string
	if !ticket.CreatedAt.IsZero() {
		value := ticket.CreatedAt.Format(time.RFC3339)
		createdAt = &value
	}

	var updatedAt *string
	if ticket.UpdatedAt != nil {
		value := ticket.UpdatedAt.Format(time.RFC3339)
		updatedAt = &value
	}

	return TicketDTO{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Location:    ticket.Location,
		Priority:    string(ticket.Priority),
		Status:      string(ticket.Status),
		Category:    ticket.Category,
		Requester:   ticket.Requester,
		Phone:       ticket.Phone,
		Department:  ticket.Department,
		AssignedTo:  ticket.AssignedTo,
		ImageURL:    ticket.ImageURL,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

func toTicketDTOs(tickets []*domain.Ticket) []TicketDTO {
	response := make([]TicketDTO, 0, len(tickets))
	for _, ticket := range tickets {
		response = append(response, toTicketDTO(ticket))
	}
	return response
}

// StatisticsDTO is the dashboard summary.
type StatisticsDTO struct {
	Total                int64            `json:"total"`
	ByStatus             map[string]int64 `json:"byStatus"`
	ByPriority           map[string]int64 `json:"byPriority"`
	ByCategory           map[string]int64 `json:"byCategory"`
	AverageResponseHours int64            `json:"averageResponseHours"`
}

func toStatisticsDTO(stats *domain.TicketStatistics) StatisticsDTO {
	dto := StatisticsDTO{
		Total:                stats.Total,
		ByStatus:             make(map[string]int64, len(stats.ByStatus)),
		ByPriority:           make(map[string]int64, len(stats.ByPriority)),
		ByCategory:           make(map[string]int64, len(stats.ByCategory)),
		AverageResponseHours: stats.AverageResponseHours,
	}
	for k, v := range stats.ByStatus {
		dto.ByStatus[string(k)] = v
	}
	for k, v := range stats.ByPriority {
		dto.ByPriority[string(k)] = v
	}
	for k, v := range stats.ByCategory {
		dto.ByCategory[k] = v
	}
	return dto
}

// --- Handlers ---

// HandleListTickets handles GET /tickets
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxTicketsPerPage)

	filter, err := h.parseTicketFilter(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	// One extra row tells WritePaginatedSimple whether another page exists.
	filter.Limit = pagination.Limit + 1
	filter.Offset = pagination.Offset

	tickets, err := h.ticketService.ListTickets(r.Context(), ports.ListTicketsParams{
		Actor:  actor,
		Filter: filter,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginatedSimple(w, toTicketDTOs(tickets), pagination.Limit, pagination.Offset)
}

// HandleCreateTicket handles POST /tickets
func (h *TicketHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateTicketRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.CreateTicket(r.Context(), ports.CreateTicketParams{
		Actor:  actor,
		Ticket: req.params(),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket created", "ticket_id", ticket.ID)

	WriteCreated(w, toTicketDTO(ticket))
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	ticket, err := h.ticketService.GetTicket(r.Context(), actor, chi.URLParam(r, "ticketID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleUpdateTicketStatus handles PATCH /tickets/{ticketID}/status
func (h *TicketHandler) HandleUpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[UpdateStatusRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	status, _ := domain.ParseTicketStatus(req.Status)
	ticket, err := h.ticketService.UpdateStatus(r.Context(), ports.UpdateStatusParams{
		TicketID: chi.URLParam(r, "ticketID"),
		Status:   status,
		Actor:    actor,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket status updated",
		"ticket_id", ticket.ID,
		"status", ticket.Status,
	)

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleAssignTicket handles PATCH /tickets/{ticketID}/assign
func (h *TicketHandler) HandleAssignTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[AssignTicketRequest](w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.AssignTicket(r.Context(), ports.AssignTicketParams{
		TicketID:     chi.URLParam(r, "ticketID"),
		TechnicianID: strings.TrimSpace(req.TechnicianID),
		Actor:        actor,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket assigned",
		"ticket_id", ticket.ID,
		"technician_id", req.TechnicianID,
	)

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleDeleteTicket handles DELETE /tickets/{ticketID}
func (h *TicketHandler) HandleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	ticketID := chi.URLParam(r, "ticketID")
	if err := h.ticketService.DeleteTicket(r.Context(), actor, ticketID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket deleted", "ticket_id", ticketID)

	WriteNoContent(w)
}

// HandleGetStatistics handles GET /tickets/statistics
func (h *TicketHandler) HandleGetStatistics(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	stats, err := h.ticketService.GetStatistics(r.Context(), actor)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toStatisticsDTO(stats))
}

// HandleExportTickets handles GET /tickets/export.csv
func (h *TicketHandler) HandleExportTickets(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	filter, err := h.parseTicketFilter(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	tickets, err := h.ticketService.ExportTickets(r.Context(), actor, filter)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	filename := fmt.Sprintf("tickets-%s.csv", time.Now().In(h.location).Format("20060102"))
	writeAttachmentHeaders(w, "text/csv; charset=utf-8", filename)
	if err := export.WriteTicketsCSV(w, tickets); err != nil {
		// Headers are already sent; the client sees a truncated file.
		h.logger.ErrorContext(r.Context(), "ticket export failed", "error", err)
	}
}

// HandleImportTickets handles POST /tickets/import with a CSV body
func (h *TicketHandler) HandleImportTickets(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	tickets, err := export.ReadTicketsCSV(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	imported, err := h.ticketService.ImportTickets(r.Context(), actor, tickets)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "tickets imported",
		"rows", len(tickets),
		"imported", imported,
	)

	WriteJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// --- Helper methods ---

// parseTicketFilter reads the list filters shared by listing and export.
func (h *TicketHandler) parseTicketFilter(r *http.Request) (domain.TicketFilter, error) {
	v := validation.NewValidator()
	filter := domain.TicketFilter{
		Category:   validation.ParseStringQueryParam(r, "category"),
		Department: validation.ParseStringQueryParam(r, "department"),
		AssignedTo: validation.ParseStringQueryParam(r, "assignedTo"),
		Query:      strings.TrimSpace(r.URL.Query().Get("q")),
	}

	if raw := validation.ParseStringQueryParam(r, "status"); raw != nil {
		status, ok := domain.ParseTicketStatus(*raw)
		v.Custom("status", ok, "Must be one of: pending, in-progress, completed, cancelled")
		if ok {
			filter.Status = &status
		}
	}

	if raw := validation.ParseStringQueryParam(r, "priority"); raw != nil {
		priority := domain.TicketPriority(strings.ToLower(*raw))
		v.Custom("priority", priority.IsValid(), "Must be one of: low, medium, high")
		if priority.IsValid() {
			filter.Priority = &priority
		}
	}

	filter.CreatedFrom = validation.ParseTimeQueryParam(r, "createdFrom", h.location, v)
	filter.CreatedTo = validation.ParseEndTimeQueryParam(r, "createdTo", h.location, v)
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedFrom.After(*filter.CreatedTo) {
		v.Custom("createdFrom", false, "Must be before createdTo")
	}

	if v.HasErrors() {
		return domain.TicketFilter{}, v.Errors()
	}
	return filter, nil
}
