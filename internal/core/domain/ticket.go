package domain

import (
	"strings"
	"time"

	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
)

// TicketPriority represents the urgency of a repair request.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

// IsValid reports whether p is a known priority.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Ticket is a single repair request.
//
// A zero CreatedAt means the stored creation time was missing or could not be
// parsed. Such tickets stay readable but are left out of time-based reports.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Location    string
	Priority    TicketPriority
	Status      TicketStatus
	Category    string
	Requester   string
	Phone       string
	Department  string
	AssignedTo  *string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// TicketParams holds the caller-supplied fields of a new ticket.
type TicketParams struct {
	Title       string
	Description string
	Location    string
	Priority    TicketPriority
	Category    string
	Requester   string
	Phone       string
	Department  string
	ImageURL    string
}

// NewTicket validates params and returns a pending ticket.
func NewTicket(params TicketParams) (*Ticket, error) {
	errs := apperrors.NewValidationErrors()

	title := strings.TrimSpace(params.Title)
	switch {
	case title == "":
		errs.Add("title", apperrors.ErrTitleRequired.Error())
	case len(title) > MaxTitleLength:
		errs.Add("title", apperrors.ErrTitleTooLong.Error())
	}
	if len(params.Description) > MaxDescriptionLength {
		errs.Add("description", apperrors.ErrDescriptionTooLong.Error())
	}
	if strings.TrimSpace(params.Requester) == "" {
		errs.Add("requester", apperrors.ErrRequesterRequired.Error())
	}

	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		errs.Add("priority", apperrors.ErrInvalidPriority.Error())
	}

	if errs.HasErrors() {
		return nil, errs
	}

	return &Ticket{
		Title:       title,
		Description: params.Description,
		Location:    strings.TrimSpace(params.Location),
		Priority:    priority,
		Status:      StatusPending,
		Category:    strings.TrimSpace(params.Category),
		Requester:   strings.TrimSpace(params.Requester),
		Phone:       strings.TrimSpace(params.Phone),
		Department:  strings.TrimSpace(params.Department),
		ImageURL:    params.ImageURL,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

var validTransitions = map[TicketStatus][]TicketStatus{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusPending, StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransitionTo reports whether the ticket may move to newStatus.
func (t *Ticket) CanTransitionTo(newStatus TicketStatus) bool {
	for _, s := range validTransitions[t.Status.Normalize()] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// UpdateStatus changes the ticket's status and stamps UpdatedAt. The stamp
// taken when entering StatusCompleted is what resolution time is measured to.
func (t *Ticket) UpdateStatus(newStatus TicketStatus) error {
	status, ok := ParseTicketStatus(string(newStatus))
	if !ok {
		return apperrors.ErrInvalidStatus
	}
	if !t.CanTransitionTo(status) {
		return apperrors.ErrInvalidStatusTransition
	}

	t.Status = status
	now := time.Now().UTC()
	t.UpdatedAt = &now
	return nil
}

// Assign sets or changes the technician responsible for the ticket.
func (t *Ticket) Assign(technicianID string) error {
	if t.Status.IsTerminal() {
		return apperrors.ErrCannotAssignTerminal
	}
	t.AssignedTo = &technicianID
	return nil
}

// IsAssignedTo reports whether technicianID is the current assignee.
func (t *Ticket) IsAssignedTo(technicianID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == technicianID
}

// ResolutionHours returns the hours between creation and the completing
// update. ok is false when the ticket is not completed or either timestamp
// is missing or out of order.
func (t *Ticket) ResolutionHours() (hours float64, ok bool) {
	if t.Status.Normalize() != StatusCompleted || t.UpdatedAt == nil || t.CreatedAt.IsZero() {
		return 0, false
	}
	elapsed := t.UpdatedAt.Sub(t.CreatedAt)
	if elapsed < 0 {
		return 0, false
	}
	return elapsed.Hours(), true
}
