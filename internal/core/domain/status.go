package domain

import "strings"

// TicketStatus represents the lifecycle state of a repair ticket.
type TicketStatus string

const (
	StatusPending    TicketStatus = "pending"
	StatusInProgress TicketStatus = "in-progress"
	StatusCompleted  TicketStatus = "completed"
	StatusCancelled  TicketStatus = "cancelled"

	// StatusUnknown is what ParseTicketStatus yields for unrecognized input.
	StatusUnknown TicketStatus = ""
)

// statusAliases maps every accepted spelling, after lowercasing and
// stripping separators, to its canonical status.
var statusAliases = map[string]TicketStatus{
	"pending":    StatusPending,
	"inprogress": StatusInProgress,
	"completed":  StatusCompleted,
	"done":       StatusCompleted,
	"cancelled":  StatusCancelled,
	"canceled":   StatusCancelled,
}

// ParseTicketStatus normalizes a raw status string from stored or imported
// data. Hyphens, underscores, spaces and case are ignored, so "in-progress",
// "inprogress" and "IN_PROGRESS" are the same status. The boolean reports
// whether the value was recognized.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	status, ok := statusAliases[key]
	if !ok {
		return StatusUnknown, false
	}
	return status, true
}

// Normalize returns the canonical form of s, or StatusUnknown.
func (s TicketStatus) Normalize() TicketStatus {
	status, _ := ParseTicketStatus(string(s))
	return status
}

// IsValid reports whether s is already one of the canonical statuses.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s TicketStatus) IsTerminal() bool {
	switch s.Normalize() {
	case StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s TicketStatus) String() string {
	return string(s)
}

// AllStatuses lists the canonical statuses in lifecycle order.
func AllStatuses() []TicketStatus {
	return []TicketStatus{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}
}
