package models

import "time"

// Ticket statuses.
const (
	StatusNew        = "new"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusOnHold     = "on_hold"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
	StatusCancelled  = "cancelled"
)

// Priorities.
const (
	PriorityNormal   = "normal"
	PriorityUrgent   = "urgent"
	PriorityCritical = "critical"
)

// MaxTicketImages caps the encoded attachment list on a ticket.
const MaxTicketImages = 5

type Ticket struct {
	ID             string    `json:"id"`
	TicketNumber   string    `json:"ticketNumber"`
	ClientID       string    `json:"clientId"`
	ClientName     string    `json:"clientName,omitempty"`
	TechnicianID   string    `json:"technicianId,omitempty"`
	TechnicianName string    `json:"technicianName,omitempty"`
	DeviceID       string    `json:"deviceId,omitempty"`
	ServiceType    string    `json:"serviceType"`
	IssueType      string    `json:"issueType,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	Priority       string    `json:"priority"`
	Status         string    `json:"status"`
	Images         []string  `json:"images,omitempty"`
	TechnicianNotes string   `json:"technicianNotes,omitempty"`
	InternalNotes  string    `json:"internalNotes,omitempty"`
	Rating         int       `json:"rating,omitempty"` // 1..5, 0 = unrated
	RatingComment  string    `json:"ratingComment,omitempty"`
	RatedAt        *time.Time `json:"ratedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	AssignedAt     *time.Time `json:"assignedAt,omitempty"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`

	// History is the ticket's own append-only narrative, distinct from the
	// system-wide audit log.
	History []HistoryEntry `json:"history"`
}

type HistoryEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	Note      string    `json:"note,omitempty"`
}

// Terminal reports whether no further transitions are allowed from s.
func Terminal(s string) bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

func ValidPriority(p string) bool {
	return p == PriorityNormal || p == PriorityUrgent || p == PriorityCritical
}

func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusAssigned, StatusInProgress, StatusOnHold,
		StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Sanitized strips fields that are not visible to non-privileged roles.
func (t Ticket) Sanitized() Ticket {
	t.InternalNotes = ""
	return t
}
