package models

import "time"

// Notification types.
const (
	NotifyTicketCreated  = "ticket-created"
	NotifyTicketAssigned = "ticket-assigned"
	NotifyStatusChanged  = "status-changed"
	NotifyRatingReceived = "rating-received"
)

type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      string     `json:"link,omitempty"`
	IsRead    bool       `json:"isRead"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}
