package models

import "time"

// AuditRetention is how many entries the audit collection keeps; oldest
// entries are silently dropped on overflow.
const AuditRetention = 1000

type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// AuditEntry is immutable once written.
type AuditEntry struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Actor      Actor             `json:"actor"`
	Action     string            `json:"action"`
	EntityType string            `json:"entityType"`
	EntityID   string            `json:"entityId"`
	Changes    map[string]string `json:"changes,omitempty"`
}
