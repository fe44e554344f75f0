package models

import "time"

const (
	RoleClient     = "client"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Role         string    `json:"role"` // client | technician | admin
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Derived technician fields, recomputed from the ticket collection.
	AverageRating float64 `json:"averageRating,omitempty"`
	CompletedJobs int     `json:"completedJobs,omitempty"`
}

// Sanitized returns a copy safe to put on the wire.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

func ValidRole(r string) bool {
	return r == RoleClient || r == RoleTechnician || r == RoleAdmin
}
