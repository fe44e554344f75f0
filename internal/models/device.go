package models

import "time"

// Device statuses.
const (
	DeviceOperational      = "operational"
	DeviceFaulty           = "faulty"
	DeviceUnderMaintenance = "under-maintenance"
	DeviceOutOfService     = "out-of-service"
)

type Device struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Model        string     `json:"model,omitempty"`
	SerialNumber string     `json:"serialNumber,omitempty"`
	Location     string     `json:"location,omitempty"`
	Status       string     `json:"status"`
	LastService  *time.Time `json:"lastServiceDate,omitempty"`
	NextService  *time.Time `json:"nextServiceDate,omitempty"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
	WarrantyEnd  *time.Time `json:"warrantyExpiry,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	// AssignedTo is a free-text location/department, not a user reference.
	AssignedTo string `json:"assignedTo,omitempty"`
	// RelatedTickets are informational back-references only.
	RelatedTickets []string  `json:"relatedTickets,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func ValidDeviceStatus(s string) bool {
	switch s {
	case DeviceOperational, DeviceFaulty, DeviceUnderMaintenance, DeviceOutOfService:
		return true
	}
	return false
}
