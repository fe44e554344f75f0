package repository

type UserFilter struct {
	Role   string
	Active *bool
}

type DeviceFilter struct {
	Type     string
	Status   string
	Location string // substring match
}

type TicketFilter struct {
	ClientID     string
	TechnicianID string
	Status       string
	Priority     string
	ServiceType  string
}

type AuditFilter struct {
	UserID     string
	EntityType string
	EntityID   string
	Action     string
}
