package repository

import (
	"context"

	"github.com/almnar0/almeshkat25/internal/models"
)

type UserRepository interface {
	// Create fails with apperr.DuplicateEmail when the email is already
	// registered (case-insensitive).
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, f UserFilter) ([]models.User, error)
	// Mutate runs fn on the stored user under the collection lock and
	// persists the result. An error from fn aborts without writing.
	Mutate(ctx context.Context, id string, fn func(*models.User) error) (*models.User, error)
}

type DeviceRepository interface {
	Create(ctx context.Context, d *models.Device) error
	GetByID(ctx context.Context, id string) (*models.Device, error)
	List(ctx context.Context, f DeviceFilter) ([]models.Device, error)
	// Mutate runs fn on the stored device under the collection lock and
	// persists the result.
	Mutate(ctx context.Context, id string, fn func(*models.Device) error) (*models.Device, error)
	Delete(ctx context.Context, id string) error
	// AddRelatedTicket appends an informational back-reference.
	AddRelatedTicket(ctx context.Context, deviceID, ticketID string) error
}

type TicketRepository interface {
	Create(ctx context.Context, t *models.Ticket) error
	GetByID(ctx context.Context, id string) (*models.Ticket, error)
	// List returns tickets newest-created-first.
	List(ctx context.Context, f TicketFilter) ([]models.Ticket, error)
	// Mutate runs fn on the stored ticket with the collection lock held
	// across the whole read-modify-write span, so concurrent mutations
	// never build on a stale copy. An error from fn aborts without
	// writing; a missing id yields apperr.NotFound.
	Mutate(ctx context.Context, id string, fn func(*models.Ticket) error) (*models.Ticket, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	// MarkRead fails with apperr.NotFound when the notification does not
	// exist or belongs to another user.
	MarkRead(ctx context.Context, id, userID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}

type AuditRepository interface {
	// Append writes an entry, evicting the oldest beyond the retention cap.
	Append(ctx context.Context, e *models.AuditEntry) error
	// List returns entries newest-first, at most limit.
	List(ctx context.Context, f AuditFilter, limit int) ([]models.AuditEntry, error)
}
