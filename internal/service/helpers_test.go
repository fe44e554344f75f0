package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/repository/jsonstore"
	"github.com/almnar0/almeshkat25/internal/service"
	"github.com/almnar0/almeshkat25/internal/store"
)

type env struct {
	st      *store.MemoryStore
	users   repository.UserRepository
	tickets repository.TicketRepository
	devices repository.DeviceRepository
	notifs  repository.NotificationRepository
	audits  repository.AuditRepository

	audit     *service.AuditService
	auth      *service.AuthService
	ticketSvc *service.TicketService
	deviceSvc *service.DeviceService
	stats     *service.StatsService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := store.NewMemory()
	log := zerolog.Nop()

	e := &env{
		st:      st,
		users:   jsonstore.NewUserRepo(st),
		tickets: jsonstore.NewTicketRepo(st),
		devices: jsonstore.NewDeviceRepo(st),
		notifs:  jsonstore.NewNotificationRepo(st),
		audits:  jsonstore.NewAuditRepo(st),
	}
	e.audit = service.NewAuditService(e.audits, log)
	e.auth = service.NewAuthService(e.users, e.audit, "test-secret", time.Hour)
	e.ticketSvc = service.NewTicketService(e.tickets, e.users, e.devices, e.notifs, e.audit, log)
	e.deviceSvc = service.NewDeviceService(e.devices, e.users, e.audit)
	e.stats = service.NewStatsService(e.users, e.devices, e.tickets)
	return e
}

// register creates a user through the normal path (admins via seeding).
func (e *env) register(t *testing.T, name, email, role string) (*models.User, service.Identity) {
	t.Helper()
	ctx := context.Background()
	if role == models.RoleAdmin {
		require.NoError(t, service.EnsureAdmin(ctx, e.users, name, email, "admin123"))
		u, err := e.users.GetByEmail(ctx, email)
		require.NoError(t, err)
		require.NotNil(t, u)
		return u, service.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
	}
	u, _, err := e.auth.Register(ctx, service.RegisterInput{
		Name: name, Email: email, Password: "secret1", Role: role,
	})
	require.NoError(t, err)
	return u, service.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (e *env) createTicket(t *testing.T, ident service.Identity, priority string) *models.Ticket {
	t.Helper()
	tk, err := e.ticketSvc.Create(context.Background(), ident, service.CreateTicketInput{
		ServiceType: "repair",
		Title:       "Projector will not power on",
		Description: "The lab projector stopped working this morning.",
		Location:    "Lab 2",
		Priority:    priority,
	})
	require.NoError(t, err)
	return tk
}
