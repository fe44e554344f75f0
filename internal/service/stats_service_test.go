package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/service"
)

func TestDashboardPerRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, admin := e.register(t, "Admin", "admin@example.com", models.RoleAdmin)
	tech, techIdent := e.register(t, "Tech", "tech@example.com", models.RoleTechnician)
	_, clientIdent := e.register(t, "Client", "client@example.com", models.RoleClient)

	t1 := e.createTicket(t, clientIdent, models.PriorityUrgent)
	e.createTicket(t, clientIdent, models.PriorityNormal)

	_, err := e.ticketSvc.Assign(ctx, admin, t1.ID, tech.ID)
	require.NoError(t, err)
	inProgress := models.StatusInProgress
	_, err = e.ticketSvc.Update(ctx, techIdent, t1.ID, service.UpdateTicketInput{Status: &inProgress})
	require.NoError(t, err)
	completed := models.StatusCompleted
	_, err = e.ticketSvc.Update(ctx, techIdent, t1.ID, service.UpdateTicketInput{Status: &completed})
	require.NoError(t, err)

	_, err = e.deviceSvc.Create(ctx, admin, service.DeviceInput{Name: "Projector", Type: "projector"})
	require.NoError(t, err)

	adminStats, err := e.stats.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, adminStats["totalUsers"])
	assert.Equal(t, 2, adminStats["totalTickets"])
	assert.Equal(t, 1, adminStats["pendingTickets"])
	assert.Equal(t, 1, adminStats["completedTickets"])
	assert.Equal(t, 1, adminStats["totalDevices"])
	assert.Equal(t, "50.0", adminStats["completionRate"])

	techStats, err := e.stats.Dashboard(ctx, techIdent)
	require.NoError(t, err)
	assert.Equal(t, 1, techStats["totalAssigned"])
	assert.Equal(t, 1, techStats["completed"])

	clientStats, err := e.stats.Dashboard(ctx, clientIdent)
	require.NoError(t, err)
	assert.Equal(t, 2, clientStats["totalTickets"])
	assert.Equal(t, 1, clientStats["pending"])
	assert.Equal(t, 1, clientStats["completed"])
}
