package service

import (
	"context"
	"fmt"

	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
)

// StatsService computes the role-scoped dashboard aggregates.
type StatsService struct {
	users   repository.UserRepository
	devices repository.DeviceRepository
	tickets repository.TicketRepository
}

func NewStatsService(users repository.UserRepository, devices repository.DeviceRepository, tickets repository.TicketRepository) *StatsService {
	return &StatsService{users: users, devices: devices, tickets: tickets}
}

func (s *StatsService) Dashboard(ctx context.Context, ident Identity) (map[string]any, error) {
	switch ident.Role {
	case models.RoleAdmin:
		return s.adminStats(ctx)
	case models.RoleTechnician:
		return s.technicianStats(ctx, ident.UserID)
	default:
		return s.clientStats(ctx, ident.UserID)
	}
}

func (s *StatsService) adminStats(ctx context.Context) (map[string]any, error) {
	users, err := s.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, err
	}
	devices, err := s.devices.List(ctx, repository.DeviceFilter{})
	if err != nil {
		return nil, err
	}

	clients, techs := 0, 0
	for _, u := range users {
		switch u.Role {
		case models.RoleClient:
			clients++
		case models.RoleTechnician:
			techs++
		}
	}
	newCount, inProgress, completed := 0, 0, 0
	for _, t := range tickets {
		switch t.Status {
		case models.StatusNew, models.StatusAssigned:
			newCount++
		case models.StatusInProgress, models.StatusOnHold:
			inProgress++
		case models.StatusCompleted:
			completed++
		}
	}
	operational, faulty := 0, 0
	for _, d := range devices {
		switch d.Status {
		case models.DeviceOperational:
			operational++
		case models.DeviceFaulty:
			faulty++
		}
	}
	completionRate := "0.0"
	if len(tickets) > 0 {
		completionRate = fmt.Sprintf("%.1f", float64(completed)/float64(len(tickets))*100)
	}

	return map[string]any{
		"totalUsers":         len(users),
		"totalClients":       clients,
		"totalTechnicians":   techs,
		"totalTickets":       len(tickets),
		"pendingTickets":     newCount,
		"inProgressTickets":  inProgress,
		"completedTickets":   completed,
		"totalDevices":       len(devices),
		"operationalDevices": operational,
		"faultyDevices":      faulty,
		"completionRate":     completionRate,
	}, nil
}

func (s *StatsService) technicianStats(ctx context.Context, userID string) (map[string]any, error) {
	mine, err := s.tickets.List(ctx, repository.TicketFilter{TechnicianID: userID})
	if err != nil {
		return nil, err
	}
	pending, inProgress, completed := 0, 0, 0
	for _, t := range mine {
		switch t.Status {
		case models.StatusAssigned:
			pending++
		case models.StatusInProgress, models.StatusOnHold:
			inProgress++
		case models.StatusCompleted:
			completed++
		}
	}
	rating := 0.0
	if u, err := s.users.GetByID(ctx, userID); err == nil && u != nil {
		rating = u.AverageRating
	}
	return map[string]any{
		"totalAssigned": len(mine),
		"pending":       pending,
		"inProgress":    inProgress,
		"completed":     completed,
		"rating":        rating,
	}, nil
}

func (s *StatsService) clientStats(ctx context.Context, userID string) (map[string]any, error) {
	mine, err := s.tickets.List(ctx, repository.TicketFilter{ClientID: userID})
	if err != nil {
		return nil, err
	}
	pending, inProgress, completed := 0, 0, 0
	for _, t := range mine {
		switch t.Status {
		case models.StatusNew, models.StatusAssigned:
			pending++
		case models.StatusInProgress, models.StatusOnHold:
			inProgress++
		case models.StatusCompleted:
			completed++
		}
	}
	return map[string]any{
		"totalTickets": len(mine),
		"pending":      pending,
		"inProgress":   inProgress,
		"completed":    completed,
	}, nil
}
