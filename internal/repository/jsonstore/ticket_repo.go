package jsonstore

import (
	"context"
	"sort"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/store"
)

type TicketRepo struct{ s store.Store }

func NewTicketRepo(s store.Store) repository.TicketRepository { return &TicketRepo{s: s} }

func (r *TicketRepo) Create(ctx context.Context, t *models.Ticket) error {
	defer r.s.Lock(store.Tickets)()

	var tickets []models.Ticket
	if err := r.s.Read(store.Tickets, &tickets); err != nil {
		return apperr.Wrap(apperr.StoreIO, "load tickets", err)
	}
	tickets = append(tickets, *t)
	if err := r.s.Write(store.Tickets, tickets); err != nil {
		return apperr.Wrap(apperr.StoreIO, "save tickets", err)
	}
	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id string) (*models.Ticket, error) {
	var tickets []models.Ticket
	if err := r.s.Read(store.Tickets, &tickets); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load tickets", err)
	}
	for i := range tickets {
		if tickets[i].ID == id {
			return &tickets[i], nil
		}
	}
	return nil, nil
}

func (r *TicketRepo) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := r.s.Read(store.Tickets, &tickets); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load tickets", err)
	}
	out := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if f.ClientID != "" && t.ClientID != f.ClientID {
			continue
		}
		if f.TechnicianID != "" && t.TechnicianID != f.TechnicianID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.ServiceType != "" && t.ServiceType != f.ServiceType {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TicketRepo) Mutate(ctx context.Context, id string, fn func(*models.Ticket) error) (*models.Ticket, error) {
	defer r.s.Lock(store.Tickets)()

	var tickets []models.Ticket
	if err := r.s.Read(store.Tickets, &tickets); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load tickets", err)
	}
	for i := range tickets {
		if tickets[i].ID != id {
			continue
		}
		if err := fn(&tickets[i]); err != nil {
			return nil, err
		}
		if err := r.s.Write(store.Tickets, tickets); err != nil {
			return nil, apperr.Wrap(apperr.StoreIO, "save tickets", err)
		}
		t := tickets[i]
		return &t, nil
	}
	return nil, apperr.New(apperr.NotFound, "ticket not found")
}
