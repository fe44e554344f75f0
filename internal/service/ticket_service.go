package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
)

// transitions is the ticket state machine: edges not listed here are
// rejected, never coerced into a different status.
var transitions = map[string][]string{
	models.StatusNew:        {models.StatusAssigned, models.StatusRejected, models.StatusCancelled},
	models.StatusAssigned:   {models.StatusInProgress, models.StatusOnHold, models.StatusRejected, models.StatusCancelled},
	models.StatusInProgress: {models.StatusOnHold, models.StatusCompleted, models.StatusCancelled},
	models.StatusOnHold:     {models.StatusInProgress, models.StatusCancelled},
}

func canTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TicketService is the lifecycle and assignment engine. Mutations fan out to
// the notification and audit collections as side effects; those writes are
// not atomic with the ticket write and are best-effort.
type TicketService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	devices repository.DeviceRepository
	notifs  repository.NotificationRepository
	audit   *AuditService
	log     zerolog.Logger
}

func NewTicketService(
	tickets repository.TicketRepository,
	users repository.UserRepository,
	devices repository.DeviceRepository,
	notifs repository.NotificationRepository,
	audit *AuditService,
	log zerolog.Logger,
) *TicketService {
	return &TicketService{tickets: tickets, users: users, devices: devices, notifs: notifs, audit: audit, log: log}
}

// generateTicketNumber builds the display number: date plus a random
// four-digit suffix. Collisions are possible but acceptably unlikely; there
// is deliberately no uniqueness retry.
func generateTicketNumber(now time.Time) string {
	return fmt.Sprintf("TKT-%s-%04d", now.Format("20060102"), rand.Intn(10000))
}

type CreateTicketInput struct {
	ServiceType string   `json:"serviceType"`
	IssueType   string   `json:"issueType"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Priority    string   `json:"priority"`
	DeviceID    string   `json:"deviceId"`
	Images      []string `json:"images"`
}

func (s *TicketService) Create(ctx context.Context, ident Identity, in CreateTicketInput) (*models.Ticket, error) {
	client, err := s.users.GetByID(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}

	in.ServiceType = clip(in.ServiceType, 100)
	in.IssueType = clip(in.IssueType, 100)
	in.Title = clip(in.Title, 255)
	in.Description = clip(in.Description, 5000)
	in.Location = clip(in.Location, 200)
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}

	fields := map[string]string{}
	if in.ServiceType == "" {
		fields["serviceType"] = "required"
	}
	if len(in.Title) < 5 {
		fields["title"] = "must be at least 5 characters"
	}
	if len(in.Description) < 10 {
		fields["description"] = "must be at least 10 characters"
	}
	if in.Location == "" {
		fields["location"] = "required"
	}
	if !models.ValidPriority(in.Priority) {
		fields["priority"] = "must be normal, urgent or critical"
	}
	if len(in.Images) > models.MaxTicketImages {
		fields["images"] = fmt.Sprintf("at most %d images", models.MaxTicketImages)
	}
	if len(fields) > 0 {
		return nil, apperr.Invalid(fields)
	}

	now := time.Now().UTC()
	t := &models.Ticket{
		ID:           uuid.NewString(),
		TicketNumber: generateTicketNumber(now),
		ClientID:     client.ID,
		ClientName:   client.Name,
		DeviceID:     in.DeviceID,
		ServiceType:  in.ServiceType,
		IssueType:    in.IssueType,
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		Priority:     in.Priority,
		Status:       models.StatusNew,
		Images:       in.Images,
		CreatedAt:    now,
		UpdatedAt:    now,
		History: []models.HistoryEntry{{
			Status:    models.StatusNew,
			Timestamp: now,
			ActorID:   client.ID,
			ActorName: client.Name,
			Action:    "created",
		}},
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}

	// Informational back-reference on the linked device.
	if t.DeviceID != "" {
		if err := s.devices.AddRelatedTicket(ctx, t.DeviceID, t.ID); err != nil && !apperr.Is(err, apperr.NotFound) {
			s.log.Error().Err(err).Str("ticket", t.ID).Msg("device back-reference failed")
		}
	}

	// One notification per admin.
	admins, err := s.users.List(ctx, repository.UserFilter{Role: models.RoleAdmin})
	if err != nil {
		s.log.Error().Err(err).Msg("admin lookup for notification failed")
	}
	for _, admin := range admins {
		s.notify(ctx, admin.ID, models.NotifyTicketCreated, "New ticket",
			fmt.Sprintf("New ticket %s: %s", t.TicketNumber, t.Title), t.ID)
	}

	s.audit.Record(ctx, models.Actor{ID: client.ID, Name: client.Name, Role: client.Role},
		"ticket_created", "ticket", t.ID, map[string]string{"ticketNumber": t.TicketNumber})

	return t, nil
}

// Assign puts a ticket on a technician. Re-assignment is allowed from any
// non-terminal state and resets the status to assigned.
func (s *TicketService) Assign(ctx context.Context, ident Identity, ticketID, technicianID string) (*models.Ticket, error) {
	if ident.Role != models.RoleAdmin {
		return nil, apperr.New(apperr.Forbidden, "only admins can assign tickets")
	}
	actor, err := s.users.GetByID(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}

	tech, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	if tech == nil || tech.Role != models.RoleTechnician || !tech.Active {
		return nil, apperr.New(apperr.InvalidTechnician, "assignee is not an active technician")
	}

	now := time.Now().UTC()
	var prev string
	t, err := s.tickets.Mutate(ctx, ticketID, func(t *models.Ticket) error {
		if models.Terminal(t.Status) {
			return apperr.New(apperr.Forbidden, "ticket is closed")
		}
		prev = t.Status
		t.TechnicianID = tech.ID
		t.TechnicianName = tech.Name
		t.Status = models.StatusAssigned
		t.AssignedAt = &now
		t.UpdatedAt = now
		t.History = append(t.History, models.HistoryEntry{
			Status:    models.StatusAssigned,
			Timestamp: now,
			ActorID:   actor.ID,
			ActorName: actor.Name,
			Action:    "assigned",
			Note:      "assigned to " + tech.Name,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, tech.ID, models.NotifyTicketAssigned, "Ticket assigned to you",
		fmt.Sprintf("You have been assigned ticket %s", t.TicketNumber), t.ID)

	s.audit.Record(ctx, models.Actor{ID: actor.ID, Name: actor.Name, Role: actor.Role},
		"ticket_assigned", "ticket", t.ID,
		map[string]string{"technicianId": tech.ID, "status": prev + " -> " + t.Status})

	return t, nil
}

type UpdateTicketInput struct {
	Status          *string `json:"status"`
	Priority        *string `json:"priority"`
	TechnicianNotes *string `json:"technicianNotes"`
	InternalNotes   *string `json:"internalNotes"`
	Note            *string `json:"note"` // free-text note for the history entry
}

// Update applies a status transition and/or notes. Clients may only cancel
// their own non-terminal tickets; technicians and admins move tickets along
// the state machine edges.
func (s *TicketService) Update(ctx context.Context, ident Identity, ticketID string, in UpdateTicketInput) (*models.Ticket, error) {
	actor, err := s.users.GetByID(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}

	now := time.Now().UTC()
	changes := map[string]string{}

	t, err := s.tickets.Mutate(ctx, ticketID, func(t *models.Ticket) error {
		if actor.Role == models.RoleClient {
			if t.ClientID != actor.ID {
				return apperr.New(apperr.Forbidden, "access denied")
			}
			if in.Priority != nil || in.TechnicianNotes != nil || in.InternalNotes != nil {
				return apperr.New(apperr.Forbidden, "clients can only cancel their tickets")
			}
			if in.Status != nil && *in.Status != models.StatusCancelled {
				return apperr.New(apperr.Forbidden, "clients can only cancel their tickets")
			}
		}

		note := ""
		if in.Note != nil {
			note = clip(*in.Note, 1000)
		}

		if in.Status != nil && *in.Status != t.Status {
			to := *in.Status
			if !models.ValidStatus(to) {
				return apperr.Invalid(map[string]string{"status": "unknown status"})
			}
			if !canTransition(t.Status, to) {
				return apperr.Newf(apperr.Forbidden, "cannot move ticket from %s to %s", t.Status, to)
			}
			prev := t.Status
			t.Status = to
			switch to {
			case models.StatusInProgress:
				// First entry into in_progress only; re-entry keeps the
				// original start time.
				if t.StartedAt == nil {
					t.StartedAt = &now
				}
			case models.StatusCompleted:
				t.CompletedAt = &now
			}
			t.History = append(t.History, models.HistoryEntry{
				Status:    to,
				Timestamp: now,
				ActorID:   actor.ID,
				ActorName: actor.Name,
				Action:    "status_changed",
				Note:      note,
			})
			changes["status"] = prev + " -> " + to
		} else if note != "" {
			// Standalone note: no status change, still part of the narrative.
			t.History = append(t.History, models.HistoryEntry{
				Status:    t.Status,
				Timestamp: now,
				ActorID:   actor.ID,
				ActorName: actor.Name,
				Action:    "note_added",
				Note:      note,
			})
			changes["note"] = "added"
		}

		if in.Priority != nil && *in.Priority != t.Priority {
			if !models.ValidPriority(*in.Priority) {
				return apperr.Invalid(map[string]string{"priority": "must be normal, urgent or critical"})
			}
			changes["priority"] = t.Priority + " -> " + *in.Priority
			t.Priority = *in.Priority
		}
		if in.TechnicianNotes != nil {
			t.TechnicianNotes = clip(*in.TechnicianNotes, 1000)
			t.History = append(t.History, models.HistoryEntry{
				Status:    t.Status,
				Timestamp: now,
				ActorID:   actor.ID,
				ActorName: actor.Name,
				Action:    "notes_added",
			})
			changes["technicianNotes"] = "updated"
		}
		if in.InternalNotes != nil {
			t.InternalNotes = clip(*in.InternalNotes, 1000)
			changes["internalNotes"] = "updated"
		}

		if len(changes) > 0 {
			t.UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changes) == 0 {
		return s.view(t, actor.Role), nil
	}

	if _, ok := changes["status"]; ok {
		s.notify(ctx, t.ClientID, models.NotifyStatusChanged, "Ticket status updated",
			fmt.Sprintf("Ticket %s is now %s", t.TicketNumber, t.Status), t.ID)

		// Completed work feeds the technician's job counter.
		if t.Status == models.StatusCompleted && t.TechnicianID != "" {
			if err := s.refreshTechnicianStats(ctx, t.TechnicianID); err != nil {
				s.log.Error().Err(err).Str("technician", t.TechnicianID).Msg("technician stats refresh failed")
			}
		}
	}

	s.audit.Record(ctx, models.Actor{ID: actor.ID, Name: actor.Name, Role: actor.Role},
		"ticket_updated", "ticket", t.ID, changes)

	return s.view(t, actor.Role), nil
}

// Rate records the client's rating. The ticket must have a technician but is
// deliberately not required to be completed.
func (s *TicketService) Rate(ctx context.Context, ident Identity, ticketID string, rating int, comment string) (*models.Ticket, error) {
	actor, err := s.users.GetByID(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}

	if rating < 1 || rating > 5 {
		return nil, apperr.Invalid(map[string]string{"rating": "must be between 1 and 5"})
	}

	now := time.Now().UTC()
	t, err := s.tickets.Mutate(ctx, ticketID, func(t *models.Ticket) error {
		if t.ClientID != actor.ID {
			return apperr.New(apperr.Forbidden, "only the ticket owner can rate it")
		}
		if t.TechnicianID == "" {
			return apperr.Invalid(map[string]string{"rating": "ticket has no technician"})
		}
		t.Rating = rating
		t.RatingComment = clip(comment, 1000)
		t.RatedAt = &now
		t.UpdatedAt = now
		t.History = append(t.History, models.HistoryEntry{
			Status:    t.Status,
			Timestamp: now,
			ActorID:   actor.ID,
			ActorName: actor.Name,
			Action:    "rated",
			Note:      fmt.Sprintf("rated %d/5", rating),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.refreshTechnicianStats(ctx, t.TechnicianID); err != nil {
		s.log.Error().Err(err).Str("technician", t.TechnicianID).Msg("technician stats refresh failed")
	}

	s.notify(ctx, t.TechnicianID, models.NotifyRatingReceived, "You received a rating",
		fmt.Sprintf("Ticket %s was rated %d/5", t.TicketNumber, rating), t.ID)

	s.audit.Record(ctx, models.Actor{ID: actor.ID, Name: actor.Name, Role: actor.Role},
		"ticket_rated", "ticket", t.ID, map[string]string{"rating": fmt.Sprint(rating)})

	return t, nil
}

func (s *TicketService) Get(ctx context.Context, ident Identity, ticketID string) (*models.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.New(apperr.NotFound, "ticket not found")
	}
	if ident.Role == models.RoleClient && t.ClientID != ident.UserID {
		return nil, apperr.New(apperr.Forbidden, "access denied")
	}
	return s.view(t, ident.Role), nil
}

type ListTicketsInput struct {
	Status      string
	Priority    string
	ServiceType string
	// AssignedToMe narrows a technician's view to their own tickets.
	AssignedToMe bool
}

func (s *TicketService) List(ctx context.Context, ident Identity, in ListTicketsInput) ([]models.Ticket, error) {
	f := repository.TicketFilter{
		Status:      in.Status,
		Priority:    in.Priority,
		ServiceType: in.ServiceType,
	}
	switch ident.Role {
	case models.RoleClient:
		f.ClientID = ident.UserID
	case models.RoleTechnician:
		if in.AssignedToMe {
			f.TechnicianID = ident.UserID
		}
	}
	tickets, err := s.tickets.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if ident.Role == models.RoleClient {
		for i := range tickets {
			tickets[i] = tickets[i].Sanitized()
		}
	}
	return tickets, nil
}

// view strips internal notes from responses for non-privileged roles.
func (s *TicketService) view(t *models.Ticket, role string) *models.Ticket {
	if role == models.RoleClient {
		v := t.Sanitized()
		return &v
	}
	return t
}

// refreshTechnicianStats recomputes averageRating (mean over rating-bearing
// tickets assigned to the technician) and completedJobs on the user record.
func (s *TicketService) refreshTechnicianStats(ctx context.Context, technicianID string) error {
	assigned, err := s.tickets.List(ctx, repository.TicketFilter{TechnicianID: technicianID})
	if err != nil {
		return err
	}

	sum, rated, completed := 0, 0, 0
	for _, t := range assigned {
		if t.Rating > 0 {
			sum += t.Rating
			rated++
		}
		if t.Status == models.StatusCompleted {
			completed++
		}
	}
	_, err = s.users.Mutate(ctx, technicianID, func(u *models.User) error {
		if rated > 0 {
			u.AverageRating = float64(sum) / float64(rated)
		} else {
			u.AverageRating = 0
		}
		u.CompletedJobs = completed
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
	return err
}

func (s *TicketService) notify(ctx context.Context, userID, typ, title, message, ticketID string) {
	n := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Link:      "/tickets/" + ticketID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifs.Create(ctx, n); err != nil {
		s.log.Error().Err(err).Str("user", userID).Str("type", typ).Msg("notification write failed")
	}
}
