package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
)

type DeviceService struct {
	devices repository.DeviceRepository
	users   repository.UserRepository
	audit   *AuditService
}

func NewDeviceService(devices repository.DeviceRepository, users repository.UserRepository, audit *AuditService) *DeviceService {
	return &DeviceService{devices: devices, users: users, audit: audit}
}

type DeviceInput struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Model        *string    `json:"model"`
	SerialNumber *string    `json:"serialNumber"`
	Location     *string    `json:"location"`
	Status       *string    `json:"status"`
	LastService  *time.Time `json:"lastServiceDate"`
	NextService  *time.Time `json:"nextServiceDate"`
	PurchaseDate *time.Time `json:"purchaseDate"`
	WarrantyEnd  *time.Time `json:"warrantyExpiry"`
	Notes        *string    `json:"notes"`
	AssignedTo   *string    `json:"assignedTo"`
}

func (s *DeviceService) Create(ctx context.Context, ident Identity, in DeviceInput) (*models.Device, error) {
	in.Name = clip(in.Name, 200)
	in.Type = clip(in.Type, 100)

	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.Type == "" {
		fields["type"] = "required"
	}
	status := models.DeviceOperational
	if in.Status != nil {
		status = *in.Status
		if !models.ValidDeviceStatus(status) {
			fields["status"] = "unknown status"
		}
	}
	if len(fields) > 0 {
		return nil, apperr.Invalid(fields)
	}

	now := time.Now().UTC()
	d := &models.Device{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Type:         in.Type,
		Status:       status,
		LastService:  in.LastService,
		NextService:  in.NextService,
		PurchaseDate: in.PurchaseDate,
		WarrantyEnd:  in.WarrantyEnd,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Model != nil {
		d.Model = clip(*in.Model, 100)
	}
	if in.SerialNumber != nil {
		d.SerialNumber = clip(*in.SerialNumber, 100)
	}
	if in.Location != nil {
		d.Location = clip(*in.Location, 200)
	}
	if in.Notes != nil {
		d.Notes = clip(*in.Notes, 1000)
	}
	if in.AssignedTo != nil {
		d.AssignedTo = clip(*in.AssignedTo, 200)
	}

	if err := s.devices.Create(ctx, d); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, s.actor(ctx, ident), "device_created", "device", d.ID,
		map[string]string{"name": d.Name, "type": d.Type})
	return d, nil
}

func (s *DeviceService) Update(ctx context.Context, ident Identity, id string, in DeviceInput) (*models.Device, error) {
	changes := map[string]string{}
	d, err := s.devices.Mutate(ctx, id, func(d *models.Device) error {
		if name := clip(in.Name, 200); name != "" && name != d.Name {
			changes["name"] = d.Name + " -> " + name
			d.Name = name
		}
		if typ := clip(in.Type, 100); typ != "" && typ != d.Type {
			changes["type"] = d.Type + " -> " + typ
			d.Type = typ
		}
		if in.Status != nil && *in.Status != d.Status {
			if !models.ValidDeviceStatus(*in.Status) {
				return apperr.Invalid(map[string]string{"status": "unknown status"})
			}
			changes["status"] = d.Status + " -> " + *in.Status
			d.Status = *in.Status
		}
		if in.Model != nil {
			d.Model = clip(*in.Model, 100)
			changes["model"] = d.Model
		}
		if in.SerialNumber != nil {
			d.SerialNumber = clip(*in.SerialNumber, 100)
			changes["serialNumber"] = d.SerialNumber
		}
		if in.Location != nil {
			d.Location = clip(*in.Location, 200)
			changes["location"] = d.Location
		}
		if in.Notes != nil {
			d.Notes = clip(*in.Notes, 1000)
			changes["notes"] = "updated"
		}
		if in.AssignedTo != nil {
			d.AssignedTo = clip(*in.AssignedTo, 200)
			changes["assignedTo"] = d.AssignedTo
		}
		if in.LastService != nil {
			d.LastService = in.LastService
			changes["lastServiceDate"] = in.LastService.Format(time.RFC3339)
		}
		if in.NextService != nil {
			d.NextService = in.NextService
			changes["nextServiceDate"] = in.NextService.Format(time.RFC3339)
		}
		if in.PurchaseDate != nil {
			d.PurchaseDate = in.PurchaseDate
		}
		if in.WarrantyEnd != nil {
			d.WarrantyEnd = in.WarrantyEnd
		}
		d.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, s.actor(ctx, ident), "device_updated", "device", d.ID, changes)
	return d, nil
}

func (s *DeviceService) Delete(ctx context.Context, ident Identity, id string) error {
	if err := s.devices.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, s.actor(ctx, ident), "device_deleted", "device", id, nil)
	return nil
}

func (s *DeviceService) Get(ctx context.Context, id string) (*models.Device, error) {
	d, err := s.devices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.New(apperr.NotFound, "device not found")
	}
	return d, nil
}

func (s *DeviceService) List(ctx context.Context, f repository.DeviceFilter) ([]models.Device, error) {
	return s.devices.List(ctx, f)
}

func (s *DeviceService) actor(ctx context.Context, ident Identity) models.Actor {
	a := models.Actor{ID: ident.UserID, Role: ident.Role}
	if u, err := s.users.GetByID(ctx, ident.UserID); err == nil && u != nil {
		a.Name = u.Name
	}
	return a
}
