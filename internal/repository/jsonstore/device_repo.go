package jsonstore

import (
	"context"
	"slices"
	"strings"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/store"
)

type DeviceRepo struct{ s store.Store }

func NewDeviceRepo(s store.Store) repository.DeviceRepository { return &DeviceRepo{s: s} }

func (r *DeviceRepo) Create(ctx context.Context, d *models.Device) error {
	defer r.s.Lock(store.Devices)()

	var devices []models.Device
	if err := r.s.Read(store.Devices, &devices); err != nil {
		return apperr.Wrap(apperr.StoreIO, "load devices", err)
	}
	devices = append(devices, *d)
	if err := r.s.Write(store.Devices, devices); err != nil {
		return apperr.Wrap(apperr.StoreIO, "save devices", err)
	}
	return nil
}

func (r *DeviceRepo) GetByID(ctx context.Context, id string) (*models.Device, error) {
	var devices []models.Device
	if err := r.s.Read(store.Devices, &devices); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load devices", err)
	}
	for i := range devices {
		if devices[i].ID == id {
			return &devices[i], nil
		}
	}
	return nil, nil
}

func (r *DeviceRepo) List(ctx context.Context, f repository.DeviceFilter) ([]models.Device, error) {
	var devices []models.Device
	if err := r.s.Read(store.Devices, &devices); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load devices", err)
	}
	out := make([]models.Device, 0, len(devices))
	for _, d := range devices {
		if f.Type != "" && d.Type != f.Type {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(d.Location), strings.ToLower(f.Location)) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *DeviceRepo) Mutate(ctx context.Context, id string, fn func(*models.Device) error) (*models.Device, error) {
	defer r.s.Lock(store.Devices)()

	var devices []models.Device
	if err := r.s.Read(store.Devices, &devices); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load devices", err)
	}
	for i := range devices {
		if devices[i].ID != id {
			continue
		}
		if err := fn(&devices[i]); err != nil {
			return nil, err
		}
		if err := r.s.Write(store.Devices, devices); err != nil {
			return nil, apperr.Wrap(apperr.StoreIO, "save devices", err)
		}
		d := devices[i]
		return &d, nil
	}
	return nil, apperr.New(apperr.NotFound, "device not found")
}

func (r *DeviceRepo) Delete(ctx context.Context, id string) error {
	defer r.s.Lock(store.Devices)()

	var devices []models.Device
	if err := r.s.Read(store.Devices, &devices); err != nil {
		return apperr.Wrap(apperr.StoreIO, "load devices", err)
	}
	kept := slices.DeleteFunc(devices, func(d models.Device) bool { return d.ID == id })
	if len(kept) == len(devices) {
		return apperr.New(apperr.NotFound, "device not found")
	}
	if err := r.s.Write(store.Devices, kept); err != nil {
		return apperr.Wrap(apperr.StoreIO, "save devices", err)
	}
	return nil
}

func (r *DeviceRepo) AddRelatedTicket(ctx context.Context, deviceID, ticketID string) error {
	defer r.s.Lock(store.Devices)()

	var devices []models.Device
	if err := r.s.Read(store.Devices, &devices); err != nil {
		return apperr.Wrap(apperr.StoreIO, "load devices", err)
	}
	for i := range devices {
		if devices[i].ID != deviceID {
			continue
		}
		if slices.Contains(devices[i].RelatedTickets, ticketID) {
			return nil
		}
		devices[i].RelatedTickets = append(devices[i].RelatedTickets, ticketID)
		if err := r.s.Write(store.Devices, devices); err != nil {
			return apperr.Wrap(apperr.StoreIO, "save devices", err)
		}
		return nil
	}
	return apperr.New(apperr.NotFound, "device not found")
}
