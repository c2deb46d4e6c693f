package testutil

import (
	"context"
	"strings"

	"github.com/devicedesk/devicedesk/internal/domain/device"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

// InMemoryDeviceStore implements device.Repository
type InMemoryDeviceStore struct {
	*InMemoryStore[*device.Device]
}

func NewInMemoryDeviceStore() *InMemoryDeviceStore {
	return &InMemoryDeviceStore{InMemoryStore: NewInMemoryStore[*device.Device]()}
}

func copyDevice(d *device.Device) *device.Device {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}

func (s *InMemoryDeviceStore) Create(ctx context.Context, d *device.Device) error {
	if d == nil {
		return ierr.NewError("device cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, d.ID, copyDevice(d))
}

func (s *InMemoryDeviceStore) Get(ctx context.Context, id string) (*device.Device, error) {
	d, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenantFilter(ctx, d.BaseModel) {
		return nil, ierr.NewError("device not found").
			WithHint("Device not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyDevice(d), nil
}

func (s *InMemoryDeviceStore) GetBySerial(ctx context.Context, serial string) (*device.Device, error) {
	serial = strings.TrimSpace(serial)
	items, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, d *device.Device, _ interface{}) bool {
		return CheckTenantFilter(ctx, d.BaseModel) && strings.EqualFold(d.SerialNumber, serial)
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ierr.NewError("device not found").
			WithHint("Device not found").
			WithReportableDetails(map[string]any{"serial_number": serial}).
			Mark(ierr.ErrNotFound)
	}
	return copyDevice(items[0]), nil
}

func (s *InMemoryDeviceStore) List(ctx context.Context, filter *types.DeviceFilter) ([]*device.Device, error) {
	if filter == nil {
		filter = types.NewNoLimitDeviceFilter()
	}
	items, err := s.InMemoryStore.List(ctx, filter, deviceFilterFn, func(i, j *device.Device) bool {
		return sortByCreatedAt(i.BaseModel, j.BaseModel, i.ID, j.ID)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(d *device.Device, _ int) *device.Device { return copyDevice(d) }), nil
}

func (s *InMemoryDeviceStore) Count(ctx context.Context, filter *types.DeviceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, deviceFilterFn)
}

func (s *InMemoryDeviceStore) Update(ctx context.Context, d *device.Device) error {
	if _, err := s.Get(ctx, d.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, d.ID, copyDevice(d))
}

func (s *InMemoryDeviceStore) Delete(ctx context.Context, id string) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	d.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, d)
}

func deviceFilterFn(ctx context.Context, d *device.Device, filter interface{}) bool {
	if d == nil || !CheckTenantFilter(ctx, d.BaseModel) {
		return false
	}
	f, ok := filter.(*types.DeviceFilter)
	if !ok || f == nil {
		return true
	}
	if len(f.DeviceIDs) > 0 && !lo.Contains(f.DeviceIDs, d.ID) {
		return false
	}
	if f.ClientID != "" && lo.FromPtr(d.ClientID) != f.ClientID {
		return false
	}
	if f.ProviderID != "" && lo.FromPtr(d.ProviderID) != f.ProviderID {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, d.Category) {
		return false
	}
	if len(f.DeviceStatus) > 0 && !lo.Contains(f.DeviceStatus, d.DeviceStatus) {
		return false
	}
	return matchesSearch(f.GetSearch(), d.Name, d.SerialNumber, d.Category)
}
