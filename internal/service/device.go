package service

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/domain/device"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

type DeviceService interface {
	CreateDevice(ctx context.Context, req dto.CreateDeviceRequest) (*dto.DeviceResponse, error)
	GetDevice(ctx context.Context, id string) (*dto.DeviceResponse, error)
	GetDevices(ctx context.Context, filter *types.DeviceFilter) (*dto.ListDevicesResponse, error)
	UpdateDevice(ctx context.Context, id string, req dto.UpdateDeviceRequest) (*dto.DeviceResponse, error)
	DeleteDevice(ctx context.Context, id string) error
}

type deviceService struct {
	ServiceParams
}

func NewDeviceService(params ServiceParams) DeviceService {
	return &deviceService{ServiceParams: params}
}

func (s *deviceService) CreateDevice(ctx context.Context, req dto.CreateDeviceRequest) (*dto.DeviceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d := req.ToDevice(ctx)
	if err := s.ensureSerialUnique(ctx, d.SerialNumber, ""); err != nil {
		return nil, err
	}
	if err := s.validateLinks(ctx, d); err != nil {
		return nil, err
	}
	s.syncMaintenanceSince(d)

	if err := s.DeviceRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	s.invalidateTenantCache(ctx)

	s.Logger.WithContext(ctx).Infow("created device",
		"device_id", d.ID,
		"serial_number", d.SerialNumber,
	)
	return &dto.DeviceResponse{Device: d}, nil
}

func (s *deviceService) GetDevice(ctx context.Context, id string) (*dto.DeviceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("device_id is required").
			WithHint("Device ID is required").
			Mark(ierr.ErrValidation)
	}

	d, err := s.DeviceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.DeviceResponse{Device: d}, nil
}

func (s *deviceService) GetDevices(ctx context.Context, filter *types.DeviceFilter) (*dto.ListDevicesResponse, error) {
	if filter == nil {
		filter = types.NewDeviceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	devices, err := s.DeviceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.DeviceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListDevicesResponse{
		Items: lo.Map(devices, func(d *device.Device, _ int) *dto.DeviceResponse {
			return &dto.DeviceResponse{Device: d}
		}),
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *deviceService) UpdateDevice(ctx context.Context, id string, req dto.UpdateDeviceRequest) (*dto.DeviceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.DeviceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(d)
	if req.SerialNumber != nil {
		if err := s.ensureSerialUnique(ctx, d.SerialNumber, d.ID); err != nil {
			return nil, err
		}
	}
	if err := s.validateLinks(ctx, d); err != nil {
		return nil, err
	}
	if d.DeviceStatus == types.DeviceStatusAssigned && d.ClientID == nil {
		return nil, ierr.NewError("assigned device requires client_id").
			WithHint("Pick the client this device is assigned to").
			Mark(ierr.ErrValidation)
	}
	s.syncMaintenanceSince(d)
	d.UpdatedBy = types.GetUserID(ctx)

	if err := s.DeviceRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.invalidateTenantCache(ctx)
	return &dto.DeviceResponse{Device: d}, nil
}

func (s *deviceService) DeleteDevice(ctx context.Context, id string) error {
	if err := s.DeviceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateTenantCache(ctx)
	return nil
}

func (s *deviceService) ensureSerialUnique(ctx context.Context, serial, selfID string) error {
	existing, err := s.DeviceRepo.GetBySerial(ctx, serial)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return ierr.NewError("device with this serial number already exists").
		WithHint("A device with this serial number already exists").
		WithReportableDetails(map[string]any{"serial_number": serial, "device_id": existing.ID}).
		Mark(ierr.ErrAlreadyExists)
}

func (s *deviceService) validateLinks(ctx context.Context, d *device.Device) error {
	if d.ClientID != nil {
		if _, err := s.ClientRepo.Get(ctx, *d.ClientID); err != nil {
			return linkError(err, "client_id", *d.ClientID)
		}
	}
	if d.ProviderID != nil {
		if _, err := s.ProviderRepo.Get(ctx, *d.ProviderID); err != nil {
			return linkError(err, "provider_id", *d.ProviderID)
		}
	}
	return nil
}

// syncMaintenanceSince stamps devices entering maintenance and clears the
// stamp when they leave it.
func (s *deviceService) syncMaintenanceSince(d *device.Device) {
	if d.DeviceStatus != types.DeviceStatusMaintenance {
		d.MaintenanceSince = nil
		return
	}
	if d.MaintenanceSince == nil {
		d.MaintenanceSince = lo.ToPtr(s.today())
	}
}
