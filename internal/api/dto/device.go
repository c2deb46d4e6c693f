package dto

import (
	"context"
	"strings"

	"github.com/devicedesk/devicedesk/internal/domain/device"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/devicedesk/devicedesk/internal/validator"
)

type CreateDeviceRequest struct {
	Name             string             `json:"name" validate:"required,max=255"`
	SerialNumber     string             `json:"serial_number" validate:"required,max=128"`
	Category         string             `json:"category,omitempty" validate:"omitempty,max=100"`
	DeviceStatus     types.DeviceStatus `json:"device_status,omitempty"`
	ClientID         *string            `json:"client_id,omitempty"`
	ProviderID       *string            `json:"provider_id,omitempty"`
	PurchaseDate     string             `json:"purchase_date,omitempty"`
	MaintenanceSince string             `json:"maintenance_since,omitempty"`
	Notes            string             `json:"notes,omitempty"`
}

func (r *CreateDeviceRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.SerialNumber = strings.TrimSpace(r.SerialNumber)
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.DeviceStatus == "" {
		r.DeviceStatus = types.DeviceStatusInStock
		if trimPtr(r.ClientID) != nil {
			r.DeviceStatus = types.DeviceStatusAssigned
		}
	}
	if err := r.DeviceStatus.Validate(); err != nil {
		return err
	}
	if r.DeviceStatus == types.DeviceStatusAssigned && trimPtr(r.ClientID) == nil {
		return ierr.NewError("assigned device requires client_id").
			WithHint("Pick the client this device is assigned to").
			Mark(ierr.ErrValidation)
	}
	if _, err := parseDate("purchase_date", r.PurchaseDate); err != nil {
		return err
	}
	if _, err := parseDate("maintenance_since", r.MaintenanceSince); err != nil {
		return err
	}
	return nil
}

// ToDevice assumes Validate has passed.
func (r *CreateDeviceRequest) ToDevice(ctx context.Context) *device.Device {
	purchase, _ := parseDate("purchase_date", r.PurchaseDate)
	since, _ := parseDate("maintenance_since", r.MaintenanceSince)
	return &device.Device{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DEVICE),
		Name:             r.Name,
		SerialNumber:     r.SerialNumber,
		Category:         strings.TrimSpace(r.Category),
		DeviceStatus:     r.DeviceStatus,
		ClientID:         trimPtr(r.ClientID),
		ProviderID:       trimPtr(r.ProviderID),
		PurchaseDate:     purchase,
		MaintenanceSince: since,
		Notes:            r.Notes,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}

type UpdateDeviceRequest struct {
	Name             *string             `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	SerialNumber     *string             `json:"serial_number,omitempty" validate:"omitempty,min=1,max=128"`
	Category         *string             `json:"category,omitempty" validate:"omitempty,max=100"`
	DeviceStatus     *types.DeviceStatus `json:"device_status,omitempty"`
	ClientID         *string             `json:"client_id,omitempty"`
	ProviderID       *string             `json:"provider_id,omitempty"`
	PurchaseDate     *string             `json:"purchase_date,omitempty"`
	MaintenanceSince *string             `json:"maintenance_since,omitempty"`
	Notes            *string             `json:"notes,omitempty"`
}

func (r *UpdateDeviceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.DeviceStatus != nil {
		if err := r.DeviceStatus.Validate(); err != nil {
			return err
		}
	}
	if r.PurchaseDate != nil {
		if _, err := parseDate("purchase_date", *r.PurchaseDate); err != nil {
			return err
		}
	}
	if r.MaintenanceSince != nil {
		if _, err := parseDate("maintenance_since", *r.MaintenanceSince); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the set fields onto d. An empty client_id or provider_id
// unlinks the device.
func (r *UpdateDeviceRequest) Apply(d *device.Device) {
	if r.Name != nil {
		d.Name = strings.TrimSpace(*r.Name)
	}
	if r.SerialNumber != nil {
		d.SerialNumber = strings.TrimSpace(*r.SerialNumber)
	}
	if r.Category != nil {
		d.Category = strings.TrimSpace(*r.Category)
	}
	if r.DeviceStatus != nil {
		d.DeviceStatus = *r.DeviceStatus
	}
	if r.ClientID != nil {
		d.ClientID = trimPtr(r.ClientID)
	}
	if r.ProviderID != nil {
		d.ProviderID = trimPtr(r.ProviderID)
	}
	if r.PurchaseDate != nil {
		d.PurchaseDate, _ = parseDate("purchase_date", *r.PurchaseDate)
	}
	if r.MaintenanceSince != nil {
		d.MaintenanceSince, _ = parseDate("maintenance_since", *r.MaintenanceSince)
	}
	if r.Notes != nil {
		d.Notes = *r.Notes
	}
}

type DeviceResponse struct {
	*device.Device
}

type ListDevicesResponse = types.ListResponse[*DeviceResponse]
