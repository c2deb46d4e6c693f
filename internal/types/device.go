package types

import (
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/samber/lo"
)

type DeviceStatus string

const (
	DeviceStatusInStock     DeviceStatus = "in_stock"
	DeviceStatusAssigned    DeviceStatus = "assigned"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
	DeviceStatusRetired     DeviceStatus = "retired"
)

var DeviceStatuses = []DeviceStatus{
	DeviceStatusInStock,
	DeviceStatusAssigned,
	DeviceStatusMaintenance,
	DeviceStatusRetired,
}

func (s DeviceStatus) Validate() error {
	if !lo.Contains(DeviceStatuses, s) {
		return ierr.NewErrorf("invalid device status: %s", s).
			WithHint("Invalid device status").
			WithReportableDetails(map[string]any{"allowed": DeviceStatuses}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type DeviceFilter struct {
	*QueryFilter
	DeviceIDs    []string       `json:"device_ids,omitempty" form:"device_ids"`
	ClientID     string         `json:"client_id,omitempty" form:"client_id"`
	ProviderID   string         `json:"provider_id,omitempty" form:"provider_id"`
	Category     string         `json:"category,omitempty" form:"category"`
	DeviceStatus []DeviceStatus `json:"device_status,omitempty" form:"device_status"`
}

func NewDeviceFilter() *DeviceFilter {
	return &DeviceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitDeviceFilter() *DeviceFilter {
	return &DeviceFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *DeviceFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	for _, s := range f.DeviceStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
