package device

import (
	"time"

	"github.com/devicedesk/devicedesk/internal/types"
)

// Device is one inventory item, optionally assigned to a client.
type Device struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	SerialNumber     string             `json:"serial_number"`
	Category         string             `json:"category,omitempty"`
	DeviceStatus     types.DeviceStatus `json:"device_status"`
	ClientID         *string            `json:"client_id,omitempty"`
	ProviderID       *string            `json:"provider_id,omitempty"`
	PurchaseDate     *time.Time         `json:"purchase_date,omitempty"`
	MaintenanceSince *time.Time         `json:"maintenance_since,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	types.BaseModel
}
