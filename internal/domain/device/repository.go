package device

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/types"
)

type Repository interface {
	Create(ctx context.Context, d *Device) error
	Get(ctx context.Context, id string) (*Device, error)
	// GetBySerial looks a device up by its serial number, case-insensitively.
	GetBySerial(ctx context.Context, serial string) (*Device, error)
	List(ctx context.Context, filter *types.DeviceFilter) ([]*Device, error)
	Count(ctx context.Context, filter *types.DeviceFilter) (int, error)
	Update(ctx context.Context, d *Device) error
	Delete(ctx context.Context, id string) error
}
