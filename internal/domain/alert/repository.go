package alert

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/types"
)

// Repository runs the aggregating alerts query for the tenant in ctx.
type Repository interface {
	ListRawAlerts(ctx context.Context, thresholds types.AlertThresholds) ([]RawAlertRow, error)
}
