package service

import (
	"context"
	"strings"
	"time"

	"github.com/devicedesk/devicedesk/internal/cache"
	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/domain/alert"
	"github.com/devicedesk/devicedesk/internal/domain/client"
	"github.com/devicedesk/devicedesk/internal/domain/device"
	"github.com/devicedesk/devicedesk/internal/domain/invoice"
	"github.com/devicedesk/devicedesk/internal/domain/provider"
	"github.com/devicedesk/devicedesk/internal/domain/subscription"
	"github.com/devicedesk/devicedesk/internal/email"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/metrics"
	"github.com/devicedesk/devicedesk/internal/postgres"
	"github.com/devicedesk/devicedesk/internal/types"
	"go.uber.org/fx"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	fx.In

	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	ClientRepo   client.Repository
	ProviderRepo provider.Repository
	DeviceRepo   device.Repository
	SubRepo      subscription.Repository
	InvoiceRepo  invoice.Repository
	AlertRepo    alert.Repository

	// Infrastructure
	Cache       cache.Cache      `optional:"true"`
	EmailSender email.Sender     `optional:"true"`
	Metrics     *metrics.Metrics `optional:"true"`
}

// today is the current business date in the configured timezone.
func (p ServiceParams) today() time.Time {
	tz := ""
	if p.Config != nil {
		tz = p.Config.Deployment.Timezone
	}
	return types.BusinessDate(time.Now(), types.LoadBusinessLocation(tz))
}

func (p ServiceParams) cacheTTL() time.Duration {
	if p.Config == nil || p.Config.Cache.TTL <= 0 {
		return time.Minute
	}
	return p.Config.Cache.TTL
}

// invalidateTenantCache drops the cached read models of the tenant in ctx
// after a write that changes revenue, alerts or counts.
func (p ServiceParams) invalidateTenantCache(ctx context.Context) {
	if p.Cache == nil {
		return
	}
	tenantID := types.GetTenantID(ctx)
	for _, prefix := range []string{cache.PrefixDashboard, cache.PrefixRevenue, cache.PrefixAlerts} {
		p.Cache.DeleteByPrefix(ctx, cache.GenerateKey(prefix, tenantID, ""))
	}
}

// linkError turns a missing referenced record into a validation error and
// passes other failures through.
func linkError(err error, field, id string) error {
	if !ierr.IsNotFound(err) {
		return err
	}
	return ierr.NewErrorf("%s %s does not exist", field, id).
		WithHintf("Referenced %s does not exist", strings.TrimSuffix(field, "_id")).
		WithReportableDetails(map[string]any{field: id}).
		Mark(ierr.ErrValidation)
}
