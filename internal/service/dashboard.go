package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/cache"
	"github.com/devicedesk/devicedesk/internal/domain/alert"
	"github.com/devicedesk/devicedesk/internal/domain/revenue"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/sourcegraph/conc"
)

// dashboardTopAlerts is how many ranked alerts the dashboard card lists.
const dashboardTopAlerts = 5

// DashboardService provides dashboard functionality
type DashboardService interface {
	GetDashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	ServiceParams
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(params ServiceParams) DashboardService {
	return &dashboardService{ServiceParams: params}
}

// GetDashboard loads every card concurrently. A failing card is logged and
// reported in Errors while the others are still returned; complete results
// are cached per tenant.
func (s *dashboardService) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	topN := s.Config.Dashboard.TopN
	if topN <= 0 {
		topN = types.DefaultDashboardTopN
	}

	key := cache.GenerateKey(cache.PrefixDashboard, types.GetTenantID(ctx), strconv.Itoa(topN))
	if s.Cache != nil {
		if v, ok := s.Cache.Get(ctx, key); ok {
			if resp, ok := cache.UnmarshalCacheValue[dto.DashboardResponse](v); ok {
				s.Metrics.IncCacheLookup(cache.PrefixDashboard, true)
				return resp, nil
			}
		}
		s.Metrics.IncCacheLookup(cache.PrefixDashboard, false)
	}

	resp := &dto.DashboardResponse{GeneratedAt: time.Now().UTC()}
	var (
		mu sync.Mutex
		wg conc.WaitGroup
	)
	fail := func(section string, err error) {
		s.Logger.WithContext(ctx).Errorw("failed to load dashboard section",
			"section", section,
			"error", err,
		)
		mu.Lock()
		resp.Errors = append(resp.Errors, section)
		mu.Unlock()
	}

	groups := []struct {
		groupBy types.RevenueGroupBy
		target  *[]revenue.Bucket
	}{
		{types.RevenueGroupByPlan, &resp.MRRByPlan},
		{types.RevenueGroupByCategory, &resp.MRRByCategory},
		{types.RevenueGroupByClient, &resp.MRRByClient},
	}
	for _, g := range groups {
		wg.Go(func() {
			records, err := s.SubRepo.ListActiveRevenueRecords(ctx, g.groupBy)
			if err != nil {
				fail("mrr_by_"+string(g.groupBy), err)
				return
			}
			buckets := revenue.GroupMRR(records, topN)
			mu.Lock()
			*g.target = buckets
			// every grouping sees the same active set, so plan carries the total
			if g.groupBy == types.RevenueGroupByPlan {
				resp.MRRTotal = revenue.TotalMRR(records)
			}
			mu.Unlock()
		})
	}

	wg.Go(func() {
		rows, err := s.AlertRepo.ListRawAlerts(ctx, s.Config.Alerts.Thresholds())
		if err != nil {
			fail("alerts", err)
			return
		}
		ranked := alert.Rank(rows)
		mu.Lock()
		resp.AlertCounts = alert.CountBySeverity(ranked)
		resp.TopAlerts = alert.Filter(ranked, &types.AlertFilter{Limit: dashboardTopAlerts})
		mu.Unlock()
	})

	wg.Go(func() {
		counts, err := s.entityCounts(ctx)
		if err != nil {
			fail("counts", err)
			return
		}
		mu.Lock()
		resp.Counts = *counts
		mu.Unlock()
	})

	wg.Wait()

	if len(resp.Errors) == 0 && s.Cache != nil {
		s.Cache.Set(ctx, key, resp, s.cacheTTL())
	}
	return resp, nil
}

func (s *dashboardService) entityCounts(ctx context.Context) (*types.EntityCounts, error) {
	var (
		counts types.EntityCounts
		err    error
	)

	if counts.Clients, err = s.ClientRepo.Count(ctx, types.NewNoLimitClientFilter()); err != nil {
		return nil, err
	}
	if counts.Providers, err = s.ProviderRepo.Count(ctx, types.NewNoLimitProviderFilter()); err != nil {
		return nil, err
	}
	if counts.Devices, err = s.DeviceRepo.Count(ctx, types.NewNoLimitDeviceFilter()); err != nil {
		return nil, err
	}

	assigned := types.NewNoLimitDeviceFilter()
	assigned.DeviceStatus = []types.DeviceStatus{types.DeviceStatusAssigned}
	if counts.DevicesAssigned, err = s.DeviceRepo.Count(ctx, assigned); err != nil {
		return nil, err
	}

	maintenance := types.NewNoLimitDeviceFilter()
	maintenance.DeviceStatus = []types.DeviceStatus{types.DeviceStatusMaintenance}
	if counts.DevicesMaintenance, err = s.DeviceRepo.Count(ctx, maintenance); err != nil {
		return nil, err
	}

	active := types.NewNoLimitSubscriptionFilter()
	active.SubscriptionStatus = []types.SubscriptionStatus{types.SubscriptionStatusActive}
	if counts.ActiveSubscriptions, err = s.SubRepo.Count(ctx, active); err != nil {
		return nil, err
	}

	open := types.NewNoLimitInvoiceFilter()
	open.InvoiceStatus = []types.InvoiceStatus{types.InvoiceStatusSent, types.InvoiceStatusOverdue}
	if counts.OpenInvoices, err = s.InvoiceRepo.Count(ctx, open); err != nil {
		return nil, err
	}
	return &counts, nil
}
