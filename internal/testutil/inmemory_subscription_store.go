package testutil

import (
	"context"
	"strings"

	"github.com/devicedesk/devicedesk/internal/domain/revenue"
	"github.com/devicedesk/devicedesk/internal/domain/subscription"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository. Revenue
// grouping by category and client resolves through the device and client
// stores it is linked to.
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
	devices *InMemoryDeviceStore
	clients *InMemoryClientStore
}

func NewInMemorySubscriptionStore(devices *InMemoryDeviceStore, clients *InMemoryClientStore) *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
		devices:       devices,
		clients:       clients,
	}
}

func copySubscription(s *subscription.Subscription) *subscription.Subscription {
	if s == nil {
		return nil
	}
	cp := *s
	if s.DeviceID != nil {
		cp.DeviceID = lo.ToPtr(*s.DeviceID)
	}
	if s.NextInvoiceDate != nil {
		cp.NextInvoiceDate = lo.ToPtr(*s.NextInvoiceDate)
	}
	if s.EndDate != nil {
		cp.EndDate = lo.ToPtr(*s.EndDate)
	}
	return &cp
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenantFilter(ctx, sub.BaseModel) {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if filter == nil {
		filter = types.NewNoLimitSubscriptionFilter()
	}
	items, err := s.InMemoryStore.List(ctx, filter, subscriptionFilterFn, func(i, j *subscription.Subscription) bool {
		return sortByCreatedAt(i.BaseModel, j.BaseModel, i.ID, j.ID)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

func (s *InMemorySubscriptionStore) Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, subscriptionFilterFn)
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if _, err := s.Get(ctx, sub.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Delete(ctx context.Context, id string) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sub.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, sub)
}

func (s *InMemorySubscriptionStore) ListActiveRevenueRecords(ctx context.Context, groupBy types.RevenueGroupBy) ([]revenue.Record, error) {
	filter := types.NewNoLimitSubscriptionFilter()
	filter.SubscriptionStatus = []types.SubscriptionStatus{types.SubscriptionStatusActive}

	subs, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	records := make([]revenue.Record, 0, len(subs))
	for _, sub := range subs {
		rec := revenue.Record{Amount: sub.Amount, BillingCycle: sub.BillingCycle}
		switch groupBy {
		case types.RevenueGroupByPlan:
			rec.GroupKey = sub.PlanName
		case types.RevenueGroupByCategory:
			if sub.DeviceID != nil && s.devices != nil {
				if d, err := s.devices.Get(ctx, *sub.DeviceID); err == nil {
					rec.GroupKey = d.Category
				}
			}
		case types.RevenueGroupByClient:
			rec.GroupKey = sub.ClientID
			if s.clients != nil {
				if c, err := s.clients.Get(ctx, sub.ClientID); err == nil {
					rec.GroupLabel = c.Name
				}
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func subscriptionFilterFn(ctx context.Context, sub *subscription.Subscription, filter interface{}) bool {
	if sub == nil || !CheckTenantFilter(ctx, sub.BaseModel) {
		return false
	}
	f, ok := filter.(*types.SubscriptionFilter)
	if !ok || f == nil {
		return true
	}
	if len(f.SubscriptionIDs) > 0 && !lo.Contains(f.SubscriptionIDs, sub.ID) {
		return false
	}
	if f.ClientID != "" && sub.ClientID != f.ClientID {
		return false
	}
	if f.DeviceID != "" && lo.FromPtr(sub.DeviceID) != f.DeviceID {
		return false
	}
	if f.PlanName != "" && !strings.EqualFold(f.PlanName, sub.PlanName) {
		return false
	}
	if f.BillingCycle != "" && sub.BillingCycle != f.BillingCycle {
		return false
	}
	if len(f.SubscriptionStatus) > 0 && !lo.Contains(f.SubscriptionStatus, sub.SubscriptionStatus) {
		return false
	}
	return matchesSearch(f.GetSearch(), sub.PlanName)
}
