package subscription

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/domain/revenue"
	"github.com/devicedesk/devicedesk/internal/types"
)

type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	List(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)
	Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error)
	Update(ctx context.Context, s *Subscription) error
	Delete(ctx context.Context, id string) error

	// ListActiveRevenueRecords returns one record per active subscription with
	// GroupKey set to the attribute selected by groupBy.
	ListActiveRevenueRecords(ctx context.Context, groupBy types.RevenueGroupBy) ([]revenue.Record, error)
}
