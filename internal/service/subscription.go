package service

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/domain/subscription"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	GetSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error)
	UpdateSubscription(ctx context.Context, id string, req dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	DeleteSubscription(ctx context.Context, id string) error
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

// CreateSubscription stores a new subscription. When no next invoice date is
// given, it is one billing cycle after the start date, or the start date
// itself for one-time charges.
func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub := req.ToSubscription(ctx)
	if err := s.validateLinks(ctx, sub); err != nil {
		return nil, err
	}
	if sub.NextInvoiceDate == nil {
		resetNextInvoiceDate(sub)
	}

	if err := s.SubRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.invalidateTenantCache(ctx)

	s.Logger.WithContext(ctx).Infow("created subscription",
		"subscription_id", sub.ID,
		"client_id", sub.ClientID,
		"billing_cycle", sub.BillingCycle,
		"amount", sub.Amount.String(),
	)
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	if id == "" {
		return nil, ierr.NewError("subscription_id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation)
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.SubRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListSubscriptionsResponse{
		Items:      lo.Map(subs, func(sub *subscription.Subscription, _ int) *dto.SubscriptionResponse { return dto.NewSubscriptionResponse(sub) }),
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *subscriptionService) UpdateSubscription(ctx context.Context, id string, req dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Apply(sub) {
		resetNextInvoiceDate(sub)
	}
	if sub.EndDate != nil && sub.EndDate.Before(sub.StartDate) {
		return nil, ierr.NewError("end_date is before start_date").
			WithHint("End date must be on or after the start date").
			Mark(ierr.ErrValidation)
	}
	if err := s.validateLinks(ctx, sub); err != nil {
		return nil, err
	}
	sub.UpdatedBy = types.GetUserID(ctx)

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	s.invalidateTenantCache(ctx)
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) DeleteSubscription(ctx context.Context, id string) error {
	if err := s.SubRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateTenantCache(ctx)
	return nil
}

func (s *subscriptionService) validateLinks(ctx context.Context, sub *subscription.Subscription) error {
	if _, err := s.ClientRepo.Get(ctx, sub.ClientID); err != nil {
		return linkError(err, "client_id", sub.ClientID)
	}
	if sub.DeviceID != nil {
		if _, err := s.DeviceRepo.Get(ctx, *sub.DeviceID); err != nil {
			return linkError(err, "device_id", *sub.DeviceID)
		}
	}
	return nil
}

func resetNextInvoiceDate(sub *subscription.Subscription) {
	if !sub.BillingCycle.IsRecurring() {
		start := sub.StartDate
		sub.NextInvoiceDate = &start
		return
	}
	sub.NextInvoiceDate = nil
	sub.AdvanceNextInvoiceDate()
}
