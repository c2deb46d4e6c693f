package types

import (
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/samber/lo"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

var SubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusActive,
	SubscriptionStatusPaused,
	SubscriptionStatusCancelled,
	SubscriptionStatusExpired,
}

func (s SubscriptionStatus) Validate() error {
	if !lo.Contains(SubscriptionStatuses, s) {
		return ierr.NewErrorf("invalid subscription status: %s", s).
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{"allowed": SubscriptionStatuses}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionFilter filters subscription listings.
type SubscriptionFilter struct {
	*QueryFilter
	SubscriptionIDs    []string             `json:"subscription_ids,omitempty" form:"subscription_ids"`
	ClientID           string               `json:"client_id,omitempty" form:"client_id"`
	DeviceID           string               `json:"device_id,omitempty" form:"device_id"`
	PlanName           string               `json:"plan_name,omitempty" form:"plan_name"`
	BillingCycle       BillingCycle         `json:"billing_cycle,omitempty" form:"billing_cycle"`
	SubscriptionStatus []SubscriptionStatus `json:"subscription_status,omitempty" form:"subscription_status"`
}

func NewSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *SubscriptionFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	if f.BillingCycle != "" {
		if err := f.BillingCycle.Validate(); err != nil {
			return err
		}
	}
	for _, s := range f.SubscriptionStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
