package internal

import (
	"testing"
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/subscription"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestDueSubscriptions(t *testing.T) {
	today := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	sub := func(id string, status types.SubscriptionStatus, next *time.Time) *subscription.Subscription {
		return &subscription.Subscription{ID: id, SubscriptionStatus: status, NextInvoiceDate: next}
	}

	subs := []*subscription.Subscription{
		sub("sub_past", types.SubscriptionStatusActive, lo.ToPtr(today.AddDate(0, 0, -3))),
		sub("sub_today", types.SubscriptionStatusActive, lo.ToPtr(today)),
		sub("sub_future", types.SubscriptionStatusActive, lo.ToPtr(today.AddDate(0, 0, 1))),
		sub("sub_paused", types.SubscriptionStatusPaused, lo.ToPtr(today.AddDate(0, 0, -3))),
		sub("sub_invoiced_once", types.SubscriptionStatusActive, nil),
	}

	due := dueSubscriptions(subs, today)
	assert.Equal(t, []string{"sub_past", "sub_today"}, lo.Map(due, func(s *subscription.Subscription, _ int) string { return s.ID }))
}
