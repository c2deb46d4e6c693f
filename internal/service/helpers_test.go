package service

import (
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/client"
	"github.com/devicedesk/devicedesk/internal/domain/device"
	"github.com/devicedesk/devicedesk/internal/domain/subscription"
	"github.com/devicedesk/devicedesk/internal/testutil"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func newTestParams(b *testutil.BaseServiceTestSuite) ServiceParams {
	stores := b.GetStores()
	return ServiceParams{
		Logger:       b.GetLogger(),
		Config:       b.GetConfig(),
		DB:           b.GetDB(),
		ClientRepo:   stores.ClientRepo,
		ProviderRepo: stores.ProviderRepo,
		DeviceRepo:   stores.DeviceRepo,
		SubRepo:      stores.SubscriptionRepo,
		InvoiceRepo:  stores.InvoiceRepo,
		AlertRepo:    stores.AlertRepo,
		Cache:        b.GetCache(),
		EmailSender:  b.GetEmailSender(),
		Metrics:      b.GetMetrics(),
	}
}

func seedClient(b *testutil.BaseServiceTestSuite, id, name, email string) *client.Client {
	c := &client.Client{
		ID:        id,
		Name:      name,
		Email:     email,
		BaseModel: types.GetDefaultBaseModel(b.GetContext()),
	}
	b.Require().NoError(b.GetStores().ClientRepo.Create(b.GetContext(), c))
	return c
}

func seedDevice(b *testutil.BaseServiceTestSuite, id, serial, category string) *device.Device {
	d := &device.Device{
		ID:           id,
		Name:         "Device " + serial,
		SerialNumber: serial,
		Category:     category,
		DeviceStatus: types.DeviceStatusInStock,
		BaseModel:    types.GetDefaultBaseModel(b.GetContext()),
	}
	b.Require().NoError(b.GetStores().DeviceRepo.Create(b.GetContext(), d))
	return d
}

func seedSubscription(b *testutil.BaseServiceTestSuite, id, clientID, plan, amount string, cycle types.BillingCycle, deviceID *string) *subscription.Subscription {
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	sub := &subscription.Subscription{
		ID:                 id,
		ClientID:           clientID,
		DeviceID:           deviceID,
		PlanName:           plan,
		Amount:             decimal.RequireFromString(amount),
		Currency:           "usd",
		BillingCycle:       cycle,
		SubscriptionStatus: types.SubscriptionStatusActive,
		StartDate:          start,
		NextInvoiceDate:    lo.ToPtr(types.AddMonthsClamped(start, lo.Max([]int{cycle.Months(), 1}))),
		BaseModel:          types.GetDefaultBaseModel(b.GetContext()),
	}
	b.Require().NoError(b.GetStores().SubscriptionRepo.Create(b.GetContext(), sub))
	return sub
}
