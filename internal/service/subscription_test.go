package service

import (
	"testing"
	"time"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/testutil"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriptionService(newTestParams(&s.BaseServiceTestSuite))
	seedClient(&s.BaseServiceTestSuite, "cli_1", "Alice", "alice@x.test")
	seedDevice(&s.BaseServiceTestSuite, "dev_1", "SN-1", "router")
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *SubscriptionServiceSuite) TestCreateComputesNextInvoiceDate() {
	tests := []struct {
		name     string
		cycle    types.BillingCycle
		start    string
		wantNext time.Time
	}{
		{"monthly clamps to february", types.BillingCycleMonthly, "2024-01-31", date(2024, time.February, 29)},
		{"quarterly", types.BillingCycleQuarterly, "2024-01-15", date(2024, time.April, 15)},
		{"yearly", types.BillingCycleYearly, "2024-02-29", date(2025, time.February, 28)},
		{"one time invoices on start", types.BillingCycleOneTime, "2024-03-10", date(2024, time.March, 10)},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
				ClientID:     "cli_1",
				PlanName:     "Basic",
				Amount:       decimal.NewFromInt(120),
				BillingCycle: tt.cycle,
				StartDate:    tt.start,
			})
			s.Require().NoError(err)
			s.Require().NotNil(resp.NextInvoiceDate)
			s.True(tt.wantNext.Equal(*resp.NextInvoiceDate), "got %s", resp.NextInvoiceDate)
			s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
			s.Equal(dto.DefaultCurrency, resp.Currency)
		})
	}
}

func (s *SubscriptionServiceSuite) TestCreateKeepsExplicitNextInvoiceDate() {
	resp, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		ClientID:        "cli_1",
		DeviceID:        lo.ToPtr("dev_1"),
		PlanName:        "Basic",
		Amount:          decimal.NewFromInt(30),
		BillingCycle:    types.BillingCycleMonthly,
		StartDate:       "2024-01-01",
		NextInvoiceDate: "2024-01-15",
	})
	s.Require().NoError(err)
	s.True(date(2024, time.January, 15).Equal(*resp.NextInvoiceDate))
	s.True(decimal.NewFromInt(30).Equal(resp.MonthlyAmount))
}

func (s *SubscriptionServiceSuite) TestCreateValidation() {
	base := dto.CreateSubscriptionRequest{
		ClientID:     "cli_1",
		PlanName:     "Basic",
		Amount:       decimal.NewFromInt(10),
		BillingCycle: types.BillingCycleMonthly,
		StartDate:    "2024-01-01",
	}

	tests := []struct {
		name   string
		mutate func(r *dto.CreateSubscriptionRequest)
	}{
		{"negative amount", func(r *dto.CreateSubscriptionRequest) { r.Amount = decimal.NewFromInt(-1) }},
		{"unknown cycle", func(r *dto.CreateSubscriptionRequest) { r.BillingCycle = "weekly" }},
		{"missing start", func(r *dto.CreateSubscriptionRequest) { r.StartDate = "" }},
		{"end before start", func(r *dto.CreateSubscriptionRequest) { r.EndDate = "2023-12-31" }},
		{"unknown client", func(r *dto.CreateSubscriptionRequest) { r.ClientID = "cli_missing" }},
		{"unknown device", func(r *dto.CreateSubscriptionRequest) { r.DeviceID = lo.ToPtr("dev_missing") }},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := base
			tt.mutate(&req)
			_, err := s.service.CreateSubscription(s.GetContext(), req)
			s.True(ierr.IsValidation(err), "error: %v", err)
		})
	}
}

func (s *SubscriptionServiceSuite) TestUpdateCycleRecomputesNextInvoiceDate() {
	created, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		ClientID:     "cli_1",
		PlanName:     "Basic",
		Amount:       decimal.NewFromInt(90),
		BillingCycle: types.BillingCycleMonthly,
		StartDate:    "2024-01-31",
	})
	s.Require().NoError(err)

	updated, err := s.service.UpdateSubscription(s.GetContext(), created.ID, dto.UpdateSubscriptionRequest{
		BillingCycle: lo.ToPtr(types.BillingCycleQuarterly),
	})
	s.Require().NoError(err)
	s.True(date(2024, time.April, 30).Equal(*updated.NextInvoiceDate))
	s.True(decimal.NewFromInt(30).Equal(updated.MonthlyAmount))
}

func (s *SubscriptionServiceSuite) TestGetSubscriptionsFilters() {
	seedSubscription(&s.BaseServiceTestSuite, "sub_1", "cli_1", "Basic", "10", types.BillingCycleMonthly, nil)
	seedSubscription(&s.BaseServiceTestSuite, "sub_2", "cli_1", "Pro", "300", types.BillingCycleYearly, nil)

	filter := types.NewSubscriptionFilter()
	filter.BillingCycle = types.BillingCycleYearly
	resp, err := s.service.GetSubscriptions(s.GetContext(), filter)
	s.NoError(err)
	s.Require().Len(resp.Items, 1)
	s.Equal("sub_2", resp.Items[0].ID)
	s.True(decimal.NewFromInt(25).Equal(resp.Items[0].MonthlyAmount))
}
