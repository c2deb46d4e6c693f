package service

import (
	"testing"
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/alert"
	"github.com/devicedesk/devicedesk/internal/domain/invoice"
	"github.com/devicedesk/devicedesk/internal/domain/provider"
	"github.com/devicedesk/devicedesk/internal/domain/revenue"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/testutil"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DashboardServiceSuite struct {
	testutil.BaseServiceTestSuite
	service DashboardService
}

func TestDashboardService(t *testing.T) {
	suite.Run(t, new(DashboardServiceSuite))
}

func (s *DashboardServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDashboardService(newTestParams(&s.BaseServiceTestSuite))
	s.seed()
}

func (s *DashboardServiceSuite) seed() {
	b := &s.BaseServiceTestSuite
	ctx := s.GetContext()

	seedClient(b, "cli_1", "Alice", "alice@x.test")
	seedClient(b, "cli_2", "Bob", "bob@x.test")
	s.Require().NoError(s.GetStores().ProviderRepo.Create(ctx, &provider.Provider{
		ID:        "prv_1",
		Name:      "Acme Leasing",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))

	laptop := seedDevice(b, "dev_1", "SN-1", "laptop")
	laptop.DeviceStatus = types.DeviceStatusAssigned
	laptop.ClientID = lo.ToPtr("cli_1")
	s.Require().NoError(s.GetStores().DeviceRepo.Update(ctx, laptop))
	phone := seedDevice(b, "dev_2", "SN-2", "phone")
	phone.DeviceStatus = types.DeviceStatusMaintenance
	s.Require().NoError(s.GetStores().DeviceRepo.Update(ctx, phone))
	seedDevice(b, "dev_3", "SN-3", "laptop")

	seedSubscription(b, "sub_1", "cli_1", "Basic", "30", types.BillingCycleMonthly, lo.ToPtr("dev_1"))
	seedSubscription(b, "sub_2", "cli_2", "Pro", "120", types.BillingCycleYearly, lo.ToPtr("dev_2"))
	paused := seedSubscription(b, "sub_3", "cli_2", "Pro", "99", types.BillingCycleMonthly, nil)
	paused.SubscriptionStatus = types.SubscriptionStatusPaused
	s.Require().NoError(s.GetStores().SubscriptionRepo.Update(ctx, paused))

	issued := date(2024, time.March, 1)
	for i, status := range []types.InvoiceStatus{types.InvoiceStatusSent, types.InvoiceStatusOverdue, types.InvoiceStatusPaid, types.InvoiceStatusDraft} {
		s.Require().NoError(s.GetStores().InvoiceRepo.Create(ctx, &invoice.Invoice{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
			Number:        "INV-" + string(rune('A'+i)),
			ClientID:      "cli_1",
			Amount:        decimal.NewFromInt(10),
			Currency:      "usd",
			InvoiceStatus: status,
			IssueDate:     issued,
			DueDate:       issued.AddDate(0, 0, 14),
			BaseModel:     types.GetDefaultBaseModel(ctx),
		}))
	}

	s.GetStores().AlertRepo.SetRows(testutil.DefaultTenantID, []alert.RawAlertRow{
		{ID: "inv_1", AlertType: "overdue_invoice", Severity: "high", DateVal: "2024-03-15", Title: "Overdue"},
		{ID: "dev_2", AlertType: "device_maintenance_long", Severity: "medium", DateVal: "2024-01-01", Title: "Maintenance"},
		{ID: "sub_1", AlertType: "renewal_due", Severity: "low", DateVal: "2024-02-29", Title: "Renewal"},
	})
}

func (s *DashboardServiceSuite) TestGetDashboard() {
	resp, err := s.service.GetDashboard(s.GetContext())
	s.Require().NoError(err)
	s.Empty(resp.Errors)

	s.True(decimal.NewFromInt(40).Equal(resp.MRRTotal), "got %s", resp.MRRTotal)
	s.Equal([]string{"Basic", "Pro"}, lo.Map(resp.MRRByPlan, func(b revenue.Bucket, _ int) string { return b.Key }))
	s.Equal([]string{"laptop", "phone"}, lo.Map(resp.MRRByCategory, func(b revenue.Bucket, _ int) string { return b.Key }))
	s.Equal([]string{"Alice", "Bob"}, lo.Map(resp.MRRByClient, func(b revenue.Bucket, _ int) string { return b.Label }))

	s.Equal(types.AlertSeverityCounts{High: 1, Medium: 1, Low: 1, Total: 3}, resp.AlertCounts)
	s.Equal([]string{"inv_1", "dev_2", "sub_1"}, alertIDs(resp.TopAlerts))

	s.Equal(types.EntityCounts{
		Clients:             2,
		Providers:           1,
		Devices:             3,
		DevicesAssigned:     1,
		DevicesMaintenance:  1,
		ActiveSubscriptions: 2,
		OpenInvoices:        2,
	}, resp.Counts)
}

func (s *DashboardServiceSuite) TestGetDashboardIsTenantScoped() {
	resp, err := s.service.GetDashboard(s.GetContextForTenant("tenant_other"))
	s.Require().NoError(err)
	s.True(resp.MRRTotal.IsZero())
	s.Empty(resp.MRRByPlan)
	s.Empty(resp.TopAlerts)
	s.Equal(types.EntityCounts{}, resp.Counts)
}

func (s *DashboardServiceSuite) TestGetDashboardIsCached() {
	first, err := s.service.GetDashboard(s.GetContext())
	s.Require().NoError(err)
	calls := s.GetStores().AlertRepo.Calls

	seedClient(&s.BaseServiceTestSuite, "cli_3", "Carol", "carol@x.test")
	second, err := s.service.GetDashboard(s.GetContext())
	s.Require().NoError(err)
	s.Equal(first.Counts, second.Counts)
	s.Equal(calls, s.GetStores().AlertRepo.Calls)

	s.GetCache().Flush(s.GetContext())
	third, err := s.service.GetDashboard(s.GetContext())
	s.Require().NoError(err)
	s.Equal(3, third.Counts.Clients)
}

func (s *DashboardServiceSuite) TestGetDashboardPartialFailure() {
	s.GetStores().AlertRepo.SetError(ierr.NewError("alerts query failed").Mark(ierr.ErrDatabase))

	resp, err := s.service.GetDashboard(s.GetContext())
	s.Require().NoError(err)
	s.Equal([]string{"alerts"}, resp.Errors)
	s.Empty(resp.TopAlerts)
	// the other cards are still filled in
	s.True(decimal.NewFromInt(40).Equal(resp.MRRTotal))
	s.Equal(2, resp.Counts.Clients)

	// partial results are not cached
	s.GetStores().AlertRepo.SetError(nil)
	resp, err = s.service.GetDashboard(s.GetContext())
	s.Require().NoError(err)
	s.Empty(resp.Errors)
	s.Equal(3, resp.AlertCounts.Total)
}
