package service

import (
	"bytes"
	"testing"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/domain/revenue"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/testutil"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
)

type RevenueServiceSuite struct {
	testutil.BaseServiceTestSuite
	service RevenueService
}

func TestRevenueService(t *testing.T) {
	suite.Run(t, new(RevenueServiceSuite))
}

func (s *RevenueServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewRevenueService(newTestParams(&s.BaseServiceTestSuite))

	b := &s.BaseServiceTestSuite
	seedClient(b, "cli_1", "Alice", "alice@x.test")
	seedClient(b, "cli_2", "Bob", "bob@x.test")
	seedDevice(b, "dev_1", "SN-1", "laptop")
	seedSubscription(b, "sub_1", "cli_1", "Basic", "30", types.BillingCycleMonthly, lo.ToPtr("dev_1"))
	seedSubscription(b, "sub_2", "cli_2", "Pro", "120", types.BillingCycleYearly, nil)
}

func (s *RevenueServiceSuite) TestGetMRRByPlan() {
	resp, err := s.service.GetMRR(s.GetContext(), dto.GetMRRRequest{})
	s.Require().NoError(err)
	s.Equal(types.RevenueGroupByPlan, resp.GroupBy)
	s.True(decimal.NewFromInt(40).Equal(resp.Total), "got %s", resp.Total)
	s.Require().Len(resp.Buckets, 2)
	s.Equal("Basic", resp.Buckets[0].Key)
	s.True(decimal.NewFromInt(30).Equal(resp.Buckets[0].MonthlyTotal))
	s.Equal("Pro", resp.Buckets[1].Key)
	s.True(decimal.NewFromInt(10).Equal(resp.Buckets[1].MonthlyTotal))
}

func (s *RevenueServiceSuite) TestGetMRRGroupings() {
	tests := []struct {
		name    string
		groupBy types.RevenueGroupBy
		keys    []string
		labels  []string
	}{
		{"category", types.RevenueGroupByCategory, []string{"laptop", types.UnassignedGroupKey}, []string{"laptop", types.UnassignedGroupKey}},
		{"client", types.RevenueGroupByClient, []string{"cli_1", "cli_2"}, []string{"Alice", "Bob"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.GetCache().Flush(s.GetContext())
			resp, err := s.service.GetMRR(s.GetContext(), dto.GetMRRRequest{GroupBy: tt.groupBy})
			s.Require().NoError(err)
			s.True(decimal.NewFromInt(40).Equal(resp.Total))
			s.Equal(tt.keys, lo.Map(resp.Buckets, func(b revenue.Bucket, _ int) string { return b.Key }))
			s.Equal(tt.labels, lo.Map(resp.Buckets, func(b revenue.Bucket, _ int) string { return b.Label }))
		})
	}
}

func (s *RevenueServiceSuite) TestGetMRRTopN() {
	resp, err := s.service.GetMRR(s.GetContext(), dto.GetMRRRequest{TopN: 1})
	s.Require().NoError(err)
	s.Len(resp.Buckets, 1)
	// the total still covers every subscription
	s.True(decimal.NewFromInt(40).Equal(resp.Total))

	_, err = s.service.GetMRR(s.GetContext(), dto.GetMRRRequest{TopN: 101})
	s.True(ierr.IsValidation(err))

	_, err = s.service.GetMRR(s.GetContext(), dto.GetMRRRequest{GroupBy: "region"})
	s.True(ierr.IsValidation(err))
}

func (s *RevenueServiceSuite) TestGetMRRIgnoresInactiveSubscriptions() {
	sub := seedSubscription(&s.BaseServiceTestSuite, "sub_3", "cli_1", "Basic", "500", types.BillingCycleMonthly, nil)
	sub.SubscriptionStatus = types.SubscriptionStatusCancelled
	s.Require().NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))

	resp, err := s.service.GetMRR(s.GetContext(), dto.GetMRRRequest{})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(40).Equal(resp.Total))
}

func (s *RevenueServiceSuite) TestGetMRRIsCachedPerTenant() {
	first, err := s.service.GetMRR(s.GetContext(), dto.GetMRRRequest{})
	s.Require().NoError(err)

	// written straight to the store, so nothing invalidates the cache
	seedSubscription(&s.BaseServiceTestSuite, "sub_3", "cli_1", "Basic", "60", types.BillingCycleMonthly, nil)

	cached, err := s.service.GetMRR(s.GetContext(), dto.GetMRRRequest{})
	s.Require().NoError(err)
	s.True(first.Total.Equal(cached.Total))

	other, err := s.service.GetMRR(s.GetContextForTenant("tenant_other"), dto.GetMRRRequest{})
	s.Require().NoError(err)
	s.True(other.Total.IsZero())
	s.Empty(other.Buckets)

	s.GetCache().Flush(s.GetContext())
	fresh, err := s.service.GetMRR(s.GetContext(), dto.GetMRRRequest{})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(100).Equal(fresh.Total))
}

func (s *RevenueServiceSuite) TestExportRevenueXLSX() {
	data, err := s.service.ExportRevenueXLSX(s.GetContext())
	s.Require().NoError(err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	s.Require().NoError(err)
	defer func() { _ = f.Close() }()

	s.Equal([]string{"Summary", "By plan", "By category", "By client"}, f.GetSheetList())

	total, err := f.GetCellValue("Summary", "B2")
	s.Require().NoError(err)
	s.Equal("40", total)
	active, err := f.GetCellValue("Summary", "B3")
	s.Require().NoError(err)
	s.Equal("2", active)

	rows, err := f.GetRows("By client")
	s.Require().NoError(err)
	s.Equal([][]string{
		{"Key", "Label", "Monthly total"},
		{"cli_1", "Alice", "30"},
		{"cli_2", "Bob", "10"},
	}, rows)
}

func (s *RevenueServiceSuite) TestExportRevenueXLSXEmptyTenant() {
	data, err := s.service.ExportRevenueXLSX(s.GetContextForTenant("tenant_other"))
	s.Require().NoError(err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	s.Require().NoError(err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("By plan")
	s.Require().NoError(err)
	s.Len(rows, 1)
}
