package service

import (
	"context"
	"sync"
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

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(newTestParams(&s.BaseServiceTestSuite))
	seedClient(&s.BaseServiceTestSuite, "cli_1", "Alice", "alice@x.test")
}

func (s *InvoiceServiceSuite) TestCreateInvoice() {
	resp, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		ClientID:  "cli_1",
		Amount:    decimal.RequireFromString("49.90"),
		IssueDate: "2024-03-01",
	})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusDraft, resp.InvoiceStatus)
	s.True(date(2024, time.March, 15).Equal(resp.DueDate))
	s.Regexp(`^INV-202403-[0-9A-Z]{6}$`, resp.Number)
	s.False(resp.IsOverdue)

	_, err = s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		ClientID:  "cli_1",
		Amount:    decimal.NewFromInt(1),
		IssueDate: "2024-03-10",
		DueDate:   "2024-03-01",
	})
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		ClientID:      "cli_1",
		Amount:        decimal.NewFromInt(1),
		InvoiceStatus: types.InvoiceStatusPaid,
	})
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestCreateFromSubscriptionAdvancesNextInvoiceDate() {
	sub := seedSubscription(&s.BaseServiceTestSuite, "sub_1", "cli_1", "Basic", "25", types.BillingCycleMonthly, nil)
	s.Require().True(date(2024, time.February, 29).Equal(*sub.NextInvoiceDate))

	first, err := s.service.CreateFromSubscription(s.GetContext(), sub.ID, dto.CreateInvoiceFromSubscriptionRequest{})
	s.Require().NoError(err)
	s.True(date(2024, time.February, 29).Equal(first.IssueDate))
	s.True(date(2024, time.March, 14).Equal(first.DueDate))
	s.Equal(types.InvoiceStatusSent, first.InvoiceStatus)
	s.True(decimal.NewFromInt(25).Equal(first.Amount))
	s.Equal(sub.ID, lo.FromPtr(first.SubscriptionID))

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.True(date(2024, time.March, 29).Equal(*stored.NextInvoiceDate))

	s.Equal([]string{"subscription_invoice:sub_1"}, s.GetDB().LockedKeys())
	s.Equal(1, s.GetDB().TxCount)

	second, err := s.service.CreateFromSubscription(s.GetContext(), sub.ID, dto.CreateInvoiceFromSubscriptionRequest{DueDays: lo.ToPtr(0)})
	s.Require().NoError(err)
	s.True(date(2024, time.March, 29).Equal(second.IssueDate))
	s.True(second.IssueDate.Equal(second.DueDate))
}

func (s *InvoiceServiceSuite) TestCreateFromSubscriptionRejectsInactive() {
	sub := seedSubscription(&s.BaseServiceTestSuite, "sub_1", "cli_1", "Basic", "25", types.BillingCycleMonthly, nil)
	sub.SubscriptionStatus = types.SubscriptionStatusPaused
	s.Require().NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))

	_, err := s.service.CreateFromSubscription(s.GetContext(), sub.ID, dto.CreateInvoiceFromSubscriptionRequest{})
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.CreateFromSubscription(s.GetContext(), "sub_missing", dto.CreateInvoiceFromSubscriptionRequest{})
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestOneTimeSubscriptionInvoicesOnce() {
	sub := seedSubscription(&s.BaseServiceTestSuite, "sub_1", "cli_1", "Setup", "99", types.BillingCycleOneTime, nil)

	_, err := s.service.CreateFromSubscription(s.GetContext(), sub.ID, dto.CreateInvoiceFromSubscriptionRequest{})
	s.Require().NoError(err)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.Nil(stored.NextInvoiceDate)

	_, err = s.service.CreateFromSubscription(s.GetContext(), sub.ID, dto.CreateInvoiceFromSubscriptionRequest{})
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestMarkPaid() {
	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		ClientID:      "cli_1",
		Amount:        decimal.NewFromInt(10),
		InvoiceStatus: types.InvoiceStatusSent,
	})
	s.Require().NoError(err)

	paidAt := time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)
	paid, err := s.service.MarkPaid(s.GetContext(), created.ID, dto.MarkInvoicePaidRequest{PaidAt: &paidAt})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusPaid, paid.InvoiceStatus)
	s.True(paidAt.Equal(*paid.PaidAt))

	again, err := s.service.MarkPaid(s.GetContext(), created.ID, dto.MarkInvoicePaidRequest{})
	s.NoError(err)
	s.True(paidAt.Equal(*again.PaidAt))

	_, err = s.service.UpdateInvoice(s.GetContext(), created.ID, dto.UpdateInvoiceRequest{Notes: lo.ToPtr("late")})
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestMarkPaidRejectsVoid() {
	created, err := s.service.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		ClientID:      "cli_1",
		Amount:        decimal.NewFromInt(10),
		InvoiceStatus: types.InvoiceStatusVoid,
	})
	s.Require().NoError(err)

	_, err = s.service.MarkPaid(s.GetContext(), created.ID, dto.MarkInvoicePaidRequest{})
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestConcurrentInvoicingLocksEachCall() {
	sub := seedSubscription(&s.BaseServiceTestSuite, "sub_1", "cli_1", "Basic", "25", types.BillingCycleMonthly, nil)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(ctx context.Context) {
			defer wg.Done()
			_, _ = s.service.CreateFromSubscription(ctx, sub.ID, dto.CreateInvoiceFromSubscriptionRequest{})
		}(s.GetContext())
	}
	wg.Wait()

	s.NotEmpty(s.GetDB().LockedKeys())
	for _, key := range s.GetDB().LockedKeys() {
		s.Equal("subscription_invoice:sub_1", key)
	}
}
