package service

import (
	"context"
	"time"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/domain/invoice"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	GetInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error

	// CreateFromSubscription issues the next invoice of an active
	// subscription and advances its next invoice date by one cycle.
	CreateFromSubscription(ctx context.Context, subscriptionID string, req dto.CreateInvoiceFromSubscriptionRequest) (*dto.InvoiceResponse, error)
	MarkPaid(ctx context.Context, id string, req dto.MarkInvoicePaidRequest) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{ServiceParams: params}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	today := s.today()
	inv := req.ToInvoice(ctx, today)
	if _, err := s.ClientRepo.Get(ctx, inv.ClientID); err != nil {
		return nil, linkError(err, "client_id", inv.ClientID)
	}
	if inv.SubscriptionID != nil {
		if _, err := s.SubRepo.Get(ctx, *inv.SubscriptionID); err != nil {
			return nil, linkError(err, "subscription_id", *inv.SubscriptionID)
		}
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}
	s.invalidateTenantCache(ctx)

	s.Logger.WithContext(ctx).Infow("created invoice",
		"invoice_id", inv.ID,
		"number", inv.Number,
		"amount", inv.Amount.String(),
	)
	return dto.NewInvoiceResponse(inv, today), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice_id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv, s.today()), nil
}

func (s *invoiceService) GetInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	today := s.today()
	return &dto.ListInvoicesResponse{
		Items:      lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse { return dto.NewInvoiceResponse(inv, today) }),
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceStatus == types.InvoiceStatusPaid || inv.InvoiceStatus == types.InvoiceStatusVoid {
		return nil, ierr.NewErrorf("invoice is %s", inv.InvoiceStatus).
			WithHintf("A %s invoice cannot be changed", inv.InvoiceStatus).
			WithReportableDetails(map[string]any{"invoice_id": id, "invoice_status": inv.InvoiceStatus}).
			Mark(ierr.ErrInvalidOperation)
	}

	req.Apply(inv)
	if inv.DueDate.Before(inv.IssueDate) {
		return nil, ierr.NewError("due_date is before issue_date").
			WithHint("Due date must be on or after the issue date").
			Mark(ierr.ErrValidation)
	}
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	s.invalidateTenantCache(ctx)
	return dto.NewInvoiceResponse(inv, s.today()), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	if err := s.InvoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateTenantCache(ctx)
	return nil
}

func (s *invoiceService) CreateFromSubscription(ctx context.Context, subscriptionID string, req dto.CreateInvoiceFromSubscriptionRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if subscriptionID == "" {
		return nil, ierr.NewError("subscription_id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation)
	}

	today := s.today()
	var inv *invoice.Invoice

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		// Serialise invoicing per subscription so concurrent clicks cannot
		// issue two invoices for the same period.
		if err := s.DB.LockKey(ctx, "subscription_invoice:"+subscriptionID); err != nil {
			return err
		}

		sub, err := s.SubRepo.Get(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if !sub.IsActive() {
			return ierr.NewErrorf("subscription is %s", sub.SubscriptionStatus).
				WithHint("Only active subscriptions can be invoiced").
				WithReportableDetails(map[string]any{
					"subscription_id":     sub.ID,
					"subscription_status": sub.SubscriptionStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		if !sub.BillingCycle.IsRecurring() && sub.NextInvoiceDate == nil {
			return ierr.NewError("one-time subscription already invoiced").
				WithHint("This one-time subscription has already been invoiced").
				WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
				Mark(ierr.ErrInvalidOperation)
		}

		fallback := today
		if sub.NextInvoiceDate != nil {
			fallback = *sub.NextInvoiceDate
		}
		issue := req.IssueDateOr(fallback)

		id := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
		inv = &invoice.Invoice{
			ID:             id,
			Number:         invoice.GenerateNumber(id, issue),
			ClientID:       sub.ClientID,
			SubscriptionID: lo.ToPtr(sub.ID),
			Amount:         sub.Amount,
			Currency:       sub.Currency,
			InvoiceStatus:  types.InvoiceStatusSent,
			IssueDate:      issue,
			DueDate:        issue.AddDate(0, 0, req.GetDueDays()),
			Notes:          req.Notes,
			BaseModel:      types.GetDefaultBaseModel(ctx),
		}
		if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
			return err
		}

		sub.AdvanceNextInvoiceDate()
		sub.UpdatedBy = types.GetUserID(ctx)
		return s.SubRepo.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateTenantCache(ctx)

	s.Logger.WithContext(ctx).Infow("issued invoice from subscription",
		"invoice_id", inv.ID,
		"subscription_id", subscriptionID,
		"issue_date", types.FormatDate(&inv.IssueDate),
	)
	return dto.NewInvoiceResponse(inv, today), nil
}

// MarkPaid is idempotent for invoices that are already paid.
func (s *invoiceService) MarkPaid(ctx context.Context, id string, req dto.MarkInvoicePaidRequest) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch inv.InvoiceStatus {
	case types.InvoiceStatusPaid:
		return dto.NewInvoiceResponse(inv, s.today()), nil
	case types.InvoiceStatusVoid:
		return nil, ierr.NewError("invoice is void").
			WithHint("A void invoice cannot be paid").
			WithReportableDetails(map[string]any{"invoice_id": id}).
			Mark(ierr.ErrInvalidOperation)
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.PaidAt = &paidAt
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	s.invalidateTenantCache(ctx)
	return dto.NewInvoiceResponse(inv, s.today()), nil
}
