package dto

import (
	"context"
	"strings"
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/invoice"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/devicedesk/devicedesk/internal/validator"
	"github.com/shopspring/decimal"
)

// DefaultInvoiceDueDays is the payment term applied when no due date is given.
const DefaultInvoiceDueDays = 14

type CreateInvoiceRequest struct {
	ClientID       string              `json:"client_id" validate:"required"`
	SubscriptionID *string             `json:"subscription_id,omitempty"`
	Amount         decimal.Decimal     `json:"amount" swaggertype:"string"`
	Currency       string              `json:"currency,omitempty" validate:"omitempty,len=3"`
	InvoiceStatus  types.InvoiceStatus `json:"invoice_status,omitempty"`
	IssueDate      string              `json:"issue_date,omitempty"`
	DueDate        string              `json:"due_date,omitempty"`
	Notes          string              `json:"notes,omitempty"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if r.InvoiceStatus == "" {
		r.InvoiceStatus = types.InvoiceStatusDraft
	}
	if err := r.InvoiceStatus.Validate(); err != nil {
		return err
	}
	if r.InvoiceStatus == types.InvoiceStatusPaid {
		return ierr.NewError("invoice cannot be created as paid").
			WithHint("Create the invoice first, then mark it paid").
			Mark(ierr.ErrValidation)
	}
	issue, err := parseDate("issue_date", r.IssueDate)
	if err != nil {
		return err
	}
	due, err := parseDate("due_date", r.DueDate)
	if err != nil {
		return err
	}
	if issue != nil && due != nil && due.Before(*issue) {
		return ierr.NewError("due_date is before issue_date").
			WithHint("Due date must be on or after the issue date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToInvoice assumes Validate has passed. today fills a missing issue date.
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context, today time.Time) *invoice.Invoice {
	issue := today
	if d, _ := parseDate("issue_date", r.IssueDate); d != nil {
		issue = *d
	}
	due := issue.AddDate(0, 0, DefaultInvoiceDueDays)
	if d, _ := parseDate("due_date", r.DueDate); d != nil {
		due = *d
	}

	id := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
	return &invoice.Invoice{
		ID:             id,
		Number:         invoice.GenerateNumber(id, issue),
		ClientID:       strings.TrimSpace(r.ClientID),
		SubscriptionID: trimPtr(r.SubscriptionID),
		Amount:         r.Amount,
		Currency:       normalizeCurrency(r.Currency),
		InvoiceStatus:  r.InvoiceStatus,
		IssueDate:      issue,
		DueDate:        due,
		Notes:          r.Notes,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

type UpdateInvoiceRequest struct {
	Amount        *decimal.Decimal     `json:"amount,omitempty" swaggertype:"string"`
	InvoiceStatus *types.InvoiceStatus `json:"invoice_status,omitempty"`
	DueDate       *string              `json:"due_date,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
}

func (r *UpdateInvoiceRequest) Validate() error {
	if r.Amount != nil {
		if err := validateAmount(*r.Amount); err != nil {
			return err
		}
	}
	if r.InvoiceStatus != nil {
		if err := r.InvoiceStatus.Validate(); err != nil {
			return err
		}
		if *r.InvoiceStatus == types.InvoiceStatusPaid {
			return ierr.NewError("use the pay endpoint to mark an invoice paid").
				WithHint("Use the pay action to mark an invoice paid").
				Mark(ierr.ErrValidation)
		}
	}
	if r.DueDate != nil {
		if _, err := requireDate("due_date", *r.DueDate); err != nil {
			return err
		}
	}
	return nil
}

func (r *UpdateInvoiceRequest) Apply(inv *invoice.Invoice) {
	if r.Amount != nil {
		inv.Amount = *r.Amount
	}
	if r.InvoiceStatus != nil {
		inv.InvoiceStatus = *r.InvoiceStatus
	}
	if r.DueDate != nil {
		inv.DueDate, _ = requireDate("due_date", *r.DueDate)
	}
	if r.Notes != nil {
		inv.Notes = *r.Notes
	}
}

// CreateInvoiceFromSubscriptionRequest issues the next invoice of a subscription.
type CreateInvoiceFromSubscriptionRequest struct {
	IssueDate string `json:"issue_date,omitempty"`
	DueDays   *int   `json:"due_days,omitempty" validate:"omitempty,min=0,max=365"`
	Notes     string `json:"notes,omitempty"`
}

func (r *CreateInvoiceFromSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	_, err := parseDate("issue_date", r.IssueDate)
	return err
}

// IssueDateOr returns the requested issue date, or fallback.
func (r *CreateInvoiceFromSubscriptionRequest) IssueDateOr(fallback time.Time) time.Time {
	if d, _ := parseDate("issue_date", r.IssueDate); d != nil {
		return *d
	}
	return fallback
}

func (r *CreateInvoiceFromSubscriptionRequest) GetDueDays() int {
	if r.DueDays == nil {
		return DefaultInvoiceDueDays
	}
	return *r.DueDays
}

type MarkInvoicePaidRequest struct {
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

type InvoiceResponse struct {
	*invoice.Invoice
	IsOverdue bool `json:"is_overdue"`
}

func NewInvoiceResponse(inv *invoice.Invoice, today time.Time) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv, IsOverdue: inv.IsOverdue(today)}
}

type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]
