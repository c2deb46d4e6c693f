package types

import (
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/samber/lo"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusVoid,
}

func (s InvoiceStatus) Validate() error {
	if !lo.Contains(InvoiceStatuses, s) {
		return ierr.NewErrorf("invalid invoice status: %s", s).
			WithHint("Invalid invoice status").
			WithReportableDetails(map[string]any{"allowed": InvoiceStatuses}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsOpen reports whether the invoice still expects a payment.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

type InvoiceFilter struct {
	*QueryFilter
	InvoiceIDs     []string        `json:"invoice_ids,omitempty" form:"invoice_ids"`
	ClientID       string          `json:"client_id,omitempty" form:"client_id"`
	SubscriptionID string          `json:"subscription_id,omitempty" form:"subscription_id"`
	InvoiceStatus  []InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *InvoiceFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	for _, s := range f.InvoiceStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
