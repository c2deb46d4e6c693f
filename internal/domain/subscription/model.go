package subscription

import (
	"time"

	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/shopspring/decimal"
)

// Subscription is a recurring (or one-time) charge billed to a client,
// optionally tied to a device.
type Subscription struct {
	ID                 string                   `json:"id"`
	ClientID           string                   `json:"client_id"`
	DeviceID           *string                  `json:"device_id,omitempty"`
	PlanName           string                   `json:"plan_name"`
	Amount             decimal.Decimal          `json:"amount" swaggertype:"string"`
	Currency           string                   `json:"currency"`
	BillingCycle       types.BillingCycle       `json:"billing_cycle"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status"`
	StartDate          time.Time                `json:"start_date"`
	NextInvoiceDate    *time.Time               `json:"next_invoice_date,omitempty"`
	EndDate            *time.Time               `json:"end_date,omitempty"`
	types.BaseModel
}

// MonthlyEquivalent is the contribution of this subscription to MRR.
func (s *Subscription) MonthlyEquivalent() decimal.Decimal {
	return s.BillingCycle.MonthlyEquivalent(s.Amount)
}

func (s *Subscription) IsActive() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusActive
}

// AdvanceNextInvoiceDate moves NextInvoiceDate one cycle forward from its
// current value, or from the start date when unset. One-time subscriptions
// have their next invoice date cleared.
func (s *Subscription) AdvanceNextInvoiceDate() {
	from := s.StartDate
	if s.NextInvoiceDate != nil {
		from = *s.NextInvoiceDate
	}
	next, ok := s.BillingCycle.NextDate(from)
	if !ok {
		s.NextInvoiceDate = nil
		return
	}
	s.NextInvoiceDate = &next
}
