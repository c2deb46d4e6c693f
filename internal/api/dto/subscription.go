package dto

import (
	"context"
	"strings"

	"github.com/devicedesk/devicedesk/internal/domain/subscription"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/devicedesk/devicedesk/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateSubscriptionRequest struct {
	ClientID           string                   `json:"client_id" validate:"required"`
	DeviceID           *string                  `json:"device_id,omitempty"`
	PlanName           string                   `json:"plan_name" validate:"required,max=255"`
	Amount             decimal.Decimal          `json:"amount" swaggertype:"string"`
	Currency           string                   `json:"currency,omitempty" validate:"omitempty,len=3"`
	BillingCycle       types.BillingCycle       `json:"billing_cycle" validate:"required"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status,omitempty"`
	StartDate          string                   `json:"start_date" validate:"required"`
	NextInvoiceDate    string                   `json:"next_invoice_date,omitempty"`
	EndDate            string                   `json:"end_date,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	r.PlanName = strings.TrimSpace(r.PlanName)
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validateAmount(r.Amount); err != nil {
		return err
	}
	if err := r.BillingCycle.Validate(); err != nil {
		return err
	}
	if r.SubscriptionStatus == "" {
		r.SubscriptionStatus = types.SubscriptionStatusActive
	}
	if err := r.SubscriptionStatus.Validate(); err != nil {
		return err
	}

	start, err := requireDate("start_date", r.StartDate)
	if err != nil {
		return err
	}
	if _, err := parseDate("next_invoice_date", r.NextInvoiceDate); err != nil {
		return err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return err
	}
	if end != nil && end.Before(start) {
		return ierr.NewError("end_date is before start_date").
			WithHint("End date must be on or after the start date").
			WithReportableDetails(map[string]any{"start_date": r.StartDate, "end_date": r.EndDate}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToSubscription assumes Validate has passed. NextInvoiceDate is left nil
// when the request does not carry one.
func (r *CreateSubscriptionRequest) ToSubscription(ctx context.Context) *subscription.Subscription {
	start, _ := requireDate("start_date", r.StartDate)
	next, _ := parseDate("next_invoice_date", r.NextInvoiceDate)
	end, _ := parseDate("end_date", r.EndDate)
	return &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		ClientID:           strings.TrimSpace(r.ClientID),
		DeviceID:           trimPtr(r.DeviceID),
		PlanName:           r.PlanName,
		Amount:             r.Amount,
		Currency:           normalizeCurrency(r.Currency),
		BillingCycle:       r.BillingCycle,
		SubscriptionStatus: r.SubscriptionStatus,
		StartDate:          start,
		NextInvoiceDate:    next,
		EndDate:            end,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
}

type UpdateSubscriptionRequest struct {
	DeviceID           *string                   `json:"device_id,omitempty"`
	PlanName           *string                   `json:"plan_name,omitempty" validate:"omitempty,min=1,max=255"`
	Amount             *decimal.Decimal          `json:"amount,omitempty" swaggertype:"string"`
	Currency           *string                   `json:"currency,omitempty" validate:"omitempty,len=3"`
	BillingCycle       *types.BillingCycle       `json:"billing_cycle,omitempty"`
	SubscriptionStatus *types.SubscriptionStatus `json:"subscription_status,omitempty"`
	NextInvoiceDate    *string                   `json:"next_invoice_date,omitempty"`
	EndDate            *string                   `json:"end_date,omitempty"`
}

func (r *UpdateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Amount != nil {
		if err := validateAmount(*r.Amount); err != nil {
			return err
		}
	}
	if r.BillingCycle != nil {
		if err := r.BillingCycle.Validate(); err != nil {
			return err
		}
	}
	if r.SubscriptionStatus != nil {
		if err := r.SubscriptionStatus.Validate(); err != nil {
			return err
		}
	}
	if r.NextInvoiceDate != nil {
		if _, err := parseDate("next_invoice_date", *r.NextInvoiceDate); err != nil {
			return err
		}
	}
	if r.EndDate != nil {
		if _, err := parseDate("end_date", *r.EndDate); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the set fields onto s. It reports whether the billing cycle
// changed without an explicit next invoice date, in which case the caller
// recomputes it.
func (r *UpdateSubscriptionRequest) Apply(s *subscription.Subscription) (recomputeNext bool) {
	if r.DeviceID != nil {
		s.DeviceID = trimPtr(r.DeviceID)
	}
	if r.PlanName != nil {
		s.PlanName = strings.TrimSpace(*r.PlanName)
	}
	if r.Amount != nil {
		s.Amount = *r.Amount
	}
	if r.Currency != nil {
		s.Currency = normalizeCurrency(*r.Currency)
	}
	if r.BillingCycle != nil && *r.BillingCycle != s.BillingCycle {
		s.BillingCycle = *r.BillingCycle
		recomputeNext = r.NextInvoiceDate == nil
	}
	if r.SubscriptionStatus != nil {
		s.SubscriptionStatus = *r.SubscriptionStatus
	}
	if r.NextInvoiceDate != nil {
		s.NextInvoiceDate, _ = parseDate("next_invoice_date", *r.NextInvoiceDate)
	}
	if r.EndDate != nil {
		s.EndDate, _ = parseDate("end_date", *r.EndDate)
	}
	return recomputeNext
}

type SubscriptionResponse struct {
	*subscription.Subscription
	MonthlyAmount decimal.Decimal `json:"monthly_amount" swaggertype:"string"`
}

func NewSubscriptionResponse(s *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{Subscription: s, MonthlyAmount: s.MonthlyEquivalent()}
}

type ListSubscriptionsResponse = types.ListResponse[*SubscriptionResponse]
