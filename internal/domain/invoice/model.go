package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a bill issued to a client, usually generated from a subscription.
type Invoice struct {
	ID             string              `json:"id"`
	Number         string              `json:"number"`
	ClientID       string              `json:"client_id"`
	SubscriptionID *string             `json:"subscription_id,omitempty"`
	Amount         decimal.Decimal     `json:"amount" swaggertype:"string"`
	Currency       string              `json:"currency"`
	InvoiceStatus  types.InvoiceStatus `json:"invoice_status"`
	IssueDate      time.Time           `json:"issue_date"`
	DueDate        time.Time           `json:"due_date"`
	PaidAt         *time.Time          `json:"paid_at,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	types.BaseModel
}

// IsOverdue reports whether an open invoice is past its due date on the
// given business day.
func (i *Invoice) IsOverdue(today time.Time) bool {
	return i.InvoiceStatus.IsOpen() && i.DueDate.Before(today)
}

// GenerateNumber builds a human readable invoice number from the issue date
// and the tail of the invoice id, e.g. INV-202403-7Q2K9M.
func GenerateNumber(id string, issued time.Time) string {
	suffix := id
	if idx := strings.LastIndex(suffix, "_"); idx >= 0 {
		suffix = suffix[idx+1:]
	}
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return fmt.Sprintf("INV-%s-%s", issued.Format("200601"), strings.ToUpper(suffix))
}
