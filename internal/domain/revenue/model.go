package revenue

import (
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/shopspring/decimal"
)

// Record is the slice of a subscription that revenue math needs. GroupKey
// holds the plan name, device category or client id depending on the query.
type Record struct {
	Amount       decimal.Decimal    `json:"amount"`
	BillingCycle types.BillingCycle `json:"billing_cycle"`
	GroupKey     string             `json:"group_key,omitempty"`
	GroupLabel   string             `json:"group_label,omitempty"`
}

// Bucket is the monthly recurring revenue attributed to one group.
type Bucket struct {
	Key          string          `json:"key"`
	Label        string          `json:"label"`
	MonthlyTotal decimal.Decimal `json:"monthly_total"`
}
