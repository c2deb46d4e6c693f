package types

import (
	"time"

	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// BillingCycle is the recurrence period of a subscription charge.
type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleYearly    BillingCycle = "yearly"
	BillingCycleOneTime   BillingCycle = "one_time"
)

var BillingCycles = []BillingCycle{
	BillingCycleMonthly,
	BillingCycleQuarterly,
	BillingCycleYearly,
	BillingCycleOneTime,
}

var (
	three  = decimal.NewFromInt(3)
	twelve = decimal.NewFromInt(12)
)

func (b BillingCycle) String() string {
	return string(b)
}

func (b BillingCycle) Validate() error {
	if !lo.Contains(BillingCycles, b) {
		return ierr.NewErrorf("invalid billing cycle: %s", b).
			WithHint("Billing cycle must be monthly, quarterly, yearly or one_time").
			WithReportableDetails(map[string]any{
				"allowed": BillingCycles,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// MonthlyEquivalent converts a charge on this cycle to its monthly recurring
// value. One-time charges contribute nothing; an empty or unknown cycle is
// treated as monthly.
func (b BillingCycle) MonthlyEquivalent(amount decimal.Decimal) decimal.Decimal {
	switch b {
	case BillingCycleQuarterly:
		return amount.Div(three)
	case BillingCycleYearly:
		return amount.Div(twelve)
	case BillingCycleOneTime:
		return decimal.Zero
	default:
		return amount
	}
}

// Months is the length of one cycle in months, 0 for one-time charges.
// Unknown cycles count as monthly.
func (b BillingCycle) Months() int {
	switch b {
	case BillingCycleQuarterly:
		return 3
	case BillingCycleYearly:
		return 12
	case BillingCycleOneTime:
		return 0
	default:
		return 1
	}
}

// IsRecurring reports whether the cycle produces more than one invoice.
func (b BillingCycle) IsRecurring() bool {
	return b.Months() > 0
}

// NextDate returns the date one cycle after from. The day of month is
// clamped to the last day of the target month, so Jan 31 + 1 month is the
// last day of February. One-time cycles return from and false.
func (b BillingCycle) NextDate(from time.Time) (time.Time, bool) {
	months := b.Months()
	if months == 0 {
		return from, false
	}
	return AddMonthsClamped(from, months), true
}

// AddMonthsClamped adds n months without overflowing into the following month.
func AddMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
