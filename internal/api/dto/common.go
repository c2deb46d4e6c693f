package dto

import (
	"strings"
	"time"

	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a request leaves the currency empty.
const DefaultCurrency = "usd"

// parseDate parses a YYYY-MM-DD field. An empty value yields nil.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("%s must be a date in YYYY-MM-DD format", field).
			WithReportableDetails(map[string]any{field: value}).
			Mark(ierr.ErrValidation)
	}
	return &t, nil
}

func requireDate(field, value string) (time.Time, error) {
	t, err := parseDate(field, value)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, ierr.NewErrorf("%s is required", field).
			WithHintf("%s is required", field).
			Mark(ierr.ErrValidation)
	}
	return *t, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ierr.NewError("amount must be >= 0").
			WithHint("Amount cannot be negative").
			WithReportableDetails(map[string]any{"amount": amount.String()}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func normalizeCurrency(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

// trimPtr returns nil for nil or blank values.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
