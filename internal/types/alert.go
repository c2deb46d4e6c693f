package types

import (
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/samber/lo"
)

// AlertType names the business condition behind a unified alert.
type AlertType string

const (
	AlertTypeOverdueInvoice         AlertType = "overdue_invoice"
	AlertTypeOverdueSubscription    AlertType = "overdue_subscription"
	AlertTypeRenewalDue             AlertType = "renewal_due"
	AlertTypeSubscriptionEndingSoon AlertType = "subscription_ending_soon"
	AlertTypeDeviceMaintenanceLong  AlertType = "device_maintenance_long"
)

var AlertTypes = []AlertType{
	AlertTypeOverdueInvoice,
	AlertTypeOverdueSubscription,
	AlertTypeRenewalDue,
	AlertTypeSubscriptionEndingSoon,
	AlertTypeDeviceMaintenanceLong,
}

func (t AlertType) Validate() error {
	if !lo.Contains(AlertTypes, t) {
		return ierr.NewErrorf("invalid alert type: %s", t).
			WithHint("Invalid alert type").
			WithReportableDetails(map[string]any{"allowed": AlertTypes}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type AlertSeverity string

const (
	AlertSeverityHigh   AlertSeverity = "high"
	AlertSeverityMedium AlertSeverity = "medium"
	AlertSeverityLow    AlertSeverity = "low"
)

var AlertSeverities = []AlertSeverity{
	AlertSeverityHigh,
	AlertSeverityMedium,
	AlertSeverityLow,
}

// ParseAlertSeverity coerces any value to a known severity, defaulting to low.
func ParseAlertSeverity(s string) AlertSeverity {
	sev := AlertSeverity(s)
	if lo.Contains(AlertSeverities, sev) {
		return sev
	}
	return AlertSeverityLow
}

// Rank orders severities: high first.
func (s AlertSeverity) Rank() int {
	switch s {
	case AlertSeverityHigh:
		return 0
	case AlertSeverityMedium:
		return 1
	default:
		return 2
	}
}

func (s AlertSeverity) Validate() error {
	if !lo.Contains(AlertSeverities, s) {
		return ierr.NewErrorf("invalid alert severity: %s", s).
			WithHint("Severity must be high, medium or low").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AlertThresholds parameterise the aggregating alert query.
type AlertThresholds struct {
	// RenewalWindowDays flags active subscriptions invoicing within this many days.
	RenewalWindowDays int `json:"renewal_window_days"`
	// EndingSoonDays flags subscriptions whose end date falls within this many days.
	EndingSoonDays int `json:"ending_soon_days"`
	// MaintenanceDays flags devices in maintenance for longer than this.
	MaintenanceDays int `json:"maintenance_days"`
}

// AlertFilter narrows the ranked alert list.
type AlertFilter struct {
	Severities []AlertSeverity `json:"severities,omitempty" form:"severity"`
	AlertTypes []AlertType     `json:"alert_types,omitempty" form:"type"`
	Limit      int             `json:"limit,omitempty" form:"limit"`
}

func (f *AlertFilter) Validate() error {
	for _, s := range f.Severities {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, t := range f.AlertTypes {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	if f.Limit < 0 {
		return ierr.NewError("limit must be >= 0").
			WithHint("Invalid alert limit").
			Mark(ierr.ErrValidation)
	}
	return nil
}
