package dto

import (
	"github.com/devicedesk/devicedesk/internal/domain/alert"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/devicedesk/devicedesk/internal/validator"
)

type ListAlertsResponse struct {
	Items  []alert.UnifiedAlert      `json:"items"`
	Counts types.AlertSeverityCounts `json:"counts"`
}

// SendAlertDigestRequest overrides the configured digest recipients when To
// is set.
type SendAlertDigestRequest struct {
	To []string `json:"to,omitempty" validate:"omitempty,dive,email"`
}

func (r *SendAlertDigestRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type SendAlertDigestResponse struct {
	Sent       bool   `json:"sent"`
	AlertCount int    `json:"alert_count"`
	MessageID  string `json:"message_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
}
