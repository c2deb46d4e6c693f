package dto

import (
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/alert"
	"github.com/devicedesk/devicedesk/internal/domain/revenue"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/shopspring/decimal"
)

// DashboardResponse backs the console landing page. Sections that failed to
// load are listed in Errors and left at their zero value.
type DashboardResponse struct {
	MRRTotal      decimal.Decimal           `json:"mrr_total" swaggertype:"string"`
	MRRByPlan     []revenue.Bucket          `json:"mrr_by_plan"`
	MRRByCategory []revenue.Bucket          `json:"mrr_by_category"`
	MRRByClient   []revenue.Bucket          `json:"mrr_by_client"`
	AlertCounts   types.AlertSeverityCounts `json:"alert_counts"`
	TopAlerts     []alert.UnifiedAlert      `json:"top_alerts"`
	Counts        types.EntityCounts        `json:"counts"`
	Errors        []string                  `json:"errors,omitempty"`
	GeneratedAt   time.Time                 `json:"generated_at"`
}
