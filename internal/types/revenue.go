package types

import (
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/samber/lo"
)

// RevenueGroupBy selects the attribute MRR is bucketed by.
type RevenueGroupBy string

const (
	RevenueGroupByPlan     RevenueGroupBy = "plan"
	RevenueGroupByCategory RevenueGroupBy = "category"
	RevenueGroupByClient   RevenueGroupBy = "client"
)

var RevenueGroupBys = []RevenueGroupBy{
	RevenueGroupByPlan,
	RevenueGroupByCategory,
	RevenueGroupByClient,
}

func (g RevenueGroupBy) Validate() error {
	if !lo.Contains(RevenueGroupBys, g) {
		return ierr.NewErrorf("invalid group_by: %s", g).
			WithHint("group_by must be plan, category or client").
			WithReportableDetails(map[string]any{"allowed": RevenueGroupBys}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// UnassignedGroupKey labels revenue that has no grouping attribute.
const UnassignedGroupKey = "unassigned"

const DefaultRevenueTopN = 5
