package dto

import (
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/revenue"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/shopspring/decimal"
)

// GetMRRRequest selects the grouping and how many buckets to return.
// TopN 0 uses the default; a negative TopN returns every bucket.
type GetMRRRequest struct {
	GroupBy types.RevenueGroupBy `json:"group_by" form:"group_by"`
	TopN    int                  `json:"top" form:"top"`
}

func (r *GetMRRRequest) Validate() error {
	if r.GroupBy == "" {
		r.GroupBy = types.RevenueGroupByPlan
	}
	if err := r.GroupBy.Validate(); err != nil {
		return err
	}
	if r.TopN > 100 {
		return ierr.NewError("top must be <= 100").
			WithHint("At most 100 groups can be requested").
			Mark(ierr.ErrValidation)
	}
	if r.TopN == 0 {
		r.TopN = types.DefaultRevenueTopN
	}
	return nil
}

// Limit converts TopN to the GroupMRR argument, where 0 means no limit.
func (r *GetMRRRequest) Limit() int {
	if r.TopN < 0 {
		return 0
	}
	return r.TopN
}

type MRRResponse struct {
	GroupBy     types.RevenueGroupBy `json:"group_by"`
	Total       decimal.Decimal      `json:"total" swaggertype:"string"`
	Buckets     []revenue.Bucket     `json:"buckets"`
	GeneratedAt time.Time            `json:"generated_at"`
}
