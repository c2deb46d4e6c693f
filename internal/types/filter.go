package types

import (
	"strings"

	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/samber/lo"
)

const (
	DefaultLimit = 50
	MaxLimit     = 1000

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// QueryFilter carries pagination and ordering shared by every list endpoint.
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit"`
	Offset *int    `json:"offset,omitempty" form:"offset"`
	Sort   *string `json:"sort,omitempty" form:"sort"`
	Order  *string `json:"order,omitempty" form:"order"`
	Search *string `json:"search,omitempty" form:"search"`
}

func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(DefaultLimit),
		Offset: lo.ToPtr(0),
		Sort:   lo.ToPtr("created_at"),
		Order:  lo.ToPtr(SortOrderDesc),
	}
}

// NewNoLimitQueryFilter is used by exports and aggregations that need every row.
func NewNoLimitQueryFilter() *QueryFilter {
	f := NewDefaultQueryFilter()
	f.Limit = nil
	return f
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit <= 0 || *f.Limit > MaxLimit) {
		return ierr.NewErrorf("limit must be between 1 and %d", MaxLimit).
			WithHint("Invalid pagination limit").
			WithReportableDetails(map[string]any{"limit": *f.Limit}).
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("offset must be >= 0").
			WithHint("Invalid pagination offset").
			Mark(ierr.ErrValidation)
	}
	if f.Order != nil {
		o := strings.ToLower(*f.Order)
		if o != SortOrderAsc && o != SortOrderDesc {
			return ierr.NewErrorf("invalid order %q", *f.Order).
				WithHint("Order must be asc or desc").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return 0
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) GetSort() string {
	if f == nil || f.Sort == nil || *f.Sort == "" {
		return "created_at"
	}
	return *f.Sort
}

func (f *QueryFilter) GetOrder() string {
	if f == nil || f.Order == nil || *f.Order == "" {
		return SortOrderDesc
	}
	return strings.ToLower(*f.Order)
}

func (f *QueryFilter) GetSearch() string {
	if f == nil || f.Search == nil {
		return ""
	}
	return strings.TrimSpace(*f.Search)
}

func (f *QueryFilter) IsUnlimited() bool {
	return f == nil || f.Limit == nil
}

// PaginationResponse describes the page returned by a list call.
type PaginationResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func NewPaginationResponse(total, limit, offset int) *PaginationResponse {
	return &PaginationResponse{Total: total, Limit: limit, Offset: offset}
}

// ListResponse is the generic envelope for list endpoints.
type ListResponse[T any] struct {
	Items      []T                 `json:"items"`
	Pagination *PaginationResponse `json:"pagination"`
}
