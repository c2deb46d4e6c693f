package types

// ClientFilter filters client listings. Search matches name, email and company.
type ClientFilter struct {
	*QueryFilter
	ClientIDs []string `json:"client_ids,omitempty" form:"client_ids"`
	Email     string   `json:"email,omitempty" form:"email"`
}

func NewClientFilter() *ClientFilter {
	return &ClientFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitClientFilter() *ClientFilter {
	return &ClientFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *ClientFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	return f.QueryFilter.Validate()
}

// ProviderFilter filters provider listings. Search matches name and email.
type ProviderFilter struct {
	*QueryFilter
	ProviderIDs []string `json:"provider_ids,omitempty" form:"provider_ids"`
}

func NewProviderFilter() *ProviderFilter {
	return &ProviderFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitProviderFilter() *ProviderFilter {
	return &ProviderFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *ProviderFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	return f.QueryFilter.Validate()
}
