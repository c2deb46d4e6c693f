package testutil

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/domain/provider"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

// InMemoryProviderStore implements provider.Repository
type InMemoryProviderStore struct {
	*InMemoryStore[*provider.Provider]
}

func NewInMemoryProviderStore() *InMemoryProviderStore {
	return &InMemoryProviderStore{InMemoryStore: NewInMemoryStore[*provider.Provider]()}
}

func copyProvider(p *provider.Provider) *provider.Provider {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (s *InMemoryProviderStore) Create(ctx context.Context, p *provider.Provider) error {
	if p == nil {
		return ierr.NewError("provider cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyProvider(p))
}

func (s *InMemoryProviderStore) Get(ctx context.Context, id string) (*provider.Provider, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenantFilter(ctx, p.BaseModel) {
		return nil, ierr.NewError("provider not found").
			WithHint("Provider not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyProvider(p), nil
}

func (s *InMemoryProviderStore) List(ctx context.Context, filter *types.ProviderFilter) ([]*provider.Provider, error) {
	if filter == nil {
		filter = types.NewNoLimitProviderFilter()
	}
	items, err := s.InMemoryStore.List(ctx, filter, providerFilterFn, func(i, j *provider.Provider) bool {
		return sortByCreatedAt(i.BaseModel, j.BaseModel, i.ID, j.ID)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *provider.Provider, _ int) *provider.Provider { return copyProvider(p) }), nil
}

func (s *InMemoryProviderStore) Count(ctx context.Context, filter *types.ProviderFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, providerFilterFn)
}

func (s *InMemoryProviderStore) Update(ctx context.Context, p *provider.Provider) error {
	if _, err := s.Get(ctx, p.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, p.ID, copyProvider(p))
}

func (s *InMemoryProviderStore) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	p.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, p)
}

func providerFilterFn(ctx context.Context, p *provider.Provider, filter interface{}) bool {
	if p == nil || !CheckTenantFilter(ctx, p.BaseModel) {
		return false
	}
	f, ok := filter.(*types.ProviderFilter)
	if !ok || f == nil {
		return true
	}
	if len(f.ProviderIDs) > 0 && !lo.Contains(f.ProviderIDs, p.ID) {
		return false
	}
	return matchesSearch(f.GetSearch(), p.Name, p.Email)
}
