package testutil

import (
	"context"
	"strings"

	"github.com/devicedesk/devicedesk/internal/domain/client"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

// InMemoryClientStore implements client.Repository
type InMemoryClientStore struct {
	*InMemoryStore[*client.Client]
}

func NewInMemoryClientStore() *InMemoryClientStore {
	return &InMemoryClientStore{InMemoryStore: NewInMemoryStore[*client.Client]()}
}

func copyClient(c *client.Client) *client.Client {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (s *InMemoryClientStore) Create(ctx context.Context, c *client.Client) error {
	if c == nil {
		return ierr.NewError("client cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, c.ID, copyClient(c))
}

func (s *InMemoryClientStore) Get(ctx context.Context, id string) (*client.Client, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !CheckTenantFilter(ctx, c.BaseModel) {
		return nil, ierr.NewError("client not found").
			WithHint("Client not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyClient(c), nil
}

func (s *InMemoryClientStore) List(ctx context.Context, filter *types.ClientFilter) ([]*client.Client, error) {
	if filter == nil {
		filter = types.NewNoLimitClientFilter()
	}
	items, err := s.InMemoryStore.List(ctx, filter, clientFilterFn, clientSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(c *client.Client, _ int) *client.Client { return copyClient(c) }), nil
}

func (s *InMemoryClientStore) Count(ctx context.Context, filter *types.ClientFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, clientFilterFn)
}

func (s *InMemoryClientStore) Update(ctx context.Context, c *client.Client) error {
	if _, err := s.Get(ctx, c.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, c.ID, copyClient(c))
}

func (s *InMemoryClientStore) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	c.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, c)
}

func clientFilterFn(ctx context.Context, c *client.Client, filter interface{}) bool {
	if c == nil || !CheckTenantFilter(ctx, c.BaseModel) {
		return false
	}
	f, ok := filter.(*types.ClientFilter)
	if !ok || f == nil {
		return true
	}
	if len(f.ClientIDs) > 0 && !lo.Contains(f.ClientIDs, c.ID) {
		return false
	}
	if f.Email != "" && !strings.EqualFold(f.Email, c.Email) {
		return false
	}
	return matchesSearch(f.GetSearch(), c.Name, c.Email, c.Company)
}

func clientSortFn(i, j *client.Client) bool {
	return sortByCreatedAt(i.BaseModel, j.BaseModel, i.ID, j.ID)
}

// matchesSearch mirrors the ILIKE search of the postgres repositories.
func matchesSearch(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
