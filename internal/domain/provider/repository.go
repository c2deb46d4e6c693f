package provider

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/types"
)

type Repository interface {
	Create(ctx context.Context, p *Provider) error
	Get(ctx context.Context, id string) (*Provider, error)
	List(ctx context.Context, filter *types.ProviderFilter) ([]*Provider, error)
	Count(ctx context.Context, filter *types.ProviderFilter) (int, error)
	Update(ctx context.Context, p *Provider) error
	Delete(ctx context.Context, id string) error
}
