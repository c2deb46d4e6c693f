package service

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
)

type ProviderService interface {
	CreateProvider(ctx context.Context, req dto.CreateProviderRequest) (*dto.ProviderResponse, error)
	GetProvider(ctx context.Context, id string) (*dto.ProviderResponse, error)
	GetProviders(ctx context.Context, filter *types.ProviderFilter) (*dto.ListProvidersResponse, error)
	UpdateProvider(ctx context.Context, id string, req dto.UpdateProviderRequest) (*dto.ProviderResponse, error)
	DeleteProvider(ctx context.Context, id string) error
}

type providerService struct {
	ServiceParams
}

func NewProviderService(params ServiceParams) ProviderService {
	return &providerService{ServiceParams: params}
}

func (s *providerService) CreateProvider(ctx context.Context, req dto.CreateProviderRequest) (*dto.ProviderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToProvider(ctx)
	if err := s.ProviderRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("created provider", "provider_id", p.ID)
	return &dto.ProviderResponse{Provider: p}, nil
}

func (s *providerService) GetProvider(ctx context.Context, id string) (*dto.ProviderResponse, error) {
	if id == "" {
		return nil, ierr.NewError("provider_id is required").
			WithHint("Provider ID is required").
			Mark(ierr.ErrValidation)
	}

	p, err := s.ProviderRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ProviderResponse{Provider: p}, nil
}

func (s *providerService) GetProviders(ctx context.Context, filter *types.ProviderFilter) (*dto.ListProvidersResponse, error) {
	if filter == nil {
		filter = types.NewProviderFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	providers, err := s.ProviderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.ProviderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ProviderResponse, len(providers))
	for i, p := range providers {
		items[i] = &dto.ProviderResponse{Provider: p}
	}
	return &dto.ListProvidersResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *providerService) UpdateProvider(ctx context.Context, id string, req dto.UpdateProviderRequest) (*dto.ProviderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.ProviderRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(p)
	p.UpdatedBy = types.GetUserID(ctx)
	if err := s.ProviderRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return &dto.ProviderResponse{Provider: p}, nil
}

func (s *providerService) DeleteProvider(ctx context.Context, id string) error {
	if err := s.ProviderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateTenantCache(ctx)
	return nil
}
