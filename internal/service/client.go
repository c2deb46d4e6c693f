package service

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/domain/client"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

type ClientService interface {
	CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	GetClient(ctx context.Context, id string) (*dto.ClientResponse, error)
	GetClients(ctx context.Context, filter *types.ClientFilter) (*dto.ListClientsResponse, error)
	UpdateClient(ctx context.Context, id string, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	DeleteClient(ctx context.Context, id string) error
}

type clientService struct {
	ServiceParams
}

func NewClientService(params ServiceParams) ClientService {
	return &clientService{ServiceParams: params}
}

func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := req.ToClient(ctx)
	if err := s.ensureEmailUnique(ctx, c.Email, ""); err != nil {
		return nil, err
	}

	if err := s.ClientRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateTenantCache(ctx)

	s.Logger.WithContext(ctx).Infow("created client", "client_id", c.ID)
	return &dto.ClientResponse{Client: c}, nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (*dto.ClientResponse, error) {
	if id == "" {
		return nil, ierr.NewError("client_id is required").
			WithHint("Client ID is required").
			Mark(ierr.ErrValidation)
	}

	c, err := s.ClientRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ClientResponse{Client: c}, nil
}

func (s *clientService) GetClients(ctx context.Context, filter *types.ClientFilter) (*dto.ListClientsResponse, error) {
	if filter == nil {
		filter = types.NewClientFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	clients, err := s.ClientRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.ClientRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ClientResponse, len(clients))
	for i, c := range clients {
		items[i] = &dto.ClientResponse{Client: c}
	}
	return &dto.ListClientsResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.ClientRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(c)
	if req.Email != nil {
		if err := s.ensureEmailUnique(ctx, c.Email, c.ID); err != nil {
			return nil, err
		}
	}
	c.UpdatedBy = types.GetUserID(ctx)

	if err := s.ClientRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateTenantCache(ctx)
	return &dto.ClientResponse{Client: c}, nil
}

// DeleteClient refuses to remove a client that still has active subscriptions.
func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	if _, err := s.ClientRepo.Get(ctx, id); err != nil {
		return err
	}

	subFilter := types.NewSubscriptionFilter()
	subFilter.ClientID = id
	subFilter.SubscriptionStatus = []types.SubscriptionStatus{types.SubscriptionStatusActive}
	active, err := s.SubRepo.Count(ctx, subFilter)
	if err != nil {
		return err
	}
	if active > 0 {
		return ierr.NewError("client has active subscriptions").
			WithHint("Cancel the client's active subscriptions before deleting it").
			WithReportableDetails(map[string]any{"client_id": id, "active_subscriptions": active}).
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.ClientRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateTenantCache(ctx)
	return nil
}

// ensureEmailUnique rejects a second client with the same email in the tenant.
func (s *clientService) ensureEmailUnique(ctx context.Context, email, selfID string) error {
	if email == "" {
		return nil
	}
	filter := types.NewClientFilter()
	filter.Email = email
	existing, err := s.ClientRepo.List(ctx, filter)
	if err != nil {
		return err
	}
	if lo.ContainsBy(existing, func(c *client.Client) bool { return c.ID != selfID }) {
		return ierr.NewError("client with this email already exists").
			WithHint("A client with this email already exists").
			WithReportableDetails(map[string]any{"email": email}).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}
