package dto

import (
	"context"
	"strings"

	"github.com/devicedesk/devicedesk/internal/domain/client"
	"github.com/devicedesk/devicedesk/internal/domain/provider"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/devicedesk/devicedesk/internal/validator"
)

type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company string `json:"company,omitempty" validate:"omitempty,max=255"`
	Notes   string `json:"notes,omitempty"`
}

func (r *CreateClientRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	return validator.ValidateRequest(r)
}

func (r *CreateClientRequest) ToClient(ctx context.Context) *client.Client {
	return &client.Client{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CLIENT),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     strings.TrimSpace(r.Phone),
		Company:   strings.TrimSpace(r.Company),
		Notes:     r.Notes,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Notes   *string `json:"notes,omitempty"`
}

func (r *UpdateClientRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Apply copies the set fields onto c.
func (r *UpdateClientRequest) Apply(c *client.Client) {
	if r.Name != nil {
		c.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		c.Email = strings.TrimSpace(*r.Email)
	}
	if r.Phone != nil {
		c.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Company != nil {
		c.Company = strings.TrimSpace(*r.Company)
	}
	if r.Notes != nil {
		c.Notes = *r.Notes
	}
}

type ClientResponse struct {
	*client.Client
}

type ListClientsResponse = types.ListResponse[*ClientResponse]

type CreateProviderRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`
}

func (r *CreateProviderRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Website = strings.TrimSpace(r.Website)
	return validator.ValidateRequest(r)
}

func (r *CreateProviderRequest) ToProvider(ctx context.Context) *provider.Provider {
	return &provider.Provider{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROVIDER),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     strings.TrimSpace(r.Phone),
		Website:   r.Website,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

type UpdateProviderRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Website *string `json:"website,omitempty" validate:"omitempty,url"`
}

func (r *UpdateProviderRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *UpdateProviderRequest) Apply(p *provider.Provider) {
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		p.Email = strings.TrimSpace(*r.Email)
	}
	if r.Phone != nil {
		p.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Website != nil {
		p.Website = strings.TrimSpace(*r.Website)
	}
}

type ProviderResponse struct {
	*provider.Provider
}

type ListProvidersResponse = types.ListResponse[*ProviderResponse]
