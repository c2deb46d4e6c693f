package v1

import (
	"net/http"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	service service.ProviderService
	log     *logger.Logger
}

func NewProviderHandler(service service.ProviderService, log *logger.Logger) *ProviderHandler {
	return &ProviderHandler{service: service, log: log}
}

// @Summary Create a provider
// @Tags Providers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param provider body dto.CreateProviderRequest true "Provider"
// @Success 201 {object} dto.ProviderResponse
// @Router /providers [post]
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var req dto.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidBody(err))
		return
	}

	resp, err := h.service.CreateProvider(c.Request.Context(), req)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Errorw("failed to create provider", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a provider
// @Tags Providers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Provider ID"
// @Success 200 {object} dto.ProviderResponse
// @Router /providers/{id} [get]
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	id, ok := pathID(c, "Provider")
	if !ok {
		return
	}

	resp, err := h.service.GetProvider(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List providers
// @Tags Providers
// @Produce json
// @Security BearerAuth
// @Param filter query types.ProviderFilter false "Filter"
// @Success 200 {object} dto.ListProvidersResponse
// @Router /providers [get]
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	filter := types.NewProviderFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(invalidQuery(err))
		return
	}

	resp, err := h.service.GetProviders(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a provider
// @Tags Providers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Provider ID"
// @Param provider body dto.UpdateProviderRequest true "Fields to change"
// @Success 200 {object} dto.ProviderResponse
// @Router /providers/{id} [put]
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	id, ok := pathID(c, "Provider")
	if !ok {
		return
	}

	var req dto.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidBody(err))
		return
	}

	resp, err := h.service.UpdateProvider(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a provider
// @Tags Providers
// @Security BearerAuth
// @Param id path string true "Provider ID"
// @Success 204
// @Router /providers/{id} [delete]
func (h *ProviderHandler) DeleteProvider(c *gin.Context) {
	id, ok := pathID(c, "Provider")
	if !ok {
		return
	}

	if err := h.service.DeleteProvider(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
