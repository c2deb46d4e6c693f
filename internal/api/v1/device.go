package v1

import (
	"net/http"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	service service.DeviceService
	log     *logger.Logger
}

func NewDeviceHandler(service service.DeviceService, log *logger.Logger) *DeviceHandler {
	return &DeviceHandler{service: service, log: log}
}

// @Summary Create a device
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param device body dto.CreateDeviceRequest true "Device"
// @Success 201 {object} dto.DeviceResponse
// @Router /devices [post]
func (h *DeviceHandler) CreateDevice(c *gin.Context) {
	var req dto.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidBody(err))
		return
	}

	resp, err := h.service.CreateDevice(c.Request.Context(), req)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Errorw("failed to create device", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a device
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Device ID"
// @Success 200 {object} dto.DeviceResponse
// @Router /devices/{id} [get]
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	id, ok := pathID(c, "Device")
	if !ok {
		return
	}

	resp, err := h.service.GetDevice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List devices
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param filter query types.DeviceFilter false "Filter"
// @Success 200 {object} dto.ListDevicesResponse
// @Router /devices [get]
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	filter := types.NewDeviceFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(invalidQuery(err))
		return
	}

	resp, err := h.service.GetDevices(c.Request.Context(), filter)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Errorw("failed to list devices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a device
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Device ID"
// @Param device body dto.UpdateDeviceRequest true "Fields to change"
// @Success 200 {object} dto.DeviceResponse
// @Router /devices/{id} [put]
func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	id, ok := pathID(c, "Device")
	if !ok {
		return
	}

	var req dto.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidBody(err))
		return
	}

	resp, err := h.service.UpdateDevice(c.Request.Context(), id, req)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Errorw("failed to update device", "device_id", id, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteDevice soft deletes the device; subscriptions keep their reference.
func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	id, ok := pathID(c, "Device")
	if !ok {
		return
	}

	if err := h.service.DeleteDevice(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
