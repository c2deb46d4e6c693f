package v1

import (
	"net/http"

	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	service service.AlertService
	log     *logger.Logger
}

func NewAlertHandler(service service.AlertService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{service: service, log: log}
}

// @Summary List alerts
// @Description Unified alerts ranked by severity, then by date.
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param severity query []string false "high, medium or low" collectionFormat(multi)
// @Param type query []string false "Alert type" collectionFormat(multi)
// @Param limit query int false "Maximum number of alerts"
// @Success 200 {object} dto.ListAlertsResponse
// @Router /alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	var filter types.AlertFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(invalidQuery(err))
		return
	}

	resp, err := h.service.ListAlerts(c.Request.Context(), &filter)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Errorw("failed to list alerts", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
