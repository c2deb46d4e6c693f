package cron

import (
	"net/http"
	"time"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/gin-gonic/gin"
)

// AlertCronHandler handles alert related cron jobs
type AlertCronHandler struct {
	alertService service.AlertService
	logger       *logger.Logger
}

// NewAlertCronHandler creates a new alert cron handler
func NewAlertCronHandler(
	alertService service.AlertService,
	logger *logger.Logger,
) *AlertCronHandler {
	return &AlertCronHandler{
		alertService: alertService,
		logger:       logger,
	}
}

// SendDigest emails the tenant's high and medium alerts. An empty body uses
// the configured recipients.
func (h *AlertCronHandler) SendDigest(c *gin.Context) {
	ctx := c.Request.Context()
	h.logger.WithContext(ctx).Infow("starting alert digest cron job", "time", time.Now().UTC().Format(time.RFC3339))

	var req dto.SendAlertDigestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.WithContext(ctx).Errorw("failed to parse request body", "error", err)
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.alertService.SendAlertDigest(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Errorw("failed to send alert digest", "error", err)
		c.Error(err)
		return
	}

	h.logger.WithContext(ctx).Infow("completed alert digest cron job", "sent", resp.Sent, "alerts", resp.AlertCount)
	c.JSON(http.StatusOK, resp)
}
