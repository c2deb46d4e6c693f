package v1

import (
	"net/http"

	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *logger.Logger
}

func NewDashboardHandler(
	dashboardService service.DashboardService,
	logger *logger.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetDashboard returns every card in one response. Cards that failed to load
// are listed in errors and left empty.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	response, err := h.dashboardService.GetDashboard(c.Request.Context())
	if err != nil {
		h.logger.WithContext(c.Request.Context()).Errorw("failed to get dashboard", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
