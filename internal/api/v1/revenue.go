package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RevenueHandler struct {
	service service.RevenueService
	log     *logger.Logger
}

func NewRevenueHandler(service service.RevenueService, log *logger.Logger) *RevenueHandler {
	return &RevenueHandler{service: service, log: log}
}

// @Summary Monthly recurring revenue
// @Description Total MRR of active subscriptions plus the top groups by plan, device category or client.
// @Tags Revenue
// @Produce json
// @Security BearerAuth
// @Param group_by query string false "plan, category or client" default(plan)
// @Param top query int false "Number of groups, negative for all" default(5)
// @Success 200 {object} dto.MRRResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /revenue/mrr [get]
func (h *RevenueHandler) GetMRR(c *gin.Context) {
	var req dto.GetMRRRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(invalidQuery(err))
		return
	}

	resp, err := h.service.GetMRR(c.Request.Context(), req)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Errorw("failed to compute mrr", "group_by", req.GroupBy, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Download the revenue workbook
// @Tags Revenue
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /revenue/export.xlsx [get]
func (h *RevenueHandler) ExportXLSX(c *gin.Context) {
	data, err := h.service.ExportRevenueXLSX(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	filename := fmt.Sprintf("revenue-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
