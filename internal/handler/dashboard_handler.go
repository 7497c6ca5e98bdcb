package handler

import (
	"net/http"

	"salesledger/internal/service"
	"salesledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", h.GetSummary)
}

// GetSummary returns the owner's headline figures
// @Summary      Dashboard summary
// @Description  Active clients and products, this month's sales and open receivables/payables
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.DashboardSummary}
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
