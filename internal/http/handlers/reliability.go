package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/healthcare-bi/backend/internal/reliability"
)

// @Summary Mean time between failures
// @Tags reliability
// @Produce json
// @Param dataset query string false "clinical or building"
// @Param group_by query string false "equipamento (default), tag or setor"
// @Success 200 {object} map[string]any
// @Router /api/reliability/mtbf [get]
func (h *Handler) MTBF(c *gin.Context) {
	orders, ok := h.loadOrders(c)
	if !ok {
		return
	}
	items := reliability.CalculateMTBF(orders, reliability.KeyFuncFor(c.Query("group_by")))
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Mean time to repair
// @Tags reliability
// @Produce json
// @Param dataset query string false "clinical or building"
// @Param group_by query string false "equipamento (default), tag or setor"
// @Success 200 {object} map[string]any
// @Router /api/reliability/mttr [get]
func (h *Handler) MTTR(c *gin.Context) {
	orders, ok := h.loadOrders(c)
	if !ok {
		return
	}
	items := reliability.CalculateMTTR(orders, reliability.KeyFuncFor(c.Query("group_by")))
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Availability
// @Tags reliability
// @Produce json
// @Param dataset query string false "clinical or building"
// @Param group_by query string false "equipamento (default), tag or setor"
// @Success 200 {object} map[string]any
// @Router /api/reliability/availability [get]
func (h *Handler) Availability(c *gin.Context) {
	orders, ok := h.loadOrders(c)
	if !ok {
		return
	}
	items := reliability.CalculateAvailability(orders, reliability.KeyFuncFor(c.Query("group_by")))
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Dashboard KPIs
// @Tags dashboard
// @Produce json
// @Success 200 {object} reliability.KPIs
// @Router /api/dashboard/kpis [get]
func (h *Handler) KPIs(c *gin.Context) {
	orders, ok := h.loadOrders(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reliability.ComputeKPIs(orders))
}

// @Summary Opening heatmap (weekday x hour)
// @Tags dashboard
// @Produce json
// @Success 200 {object} reliability.Heatmap
// @Router /api/dashboard/heatmap [get]
func (h *Handler) Heatmap(c *gin.Context) {
	orders, ok := h.loadOrders(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reliability.OpeningHeatmap(orders))
}

// @Summary Orders per month
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/dashboard/trend [get]
func (h *Handler) Trend(c *gin.Context) {
	orders, ok := h.loadOrders(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": reliability.MonthlyTrend(orders)})
}

// @Summary Value counts
// @Tags dashboard
// @Produce json
// @Param field query string true "situacao, equipamento, tipomanutencao, setor, causa or empresa"
// @Param limit query int false "top n"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/dashboard/breakdown [get]
func (h *Handler) Breakdown(c *gin.Context) {
	field := c.Query("field")
	if field == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "field is required", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	orders, ok := h.loadOrders(c)
	if !ok {
		return
	}
	items, err := reliability.CountBy(orders, field, limit)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unsupported field", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"field": field, "items": items})
}

// @Summary Cost totals per category
// @Tags dashboard
// @Produce json
// @Success 200 {object} reliability.CostBreakdown
// @Router /api/dashboard/costs [get]
func (h *Handler) Costs(c *gin.Context) {
	orders, ok := h.loadOrders(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reliability.Costs(orders))
}
