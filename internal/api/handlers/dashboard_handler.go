package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/velocityiq/backend-go/internal/service"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) GetOverview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch overview", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, overview)
}

func (h *DashboardHandler) GetAlerts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 {
		limit = 20
	}

	alerts, err := h.service.Alerts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *DashboardHandler) GetStockStatus(c *gin.Context) {
	products, err := h.service.StockStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stock status", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *DashboardHandler) GetForecasts(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "14"))
	if days <= 0 {
		days = 14
	}

	forecasts, err := h.service.Forecasts(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch forecasts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts})
}

func (h *DashboardHandler) GetDemandTrends(c *gin.Context) {
	trends, err := h.service.DemandTrends(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch demand trends", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

func (h *DashboardHandler) GetChartData(c *gin.Context) {
	sku := c.Param("sku")

	data, err := h.service.ChartData(c.Request.Context(), sku)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch chart data", "details": err.Error()})
		return
	}
	if data == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, data)
}

func (h *DashboardHandler) GetRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 {
		limit = 20
	}

	runs, err := h.service.Runs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
