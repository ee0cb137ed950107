package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/piternoufi/quarry-orders-api/config"
	"github.com/piternoufi/quarry-orders-api/logger"
	"github.com/piternoufi/quarry-orders-api/models"
	"github.com/piternoufi/quarry-orders-api/services"
	"github.com/piternoufi/quarry-orders-api/utils"
)

// GetReportSummary handles GET /api/v1/reports/summary - manager dashboards.
// The computed snapshot is cached for a few minutes; a cache failure falls
// back to recomputing.
func GetReportSummary(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can view reports") {
		return
	}

	now := time.Now()
	cacheKey := "reports:summary:" + now.Format("2006-01")
	cache := services.GetReportCache()

	if cached, hit, err := cache.Get(c.Request.Context(), cacheKey); err == nil && hit {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    cached,
		})
		return
	} else if err != nil {
		logger.Logger.WithError(err).Warn("Report cache read failed, recomputing")
	}

	orders, ok := loadOrderSnapshot(c)
	if !ok {
		return
	}

	summary := services.BuildReportSummary(orders, now)

	if err := cache.Set(c.Request.Context(), cacheKey, &summary, services.ReportCacheTTL); err != nil {
		logger.Logger.WithError(err).Warn("Report cache write failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

// ExportOrdersCSV handles GET /api/v1/reports/export.csv - manager only
func ExportOrdersCSV(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can export orders") {
		return
	}

	orders, ok := loadOrderSnapshot(c)
	if !ok {
		return
	}

	payload := utils.ExportOrdersCSV(orders)

	c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// loadOrderSnapshot fetches the bulk order list the aggregator runs over
func loadOrderSnapshot(c *gin.Context) ([]models.Order, bool) {
	db := config.GetDB()
	var orders []models.Order
	if err := db.Preload("Client").Preload("Site").Preload("Product").
		Order("created_at DESC").Limit(listOrdersLimit).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return nil, false
	}
	return orders, true
}
