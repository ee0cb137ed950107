package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piternoufi/quarry-orders-api/config"
	"github.com/piternoufi/quarry-orders-api/models"
)

// ListAuditLogs handles GET /api/v1/audit-logs - administrator only, newest
// first, with optional ?entity_type= and ?entity_id= filters
func ListAuditLogs(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	if !user.IsAdministrator() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only administrators can view the audit trail",
			},
		})
		return
	}

	db := config.GetDB()
	query := db.Order("timestamp DESC").Limit(500)
	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID := c.Query("entity_id"); entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch audit logs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
	})
}
