package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/piternoufi/quarry-orders-api/config"
	"github.com/piternoufi/quarry-orders-api/models"
	"github.com/piternoufi/quarry-orders-api/services"
	"gorm.io/gorm"
)

// ListNotifications handles GET /api/v1/notifications - the caller's own
// notifications, newest first
func ListNotifications(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var notifications []models.Notification
	if err := db.Where("recipient_email = ?", user.Email).
		Order("created_at DESC").Limit(200).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch notifications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// MarkNotificationRead handles PUT /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var notification models.Notification
	if err := db.First(&notification, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOTIFICATION_NOT_FOUND",
					"message": "Notification not found",
				},
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to fetch notification",
				},
			})
		}
		return
	}

	if notification.RecipientEmail != user.Email {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You can only mark your own notifications as read",
			},
		})
		return
	}

	notification.IsRead = true
	if err := db.Save(&notification).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update notification",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notification,
	})
}

// RunReminders handles POST /api/v1/reminders/run - manager dashboards call
// this on load; the sweep is idempotent per (recipient, order, type)
func RunReminders(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can run the reminder sweep") {
		return
	}

	created, err := services.RunReminderSweep(config.GetDB(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to run reminder sweep",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"created": created,
		},
	})
}
