package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piternoufi/quarry-orders-api/config"
	"github.com/piternoufi/quarry-orders-api/models"
)

// SendMessageRequest represents the request body for sending a message.
// ThreadID continues an existing thread; when omitted a new thread is started
// and the message's own ID becomes the thread ID.
type SendMessageRequest struct {
	RecipientEmail string `json:"recipient_email" binding:"required,email"`
	Subject        string `json:"subject" binding:"required"`
	Body           string `json:"body" binding:"required"`
	ThreadID       *uint  `json:"thread_id"`
	OrderID        *uint  `json:"order_id"`
}

// SendMessage handles POST /api/v1/messages
func SendMessage(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()

	// A linked order must exist and be visible to the sender
	if req.OrderID != nil {
		var order models.Order
		if err := db.First(&order, *req.OrderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Order not found",
				},
			})
			return
		}
		if !user.CanManageOrders() && order.CreatedBy != user.Email {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "You do not have permission to message on this order",
				},
			})
			return
		}
	}

	message := models.Message{
		SenderEmail:    user.Email,
		RecipientEmail: req.RecipientEmail,
		Subject:        req.Subject,
		Body:           req.Body,
		OrderID:        req.OrderID,
	}
	if req.ThreadID != nil {
		message.ThreadID = *req.ThreadID
	}

	if err := db.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create message",
			},
		})
		return
	}

	// A new thread is keyed by its first message
	if message.ThreadID == 0 {
		message.ThreadID = message.ID
		if err := db.Model(&message).Update("thread_id", message.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to assign message thread",
				},
			})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// ListMessages handles GET /api/v1/messages - every message the caller sent
// or received, newest first, with an optional ?thread_id= filter. Threads are
// reconstructed client-side by grouping on thread_id.
func ListMessages(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Where("sender_email = ? OR recipient_email = ?", user.Email, user.Email).
		Order("created_at DESC").Limit(500)
	if threadID := c.Query("thread_id"); threadID != "" {
		query = query.Where("thread_id = ?", threadID)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch messages",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}

// MarkMessageRead handles PUT /api/v1/messages/:id/read - recipient only
func MarkMessageRead(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var message models.Message
	if err := db.First(&message, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MESSAGE_NOT_FOUND",
				"message": "Message not found",
			},
		})
		return
	}

	if message.RecipientEmail != user.Email {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You can only mark messages addressed to you as read",
			},
		})
		return
	}

	message.IsRead = true
	if err := db.Save(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update message",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    message,
	})
}
