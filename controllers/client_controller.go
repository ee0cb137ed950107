package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piternoufi/quarry-orders-api/config"
	"github.com/piternoufi/quarry-orders-api/models"
	"github.com/piternoufi/quarry-orders-api/services"
	"gorm.io/gorm"
)

// CreateClientRequest represents the request body for creating a client account
type CreateClientRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"omitempty,oneof=manager client"`
	IsActive *bool  `json:"is_active"`
}

// UpdateClientRequest represents the request body for updating a client account
type UpdateClientRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category" binding:"omitempty,oneof=manager client"`
	IsActive *bool   `json:"is_active"`
}

// ListClients handles GET /api/v1/clients
func ListClients(c *gin.Context) {
	if _, ok := loadCurrentUser(c); !ok {
		return
	}

	db := config.GetDB()
	var clients []models.Client
	if err := db.Order("name ASC").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch clients",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    clients,
	})
}

// CreateClient handles POST /api/v1/clients - manager only
func CreateClient(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can create clients") {
		return
	}

	var req CreateClientRequest
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

	client := models.Client{
		Name:     req.Name,
		Category: models.ClientCategoryClient,
		IsActive: true,
	}
	if req.Category != "" {
		client.Category = req.Category
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	db := config.GetDB()
	if err := db.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create client",
			},
		})
		return
	}

	services.RecordAudit(db, user, "Client", client.ID, models.AuditActionCreate, nil, client)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    client,
	})
}

// UpdateClient handles PUT /api/v1/clients/:id - manager only
func UpdateClient(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can update clients") {
		return
	}

	client, ok := findClient(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
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
	before := *client

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Category != nil {
		client.Category = *req.Category
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := db.Save(client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update client",
			},
		})
		return
	}

	services.RecordAudit(db, user, "Client", client.ID, models.AuditActionUpdate, before, client)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    client,
	})
}

// DeleteClient handles DELETE /api/v1/clients/:id - manager only. Rejected
// when the client still has sites or orders.
func DeleteClient(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can delete clients") {
		return
	}

	client, ok := findClient(c)
	if !ok {
		return
	}

	db := config.GetDB()

	var siteCount int64
	if err := db.Model(&models.Site{}).Where("client_id = ?", client.ID).Count(&siteCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check dependent sites",
			},
		})
		return
	}
	var orderCount int64
	if err := db.Model(&models.Order{}).Where("client_id = ?", client.ID).Count(&orderCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check dependent orders",
			},
		})
		return
	}
	if siteCount > 0 || orderCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CLIENT_HAS_DEPENDENTS",
				"message": "Client cannot be deleted while sites or orders reference it",
			},
		})
		return
	}

	before := *client
	if err := db.Delete(client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete client",
			},
		})
		return
	}

	services.RecordAudit(db, user, "Client", client.ID, models.AuditActionSoftDelete, before, nil)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Client deleted",
		},
	})
}

// findClient loads the client referenced by the :id path parameter
func findClient(c *gin.Context) (*models.Client, bool) {
	db := config.GetDB()
	var client models.Client
	if err := db.First(&client, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CLIENT_NOT_FOUND",
					"message": "Client not found",
				},
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to fetch client",
				},
			})
		}
		return nil, false
	}
	return &client, true
}
