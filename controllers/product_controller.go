package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piternoufi/quarry-orders-api/config"
	"github.com/piternoufi/quarry-orders-api/models"
)

// CreateProductRequest represents the request body for adding a product to the catalog
type CreateProductRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	NameHe    string `json:"name_he" binding:"required"`
	NameEn    string `json:"name_en" binding:"required"`
	Size      string `json:"size"`
}

// ListProducts handles GET /api/v1/products - the catalog is visible to every
// authenticated user
func ListProducts(c *gin.Context) {
	if _, ok := loadCurrentUser(c); !ok {
		return
	}

	db := config.GetDB()
	var products []models.Product
	if err := db.Order("product_id ASC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// CreateProduct handles POST /api/v1/products - manager only
func CreateProduct(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can add products") {
		return
	}

	var req CreateProductRequest
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

	product := models.Product{
		ProductID: req.ProductID,
		NameHe:    req.NameHe,
		NameEn:    req.NameEn,
		Size:      req.Size,
	}

	db := config.GetDB()
	if err := db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create product",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}
