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

// CreateSiteRequest represents the request body for creating a site
type CreateSiteRequest struct {
	ClientID     uint   `json:"client_id" binding:"required"`
	SiteName     string `json:"site_name" binding:"required"`
	RegionType   string `json:"region_type" binding:"omitempty,oneof=eilat outside_eilat"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	IsActive     *bool  `json:"is_active"`
}

// UpdateSiteRequest represents the request body for updating a site
type UpdateSiteRequest struct {
	SiteName     *string `json:"site_name"`
	RegionType   *string `json:"region_type" binding:"omitempty,oneof=eilat outside_eilat"`
	ContactName  *string `json:"contact_name"`
	ContactPhone *string `json:"contact_phone"`
	IsActive     *bool   `json:"is_active"`
}

// ListSites handles GET /api/v1/sites with an optional ?client_id= filter
func ListSites(c *gin.Context) {
	if _, ok := loadCurrentUser(c); !ok {
		return
	}

	db := config.GetDB()
	query := db.Order("site_name ASC")
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var sites []models.Site
	if err := query.Find(&sites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch sites",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    sites,
	})
}

// CreateSite handles POST /api/v1/sites - manager only
func CreateSite(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can create sites") {
		return
	}

	var req CreateSiteRequest
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

	var client models.Client
	if err := db.First(&client, req.ClientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CLIENT_NOT_FOUND",
				"message": "Client not found",
			},
		})
		return
	}

	site := models.Site{
		ClientID:     client.ID,
		SiteName:     req.SiteName,
		RegionType:   models.RegionEilat,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		IsActive:     true,
	}
	if req.RegionType != "" {
		site.RegionType = req.RegionType
	}
	if req.IsActive != nil {
		site.IsActive = *req.IsActive
	}

	if err := db.Create(&site).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create site",
			},
		})
		return
	}

	services.RecordAudit(db, user, "Site", site.ID, models.AuditActionCreate, nil, site)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    site,
	})
}

// UpdateSite handles PUT /api/v1/sites/:id - manager only
func UpdateSite(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can update sites") {
		return
	}

	site, ok := findSite(c)
	if !ok {
		return
	}

	var req UpdateSiteRequest
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
	before := *site

	if req.SiteName != nil {
		site.SiteName = *req.SiteName
	}
	if req.RegionType != nil {
		site.RegionType = *req.RegionType
	}
	if req.ContactName != nil {
		site.ContactName = *req.ContactName
	}
	if req.ContactPhone != nil {
		site.ContactPhone = *req.ContactPhone
	}
	if req.IsActive != nil {
		site.IsActive = *req.IsActive
	}

	if err := db.Save(site).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update site",
			},
		})
		return
	}

	services.RecordAudit(db, user, "Site", site.ID, models.AuditActionUpdate, before, site)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    site,
	})
}

// DeleteSite handles DELETE /api/v1/sites/:id - manager only. Rejected when
// orders still reference the site.
func DeleteSite(c *gin.Context) {
	user, ok := loadCurrentUser(c)
	if !ok {
		return
	}
	if !requireManager(c, user, "Only managers can delete sites") {
		return
	}

	site, ok := findSite(c)
	if !ok {
		return
	}

	db := config.GetDB()

	var orderCount int64
	if err := db.Model(&models.Order{}).Where("site_id = ?", site.ID).Count(&orderCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check dependent orders",
			},
		})
		return
	}
	if orderCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SITE_HAS_DEPENDENTS",
				"message": "Site cannot be deleted while orders reference it",
			},
		})
		return
	}

	before := *site
	if err := db.Delete(site).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete site",
			},
		})
		return
	}

	services.RecordAudit(db, user, "Site", site.ID, models.AuditActionSoftDelete, before, nil)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Site deleted",
		},
	})
}

// findSite loads the site referenced by the :id path parameter
func findSite(c *gin.Context) (*models.Site, bool) {
	db := config.GetDB()
	var site models.Site
	if err := db.First(&site, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SITE_NOT_FOUND",
					"message": "Site not found",
				},
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to fetch site",
				},
			})
		}
		return nil, false
	}
	return &site, true
}
