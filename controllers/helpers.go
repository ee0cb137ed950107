package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piternoufi/quarry-orders-api/config"
	"github.com/piternoufi/quarry-orders-api/middleware"
	"github.com/piternoufi/quarry-orders-api/models"
)

// loadCurrentUser resolves the authenticated user's profile row from the
// token subject. On failure it writes the error response and returns false;
// every guarded handler starts with this.
func loadCurrentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return &user, true
}

// requireManager writes a 403 and returns false when the user lacks
// manager-level access
func requireManager(c *gin.Context, user *models.User, message string) bool {
	if user.CanManageOrders() {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FORBIDDEN",
			"message": message,
		},
	})
	return false
}
