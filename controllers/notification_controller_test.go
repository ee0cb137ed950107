package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piternoufi/quarry-orders-api/models"
)

func notificationRouter(auth0ID string) *gin.Engine {
	router := gin.New()
	v1 := router.Group("/api/v1", mockAuthMiddleware(auth0ID))
	v1.GET("/notifications", ListNotifications)
	v1.PUT("/notifications/:id/read", MarkNotificationRead)
	v1.POST("/reminders/run", RunReminders)
	return router
}

func TestListNotifications_OnlyOwn(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|manager", "manager@example.com", models.RoleManager)

	require.NoError(t, db.Create(&models.Notification{
		RecipientEmail: "manager@example.com",
		Type:           models.NotificationNewOrder,
		Message:        "New order 2001",
		OrderNumber:    "2001",
	}).Error)
	require.NoError(t, db.Create(&models.Notification{
		RecipientEmail: "someone-else@example.com",
		Type:           models.NotificationNewOrder,
		Message:        "New order 2002",
		OrderNumber:    "2002",
	}).Error)

	w, response := performRequest(t, notificationRouter("auth0|manager"), "GET", "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := response["data"].([]interface{})
	require.Len(t, list, 1)
	entry := list[0].(map[string]interface{})
	assert.Equal(t, "2001", entry["order_number"])
	assert.Equal(t, false, entry["is_read"])
}

func TestMarkNotificationRead(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|manager", "manager@example.com", models.RoleManager)
	seedUser(t, db, "auth0|other", "other@example.com", models.RoleManager)

	notification := models.Notification{
		RecipientEmail: "manager@example.com",
		Type:           models.NotificationNewOrder,
		Message:        "New order 2001",
		OrderNumber:    "2001",
	}
	require.NoError(t, db.Create(&notification).Error)
	readPath := fmt.Sprintf("/api/v1/notifications/%d/read", notification.ID)

	// Only the recipient may mark it read
	w, response := performRequest(t, notificationRouter("auth0|other"), "PUT", readPath, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(response))

	w, response = performRequest(t, notificationRouter("auth0|manager"), "PUT", readPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, dataMap(t, response)["is_read"])

	w, response = performRequest(t, notificationRouter("auth0|manager"), "PUT", "/api/v1/notifications/999/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOTIFICATION_NOT_FOUND", errorCode(response))
}

func TestRunReminders(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|client", "client@example.com", models.RoleClient)
	seedUser(t, db, "auth0|manager", "manager@example.com", models.RoleManager)
	client, site, product := seedCatalog(t, db)

	stale := seedOrder(t, db, client, site, product, "2001", models.StatusPending, "client@example.com")
	require.NoError(t, db.Model(stale).UpdateColumn("created_at", time.Now().Add(-48*time.Hour)).Error)

	w, response := performRequest(t, notificationRouter("auth0|client"), "POST", "/api/v1/reminders/run", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(response))

	w, response = performRequest(t, notificationRouter("auth0|manager"), "POST", "/api/v1/reminders/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, dataMap(t, response)["created"])

	// Idempotent on repeat
	w, response = performRequest(t, notificationRouter("auth0|manager"), "POST", "/api/v1/reminders/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, dataMap(t, response)["created"])
}
