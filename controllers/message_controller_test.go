package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piternoufi/quarry-orders-api/models"
)

func messageRouter(auth0ID string) *gin.Engine {
	router := gin.New()
	v1 := router.Group("/api/v1", mockAuthMiddleware(auth0ID))
	v1.POST("/messages", SendMessage)
	v1.GET("/messages", ListMessages)
	v1.PUT("/messages/:id/read", MarkMessageRead)
	return router
}

func TestSendMessage_NewThreadKeyedByFirstMessage(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|client", "client@example.com", models.RoleClient)

	w, response := performRequest(t, messageRouter("auth0|client"), "POST", "/api/v1/messages", gin.H{
		"recipient_email": "manager@example.com",
		"subject":         "Delivery window",
		"body":            "Can we move to the afternoon?",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataMap(t, response)
	assert.Equal(t, "client@example.com", data["sender_email"])
	assert.Equal(t, data["id"], data["thread_id"], "first message keys its own thread")
}

func TestSendMessage_ReplyContinuesThread(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|client", "client@example.com", models.RoleClient)
	seedUser(t, db, "auth0|manager", "manager@example.com", models.RoleManager)

	w, response := performRequest(t, messageRouter("auth0|client"), "POST", "/api/v1/messages", gin.H{
		"recipient_email": "manager@example.com",
		"subject":         "Delivery window",
		"body":            "Can we move to the afternoon?",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	threadID := dataMap(t, response)["thread_id"].(float64)

	w, response = performRequest(t, messageRouter("auth0|manager"), "POST", "/api/v1/messages", gin.H{
		"recipient_email": "client@example.com",
		"subject":         "Re: Delivery window",
		"body":            "Afternoon works.",
		"thread_id":       threadID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, threadID, dataMap(t, response)["thread_id"])

	// Both participants see the whole thread
	w, response = performRequest(t, messageRouter("auth0|client"),
		"GET", fmt.Sprintf("/api/v1/messages?thread_id=%d", int(threadID)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["data"].([]interface{}), 2)
}

func TestSendMessage_OrderVisibilityEnforced(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|client", "client@example.com", models.RoleClient)
	client, site, product := seedCatalog(t, db)

	foreign := seedOrder(t, db, client, site, product, "2001", models.StatusPending, "other@example.com")

	w, response := performRequest(t, messageRouter("auth0|client"), "POST", "/api/v1/messages", gin.H{
		"recipient_email": "manager@example.com",
		"subject":         "About order 2001",
		"body":            "Status?",
		"order_id":        foreign.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(response))
}

func TestListMessages_SenderOrRecipientOnly(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|client", "client@example.com", models.RoleClient)

	require.NoError(t, db.Create(&models.Message{
		SenderEmail: "client@example.com", RecipientEmail: "manager@example.com",
		Subject: "sent", Body: "x", ThreadID: 1,
	}).Error)
	require.NoError(t, db.Create(&models.Message{
		SenderEmail: "manager@example.com", RecipientEmail: "client@example.com",
		Subject: "received", Body: "x", ThreadID: 2,
	}).Error)
	require.NoError(t, db.Create(&models.Message{
		SenderEmail: "manager@example.com", RecipientEmail: "other@example.com",
		Subject: "unrelated", Body: "x", ThreadID: 3,
	}).Error)

	w, response := performRequest(t, messageRouter("auth0|client"), "GET", "/api/v1/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["data"].([]interface{}), 2)
}

func TestMarkMessageRead_RecipientOnly(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|client", "client@example.com", models.RoleClient)
	seedUser(t, db, "auth0|manager", "manager@example.com", models.RoleManager)

	message := models.Message{
		SenderEmail: "manager@example.com", RecipientEmail: "client@example.com",
		Subject: "hello", Body: "x", ThreadID: 1,
	}
	require.NoError(t, db.Create(&message).Error)
	readPath := fmt.Sprintf("/api/v1/messages/%d/read", message.ID)

	// The sender cannot mark their own outgoing message read
	w, response := performRequest(t, messageRouter("auth0|manager"), "PUT", readPath, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(response))

	w, response = performRequest(t, messageRouter("auth0|client"), "PUT", readPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, dataMap(t, response)["is_read"])
}
