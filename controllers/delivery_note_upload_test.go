package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piternoufi/quarry-orders-api/models"
	"github.com/piternoufi/quarry-orders-api/services"
)

func uploadRouter(auth0ID string) *gin.Engine {
	router := gin.New()
	v1 := router.Group("/api/v1", mockAuthMiddleware(auth0ID))
	v1.POST("/orders/:id/delivery-note", UploadDeliveryNote)
	return router
}

// multipartRequest builds a multipart upload with a single "file" part
func multipartRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest("POST", path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func setupMockDocuments(t *testing.T) *services.MockS3Service {
	t.Helper()
	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	services.InitDocumentService(mockS3)
	return mockS3
}

func TestUploadDeliveryNote(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|manager", "manager@example.com", models.RoleManager)
	client, site, product := seedCatalog(t, db)
	order := seedOrder(t, db, client, site, product, "2001", models.StatusApproved, "manager@example.com")

	mockS3 := setupMockDocuments(t)
	path := fmt.Sprintf("/api/v1/orders/%d/delivery-note", order.ID)

	req := multipartRequest(t, path, "note.pdf", []byte("%PDF-1.4 fake scan"))
	w := performRaw(t, uploadRouter("auth0|manager"), req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := dataMap(t, response)
	s3Key, _ := data["delivery_note_s3_key"].(string)
	require.NotEmpty(t, s3Key)
	assert.True(t, mockS3.FileExists(s3Key))
	url, _ := data["delivery_note_url"].(string)
	assert.Contains(t, url, s3Key)

	// A second upload replaces the first scan
	req = multipartRequest(t, path, "note2.pdf", []byte("%PDF-1.4 better scan"))
	w = performRaw(t, uploadRouter("auth0|manager"), req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	newKey, _ := dataMap(t, response)["delivery_note_s3_key"].(string)
	require.NotEmpty(t, newKey)
	assert.NotEqual(t, s3Key, newKey)
	assert.False(t, mockS3.FileExists(s3Key), "old scan is removed")
	assert.True(t, mockS3.FileExists(newKey))
}

func TestUploadDeliveryNote_Guards(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|client", "client@example.com", models.RoleClient)
	seedUser(t, db, "auth0|manager", "manager@example.com", models.RoleManager)
	client, site, product := seedCatalog(t, db)
	order := seedOrder(t, db, client, site, product, "2001", models.StatusApproved, "client@example.com")

	setupMockDocuments(t)
	path := fmt.Sprintf("/api/v1/orders/%d/delivery-note", order.ID)

	// Clients cannot attach delivery notes
	req := multipartRequest(t, path, "note.pdf", []byte("scan"))
	w := performRaw(t, uploadRouter("auth0|client"), req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unsupported file formats are rejected with the validation code
	req = multipartRequest(t, path, "note.docx", []byte("doc"))
	w = performRaw(t, uploadRouter("auth0|manager"), req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "INVALID_FILE_FORMAT", errorCode(response))

	// A missing file part is its own error
	emptyReq, err := http.NewRequest("POST", path, bytes.NewBuffer(nil))
	require.NoError(t, err)
	emptyReq.Header.Set("Content-Type", "application/json")
	w = performRaw(t, uploadRouter("auth0|manager"), emptyReq)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "MISSING_FILE", errorCode(response))
}
