package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/piternoufi/quarry-orders-api/config"
	"github.com/piternoufi/quarry-orders-api/middleware"
	"github.com/piternoufi/quarry-orders-api/models"
)

// setupTestDB opens a fresh in-memory database, migrates all models and
// installs it as the global connection
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	config.SetDB(db)
	return db
}

// mockAuthMiddleware simulates a validated token for the given Auth0 subject
func mockAuthMiddleware(auth0ID string) gin.HandlerFunc {
	return mockAuthMiddlewareWithClaims(auth0ID, "", "mock-token")
}

// mockAuthMiddlewareWithClaims populates the context exactly the way
// EnsureValidToken does, including the namespaced role claim
func mockAuthMiddlewareWithClaims(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: auth0ID},
			CustomClaims:     &middleware.CustomClaims{Role: role},
		})
		c.Next()
	}
}

func seedUser(t *testing.T, db *gorm.DB, auth0ID, email, role string) models.User {
	t.Helper()
	user := models.User{
		Auth0ID:             auth0ID,
		Name:                "Test " + role,
		Email:               email,
		Role:                role,
		RemindersEnabled:    true,
		RemindersDelayHours: 24,
		Language:            "he",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCatalog(t *testing.T, db *gorm.DB) (models.Client, models.Site, models.Product) {
	t.Helper()

	client := models.Client{Name: "Arava Builders", Category: models.ClientCategoryClient, IsActive: true}
	require.NoError(t, db.Create(&client).Error)

	site := models.Site{ClientID: client.ID, SiteName: "Shachamon Phase 3", RegionType: models.RegionEilat, IsActive: true}
	require.NoError(t, db.Create(&site).Error)

	product := models.Product{ProductID: "sand-01", NameHe: "חול ים", NameEn: "Sea sand"}
	require.NoError(t, db.Create(&product).Error)

	return client, site, product
}

func seedOrder(t *testing.T, db *gorm.DB, client models.Client, site models.Site, product models.Product, orderNumber, status, createdBy string) *models.Order {
	t.Helper()
	order := models.Order{
		OrderNumber:    orderNumber,
		ClientID:       client.ID,
		SiteID:         &site.ID,
		ProductID:      product.ID,
		Supplier:       models.SupplierShifuliHar,
		QuantityTons:   100,
		DeliveryDate:   time.Now().AddDate(0, 0, 1),
		DeliveryWindow: models.DeliveryWindowMorning,
		DeliveryMethod: models.DeliveryMethodExternal,
		Status:         status,
		CreatedBy:      createdBy,
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

// performRequest runs one JSON request through a router and decodes the envelope
func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

// performRaw runs a prepared request without decoding the response body
func performRaw(t *testing.T, router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// errorCode digs the machine error code out of a response envelope
func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

// dataMap returns the envelope's data object
func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "response data should be an object")
	return data
}
