package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/piternoufi/quarry-orders-api/models"
)

// setupServiceTestDB opens a fresh in-memory database with all models migrated
func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// seedOrderDeps creates a client, site and product to hang test orders on
func seedOrderDeps(t *testing.T, db *gorm.DB) (models.Client, models.Site, models.Product) {
	t.Helper()

	client := models.Client{Name: "Arava Builders", Category: models.ClientCategoryClient}
	require.NoError(t, db.Create(&client).Error)

	site := models.Site{ClientID: client.ID, SiteName: "Shachamon Phase 3", RegionType: models.RegionEilat}
	require.NoError(t, db.Create(&site).Error)

	product := models.Product{ProductID: "sand-01", NameHe: "חול ים", NameEn: "Sea sand"}
	require.NoError(t, db.Create(&product).Error)

	return client, site, product
}

// makeTestOrder builds a persisted order with sane defaults
func makeTestOrder(t *testing.T, db *gorm.DB, client models.Client, site models.Site, product models.Product, orderNumber, status string) *models.Order {
	t.Helper()

	order := models.Order{
		OrderNumber:    orderNumber,
		ClientID:       client.ID,
		SiteID:         &site.ID,
		ProductID:      product.ID,
		Supplier:       models.SupplierShifuliHar,
		QuantityTons:   40,
		DeliveryDate:   time.Now().AddDate(0, 0, 1),
		DeliveryWindow: models.DeliveryWindowMorning,
		DeliveryMethod: models.DeliveryMethodExternal,
		Status:         status,
		CreatedBy:      "client@example.com",
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}
