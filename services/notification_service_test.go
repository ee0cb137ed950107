package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/piternoufi/quarry-orders-api/models"
)

func seedUsers(t *testing.T, db *gorm.DB) (manager, clientUser models.User) {
	t.Helper()

	manager = models.User{
		Auth0ID:             "auth0|manager",
		Name:                "Piter",
		Email:               "manager@example.com",
		Role:                models.RoleManager,
		RemindersEnabled:    true,
		RemindersDelayHours: 24,
	}
	require.NoError(t, db.Create(&manager).Error)

	clientUser = models.User{
		Auth0ID: "auth0|client",
		Name:    "Dana",
		Email:   "client@example.com",
		Role:    models.RoleClient,
	}
	require.NoError(t, db.Create(&clientUser).Error)
	return manager, clientUser
}

func notificationsFor(t *testing.T, db *gorm.DB, recipient string) []models.Notification {
	t.Helper()

	var notifications []models.Notification
	require.NoError(t, db.Where("recipient_email = ?", recipient).Find(&notifications).Error)
	return notifications
}

func TestNotifyOrderCreated_FansOutToManagers(t *testing.T) {
	db := setupServiceTestDB(t)
	manager, clientUser := seedUsers(t, db)
	client, site, product := seedOrderDeps(t, db)

	second := models.User{Auth0ID: "auth0|manager2", Name: "Noufi", Email: "manager2@example.com", Role: models.RoleManager}
	require.NoError(t, db.Create(&second).Error)

	order := makeTestOrder(t, db, client, site, product, "2001", models.StatusPending)
	NotifyOrderCreated(db, order)

	for _, email := range []string{manager.Email, second.Email} {
		got := notificationsFor(t, db, email)
		require.Len(t, got, 1)
		assert.Equal(t, models.NotificationNewOrder, got[0].Type)
		assert.Equal(t, "2001", got[0].OrderNumber)
		assert.Contains(t, got[0].Message, "2001")
		assert.Contains(t, got[0].Message, client.Name)
		assert.False(t, got[0].IsRead)
	}

	// The creating client is not notified of their own creation
	assert.Empty(t, notificationsFor(t, db, clientUser.Email))
}

func TestNotifyStatusChanged_IncludesCreatingClient(t *testing.T) {
	db := setupServiceTestDB(t)
	manager, clientUser := seedUsers(t, db)
	client, site, product := seedOrderDeps(t, db)

	order := makeTestOrder(t, db, client, site, product, "2002", models.StatusApproved)
	NotifyStatusChanged(db, order, models.StatusApproved)

	managerGot := notificationsFor(t, db, manager.Email)
	require.Len(t, managerGot, 1)
	assert.Equal(t, models.NotificationStatusChange, managerGot[0].Type)
	assert.Contains(t, managerGot[0].Message, models.StatusApproved)

	clientGot := notificationsFor(t, db, clientUser.Email)
	require.Len(t, clientGot, 1)
	assert.Equal(t, "2002", clientGot[0].OrderNumber)
}

func TestNotifyStatusChanged_ManagerCreatedOrderSkipsClientFanout(t *testing.T) {
	db := setupServiceTestDB(t)
	manager, clientUser := seedUsers(t, db)
	client, site, product := seedOrderDeps(t, db)

	order := makeTestOrder(t, db, client, site, product, "2003", models.StatusApproved)
	order.CreatedBy = manager.Email
	require.NoError(t, db.Save(order).Error)

	NotifyStatusChanged(db, order, models.StatusApproved)

	assert.Len(t, notificationsFor(t, db, manager.Email), 1)
	assert.Empty(t, notificationsFor(t, db, clientUser.Email))
}

func TestNotifyOrderDelivered(t *testing.T) {
	db := setupServiceTestDB(t)
	manager, clientUser := seedUsers(t, db)
	client, site, product := seedOrderDeps(t, db)

	order := makeTestOrder(t, db, client, site, product, "2004", models.StatusApproved)
	NotifyOrderDelivered(db, order)

	for _, email := range []string{manager.Email, clientUser.Email} {
		got := notificationsFor(t, db, email)
		require.Len(t, got, 1)
		assert.Equal(t, models.NotificationDelivered, got[0].Type)
	}
}

func TestRunReminderSweep_StalePendingOrders(t *testing.T) {
	db := setupServiceTestDB(t)
	manager, _ := seedUsers(t, db)
	client, site, product := seedOrderDeps(t, db)

	now := time.Now()

	stale := makeTestOrder(t, db, client, site, product, "2010", models.StatusPending)
	require.NoError(t, db.Model(stale).UpdateColumn("created_at", now.Add(-30*time.Hour)).Error)

	fresh := makeTestOrder(t, db, client, site, product, "2011", models.StatusPending)
	require.NoError(t, db.Model(fresh).UpdateColumn("created_at", now.Add(-2*time.Hour)).Error)

	created, err := RunReminderSweep(db, now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	got := notificationsFor(t, db, manager.Email)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationPendingReminder, got[0].Type)
	assert.Equal(t, "2010", got[0].OrderNumber)
}

func TestRunReminderSweep_IsIdempotent(t *testing.T) {
	db := setupServiceTestDB(t)
	manager, _ := seedUsers(t, db)
	client, site, product := seedOrderDeps(t, db)

	now := time.Now()
	stale := makeTestOrder(t, db, client, site, product, "2012", models.StatusPending)
	require.NoError(t, db.Model(stale).UpdateColumn("created_at", now.Add(-48*time.Hour)).Error)

	created, err := RunReminderSweep(db, now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// Running the sweep again creates nothing new
	created, err = RunReminderSweep(db, now)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	assert.Len(t, notificationsFor(t, db, manager.Email), 1)
}

func TestRunReminderSweep_OverdueDelivery(t *testing.T) {
	db := setupServiceTestDB(t)
	manager, _ := seedUsers(t, db)
	client, site, product := seedOrderDeps(t, db)

	now := time.Now()

	overdue := makeTestOrder(t, db, client, site, product, "2013", models.StatusApproved)
	require.NoError(t, db.Model(overdue).UpdateColumn("delivery_date", now.AddDate(0, 0, -2)).Error)

	// Fully delivered order past its date must not remind
	done := makeTestOrder(t, db, client, site, product, "2014", models.StatusApproved)
	require.NoError(t, db.Model(done).Updates(map[string]interface{}{
		"delivery_date":           now.AddDate(0, 0, -2),
		"delivered_quantity_tons": done.QuantityTons,
	}).Error)

	created, err := RunReminderSweep(db, now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	got := notificationsFor(t, db, manager.Email)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationDeliveryOverdue, got[0].Type)
	assert.Equal(t, "2013", got[0].OrderNumber)
}

func TestRunReminderSweep_RespectsOptOutAndDelay(t *testing.T) {
	db := setupServiceTestDB(t)
	client, site, product := seedOrderDeps(t, db)

	optedOut := models.User{
		Auth0ID: "auth0|quiet", Name: "Quiet", Email: "quiet@example.com",
		Role: models.RoleManager, RemindersEnabled: false,
	}
	require.NoError(t, db.Create(&optedOut).Error)

	patient := models.User{
		Auth0ID: "auth0|patient", Name: "Patient", Email: "patient@example.com",
		Role: models.RoleManager, RemindersEnabled: true, RemindersDelayHours: 72,
	}
	require.NoError(t, db.Create(&patient).Error)

	now := time.Now()
	stale := makeTestOrder(t, db, client, site, product, "2015", models.StatusPending)
	require.NoError(t, db.Model(stale).UpdateColumn("created_at", now.Add(-30*time.Hour)).Error)

	// 30h stale: below the 72h delay, and the opted-out manager never gets one
	created, err := RunReminderSweep(db, now)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Empty(t, notificationsFor(t, db, optedOut.Email))
	assert.Empty(t, notificationsFor(t, db, patient.Email))
}
