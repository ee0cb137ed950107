package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/piternoufi/quarry-orders-api/logger"
	"github.com/piternoufi/quarry-orders-api/models"
	"gorm.io/gorm"
)

// Notification fan-out is best-effort by contract: a failed insert is logged
// and swallowed, it never blocks or rolls back the order mutation that
// triggered it. Partial fan-out (some recipients notified, some not) is
// accepted and not retried.

// NotifyOrderCreated notifies all managers that a new order was placed
func NotifyOrderCreated(db *gorm.DB, order *models.Order) {
	message := fmt.Sprintf("New order %s from %s", order.OrderNumber, clientDisplayName(db, order))
	for _, recipient := range managerEmails(db) {
		createNotification(db, recipient, models.NotificationNewOrder, message, order.OrderNumber)
	}
}

// NotifyStatusChanged notifies managers, and the originating client when the
// creator is a client user, that an order's status changed
func NotifyStatusChanged(db *gorm.DB, order *models.Order, newStatus string) {
	message := fmt.Sprintf("Order %s for %s is now %s", order.OrderNumber, clientDisplayName(db, order), newStatus)
	for _, recipient := range fanoutRecipients(db, order) {
		createNotification(db, recipient, models.NotificationStatusChange, message, order.OrderNumber)
	}
}

// NotifyOrderDelivered notifies managers, and the originating client when the
// creator is a client user, that a delivery was recorded against an order
func NotifyOrderDelivered(db *gorm.DB, order *models.Order) {
	message := fmt.Sprintf("Order %s for %s was delivered", order.OrderNumber, clientDisplayName(db, order))
	for _, recipient := range fanoutRecipients(db, order) {
		createNotification(db, recipient, models.NotificationDelivered, message, order.OrderNumber)
	}
}

// RunReminderSweep generates reminder notifications for managers:
// pending orders older than each manager's configured delay hours, and
// approved-but-undelivered orders whose planned delivery date has passed.
// Existing (recipient, order number, type) triples are not re-created, so the
// sweep can run on every dashboard load. Returns the number of notifications
// created.
func RunReminderSweep(db *gorm.DB, now time.Time) (int, error) {
	var managers []models.User
	if err := db.Where("role = ? AND reminders_enabled = ?", models.RoleManager, true).Find(&managers).Error; err != nil {
		return 0, fmt.Errorf("failed to load managers for reminder sweep: %w", err)
	}

	created := 0
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, manager := range managers {
		delay := manager.RemindersDelayHours
		if delay <= 0 {
			delay = 24
		}
		cutoff := now.Add(-time.Duration(delay) * time.Hour)

		var stale []models.Order
		if err := db.Where("status = ? AND created_at < ?", models.StatusPending, cutoff).Find(&stale).Error; err != nil {
			return created, fmt.Errorf("failed to load stale pending orders: %w", err)
		}
		for i := range stale {
			message := fmt.Sprintf("Order %s is still pending approval", stale[i].OrderNumber)
			if createReminderOnce(db, manager.Email, models.NotificationPendingReminder, message, stale[i].OrderNumber) {
				created++
			}
		}

		var overdue []models.Order
		if err := db.Where("status = ? AND is_delivered = ? AND delivery_date < ?",
			models.StatusApproved, false, startOfDay).Find(&overdue).Error; err != nil {
			return created, fmt.Errorf("failed to load overdue orders: %w", err)
		}
		for i := range overdue {
			if overdue[i].ComputeEffectiveStatus() == models.StatusCompleted {
				continue
			}
			message := fmt.Sprintf("Order %s is past its delivery date and not delivered", overdue[i].OrderNumber)
			if createReminderOnce(db, manager.Email, models.NotificationDeliveryOverdue, message, overdue[i].OrderNumber) {
				created++
			}
		}
	}

	return created, nil
}

// createReminderOnce inserts a reminder unless the same (recipient, order
// number, type) triple already exists. The existence check and insert run in
// one transaction. Reports whether a notification was created.
func createReminderOnce(db *gorm.DB, recipient, notifType, message, orderNumber string) bool {
	createdNew := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Notification
		err := tx.Where("recipient_email = ? AND order_number = ? AND type = ?",
			recipient, orderNumber, notifType).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&models.Notification{
			RecipientEmail: recipient,
			Type:           notifType,
			Message:        message,
			OrderNumber:    orderNumber,
		}).Error; err != nil {
			return err
		}
		createdNew = true
		return nil
	})
	if err != nil {
		logger.Logger.WithError(err).WithFields(map[string]interface{}{
			"recipient":    recipient,
			"order_number": orderNumber,
			"type":         notifType,
		}).Warn("Failed to create reminder notification")
		return false
	}
	return createdNew
}

// createNotification inserts one notification row, logging and swallowing failures
func createNotification(db *gorm.DB, recipient, notifType, message, orderNumber string) {
	notification := models.Notification{
		RecipientEmail: recipient,
		Type:           notifType,
		Message:        message,
		OrderNumber:    orderNumber,
	}
	if err := db.Create(&notification).Error; err != nil {
		logger.Logger.WithError(err).WithFields(map[string]interface{}{
			"recipient":    recipient,
			"order_number": orderNumber,
			"type":         notifType,
		}).Warn("Failed to create notification")
	}
}

// fanoutRecipients resolves the manager set plus the order's creator when the
// creator is a client user
func fanoutRecipients(db *gorm.DB, order *models.Order) []string {
	recipients := managerEmails(db)

	var creator models.User
	if err := db.Where("email = ?", order.CreatedBy).First(&creator).Error; err == nil {
		if creator.Role == models.RoleClient {
			recipients = append(recipients, creator.Email)
		}
	}

	return recipients
}

// managerEmails lists the emails of all manager users. A failed lookup yields
// an empty fan-out, logged and swallowed like any other best-effort failure.
func managerEmails(db *gorm.DB) []string {
	var managers []models.User
	if err := db.Where("role = ?", models.RoleManager).Find(&managers).Error; err != nil {
		logger.Logger.WithError(err).Warn("Failed to resolve notification recipients")
		return nil
	}
	emails := make([]string, 0, len(managers))
	for _, m := range managers {
		emails = append(emails, m.Email)
	}
	return emails
}

// clientDisplayName resolves the billed client's name for notification text,
// falling back to the raw order number audience-neutral form
func clientDisplayName(db *gorm.DB, order *models.Order) string {
	if order.Client.Name != "" {
		return order.Client.Name
	}
	var client models.Client
	if err := db.First(&client, order.ClientID).Error; err != nil {
		return "unknown client"
	}
	return client.Name
}
