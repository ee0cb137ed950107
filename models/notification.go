package models

import (
	"time"
)

// Notification types
const (
	NotificationNewOrder        = "new_order"
	NotificationStatusChange    = "order_status_change"
	NotificationDelivered       = "order_delivered"
	NotificationPendingReminder = "order_pending_reminder"
	NotificationDeliveryOverdue = "order_delivery_overdue"
)

// Notification represents a per-recipient in-app notification. OrderNumber
// carries the human-facing order number, not the entity ID: recipients see the
// number directly and the UI links through it.
type Notification struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RecipientEmail string    `gorm:"not null;index" json:"recipient_email"`
	Type           string    `gorm:"not null;index" json:"type"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	IsRead         bool      `gorm:"not null;default:false" json:"is_read"`
	OrderNumber    string    `gorm:"index" json:"order_number"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
