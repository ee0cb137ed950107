package models

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a message between users, optionally attached to an order.
// ThreadID defaults to the message's own ID when a new thread is started;
// threads are reconstructed by grouping on ThreadID.
type Message struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	SenderEmail    string         `gorm:"not null;index" json:"sender_email"`
	RecipientEmail string         `gorm:"not null;index" json:"recipient_email"`
	Subject        string         `gorm:"not null" json:"subject"`
	Body           string         `gorm:"type:text;not null" json:"body"`
	ThreadID       uint           `gorm:"index" json:"thread_id"`
	OrderID        *uint          `gorm:"index" json:"order_id"`
	Order          *Order         `gorm:"foreignKey:OrderID" json:"-"`
	IsRead         bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
