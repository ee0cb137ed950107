package models

import (
	"time"

	"gorm.io/gorm"
)

// Client categories
const (
	ClientCategoryManager = "manager"
	ClientCategoryClient  = "client"
)

// Client represents the commercial account an order is billed against
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Category  string         `gorm:"not null;default:'client'" json:"category"` // manager or client
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Client model
func (Client) TableName() string {
	return "clients"
}
