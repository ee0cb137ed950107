package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a quarry product (sand, gravel, stone grades)
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID string         `gorm:"uniqueIndex;not null" json:"product_id"` // supplier-facing code
	NameHe    string         `gorm:"not null" json:"name_he"`
	NameEn    string         `gorm:"not null" json:"name_en"`
	Size      string         `json:"size"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
