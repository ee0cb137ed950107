package models

import (
	"time"

	"gorm.io/gorm"
)

// Site region types; outside_eilat drives the 40-ton external-delivery floor
const (
	RegionEilat        = "eilat"
	RegionOutsideEilat = "outside_eilat"
)

// Site represents a construction site a client takes deliveries at
type Site struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ClientID     uint           `gorm:"not null;index" json:"client_id"`
	Client       Client         `gorm:"foreignKey:ClientID" json:"-"`
	SiteName     string         `gorm:"not null" json:"site_name"`
	RegionType   string         `gorm:"not null;default:'eilat'" json:"region_type"` // eilat or outside_eilat
	ContactName  string         `json:"contact_name"`
	ContactPhone string         `json:"contact_phone"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Site model
func (Site) TableName() string {
	return "sites"
}
