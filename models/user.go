package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleManager       = "manager"
	RoleClient        = "client"
	RoleAdministrator = "administrator"
)

// User represents an application user (manager, client, or administrator)
type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Auth0ID             string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name                string         `gorm:"not null" json:"name"`
	Email               string         `gorm:"uniqueIndex;not null" json:"email"`
	Role                string         `gorm:"not null;default:'client'" json:"role"` // manager, client, or administrator
	RemindersEnabled    bool           `gorm:"not null;default:true" json:"reminders_enabled"`
	RemindersDelayHours int            `gorm:"not null;default:24" json:"reminders_delay_hours"`
	Language            string         `gorm:"not null;default:'he'" json:"language"` // he or en
	Company             string         `json:"company"`
	Phone               string         `json:"phone"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsManager reports whether the user can approve, reject, deliver and delete orders
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// IsAdministrator reports whether the user can read the audit trail
func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}

// CanManageOrders reports whether the user has manager-level access to orders.
// Administrators inherit the manager surface.
func (u *User) CanManageOrders() bool {
	return u.Role == RoleManager || u.Role == RoleAdministrator
}
