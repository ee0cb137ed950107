package models

import (
	"time"
)

// Audit actions
const (
	AuditActionCreate       = "create"
	AuditActionUpdate       = "update"
	AuditActionDelete       = "delete"
	AuditActionSoftDelete   = "soft_delete"
	AuditActionRestore      = "restore"
	AuditActionStatusChange = "status_change"
)

// AuditLog is an append-only record of entity mutations. Changes holds a JSON
// document of the form {"before": ..., "after": ...}.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EntityType string    `gorm:"not null;index" json:"entity_type"`
	EntityID   string    `gorm:"not null;index" json:"entity_id"`
	Action     string    `gorm:"not null" json:"action"`
	UserEmail  string    `gorm:"not null;index" json:"user_email"`
	UserRole   string    `gorm:"not null" json:"user_role"`
	Changes    string    `gorm:"type:text" json:"changes"`
	Metadata   string    `gorm:"type:text" json:"metadata"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName specifies the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
