package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/piternoufi/quarry-orders-api/logger"
	"github.com/piternoufi/quarry-orders-api/models"
	"gorm.io/gorm"
)

// auditChanges is the {before, after} document stored on each audit row
type auditChanges struct {
	Before interface{} `json:"before"`
	After  interface{} `json:"after"`
}

// RecordAudit appends an audit row for an entity mutation. The audit trail is
// a best-effort sink: failures are logged and swallowed, never propagated to
// the mutation that triggered them.
func RecordAudit(db *gorm.DB, user *models.User, entityType string, entityID uint, action string, before, after interface{}) {
	changes, err := json.Marshal(auditChanges{Before: before, After: after})
	if err != nil {
		logger.Logger.WithError(err).Warn("Failed to marshal audit changes")
		changes = []byte("{}")
	}

	entry := models.AuditLog{
		EntityType: entityType,
		EntityID:   fmt.Sprintf("%d", entityID),
		Action:     action,
		UserEmail:  user.Email,
		UserRole:   user.Role,
		Changes:    string(changes),
		Timestamp:  time.Now(),
	}

	if err := db.Create(&entry).Error; err != nil {
		logger.Logger.WithError(err).WithFields(map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
			"action":      action,
		}).Warn("Failed to write audit log entry")
	}
}
