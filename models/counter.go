package models

// OrderCounter backs sequential order-number allocation. The single row named
// "order_number" is bumped with an atomic UPDATE inside a transaction, so
// concurrent creations cannot be issued the same number.
type OrderCounter struct {
	Name  string `gorm:"primaryKey" json:"name"`
	Value int64  `gorm:"not null" json:"value"`
}

// TableName specifies the table name for the OrderCounter model
func (OrderCounter) TableName() string {
	return "order_counters"
}

// AllModels lists every model registered for migration, in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Client{},
		&Site{},
		&Product{},
		&Order{},
		&Notification{},
		&Message{},
		&AuditLog{},
		&OrderCounter{},
	}
}
