package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. Status is the raw field mutated by explicit manager
// transitions; display and filtering always go through EffectiveStatus.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusInTransit = "in_transit"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// Suppliers
const (
	SupplierShifuliHar  = "shifuli_har"
	SupplierMaavarRabin = "maavar_rabin"
)

// Delivery methods
const (
	DeliveryMethodSelf     = "self"
	DeliveryMethodExternal = "external"
)

// Delivery windows
const (
	DeliveryWindowMorning   = "morning"
	DeliveryWindowAfternoon = "afternoon"
)

// Order represents a quarry-product delivery order
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null" json:"order_number"` // human-facing, sequential from "2001"

	ClientID  uint    `gorm:"not null;index" json:"client_id"`
	Client    Client  `gorm:"foreignKey:ClientID" json:"client"`
	SiteID    *uint   `gorm:"index" json:"site_id"` // nullable, unlinked orders exist
	Site      *Site   `gorm:"foreignKey:SiteID" json:"site,omitempty"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
	Supplier  string  `gorm:"not null" json:"supplier"` // shifuli_har or maavar_rabin

	QuantityTons          float64    `gorm:"not null;check:quantity_tons > 0" json:"quantity_tons"`
	DeliveredQuantityTons float64    `gorm:"not null;default:0" json:"delivered_quantity_tons"`
	DeliveryDate          time.Time  `gorm:"not null" json:"delivery_date"`
	DeliveryWindow        string     `gorm:"not null" json:"delivery_window"` // morning or afternoon
	DeliveryMethod        string     `gorm:"not null" json:"delivery_method"` // self or external
	TruckAccessSpace      bool       `gorm:"not null;default:false" json:"truck_access_space"`

	Status             string     `gorm:"not null;default:'pending'" json:"status"`
	EffectiveStatus    string     `gorm:"-" json:"effective_status"` // computed, never persisted
	IsDelivered        bool       `gorm:"not null;default:false" json:"is_delivered"`
	DeliveryNoteNumber *string    `json:"delivery_note_number"`
	DeliveryNoteS3Key  *string    `json:"delivery_note_s3_key"`
	DeliveryNoteURL    *string    `gorm:"-" json:"delivery_note_url,omitempty"` // computed, presigned URL
	DriverName         *string    `json:"driver_name"`
	ActualDeliveryDate *time.Time `json:"actual_delivery_date"`
	DeliveredAt        *time.Time `json:"delivered_at"`
	DeliveryNotes      *string    `json:"delivery_notes"`

	IsClientConfirmed bool       `gorm:"not null;default:false" json:"is_client_confirmed"`
	Rating            *int       `gorm:"check:rating IS NULL OR (rating >= 1 AND rating <= 5)" json:"rating"`
	RatingComment     *string    `json:"rating_comment"`
	RatedAt           *time.Time `json:"rated_at"`

	CreatedBy string         `gorm:"not null;index" json:"created_by"` // email of the creating user
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// ComputeEffectiveStatus derives the status that display and filtering must
// use. The raw Status field and the delivery-completion facts can disagree
// (a manager can record full delivery without flipping Status); completion
// facts always win.
func (o *Order) ComputeEffectiveStatus() string {
	if o.Status == StatusCompleted || o.IsDelivered {
		return StatusCompleted
	}
	if o.DeliveredQuantityTons > 0 && o.QuantityTons > 0 && o.DeliveredQuantityTons >= o.QuantityTons {
		return StatusCompleted
	}
	return o.Status
}

// AfterFind populates the computed EffectiveStatus field on every read
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.EffectiveStatus = o.ComputeEffectiveStatus()
	return nil
}

// statusTransitions is the allowlist of explicit manager transitions.
// completed is terminal; the duplicate action creates a new order instead.
var statusTransitions = map[string][]string{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusPending, StatusInTransit, StatusCompleted},
	StatusInTransit: {StatusCompleted},
	StatusRejected:  {StatusPending},
	StatusCompleted: {},
}

// CanTransition reports whether an explicit status change from -> to is allowed
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s is one of the known order statuses
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusInTransit, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// RecordDelivery accumulates a partial delivery on the order. The running
// total is capped at QuantityTons; once the cap is reached the order is
// flagged delivered and stamped with now. Raw Status is left untouched,
// completion is carried by EffectiveStatus.
func (o *Order) RecordDelivery(addedTons float64, noteNumber, driverName string, notes *string, now time.Time) {
	total := o.DeliveredQuantityTons + addedTons
	if total > o.QuantityTons {
		total = o.QuantityTons
	}
	o.DeliveredQuantityTons = total

	o.DeliveryNoteNumber = &noteNumber
	if driverName != "" {
		o.DriverName = &driverName
	}
	if notes != nil {
		o.DeliveryNotes = notes
	}

	if o.DeliveredQuantityTons >= o.QuantityTons {
		o.IsDelivered = true
		stamp := now
		o.DeliveredAt = &stamp
		o.ActualDeliveryDate = &stamp
	}
	o.EffectiveStatus = o.ComputeEffectiveStatus()
}
