package utils

import (
	"time"

	"github.com/piternoufi/quarry-orders-api/models"
)

const (
	// MinExternalQuantityTons is the floor for external deliveries
	MinExternalQuantityTons = 20.0
	// ExternalQuantityMultiple is the truckload step size for external deliveries
	ExternalQuantityMultiple = 20.0
	// MinOutsideEilatQuantityTons overrides the generic floor for sites outside Eilat
	MinOutsideEilatQuantityTons = 40.0
	// TruckAccessThresholdTons is the quantity from which trailer access matters
	TruckAccessThresholdTons = 40.0
	// LastOrderHour is the local hour after which same-day orders close
	LastOrderHour = 17
	// MorningCutoffHour is the local hour after which the morning window is gone
	MorningCutoffHour = 12
)

// ValidationError represents an order validation failure. Code is the machine
// code surfaced across the HTTP boundary; callers map it to localized text.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateOrderDate checks that the delivery date and window are still
// orderable relative to now. The date comparison is day-granular; same-day
// orders close at 17:00 and same-day morning slots at 12:00.
func ValidateOrderDate(deliveryDate time.Time, deliveryWindow string, now time.Time) *ValidationError {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	requested := time.Date(deliveryDate.Year(), deliveryDate.Month(), deliveryDate.Day(), 0, 0, 0, 0, now.Location())

	if requested.Before(today) {
		return &ValidationError{
			Code:    "past_date",
			Message: "Delivery date cannot be in the past",
		}
	}

	if requested.Equal(today) {
		if now.Hour() >= LastOrderHour {
			return &ValidationError{
				Code:    "invalid_time",
				Message: "Same-day orders close at 17:00",
			}
		}
		if deliveryWindow == models.DeliveryWindowMorning && now.Hour() >= MorningCutoffHour {
			return &ValidationError{
				Code:    "morning_slot_passed",
				Message: "The morning delivery window for today has passed",
			}
		}
	}

	return nil
}

// ValidateOrderQuantity checks the method- and region-specific quantity rules.
// Self deliveries are unconstrained. External deliveries must be at least 20
// tons and a multiple of 20; outside-Eilat sites raise the floor to 40 tons.
func ValidateOrderQuantity(regionType, deliveryMethod string, quantityTons float64) *ValidationError {
	if deliveryMethod != models.DeliveryMethodExternal {
		return nil
	}

	if quantityTons < MinExternalQuantityTons {
		return &ValidationError{
			Code:    "minimum_quantity_external",
			Message: "External deliveries require at least 20 tons",
		}
	}

	remainder := quantityTons / ExternalQuantityMultiple
	if remainder != float64(int64(remainder)) {
		return &ValidationError{
			Code:    "quantity_multiple_twenty",
			Message: "External delivery quantities must be a multiple of 20 tons",
		}
	}

	// Region override supersedes the generic floor
	if regionType == models.RegionOutsideEilat && quantityTons < MinOutsideEilatQuantityTons {
		return &ValidationError{
			Code:    "outside_eilat_min",
			Message: "External deliveries outside Eilat require at least 40 tons",
		}
	}

	return nil
}

// TruckAccessRelevant reports whether the trailer-access flag applies to the
// order at all: external deliveries of 40 tons or more.
func TruckAccessRelevant(deliveryMethod string, quantityTons float64) bool {
	return deliveryMethod == models.DeliveryMethodExternal && quantityTons >= TruckAccessThresholdTons
}

// DefaultTruckAccess resolves the trailer-access flag to persist. Maavar Rabin
// external deliveries always require trailer access regardless of quantity;
// otherwise the requested value only applies when the flag is relevant.
func DefaultTruckAccess(supplier, deliveryMethod string, quantityTons float64, requested bool) bool {
	if supplier == models.SupplierMaavarRabin && deliveryMethod == models.DeliveryMethodExternal {
		return true
	}
	if !TruckAccessRelevant(deliveryMethod, quantityTons) {
		return false
	}
	return requested
}

// ValidateDeliveryUpdate checks the facts required before recording a
// delivery against an order.
func ValidateDeliveryUpdate(deliveryNoteNumber string, deliveredTons float64) *ValidationError {
	if deliveryNoteNumber == "" {
		return &ValidationError{
			Code:    "delivery_note_required",
			Message: "A delivery note number is required to record a delivery",
		}
	}
	if deliveredTons <= 0 {
		return &ValidationError{
			Code:    "delivered_quantity_required",
			Message: "Delivered quantity must be greater than zero",
		}
	}
	return nil
}
