package services

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/piternoufi/quarry-orders-api/models"
	"gorm.io/gorm"
)

const (
	orderNumberCounter = "order_number"
	// orderNumberSeed is one below the first issued number, "2001"
	orderNumberSeed = 2000
)

// AllocateOrderNumber issues the next sequential human-facing order number.
// The counter row is bumped with a single atomic UPDATE inside a transaction,
// so two concurrent creations cannot be issued the same number. If the counter
// row does not exist yet it is seeded from the highest order number already in
// the orders table (or 2000 on an empty database), so the sequence continues
// from data that predates the counter.
func AllocateOrderNumber(db *gorm.DB) (string, error) {
	var issued int64

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureCounter(tx); err != nil {
			return err
		}

		result := tx.Model(&models.OrderCounter{}).
			Where("name = ?", orderNumberCounter).
			UpdateColumn("value", gorm.Expr("value + 1"))
		if result.Error != nil {
			return result.Error
		}

		var counter models.OrderCounter
		if err := tx.Where("name = ?", orderNumberCounter).First(&counter).Error; err != nil {
			return err
		}

		issued = counter.Value
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}

	return strconv.FormatInt(issued, 10), nil
}

// ensureCounter creates the counter row when missing, seeded from the last
// order number already present
func ensureCounter(tx *gorm.DB) error {
	var counter models.OrderCounter
	err := tx.Where("name = ?", orderNumberCounter).First(&counter).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	seed := int64(orderNumberSeed)

	var last models.Order
	if err := tx.Unscoped().Order("order_number DESC").First(&last).Error; err == nil {
		if n, parseErr := strconv.ParseInt(last.OrderNumber, 10, 64); parseErr == nil && n > seed {
			seed = n
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.Create(&models.OrderCounter{Name: orderNumberCounter, Value: seed}).Error
}
