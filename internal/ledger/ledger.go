// Package ledger is the only legal mutator of MenuOption.ReservedQuantity.
// Every reserve/release in the system routes through here; the counter is
// changed with a single conditional UPDATE so concurrent callers can never
// overbook an option, whatever the request interleaving.
package ledger

import (
	"fmt"
	"log"

	"mealdesk-backend/internal/models"

	"gorm.io/gorm"
)

// InsufficientCapacityError carries the currently available quantity so the
// caller can tell the user exactly how many units are left.
type InsufficientCapacityError struct {
	OptionID  uint
	Requested int
	Available int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("option %d: requested %d but only %d available", e.OptionID, e.Requested, e.Available)
}

// retries for transient storage errors; a capacity miss is never retried.
const maxAttempts = 3

// Reserve claims quantity units of the option, or reports how many are left.
// The check and the increment happen in one statement, so the invariant
// 0 <= reserved_quantity <= quantity holds under any number of concurrent
// callers.
func Reserve(db *gorm.DB, optionID uint, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		res := db.Model(&models.MenuOption{}).
			Where("id = ? AND reserved_quantity + ? <= quantity", optionID, quantity).
			UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity + ?", quantity))
		if res.Error != nil {
			lastErr = res.Error
			continue
		}
		if res.RowsAffected == 1 {
			return nil
		}

		// Zero rows: the option is either missing or short on capacity.
		var opt models.MenuOption
		if err := db.First(&opt, "id = ?", optionID).Error; err != nil {
			return err
		}
		return &InsufficientCapacityError{OptionID: optionID, Requested: quantity, Available: opt.Available()}
	}
	return fmt.Errorf("reserve option %d: %w", optionID, lastErr)
}

// Release returns quantity units to the option. The counter is clamped at
// zero: releasing more than was reserved means a bug somewhere upstream, and
// corrupting the counter would only compound it.
func Release(db *gorm.DB, optionID uint, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("release quantity must be positive, got %d", quantity)
	}

	res := db.Model(&models.MenuOption{}).
		Where("id = ? AND reserved_quantity >= ?", optionID, quantity).
		UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("release option %d: %w", optionID, res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var opt models.MenuOption
	if err := db.First(&opt, "id = ?", optionID).Error; err != nil {
		return err
	}
	log.Printf("[WARN] release of %d exceeds reserved count %d for option %d, clamping", quantity, opt.ReservedQuantity, optionID)

	// The clamp stays a single conditional statement: if a concurrent
	// Reserve lands between the read above and this write, the CASE still
	// decrements instead of wiping those fresh units.
	return db.Model(&models.MenuOption{}).
		Where("id = ?", optionID).
		UpdateColumn("reserved_quantity",
			gorm.Expr("CASE WHEN reserved_quantity >= ? THEN reserved_quantity - ? ELSE 0 END", quantity, quantity)).Error
}

// Available reports max(0, quantity - reserved_quantity) for the option.
func Available(db *gorm.DB, optionID uint) (int, error) {
	var opt models.MenuOption
	if err := db.First(&opt, "id = ?", optionID).Error; err != nil {
		return 0, err
	}
	return opt.Available(), nil
}
