package models

import "time"

// MenuOption: a purchasable unit of a daily menu, with its own price and
// capacity. ReservedQuantity is owned by the ledger package; nothing else may
// write it.
type MenuOption struct {
	ID               uint `gorm:"primaryKey"`
	DailyMenuID      uint `gorm:"index;not null"`
	DishID           uint `gorm:"index;not null"`
	Dish             Dish
	Kind             OptionKind `gorm:"size:10;index;not null"`
	Title            string     `gorm:"size:200;not null"`
	Price            float64    `gorm:"not null"`
	Quantity         int        `gorm:"not null"`
	ReservedQuantity int        `gorm:"not null;default:0"`
	// Free-form deadline token shown to the user ("1404/08/02 10:30"). The
	// cancellation policy only checks presence, it never parses this.
	CancellationDeadline string `gorm:"size:100"`
	IsDefault            bool   `gorm:"not null;default:false"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (o *MenuOption) Available() int {
	if avail := o.Quantity - o.ReservedQuantity; avail > 0 {
		return avail
	}
	return 0
}
