package models

import "time"

// DailyMenu: one restaurant's offering for one calendar date. Menus are
// authored and torn down daily; reservations keep a textual snapshot so they
// stay readable after the menu row is gone.
type DailyMenu struct {
	ID           uint `gorm:"primaryKey"`
	RestaurantID uint `gorm:"index;not null"`
	Restaurant   Restaurant
	Date         time.Time `gorm:"index;not null"`
	IsAvailable  bool      `gorm:"not null;default:true"`
	Options      []MenuOption
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
