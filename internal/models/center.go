package models

import "time"

// Center: a corporate site whose employees order from the restaurants attached to it.
type Center struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null;unique"`
	Address   string `gorm:"size:255"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
