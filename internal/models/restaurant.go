package models

import "time"

type Restaurant struct {
	ID        uint `gorm:"primaryKey"`
	CenterID  uint `gorm:"index;not null"`
	Center    Center
	Name      string `gorm:"size:200;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
