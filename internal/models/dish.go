package models

import "time"

type OptionKind string

const (
	KindMeal    OptionKind = "meal"
	KindDessert OptionKind = "dessert"
)

// Dish: the base catalog item ("Stew", "Saffron pudding"). Daily menus sell
// concrete MenuOptions derived from a dish ("Stew with rice").
type Dish struct {
	ID           uint       `gorm:"primaryKey"`
	RestaurantID uint       `gorm:"index;not null"`
	Restaurant   Restaurant
	Kind         OptionKind `gorm:"size:10;index;not null"`
	Title        string     `gorm:"size:200;not null"`
	Description  string     `gorm:"size:500"`
	IsActive     bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
