// Package snapshot freezes a textual description of menus and options onto
// the reservations that reference them. Menus are recreated and deleted
// daily; without these snapshots, history would lose the identity of what was
// actually ordered the moment an admin clears an old menu.
package snapshot

import (
	"fmt"

	"mealdesk-backend/internal/models"

	"gorm.io/gorm"
)

// MenuText renders the frozen form of a daily menu. Restaurant (and its
// Center) should be preloaded; missing associations degrade to placeholders
// rather than failing the delete.
func MenuText(menu *models.DailyMenu) string {
	restaurant := "no restaurant"
	center := "no center"
	if menu.Restaurant.ID != 0 {
		restaurant = menu.Restaurant.Name
		if menu.Restaurant.Center.ID != 0 {
			center = menu.Restaurant.Center.Name
		}
	}
	return fmt.Sprintf("Restaurant: %s - Center: %s - Date: %s", restaurant, center, menu.Date.Format("2006-01-02"))
}

// OptionText renders the frozen form of a menu option.
func OptionText(opt *models.MenuOption) string {
	dish := "unknown"
	if opt.Dish.ID != 0 {
		dish = opt.Dish.Title
	}
	return fmt.Sprintf("Title: %s - Dish: %s - Price: %.2f", opt.Title, dish, opt.Price)
}

// RecordOptionDelete freezes the option's current description onto every
// reservation referencing it and nulls the live reference. It must run inside
// the transaction that deletes the option row; a crash between the delete and
// the snapshot would lose history.
func RecordOptionDelete(tx *gorm.DB, opt *models.MenuOption) error {
	return tx.Model(&models.Reservation{}).
		Where("option_id = ?", opt.ID).
		Updates(map[string]interface{}{
			"option_snapshot": OptionText(opt),
			"option_id":       nil,
		}).Error
}

// RecordMenuDelete is the menu-side counterpart of RecordOptionDelete.
func RecordMenuDelete(tx *gorm.DB, menu *models.DailyMenu) error {
	return tx.Model(&models.Reservation{}).
		Where("daily_menu_id = ?", menu.ID).
		Updates(map[string]interface{}{
			"menu_snapshot": MenuText(menu),
			"daily_menu_id": nil,
		}).Error
}
