package snapshot

import (
	"testing"
	"time"

	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seed(t *testing.T) (*gorm.DB, models.DailyMenu, models.MenuOption, models.Reservation) {
	t.Helper()

	db, err := database.OpenTest()
	require.NoError(t, err)

	center := models.Center{Name: "HQ"}
	require.NoError(t, db.Create(&center).Error)
	restaurant := models.Restaurant{CenterID: center.ID, Name: "Canteen", IsActive: true}
	require.NoError(t, db.Create(&restaurant).Error)
	dish := models.Dish{RestaurantID: restaurant.ID, Kind: models.KindMeal, Title: "Stew", IsActive: true}
	require.NoError(t, db.Create(&dish).Error)

	date, _ := time.Parse("2006-01-02", "2026-08-23")
	menu := models.DailyMenu{RestaurantID: restaurant.ID, Date: date, IsAvailable: true}
	require.NoError(t, db.Create(&menu).Error)
	opt := models.MenuOption{
		DailyMenuID: menu.ID, DishID: dish.ID, Kind: models.KindMeal,
		Title: "Stew with rice", Price: 10.5, Quantity: 5, ReservedQuantity: 1,
	}
	require.NoError(t, db.Create(&opt).Error)

	user := models.User{FirstName: "Ada", LastName: "Smith", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleEmployee}
	require.NoError(t, db.Create(&user).Error)

	res := models.Reservation{
		Kind: models.KindMeal, UserID: user.ID,
		DailyMenuID: &menu.ID, OptionID: &opt.ID,
		Quantity: 1, Amount: 10.5, Status: models.StatusReserved,
	}
	require.NoError(t, db.Create(&res).Error)

	// Reload with the associations the renderers read.
	require.NoError(t, db.Preload("Restaurant").Preload("Restaurant.Center").First(&menu, "id = ?", menu.ID).Error)
	require.NoError(t, db.Preload("Dish").First(&opt, "id = ?", opt.ID).Error)

	return db, menu, opt, res
}

func TestRenderedText(t *testing.T) {
	_, menu, opt, _ := seed(t)

	require.Equal(t, "Restaurant: Canteen - Center: HQ - Date: 2026-08-23", MenuText(&menu))
	require.Equal(t, "Title: Stew with rice - Dish: Stew - Price: 10.50", OptionText(&opt))
}

func TestOptionDeleteFreezesSnapshot(t *testing.T) {
	db, _, opt, res := seed(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := RecordOptionDelete(tx, &opt); err != nil {
			return err
		}
		return tx.Delete(&models.MenuOption{}, "id = ?", opt.ID).Error
	})
	require.NoError(t, err)

	var reread models.Reservation
	require.NoError(t, db.First(&reread, "id = ?", res.ID).Error)
	require.Nil(t, reread.OptionID)
	require.Equal(t, "Title: Stew with rice - Dish: Stew - Price: 10.50", reread.OptionSnapshot)

	// A new option reusing the id never rewrites history.
	replacement := opt
	replacement.Title = "Something else entirely"
	replacement.Price = 99
	require.NoError(t, db.Create(&replacement).Error)
	require.NoError(t, db.Model(&models.MenuOption{}).Where("id = ?", replacement.ID).
		UpdateColumn("title", "Renamed again").Error)

	require.NoError(t, db.First(&reread, "id = ?", res.ID).Error)
	require.Equal(t, "Title: Stew with rice - Dish: Stew - Price: 10.50", reread.OptionSnapshot)
}

func TestMenuDeleteFreezesSnapshot(t *testing.T) {
	db, menu, _, res := seed(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := RecordMenuDelete(tx, &menu); err != nil {
			return err
		}
		return tx.Delete(&models.DailyMenu{}, "id = ?", menu.ID).Error
	})
	require.NoError(t, err)

	var reread models.Reservation
	require.NoError(t, db.First(&reread, "id = ?", res.ID).Error)
	require.Nil(t, reread.DailyMenuID)
	require.Equal(t, "Restaurant: Canteen - Center: HQ - Date: 2026-08-23", reread.MenuSnapshot)
}
