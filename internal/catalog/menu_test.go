package catalog

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCatalog(t *testing.T) (*gorm.DB, models.DailyMenu, models.MenuOption, models.Reservation) {
	t.Helper()

	db, err := database.OpenTest()
	require.NoError(t, err)
	database.DB = db

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
		Title: "Stew with rice", Price: 10, Quantity: 5, ReservedQuantity: 2,
	}
	require.NoError(t, db.Create(&opt).Error)

	user := models.User{FirstName: "Ada", LastName: "Smith", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleEmployee}
	require.NoError(t, db.Create(&user).Error)

	res := models.Reservation{
		Kind: models.KindMeal, UserID: user.ID,
		DailyMenuID: &menu.ID, OptionID: &opt.ID,
		Quantity: 2, Amount: 20, Status: models.StatusReserved,
	}
	require.NoError(t, db.Create(&res).Error)

	return db, menu, opt, res
}

func TestDeleteMenuFreezesReservationHistory(t *testing.T) {
	db, menu, opt, res := seedCatalog(t)

	app := fiber.New()
	app.Delete("/api/menus/:id", DeleteDailyMenuHandler())

	req := httptest.NewRequest("DELETE", "/api/menus/1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reread models.Reservation
	require.NoError(t, db.First(&reread, "id = ?", res.ID).Error)
	require.Nil(t, reread.DailyMenuID)
	require.Nil(t, reread.OptionID)
	require.NotEmpty(t, reread.MenuSnapshot)
	require.NotEmpty(t, reread.OptionSnapshot)
	require.Contains(t, reread.OptionSnapshot, "Stew with rice")

	var menuCount, optCount int64
	db.Model(&models.DailyMenu{}).Where("id = ?", menu.ID).Count(&menuCount)
	db.Model(&models.MenuOption{}).Where("id = ?", opt.ID).Count(&optCount)
	require.Equal(t, int64(0), menuCount)
	require.Equal(t, int64(0), optCount)
}

func TestBrowseMenusReportsAvailableQuantity(t *testing.T) {
	_, _, _, _ = seedCatalog(t)

	app := fiber.New()
	app.Get("/api/menus", ListDailyMenusHandler())

	req := httptest.NewRequest("GET", "/api/menus?date=2026-08-23", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var menus []DailyMenuResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&menus))
	require.Len(t, menus, 1)
	require.Len(t, menus[0].Options, 1)
	require.Equal(t, 3, menus[0].Options[0].AvailableQuantity)
	require.Equal(t, "Canteen", menus[0].Restaurant)
}

func TestUpdateOptionCannotUndercutReservedUnits(t *testing.T) {
	_, _, opt, _ := seedCatalog(t)

	app := fiber.New()
	app.Put("/api/options/:id", UpdateMenuOptionHandler())

	req := httptest.NewRequest("PUT", "/api/options/1", strings.NewReader(`{"quantity": 1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var reread models.MenuOption
	require.NoError(t, database.DB.First(&reread, "id = ?", opt.ID).Error)
	require.Equal(t, 5, reread.Quantity)
	require.Equal(t, 2, reread.ReservedQuantity)
}
