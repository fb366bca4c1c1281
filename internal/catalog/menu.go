package catalog

import (
	"fmt"
	"time"

	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"
	"mealdesk-backend/internal/snapshot"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DailyMenuRequest struct {
	RestaurantID uint   `json:"restaurant_id"`
	Date         string `json:"date"` // 2006-01-02
	IsAvailable  *bool  `json:"is_available"`
}

type MenuOptionRequest struct {
	DishID               uint    `json:"dish_id"`
	Title                string  `json:"title"`
	Price                float64 `json:"price"`
	Quantity             int     `json:"quantity"`
	CancellationDeadline string  `json:"cancellation_deadline"`
	IsDefault            *bool   `json:"is_default"`
}

type MenuOptionResponse struct {
	ID                   uint    `json:"id"`
	DailyMenuID          uint    `json:"daily_menu_id"`
	DishID               uint    `json:"dish_id"`
	Kind                 string  `json:"kind"`
	Title                string  `json:"title"`
	Price                float64 `json:"price"`
	Quantity             int     `json:"quantity"`
	AvailableQuantity    int     `json:"available_quantity"`
	CancellationDeadline string  `json:"cancellation_deadline"`
	IsDefault            bool    `json:"is_default"`
}

type DailyMenuResponse struct {
	ID           uint                 `json:"id"`
	RestaurantID uint                 `json:"restaurant_id"`
	Restaurant   string               `json:"restaurant"`
	Date         string               `json:"date"`
	IsAvailable  bool                 `json:"is_available"`
	Options      []MenuOptionResponse `json:"options"`
}

// POST /api/menus
func CreateDailyMenuHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DailyMenuRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.RestaurantID == 0 || body.Date == "" {
			return fiber.NewError(fiber.StatusBadRequest, "restaurant_id and date are required")
		}
		date, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be formatted as 2006-01-02")
		}

		var restaurant models.Restaurant
		if err := database.DB.First(&restaurant, "id = ?", body.RestaurantID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Restaurant not found")
		}

		menu := models.DailyMenu{
			RestaurantID: body.RestaurantID,
			Date:         date,
			IsAvailable:  true,
		}
		if body.IsAvailable != nil {
			menu.IsAvailable = *body.IsAvailable
		}

		if err := database.DB.Create(&menu).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create daily menu")
		}

		writeAudit(c, "daily_menu", menu.ID, models.AuditActionCreate,
			fmt.Sprintf("Created menu for %s on %s", restaurant.Name, body.Date), nil, menu)

		menu.Restaurant = restaurant
		return c.Status(fiber.StatusCreated).JSON(toMenuResponse(&menu))
	}
}

// GET /api/menus?date=2026-08-23&restaurant_id=1&center_id=2
// The employee-facing browse: options come back with their computed
// available_quantity so the ordering UI can grey out sold-out items.
func ListDailyMenusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.DailyMenu{}).
			Preload("Restaurant").
			Preload("Options")

		if dateStr := c.Query("date"); dateStr != "" {
			day, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be formatted as 2006-01-02")
			}
			dbq = dbq.Where("daily_menus.date >= ? AND daily_menus.date < ?", day, day.AddDate(0, 0, 1))
		}
		if ridStr := c.Query("restaurant_id"); ridStr != "" {
			var rid uint
			if _, err := fmt.Sscan(ridStr, &rid); err == nil && rid > 0 {
				dbq = dbq.Where("daily_menus.restaurant_id = ?", rid)
			}
		}
		if cidStr := c.Query("center_id"); cidStr != "" {
			var cid uint
			if _, err := fmt.Sscan(cidStr, &cid); err == nil && cid > 0 {
				dbq = dbq.Joins("JOIN restaurants ON restaurants.id = daily_menus.restaurant_id").
					Where("restaurants.center_id = ?", cid)
			}
		}

		var menus []models.DailyMenu
		if err := dbq.Order("daily_menus.date DESC").Find(&menus).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list menus")
		}

		resp := make([]DailyMenuResponse, 0, len(menus))
		for i := range menus {
			resp = append(resp, toMenuResponse(&menus[i]))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/menus/:id
// Snapshot-then-delete as one transaction: every reservation pointing at the
// menu or its options gets its frozen text before the rows go away.
func DeleteDailyMenuHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "Invalid menu ID")
		if err != nil {
			return err
		}

		var menu models.DailyMenu
		if err := database.DB.
			Preload("Restaurant").Preload("Restaurant.Center").
			Preload("Options").Preload("Options.Dish").
			First(&menu, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Menu not found")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for i := range menu.Options {
				if err := snapshot.RecordOptionDelete(tx, &menu.Options[i]); err != nil {
					return err
				}
			}
			if err := snapshot.RecordMenuDelete(tx, &menu); err != nil {
				return err
			}
			if err := tx.Where("daily_menu_id = ?", menu.ID).Delete(&models.MenuOption{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.DailyMenu{}, "id = ?", menu.ID).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete menu")
		}

		writeAudit(c, "daily_menu", menu.ID, models.AuditActionDelete,
			fmt.Sprintf("Deleted menu of %s", menu.Date.Format("2006-01-02")), menu, nil)

		return c.JSON(fiber.Map{"message": "Menu deleted"})
	}
}

// POST /api/menus/:id/options
func CreateMenuOptionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		menuID, err := parseIDParam(c, "Invalid menu ID")
		if err != nil {
			return err
		}

		var body MenuOptionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.DishID == 0 || body.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "dish_id and title are required")
		}
		if body.Price < 0 || body.Quantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "price and quantity must not be negative")
		}

		var menu models.DailyMenu
		if err := database.DB.First(&menu, "id = ?", menuID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Menu not found")
		}
		var dish models.Dish
		if err := database.DB.First(&dish, "id = ?", body.DishID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Dish not found")
		}
		if dish.RestaurantID != menu.RestaurantID {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Dish belongs to another restaurant")
		}

		opt := models.MenuOption{
			DailyMenuID:          menuID,
			DishID:               body.DishID,
			Kind:                 dish.Kind,
			Title:                body.Title,
			Price:                body.Price,
			Quantity:             body.Quantity,
			CancellationDeadline: body.CancellationDeadline,
		}
		if body.IsDefault != nil {
			opt.IsDefault = *body.IsDefault
		}

		if err := database.DB.Create(&opt).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create option")
		}

		writeAudit(c, "menu_option", opt.ID, models.AuditActionCreate,
			fmt.Sprintf("Added option %s to menu %d", opt.Title, menuID), nil, opt)

		return c.Status(fiber.StatusCreated).JSON(toOptionResponse(&opt))
	}
}

// PUT /api/options/:id
// Edits title, price, capacity, deadline and default flag; never the
// reserved counter, which only the ledger writes.
func UpdateMenuOptionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "Invalid option ID")
		if err != nil {
			return err
		}

		var body MenuOptionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var opt models.MenuOption
		if err := database.DB.First(&opt, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Option not found")
		}
		before := opt

		if body.Title != "" {
			opt.Title = body.Title
		}
		if body.Price > 0 {
			opt.Price = body.Price
		}
		if body.Quantity > 0 {
			if body.Quantity < opt.ReservedQuantity {
				return fiber.NewError(fiber.StatusUnprocessableEntity,
					fmt.Sprintf("Quantity cannot go below the %d units already reserved", opt.ReservedQuantity))
			}
			opt.Quantity = body.Quantity
		}
		if body.CancellationDeadline != "" {
			opt.CancellationDeadline = body.CancellationDeadline
		}
		if body.IsDefault != nil {
			opt.IsDefault = *body.IsDefault
		}

		err = database.DB.Model(&models.MenuOption{}).Where("id = ?", opt.ID).
			Updates(map[string]interface{}{
				"title":                 opt.Title,
				"price":                 opt.Price,
				"quantity":              opt.Quantity,
				"cancellation_deadline": opt.CancellationDeadline,
				"is_default":            opt.IsDefault,
			}).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update option")
		}

		writeAudit(c, "menu_option", opt.ID, models.AuditActionUpdate,
			fmt.Sprintf("Updated option %s", opt.Title), before, opt)

		return c.JSON(toOptionResponse(&opt))
	}
}

// DELETE /api/options/:id
func DeleteMenuOptionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "Invalid option ID")
		if err != nil {
			return err
		}

		var opt models.MenuOption
		if err := database.DB.Preload("Dish").First(&opt, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Option not found")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := snapshot.RecordOptionDelete(tx, &opt); err != nil {
				return err
			}
			return tx.Delete(&models.MenuOption{}, "id = ?", opt.ID).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete option")
		}

		writeAudit(c, "menu_option", opt.ID, models.AuditActionDelete,
			fmt.Sprintf("Deleted option %s", opt.Title), opt, nil)

		return c.JSON(fiber.Map{"message": "Option deleted"})
	}
}

func toMenuResponse(m *models.DailyMenu) DailyMenuResponse {
	options := make([]MenuOptionResponse, 0, len(m.Options))
	for i := range m.Options {
		options = append(options, toOptionResponse(&m.Options[i]))
	}
	return DailyMenuResponse{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		Restaurant:   m.Restaurant.Name,
		Date:         m.Date.Format("2006-01-02"),
		IsAvailable:  m.IsAvailable,
		Options:      options,
	}
}

func toOptionResponse(o *models.MenuOption) MenuOptionResponse {
	return MenuOptionResponse{
		ID:                   o.ID,
		DailyMenuID:          o.DailyMenuID,
		DishID:               o.DishID,
		Kind:                 string(o.Kind),
		Title:                o.Title,
		Price:                o.Price,
		Quantity:             o.Quantity,
		AvailableQuantity:    o.Available(),
		CancellationDeadline: o.CancellationDeadline,
		IsDefault:            o.IsDefault,
	}
}
