package catalog

import (
	"fmt"

	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DishRequest struct {
	RestaurantID uint   `json:"restaurant_id"`
	Kind         string `json:"kind"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	IsActive     *bool  `json:"is_active"`
}

type DishResponse struct {
	ID           uint   `json:"id"`
	RestaurantID uint   `json:"restaurant_id"`
	Kind         string `json:"kind"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	IsActive     bool   `json:"is_active"`
}

// POST /api/dishes
func CreateDishHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DishRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.RestaurantID == 0 || body.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "restaurant_id and title are required")
		}
		kind := models.OptionKind(body.Kind)
		if kind != models.KindMeal && kind != models.KindDessert {
			return fiber.NewError(fiber.StatusBadRequest, "kind must be 'meal' or 'dessert'")
		}

		var restaurant models.Restaurant
		if err := database.DB.First(&restaurant, "id = ?", body.RestaurantID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Restaurant not found")
		}

		dish := models.Dish{
			RestaurantID: body.RestaurantID,
			Kind:         kind,
			Title:        body.Title,
			Description:  body.Description,
			IsActive:     true,
		}
		if body.IsActive != nil {
			dish.IsActive = *body.IsActive
		}

		if err := database.DB.Create(&dish).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create dish")
		}

		writeAudit(c, "dish", dish.ID, models.AuditActionCreate,
			fmt.Sprintf("Created dish %s", dish.Title), nil, dish)

		return c.Status(fiber.StatusCreated).JSON(toDishResponse(&dish))
	}
}

// GET /api/dishes?restaurant_id=1&kind=meal
func ListDishesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Dish{})
		if ridStr := c.Query("restaurant_id"); ridStr != "" {
			var rid uint
			if _, err := fmt.Sscan(ridStr, &rid); err == nil && rid > 0 {
				dbq = dbq.Where("restaurant_id = ?", rid)
			}
		}
		if kind := c.Query("kind"); kind != "" {
			dbq = dbq.Where("kind = ?", kind)
		}

		var rows []models.Dish
		if err := dbq.Order("title").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list dishes")
		}

		resp := make([]DishResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toDishResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/dishes/:id
func UpdateDishHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "Invalid dish ID")
		if err != nil {
			return err
		}

		var body DishRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var dish models.Dish
		if err := database.DB.First(&dish, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Dish not found")
		}
		before := dish

		if body.Title != "" {
			dish.Title = body.Title
		}
		if body.Description != "" {
			dish.Description = body.Description
		}
		if body.IsActive != nil {
			dish.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&dish).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update dish")
		}

		writeAudit(c, "dish", dish.ID, models.AuditActionUpdate,
			fmt.Sprintf("Updated dish %s", dish.Title), before, dish)

		return c.JSON(toDishResponse(&dish))
	}
}

func toDishResponse(d *models.Dish) DishResponse {
	return DishResponse{
		ID:           d.ID,
		RestaurantID: d.RestaurantID,
		Kind:         string(d.Kind),
		Title:        d.Title,
		Description:  d.Description,
		IsActive:     d.IsActive,
	}
}
