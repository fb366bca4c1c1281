// Package catalog is the admin surface for centers, restaurants, dishes and
// daily menus, plus the employee-facing menu browse. Deleting menus or
// options runs the snapshot recorder inside the deleting transaction so
// reservation history survives the daily teardown.
package catalog

import (
	"fmt"

	"mealdesk-backend/internal/audit"
	"mealdesk-backend/internal/auth"
	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RestaurantRequest struct {
	CenterID uint   `json:"center_id"`
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

type RestaurantResponse struct {
	ID       uint   `json:"id"`
	CenterID uint   `json:"center_id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// POST /api/restaurants
func CreateRestaurantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RestaurantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.CenterID == 0 || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "center_id and name are required")
		}

		var center models.Center
		if err := database.DB.First(&center, "id = ?", body.CenterID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Center not found")
		}

		restaurant := models.Restaurant{
			CenterID: body.CenterID,
			Name:     body.Name,
			IsActive: true,
		}
		if body.IsActive != nil {
			restaurant.IsActive = *body.IsActive
		}

		if err := database.DB.Create(&restaurant).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create restaurant")
		}

		writeAudit(c, "restaurant", restaurant.ID, models.AuditActionCreate,
			fmt.Sprintf("Created restaurant %s", restaurant.Name), nil, restaurant)

		return c.Status(fiber.StatusCreated).JSON(toRestaurantResponse(&restaurant))
	}
}

// GET /api/restaurants?center_id=1
func ListRestaurantsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Restaurant{})
		if cidStr := c.Query("center_id"); cidStr != "" {
			var cid uint
			if _, err := fmt.Sscan(cidStr, &cid); err == nil && cid > 0 {
				dbq = dbq.Where("center_id = ?", cid)
			}
		}

		var rows []models.Restaurant
		if err := dbq.Order("name").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list restaurants")
		}

		resp := make([]RestaurantResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toRestaurantResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/restaurants/:id
func UpdateRestaurantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "Invalid restaurant ID")
		if err != nil {
			return err
		}

		var body RestaurantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var restaurant models.Restaurant
		if err := database.DB.First(&restaurant, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Restaurant not found")
		}
		before := restaurant

		if body.Name != "" {
			restaurant.Name = body.Name
		}
		if body.IsActive != nil {
			restaurant.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&restaurant).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update restaurant")
		}

		writeAudit(c, "restaurant", restaurant.ID, models.AuditActionUpdate,
			fmt.Sprintf("Updated restaurant %s", restaurant.Name), before, restaurant)

		return c.JSON(toRestaurantResponse(&restaurant))
	}
}

func toRestaurantResponse(r *models.Restaurant) RestaurantResponse {
	return RestaurantResponse{ID: r.ID, CenterID: r.CenterID, Name: r.Name, IsActive: r.IsActive}
}

// writeAudit records an admin catalog mutation. Failures are swallowed: the
// catalog change already committed and must not be reported as failed.
func writeAudit(c *fiber.Ctx, entityType string, entityID uint, action models.AuditAction, description string, before, after any) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	_ = audit.WriteLog(database.DB, audit.LogOptions{
		UserID:      userID,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	})
}

func parseIDParam(c *fiber.Ctx, msg string) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, msg)
	}
	return id, nil
}
