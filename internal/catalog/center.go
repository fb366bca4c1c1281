package catalog

import (
	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CenterRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active"`
}

type CenterResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	IsActive bool   `json:"is_active"`
}

// POST /api/centers  (sys_admin)
func CreateCenterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CenterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}

		center := models.Center{Name: body.Name, Address: body.Address, IsActive: true}
		if body.IsActive != nil {
			center.IsActive = *body.IsActive
		}

		if err := database.DB.Create(&center).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create center")
		}

		writeAudit(c, "center", center.ID, models.AuditActionCreate,
			"Created center "+center.Name, nil, center)

		return c.Status(fiber.StatusCreated).JSON(toCenterResponse(&center))
	}
}

// GET /api/centers
func ListCentersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Center
		if err := database.DB.Order("name").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list centers")
		}

		resp := make([]CenterResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toCenterResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

func toCenterResponse(m *models.Center) CenterResponse {
	return CenterResponse{ID: m.ID, Name: m.Name, Address: m.Address, IsActive: m.IsActive}
}
