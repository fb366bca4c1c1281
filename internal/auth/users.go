package auth

import (
	"strings"

	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CenterIDs []uint `json:"center_ids"`
}

// POST /api/users  (sys_admin)
// Creates employees and food admins and assigns them to their centers.
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" || body.FirstName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "First name, email and password are required")
		}

		role := models.UserRole(body.Role)
		switch role {
		case models.RoleEmployee, models.RoleFoodAdmin, models.RoleSysAdmin:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "role must be employee, food_admin or sys_admin")
		}

		var centers []models.Center
		if len(body.CenterIDs) > 0 {
			if err := database.DB.Find(&centers, "id IN ?", body.CenterIDs).Error; err != nil || len(centers) != len(body.CenterIDs) {
				return fiber.NewError(fiber.StatusBadRequest, "One or more centers do not exist")
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			FirstName:    body.FirstName,
			LastName:     body.LastName,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         role,
			Centers:      centers,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}
