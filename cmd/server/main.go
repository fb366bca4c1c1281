package main

import (
	"log"
	"strings"

	"mealdesk-backend/internal/audit"
	"mealdesk-backend/internal/auth"
	"mealdesk-backend/internal/catalog"
	"mealdesk-backend/internal/config"
	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"
	"mealdesk-backend/internal/reports"
	"mealdesk-backend/internal/reservation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-sys-admin", auth.RegisterSysAdminHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Sys admin routes. Role checks go per-route: admin and employee verbs
	// share paths (POST vs GET /centers), so a group-level gate would bleed
	// onto the shared surface.
	sysOnly := auth.RequireRole(models.RoleSysAdmin)
	protected.Post("/users", sysOnly, auth.CreateUserHandler())
	protected.Post("/centers", sysOnly, catalog.CreateCenterHandler())
	protected.Get("/audit-logs", sysOnly, audit.ListAuditLogsHandler())

	// Catalog administration
	foodAdmin := auth.RequireRole(models.RoleFoodAdmin, models.RoleSysAdmin)
	protected.Post("/restaurants", foodAdmin, catalog.CreateRestaurantHandler())
	protected.Put("/restaurants/:id", foodAdmin, catalog.UpdateRestaurantHandler())
	protected.Post("/dishes", foodAdmin, catalog.CreateDishHandler())
	protected.Put("/dishes/:id", foodAdmin, catalog.UpdateDishHandler())
	protected.Post("/menus", foodAdmin, catalog.CreateDailyMenuHandler())
	protected.Delete("/menus/:id", foodAdmin, catalog.DeleteDailyMenuHandler())
	protected.Post("/menus/:id/options", foodAdmin, catalog.CreateMenuOptionHandler())
	protected.Put("/options/:id", foodAdmin, catalog.UpdateMenuOptionHandler())
	protected.Delete("/options/:id", foodAdmin, catalog.DeleteMenuOptionHandler())
	protected.Post("/reservations/:id/serve", foodAdmin, reservation.MarkServedHandler())

	protected.Get("/reports/reservations", foodAdmin, reports.ListReservationsReportHandler())
	protected.Get("/reports/options/daily", foodAdmin, reports.OptionDailyReportHandler())

	// Browsing, open to every authenticated user
	protected.Get("/centers", catalog.ListCentersHandler())
	protected.Get("/restaurants", catalog.ListRestaurantsHandler())
	protected.Get("/dishes", catalog.ListDishesHandler())
	protected.Get("/menus", catalog.ListDailyMenusHandler())

	// Reservations. Combined routes go first so "combined" never matches :id.
	protected.Post("/reservations", reservation.CreateReservationHandler())
	protected.Get("/reservations", reservation.ListMyReservationsHandler())
	protected.Get("/reservations/limits", reservation.ReservationLimitsHandler())
	protected.Post("/reservations/combined", reservation.CreateCombinedHandler())
	protected.Put("/reservations/combined", reservation.UpdateCombinedHandler())
	protected.Post("/reservations/combined/cancel", reservation.CancelCombinedHandler())
	protected.Put("/reservations/:id", reservation.UpdateReservationHandler())
	protected.Post("/reservations/:id/cancel", reservation.CancelReservationHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
