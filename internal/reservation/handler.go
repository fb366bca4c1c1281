package reservation

import (
	"errors"
	"fmt"
	"time"

	"mealdesk-backend/internal/auth"
	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/ledger"
	"mealdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateReservationRequest struct {
	MenuID         uint   `json:"menu_id"`
	OptionID       uint   `json:"option_id"`
	Kind           string `json:"kind"`
	Quantity       int    `json:"quantity"`
	GuestFirstName string `json:"guest_first_name"`
	GuestLastName  string `json:"guest_last_name"`
	Description    string `json:"description"`
}

type UpdateReservationRequest struct {
	OptionID uint `json:"option_id"`
	Quantity int  `json:"quantity"`
}

type CombinedLegRequest struct {
	OptionID    uint   `json:"option_id"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

type CreateCombinedRequest struct {
	MenuID         uint                `json:"menu_id"`
	GuestFirstName string              `json:"guest_first_name"`
	GuestLastName  string              `json:"guest_last_name"`
	Meal           *CombinedLegRequest `json:"meal"`
	Dessert        *CombinedLegRequest `json:"dessert"`
}

type CombinedLegUpdateRequest struct {
	ReservationID uint `json:"reservation_id"`
	OptionID      uint `json:"option_id"`
	Quantity      int  `json:"quantity"`
}

type UpdateCombinedRequest struct {
	Meal    *CombinedLegUpdateRequest `json:"meal"`
	Dessert *CombinedLegUpdateRequest `json:"dessert"`
}

type CancelCombinedRequest struct {
	MealReservationID    *uint `json:"meal_reservation_id"`
	DessertReservationID *uint `json:"dessert_reservation_id"`
}

type ReservationResponse struct {
	ID                   uint    `json:"id"`
	Kind                 string  `json:"kind"`
	GuestFirstName       string  `json:"guest_first_name,omitempty"`
	GuestLastName        string  `json:"guest_last_name,omitempty"`
	MenuID               *uint   `json:"menu_id"`
	MenuSnapshot         string  `json:"menu_snapshot"`
	OptionID             *uint   `json:"option_id"`
	OptionSnapshot       string  `json:"option_snapshot"`
	Quantity             int     `json:"quantity"`
	Amount               float64 `json:"amount"`
	Status               string  `json:"status"`
	CancellationDeadline string  `json:"cancellation_deadline"`
	Description          string  `json:"description,omitempty"`
	CreatedAt            string  `json:"created_at"`
	CancelledAt          *string `json:"cancelled_at"`
}

func toResponse(r *models.Reservation) ReservationResponse {
	var cancelledAt *string
	if r.CancelledAt != nil {
		formatted := r.CancelledAt.Format("2006-01-02 15:04:05")
		cancelledAt = &formatted
	}
	return ReservationResponse{
		ID:                   r.ID,
		Kind:                 string(r.Kind),
		GuestFirstName:       r.GuestFirstName,
		GuestLastName:        r.GuestLastName,
		MenuID:               r.DailyMenuID,
		MenuSnapshot:         r.MenuSnapshot,
		OptionID:             r.OptionID,
		OptionSnapshot:       r.OptionSnapshot,
		Quantity:             r.Quantity,
		Amount:               r.Amount,
		Status:               string(r.Status),
		CancellationDeadline: r.CancellationDeadline,
		Description:          r.Description,
		CreatedAt:            r.CreatedAt.Format("2006-01-02 15:04:05"),
		CancelledAt:          cancelledAt,
	}
}

// mapError translates engine errors into precise HTTP responses. Nothing
// here may collapse into a generic "something went wrong" except truly
// unexpected storage failures.
func mapError(err error) error {
	var capErr *ledger.InsufficientCapacityError
	if errors.As(err, &capErr) {
		return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Only %d left for this option", capErr.Available))
	}
	var recErr *ReconciliationError
	if errors.As(err, &recErr) {
		return fiber.NewError(fiber.StatusInternalServerError, "Combined order could not be completed or rolled back; support has been notified")
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Reservation not found")
	case errors.Is(err, ErrNotInMenu):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "The chosen option is not part of this daily menu")
	case errors.Is(err, ErrDuplicate):
		return fiber.NewError(fiber.StatusConflict, "You already have a live reservation for this option")
	case errors.Is(err, ErrNotCancellable):
		return fiber.NewError(fiber.StatusBadRequest, "This reservation can no longer be changed")
	case errors.Is(err, ErrEmptyCombined):
		return fiber.NewError(fiber.StatusBadRequest, "A combined order needs a meal part, a dessert part, or both")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Could not process reservation")
	}
}

func parseKind(s string) (models.OptionKind, error) {
	switch models.OptionKind(s) {
	case models.KindMeal:
		return models.KindMeal, nil
	case models.KindDessert:
		return models.KindDessert, nil
	default:
		return "", fiber.NewError(fiber.StatusBadRequest, "kind must be 'meal' or 'dessert'")
	}
}

// POST /api/reservations
func CreateReservationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body CreateReservationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.MenuID == 0 || body.OptionID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "menu_id and option_id are required")
		}
		kind, err := parseKind(body.Kind)
		if err != nil {
			return err
		}
		if body.Quantity == 0 {
			body.Quantity = 1
		}

		svc := NewService(database.DB)
		res, err := svc.Create(CreateParams{
			UserID:         userID,
			MenuID:         body.MenuID,
			OptionID:       body.OptionID,
			Kind:           kind,
			Quantity:       body.Quantity,
			GuestFirstName: body.GuestFirstName,
			GuestLastName:  body.GuestLastName,
			Description:    body.Description,
		})
		if err != nil {
			return mapError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(res))
	}
}

// GET /api/reservations?date=2026-08-23&status=reserved&kind=meal
func ListMyReservationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Reservation{}).Where("user_id = ?", userID)

		if dateStr := c.Query("date"); dateStr != "" {
			day, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be formatted as 2006-01-02")
			}
			dbq = dbq.Joins("JOIN daily_menus ON daily_menus.id = reservations.daily_menu_id").
				Where("daily_menus.date >= ? AND daily_menus.date < ?", day, day.AddDate(0, 0, 1))
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("reservations.status = ?", status)
		}
		if kind := c.Query("kind"); kind != "" {
			dbq = dbq.Where("reservations.kind = ?", kind)
		}

		var rows []models.Reservation
		if err := dbq.Order("reservations.created_at DESC").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list reservations")
		}

		resp := make([]ReservationResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/reservations/:id
func UpdateReservationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body UpdateReservationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.OptionID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "option_id is required")
		}
		if body.Quantity == 0 {
			body.Quantity = 1
		}

		svc := NewService(database.DB)
		res, err := svc.Update(id, userID, UpdateParams{OptionID: body.OptionID, Quantity: body.Quantity})
		if err != nil {
			return mapError(err)
		}
		return c.JSON(toResponse(res))
	}
}

// POST /api/reservations/:id/cancel
func CancelReservationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		svc := NewService(database.DB)
		res, err := svc.Cancel(id, userID)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(toResponse(res))
	}
}

// POST /api/reservations/:id/serve  (food_admin / sys_admin)
func MarkServedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		svc := NewService(database.DB)
		res, err := svc.MarkServed(id, adminID)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(toResponse(res))
	}
}

// POST /api/reservations/combined
func CreateCombinedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body CreateCombinedRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.MenuID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "menu_id is required")
		}

		params := CombinedCreateParams{
			UserID:         userID,
			MenuID:         body.MenuID,
			GuestFirstName: body.GuestFirstName,
			GuestLastName:  body.GuestLastName,
		}
		if body.Meal != nil {
			params.Meal = &LegRequest{OptionID: body.Meal.OptionID, Quantity: body.Meal.Quantity, Description: body.Meal.Description}
			if params.Meal.Quantity == 0 {
				params.Meal.Quantity = 1
			}
		}
		if body.Dessert != nil {
			params.Dessert = &LegRequest{OptionID: body.Dessert.OptionID, Quantity: body.Dessert.Quantity, Description: body.Dessert.Description}
			if params.Dessert.Quantity == 0 {
				params.Dessert.Quantity = 1
			}
		}

		co := NewCoordinator(NewService(database.DB))
		meal, dessert, err := co.CreateCombined(params)
		if err != nil {
			return mapError(err)
		}

		resp := fiber.Map{}
		if meal != nil {
			resp["meal"] = toResponse(meal)
		}
		if dessert != nil {
			resp["dessert"] = toResponse(dessert)
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// PUT /api/reservations/combined
func UpdateCombinedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body UpdateCombinedRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var meal, dessert *LegUpdate
		if body.Meal != nil {
			meal = &LegUpdate{ReservationID: body.Meal.ReservationID, OptionID: body.Meal.OptionID, Quantity: body.Meal.Quantity}
			if meal.Quantity == 0 {
				meal.Quantity = 1
			}
		}
		if body.Dessert != nil {
			dessert = &LegUpdate{ReservationID: body.Dessert.ReservationID, OptionID: body.Dessert.OptionID, Quantity: body.Dessert.Quantity}
			if dessert.Quantity == 0 {
				dessert.Quantity = 1
			}
		}

		co := NewCoordinator(NewService(database.DB))
		out, err := co.UpdateCombined(userID, meal, dessert)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(combinedResultJSON(out))
	}
}

// POST /api/reservations/combined/cancel
func CancelCombinedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body CancelCombinedRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		co := NewCoordinator(NewService(database.DB))
		out, err := co.CancelCombined(userID, body.MealReservationID, body.DessertReservationID)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(combinedResultJSON(out))
	}
}

// GET /api/reservations/limits
// The ordering UI still asks for per-user limits; the platform no longer
// enforces any, so the answer is always unlimited.
func ReservationLimitsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"meal_limit":    nil,
			"dessert_limit": nil,
			"unlimited":     true,
		})
	}
}

// combinedResultJSON renders per-leg outcomes: each leg is either the
// reservation or its own error message, never a merged failure.
func combinedResultJSON(out CombinedResult) fiber.Map {
	resp := fiber.Map{}
	if out.Meal != nil {
		resp["meal"] = toResponse(out.Meal)
	} else if out.MealErr != nil {
		resp["meal_error"] = mapError(out.MealErr).Error()
	}
	if out.Dessert != nil {
		resp["dessert"] = toResponse(out.Dessert)
	} else if out.DessertErr != nil {
		resp["dessert_error"] = mapError(out.DessertErr).Error()
	}
	return resp
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid reservation ID")
	}
	return id, nil
}
