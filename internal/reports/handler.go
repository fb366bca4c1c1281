// Package reports is the read-only projection over reservation history.
// It relies on amount, status and the snapshot fields being immutable once a
// reservation is terminal, so numbers stay stable even after the catalog is
// torn down.
package reports

import (
	"fmt"
	"time"

	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReservationRow struct {
	ID             uint    `json:"id"`
	Kind           string  `json:"kind"`
	UserID         uint    `json:"user_id"`
	UserName       string  `json:"user_name"`
	GuestName      string  `json:"guest_name,omitempty"`
	OptionID       *uint   `json:"option_id"`
	OptionSnapshot string  `json:"option_snapshot"`
	MenuSnapshot   string  `json:"menu_snapshot"`
	Quantity       int     `json:"quantity"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
}

// GET /api/reports/reservations?from=2026-08-01&to=2026-08-23&status=served&option_id=4&user_id=7
func ListReservationsReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Reservation{}).Preload("User")

		if from := c.Query("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from must be formatted as 2006-01-02")
			}
			dbq = dbq.Where("created_at >= ?", t)
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to must be formatted as 2006-01-02")
			}
			dbq = dbq.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if oidStr := c.Query("option_id"); oidStr != "" {
			var oid uint
			if _, err := fmt.Sscan(oidStr, &oid); err == nil && oid > 0 {
				dbq = dbq.Where("option_id = ?", oid)
			}
		}
		if uidStr := c.Query("user_id"); uidStr != "" {
			var uid uint
			if _, err := fmt.Sscan(uidStr, &uid); err == nil && uid > 0 {
				dbq = dbq.Where("user_id = ?", uid)
			}
		}

		var rows []models.Reservation
		if err := dbq.Order("created_at DESC").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not run reservations report")
		}

		resp := make([]ReservationRow, 0, len(rows))
		for i := range rows {
			r := &rows[i]
			resp = append(resp, ReservationRow{
				ID:             r.ID,
				Kind:           string(r.Kind),
				UserID:         r.UserID,
				UserName:       r.User.FullName(),
				GuestName:      r.GuestFullName(),
				OptionID:       r.OptionID,
				OptionSnapshot: r.OptionSnapshot,
				MenuSnapshot:   r.MenuSnapshot,
				Quantity:       r.Quantity,
				Amount:         r.Amount,
				Status:         string(r.Status),
				CreatedAt:      r.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

type OptionDailyAggregate struct {
	OptionID       *uint   `json:"option_id"`
	OptionSnapshot string  `json:"option_snapshot"`
	ReservedCount  int     `json:"reserved_count"`
	ServedCount    int     `json:"served_count"`
	CancelledCount int     `json:"cancelled_count"`
	ReservedUnits  int     `json:"reserved_units"`
	Revenue        float64 `json:"revenue"`
}

// GET /api/reports/options/daily?date=2026-08-23
// Per-option aggregates for one ordering day, keyed by the frozen snapshot
// text so deleted options still report under their own name. Revenue counts
// live and served orders; cancellations are excluded.
func OptionDailyReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dateStr := c.Query("date")
		if dateStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "date is required")
		}
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be formatted as 2006-01-02")
		}

		var rows []OptionDailyAggregate
		err = database.DB.Model(&models.Reservation{}).
			Select(`option_id,
				option_snapshot,
				SUM(CASE WHEN status = 'reserved' THEN 1 ELSE 0 END) AS reserved_count,
				SUM(CASE WHEN status = 'served' THEN 1 ELSE 0 END) AS served_count,
				SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END) AS cancelled_count,
				SUM(CASE WHEN status != 'cancelled' THEN quantity ELSE 0 END) AS reserved_units,
				SUM(CASE WHEN status != 'cancelled' THEN amount ELSE 0 END) AS revenue`).
			Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1)).
			Group("option_id, option_snapshot").
			Order("option_snapshot").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not run daily option report")
		}

		return c.JSON(rows)
	}
}
