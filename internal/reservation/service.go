// Package reservation owns the reservation state machine: creation,
// update, cancellation and serving of personal and guest orders, plus the
// combined meal+dessert coordinator. All capacity changes route through the
// ledger package; all lifecycle transitions of one reservation happen inside
// one transaction.
package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mealdesk-backend/internal/audit"
	"mealdesk-backend/internal/ledger"
	"mealdesk-backend/internal/models"
	"mealdesk-backend/internal/notify"
	"mealdesk-backend/internal/policy"
	"mealdesk-backend/internal/snapshot"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type CreateParams struct {
	UserID         uint
	MenuID         uint
	OptionID       uint
	Kind           models.OptionKind
	Quantity       int
	GuestFirstName string
	GuestLastName  string
	Description    string
}

func (p *CreateParams) isGuest() bool {
	return strings.TrimSpace(p.GuestFirstName) != "" || strings.TrimSpace(p.GuestLastName) != ""
}

// Create reserves capacity and persists the reservation in one transaction.
// Amount and cancellation deadline are frozen from the option at this moment;
// later catalog edits never touch existing reservations.
func (s *Service) Create(p CreateParams) (*models.Reservation, error) {
	if p.isGuest() {
		// Guests order exactly one unit, whatever the request says.
		p.Quantity = 1
	}
	if p.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", p.Quantity)
	}

	var opt models.MenuOption
	if err := s.DB.Preload("Dish").First(&opt, "id = ?", p.OptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if opt.DailyMenuID != p.MenuID || opt.Kind != p.Kind {
		return nil, ErrNotInMenu
	}

	var menu models.DailyMenu
	if err := s.DB.Preload("Restaurant").Preload("Restaurant.Center").First(&menu, "id = ?", p.MenuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Fast path only; the partial unique index on live reservations is the
	// guard that actually holds under concurrent inserts.
	var dupCount int64
	s.DB.Model(&models.Reservation{}).
		Where("user_id = ? AND daily_menu_id = ? AND option_id = ? AND guest_first_name = ? AND guest_last_name = ? AND status = ?",
			p.UserID, p.MenuID, p.OptionID, p.GuestFirstName, p.GuestLastName, models.StatusReserved).
		Count(&dupCount)
	if dupCount > 0 {
		return nil, ErrDuplicate
	}

	menuID := p.MenuID
	optionID := p.OptionID
	res := models.Reservation{
		Kind:                 p.Kind,
		UserID:               p.UserID,
		GuestFirstName:       strings.TrimSpace(p.GuestFirstName),
		GuestLastName:        strings.TrimSpace(p.GuestLastName),
		DailyMenuID:          &menuID,
		MenuSnapshot:         snapshot.MenuText(&menu),
		OptionID:             &optionID,
		OptionSnapshot:       snapshot.OptionText(&opt),
		Quantity:             p.Quantity,
		Amount:               opt.Price * float64(p.Quantity),
		Status:               models.StatusReserved,
		CancellationDeadline: opt.CancellationDeadline,
		Description:          p.Description,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := ledger.Reserve(tx, p.OptionID, p.Quantity); err != nil {
			return err
		}
		if err := tx.Create(&res).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicate
			}
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      p.UserID,
			UserName:    s.userName(tx, p.UserID),
			EntityType:  "reservation",
			EntityID:    res.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Reserved %d x %s", res.Quantity, opt.Title),
			After:       res,
		})
	})
	if err != nil {
		return nil, err
	}

	notify.Emit(s.DB, notify.Event{
		UserID:        p.UserID,
		Kind:          models.NotifyReservationCreated,
		ReservationID: res.ID,
		ItemName:      opt.Title,
		Date:          menu.Date.Format("2006-01-02"),
	})

	return &res, nil
}

// Cancel releases the reserved units and flips the status, atomically. The
// requester must be the reservation's subject or host; other users get
// ErrNotFound rather than a hint that the ID exists.
func (s *Service) Cancel(id, requesterID uint) (*models.Reservation, error) {
	var res models.Reservation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if res.UserID != requesterID {
			return ErrNotFound
		}
		if !policy.CanCancel(&res) {
			return ErrNotCancellable
		}

		if res.OptionID != nil {
			if err := ledger.Release(tx, *res.OptionID, res.Quantity); err != nil {
				return err
			}
		}

		now := time.Now()
		res.Status = models.StatusCancelled
		res.CancelledAt = &now
		if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).
			Updates(map[string]interface{}{
				"status":       models.StatusCancelled,
				"cancelled_at": now,
			}).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      requesterID,
			UserName:    s.userName(tx, requesterID),
			EntityType:  "reservation",
			EntityID:    res.ID,
			Action:      models.AuditActionCancel,
			Description: fmt.Sprintf("Cancelled reservation of %s", res.ItemTitle()),
			Before:      res,
		})
	})
	if err != nil {
		return nil, err
	}

	notify.Emit(s.DB, notify.Event{
		UserID:        res.UserID,
		Kind:          models.NotifyReservationCancelled,
		ReservationID: res.ID,
		ItemName:      res.ItemTitle(),
		Date:          s.menuDate(&res),
	})

	return &res, nil
}

type UpdateParams struct {
	OptionID uint
	Quantity int
}

// Update moves a live reservation to a new option and/or quantity.
// Same option: a single signed delta against the ledger, so there is no
// window where the units are double-counted or free. Option change: release
// the old units and reserve the new ones bracketing the record update; the
// surrounding transaction unwinds both if either side fails.
func (s *Service) Update(id, requesterID uint, p UpdateParams) (*models.Reservation, error) {
	var res models.Reservation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if res.UserID != requesterID {
			return ErrNotFound
		}
		// Same gate as cancellation: a terminal or deadline-less reservation
		// cannot be reshaped either.
		if !policy.CanCancel(&res) {
			return ErrNotCancellable
		}
		if res.OptionID == nil || res.DailyMenuID == nil {
			// The option was deleted out from under the reservation; only
			// cancellation remains possible.
			return ErrNotCancellable
		}

		if res.IsGuest() {
			p.Quantity = 1
		}
		if p.Quantity < 1 {
			return fmt.Errorf("quantity must be at least 1, got %d", p.Quantity)
		}

		before := res

		var newOpt models.MenuOption
		if err := tx.Preload("Dish").First(&newOpt, "id = ?", p.OptionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if newOpt.DailyMenuID != *res.DailyMenuID || newOpt.Kind != res.Kind {
			return ErrNotInMenu
		}

		if p.OptionID == *res.OptionID {
			delta := p.Quantity - res.Quantity
			if delta > 0 {
				if err := ledger.Reserve(tx, p.OptionID, delta); err != nil {
					return err
				}
			} else if delta < 0 {
				if err := ledger.Release(tx, p.OptionID, -delta); err != nil {
					return err
				}
			}
		} else {
			if err := ledger.Release(tx, *res.OptionID, res.Quantity); err != nil {
				return err
			}
			if err := ledger.Reserve(tx, p.OptionID, p.Quantity); err != nil {
				return err
			}
		}

		newOptID := p.OptionID
		res.OptionID = &newOptID
		res.OptionSnapshot = snapshot.OptionText(&newOpt)
		res.Quantity = p.Quantity
		res.Amount = newOpt.Price * float64(p.Quantity)
		res.CancellationDeadline = newOpt.CancellationDeadline

		if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).
			Updates(map[string]interface{}{
				"option_id":             newOptID,
				"option_snapshot":       res.OptionSnapshot,
				"quantity":              res.Quantity,
				"amount":                res.Amount,
				"cancellation_deadline": res.CancellationDeadline,
			}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicate
			}
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      requesterID,
			UserName:    s.userName(tx, requesterID),
			EntityType:  "reservation",
			EntityID:    res.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Changed reservation to %d x %s", res.Quantity, newOpt.Title),
			Before:      before,
			After:       res,
		})
	})
	if err != nil {
		return nil, err
	}

	notify.Emit(s.DB, notify.Event{
		UserID:        res.UserID,
		Kind:          models.NotifyReservationUpdated,
		ReservationID: res.ID,
		ItemName:      res.OptionSnapshot,
		Date:          s.menuDate(&res),
	})

	return &res, nil
}

// MarkServed flips a live reservation to served. Serving consumes the units,
// so the ledger is untouched. Admin-only at the HTTP layer.
func (s *Service) MarkServed(id, adminID uint) (*models.Reservation, error) {
	var res models.Reservation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if res.Status != models.StatusReserved {
			return ErrNotCancellable
		}

		res.Status = models.StatusServed
		if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).
			UpdateColumn("status", models.StatusServed).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      adminID,
			UserName:    s.userName(tx, adminID),
			EntityType:  "reservation",
			EntityID:    res.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Served reservation of %s", res.ItemTitle()),
		})
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// rollbackCreate undoes a just-created leg of a combined order. It bypasses
// the deadline policy on purpose: a fresh reservation may carry no deadline,
// and a rollback must never be refused on eligibility grounds.
func (s *Service) rollbackCreate(res *models.Reservation) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if res.OptionID != nil {
			if err := ledger.Release(tx, *res.OptionID, res.Quantity); err != nil {
				return err
			}
		}
		now := time.Now()
		return tx.Model(&models.Reservation{}).Where("id = ?", res.ID).
			Updates(map[string]interface{}{
				"status":       models.StatusCancelled,
				"cancelled_at": now,
			}).Error
	})
}

// userName resolves the actor's display name for the audit trail. It takes
// the caller's handle: inside a transaction the root pool may have no free
// connection to give.
func (s *Service) userName(db *gorm.DB, userID uint) string {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return ""
	}
	return user.FullName()
}

// menuDate renders the reservation's ordering date for notification events;
// empty once the menu row is gone.
func (s *Service) menuDate(r *models.Reservation) string {
	if r.DailyMenuID == nil {
		return ""
	}
	var menu models.DailyMenu
	if err := s.DB.First(&menu, "id = ?", *r.DailyMenuID).Error; err != nil {
		return ""
	}
	return menu.Date.Format("2006-01-02")
}
