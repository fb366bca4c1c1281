// Package notify is the boundary to the push-notification service: every
// successful reservation mutation drops an event row for it to pick up.
// Delivery failures must never roll a reservation back, so Emit swallows
// errors after logging them.
package notify

import (
	"log"

	"mealdesk-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	UserID        uint
	Kind          models.NotificationKind
	ReservationID uint
	ItemName      string
	Date          string
}

// Emit records the event in the outbox. Fire-and-forget by contract.
func Emit(db *gorm.DB, ev Event) {
	row := models.NotificationEvent{
		EventID:       uuid.NewString(),
		UserID:        ev.UserID,
		Kind:          ev.Kind,
		ReservationID: ev.ReservationID,
		ItemName:      ev.ItemName,
		Date:          ev.Date,
	}
	if err := db.Create(&row).Error; err != nil {
		log.Printf("notification event not recorded (reservation %d): %v", ev.ReservationID, err)
	}
}
