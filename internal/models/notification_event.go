package models

import "time"

type NotificationKind string

const (
	NotifyReservationCreated   NotificationKind = "reservation_created"
	NotifyReservationCancelled NotificationKind = "reservation_cancelled"
	NotifyReservationUpdated   NotificationKind = "reservation_updated"
)

// NotificationEvent: outbox row consumed by the push-notification service.
// Delivery is that service's problem; we only record the event.
type NotificationEvent struct {
	ID            uint             `gorm:"primaryKey"`
	EventID       string           `gorm:"size:36;uniqueIndex;not null"`
	UserID        uint             `gorm:"index;not null"`
	Kind          NotificationKind `gorm:"size:30;not null"`
	ReservationID uint             `gorm:"index;not null"`
	ItemName      string           `gorm:"size:200"`
	Date          string           `gorm:"size:20"`
	CreatedAt     time.Time
}
