package models

import "time"

type ReservationStatus string

const (
	StatusReserved  ReservationStatus = "reserved"
	StatusCancelled ReservationStatus = "cancelled"
	StatusServed    ReservationStatus = "served"
)

// Reservation: one claim on a MenuOption. Personal and guest, meal and
// dessert variants share this shape; guest rows carry the guest's name and
// are always quantity 1 (UserID is then the host).
//
// DailyMenuID/OptionID go nil when the referenced row is deleted; the
// snapshot columns, written at creation and refreshed just before the
// delete commits, then carry the identity for reporting.
type Reservation struct {
	ID             uint       `gorm:"primaryKey"`
	Kind           OptionKind `gorm:"size:10;index;not null"`
	UserID         uint       `gorm:"index;not null"`
	User           User
	GuestFirstName string `gorm:"size:150;not null;default:''"`
	GuestLastName  string `gorm:"size:150;not null;default:''"`
	DailyMenuID    *uint  `gorm:"index"`
	DailyMenu      *DailyMenu
	MenuSnapshot   string `gorm:"size:500"`
	OptionID       *uint  `gorm:"index"`
	Option         *MenuOption
	OptionSnapshot string            `gorm:"size:500"`
	Quantity       int               `gorm:"not null;default:1"`
	Amount         float64           `gorm:"not null"` // unit price * quantity, frozen at creation
	Status         ReservationStatus `gorm:"size:20;index;not null;default:'reserved'"`
	// Copied verbatim from the option at creation; empty means cancellation
	// is not permitted.
	CancellationDeadline string `gorm:"size:100"`
	Description          string `gorm:"size:500"`
	CancelledAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (r *Reservation) IsGuest() bool {
	return r.GuestFirstName != "" || r.GuestLastName != ""
}

func (r *Reservation) GuestFullName() string {
	if r.GuestLastName == "" {
		return r.GuestFirstName
	}
	return r.GuestFirstName + " " + r.GuestLastName
}

// ItemTitle prefers the live option, falling back to the frozen snapshot.
func (r *Reservation) ItemTitle() string {
	if r.Option != nil {
		return r.Option.Title
	}
	return r.OptionSnapshot
}
