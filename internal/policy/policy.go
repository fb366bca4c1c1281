// Package policy holds the pure cancellation-eligibility rules.
package policy

import (
	"strings"

	"mealdesk-backend/internal/models"
)

// CanCancel reports whether the reservation may still be cancelled by its
// owner. Only live reservations qualify, and only when a cancellation
// deadline was recorded at creation time.
//
// The deadline is an opaque string token and is deliberately NOT compared
// against the current time: the upstream system ships with presence-only
// checking, and parsing here would silently change who is allowed to cancel.
// Whether that is the intended business rule is tracked in DESIGN.md.
func CanCancel(r *models.Reservation) bool {
	if r.Status != models.StatusReserved {
		return false
	}
	return strings.TrimSpace(r.CancellationDeadline) != ""
}
