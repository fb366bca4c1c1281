package notify

import (
	"testing"

	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func TestEmitWritesOutboxRow(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)

	Emit(db, Event{
		UserID:        7,
		Kind:          models.NotifyReservationCreated,
		ReservationID: 42,
		ItemName:      "Stew with rice",
		Date:          "2026-08-23",
	})

	var row models.NotificationEvent
	require.NoError(t, db.First(&row, "reservation_id = ?", 42).Error)
	require.NotEmpty(t, row.EventID)
	require.Equal(t, models.NotifyReservationCreated, row.Kind)
	require.Equal(t, uint(7), row.UserID)

	// Each emission gets its own event id.
	Emit(db, Event{UserID: 7, Kind: models.NotifyReservationCancelled, ReservationID: 43})
	var rows []models.NotificationEvent
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 2)
	require.NotEqual(t, rows[0].EventID, rows[1].EventID)
}
