package policy

import (
	"testing"

	"mealdesk-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCanCancel(t *testing.T) {
	cases := []struct {
		name     string
		status   models.ReservationStatus
		deadline string
		want     bool
	}{
		{"reserved with deadline", models.StatusReserved, "1404/08/02 10:30", true},
		{"reserved without deadline", models.StatusReserved, "", false},
		{"reserved with whitespace deadline", models.StatusReserved, "   ", false},
		{"cancelled with deadline", models.StatusCancelled, "1404/08/02 10:30", false},
		{"served with deadline", models.StatusServed, "1404/08/02 10:30", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := models.Reservation{Status: tc.status, CancellationDeadline: tc.deadline}
			require.Equal(t, tc.want, CanCancel(&r))
		})
	}
}

// The deadline token is opaque: even a long-past date keeps the reservation
// cancellable as long as the status is still reserved.
func TestCanCancelDoesNotParseDeadline(t *testing.T) {
	r := models.Reservation{Status: models.StatusReserved, CancellationDeadline: "2001-01-01 00:00"}
	require.True(t, CanCancel(&r))

	r.CancellationDeadline = "not a date at all"
	require.True(t, CanCancel(&r))
}
