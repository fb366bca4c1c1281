package ledger

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mealdesk-backend/internal/database"
	"mealdesk-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedOption(t *testing.T, quantity int) (*gorm.DB, uint) {
	t.Helper()

	db, err := database.OpenTest()
	require.NoError(t, err)

	center := models.Center{Name: "HQ"}
	require.NoError(t, db.Create(&center).Error)
	restaurant := models.Restaurant{CenterID: center.ID, Name: "Canteen", IsActive: true}
	require.NoError(t, db.Create(&restaurant).Error)
	dish := models.Dish{RestaurantID: restaurant.ID, Kind: models.KindMeal, Title: "Stew", IsActive: true}
	require.NoError(t, db.Create(&dish).Error)
	menu := models.DailyMenu{RestaurantID: restaurant.ID, Date: time.Now(), IsAvailable: true}
	require.NoError(t, db.Create(&menu).Error)
	opt := models.MenuOption{
		DailyMenuID: menu.ID,
		DishID:      dish.ID,
		Kind:        models.KindMeal,
		Title:       "Stew with rice",
		Price:       10,
		Quantity:    quantity,
	}
	require.NoError(t, db.Create(&opt).Error)

	return db, opt.ID
}

func TestReserveAndRelease(t *testing.T) {
	db, optID := seedOption(t, 5)

	require.NoError(t, Reserve(db, optID, 3))

	avail, err := Available(db, optID)
	require.NoError(t, err)
	require.Equal(t, 2, avail)

	require.NoError(t, Release(db, optID, 3))

	avail, err = Available(db, optID)
	require.NoError(t, err)
	require.Equal(t, 5, avail)
}

func TestReserveInsufficientCapacityReportsAvailable(t *testing.T) {
	db, optID := seedOption(t, 5)

	require.NoError(t, Reserve(db, optID, 3))

	err := Reserve(db, optID, 3)
	var capErr *InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, 2, capErr.Available)
	require.Equal(t, 3, capErr.Requested)

	// The failed attempt must not have moved the counter.
	avail, availErr := Available(db, optID)
	require.NoError(t, availErr)
	require.Equal(t, 2, avail)
}

func TestReserveUnknownOption(t *testing.T) {
	db, _ := seedOption(t, 5)

	err := Reserve(db, 9999, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestConcurrentReserveNeverOverbooks(t *testing.T) {
	const n = 10
	db, optID := seedOption(t, n-1)

	var wg sync.WaitGroup
	var capacityFailures int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := Reserve(db, optID, 1)
			if err == nil {
				return
			}
			var capErr *InsufficientCapacityError
			if errors.As(err, &capErr) {
				atomic.AddInt32(&capacityFailures, 1)
				return
			}
			t.Errorf("unexpected reserve error: %v", err)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), capacityFailures, "exactly one caller must be turned away")

	var opt models.MenuOption
	require.NoError(t, db.First(&opt, "id = ?", optID).Error)
	require.Equal(t, n-1, opt.ReservedQuantity)
	require.Equal(t, 0, opt.Available())
}

func TestReleaseClampsAtZero(t *testing.T) {
	db, optID := seedOption(t, 5)

	require.NoError(t, Reserve(db, optID, 2))

	// Release more than was ever reserved, repeatedly.
	require.NoError(t, Release(db, optID, 10))
	require.NoError(t, Release(db, optID, 10))

	var opt models.MenuOption
	require.NoError(t, db.First(&opt, "id = ?", optID).Error)
	require.Equal(t, 0, opt.ReservedQuantity)
}

func TestConcurrentReserveAndOverRelease(t *testing.T) {
	const capacity = 10
	db, optID := seedOption(t, capacity)

	var wg sync.WaitGroup
	for i := 0; i < capacity; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = Reserve(db, optID, 1)
		}()
	}
	// Over-releases racing the reserves must clamp, never wipe fresh units
	// or drive the counter negative.
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = Release(db, optID, 3)
		}()
	}
	wg.Wait()

	var opt models.MenuOption
	require.NoError(t, db.First(&opt, "id = ?", optID).Error)
	require.GreaterOrEqual(t, opt.ReservedQuantity, 0)
	require.LessOrEqual(t, opt.ReservedQuantity, capacity)
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	db, optID := seedOption(t, 5)

	require.Error(t, Reserve(db, optID, 0))
	require.Error(t, Reserve(db, optID, -1))
	require.Error(t, Release(db, optID, 0))
}
