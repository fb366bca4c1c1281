package reservation

import (
	"testing"

	"mealdesk-backend/internal/ledger"
	"mealdesk-backend/internal/models"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CombinedSuite struct {
	suite.Suite
	f  *fixture
	co *Coordinator
}

func (s *CombinedSuite) SetupTest() {
	s.f = newFixture(s.T(), 5, 1)
	s.co = NewCoordinator(s.f.svc)
}

func (s *CombinedSuite) TestBothLegsSucceed() {
	meal, dessert, err := s.co.CreateCombined(CombinedCreateParams{
		UserID:  s.f.userA.ID,
		MenuID:  s.f.menu.ID,
		Meal:    &LegRequest{OptionID: s.f.mealOpt.ID, Quantity: 2},
		Dessert: &LegRequest{OptionID: s.f.dessertOpt.ID, Quantity: 1},
	})
	s.Require().NoError(err)
	s.Require().NotNil(meal)
	s.Require().NotNil(dessert)
	s.Equal(float64(20), meal.Amount)
	s.Equal(float64(4), dessert.Amount)
	s.Equal(3, s.f.available(s.T(), s.f.mealOpt.ID))
	s.Equal(0, s.f.available(s.T(), s.f.dessertOpt.ID))
}

func (s *CombinedSuite) TestDessertFailureRollsBackMeal() {
	mealBefore := s.f.available(s.T(), s.f.mealOpt.ID)

	// Dessert capacity is 1; asking for 2 must sink the whole order.
	_, _, err := s.co.CreateCombined(CombinedCreateParams{
		UserID:  s.f.userA.ID,
		MenuID:  s.f.menu.ID,
		Meal:    &LegRequest{OptionID: s.f.mealOpt.ID, Quantity: 2},
		Dessert: &LegRequest{OptionID: s.f.dessertOpt.ID, Quantity: 2},
	})
	var capErr *ledger.InsufficientCapacityError
	s.Require().ErrorAs(err, &capErr)
	s.Equal(1, capErr.Available)

	s.Equal(mealBefore, s.f.available(s.T(), s.f.mealOpt.ID), "meal capacity restored")

	var liveCount int64
	s.f.db.Model(&models.Reservation{}).
		Where("user_id = ? AND status = ?", s.f.userA.ID, models.StatusReserved).
		Count(&liveCount)
	s.Equal(int64(0), liveCount, "no half-completed combined order may survive")
}

func (s *CombinedSuite) TestMealOnlyAndDessertOnly() {
	meal, dessert, err := s.co.CreateCombined(CombinedCreateParams{
		UserID: s.f.userA.ID,
		MenuID: s.f.menu.ID,
		Meal:   &LegRequest{OptionID: s.f.mealOpt.ID, Quantity: 1},
	})
	s.Require().NoError(err)
	s.Require().NotNil(meal)
	s.Nil(dessert)

	meal2, dessert2, err := s.co.CreateCombined(CombinedCreateParams{
		UserID:  s.f.userB.ID,
		MenuID:  s.f.menu.ID,
		Dessert: &LegRequest{OptionID: s.f.dessertOpt.ID, Quantity: 1},
	})
	s.Require().NoError(err)
	s.Nil(meal2)
	s.Require().NotNil(dessert2)
}

func (s *CombinedSuite) TestEmptyCombinedRejected() {
	_, _, err := s.co.CreateCombined(CombinedCreateParams{
		UserID: s.f.userA.ID,
		MenuID: s.f.menu.ID,
	})
	s.Require().ErrorIs(err, ErrEmptyCombined)
}

func (s *CombinedSuite) TestGuestCombinedPinsQuantities() {
	meal, dessert, err := s.co.CreateCombined(CombinedCreateParams{
		UserID:         s.f.userA.ID,
		MenuID:         s.f.menu.ID,
		GuestFirstName: "Carol",
		GuestLastName:  "King",
		Meal:           &LegRequest{OptionID: s.f.mealOpt.ID, Quantity: 3},
		Dessert:        &LegRequest{OptionID: s.f.dessertOpt.ID, Quantity: 3},
	})
	s.Require().NoError(err)
	s.Equal(1, meal.Quantity)
	s.Equal(1, dessert.Quantity)
}

func (s *CombinedSuite) TestUpdateCombinedReportsPerLeg() {
	meal, dessert, err := s.co.CreateCombined(CombinedCreateParams{
		UserID:  s.f.userA.ID,
		MenuID:  s.f.menu.ID,
		Meal:    &LegRequest{OptionID: s.f.mealOpt.ID, Quantity: 1},
		Dessert: &LegRequest{OptionID: s.f.dessertOpt.ID, Quantity: 1},
	})
	s.Require().NoError(err)

	// Meal grows within capacity; dessert asks beyond it. Update semantics
	// allow split outcomes, unlike creation.
	out, err := s.co.UpdateCombined(s.f.userA.ID,
		&LegUpdate{ReservationID: meal.ID, OptionID: s.f.mealOpt.ID, Quantity: 3},
		&LegUpdate{ReservationID: dessert.ID, OptionID: s.f.dessertOpt.ID, Quantity: 2},
	)
	s.Require().NoError(err)

	s.Require().NotNil(out.Meal)
	s.Equal(3, out.Meal.Quantity)
	s.Require().Error(out.DessertErr)
	var capErr *ledger.InsufficientCapacityError
	s.Require().ErrorAs(out.DessertErr, &capErr)

	var reread models.Reservation
	s.Require().NoError(s.f.db.First(&reread, "id = ?", dessert.ID).Error)
	s.Equal(1, reread.Quantity, "failed leg left untouched")
}

func (s *CombinedSuite) TestCancelCombinedPerLeg() {
	meal, dessert, err := s.co.CreateCombined(CombinedCreateParams{
		UserID:  s.f.userA.ID,
		MenuID:  s.f.menu.ID,
		Meal:    &LegRequest{OptionID: s.f.mealOpt.ID, Quantity: 2},
		Dessert: &LegRequest{OptionID: s.f.dessertOpt.ID, Quantity: 1},
	})
	s.Require().NoError(err)

	out, err := s.co.CancelCombined(s.f.userA.ID, &meal.ID, &dessert.ID)
	s.Require().NoError(err)
	s.Require().NotNil(out.Meal)
	s.Require().NotNil(out.Dessert)
	s.Equal(models.StatusCancelled, out.Meal.Status)
	s.Equal(models.StatusCancelled, out.Dessert.Status)

	s.Equal(5, s.f.available(s.T(), s.f.mealOpt.ID))
	s.Equal(1, s.f.available(s.T(), s.f.dessertOpt.ID))

	_, err = s.co.CancelCombined(s.f.userA.ID, nil, nil)
	require.ErrorIs(s.T(), err, ErrEmptyCombined)
}

func TestCombinedSuite(t *testing.T) {
	suite.Run(t, new(CombinedSuite))
}
