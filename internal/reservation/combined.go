package reservation

import (
	"log"

	"mealdesk-backend/internal/audit"
	"mealdesk-backend/internal/models"
)

// Coordinator turns "a meal and a dessert for the same day" into one
// user-facing action over two independent ledger entries. Creation is
// all-or-nothing: a failed second leg rolls the first leg back. Update and
// cancel are per-leg; partial outcomes there are acceptable and reported
// leg by leg.
type Coordinator struct {
	Svc *Service
}

func NewCoordinator(svc *Service) *Coordinator {
	return &Coordinator{Svc: svc}
}

type LegRequest struct {
	OptionID    uint
	Quantity    int
	Description string
}

type CombinedCreateParams struct {
	UserID         uint
	MenuID         uint
	GuestFirstName string
	GuestLastName  string
	Meal           *LegRequest
	Dessert        *LegRequest
}

// CreateCombined creates the requested legs in order: meal first, then
// dessert. If the dessert leg fails after the meal leg committed, the meal
// leg is compensated. A failed compensation is the one state we cannot fix
// in-line: it is logged, audited, and surfaced as *ReconciliationError for
// manual cleanup.
func (co *Coordinator) CreateCombined(p CombinedCreateParams) (meal, dessert *models.Reservation, err error) {
	if p.Meal == nil && p.Dessert == nil {
		return nil, nil, ErrEmptyCombined
	}

	if p.Meal != nil {
		meal, err = co.Svc.Create(CreateParams{
			UserID:         p.UserID,
			MenuID:         p.MenuID,
			OptionID:       p.Meal.OptionID,
			Kind:           models.KindMeal,
			Quantity:       p.Meal.Quantity,
			GuestFirstName: p.GuestFirstName,
			GuestLastName:  p.GuestLastName,
			Description:    p.Meal.Description,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	if p.Dessert != nil {
		dessert, err = co.Svc.Create(CreateParams{
			UserID:         p.UserID,
			MenuID:         p.MenuID,
			OptionID:       p.Dessert.OptionID,
			Kind:           models.KindDessert,
			Quantity:       p.Dessert.Quantity,
			GuestFirstName: p.GuestFirstName,
			GuestLastName:  p.GuestLastName,
			Description:    p.Dessert.Description,
		})
		if err != nil {
			if meal == nil {
				return nil, nil, err
			}
			if rbErr := co.Svc.rollbackCreate(meal); rbErr != nil {
				log.Printf("[ERROR] combined order: rollback of meal reservation %d failed: %v (dessert leg error: %v)",
					meal.ID, rbErr, err)
				if auditErr := audit.WriteLog(co.Svc.DB, audit.LogOptions{
					UserID:      p.UserID,
					EntityType:  "reservation",
					EntityID:    meal.ID,
					Action:      models.AuditActionReconcile,
					Description: "Combined-order rollback failed; reservation needs manual reconciliation",
				}); auditErr != nil {
					log.Printf("[ERROR] could not write reconciliation audit row for reservation %d: %v", meal.ID, auditErr)
				}
				return nil, nil, &ReconciliationError{ReservationID: meal.ID, Cause: err, RollbackErr: rbErr}
			}
			return nil, nil, err
		}
	}

	return meal, dessert, nil
}

type LegUpdate struct {
	ReservationID uint
	OptionID      uint
	Quantity      int
}

// CombinedResult reports each leg's outcome independently.
type CombinedResult struct {
	Meal       *models.Reservation
	MealErr    error
	Dessert    *models.Reservation
	DessertErr error
}

func (co *Coordinator) UpdateCombined(userID uint, meal, dessert *LegUpdate) (CombinedResult, error) {
	if meal == nil && dessert == nil {
		return CombinedResult{}, ErrEmptyCombined
	}

	var out CombinedResult
	if meal != nil {
		out.Meal, out.MealErr = co.Svc.Update(meal.ReservationID, userID, UpdateParams{
			OptionID: meal.OptionID,
			Quantity: meal.Quantity,
		})
	}
	if dessert != nil {
		out.Dessert, out.DessertErr = co.Svc.Update(dessert.ReservationID, userID, UpdateParams{
			OptionID: dessert.OptionID,
			Quantity: dessert.Quantity,
		})
	}
	return out, nil
}

func (co *Coordinator) CancelCombined(userID uint, mealID, dessertID *uint) (CombinedResult, error) {
	if mealID == nil && dessertID == nil {
		return CombinedResult{}, ErrEmptyCombined
	}

	var out CombinedResult
	if mealID != nil {
		out.Meal, out.MealErr = co.Svc.Cancel(*mealID, userID)
	}
	if dessertID != nil {
		out.Dessert, out.DessertErr = co.Svc.Cancel(*dessertID, userID)
	}
	return out, nil
}
