package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("reservation not found")
	ErrNotInMenu      = errors.New("option does not belong to this daily menu")
	ErrDuplicate      = errors.New("a live reservation for this option already exists")
	ErrNotCancellable = errors.New("reservation can no longer be changed")
	ErrEmptyCombined  = errors.New("combined reservation needs at least one part")
)

// ReconciliationError is the one case where a half-completed combined order
// can leak: the second leg failed AND rolling back the first leg failed too.
// The coordinator has already logged it and written an audit row; the stuck
// reservation needs manual cleanup.
type ReconciliationError struct {
	ReservationID uint
	Cause         error
	RollbackErr   error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reservation %d needs manual reconciliation: leg failed (%v) and rollback failed (%v)",
		e.ReservationID, e.Cause, e.RollbackErr)
}

func (e *ReconciliationError) Unwrap() error { return e.Cause }
