package reservation

import (
	"errors"
	"fmt"

	"github.com/trappazoid/booking-backend/internal/model"
)

// Sentinel errors for the engine's failure taxonomy. Operation errors
// wrap these, so handlers can classify with errors.Is while the wrapped
// value still names the offending seat.
var (
	// ErrSeatNotFound is wrapped when a referenced seat id does not exist.
	ErrSeatNotFound = errors.New("seat not found")

	// ErrSeatConflict is wrapped when a seat is not in the state the
	// requested batch operation requires.
	ErrSeatConflict = errors.New("seat conflict")

	// ErrInvalidSettlementCode is returned when the payment gate rejects
	// the supplied settlement code. No seat state is touched.
	ErrInvalidSettlementCode = errors.New("invalid settlement code")
)

// SeatNotFoundError identifies which requested seat id failed to resolve.
type SeatNotFoundError struct {
	SeatID uint64
}

func (e *SeatNotFoundError) Error() string {
	return fmt.Sprintf("seat %d not found", e.SeatID)
}

func (e *SeatNotFoundError) Unwrap() error { return ErrSeatNotFound }

// SeatConflictError identifies the seat that disqualified a batch
// operation and the state it was observed in.
type SeatConflictError struct {
	SeatID uint64
	Label  string
	Status model.SeatStatus
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %s is not available (status=%s)", e.Label, e.Status)
}

func (e *SeatConflictError) Unwrap() error { return ErrSeatConflict }
