// Package reservation implements the seat reservation engine: the per-seat
// state machine (available → held → booked), the lock-acquisition protocol
// with its 15 second hold window, lazy expiration of stale holds, and the
// payment-gated commit that turns holds into bookings.
package reservation

import (
	"context"
	"time"

	"github.com/trappazoid/booking-backend/internal/model"
)

// Ledger is the durable store of seat state. The production implementation
// is backed by MySQL (repository.SeatRepo); tests use an in-memory ledger.
// Update runs fn inside one transaction: either every mutation fn performs
// becomes visible at once, or none do. Overlapping updates are serialized
// by the implementation (row locks in MySQL), so two concurrent holds on
// the same seat can never both observe it available.
type Ledger interface {
	// SeatsByEvent returns the full seat set of an event. It never
	// observes a half-written batch.
	SeatsByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error)

	// Update executes fn atomically. A non-nil error from fn rolls the
	// whole transaction back.
	Update(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the set of mutations available inside one Update call.
// Implementations must make SeatsForUpdate block concurrent writers of
// the same rows until the transaction ends.
type LedgerTx interface {
	// SeatsForUpdate fetches the named seats and locks their rows for the
	// remainder of the transaction. Missing ids are simply absent from
	// the result; callers detect them by comparing lengths.
	SeatsForUpdate(ctx context.Context, ids []uint64) ([]model.Seat, error)

	// ExpireByEvent flips every seat of the event whose hold is older
	// than cutoff back to available, clearing holder and timestamp, and
	// reports how many rows changed.
	ExpireByEvent(ctx context.Context, eventID uint64, cutoff time.Time) (int64, error)

	// MarkHeld stamps the seats as held by userID at the given time.
	MarkHeld(ctx context.Context, ids []uint64, userID uint64, at time.Time) error

	// MarkAvailable clears the seats back to available with no holder.
	MarkAvailable(ctx context.Context, ids []uint64) error

	// MarkBooked transitions the seats to the terminal booked state,
	// clearing holder and timestamp.
	MarkBooked(ctx context.Context, ids []uint64) error

	// InsertBookings persists one booking row per booked seat.
	InsertBookings(ctx context.Context, bookings []model.Booking) error
}
