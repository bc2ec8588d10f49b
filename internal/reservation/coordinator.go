package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trappazoid/booking-backend/internal/model"
	"github.com/trappazoid/booking-backend/internal/payment"
)

// HoldWindow is how long an unconfirmed hold stays valid. Holds older
// than this are reclaimed lazily: on the next Query of the event, and by
// re-validation inside every Hold and Commit that touches the seat.
const HoldWindow = 15 * time.Second

// Coordinator implements the reservation operations over a Ledger. All
// read-validate-write sequences run inside one ledger transaction, so a
// batch either transitions completely or not at all, and two concurrent
// holds on overlapping seats cannot both succeed.
type Coordinator struct {
	ledger Ledger
	gate   payment.Validator

	// now is the clock used for hold stamps and expiry cutoffs. Tests
	// substitute a fake; production uses UTC wall time.
	now func() time.Time
}

// NewCoordinator builds a Coordinator over the given ledger and payment
// validator.
func NewCoordinator(ledger Ledger, gate payment.Validator) *Coordinator {
	return &Coordinator{
		ledger: ledger,
		gate:   gate,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Query reclaims the event's expired holds and returns its current seat
// set. No authentication is involved; this is the public seat map.
func (co *Coordinator) Query(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	cutoff := co.now().Add(-HoldWindow)
	err := co.ledger.Update(ctx, func(tx LedgerTx) error {
		_, err := tx.ExpireByEvent(ctx, eventID, cutoff)
		return err
	})
	if err != nil {
		return nil, err
	}
	return co.ledger.SeatsByEvent(ctx, eventID)
}

// Hold claims every named seat for userID, stamping it held as of now.
// The batch is all-or-nothing: a single missing seat fails with
// SeatNotFoundError, a single unavailable seat with SeatConflictError,
// and in either case nothing is written. A seat whose hold has outlived
// the hold window counts as available even if no sweep has reclaimed it
// yet, and a seat already held by userID is re-held with a fresh stamp.
func (co *Coordinator) Hold(ctx context.Context, userID uint64, seatIDs []uint64) error {
	ids := dedupe(seatIDs)
	if len(ids) == 0 {
		return nil
	}
	now := co.now()
	cutoff := now.Add(-HoldWindow)
	return co.ledger.Update(ctx, func(tx LedgerTx) error {
		seats, err := tx.SeatsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if err := requireAll(ids, seats); err != nil {
			return err
		}
		for _, s := range seats {
			if holdableBy(s, userID, cutoff) {
				continue
			}
			return &SeatConflictError{SeatID: s.ID, Label: s.Label(), Status: s.Status}
		}
		return tx.MarkHeld(ctx, ids, userID, now)
	})
}

// Release clears the named seats that are currently held by userID and
// returns how many were actually released. Seats held by someone else,
// not held at all, or already booked are silently skipped; they are not
// an error and do not count.
func (co *Coordinator) Release(ctx context.Context, userID uint64, seatIDs []uint64) (int, error) {
	ids := dedupe(seatIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	released := 0
	err := co.ledger.Update(ctx, func(tx LedgerTx) error {
		seats, err := tx.SeatsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if err := requireAll(ids, seats); err != nil {
			return err
		}
		var clear []uint64
		for _, s := range seats {
			if s.Status == model.SeatHeld && s.HeldBy != nil && *s.HeldBy == userID {
				clear = append(clear, s.ID)
			}
		}
		if len(clear) == 0 {
			return nil
		}
		if err := tx.MarkAvailable(ctx, clear); err != nil {
			return err
		}
		released = len(clear)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// CommitResult reports what a successful Commit produced: the created
// booking rows and the post-commit snapshot of the booked seats.
type CommitResult struct {
	Bookings   []model.Booking
	Seats      []model.Seat
	TotalCents uint64
}

// Commit books the named seats for userID after the payment gate accepts
// the settlement code. Every seat must be exclusively held by userID and
// inside the hold window; one disqualifying seat voids the entire batch.
// On success each seat transitions to booked and exactly one booking row
// per seat is created, atomically with the status change.
func (co *Coordinator) Commit(ctx context.Context, userID uint64, seatIDs []uint64, code string) (*CommitResult, error) {
	if !co.gate.Validate(code) {
		return nil, ErrInvalidSettlementCode
	}
	ids := dedupe(seatIDs)
	if len(ids) == 0 {
		return &CommitResult{}, nil
	}
	now := co.now()
	cutoff := now.Add(-HoldWindow)
	res := &CommitResult{}
	err := co.ledger.Update(ctx, func(tx LedgerTx) error {
		seats, err := tx.SeatsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if err := requireAll(ids, seats); err != nil {
			return err
		}
		for _, s := range seats {
			if s.Status == model.SeatHeld && s.HeldBy != nil && *s.HeldBy == userID &&
				s.HeldAt != nil && s.HeldAt.After(cutoff) {
				continue
			}
			return &SeatConflictError{SeatID: s.ID, Label: s.Label(), Status: s.Status}
		}
		if err := tx.MarkBooked(ctx, ids); err != nil {
			return err
		}
		res.Bookings = make([]model.Booking, 0, len(seats))
		res.Seats = make([]model.Seat, 0, len(seats))
		for _, s := range seats {
			res.Bookings = append(res.Bookings, model.Booking{
				Reference:      uuid.NewString(),
				UserID:         userID,
				SeatID:         s.ID,
				BookedAt:       now,
				SettlementCode: code,
			})
			s.Status = model.SeatBooked
			s.HeldBy = nil
			s.HeldAt = nil
			res.Seats = append(res.Seats, s)
			res.TotalCents += uint64(s.PriceCents)
		}
		return tx.InsertBookings(ctx, res.Bookings)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// holdableBy reports whether seat s can be stamped held by userID given
// the expiry cutoff: it is available, its existing hold has expired, or
// the caller already holds it (idempotent re-hold).
func holdableBy(s model.Seat, userID uint64, cutoff time.Time) bool {
	switch s.Status {
	case model.SeatAvailable:
		return true
	case model.SeatHeld:
		if s.HeldAt != nil && !s.HeldAt.After(cutoff) {
			return true
		}
		return s.HeldBy != nil && *s.HeldBy == userID
	}
	return false
}

// requireAll fails with SeatNotFoundError for the first requested id that
// is absent from the fetched set.
func requireAll(ids []uint64, seats []model.Seat) error {
	if len(seats) == len(ids) {
		return nil
	}
	found := make(map[uint64]struct{}, len(seats))
	for _, s := range seats {
		found[s.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return &SeatNotFoundError{SeatID: id}
		}
	}
	return nil
}

// dedupe collapses repeated ids while preserving order. Ids are not
// filtered beyond that: an id that resolves to no seat, zero included,
// must reach requireAll and fail the batch as NotFound.
func dedupe(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
