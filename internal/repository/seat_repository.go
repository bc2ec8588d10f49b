package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/trappazoid/booking-backend/internal/model"
	"github.com/trappazoid/booking-backend/internal/reservation"
)

// seatColumns is the column list every seat query scans, in order.
const seatColumns = `id, event_id, zone_name, seat_type, row_label, seat_number,
	position_x, position_y, price_cents, status, held_by, held_at`

// SeatRepo is the durable seat ledger. It implements reservation.Ledger:
// reads see only committed state, and Update serializes overlapping batch
// mutations through InnoDB row locks taken by SELECT ... FOR UPDATE.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo given a DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// SeatsByEvent returns every seat of an event ordered by id.
func (r *SeatRepo) SeatsByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE event_id = ? ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSeats(rows)
}

// Update runs fn inside one transaction. Any error from fn, or from the
// commit itself, rolls every mutation back.
func (r *SeatRepo) Update(ctx context.Context, fn func(tx reservation.LedgerTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&seatTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CreateSeatsBulkTx inserts the generated seat set of a new event in one
// statement using the provided transaction. Status, holder and hold
// timestamp come from the model; ids are assigned by the database.
func CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO seats
		(event_id, zone_name, seat_type, row_label, seat_number, position_x, position_y, price_cents, status)
		VALUES `)
	args := make([]interface{}, 0, len(seats)*9)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?,?,?,?,?,?,?,?,?)")
		args = append(args, s.EventID, s.ZoneName, string(s.SeatType), s.RowLabel,
			s.SeatNumber, s.PositionX, s.PositionY, s.PriceCents, string(s.Status))
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}

// seatTx adapts *sql.Tx to reservation.LedgerTx.
type seatTx struct {
	tx *sql.Tx
}

// SeatsForUpdate fetches the named seats and takes row locks on them for
// the remainder of the transaction. Ids that do not resolve are simply
// absent from the result.
func (t *seatTx) SeatsForUpdate(ctx context.Context, ids []uint64) ([]model.Seat, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + seatColumns + ` FROM seats WHERE id IN (` + placeholders(len(ids)) + `) FOR UPDATE`
	rows, err := t.tx.QueryContext(ctx, q, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSeats(rows)
}

// ExpireByEvent reclaims the event's holds stamped at or before cutoff.
func (t *seatTx) ExpireByEvent(ctx context.Context, eventID uint64, cutoff time.Time) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE seats SET status = ?, held_by = NULL, held_at = NULL
		 WHERE event_id = ? AND status = ? AND held_at <= ?`,
		string(model.SeatAvailable), eventID, string(model.SeatHeld), cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkHeld stamps the seats as held by userID at the given time.
func (t *seatTx) MarkHeld(ctx context.Context, ids []uint64, userID uint64, at time.Time) error {
	return t.setStatus(ctx, ids,
		`UPDATE seats SET status = ?, held_by = ?, held_at = ? WHERE id IN (`,
		string(model.SeatHeld), userID, at.UTC())
}

// MarkAvailable clears the seats back to available with no holder.
func (t *seatTx) MarkAvailable(ctx context.Context, ids []uint64) error {
	return t.setStatus(ctx, ids,
		`UPDATE seats SET status = ?, held_by = NULL, held_at = NULL WHERE id IN (`,
		string(model.SeatAvailable))
}

// MarkBooked transitions the seats to booked, clearing hold fields.
func (t *seatTx) MarkBooked(ctx context.Context, ids []uint64) error {
	return t.setStatus(ctx, ids,
		`UPDATE seats SET status = ?, held_by = NULL, held_at = NULL WHERE id IN (`,
		string(model.SeatBooked))
}

// InsertBookings persists one booking row per committed seat.
func (t *seatTx) InsertBookings(ctx context.Context, bookings []model.Booking) error {
	return insertBookingsTx(ctx, t.tx, bookings)
}

func (t *seatTx) setStatus(ctx context.Context, ids []uint64, prefix string, statusArgs ...interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	q := prefix + placeholders(len(ids)) + `)`
	args := append(statusArgs, idArgs(ids)...)
	_, err := t.tx.ExecContext(ctx, q, args...)
	return err
}

// scanSeats reads seat rows, mapping nullable hold columns onto pointers.
func scanSeats(rows *sql.Rows) ([]model.Seat, error) {
	var seats []model.Seat
	for rows.Next() {
		var (
			s      model.Seat
			heldBy sql.NullInt64
			heldAt sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.EventID, &s.ZoneName, &s.SeatType, &s.RowLabel,
			&s.SeatNumber, &s.PositionX, &s.PositionY, &s.PriceCents, &s.Status,
			&heldBy, &heldAt); err != nil {
			return nil, err
		}
		if heldBy.Valid {
			v := uint64(heldBy.Int64)
			s.HeldBy = &v
		}
		if heldAt.Valid {
			v := heldAt.Time.UTC()
			s.HeldAt = &v
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// placeholders returns "?,?,...,?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func idArgs(ids []uint64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
