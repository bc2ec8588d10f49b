package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/trappazoid/booking-backend/internal/model"
)

// BookingRepo reads booking records. Writes happen only through the seat
// ledger transaction (insertBookingsTx), so a booking row can never exist
// without its seat having been booked in the same commit.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingDetail is a booking joined with its seat and event for the
// user-facing history listing.
type BookingDetail struct {
	Reference  string    `json:"reference"`
	EventID    uint64    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	SeatID     uint64    `json:"seat_id"`
	ZoneName   string    `json:"zone_name"`
	RowLabel   string    `json:"row_label"`
	SeatNumber uint32    `json:"seat_number"`
	PriceCents uint32    `json:"price_cents"`
	BookedAt   time.Time `json:"booked_at"`
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.reference, s.event_id, e.title, b.seat_id,
			s.zone_name, s.row_label, s.seat_number, s.price_cents, b.booked_at
		FROM bookings b
		JOIN seats s ON s.id = b.seat_id
		JOIN events e ON e.id = s.event_id
		WHERE b.user_id = ?
		ORDER BY b.booked_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BookingDetail
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(&d.Reference, &d.EventID, &d.EventTitle, &d.SeatID,
			&d.ZoneName, &d.RowLabel, &d.SeatNumber, &d.PriceCents, &d.BookedAt); err != nil {
			return nil, err
		}
		d.BookedAt = d.BookedAt.UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

// insertBookingsTx writes one row per booking inside the caller's
// transaction. Ids are assigned by the database and not read back; the
// Reference column is the external identifier.
func insertBookingsTx(ctx context.Context, tx *sql.Tx, bookings []model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO bookings (reference, user_id, seat_id, booked_at, settlement_code) VALUES `)
	args := make([]interface{}, 0, len(bookings)*5)
	for i, bk := range bookings {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?,?,?,?,?)")
		args = append(args, bk.Reference, bk.UserID, bk.SeatID, bk.BookedAt.UTC(), bk.SettlementCode)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}
