package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trappazoid/booking-backend/internal/model"
	"github.com/trappazoid/booking-backend/internal/reservation"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}

func TestIDArgs(t *testing.T) {
	args := idArgs([]uint64{3, 1, 2})
	assert.Equal(t, []interface{}{uint64(3), uint64(1), uint64(2)}, args)
}

// testDB opens the MySQL instance named by TEST_MYSQL_DSN, or skips. The
// schema from migrations/ must already be applied; the DSN needs
// parseTime=true&loc=UTC, e.g.
// user:pass@tcp(127.0.0.1:3306)/booking_test?parseTime=true&loc=UTC
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set; skipping MySQL-backed ledger test")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seedLedgerFixture inserts a venue, an event, a user and two seats,
// registering cleanup in FK order.
func seedLedgerFixture(t *testing.T, db *sql.DB) (eventID, userID uint64) {
	t.Helper()
	ctx := context.Background()

	res, err := db.ExecContext(ctx, `INSERT INTO venues (name) VALUES (?)`, "ledger-test venue")
	require.NoError(t, err)
	vid, err := res.LastInsertId()
	require.NoError(t, err)

	res, err = db.ExecContext(ctx,
		`INSERT INTO events (title, description, date, venue_id) VALUES (?,?,?,?)`,
		"ledger-test event", "", time.Now().UTC(), vid)
	require.NoError(t, err)
	eid, err := res.LastInsertId()
	require.NoError(t, err)

	email := fmt.Sprintf("ledger-test-%d@example.com", time.Now().UnixNano())
	res, err = db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)`,
		"ledger-test", email, "x", model.RoleUser)
	require.NoError(t, err)
	uid, err := res.LastInsertId()
	require.NoError(t, err)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	seats := []model.Seat{
		{EventID: uint64(eid), ZoneName: "main", SeatType: model.SeatSitting, RowLabel: "A", SeatNumber: 1, PriceCents: 1500, Status: model.SeatAvailable},
		{EventID: uint64(eid), ZoneName: "main", SeatType: model.SeatSitting, RowLabel: "A", SeatNumber: 2, PriceCents: 1500, Status: model.SeatAvailable},
	}
	require.NoError(t, CreateSeatsBulkTx(ctx, tx, seats))
	require.NoError(t, tx.Commit())

	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM bookings WHERE user_id = ?`, uid)
		_, _ = db.ExecContext(ctx, `DELETE FROM seats WHERE event_id = ?`, eid)
		_, _ = db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eid)
		_, _ = db.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, vid)
		_, _ = db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, uid)
	})
	return uint64(eid), uint64(uid)
}

// TestSeatLedgerMySQL drives the real SQL ledger through a full hold,
// expiry and booking cycle: FOR UPDATE reads, batch status updates, the
// inclusive held_at <= cutoff expiry sweep, and the atomic booking insert.
func TestSeatLedgerMySQL(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	eventID, userID := seedLedgerFixture(t, db)

	repo := NewSeatRepo(db)
	seats, err := repo.SeatsByEvent(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	ids := []uint64{seats[0].ID, seats[1].ID}

	// TIMESTAMP columns have second resolution.
	now := time.Now().UTC().Truncate(time.Second)

	err = repo.Update(ctx, func(tx reservation.LedgerTx) error {
		locked, err := tx.SeatsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if len(locked) != len(ids) {
			return fmt.Errorf("locked %d of %d seats", len(locked), len(ids))
		}
		return tx.MarkHeld(ctx, ids, userID, now)
	})
	require.NoError(t, err)

	seats, err = repo.SeatsByEvent(ctx, eventID)
	require.NoError(t, err)
	for _, s := range seats {
		assert.Equal(t, model.SeatHeld, s.Status)
		require.NotNil(t, s.HeldBy)
		require.NotNil(t, s.HeldAt)
		assert.Equal(t, userID, *s.HeldBy)
		assert.WithinDuration(t, now, *s.HeldAt, time.Second)
	}

	// cutoff == held_at reclaims the holds (inclusive boundary).
	var reclaimed int64
	err = repo.Update(ctx, func(tx reservation.LedgerTx) error {
		var err error
		reclaimed, err = tx.ExpireByEvent(ctx, eventID, now)
		return err
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, reclaimed)

	seats, err = repo.SeatsByEvent(ctx, eventID)
	require.NoError(t, err)
	for _, s := range seats {
		assert.Equal(t, model.SeatAvailable, s.Status)
		assert.Nil(t, s.HeldBy)
		assert.Nil(t, s.HeldAt)
	}

	// Re-hold, then book with the booking rows in the same transaction.
	require.NoError(t, repo.Update(ctx, func(tx reservation.LedgerTx) error {
		return tx.MarkHeld(ctx, ids, userID, now)
	}))
	err = repo.Update(ctx, func(tx reservation.LedgerTx) error {
		if err := tx.MarkBooked(ctx, ids); err != nil {
			return err
		}
		bookings := make([]model.Booking, 0, len(ids))
		for _, id := range ids {
			bookings = append(bookings, model.Booking{
				Reference:      uuid.NewString(),
				UserID:         userID,
				SeatID:         id,
				BookedAt:       now,
				SettlementCode: "1212",
			})
		}
		return tx.InsertBookings(ctx, bookings)
	})
	require.NoError(t, err)

	seats, err = repo.SeatsByEvent(ctx, eventID)
	require.NoError(t, err)
	for _, s := range seats {
		assert.Equal(t, model.SeatBooked, s.Status)
	}
	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE user_id = ?`, userID).Scan(&count))
	assert.Equal(t, 2, count)
}
