package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/trappazoid/booking-backend/internal/model"
)

// EventRepo persists events and their venues. Event creation and deletion
// are transactional with the owned seat set: an event never exists without
// its seats, and deleting an event cascades to seats and their bookings.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo given a DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventColumns = `id, title, description, date, poster_url, venue_id, created_at`

// List returns one page of events sorted by date descending (newest
// first) together with the total row count for pagination.
func (r *EventRepo) List(ctx context.Context, page, perPage int) ([]model.Event, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date DESC LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// GetByID fetches a single event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ? LIMIT 1`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return ev, err
}

// GetVenue fetches the venue referenced by an event.
func (r *EventRepo) GetVenue(ctx context.Context, venueID uint64) (*model.Venue, error) {
	var v model.Venue
	var schematic, schema sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, schematic_url, schema_json, created_at FROM venues WHERE id = ? LIMIT 1`,
		venueID).Scan(&v.ID, &v.Name, &schematic, &schema, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	v.SchematicURL = schematic.String
	v.SchemaJSON = schema.String
	return &v, nil
}

// Search returns events whose title contains q, newest first. A small
// cap keeps the public endpoint from dumping the whole catalog.
func (r *EventRepo) Search(ctx context.Context, q string) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE title LIKE ? ORDER BY date DESC LIMIT 50`,
		"%"+q+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// CreateWithSeats inserts the venue, the event and the generated seat set
// in one transaction. On return event.ID and venue.ID are populated and
// every seat row exists, or nothing was written.
func (r *EventRepo) CreateWithSeats(ctx context.Context, ev *model.Event, venue *model.Venue, seats []model.Seat) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO venues (name, schematic_url, schema_json) VALUES (?,?,?)`,
		venue.Name, venue.SchematicURL, venue.SchemaJSON)
	if err != nil {
		return err
	}
	vid, err := res.LastInsertId()
	if err != nil {
		return err
	}
	venue.ID = uint64(vid)

	res, err = tx.ExecContext(ctx,
		`INSERT INTO events (title, description, date, poster_url, venue_id) VALUES (?,?,?,?,?)`,
		ev.Title, ev.Description, ev.Date.UTC(), ev.PosterURL, venue.ID)
	if err != nil {
		return err
	}
	eid, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(eid)
	ev.VenueID = venue.ID

	for i := range seats {
		seats[i].EventID = ev.ID
	}
	if err := CreateSeatsBulkTx(ctx, tx, seats); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteCascade removes an event together with its seats, their bookings
// and the owning venue, all in one transaction. Returns ErrEventNotFound
// when the event does not exist.
func (r *EventRepo) DeleteCascade(ctx context.Context, eventID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var venueID uint64
	err = tx.QueryRowContext(ctx, `SELECT venue_id FROM events WHERE id = ? LIMIT 1`, eventID).Scan(&venueID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bookings WHERE seat_id IN (SELECT id FROM seats WHERE event_id = ?)`, eventID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eventID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, venueID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func scanEvent(row *sql.Row) (*model.Event, error) {
	var ev model.Event
	var poster sql.NullString
	if err := row.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Date, &poster, &ev.VenueID, &ev.CreatedAt); err != nil {
		return nil, err
	}
	ev.PosterURL = poster.String
	ev.Date = ev.Date.UTC()
	return &ev, nil
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	var out []model.Event
	for rows.Next() {
		var ev model.Event
		var poster sql.NullString
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Date, &poster, &ev.VenueID, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.PosterURL = poster.String
		ev.Date = ev.Date.UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}
