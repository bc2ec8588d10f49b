package model

import (
	"fmt"
	"time"
)

// SeatStatus is the closed set of reservation states a seat can be in.
// Persisted as a string column; only the three values below are legal.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available" // free to be held
	SeatHeld      SeatStatus = "held"      // temporarily claimed by one user
	SeatBooked    SeatStatus = "booked"    // permanently sold, terminal
)

// Valid reports whether s is one of the persisted status values.
func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatHeld, SeatBooked:
		return true
	}
	return false
}

// SeatType is the closed set of seat categories defined at venue setup.
type SeatType string

const (
	SeatSitting  SeatType = "sitting"
	SeatVIP      SeatType = "vip"
	SeatStanding SeatType = "standing"
)

// Valid reports whether t is a known seat type.
func (t SeatType) Valid() bool {
	switch t {
	case SeatSitting, SeatVIP, SeatStanding:
		return true
	}
	return false
}

// Seat is one uniquely identified seat belonging to exactly one event.
// The descriptive fields (zone, type, row, number, position, price) are
// fixed at event creation; only Status, HeldBy and HeldAt ever change.
// HeldBy and HeldAt are both set when Status is "held" and both nil
// otherwise.
//
// Fields:
//  ID         – primary key identifier.
//  EventID    – owning event.
//  ZoneName   – zone the seat belongs to (e.g. "VIP Center").
//  SeatType   – category of the seat (sitting, vip, standing).
//  RowLabel   – row designation (e.g. "A", "Sector 1").
//  SeatNumber – number of the seat within its row.
//  PositionX  – horizontal display position on the venue canvas.
//  PositionY  – vertical display position on the venue canvas.
//  PriceCents – price in cents.
//  Status     – current reservation state.
//  HeldBy     – user holding the seat (nil unless held).
//  HeldAt     – UTC time the hold was stamped (nil unless held).
type Seat struct {
	ID         uint64     `json:"id"`
	EventID    uint64     `json:"event_id"`
	ZoneName   string     `json:"zone_name"`
	SeatType   SeatType   `json:"seat_type"`
	RowLabel   string     `json:"row_label"`
	SeatNumber uint32     `json:"seat_number"`
	PositionX  float64    `json:"position_x"`
	PositionY  float64    `json:"position_y"`
	PriceCents uint32     `json:"price_cents"`
	Status     SeatStatus `json:"status"`
	HeldBy     *uint64    `json:"held_by,omitempty"`
	HeldAt     *time.Time `json:"held_at,omitempty"`
}

// Label returns the human-readable seat designation used in error
// messages and audit events, e.g. "A-12".
func (s Seat) Label() string {
	return fmt.Sprintf("%s-%d", s.RowLabel, s.SeatNumber)
}
