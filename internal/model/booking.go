package model

import "time"

// Booking is the permanent record created when a held seat is paid for.
// One row references exactly one user and one seat; a seat is booked at
// most once in its lifetime. Rows are immutable after creation.
//
// Fields:
//  ID             – primary key identifier.
//  Reference      – external booking reference (UUID) returned to the client.
//  UserID         – user who booked the seat.
//  SeatID         – seat that was booked.
//  BookedAt       – UTC timestamp of the successful commit.
//  SettlementCode – the settlement code that passed validation.
type Booking struct {
	ID             uint64    `json:"id"`
	Reference      string    `json:"reference"`
	UserID         uint64    `json:"user_id"`
	SeatID         uint64    `json:"seat_id"`
	BookedAt       time.Time `json:"booked_at"`
	SettlementCode string    `json:"settlement_code"`
}
