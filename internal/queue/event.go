// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a seat batch is successfully
// committed. It carries enough for downstream consumers to audit-log or
// run analytics without querying the primary database.
type BookingConfirmedEvent struct {
	References []string `json:"references"`
	UserID     uint64   `json:"user_id"`
	EventID    uint64   `json:"event_id"`
	EventTitle string   `json:"event_title"`
	SeatLabels []string `json:"seats"`
	TotalCents uint64   `json:"total_cents"`
	BookedAt   string   `json:"booked_at"`
}
