package model

import (
	"strconv"
	"time"
)

// Event is a bookable happening at a venue. Seats are generated from the
// venue schema when the event is created and removed only when the event
// itself is deleted.
type Event struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	PosterURL   string    `json:"poster_url,omitempty"`
	VenueID     uint64    `json:"venue_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Venue holds the seating layout an event was created from. SchemaJSON
// keeps the raw zone configuration so clients can re-render the floor plan.
type Venue struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	SchematicURL string    `json:"schematic_url,omitempty"`
	SchemaJSON   string    `json:"schema_json,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// VenueSchema is the seat-zone configuration submitted at event creation.
type VenueSchema struct {
	Zones []SeatZone `json:"zones"`
}

// SeatZone describes one rectangular block of seats sharing a type and
// price. Row labels are built from RowLabel plus the running row index,
// seat numbers from StartSeatIndex per column. Positions, when given,
// map grid cells to canvas coordinates in row-major order.
type SeatZone struct {
	Name           string     `json:"name"`
	Type           SeatType   `json:"type"`
	Rows           int        `json:"rows"`
	Cols           int        `json:"cols"`
	RowLabel       string     `json:"rowLabel"`
	StartRowIndex  int        `json:"startRowIndex"`
	StartSeatIndex int        `json:"startSeatIndex"`
	PriceCents     uint32     `json:"price"`
	Positions      []Position `json:"positions,omitempty"`
}

// Position is a 2D display coordinate on the venue canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

const defaultZonePriceCents = 1000

// SeatsFromSchema expands a venue schema into the concrete seat set for an
// event. Every seat starts available with no holder. Zones with unknown
// types fall back to sitting, zones without a price to the default, and
// missing positions to the origin, so a sparse schema still yields a
// complete grid.
func SeatsFromSchema(eventID uint64, schema VenueSchema) []Seat {
	var seats []Seat
	for _, z := range schema.Zones {
		seatType := z.Type
		if !seatType.Valid() {
			seatType = SeatSitting
		}
		price := z.PriceCents
		if price == 0 {
			price = defaultZonePriceCents
		}
		startRow := z.StartRowIndex
		if startRow == 0 {
			startRow = 1
		}
		startSeat := z.StartSeatIndex
		if startSeat == 0 {
			startSeat = 1
		}
		idx := 0
		for r := 0; r < z.Rows; r++ {
			for c := 0; c < z.Cols; c++ {
				var pos Position
				if idx < len(z.Positions) {
					pos = z.Positions[idx]
				}
				seats = append(seats, Seat{
					EventID:    eventID,
					ZoneName:   z.Name,
					SeatType:   seatType,
					RowLabel:   z.RowLabel + strconv.Itoa(startRow+r),
					SeatNumber: uint32(startSeat + c),
					PositionX:  pos.X,
					PositionY:  pos.Y,
					PriceCents: price,
					Status:     SeatAvailable,
				})
				idx++
			}
		}
	}
	return seats
}
