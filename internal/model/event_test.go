package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatsFromSchemaExpandsZones(t *testing.T) {
	schema := VenueSchema{Zones: []SeatZone{
		{
			Name:           "VIP Center",
			Type:           SeatVIP,
			Rows:           2,
			Cols:           3,
			RowLabel:       "V",
			StartRowIndex:  1,
			StartSeatIndex: 1,
			PriceCents:     5000,
			Positions:      []Position{{X: 10, Y: 20}},
		},
		{
			Name:     "Standing",
			Type:     SeatStanding,
			Rows:     1,
			Cols:     4,
			RowLabel: "S",
		},
	}}

	seats := SeatsFromSchema(9, schema)
	require.Len(t, seats, 10)

	first := seats[0]
	assert.Equal(t, uint64(9), first.EventID)
	assert.Equal(t, "VIP Center", first.ZoneName)
	assert.Equal(t, SeatVIP, first.SeatType)
	assert.Equal(t, "V1", first.RowLabel)
	assert.Equal(t, uint32(1), first.SeatNumber)
	assert.Equal(t, uint32(5000), first.PriceCents)
	assert.Equal(t, 10.0, first.PositionX)
	assert.Equal(t, 20.0, first.PositionY)
	assert.Equal(t, SeatAvailable, first.Status)
	assert.Nil(t, first.HeldBy)

	// Second row of the VIP zone continues the row index.
	assert.Equal(t, "V2", seats[3].RowLabel)
	assert.Equal(t, uint32(1), seats[3].SeatNumber)
	// Only one position was given; the rest default to the origin.
	assert.Zero(t, seats[1].PositionX)

	// Sparse zone: price and indices fall back to defaults.
	standing := seats[6]
	assert.Equal(t, "S1", standing.RowLabel)
	assert.Equal(t, uint32(1000), standing.PriceCents)
}

func TestSeatsFromSchemaUnknownTypeFallsBack(t *testing.T) {
	seats := SeatsFromSchema(1, VenueSchema{Zones: []SeatZone{
		{Name: "odd", Type: "balcony", Rows: 1, Cols: 1, RowLabel: "B"},
	}})
	require.Len(t, seats, 1)
	assert.Equal(t, SeatSitting, seats[0].SeatType)
}

func TestSeatsFromSchemaEmpty(t *testing.T) {
	assert.Empty(t, SeatsFromSchema(1, VenueSchema{}))
	assert.Empty(t, SeatsFromSchema(1, VenueSchema{Zones: []SeatZone{{Name: "zero", Rows: 0, Cols: 5}}}))
}
