package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trappazoid/booking-backend/internal/model"
	"github.com/trappazoid/booking-backend/internal/reservation"
)

// stubEngine scripts the coordinator's responses and records calls.
type stubEngine struct {
	seats     []model.Seat
	queryErr  error
	holdErr   error
	released  int
	relErr    error
	commitRes *reservation.CommitResult
	commitErr error

	gotUser uint64
	gotIDs  []uint64
	gotCode string
}

func (s *stubEngine) Query(_ context.Context, _ uint64) ([]model.Seat, error) {
	return s.seats, s.queryErr
}

func (s *stubEngine) Hold(_ context.Context, userID uint64, ids []uint64) error {
	s.gotUser, s.gotIDs = userID, ids
	return s.holdErr
}

func (s *stubEngine) Release(_ context.Context, userID uint64, ids []uint64) (int, error) {
	s.gotUser, s.gotIDs = userID, ids
	return s.released, s.relErr
}

func (s *stubEngine) Commit(_ context.Context, userID uint64, ids []uint64, code string) (*reservation.CommitResult, error) {
	s.gotUser, s.gotIDs, s.gotCode = userID, ids, code
	return s.commitRes, s.commitErr
}

func newSeatRequest(t *testing.T, method, path, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestQuerySeats(t *testing.T) {
	held := uint64(7)
	eng := &stubEngine{seats: []model.Seat{
		{ID: 1, Status: model.SeatAvailable},
		{ID: 2, Status: model.SeatHeld, HeldBy: &held},
	}}
	h := NewSeatHandler(eng, nil, nil, nil)

	c, rec := newSeatRequest(t, http.MethodGet, "/v1/events/5/seats", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.QuerySeats(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["seats"], 2)
}

func TestQuerySeatsBadID(t *testing.T) {
	h := NewSeatHandler(&stubEngine{}, nil, nil, nil)
	c, rec := newSeatRequest(t, http.MethodGet, "/v1/events/x/seats", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("x")

	require.NoError(t, h.QuerySeats(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHoldSeats(t *testing.T) {
	eng := &stubEngine{}
	h := NewSeatHandler(eng, nil, nil, nil)

	c, rec := newSeatRequest(t, http.MethodPost, "/v1/seats/hold", `{"seat_ids":[1,2]}`, 42)
	require.NoError(t, h.HoldSeats(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), eng.gotUser)
	assert.Equal(t, []uint64{1, 2}, eng.gotIDs)
}

func TestHoldSeatsRequiresAuth(t *testing.T) {
	h := NewSeatHandler(&stubEngine{}, nil, nil, nil)
	c, rec := newSeatRequest(t, http.MethodPost, "/v1/seats/hold", `{"seat_ids":[1]}`, 0)

	require.NoError(t, h.HoldSeats(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHoldSeatsEmptyBatch(t *testing.T) {
	h := NewSeatHandler(&stubEngine{}, nil, nil, nil)
	c, rec := newSeatRequest(t, http.MethodPost, "/v1/seats/hold", `{"seat_ids":[]}`, 42)

	require.NoError(t, h.HoldSeats(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHoldSeatsErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"missing seat", &reservation.SeatNotFoundError{SeatID: 9}, http.StatusNotFound},
		{"conflict", &reservation.SeatConflictError{SeatID: 3, Label: "A-3", Status: model.SeatHeld}, http.StatusConflict},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewSeatHandler(&stubEngine{holdErr: tc.err}, nil, nil, nil)
			c, rec := newSeatRequest(t, http.MethodPost, "/v1/seats/hold", `{"seat_ids":[3,9]}`, 42)

			require.NoError(t, h.HoldSeats(c))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestHoldSeatsConflictNamesSeat(t *testing.T) {
	err := &reservation.SeatConflictError{SeatID: 3, Label: "A-3", Status: model.SeatHeld}
	h := NewSeatHandler(&stubEngine{holdErr: err}, nil, nil, nil)
	c, rec := newSeatRequest(t, http.MethodPost, "/v1/seats/hold", `{"seat_ids":[3]}`, 42)

	require.NoError(t, h.HoldSeats(c))
	body := decodeBody(t, rec)
	assert.EqualValues(t, 3, body["seat_id"])
	assert.Contains(t, body["error"], "A-3")
}

func TestReleaseSeatsReportsCount(t *testing.T) {
	eng := &stubEngine{released: 2}
	h := NewSeatHandler(eng, nil, nil, nil)
	c, rec := newSeatRequest(t, http.MethodPost, "/v1/seats/release", `{"seat_ids":[1,2,3]}`, 42)

	require.NoError(t, h.ReleaseSeats(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decodeBody(t, rec)["released"])
}

func TestCommitSeats(t *testing.T) {
	eng := &stubEngine{commitRes: &reservation.CommitResult{
		Bookings: []model.Booking{
			{Reference: "ref-1", SeatID: 1},
			{Reference: "ref-2", SeatID: 2},
		},
		Seats: []model.Seat{
			{ID: 1, EventID: 5, RowLabel: "A", SeatNumber: 1},
			{ID: 2, EventID: 5, RowLabel: "A", SeatNumber: 2},
		},
		TotalCents: 3000,
	}}
	h := NewSeatHandler(eng, nil, nil, nil)

	c, rec := newSeatRequest(t, http.MethodPost, "/v1/seats/commit",
		`{"seat_ids":[1,2],"settlement_code":"1212"}`, 42)
	require.NoError(t, h.CommitSeats(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1212", eng.gotCode)
	body := decodeBody(t, rec)
	assert.Len(t, body["references"], 2)
	assert.EqualValues(t, 3000, body["total_cents"])
}

func TestCommitSeatsBadCode(t *testing.T) {
	h := NewSeatHandler(&stubEngine{commitErr: reservation.ErrInvalidSettlementCode}, nil, nil, nil)
	c, rec := newSeatRequest(t, http.MethodPost, "/v1/seats/commit",
		`{"seat_ids":[1],"settlement_code":"0000"}`, 42)

	require.NoError(t, h.CommitSeats(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
