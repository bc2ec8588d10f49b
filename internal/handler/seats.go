package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trappazoid/booking-backend/internal/model"
	"github.com/trappazoid/booking-backend/internal/queue"
	"github.com/trappazoid/booking-backend/internal/repository"
	"github.com/trappazoid/booking-backend/internal/reservation"
)

// ReservationEngine is the surface of the reservation coordinator the
// HTTP layer uses. *reservation.Coordinator implements it; tests plug in
// a stub.
type ReservationEngine interface {
	Query(ctx context.Context, eventID uint64) ([]model.Seat, error)
	Hold(ctx context.Context, userID uint64, seatIDs []uint64) error
	Release(ctx context.Context, userID uint64, seatIDs []uint64) (int, error)
	Commit(ctx context.Context, userID uint64, seatIDs []uint64, code string) (*reservation.CommitResult, error)
}

// BookingLister lists a user's booking history.
type BookingLister interface {
	ListByUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error)
}

// SeatHandler serves the seat map and the hold/release/commit operations.
// Events and Publish are optional: without them commits still succeed,
// they just skip the audit event.
type SeatHandler struct {
	Engine   ReservationEngine
	Bookings BookingLister
	Events   *repository.EventRepo
	Publish  func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// NewSeatHandler constructs a SeatHandler. Engine must be non-nil.
func NewSeatHandler(engine ReservationEngine, bookings BookingLister, events *repository.EventRepo,
	publish func(ctx context.Context, ev queue.BookingConfirmedEvent) error) *SeatHandler {
	if engine == nil {
		panic("nil engine passed to NewSeatHandler")
	}
	return &SeatHandler{Engine: engine, Bookings: bookings, Events: events, Publish: publish}
}

type seatBatchReq struct {
	SeatIDs []uint64 `json:"seat_ids"`
}

type commitReq struct {
	SeatIDs        []uint64 `json:"seat_ids"`
	SettlementCode string   `json:"settlement_code"`
}

// QuerySeats handles GET /v1/events/:id/seats. Expired holds are
// reclaimed before the snapshot is taken, so clients always see holds no
// older than the hold window. No authentication required.
func (h *SeatHandler) QuerySeats(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	seats, err := h.Engine.Query(c.Request().Context(), eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
	}
	if seats == nil {
		seats = []model.Seat{}
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}

// HoldSeats handles POST /v1/seats/hold. The whole batch is claimed for
// the caller or nothing is: one missing seat yields 404, one unavailable
// seat 409, and in both cases no state changes.
func (h *SeatHandler) HoldSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req seatBatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(req.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}
	if err := h.Engine.Hold(c.Request().Context(), userID, req.SeatIDs); err != nil {
		return h.reservationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "seats held",
		"seat_ids": req.SeatIDs,
	})
}

// ReleaseSeats handles POST /v1/seats/release. Seats the caller does not
// hold are skipped silently; the response reports how many were actually
// released.
func (h *SeatHandler) ReleaseSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req seatBatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(req.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}
	released, err := h.Engine.Release(c.Request().Context(), userID, req.SeatIDs)
	if err != nil {
		return h.reservationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": released})
}

// CommitSeats handles POST /v1/seats/commit. The settlement code is
// validated before any seat state is read; on success every seat in the
// batch is booked and one booking row per seat exists.
func (h *SeatHandler) CommitSeats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req commitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(req.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}
	res, err := h.Engine.Commit(c.Request().Context(), userID, req.SeatIDs, req.SettlementCode)
	if err != nil {
		return h.reservationError(c, err)
	}

	h.publishConfirmed(userID, res)

	refs := make([]string, 0, len(res.Bookings))
	for _, b := range res.Bookings {
		refs = append(refs, b.Reference)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "booking confirmed",
		"references":  refs,
		"total_cents": res.TotalCents,
	})
}

// MyBookings handles GET /v1/my-bookings for the authenticated user.
func (h *SeatHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	if items == nil {
		items = []repository.BookingDetail{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// publishConfirmed emits the booking.confirmed audit event in the
// background. Publish failures never affect the client response.
func (h *SeatHandler) publishConfirmed(userID uint64, res *reservation.CommitResult) {
	if h.Publish == nil || len(res.Seats) == 0 {
		return
	}
	ev := queue.BookingConfirmedEvent{
		UserID:     userID,
		EventID:    res.Seats[0].EventID,
		TotalCents: res.TotalCents,
		BookedAt:   res.Bookings[0].BookedAt.Format(time.RFC3339),
	}
	for _, b := range res.Bookings {
		ev.References = append(ev.References, b.Reference)
	}
	for _, s := range res.Seats {
		ev.SeatLabels = append(ev.SeatLabels, s.Label())
	}
	if h.Events != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if e, err := h.Events.GetByID(ctx, ev.EventID); err == nil {
			ev.EventTitle = e.Title
		}
		cancel()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Publish(ctx, ev)
	}()
}

// reservationError maps the engine's failure taxonomy onto HTTP.
func (h *SeatHandler) reservationError(c echo.Context, err error) error {
	var nf *reservation.SeatNotFoundError
	if errors.As(err, &nf) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found", "seat_id": nf.SeatID})
	}
	var cf *reservation.SeatConflictError
	if errors.As(err, &cf) {
		return c.JSON(http.StatusConflict, echo.Map{"error": cf.Error(), "seat_id": cf.SeatID})
	}
	if errors.Is(err, reservation.ErrInvalidSettlementCode) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid settlement code"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation operation failed"})
}
