package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trappazoid/booking-backend/internal/model"
	"github.com/trappazoid/booking-backend/internal/repository"
)

// EventHandler serves the public event catalog and the admin-only
// create/delete operations.
type EventHandler struct {
	Events *repository.EventRepo
}

func NewEventHandler(events *repository.EventRepo) *EventHandler {
	return &EventHandler{Events: events}
}

type createEventReq struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	PosterURL   string            `json:"poster_url"`
	VenueName   string            `json:"venue_name"`
	Schema      model.VenueSchema `json:"schema"`
}

// List handles GET /v1/events with page/per_page pagination.
func (h *EventHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	events, total, err := h.Events.List(c.Request().Context(), page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load events"})
	}
	if events == nil {
		events = []model.Event{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"events":   events,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetByID handles GET /v1/events/:id and includes the venue so clients
// can render the floor plan alongside the seat map.
func (h *EventHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event"})
	}
	venue, err := h.Events.GetVenue(c.Request().Context(), ev.VenueID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load venue"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event": ev, "venue": venue})
}

// Search handles GET /v1/events/search?q=... against titles and descriptions.
func (h *EventHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	events, err := h.Events.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	if events == nil {
		events = []model.Event{}
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Create handles POST /v1/admin/events. The submitted zone schema is
// expanded into the full seat grid and everything is written in one
// transaction, so a half-created event never exists.
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.VenueName = strings.TrimSpace(req.VenueName)
	if req.Title == "" || req.VenueName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and venue_name are required"})
	}
	if req.Date.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	seats := model.SeatsFromSchema(0, req.Schema) // event id is filled in on insert
	if len(seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "schema must define at least one seat"})
	}

	rawSchema, err := json.Marshal(req.Schema)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schema"})
	}
	ev := model.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date.UTC(),
		PosterURL:   req.PosterURL,
	}
	venue := model.Venue{
		Name:       req.VenueName,
		SchemaJSON: string(rawSchema),
	}
	if err := h.Events.CreateWithSeats(c.Request().Context(), &ev, &venue, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create event"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"event":      ev,
		"venue_id":   venue.ID,
		"seat_count": len(seats),
	})
}

// Delete handles DELETE /v1/admin/events/:id, removing the event, its
// seats, their bookings and the venue.
func (h *EventHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Events.DeleteCascade(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete event"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted"})
}
