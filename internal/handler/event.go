package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// EventCatalog is the read surface the public endpoints need.
type EventCatalog interface {
	GetByID(ctx context.Context, eventID uint64) (*repository.EventDetail, error)
}

// SeatLister lists the seat map of an event.
type SeatLister interface {
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error)
}

// EventHandler serves the public event browse endpoints.
type EventHandler struct {
	events EventCatalog
	seats  SeatLister
}

// NewEventHandler returns an EventHandler over the given stores.
func NewEventHandler(events EventCatalog, seats SeatLister) *EventHandler {
	return &EventHandler{events: events, seats: seats}
}

// GetEvent handles GET /v1/events/:id.
func (h *EventHandler) GetEvent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	det, err := h.events.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		c.Logger().Errorf("load event %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": det})
}

// seatView is the public projection of one seat in the seat map.
type seatView struct {
	ID          uint64 `json:"id"`
	RowLabel    string `json:"row_label"`
	SeatNumber  uint32 `json:"seat_number"`
	SeatType    string `json:"seat_type"`
	PriceCents  uint32 `json:"price_cents"`
	IsAvailable bool   `json:"is_available"`
}

// ListEventSeats handles GET /v1/events/:id/seats.  The seat map shows
// availability so clients can render a picker; the event is looked up
// first so an unknown id is a 404, not an empty list.
func (h *EventHandler) ListEventSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	if _, err := h.events.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		c.Logger().Errorf("load event %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	seats, err := h.seats.ListByEvent(ctx, id)
	if err != nil {
		c.Logger().Errorf("list seats for event %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	items := make([]seatView, 0, len(seats))
	for _, s := range seats {
		items = append(items, seatView{
			ID:          s.ID,
			RowLabel:    s.RowLabel,
			SeatNumber:  s.SeatNumber,
			SeatType:    s.SeatType,
			PriceCents:  s.PriceCents,
			IsAvailable: s.IsAvailable,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
