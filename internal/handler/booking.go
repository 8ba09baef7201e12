package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/repository"
)

// BookingService is the slice of the booking core the HTTP layer calls.
type BookingService interface {
	Reserve(ctx context.Context, userID, eventID uint64, seatIDs []uint64) (*repository.BookingDetail, error)
	ListForUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error)
	Get(ctx context.Context, bookingID, userID uint64) (*repository.BookingDetail, error)
	Cancel(ctx context.Context, bookingID, userID uint64) error
}

// BookingHandler serves the authenticated booking endpoints.
type BookingHandler struct {
	bookings BookingService
}

// NewBookingHandler returns a BookingHandler over the given service.
func NewBookingHandler(bookings BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	EventID uint64   `json:"event_id"`
	SeatIDs []uint64 `json:"seat_ids"`
}

// CreateBooking handles POST /v1/bookings.  The request books every
// listed seat or none: partial success does not exist, and a seat
// already taken turns the whole request into a 409.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id is required"})
	}
	if len(body.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}
	det, err := h.bookings.Reserve(c.Request().Context(), userID, body.EventID, body.SeatIDs)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": det})
}

// ListBookings handles GET /v1/bookings.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.bookings.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	det, err := h.bookings.Get(c.Request().Context(), id, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": det})
}

// CancelBooking handles DELETE /v1/bookings/:id.  Succeeds with 204;
// a started event or a completed payment makes it a 409.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.bookings.Cancel(c.Request().Context(), id, userID); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
