package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBookingLine(t *testing.T) {
	line := formatBookingLine(BookingCreatedEvent{
		BookingID:  5,
		UserID:     42,
		EventID:    7,
		EventTitle: "Kathmandu Jazz Night",
		Quantity:   2,
		SeatLabels: []string{"A1", "A2"},
		CreatedAt:  "2026-08-28T10:00:00Z",
	})
	assert.Equal(t,
		"[2026-08-28T10:00:00Z] Booking created | booking_id=5 | user_id=42 | event_id=7 | event=\"Kathmandu Jazz Night\" | quantity=2 | seats=[A1,A2]\n",
		line)
}

func TestFormatBookingLineNoSeats(t *testing.T) {
	line := formatBookingLine(BookingCreatedEvent{BookingID: 1})
	assert.Contains(t, line, "seats=[]")
}
