package model

import "time"

// Seat types as stored in seats.seat_type.
const (
	SeatTypeVIP      = "VIP"
	SeatTypePremium  = "Premium"
	SeatTypeStandard = "Standard"
)

// Seat is one bookable unit of inventory for a single event.  Seats
// are uniquely identified by their event, row label and seat number.
// IsAvailable flips to false exactly once when the seat is committed
// into a booking, and back to true only when that booking is
// cancelled.  The flag must never be mutated outside a transaction.
//
// Fields:
//  ID          – primary key identifier.
//  EventID     – event this seat belongs to.
//  RowLabel    – letter or string designating the row.
//  SeatNumber  – number of the seat within the row.
//  SeatType    – VIP, Premium or Standard.
//  PriceCents  – price for this particular seat in cents.
//  IsAvailable – whether the seat can still be booked.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Seat struct {
	ID          uint64    // seats.id
	EventID     uint64    // seats.event_id
	RowLabel    string    // seats.row_label
	SeatNumber  uint32    // seats.seat_number
	SeatType    string    // seats.seat_type
	PriceCents  uint32    // seats.price_cents
	IsAvailable bool      // seats.is_available
	CreatedAt   time.Time // seats.created_at
	UpdatedAt   time.Time // seats.updated_at
}
