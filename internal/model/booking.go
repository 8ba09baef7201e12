package model

import "time"

// Booking records a user's claim on one or more seats for a single
// event.  Quantity always equals the number of booking_seats rows
// created with it; both are written in the same transaction that
// flips the seats to unavailable.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who made the booking.
//  EventID   – event being booked.
//  Quantity  – number of seats in the booking.
//  CreatedAt – creation timestamp.
type Booking struct {
	ID        uint64    // bookings.id
	UserID    uint64    // bookings.user_id
	EventID   uint64    // bookings.event_id
	Quantity  uint32    // bookings.quantity
	CreatedAt time.Time // bookings.created_at
}
