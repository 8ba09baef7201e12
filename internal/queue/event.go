// Package queue defines message payloads exchanged over the message broker
// and the consumer that drains them.
package queue

// BookingCreatedEvent is published after a reservation transaction
// commits.  It carries enough for downstream consumers to log, notify
// or feed analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID  uint64   `json:"booking_id"`
	UserID     uint64   `json:"user_id"`
	EventID    uint64   `json:"event_id"`
	EventTitle string   `json:"event_title"`
	Quantity   uint32   `json:"quantity"`
	SeatLabels []string `json:"seats"`
	CreatedAt  string   `json:"created_at"`
}
