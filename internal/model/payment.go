package model

import "time"

// Payment statuses accepted by the tracker.  "initiated" is set on
// creation; everything else arrives through gateway callbacks.
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCanceled  = "canceled"
	PaymentStatusRefunded  = "refunded"
)

// Payment is the financial-settlement record tied one-to-one to a
// booking (bookings.id carries a unique key here).  After creation
// only Status and UpdatedAt may change.
//
// Fields:
//  ID            – primary key identifier.
//  BookingID     – booking being paid for.
//  Provider      – gateway name, e.g. "khalti".
//  AmountCents   – amount in the smallest currency subunit.
//  Status        – one of the PaymentStatus* constants.
//  TransactionID – reference issued by the gateway.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last status change.
type Payment struct {
	ID            uint64    // payments.id
	BookingID     uint64    // payments.booking_id
	Provider      string    // payments.provider
	AmountCents   uint32    // payments.amount_cents
	Status        string    // payments.status
	TransactionID string    // payments.transaction_id
	CreatedAt     time.Time // payments.created_at
	UpdatedAt     time.Time // payments.updated_at
}

// ValidPaymentStatus reports whether s is a status the tracker will
// accept from a gateway callback.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusInitiated, PaymentStatusPending, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusCanceled, PaymentStatusRefunded:
		return true
	}
	return false
}
