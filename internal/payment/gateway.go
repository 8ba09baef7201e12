// Package payment holds the client side of the external payment
// gateway.  The booking core only ever sees the Gateway interface: it
// hands over an amount and order metadata and records whatever
// reference comes back.
package payment

import "context"

// InitiateRequest describes one checkout to start at the gateway.
// AmountCents is in the smallest currency subunit (paisa for Khalti).
type InitiateRequest struct {
	AmountCents uint32
	OrderID     string
	OrderName   string
}

// InitiateResponse is what the gateway returns for a started checkout:
// the reference to track it by and the URL to send the customer to.
type InitiateResponse struct {
	TransactionID string
	PaymentURL    string
}

// Gateway starts payment transactions with an external provider.
// Implementations must not retry internally; the tracker treats any
// error as "no transaction started".
type Gateway interface {
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error)
}
