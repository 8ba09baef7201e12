// Package service implements the booking core: the reservation engine,
// the booking ledger reads and the payment tracker.  All business
// failures are reported as the sentinel errors below so the transport
// layer can map each kind to a distinct status code.
package service

import "errors"

// ErrInvalidRequest means the input itself is malformed (empty or
// duplicated seat ids, unknown payment status).  Retrying without
// changing the input cannot succeed.
var ErrInvalidRequest = errors.New("invalid request")

// ErrEventNotFound means the referenced event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrBookingNotFound means the referenced booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrPaymentNotFound means no payment matches the given reference.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrForbidden means the resource exists but belongs to another user.
var ErrForbidden = errors.New("forbidden")

// ErrSeatsUnavailable means at least one requested seat does not
// exist, belongs to a different event or is already booked.  The
// whole request was rejected; no seat was booked.  Retrying with a
// different seat selection may succeed.
var ErrSeatsUnavailable = errors.New("seats unavailable")

// ErrConflict means the operation is not allowed in the current state,
// e.g. cancelling a booking after the event started or after its
// payment completed.
var ErrConflict = errors.New("conflict")

// ErrGatewayUnavailable means the external payment provider failed;
// the booking is untouched and no payment row was written.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ErrBusy means a lock wait timed out under contention.  The request
// can be retried unchanged.
var ErrBusy = errors.New("busy, try again")
