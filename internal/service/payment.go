package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// PaymentStore persists payment attempts and status transitions.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByBookingID(ctx context.Context, bookingID uint64) (*model.Payment, error)
	UpdateStatusByTransactionID(ctx context.Context, transactionID, status string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Payment, error)
}

// BookingReader is the slice of the booking store the payment tracker
// needs: loading a booking to price it and check ownership.
type BookingReader interface {
	GetByID(ctx context.Context, bookingID uint64) (*repository.BookingDetail, error)
}

// PaymentIntent is the result of initiating a payment: the tracked
// payment row plus, for fresh initiations, the checkout URL to redirect
// the customer to.
type PaymentIntent struct {
	Payment    model.Payment
	PaymentURL string
}

// PaymentService tracks payments for bookings.  At most one payment
// exists per booking; the unique key on payments.booking_id enforces
// that against races, and Initiate turns a lost race into a re-read of
// the surviving row.
type PaymentService struct {
	bookings BookingReader
	events   EventStore
	payments PaymentStore
	gateway  payment.Gateway
	provider string
}

// NewPaymentService wires the payment tracker.  provider names the
// gateway rows are attributed to, e.g. "khalti".
func NewPaymentService(bookings BookingReader, events EventStore, payments PaymentStore, gateway payment.Gateway, provider string) *PaymentService {
	return &PaymentService{
		bookings: bookings,
		events:   events,
		payments: payments,
		gateway:  gateway,
		provider: provider,
	}
}

// Initiate starts (or returns the already started) payment for a
// booking.  The amount is the event's base price times the booking
// quantity.  The gateway is contacted before anything is written, so a
// gateway failure leaves no payment row behind; the resulting error
// wraps ErrGatewayUnavailable.
func (s *PaymentService) Initiate(ctx context.Context, bookingID, userID uint64) (*PaymentIntent, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}

	if existing, err := s.payments.GetByBookingID(ctx, bookingID); err == nil {
		return &PaymentIntent{Payment: *existing}, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load payment: %w", err)
	}

	event, err := s.events.GetInfo(ctx, booking.EventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	amount := booking.Quantity * event.PriceCents

	res, err := s.gateway.Initiate(ctx, &payment.InitiateRequest{
		AmountCents: amount,
		OrderID:     fmt.Sprintf("booking-%d", booking.ID),
		OrderName:   event.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	p := model.Payment{
		BookingID:     bookingID,
		Provider:      s.provider,
		AmountCents:   amount,
		Status:        model.PaymentStatusInitiated,
		TransactionID: res.TransactionID,
	}
	if err := s.payments.Create(ctx, &p); err != nil {
		if repository.IsDuplicateEntry(err) {
			// A concurrent initiation won; hand back its row.
			existing, rerr := s.payments.GetByBookingID(ctx, bookingID)
			if rerr != nil {
				return nil, fmt.Errorf("load winning payment: %w", rerr)
			}
			return &PaymentIntent{Payment: *existing}, nil
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return &PaymentIntent{Payment: p, PaymentURL: res.PaymentURL}, nil
}

// UpdateStatus applies a gateway callback: the payment carrying the
// transaction reference moves to the reported status.  Unknown statuses
// are rejected with ErrInvalidRequest, unknown references with
// ErrPaymentNotFound.  Repeating a callback is harmless.
func (s *PaymentService) UpdateStatus(ctx context.Context, transactionID, status string) (*model.Payment, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("%w: missing transaction id", ErrInvalidRequest)
	}
	if !model.ValidPaymentStatus(status) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidRequest, status)
	}
	p, err := s.payments.UpdateStatusByTransactionID(ctx, transactionID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	return p, nil
}

// ListForUser returns every payment on the caller's bookings, newest
// first.
func (s *PaymentService) ListForUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}
