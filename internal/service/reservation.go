package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// EventStore is the slice of the event repository the booking core
// depends on.
type EventStore interface {
	GetInfo(ctx context.Context, eventID uint64) (*repository.EventInfo, error)
}

// SeatStore covers seat availability: the locked read plus the two
// transactional flips.
type SeatStore interface {
	LockAvailableTx(ctx context.Context, tx *sql.Tx, eventID uint64, seatIDs []uint64) ([]model.Seat, error)
	MarkUnavailableTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) error
	MarkAvailableTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) error
}

// BookingStore persists bookings and serves the ledger reads.
type BookingStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	AddSeatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, seatIDs []uint64) error
	GetByID(ctx context.Context, bookingID uint64) (*repository.BookingDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error)
	GetForCancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (userID uint64, startsAt time.Time, seatIDs []uint64, err error)
	DeleteTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error
}

// PaymentStatusReader is the one payment question the cancellation path
// asks: what state is this booking's payment in, if any.
type PaymentStatusReader interface {
	StatusByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (string, error)
}

// EventPublisher announces committed bookings to the message broker.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
}

// BookingService is the reservation engine and booking ledger.  All
// seat state changes run inside a single database transaction obtained
// from atomic, so a reservation either books every requested seat or
// none of them.
type BookingService struct {
	events    EventStore
	seats     SeatStore
	bookings  BookingStore
	payments  PaymentStatusReader
	atomic    database.Atomic
	publisher EventPublisher // nil disables broker notifications
}

// NewBookingService wires the reservation engine.  publisher may be nil.
func NewBookingService(events EventStore, seats SeatStore, bookings BookingStore, payments PaymentStatusReader, atomic database.Atomic, publisher EventPublisher) *BookingService {
	return &BookingService{
		events:    events,
		seats:     seats,
		bookings:  bookings,
		payments:  payments,
		atomic:    atomic,
		publisher: publisher,
	}
}

// Reserve books the given seats for the user, all of them or none.
//
// Inside one transaction the requested seats are locked FOR UPDATE,
// filtered to the ones that belong to the event and are still
// available, and the counts compared: any shortfall rejects the whole
// request with ErrSeatsUnavailable and rolls everything back.
// Otherwise the booking and its seat rows are inserted and the seats
// flipped to unavailable before the commit releases the locks.
//
// A lock wait timeout under contention maps to ErrBusy; a duplicate
// seat binding slipping past the lock check maps to ErrSeatsUnavailable.
// After commit a booking.created event is published best effort.
func (s *BookingService) Reserve(ctx context.Context, userID, eventID uint64, seatIDs []uint64) (*repository.BookingDetail, error) {
	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("%w: no seats requested", ErrInvalidRequest)
	}
	seen := make(map[uint64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if id == 0 {
			return nil, fmt.Errorf("%w: invalid seat id", ErrInvalidRequest)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate seat id %d", ErrInvalidRequest, id)
		}
		seen[id] = struct{}{}
	}

	event, err := s.events.GetInfo(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}

	var (
		rec    model.Booking
		locked []model.Seat
	)
	err = s.atomic.InTx(ctx, func(tx *sql.Tx) error {
		seats, err := s.seats.LockAvailableTx(ctx, tx, eventID, seatIDs)
		if err != nil {
			return err
		}
		if len(seats) != len(seatIDs) {
			return ErrSeatsUnavailable
		}
		rec = model.Booking{
			UserID:   userID,
			EventID:  eventID,
			Quantity: uint32(len(seats)),
		}
		if err := s.bookings.CreateTx(ctx, tx, &rec); err != nil {
			return err
		}
		if err := s.bookings.AddSeatsTx(ctx, tx, rec.ID, seatIDs); err != nil {
			return err
		}
		if err := s.seats.MarkUnavailableTx(ctx, tx, seatIDs); err != nil {
			return err
		}
		locked = seats
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSeatsUnavailable):
			return nil, ErrSeatsUnavailable
		case repository.IsLockWaitTimeout(err):
			return nil, ErrBusy
		case repository.IsDuplicateEntry(err):
			// Lost a race on the booking_seats seat_id key.
			return nil, ErrSeatsUnavailable
		default:
			return nil, fmt.Errorf("reserve seats: %w", err)
		}
	}

	detail := buildBookingDetail(&rec, event, locked)
	s.announceBooking(ctx, detail)
	return detail, nil
}

// ListForUser returns the caller's bookings, newest first.
func (s *BookingService) ListForUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// Get returns one booking.  Only the owner may read it.
func (s *BookingService) Get(ctx context.Context, bookingID, userID uint64) (*repository.BookingDetail, error) {
	det, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if det.UserID != userID {
		return nil, ErrForbidden
	}
	return det, nil
}

// Cancel deletes a booking and returns its seats to the pool.  It is
// refused once the event has started or once the booking's payment is
// completed.  Everything runs in one transaction so a crash can never
// leave seats unbound yet unavailable.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID uint64) error {
	err := s.atomic.InTx(ctx, func(tx *sql.Tx) error {
		owner, startsAt, seatIDs, err := s.bookings.GetForCancelTx(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBookingNotFound
			}
			return err
		}
		if owner != userID {
			return ErrForbidden
		}
		if !time.Now().UTC().Before(startsAt) {
			return fmt.Errorf("%w: event already started", ErrConflict)
		}
		status, err := s.payments.StatusByBookingTx(ctx, tx, bookingID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err == nil && status == model.PaymentStatusCompleted {
			return fmt.Errorf("%w: payment already completed", ErrConflict)
		}
		if err := s.bookings.DeleteTx(ctx, tx, bookingID); err != nil {
			return err
		}
		return s.seats.MarkAvailableTx(ctx, tx, seatIDs)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrForbidden), errors.Is(err, ErrConflict):
		return err
	case repository.IsLockWaitTimeout(err):
		return ErrBusy
	default:
		return fmt.Errorf("cancel booking: %w", err)
	}
}

// buildBookingDetail assembles the response projection from data already
// in hand, sparing a read-back query right after the commit.
func buildBookingDetail(rec *model.Booking, event *repository.EventInfo, seats []model.Seat) *repository.BookingDetail {
	det := &repository.BookingDetail{
		ID:         rec.ID,
		UserID:     rec.UserID,
		EventID:    rec.EventID,
		EventTitle: event.Title,
		StartsAt:   event.StartsAt,
		EndsAt:     event.EndsAt,
		Quantity:   rec.Quantity,
		CreatedAt:  rec.CreatedAt,
		Seats:      make([]repository.BookingSeatDetail, 0, len(seats)),
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].RowLabel != seats[j].RowLabel {
			return seats[i].RowLabel < seats[j].RowLabel
		}
		return seats[i].SeatNumber < seats[j].SeatNumber
	})
	for _, s := range seats {
		det.Seats = append(det.Seats, repository.BookingSeatDetail{
			SeatID:     s.ID,
			RowLabel:   s.RowLabel,
			SeatNumber: s.SeatNumber,
			SeatType:   s.SeatType,
			PriceCents: s.PriceCents,
		})
	}
	return det
}

// announceBooking publishes the booking.created event.  Failures are
// logged and swallowed; the booking is already committed and a broker
// outage must not fail the request.
func (s *BookingService) announceBooking(ctx context.Context, det *repository.BookingDetail) {
	if s.publisher == nil {
		return
	}
	labels := make([]string, 0, len(det.Seats))
	for _, seat := range det.Seats {
		labels = append(labels, fmt.Sprintf("%s%d", seat.RowLabel, seat.SeatNumber))
	}
	ev := queue.BookingCreatedEvent{
		BookingID:  det.ID,
		UserID:     det.UserID,
		EventID:    det.EventID,
		EventTitle: det.EventTitle,
		Quantity:   det.Quantity,
		SeatLabels: labels,
		CreatedAt:  det.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishBookingCreated(ctx, ev); err != nil {
		log.Printf("booking %d: publish booking.created failed: %v", det.ID, err)
	}
}
