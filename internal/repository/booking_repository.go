package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// BookingRepo persists bookings and their seat associations.  Rows are
// only ever created by the reservation transaction and only ever
// deleted by the cancellation transaction; everything else is a read
// projection.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking within the scope of an existing
// transaction and populates the generated ID and creation timestamp on
// b.  The caller must commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, event_id, quantity) VALUES (?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, b.UserID, b.EventID, b.Quantity)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to pick up the DB-side creation timestamp.
	const sel = `SELECT created_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt)
}

// AddSeatsTx inserts one booking_seats row per seat in a single
// statement.  The unique key on seat_id makes this the commit-time
// check that no seat is ever bound to two bookings; a violation
// surfaces as a duplicate-entry error (see IsDuplicateEntry).
// Passing an empty slice has no effect and returns nil.
func (r *BookingRepo) AddSeatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	q := `INSERT INTO booking_seats (booking_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*2)
	for i, sid := range seatIDs {
		if i > 0 {
			q += ","
		}
		q += "(?, ?)"
		args = append(args, bookingID, sid)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// BookingSeatDetail is one seat inside a booking projection.
type BookingSeatDetail struct {
	SeatID     uint64 `json:"seat_id"`
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
	SeatType   string `json:"seat_type"`
	PriceCents uint32 `json:"price_cents"`
}

// BookingDetail is a booking with its event header and seat list, the
// shape handed to customers.  UserID is included so the service layer
// can enforce owner-only access.
type BookingDetail struct {
	ID         uint64              `json:"id"`
	UserID     uint64              `json:"user_id"`
	EventID    uint64              `json:"event_id"`
	EventTitle string              `json:"event_title"`
	StartsAt   time.Time           `json:"starts_at"`
	EndsAt     time.Time           `json:"ends_at"`
	Quantity   uint32              `json:"quantity"`
	CreatedAt  time.Time           `json:"created_at"`
	Seats      []BookingSeatDetail `json:"seats"`
}

const bookingDetailQuery = `SELECT b.id, b.user_id, b.event_id, b.quantity, b.created_at,
                                   e.title, e.starts_at, e.ends_at
                            FROM bookings b
                            JOIN events e ON e.id = b.event_id`

func scanBookingDetail(scan func(dest ...interface{}) error, d *BookingDetail) error {
	return scan(&d.ID, &d.UserID, &d.EventID, &d.Quantity, &d.CreatedAt,
		&d.EventTitle, &d.StartsAt, &d.EndsAt)
}

// GetByID loads one booking with its seats.  Ownership is not checked
// here; the service compares UserID against the caller.  Returns
// sql.ErrNoRows when the booking does not exist.
func (r *BookingRepo) GetByID(ctx context.Context, bookingID uint64) (*BookingDetail, error) {
	var det BookingDetail
	row := r.db.QueryRowContext(ctx, bookingDetailQuery+` WHERE b.id = ?`, bookingID)
	if err := scanBookingDetail(row.Scan, &det); err != nil {
		return nil, err
	}
	details := []BookingDetail{det}
	if err := r.fillSeats(ctx, details); err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListByUser returns all bookings of a user, newest first, each with
// its event header and ordered seat list.  An empty slice is returned
// when the user has no bookings.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, bookingDetailQuery+` WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		if err := scanBookingDetail(rows.Scan, &d); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.fillSeats(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// fillSeats populates the Seats slice of every detail in one query,
// keyed back to its booking by id.
func (r *BookingRepo) fillSeats(ctx context.Context, details []BookingDetail) error {
	for i := range details {
		details[i].Seats = []BookingSeatDetail{}
	}
	if len(details) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(details))
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for i, d := range details {
		index[d.ID] = i
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT bs.booking_id, bs.seat_id, s.row_label, s.seat_number, s.seat_type, s.price_cents
          FROM booking_seats bs
          JOIN seats s ON s.id = bs.seat_id
          WHERE bs.booking_id IN (` + strings.Join(placeholders, ",") + `)
          ORDER BY bs.booking_id, s.row_label, s.seat_number`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bid uint64
		var sd BookingSeatDetail
		if err := rows.Scan(&bid, &sd.SeatID, &sd.RowLabel, &sd.SeatNumber, &sd.SeatType, &sd.PriceCents); err != nil {
			return err
		}
		if i, ok := index[bid]; ok {
			details[i].Seats = append(details[i].Seats, sd)
		}
	}
	return rows.Err()
}

// GetForCancelTx loads, inside the cancellation transaction, the facts
// needed to decide and execute a cancel: the owner, the event start
// time and the bound seat ids.  Returns sql.ErrNoRows when the booking
// does not exist.
func (r *BookingRepo) GetForCancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (userID uint64, startsAt time.Time, seatIDs []uint64, err error) {
	const q = `SELECT b.user_id, e.starts_at
               FROM bookings b
               JOIN events e ON e.id = b.event_id
               WHERE b.id = ?
               FOR UPDATE`
	if err = tx.QueryRowContext(ctx, q, bookingID).Scan(&userID, &startsAt); err != nil {
		return 0, time.Time{}, nil, err
	}
	rows, err := tx.QueryContext(ctx, `SELECT seat_id FROM booking_seats WHERE booking_id = ?`, bookingID)
	if err != nil {
		return 0, time.Time{}, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sid uint64
		if err = rows.Scan(&sid); err != nil {
			return 0, time.Time{}, nil, err
		}
		seatIDs = append(seatIDs, sid)
	}
	if err = rows.Err(); err != nil {
		return 0, time.Time{}, nil, err
	}
	return userID, startsAt, seatIDs, nil
}

// DeleteTx removes a booking; booking_seats rows go with it via the
// foreign key cascade.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, bookingID)
	return err
}
