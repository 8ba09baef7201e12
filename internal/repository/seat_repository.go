package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// SeatRepo is the inventory store: seat rows per event plus their
// availability flag.  Availability is only ever mutated through the
// ...Tx methods so every flip happens inside a reservation or
// cancellation transaction.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

const seatColumns = `id, event_id, row_label, seat_number, seat_type, price_cents, is_available, created_at, updated_at`

func scanSeat(rows *sql.Rows, s *model.Seat) error {
	return rows.Scan(&s.ID, &s.EventID, &s.RowLabel, &s.SeatNumber, &s.SeatType,
		&s.PriceCents, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt)
}

// ListByEvent returns every seat of an event ordered by row label and
// seat number.  The caller is responsible for checking that the event
// exists; an unknown event simply yields an empty slice here.
func (r *SeatRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	q := `SELECT ` + seatColumns + ` FROM seats WHERE event_id = ? ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// LockAvailableTx selects, with an exclusive row lock, the requested
// seats that belong to the event and are still available.  Seats that
// do not exist, belong to another event or were already booked are
// silently missing from the result; the caller compares lengths to
// detect that.  The locks are held until the surrounding transaction
// commits or rolls back, which serializes racing reservations over
// overlapping seat sets.
func (r *SeatRepo) LockAvailableTx(ctx context.Context, tx *sql.Tx, eventID uint64, seatIDs []uint64) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return []model.Seat{}, nil
	}
	placeholders := make([]string, len(seatIDs))
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, eventID)
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	q := `SELECT ` + seatColumns + ` FROM seats
          WHERE event_id = ? AND id IN (` + strings.Join(placeholders, ",") + `) AND is_available = 1
          ORDER BY id
          FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0, len(seatIDs))
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// MarkUnavailableTx flips the given seats to unavailable inside the
// provided transaction.  Callers must already hold the row locks from
// LockAvailableTx.
func (r *SeatRepo) MarkUnavailableTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) error {
	return r.setAvailabilityTx(ctx, tx, seatIDs, false)
}

// MarkAvailableTx returns the given seats to the pool.  Only the
// cancellation path uses this.
func (r *SeatRepo) MarkAvailableTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) error {
	return r.setAvailabilityTx(ctx, tx, seatIDs, true)
}

func (r *SeatRepo) setAvailabilityTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64, available bool) error {
	if len(seatIDs) == 0 {
		return nil
	}
	placeholders := make([]string, len(seatIDs))
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, available)
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	q := `UPDATE seats SET is_available = ? WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}
