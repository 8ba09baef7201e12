package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// PaymentRepo persists payment attempts.  The one-payment-per-booking
// rule is carried by a unique key on booking_id; creation races lose
// with a duplicate-entry error and re-read the surviving row.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, booking_id, provider, amount_cents, status, transaction_id, created_at, updated_at`

func scanPayment(scan func(dest ...interface{}) error, p *model.Payment) error {
	return scan(&p.ID, &p.BookingID, &p.Provider, &p.AmountCents, &p.Status,
		&p.TransactionID, &p.CreatedAt, &p.UpdatedAt)
}

// Create inserts a payment row with status "initiated" and reads the
// full row back so DB-side timestamps are populated.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (booking_id, provider, amount_cents, status, transaction_id) VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, p.BookingID, p.Provider, p.AmountCents, p.Status, p.TransactionID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, uint64(id))
	return scanPayment(row.Scan, p)
}

// GetByBookingID returns the payment for a booking, or sql.ErrNoRows
// when none has been initiated yet.
func (r *PaymentRepo) GetByBookingID(ctx context.Context, bookingID uint64) (*model.Payment, error) {
	var p model.Payment
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = ?`, bookingID)
	if err := scanPayment(row.Scan, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateStatusByTransactionID sets the status of the payment carrying
// the given gateway reference and returns the updated row.  Only
// status and updated_at mutate.  Returns sql.ErrNoRows when no payment
// matches the reference.
func (r *PaymentRepo) UpdateStatusByTransactionID(ctx context.Context, transactionID, status string) (*model.Payment, error) {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = ?, updated_at = UTC_TIMESTAMP() WHERE transaction_id = ?`,
		status, transactionID); err != nil {
		return nil, err
	}
	// Read the row back; a repeated callback with the same status
	// affects zero rows but must still return the payment, so rows
	// affected is not consulted.
	var p model.Payment
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE transaction_id = ?`, transactionID)
	if err := scanPayment(row.Scan, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// StatusByBookingTx reads the payment status for a booking inside a
// transaction.  The cancellation path uses it to refuse cancelling a
// booking whose payment already completed.  Returns sql.ErrNoRows when
// the booking has no payment.
func (r *PaymentRepo) StatusByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (string, error) {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM payments WHERE booking_id = ?`, bookingID).Scan(&status)
	return status, err
}

// ListByUser returns every payment attached to the user's bookings,
// newest first.
func (r *PaymentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	const q = `SELECT p.id, p.booking_id, p.provider, p.amount_cents, p.status, p.transaction_id, p.created_at, p.updated_at
               FROM payments p
               JOIN bookings b ON b.id = p.booking_id
               WHERE b.user_id = ?
               ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		if err := scanPayment(rows.Scan, &p); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
