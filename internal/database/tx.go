package database

import (
	"context"
	"database/sql"
)

// Atomic is the unit-of-work boundary used by the service layer: the
// supplied function either commits as a whole or leaves no trace.  The
// *sql.Tx handed to fn must not outlive the call.
type Atomic interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// TxRunner implements Atomic on a *sql.DB.  Row locks taken inside fn
// (SELECT ... FOR UPDATE) are held until commit or rollback, which is
// what serializes concurrent reservations over the same seats.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner returns a TxRunner bound to the given database.
func NewTxRunner(db *sql.DB) *TxRunner { return &TxRunner{db: db} }

// InTx begins a transaction, invokes fn and commits.  Any error from
// fn rolls the transaction back and is returned unchanged so callers
// can translate driver errors (lock wait timeout, duplicate key).
func (r *TxRunner) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
