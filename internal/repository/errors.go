// Package repository implements data access on MySQL.  Absent rows are
// reported as sql.ErrNoRows; driver-level failures that the service
// layer must distinguish (lock wait timeout, duplicate key) are
// recognized by the helpers below instead of being wrapped into new
// error types here.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers this service reacts to.
const (
	mysqlErrDuplicateEntry  = 1062 // ER_DUP_ENTRY
	mysqlErrLockWaitTimeout = 1205 // ER_LOCK_WAIT_TIMEOUT
)

// IsDuplicateEntry reports whether err is a unique-key violation.  The
// reservation path hits this on booking_seats.seat_id when a seat is
// raced past the row lock, and the payment path on payments.booking_id
// when two initiations race.
func IsDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// IsLockWaitTimeout reports whether err is an InnoDB lock wait timeout,
// i.e. a conflicting reservation held its locks longer than
// innodb_lock_wait_timeout.  Callers surface this as a retryable
// condition, not as a seat conflict.
func IsLockWaitTimeout(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrLockWaitTimeout
}
