// Package repository contains the MySQL data access layer.  Sentinel values
// defined here let handlers and services distinguish failure scenarios
// without inspecting driver errors.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrDestinationNotFound   = errors.New("destination not found")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrTeamMemberNotFound    = errors.New("team member not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailExists           = errors.New("email already exists")
)

// ErrConflict is returned when a write references a row that does not exist
// (foreign key violation).  Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers we react to.
const (
	mysqlDuplicateEntry = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool { return mysqlErrNumber(err) == mysqlDuplicateEntry }

func isForeignKeyViolation(err error) bool {
	n := mysqlErrNumber(err)
	return n == mysqlRowIsReferenced || n == mysqlNoReferencedRow
}

// mapWriteErr converts foreign key violations to ErrConflict.
func mapWriteErr(err error) error {
	if isForeignKeyViolation(err) {
		return ErrConflict
	}
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// affectedOrNotFound returns notFound when an UPDATE/DELETE touched no row.
// The DSN sets clientFoundRows so an UPDATE that leaves values unchanged
// still reports the matched row.
func affectedOrNotFound(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
