package sqlgraph

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ConstraintError is a constraint violation reported by the database, such
// as a duplicate primary key or a child row of multi-table inheritance
// without its parent.
type ConstraintError struct {
	msg  string
	wrap error
}

// NewConstraintError returns a constraint error wrapping the driver error.
func NewConstraintError(msg string, err error) *ConstraintError {
	return &ConstraintError{msg: msg, wrap: err}
}

func (e *ConstraintError) Error() string { return "sqlgraph: " + e.msg }

func (e *ConstraintError) Unwrap() error { return e.wrap }

// Class 23 SQLSTATE codes, with the message fragment used when the driver
// error carries no code.
var violations = map[string]string{
	"23502": "violates not-null constraint",
	"23503": "violates foreign key constraint",
	"23505": "violates unique constraint",
	"23514": "violates check constraint",
}

// IsConstraintError reports if err is a *ConstraintError or any class 23
// violation raised by lib/pq or pgx.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	if errors.As(err, &e) {
		return true
	}
	for code := range violations {
		if violates(err, code) {
			return true
		}
	}
	return false
}

// IsUniqueConstraintError reports a duplicate key.
func IsUniqueConstraintError(err error) bool { return violates(err, "23505") }

// IsForeignKeyConstraintError reports a reference to a missing row, for
// example a child table row whose parent row is gone.
func IsForeignKeyConstraintError(err error) bool { return violates(err, "23503") }

// IsCheckConstraintError reports a failed check condition.
func IsCheckConstraintError(err error) bool { return violates(err, "23514") }

// IsNotNullConstraintError reports a NULL written to a NOT NULL column.
func IsNotNullConstraintError(err error) bool { return violates(err, "23502") }

func violates(err error, code string) bool {
	if err == nil {
		return false
	}
	if state, ok := sqlState(err); ok {
		return state == code
	}
	return strings.Contains(err.Error(), violations[code])
}

// sqlState extracts the SQLSTATE of a lib/pq, pgx or other driver error
// found in the chain of err.
func sqlState(err error) (string, bool) {
	var (
		pqErr *pq.Error
		pgErr *pgconn.PgError
		coder interface{ SQLState() string }
	)
	switch {
	case errors.As(err, &pqErr):
		return string(pqErr.Code), true
	case errors.As(err, &pgErr):
		return pgErr.Code, true
	case errors.As(err, &coder):
		return coder.SQLState(), true
	}
	return "", false
}
