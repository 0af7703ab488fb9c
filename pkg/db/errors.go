package db

import (
	"errors"

	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// Postgres (pgx or lib/pq) or SQLite. When constraintName is provided the
// violated constraint, or the "<table>.<column>" SQLite reports, must match it.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) && constraintName == "" {
		return true
	}
	fault, ok := pkgerrors.StoreFaultOf(err)
	if !ok || fault.Class != pkgerrors.FaultUnique {
		return false
	}
	if constraintName == "" {
		return true
	}
	if fault.Constraint != "" {
		return fault.Constraint == constraintName
	}
	return fault.Table+"."+fault.Column == constraintName
}

// IsForeignKeyViolation reports whether err is a foreign key violation from
// Postgres or SQLite.
func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	fault, ok := pkgerrors.StoreFaultOf(err)
	return ok && fault.Class == pkgerrors.FaultForeignKey
}

// IsValueRejected reports whether the database refused a value through a
// CHECK constraint, a NOT NULL column or a numeric overflow.
func IsValueRejected(err error) bool {
	fault, ok := pkgerrors.StoreFaultOf(err)
	if !ok {
		return false
	}
	switch fault.Class {
	case pkgerrors.FaultCheck, pkgerrors.FaultNotNull, pkgerrors.FaultOutOfRange:
		return true
	}
	return false
}

// IsNotFound reports whether err is gorm's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolationOn matches a unique violation on table.column for either
// dialect: Postgres reports the "<table>_<column>_key" constraint, SQLite the
// "<table>.<column>" column.
func IsUniqueViolationOn(err error, table, column string) bool {
	return IsUniqueViolation(err, table+"_"+column+"_key") || IsUniqueViolation(err, table+"."+column)
}
