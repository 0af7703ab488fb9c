package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Fault classes shared by the Postgres drivers and SQLite.
const (
	FaultUnique     = "unique_violation"
	FaultForeignKey = "foreign_key_violation"
	FaultCheck      = "check_violation"
	FaultNotNull    = "not_null_violation"
	FaultOutOfRange = "numeric_out_of_range"
	FaultOther      = "other"
)

var sqlStateClasses = map[string]string{
	"23505": FaultUnique,
	"23503": FaultForeignKey,
	"23514": FaultCheck,
	"23502": FaultNotNull,
	"22003": FaultOutOfRange,
}

// StoreFault is the driver neutral view of a database error. Postgres fills
// every field; SQLite only reports what its message carries.
type StoreFault struct {
	Class      string `json:"class"`
	SQLState   string `json:"sql_state,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ErrorDump is what responses log for a failed request.
type ErrorDump struct {
	TopMessage string      `json:"top_message"`
	Code       Code        `json:"code,omitempty"`
	Chain      []string    `json:"chain,omitempty"`
	Store      *StoreFault `json:"store,omitempty"`
}

// Dump flattens err into loggable fields, including the database fault if one
// is wrapped anywhere in the chain.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	if fault, ok := StoreFaultOf(err); ok {
		d.Store = &fault
	}
	return d
}

// StoreFaultOf extracts the database fault from err. It reports false for
// errors that did not come from a driver.
func StoreFaultOf(err error) (StoreFault, bool) {
	if err == nil {
		return StoreFault{}, false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return StoreFault{
			Class:      classify(pgxErr.Code),
			SQLState:   pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return StoreFault{
			Class:      classify(string(pqErr.Code)),
			SQLState:   string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}, true
	}

	return sqliteFault(err.Error())
}

func classify(sqlState string) string {
	if class, ok := sqlStateClasses[sqlState]; ok {
		return class
	}
	return FaultOther
}

// sqliteFault parses messages such as "UNIQUE constraint failed: users.email"
// and "CHECK constraint failed: products_price_positive".
func sqliteFault(msg string) (StoreFault, bool) {
	prefixes := []struct {
		marker string
		class  string
	}{
		{"UNIQUE constraint failed", FaultUnique},
		{"FOREIGN KEY constraint failed", FaultForeignKey},
		{"CHECK constraint failed", FaultCheck},
		{"NOT NULL constraint failed", FaultNotNull},
	}
	for _, p := range prefixes {
		i := strings.Index(msg, p.marker)
		if i < 0 {
			continue
		}
		fault := StoreFault{Class: p.class, Message: msg[i:]}
		target := strings.TrimSpace(strings.TrimPrefix(msg[i+len(p.marker):], ":"))
		if target == "" {
			return fault, true
		}
		// multi-column unique indexes list every column; the first names the table
		target = strings.TrimSpace(strings.SplitN(target, ",", 2)[0])
		if table, column, ok := strings.Cut(target, "."); ok {
			fault.Table = table
			fault.Column = column
		} else {
			fault.Constraint = target
		}
		return fault, true
	}
	return StoreFault{}, false
}
