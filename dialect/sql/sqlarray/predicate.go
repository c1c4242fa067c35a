package sqlarray

import (
	"strconv"

	"github.com/syssam/arrayrel/dialect/sql"
)

func binary(col, op string, v sql.Querier) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		b.Ident(col).WriteString(" " + op + " ").Arg(v)
	})
}

// EQ returns an order-sensitive equality predicate: col = ?::t[].
func EQ(col string, v sql.Querier) *sql.Predicate { return binary(col, "=", v) }

// NEQ returns the negation of EQ: col <> ?::t[].
func NEQ(col string, v sql.Querier) *sql.Predicate { return binary(col, "<>", v) }

// Contains reports if the column holds every given element: col @> ?::t[].
func Contains(col string, v sql.Querier) *sql.Predicate { return binary(col, "@>", v) }

// ContainedBy reports if every element of the column is one of the given
// elements: col <@ ?::t[].
func ContainedBy(col string, v sql.Querier) *sql.Predicate { return binary(col, "<@", v) }

// Overlap reports if the column holds any of the given elements: col && ?::t[].
func Overlap(col string, v sql.Querier) *sql.Predicate { return binary(col, "&&", v) }

// GT compares the column with the given array lexicographically: col > ?::t[].
func GT(col string, v sql.Querier) *sql.Predicate { return binary(col, ">", v) }

// GTE compares the column with the given array lexicographically: col >= ?::t[].
func GTE(col string, v sql.Querier) *sql.Predicate { return binary(col, ">=", v) }

// LT compares the column with the given array lexicographically: col < ?::t[].
func LT(col string, v sql.Querier) *sql.Predicate { return binary(col, "<", v) }

// LTE compares the column with the given array lexicographically: col <= ?::t[].
func LTE(col string, v sql.Querier) *sql.Predicate { return binary(col, "<=", v) }

// Has reports if the column holds the given element: ? = ANY(col).
func Has(col string, v any) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		b.Arg(v).WriteString(" = ANY(").Ident(col).WriteByte(')')
	})
}

// HasColumn reports if the array column holds the value of another column:
// elem = ANY(col). It is the forward join condition.
func HasColumn(col, elem string) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		b.Ident(elem).WriteString(" = ANY(").Ident(col).WriteByte(')')
	})
}

// ContainsColumn reports if the array column holds the value of another
// column using containment: col @> ARRAY[elem]. It is the reverse join
// condition, and can use a GIN index on col.
func ContainsColumn(col, elem string) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		b.Ident(col).WriteString(" @> ARRAY[").Ident(elem).WriteByte(']')
	})
}

func length(col, op string, n int) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		b.WriteString("cardinality(").Ident(col).WriteString(") " + op + " " + strconv.Itoa(n))
	})
}

// LenEQ reports if the column holds exactly n elements.
func LenEQ(col string, n int) *sql.Predicate { return length(col, "=", n) }

// LenGT reports if the column holds more than n elements.
func LenGT(col string, n int) *sql.Predicate { return length(col, ">", n) }

// LenGTE reports if the column holds at least n elements.
func LenGTE(col string, n int) *sql.Predicate { return length(col, ">=", n) }

// LenLT reports if the column holds fewer than n elements.
func LenLT(col string, n int) *sql.Predicate { return length(col, "<", n) }

// LenLTE reports if the column holds at most n elements.
func LenLTE(col string, n int) *sql.Predicate { return length(col, "<=", n) }

// IsEmpty reports if the column holds no elements. NULL arrays are empty.
func IsEmpty(col string) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		b.WriteString("COALESCE(cardinality(").Ident(col).WriteString("), 0) = 0")
	})
}

// NotEmpty reports if the column holds at least one element.
func NotEmpty(col string) *sql.Predicate {
	return LenGT(col, 0)
}

// In reports if the scalar column equals one of the given values, bound as
// a single array parameter: col = ANY(?::t[]).
func In(col, elemType string, values []any) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		b.Ident(col).WriteString(" = ANY(").Arg(Of(elemType, values)).WriteByte(')')
	})
}
