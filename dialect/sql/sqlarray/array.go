package sqlarray

import (
	"github.com/lib/pq"

	"github.com/syssam/arrayrel/dialect/sql"
)

// Of returns a typed array parameter. The values are bound as a single
// PostgreSQL array literal and cast to the array type of elemType:
//
//	sqlarray.Of("bigint", []any{int64(1), int64(2)}) // ?::bigint[]  ('{1,2}')
func Of(elemType string, values []any) sql.Querier {
	if values == nil {
		values = []any{}
	}
	return sql.ExprFunc(func(b *sql.Builder) {
		b.Arg(pq.Array(values)).WriteString("::" + elemType + "[]")
	})
}

// Elem returns a typed scalar parameter of the given element type.
//
//	sqlarray.Elem("uuid", id) // ?::uuid
func Elem(elemType string, v any) sql.Querier {
	return sql.ExprFunc(func(b *sql.Builder) {
		b.Arg(v).WriteString("::" + elemType)
	})
}

// Empty returns the typed empty array literal.
func Empty(elemType string) sql.Querier {
	return sql.Raw("'{}'::" + elemType + "[]")
}

// Any converts a typed slice to the []any form accepted by Of.
func Any[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i := range vs {
		out[i] = vs[i]
	}
	return out
}

// Distinct returns the values in their first-seen order, without repeats.
// The values must be comparable.
func Distinct(values []any) []any {
	seen := make(map[any]struct{}, len(values))
	out := make([]any, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
