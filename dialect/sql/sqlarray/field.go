package sqlarray

import "github.com/syssam/arrayrel/dialect/sql"

// Field is a generic array field that provides type-safe predicate methods.
//
// Usage:
//
//	var Publications = sqlarray.NewField[func(*sql.Selector), int64]("publications", "bigint")
//	query.Where(Publications.Contains(1, 2))
type Field[P sql.PredicateFunc, T any] struct {
	name string
	elem string
}

// NewField returns a field for the array column name holding elements of
// the given SQL type.
func NewField[P sql.PredicateFunc, T any](name, elemType string) Field[P, T] {
	return Field[P, T]{name: name, elem: elemType}
}

// Name returns the column name.
func (f Field[P, T]) Name() string { return f.name }

func (f Field[P, T]) pred(op func(string, sql.Querier) *sql.Predicate, vs []T) P {
	arr := Of(f.elem, Any(vs))
	return P(func(s *sql.Selector) { s.Where(op(s.C(f.name), arr)) })
}

// EQ returns a predicate that checks if the array equals the given values, in order.
func (f Field[P, T]) EQ(vs ...T) P { return f.pred(EQ, vs) }

// NEQ returns a predicate that checks if the array differs from the given values.
func (f Field[P, T]) NEQ(vs ...T) P { return f.pred(NEQ, vs) }

// Contains returns a predicate that checks if the array holds all given values.
func (f Field[P, T]) Contains(vs ...T) P { return f.pred(Contains, vs) }

// ContainedBy returns a predicate that checks if the array holds only given values.
func (f Field[P, T]) ContainedBy(vs ...T) P { return f.pred(ContainedBy, vs) }

// Overlap returns a predicate that checks if the array holds any of the given values.
func (f Field[P, T]) Overlap(vs ...T) P { return f.pred(Overlap, vs) }

// GT returns a predicate that compares the array lexicographically.
func (f Field[P, T]) GT(vs ...T) P { return f.pred(GT, vs) }

// LT returns a predicate that compares the array lexicographically.
func (f Field[P, T]) LT(vs ...T) P { return f.pred(LT, vs) }

// Has returns a predicate that checks if the array holds the given value.
func (f Field[P, T]) Has(v T) P {
	return P(func(s *sql.Selector) { s.Where(Has(s.C(f.name), v)) })
}

// IsEmpty returns a predicate that checks if the array holds no values.
func (f Field[P, T]) IsEmpty() P {
	return P(func(s *sql.Selector) { s.Where(IsEmpty(s.C(f.name))) })
}

// Len returns a predicate that checks the number of elements in the array.
func (f Field[P, T]) Len(n int) P {
	return P(func(s *sql.Selector) { s.Where(LenEQ(s.C(f.name), n)) })
}
