package sqlarray

import (
	"strconv"

	"github.com/syssam/arrayrel/dialect/sql"
)

// An Assignment describes the new value of an array column. The same
// descriptor is rendered in UPDATE statements and, for previews, in the
// select list of a query.
type Assignment struct {
	// Column is the array column name.
	Column string
	expr   func(col string) sql.Querier
}

// Expr returns the value expression, given the (possibly qualified)
// reference to the current column value.
func (a Assignment) Expr(col string) sql.Querier {
	return a.expr(col)
}

// Apply adds the assignment to the given UPDATE statement.
func (a Assignment) Apply(u *sql.UpdateBuilder) *sql.UpdateBuilder {
	return u.SetExpr(a.Column, a.expr(sql.Quote(a.Column)))
}

// Append appends the values to the end of the array, duplicates included.
//
//	"publications" = "publications" || ?::bigint[]
func Append(column, elemType string, values ...any) Assignment {
	return Assignment{Column: column, expr: func(col string) sql.Querier {
		return sql.ExprFunc(func(b *sql.Builder) {
			b.Ident(col).WriteString(" || ").Arg(Of(elemType, values))
		})
	}}
}

// AppendDistinct appends the values that the array does not hold yet,
// keeping their given order.
func AppendDistinct(column, elemType string, values ...any) Assignment {
	values = Distinct(values)
	return Assignment{Column: column, expr: func(col string) sql.Querier {
		return sql.ExprFunc(func(b *sql.Builder) {
			b.Ident(col).
				WriteString(" || ARRAY(SELECT elem FROM unnest(").
				Arg(Of(elemType, values)).
				WriteString(") WITH ORDINALITY AS a(elem, pos) WHERE NOT (elem = ANY(").
				Ident(col).
				WriteString(")) ORDER BY pos)")
		})
	}}
}

// Prepend inserts the values at the start of the array.
func Prepend(column, elemType string, values ...any) Assignment {
	return Assignment{Column: column, expr: func(col string) sql.Querier {
		return sql.ExprFunc(func(b *sql.Builder) {
			b.Arg(Of(elemType, values)).WriteString(" || ").Ident(col)
		})
	}}
}

// Remove removes every occurrence of a single value.
//
//	"publications" = array_remove("publications", ?::bigint)
func Remove(column, elemType string, value any) Assignment {
	return Assignment{Column: column, expr: func(col string) sql.Querier {
		return sql.ExprFunc(func(b *sql.Builder) {
			b.WriteString("array_remove(").Ident(col).Comma().Arg(Elem(elemType, value)).WriteByte(')')
		})
	}}
}

// RemoveAll removes every occurrence of the given values. The remaining
// elements keep their order.
func RemoveAll(column, elemType string, values ...any) Assignment {
	return Assignment{Column: column, expr: func(col string) sql.Querier {
		return Difference(col, Of(elemType, values))
	}}
}

// Difference returns the elements of the array column that are not in the
// given array, in their original order.
func Difference(col string, arr sql.Querier) sql.Querier {
	return sql.ExprFunc(func(b *sql.Builder) {
		b.WriteString("ARRAY(SELECT elem FROM unnest(").
			Ident(col).
			WriteString(") WITH ORDINALITY AS a(elem, pos) WHERE NOT (elem = ANY(").
			Arg(arr).
			WriteString(")) ORDER BY pos)")
	})
}

// Replace replaces the array with the given values.
func Replace(column, elemType string, values ...any) Assignment {
	return Assignment{Column: column, expr: func(string) sql.Querier {
		return Of(elemType, values)
	}}
}

// Clear empties the array.
func Clear(column, elemType string) Assignment {
	return Assignment{Column: column, expr: func(string) sql.Querier {
		return Empty(elemType)
	}}
}

// SetIndex replaces the element at the 1-based position i. Positions past
// the end of the array append the value.
func SetIndex(column, elemType string, i int, value any) Assignment {
	return Assignment{Column: column, expr: func(col string) sql.Querier {
		return sql.ExprFunc(func(b *sql.Builder) {
			b.WriteByte('(').Ident(col).WriteString("[:" + strconv.Itoa(i-1) + "]").
				WriteString(" || ").Arg(Elem(elemType, value)).
				WriteString(" || ").Ident(col).WriteString("[" + strconv.Itoa(i+1) + ":])")
		})
	}}
}

// Func returns an assignment whose value is computed by fn, given the
// reference to the current column value. It is used for assignments that
// are not array operations, such as setting a scalar column.
func Func(column string, fn func(col string) sql.Querier) Assignment {
	return Assignment{Column: column, expr: fn}
}
