package sql

import (
	"errors"
	"strconv"
	"strings"
)

// Querier wraps the basic Query method that is implemented
// by the different builders in this file.
type Querier interface {
	// Query returns the query representation of the element
	// and its arguments (if any).
	Query() (string, []any)
}

// rawQuerier is implemented by the builders of this package. It returns the
// statement with "?" placeholders, so it can be embedded in an outer statement
// that numbers all placeholders at once.
type rawQuerier interface {
	rawQuery() (string, []any)
}

// errQuerier is implemented by builders that may carry construction errors.
type errQuerier interface {
	Err() error
}

// Builder is the base query builder for the sql dsl.
type Builder struct {
	sb   strings.Builder
	args []any
	errs []error
}

// WriteString writes the given string as-is.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte writes the given byte as-is.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad adds a space to the query.
func (b *Builder) Pad() *Builder {
	return b.WriteByte(' ')
}

// Comma adds a comma to the query.
func (b *Builder) Comma() *Builder {
	return b.WriteString(", ")
}

// Ident appends the given string as an identifier. Dotted names are quoted
// part by part; expressions and already quoted names are written as-is.
func (b *Builder) Ident(s string) *Builder {
	switch {
	case s == "":
	case s == "*", isExpr(s), strings.HasPrefix(s, `"`):
		b.WriteString(s)
	case strings.Contains(s, "."):
		parts := strings.Split(s, ".")
		for i, p := range parts {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(Quote(p))
		}
	default:
		b.WriteString(Quote(s))
	}
	return b
}

// IdentComma calls Ident on all arguments and adds a comma between them.
func (b *Builder) IdentComma(s ...string) *Builder {
	for i := range s {
		if i > 0 {
			b.Comma()
		}
		b.Ident(s[i])
	}
	return b
}

// Arg appends an input argument to the builder. Queriers are embedded in
// the statement; a sub-select is wrapped with parentheses.
func (b *Builder) Arg(a any) *Builder {
	switch a := a.(type) {
	case *Selector:
		b.Wrap(func(b *Builder) { b.Join(a) })
	case Querier:
		b.Join(a)
	default:
		b.args = append(b.args, a)
		b.WriteByte('?')
	}
	return b
}

// Args appends a list of arguments to the builder separated by commas.
func (b *Builder) Args(a ...any) *Builder {
	for i := range a {
		if i > 0 {
			b.Comma()
		}
		b.Arg(a[i])
	}
	return b
}

// Join joins a list of Queriers to the builder.
func (b *Builder) Join(qs ...Querier) *Builder {
	for _, q := range qs {
		if q == nil {
			continue
		}
		if e, ok := q.(errQuerier); ok {
			if err := e.Err(); err != nil {
				b.AddError(err)
			}
		}
		var (
			query string
			args  []any
		)
		if r, ok := q.(rawQuerier); ok {
			query, args = r.rawQuery()
		} else {
			query, args = q.Query()
		}
		b.WriteString(query)
		b.args = append(b.args, args...)
	}
	return b
}

// Wrap gets a callback, and wraps its result with parentheses.
func (b *Builder) Wrap(f func(*Builder)) *Builder {
	b.WriteByte('(')
	f(b)
	b.WriteByte(')')
	return b
}

// AddError appends an error to the builder errors.
func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Err returns a concatenated error of all errors encountered during
// the query-building, or were added manually by calling AddError.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// String returns the accumulated string, with "?" placeholders.
func (b *Builder) String() string {
	return b.sb.String()
}

func (b *Builder) rawQuery() (string, []any) {
	return b.sb.String(), b.args
}

// Query implements the Querier interface.
func (b *Builder) Query() (string, []any) {
	return numbered(b.rawQuery())
}

// Quote quotes the given identifier.
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// isExpr reports if the given string is an expression (and not a column name).
func isExpr(s string) bool {
	return strings.ContainsAny(s, "() ")
}

// numbered rewrites "?" placeholders to PostgreSQL positional placeholders.
// Placeholders inside quoted literals or identifiers are left untouched.
func numbered(query string, args []any) (string, []any) {
	if !strings.Contains(query, "?") {
		return query, args
	}
	var (
		sb    strings.Builder
		n     int
		quote byte
	)
	sb.Grow(len(query) + 8)
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String(), args
}

// queryFunc adapts a function to the Querier interface.
type queryFunc func(*Builder)

func (f queryFunc) rawQuery() (string, []any) {
	b := &Builder{}
	f(b)
	return b.rawQuery()
}

func (f queryFunc) Query() (string, []any) {
	return numbered(f.rawQuery())
}

// ExprFunc returns an expression function that implements the Querier interface.
//
//	sql.ExprFunc(func(b *sql.Builder) {
//	    b.WriteString("array_remove(").Ident("tags").Comma().Arg("x").WriteByte(')')
//	})
func ExprFunc(f func(*Builder)) Querier {
	return queryFunc(f)
}

// Expr returns an SQL expression that implements the Querier interface.
// The expression may hold "?" placeholders for the given arguments.
func Expr(expr string, args ...any) Querier {
	return queryFunc(func(b *Builder) {
		b.WriteString(expr)
		b.args = append(b.args, args...)
	})
}

// Raw returns a raw SQL Querier that is placed as-is in the query.
func Raw(s string) Querier {
	return Expr(s)
}

// Predicate is a where predicate.
type Predicate struct {
	fns []func(*Builder)
}

// P creates a new predicate.
//
//	P().EQ("name", "a8m").And().EQ("age", 30)
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns}
}

// Append appends a new function to the predicate callbacks.
func (p *Predicate) Append(f func(*Builder)) *Predicate {
	p.fns = append(p.fns, f)
	return p
}

func (p *Predicate) rawQuery() (string, []any) {
	b := &Builder{}
	for _, f := range p.fns {
		f(b)
	}
	return b.rawQuery()
}

// Query returns query representation of a predicate.
func (p *Predicate) Query() (string, []any) {
	return numbered(p.rawQuery())
}

// ExprP creates a new predicate from the given expression.
//
//	ExprP("A = ? AND B > ?", args...)
func ExprP(expr string, args ...any) *Predicate {
	return P(func(b *Builder) {
		b.WriteString(expr)
		b.args = append(b.args, args...)
	})
}

// binary returns a predicate "col op arg".
func binary(col, op string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).Pad().WriteString(op).Pad().Arg(v)
	})
}

// EQ returns a "=" predicate.
func EQ(col string, v any) *Predicate { return binary(col, "=", v) }

// NEQ returns a "<>" predicate.
func NEQ(col string, v any) *Predicate { return binary(col, "<>", v) }

// GT returns a ">" predicate.
func GT(col string, v any) *Predicate { return binary(col, ">", v) }

// GTE returns a ">=" predicate.
func GTE(col string, v any) *Predicate { return binary(col, ">=", v) }

// LT returns a "<" predicate.
func LT(col string, v any) *Predicate { return binary(col, "<", v) }

// LTE returns a "<=" predicate.
func LTE(col string, v any) *Predicate { return binary(col, "<=", v) }

// ColumnsEQ returns a predicate comparing two columns.
func ColumnsEQ(col1, col2 string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col1).WriteString(" = ").Ident(col2)
	})
}

// In returns the `IN` predicate. A single sub-select argument is embedded
// as `col IN (SELECT ...)`; an empty list is always false.
func In(col string, args ...any) *Predicate {
	return in(col, "IN", "FALSE", args)
}

// NotIn returns the `Not IN` predicate. An empty list is always true.
func NotIn(col string, args ...any) *Predicate {
	return in(col, "NOT IN", "TRUE", args)
}

func in(col, op, empty string, args []any) *Predicate {
	return P(func(b *Builder) {
		if len(args) == 0 {
			b.WriteString(empty)
			return
		}
		b.Ident(col).Pad().WriteString(op).Pad()
		if s, ok := args[0].(*Selector); ok && len(args) == 1 {
			b.Arg(s)
			return
		}
		b.Wrap(func(b *Builder) { b.Args(args...) })
	})
}

// IsNull returns the `IS NULL` predicate.
func IsNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col).WriteString(" IS NULL") })
}

// NotNull returns the `IS NOT NULL` predicate.
func NotNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col).WriteString(" IS NOT NULL") })
}

// Like returns the `LIKE` predicate.
func Like(col, pattern string) *Predicate { return binary(col, "LIKE", pattern) }

// HasPrefix is a helper predicate that checks prefix using the LIKE predicate.
func HasPrefix(col, prefix string) *Predicate {
	return Like(col, escapeLike(prefix)+"%")
}

// HasSuffix is a helper predicate that checks suffix using the LIKE predicate.
func HasSuffix(col, suffix string) *Predicate {
	return Like(col, "%"+escapeLike(suffix))
}

// Contains is a helper predicate that checks substring using the LIKE predicate.
func Contains(col, sub string) *Predicate {
	return Like(col, "%"+escapeLike(sub)+"%")
}

// ContainsFold is a helper predicate that checks substring using the ILIKE predicate.
func ContainsFold(col, sub string) *Predicate {
	return binary(col, "ILIKE", "%"+escapeLike(sub)+"%")
}

// EqualFold is a helper predicate that applies the "=" predicate with case-folding.
func EqualFold(col, v string) *Predicate {
	return binary(col, "ILIKE", escapeLike(v))
}

func escapeLike(s string) string {
	if !strings.ContainsAny(s, `\%_`) {
		return s
	}
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// And combines all given predicates with AND between them.
func And(preds ...*Predicate) *Predicate {
	return join("AND", preds)
}

// Or combines all given predicates with OR between them.
func Or(preds ...*Predicate) *Predicate {
	return join("OR", preds)
}

func join(op string, preds []*Predicate) *Predicate {
	return P(func(b *Builder) {
		switch n := len(preds); {
		case n == 0:
			if op == "AND" {
				b.WriteString("TRUE")
			} else {
				b.WriteString("FALSE")
			}
		case n == 1:
			b.Join(preds[0])
		default:
			for i, p := range preds {
				if i > 0 {
					b.Pad().WriteString(op).Pad()
				}
				b.Wrap(func(b *Builder) { b.Join(p) })
			}
		}
	})
}

// Not wraps the given predicate with the not predicate.
func Not(pred *Predicate) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("NOT ").Wrap(func(b *Builder) { b.Join(pred) })
	})
}

// Exists returns the `Exists` predicate.
func Exists(query Querier) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("EXISTS ").Wrap(func(b *Builder) { b.Join(query) })
	})
}

// NotExists returns the `NOT Exists` predicate.
func NotExists(query Querier) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("NOT EXISTS ").Wrap(func(b *Builder) { b.Join(query) })
	})
}

// SelectTable is a table reference used in FROM and JOIN clauses.
type SelectTable struct {
	name string
	as   string
}

// Table returns a new table selector.
//
//	t1 := Table("users").As("u")
//	return Select(t1.C("name"))
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// As adds the AS clause to the table selector.
func (t *SelectTable) As(alias string) *SelectTable {
	t.as = alias
	return t
}

// Name returns the table name.
func (t *SelectTable) Name() string { return t.name }

// Alias returns the alias of the table, or its name if it has none.
func (t *SelectTable) Alias() string {
	if t.as != "" {
		return t.as
	}
	return t.name
}

// C returns a formatted string for the table column.
func (t *SelectTable) C(column string) string {
	return Quote(t.Alias()) + "." + Quote(column)
}

func (t *SelectTable) ref(b *Builder) {
	b.Ident(t.name)
	if t.as != "" {
		b.WriteString(" AS ").Ident(t.as)
	}
}

type (
	selection struct {
		col string
		q   Querier
		as  string
	}
	joinClause struct {
		kind  string
		table *SelectTable
		on    *Predicate
	}
)

// Selector is a builder for the `SELECT` statement.
type Selector struct {
	from      *SelectTable
	selection []selection
	distinct  bool
	joins     []joinClause
	where     *Predicate
	order     []Querier
	limit     *int
	offset    *int
	lock      bool
	errs      []error
}

// Select returns a new selector for the `SELECT` statement.
//
//	t1 := Table("users").As("u")
//	Select(t1.C("name")).From(t1)
func Select(columns ...string) *Selector {
	return (&Selector{}).Select(columns...)
}

// Select changes the columns selection of the SELECT statement.
func (s *Selector) Select(columns ...string) *Selector {
	s.selection = s.selection[:0]
	return s.AppendSelect(columns...)
}

// AppendSelect appends additional columns to the SELECT statement.
func (s *Selector) AppendSelect(columns ...string) *Selector {
	for _, c := range columns {
		s.selection = append(s.selection, selection{col: c})
	}
	return s
}

// AppendSelectExprAs appends an expression with an alias to the SELECT statement.
func (s *Selector) AppendSelectExprAs(expr Querier, as string) *Selector {
	s.selection = append(s.selection, selection{q: expr, as: as})
	return s
}

// From sets the source of `FROM` clause.
func (s *Selector) From(t *SelectTable) *Selector {
	s.from = t
	return s
}

// Table returns the table of the FROM clause.
func (s *Selector) Table() *SelectTable {
	return s.from
}

// TableName returns the name of the selected table.
func (s *Selector) TableName() string {
	if s.from == nil {
		return ""
	}
	return s.from.name
}

// C returns a formatted string for a selected column from this statement.
func (s *Selector) C(column string) string {
	if s.from == nil {
		return Quote(column)
	}
	return s.from.C(column)
}

// Join appends a `JOIN` clause to the statement.
func (s *Selector) Join(t *SelectTable) *Selector {
	s.joins = append(s.joins, joinClause{kind: "JOIN", table: t})
	return s
}

// LeftJoin appends a `LEFT JOIN` clause to the statement.
func (s *Selector) LeftJoin(t *SelectTable) *Selector {
	s.joins = append(s.joins, joinClause{kind: "LEFT JOIN", table: t})
	return s
}

// On sets the `ON` clause of the last `JOIN` operation to an equality of two columns.
func (s *Selector) On(c1, c2 string) *Selector {
	return s.OnP(ColumnsEQ(c1, c2))
}

// OnP sets or appends the given predicate for the `ON` clause of the last `JOIN` operation.
func (s *Selector) OnP(p *Predicate) *Selector {
	if len(s.joins) == 0 {
		s.errs = append(s.errs, errors.New("sql: OnP called without a JOIN clause"))
		return s
	}
	j := &s.joins[len(s.joins)-1]
	if j.on == nil {
		j.on = p
	} else {
		j.on = And(j.on, p)
	}
	return s
}

// Joined reports if the given alias is already joined to the statement.
func (s *Selector) Joined(alias string) bool {
	for _, j := range s.joins {
		if j.table.Alias() == alias {
			return true
		}
	}
	return false
}

// Where sets or appends the given predicate to the statement.
func (s *Selector) Where(p *Predicate) *Selector {
	if p == nil {
		return s
	}
	if s.where == nil {
		s.where = p
	} else {
		s.where = And(s.where, p)
	}
	return s
}

// P returns the predicate of a statement.
func (s *Selector) P() *Predicate {
	return s.where
}

// Distinct adds the DISTINCT keyword to the `SELECT` statement.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// IsDistinct reports if the statement selects distinct rows.
func (s *Selector) IsDistinct() bool {
	return s.distinct
}

// OrderBy appends the `ORDER BY` clause to the `SELECT` statement.
func (s *Selector) OrderBy(columns ...string) *Selector {
	for _, c := range columns {
		c := c
		s.order = append(s.order, ExprFunc(func(b *Builder) { b.Ident(c) }))
	}
	return s
}

// OrderExpr appends the `ORDER BY` clause to the `SELECT` statement with custom expression.
func (s *Selector) OrderExpr(exprs ...Querier) *Selector {
	s.order = append(s.order, exprs...)
	return s
}

// ClearOrder clears the ORDER BY clause to be empty.
func (s *Selector) ClearOrder() *Selector {
	s.order = nil
	return s
}

// Desc adds the DESC suffix to the given column.
func Desc(column string) string {
	b := &Builder{}
	b.Ident(column).WriteString(" DESC")
	return b.String()
}

// Asc adds the ASC suffix to the given column.
func Asc(column string) string {
	b := &Builder{}
	b.Ident(column).WriteString(" ASC")
	return b.String()
}

// Limit adds the `LIMIT` clause to the `SELECT` statement.
func (s *Selector) Limit(limit int) *Selector {
	s.limit = &limit
	return s
}

// Offset adds the `OFFSET` clause to the `SELECT` statement.
func (s *Selector) Offset(offset int) *Selector {
	s.offset = &offset
	return s
}

// ForUpdate sets the lock configuration for suffixing the `SELECT`
// statement with the `FOR UPDATE` clause.
func (s *Selector) ForUpdate() *Selector {
	s.lock = true
	return s
}

// Count sets the Select statement to be a `SELECT COUNT(*)`. Given columns
// are counted distinctly.
func (s *Selector) Count(columns ...string) *Selector {
	b := &Builder{}
	b.WriteString("COUNT(")
	if len(columns) == 0 {
		b.WriteByte('*')
	} else {
		b.WriteString("DISTINCT ").IdentComma(columns...)
	}
	b.WriteByte(')')
	s.selection = []selection{{col: b.String()}}
	s.distinct = false
	s.order = nil
	return s
}

// Clone returns a duplicate of the selector, including all associated steps. It can be
// used to prepare common SELECT statements and use them differently after the clone is made.
func (s *Selector) Clone() *Selector {
	c := *s
	c.selection = append([]selection(nil), s.selection...)
	c.joins = append([]joinClause(nil), s.joins...)
	c.order = append([]Querier(nil), s.order...)
	c.errs = append([]error(nil), s.errs...)
	if s.from != nil {
		t := *s.from
		c.from = &t
	}
	return &c
}

// Err returns the errors added to the selector.
func (s *Selector) Err() error {
	return errors.Join(s.errs...)
}

func (s *Selector) rawQuery() (string, []any) {
	b := &Builder{}
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	if len(s.selection) == 0 {
		b.WriteByte('*')
	}
	for i, sel := range s.selection {
		if i > 0 {
			b.Comma()
		}
		if sel.q != nil {
			b.Join(sel.q)
		} else {
			b.Ident(sel.col)
		}
		if sel.as != "" {
			b.WriteString(" AS ").Ident(sel.as)
		}
	}
	if s.from != nil {
		b.WriteString(" FROM ")
		s.from.ref(b)
	}
	for _, j := range s.joins {
		b.Pad().WriteString(j.kind).Pad()
		j.table.ref(b)
		if j.on != nil {
			b.WriteString(" ON ").Join(j.on)
		}
	}
	if s.where != nil {
		b.WriteString(" WHERE ").Join(s.where)
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range s.order {
			if i > 0 {
				b.Comma()
			}
			b.Join(o)
		}
	}
	if s.limit != nil {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	}
	if s.offset != nil {
		b.WriteString(" OFFSET ").WriteString(strconv.Itoa(*s.offset))
	}
	if s.lock {
		b.WriteString(" FOR UPDATE")
	}
	return b.rawQuery()
}

// Query returns query representation of a `SELECT` statement.
func (s *Selector) Query() (string, []any) {
	return numbered(s.rawQuery())
}

// UpdateBuilder is a builder for `UPDATE` statement.
type UpdateBuilder struct {
	table     string
	sets      []selection
	where     *Predicate
	returning []string
}

// Update creates a builder for the `UPDATE` statement.
//
//	Update("users").Set("name", "foo").Set("age", 10)
func Update(table string) *UpdateBuilder { return &UpdateBuilder{table: table} }

// Set sets a column to a given value. The value may be a Querier expression.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	if q, ok := v.(Querier); ok {
		return u.SetExpr(column, q)
	}
	u.sets = append(u.sets, selection{col: column, q: argQuerier{v}})
	return u
}

// SetExpr sets a column to the given expression.
func (u *UpdateBuilder) SetExpr(column string, expr Querier) *UpdateBuilder {
	u.sets = append(u.sets, selection{col: column, q: expr})
	return u
}

// Where adds a where predicate for update statement.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if u.where == nil {
		u.where = p
	} else {
		u.where = And(u.where, p)
	}
	return u
}

// Returning adds the `RETURNING` clause to the update statement.
func (u *UpdateBuilder) Returning(columns ...string) *UpdateBuilder {
	u.returning = columns
	return u
}

// Empty reports whether this builder does not contain update changes.
func (u *UpdateBuilder) Empty() bool {
	return len(u.sets) == 0
}

func (u *UpdateBuilder) rawQuery() (string, []any) {
	b := &Builder{}
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, s := range u.sets {
		if i > 0 {
			b.Comma()
		}
		b.Ident(s.col).WriteString(" = ").Arg(s.q)
	}
	if u.where != nil {
		b.WriteString(" WHERE ").Join(u.where)
	}
	if len(u.returning) > 0 {
		b.WriteString(" RETURNING ").IdentComma(u.returning...)
	}
	return b.rawQuery()
}

// Query returns query representation of an `UPDATE` statement.
func (u *UpdateBuilder) Query() (string, []any) {
	return numbered(u.rawQuery())
}

// argQuerier binds a plain value as a single placeholder.
type argQuerier struct{ v any }

func (a argQuerier) rawQuery() (string, []any) { return "?", []any{a.v} }

func (a argQuerier) Query() (string, []any) { return numbered(a.rawQuery()) }

// DeleteBuilder is a builder for `DELETE` statement.
type DeleteBuilder struct {
	table string
	where *Predicate
}

// Delete creates a builder for the `DELETE` statement.
//
//	Delete("users").Where(EQ("name", "foo"))
func Delete(table string) *DeleteBuilder { return &DeleteBuilder{table: table} }

// Where appends a where predicate to the `DELETE` statement.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if d.where == nil {
		d.where = p
	} else {
		d.where = And(d.where, p)
	}
	return d
}

func (d *DeleteBuilder) rawQuery() (string, []any) {
	b := &Builder{}
	b.WriteString("DELETE FROM ").Ident(d.table)
	if d.where != nil {
		b.WriteString(" WHERE ").Join(d.where)
	}
	return b.rawQuery()
}

// Query returns query representation of a `DELETE` statement.
func (d *DeleteBuilder) Query() (string, []any) {
	return numbered(d.rawQuery())
}

// InsertBuilder is a builder for `INSERT INTO` statement.
type InsertBuilder struct {
	table     string
	columns   []string
	values    [][]any
	returning []string
}

// Insert creates a builder for the `INSERT INTO` statement.
//
//	Insert("users").
//		Columns("name", "age").
//		Values("a8m", 10).
//		Values("foo", 20)
func Insert(table string) *InsertBuilder { return &InsertBuilder{table: table} }

// Columns sets the columns of the insert statement.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values append a value tuple for the insert statement.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// Returning adds the `RETURNING` clause to the insert statement.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

func (i *InsertBuilder) rawQuery() (string, []any) {
	b := &Builder{}
	b.WriteString("INSERT INTO ").Ident(i.table)
	if len(i.columns) == 0 {
		b.WriteString(" DEFAULT VALUES")
	} else {
		b.Pad().Wrap(func(b *Builder) { b.IdentComma(i.columns...) })
		b.WriteString(" VALUES ")
		for j, v := range i.values {
			if j > 0 {
				b.Comma()
			}
			b.Wrap(func(b *Builder) { b.Args(v...) })
		}
	}
	if len(i.returning) > 0 {
		b.WriteString(" RETURNING ").IdentComma(i.returning...)
	}
	return b.rawQuery()
}

// Query returns query representation of an `INSERT INTO` statement.
func (i *InsertBuilder) Query() (string, []any) {
	return numbered(i.rawQuery())
}
