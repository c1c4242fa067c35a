package arrayrel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/dialect/sql/sqlgraph"
	"github.com/syssam/arrayrel/graph"
)

// Query is the query builder of a model. Builder methods modify the
// query in place and return it for chaining; use Clone to fork a query.
type Query struct {
	client   *Client
	model    *graph.Model
	scope    *scope
	root     *sql.SelectTable
	wheres   []*sql.Predicate
	preds    []func(*sql.Selector)
	order    []orderTerm
	ordered  bool
	distinct bool
	limit    *int
	offset   *int
	related  []string
	errs     []error
}

type orderTerm struct {
	expr sql.Querier
	desc bool
}

// Query returns a query of all rows of the named model. Rows of a model
// with ancestors are read together with their ancestor rows.
func (c *Client) Query(model string) *Query {
	m := c.graph.Model(model)
	if m == nil {
		return &Query{client: c, errs: []error{fmt.Errorf("arrayrel: unknown model %q", model)}}
	}
	return c.newQuery(m)
}

func (c *Client) newQuery(m *graph.Model) *Query {
	s := &scope{cfg: &c.config, planner: c.planner, aliases: sqlgraph.NewAliases("t")}
	root, _ := s.aliases.Table(s.prefix, m.Table)
	q := &Query{client: c, model: m, scope: s, root: root}
	if _, err := s.table(s.prefix, m, root, m.Root()); err != nil {
		q.errs = append(q.errs, err)
	}
	return q
}

// Model returns the queried model.
func (q *Query) Model() *graph.Model {
	return q.model
}

// Filter adds a lookup condition. Lookups are field, relation and
// reverse relation names separated by "__", optionally ending with an
// operator:
//
//	client.Query("Article").Filter("publications__title__startswith", "Science")
//	client.Query("Article").Filter("publications__contains", []int{1, 2})
//	client.Query("Publication").Filter("article", a)
func (q *Query) Filter(lookup string, v any) *Query {
	if q.model == nil {
		return q
	}
	p, err := q.scope.predicate(q.root, q.model, lookup, v)
	if err != nil {
		q.errs = append(q.errs, err)
		return q
	}
	q.wheres = append(q.wheres, p)
	return q
}

// Exclude adds the negation of a lookup condition. The lookup is matched
// in a sub-select, so rows reached over several related rows are
// excluded if any of them match.
func (q *Query) Exclude(lookup string, v any) *Query {
	if q.model == nil {
		return q
	}
	s := q.scope.sub()
	t, _ := s.aliases.Table(s.prefix, q.model.Table)
	p, err := s.predicate(t, q.model, lookup, v)
	if err != nil {
		q.errs = append(q.errs, err)
		return q
	}
	sub := sql.Select(t.C(q.model.ID.Column)).From(t)
	s.apply(sub)
	sub.Where(p)
	q.wheres = append(q.wheres, sql.NotIn(q.root.C(q.model.ID.Column), sub))
	return q
}

// Where adds raw predicates on the selector. The selector's table is the
// model's own table.
func (q *Query) Where(ps ...func(*sql.Selector)) *Query {
	q.preds = append(q.preds, ps...)
	return q
}

// where adds a predicate built against the root table.
func (q *Query) where(p *sql.Predicate) *Query {
	q.wheres = append(q.wheres, p)
	return q
}

// Order sets the ordering of the query, replacing the default ordering of
// the model. A "-" prefix orders descending. Calling Order without fields
// removes any ordering.
func (q *Query) Order(fields ...string) *Query {
	q.ordered = true
	q.order = nil
	if q.model == nil {
		return q
	}
	for _, name := range fields {
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(name, "-")
		f := q.model.Field(name)
		if f == nil {
			q.errs = append(q.errs, &LookupError{Model: q.model.Name, Lookup: name, Err: ErrUnknownField})
			continue
		}
		col, err := q.scope.fieldColumn(q.scope.prefix, q.model, q.root, f)
		if err != nil {
			q.errs = append(q.errs, err)
			continue
		}
		q.order = append(q.order, orderTerm{expr: sql.Raw(col), desc: desc})
	}
	return q
}

// orderExpr sets an expression as the ordering of the query.
func (q *Query) orderExpr(expr sql.Querier) *Query {
	q.ordered = true
	q.order = []orderTerm{{expr: expr}}
	return q
}

// Distinct removes duplicate rows, such as those produced by lookups
// spanning several related rows.
func (q *Query) Distinct() *Query {
	q.distinct = true
	return q
}

// Limit the number of records to be returned by this query.
func (q *Query) Limit(limit int) *Query {
	q.limit = &limit
	return q
}

// Offset to start from.
func (q *Query) Offset(offset int) *Query {
	q.offset = &offset
	return q
}

// WithRelated loads the given relations or reverse accessors of the
// returned records. The loaded records are available through
// Record.Related.
func (q *Query) WithRelated(names ...string) *Query {
	q.related = append(q.related, names...)
	return q
}

// Clone returns a duplicate of the query.
func (q *Query) Clone() *Query {
	if q == nil {
		return nil
	}
	c := *q
	if q.scope != nil {
		c.scope = q.scope.clone()
	}
	c.wheres = slices.Clone(q.wheres)
	c.preds = slices.Clone(q.preds)
	c.order = slices.Clone(q.order)
	c.related = slices.Clone(q.related)
	c.errs = slices.Clone(q.errs)
	return &c
}

func (q *Query) err() error {
	if len(q.errs) > 0 {
		return errors.Join(q.errs...)
	}
	if q.model == nil {
		return errors.New("arrayrel: query without a model")
	}
	return nil
}

// columns returns the select list of the model: the key, then the fields
// and relations of every table of the inheritance chain, root first.
func (q *Query) columns() ([]selected, error) {
	cols := []selected{{expr: q.root.C(q.model.ID.Column), typ: q.model.IDType()}}
	chain := append([]*graph.Model{q.model}, q.model.Ancestors()...)
	for i := len(chain) - 1; i >= 0; i-- {
		m := chain[i]
		t, err := q.scope.table(q.scope.prefix, q.model, q.root, m)
		if err != nil {
			return nil, err
		}
		for _, f := range m.Fields {
			cols = append(cols, selected{name: f.Name, expr: t.C(f.Column), typ: f.Type})
		}
		for _, r := range m.Relations {
			cols = append(cols, selected{name: r.Name, expr: t.C(r.Column), typ: r.Target.IDType(), array: true})
		}
	}
	return cols, nil
}

// terms returns the ordering terms: the explicit ones, or the default
// ordering of the nearest model in the chain that declares one.
func (q *Query) terms() ([]orderTerm, error) {
	if q.ordered {
		return q.order, nil
	}
	for m := q.model; m != nil; m = m.Parent {
		if len(m.Ordering) == 0 {
			continue
		}
		terms := make([]orderTerm, 0, len(m.Ordering))
		for _, o := range m.Ordering {
			col, err := q.scope.fieldColumn(q.scope.prefix, q.model, q.root, o.Field)
			if err != nil {
				return nil, err
			}
			terms = append(terms, orderTerm{expr: sql.Raw(col), desc: o.Desc})
		}
		return terms, nil
	}
	return nil, nil
}

// applyWhere adds the joins and conditions of the query to the selector.
func (q *Query) applyWhere(sel *sql.Selector) {
	q.scope.apply(sel)
	for _, p := range q.wheres {
		sel.Where(p)
	}
	for _, p := range q.preds {
		p(sel)
	}
}

// applyOrder adds the ordering and pagination to the selector. Under
// DISTINCT, ordering expressions are added to the select list and
// referenced by alias; the number of added columns is returned.
func (q *Query) applyOrder(sel *sql.Selector, distinct bool) (int, error) {
	terms, err := q.terms()
	if err != nil {
		return 0, err
	}
	for i, o := range terms {
		expr := o.expr
		if distinct {
			as := fmt.Sprintf("__o%d", i)
			sel.AppendSelectExprAs(o.expr, as)
			expr = sql.Raw(sql.Quote(as))
		}
		if o.desc {
			sel.OrderExpr(sql.ExprFunc(func(b *sql.Builder) {
				b.Join(expr).WriteString(" DESC")
			}))
		} else {
			sel.OrderExpr(expr)
		}
	}
	if q.limit != nil {
		sel.Limit(*q.limit)
	}
	if q.offset != nil {
		sel.Offset(*q.offset)
	}
	if distinct {
		return len(terms), nil
	}
	return 0, nil
}

// selector returns the SELECT statement of the given columns.
func (q *Query) selector(cols []selected) (*sql.Selector, int, error) {
	sel := sql.Select().From(q.root)
	for _, c := range cols {
		if c.value != nil {
			sel.AppendSelectExprAs(c.value, c.name)
		} else {
			sel.AppendSelect(c.expr)
		}
	}
	q.applyWhere(sel)
	if q.distinct {
		sel.Distinct()
	}
	extra, err := q.applyOrder(sel, q.distinct)
	if err != nil {
		return nil, 0, err
	}
	return sel, extra, nil
}

// idSelector returns the query as a sub-select of keys. Ordering is kept
// only if it is needed by pagination.
func (q *Query) idSelector() (*sql.Selector, error) {
	if err := q.err(); err != nil {
		return nil, err
	}
	sel := sql.Select(q.root.C(q.model.ID.Column)).From(q.root)
	q.applyWhere(sel)
	if q.limit != nil || q.offset != nil {
		if _, err := q.applyOrder(sel, false); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

// load runs the select of the given columns and scans the records.
func (q *Query) load(ctx context.Context, op string, cols []selected) ([]*Record, error) {
	sel, extra, err := q.selector(cols)
	if err != nil {
		return nil, err
	}
	var recs []*Record
	err = q.client.queryRows(ctx, sel, func(rows *sql.Rows) error {
		rec, err := scanRecord(rows, q.model, cols, extra)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, NewQueryError(q.model.Name, op, err)
	}
	return recs, nil
}

// All executes the query and returns the matching records.
func (q *Query) All(ctx context.Context) ([]*Record, error) {
	if err := q.err(); err != nil {
		return nil, err
	}
	cols, err := q.columns()
	if err != nil {
		return nil, err
	}
	recs, err := q.load(ctx, "all", cols)
	if err != nil {
		return nil, err
	}
	if len(q.related) > 0 && len(recs) > 0 {
		if err := q.client.prefetch(ctx, q.model, recs, q.related); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// IDs executes the query and returns the keys of the matching rows.
func (q *Query) IDs(ctx context.Context) ([]any, error) {
	if err := q.err(); err != nil {
		return nil, err
	}
	recs, err := q.load(ctx, "ids", []selected{{expr: q.root.C(q.model.ID.Column), typ: q.model.IDType()}})
	if err != nil {
		return nil, err
	}
	ids := make([]any, len(recs))
	for i, r := range recs {
		ids[i] = r.id
	}
	return ids, nil
}

// Count returns the number of matching rows.
func (q *Query) Count(ctx context.Context) (int, error) {
	if err := q.err(); err != nil {
		return 0, err
	}
	if q.limit != nil || q.offset != nil {
		ids, err := q.IDs(ctx)
		return len(ids), err
	}
	sel := sql.Select().From(q.root)
	q.applyWhere(sel)
	if q.distinct {
		sel.Count(q.root.C(q.model.ID.Column))
	} else {
		sel.Count()
	}
	var n sql.NullInt64
	err := q.client.queryRows(ctx, sel, func(rows *sql.Rows) error {
		return rows.Scan(&n)
	})
	if err != nil {
		return 0, NewQueryError(q.model.Name, "count", err)
	}
	return int(n.Int64), nil
}

// Exist reports if any row matches the query.
func (q *Query) Exist(ctx context.Context) (bool, error) {
	ids, err := q.Clone().Limit(1).IDs(ctx)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// First returns the first matching record, ordered by key if the query
// has no ordering. It returns a *NotFoundError if nothing matches.
func (q *Query) First(ctx context.Context) (*Record, error) {
	c := q.Clone()
	if err := c.err(); err != nil {
		return nil, err
	}
	if terms, err := c.terms(); err == nil && len(terms) == 0 {
		c.orderExpr(sql.Raw(c.root.C(c.model.ID.Column)))
	}
	recs, err := c.Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, NewNotFoundError(q.model.Name)
	}
	return recs[0], nil
}

// Only returns the single matching record. It returns a *NotFoundError
// if nothing matches and a *NotSingularError if more than one row does.
func (q *Query) Only(ctx context.Context) (*Record, error) {
	recs, err := q.Clone().Limit(2).All(ctx)
	if err != nil {
		return nil, err
	}
	switch len(recs) {
	case 1:
		return recs[0], nil
	case 0:
		return nil, NewNotFoundError(q.model.Name)
	default:
		return nil, NewNotSingularError(q.model.Name)
	}
}

// Get returns the record of the named model with the given key.
func (c *Client) Get(ctx context.Context, model string, id any) (*Record, error) {
	q := c.Query(model)
	if q.model == nil {
		return nil, q.err()
	}
	rec, err := q.Filter(graph.PK, id).Only(ctx)
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nil, NewNotFoundErrorWithID(model, id)
	}
	return rec, err
}
