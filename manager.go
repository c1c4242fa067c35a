package arrayrel

import (
	"context"
	"fmt"
	"slices"

	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/dialect/sql/sqlarray"
	"github.com/syssam/arrayrel/graph"
)

// Manager manages one side of an array relation for a single instance.
// On the forward side the instance owns the array column; on the reverse
// side the instance is the target and the managed rows are the owners
// whose arrays hold its key.
type Manager struct {
	client  *Client
	rel     *graph.Relation
	reverse bool
	model   *graph.Model
	name    string
	pk      any
}

// Related returns the manager of the named forward relation or reverse
// accessor of the entity.
func (c *Client) Related(e Entity, name string) (*Manager, error) {
	m := c.graph.Model(e.ModelName())
	if m == nil {
		return nil, fmt.Errorf("arrayrel: unknown model %q", e.ModelName())
	}
	mg := &Manager{client: c, model: m, name: name}
	switch r := m.Relation(name); {
	case r != nil:
		mg.rel = r
	default:
		r = m.Accessor(name)
		if r == nil {
			return nil, &LookupError{Model: m.Name, Lookup: name, Err: ErrUnknownField}
		}
		mg.rel, mg.reverse = r, true
	}
	if pk := e.PK(); pk != nil {
		id, err := m.IDType().Normalize(pk)
		if err != nil {
			return nil, &TypeError{Expected: m.Name, Got: fmt.Sprintf("%s with %T key", m.Name, pk)}
		}
		mg.pk = id
	}
	return mg, nil
}

// Relation returns the managed relation.
func (m *Manager) Relation() *graph.Relation {
	return m.rel
}

// Reverse reports if the manager manages the reverse side of the relation.
func (m *Manager) Reverse() bool {
	return m.reverse
}

// Bound reports if the instance has a primary key. Operations of an
// unbound manager fail with an *UnboundError.
func (m *Manager) Bound() bool {
	return m.pk != nil
}

func (m *Manager) check() error {
	if m.pk == nil {
		return &UnboundError{Model: m.model.Name, Relation: m.name}
	}
	return nil
}

// other returns the model of the rows on the other side.
func (m *Manager) other() *graph.Model {
	if m.reverse {
		return m.rel.Owner
	}
	return m.rel.Target
}

// resolve converts the given items to keys of the other side. Queries are
// executed.
func (m *Manager) resolve(ctx context.Context, items []any) ([]any, error) {
	other := m.other()
	ids := make([]any, 0, len(items))
	for _, it := range items {
		q, ok := it.(*Query)
		if !ok {
			rs, err := m.client.resolveIDs(other, it)
			if err != nil {
				return nil, err
			}
			ids = append(ids, rs...)
			continue
		}
		if err := q.err(); err != nil {
			return nil, err
		}
		if !q.model.Is(other) {
			return nil, &TypeError{Expected: other.Name, Got: q.model.Name + " query"}
		}
		qids, err := q.IDs(ctx)
		if err != nil {
			return nil, err
		}
		ids = append(ids, qids...)
	}
	return ids, nil
}

func (m *Manager) mutate(ctx context.Context, op string, fn func(*Client) error) error {
	if err := m.client.atomic(ctx, fn); err != nil {
		return mutationError(m.model, op, err)
	}
	return nil
}

// Add adds the given rows to the relation. Rows already related are kept
// once, unless the relation allows duplicates.
func (m *Manager) Add(ctx context.Context, items ...any) error {
	if err := m.check(); err != nil {
		return err
	}
	ids, err := m.resolve(ctx, items)
	if err != nil || len(ids) == 0 {
		return err
	}
	return m.mutate(ctx, "add", func(c *Client) error {
		return m.add(ctx, c, ids)
	})
}

// Remove removes every occurrence of the given rows from the relation.
func (m *Manager) Remove(ctx context.Context, items ...any) error {
	if err := m.check(); err != nil {
		return err
	}
	ids, err := m.resolve(ctx, items)
	if err != nil || len(ids) == 0 {
		return err
	}
	return m.mutate(ctx, "remove", func(c *Client) error {
		return m.remove(ctx, c, ids)
	})
}

// Clear removes all rows from the relation.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.check(); err != nil {
		return err
	}
	return m.mutate(ctx, "clear", func(c *Client) error {
		return m.clear(ctx, c)
	})
}

type setOptions struct {
	clear bool
}

// SetOption configures Manager.Set.
type SetOption func(*setOptions)

// WithClear makes Set clear the relation before adding the given rows,
// instead of applying the difference.
func WithClear() SetOption {
	return func(o *setOptions) {
		o.clear = true
	}
}

// Set replaces the related rows with the given ones. Items are resolved
// before the transaction starts. By default only the difference is
// written: missing rows are added at the end and extra rows removed, so
// setting the current rows performs no write.
func (m *Manager) Set(ctx context.Context, items []any, opts ...SetOption) error {
	if err := m.check(); err != nil {
		return err
	}
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	ids, err := m.resolve(ctx, items)
	if err != nil {
		return err
	}
	return m.mutate(ctx, "set", func(c *Client) error {
		if o.clear {
			if err := m.clear(ctx, c); err != nil {
				return err
			}
			if len(ids) == 0 {
				return nil
			}
			return m.add(ctx, c, ids)
		}
		current, err := m.current(ctx, c)
		if err != nil {
			return err
		}
		if !m.reverse && m.rel.AllowDuplicates {
			if slices.Equal(current, ids) {
				return nil
			}
			return m.replace(ctx, c, current, ids)
		}
		if rm := without(current, ids); len(rm) > 0 {
			if err := m.remove(ctx, c, rm); err != nil {
				return err
			}
		}
		if add := without(ids, current); len(add) > 0 {
			return m.add(ctx, c, add)
		}
		return nil
	})
}

// Create creates a row of the other side with the given values and adds
// it to the relation, in one transaction.
func (m *Manager) Create(ctx context.Context, values map[string]any) (*Record, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	var rec *Record
	err := m.client.atomic(ctx, func(c *Client) error {
		r, err := c.Create(ctx, m.other().Name, values)
		if err != nil {
			return err
		}
		rec = r
		if err := m.add(ctx, c, []any{r.id}); err != nil {
			return mutationError(m.model, "create", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Query returns a query of the related rows. Forward rows are ordered by
// their position in the array unless the target model declares a default
// ordering; reverse rows use the owner's default ordering.
func (m *Manager) Query() *Query {
	q := m.client.newQuery(m.other())
	if err := m.check(); err != nil {
		q.errs = append(q.errs, err)
		return q
	}
	r := m.rel
	if m.reverse {
		return q.where(sqlarray.Contains(q.root.C(r.Column), sqlarray.Of(r.ElemType(), []any{m.pk})))
	}
	arr := func() *sql.Selector {
		return sql.Select(r.Column).From(sql.Table(r.Owner.Table)).Where(sql.EQ(r.Owner.ID.Column, m.pk))
	}
	key := q.root.C(q.model.ID.Column)
	q.where(sql.P(func(b *sql.Builder) {
		b.Ident(key).WriteString(" = ANY(").Arg(arr()).WriteByte(')')
	}))
	if terms, err := q.terms(); err == nil && len(terms) == 0 {
		q.orderExpr(sql.ExprFunc(func(b *sql.Builder) {
			b.WriteString("array_position(").Arg(arr()).Comma().Ident(key).WriteByte(')')
		}))
	}
	return q
}

// Filter returns a query of the related rows matching the lookup.
func (m *Manager) Filter(lookup string, v any) *Query {
	return m.Query().Filter(lookup, v)
}

// All returns the related records.
func (m *Manager) All(ctx context.Context) ([]*Record, error) {
	return m.Query().All(ctx)
}

// IDs returns the keys of the related rows.
func (m *Manager) IDs(ctx context.Context) ([]any, error) {
	return m.Query().IDs(ctx)
}

// Count returns the number of related rows.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.Query().Count(ctx)
}

// ownerKey is the key predicate of the instance's own row.
func (m *Manager) ownerKey() *sql.Predicate {
	return sql.EQ(m.rel.Owner.ID.Column, m.pk)
}

// holders matches owner rows whose array holds the instance key.
func (m *Manager) holders() *sql.Predicate {
	return sqlarray.Contains(m.rel.Column, sqlarray.Of(m.rel.ElemType(), []any{m.pk}))
}

func (m *Manager) appendOf(values ...any) sqlarray.Assignment {
	if m.rel.AllowDuplicates {
		return sqlarray.Append(m.rel.Column, m.rel.ElemType(), values...)
	}
	return sqlarray.AppendDistinct(m.rel.Column, m.rel.ElemType(), values...)
}

func (m *Manager) add(ctx context.Context, c *Client, ids []any) error {
	r := m.rel
	if m.reverse {
		u := m.appendOf(m.pk).Apply(sql.Update(r.Owner.Table)).
			Where(sqlarray.In(r.Owner.ID.Column, r.Owner.IDType().SQLType(), ids))
		_, err := c.exec(ctx, u)
		return err
	}
	n, err := c.exec(ctx, m.appendOf(ids...).Apply(sql.Update(r.Owner.Table)).Where(m.ownerKey()))
	if err != nil {
		return err
	}
	if n == 0 {
		return NewNotFoundErrorWithID(m.model.Name, m.pk)
	}
	if r.Symmetric {
		return m.mirrorAdd(ctx, c, ids)
	}
	return nil
}

func (m *Manager) remove(ctx context.Context, c *Client, ids []any) error {
	r := m.rel
	if m.reverse {
		u := sqlarray.RemoveAll(r.Column, r.ElemType(), m.pk).Apply(sql.Update(r.Owner.Table)).
			Where(sqlarray.In(r.Owner.ID.Column, r.Owner.IDType().SQLType(), ids)).
			Where(m.holders())
		_, err := c.exec(ctx, u)
		return err
	}
	n, err := c.exec(ctx, sqlarray.RemoveAll(r.Column, r.ElemType(), ids...).Apply(sql.Update(r.Owner.Table)).Where(m.ownerKey()))
	if err != nil {
		return err
	}
	if n == 0 {
		return NewNotFoundErrorWithID(m.model.Name, m.pk)
	}
	if r.Symmetric {
		return m.mirrorRemove(ctx, c, ids)
	}
	return nil
}

func (m *Manager) clear(ctx context.Context, c *Client) error {
	r := m.rel
	if m.reverse {
		u := sqlarray.RemoveAll(r.Column, r.ElemType(), m.pk).Apply(sql.Update(r.Owner.Table)).Where(m.holders())
		_, err := c.exec(ctx, u)
		return err
	}
	var current []any
	if r.Symmetric {
		var err error
		if current, err = m.current(ctx, c); err != nil {
			return err
		}
	}
	n, err := c.exec(ctx, sqlarray.Clear(r.Column, r.ElemType()).Apply(sql.Update(r.Owner.Table)).Where(m.ownerKey()))
	if err != nil {
		return err
	}
	if n == 0 {
		return NewNotFoundErrorWithID(m.model.Name, m.pk)
	}
	if r.Symmetric && len(current) > 0 {
		return m.mirrorRemove(ctx, c, sqlarray.Distinct(current))
	}
	return nil
}

// replace writes the array as given. It is used by Set on relations
// allowing duplicates, where the order and multiplicity matter.
func (m *Manager) replace(ctx context.Context, c *Client, current, ids []any) error {
	r := m.rel
	if _, err := c.exec(ctx, sqlarray.Replace(r.Column, r.ElemType(), ids...).Apply(sql.Update(r.Owner.Table)).Where(m.ownerKey())); err != nil {
		return err
	}
	if !r.Symmetric {
		return nil
	}
	if rm := without(current, ids); len(rm) > 0 {
		if err := m.mirrorRemove(ctx, c, rm); err != nil {
			return err
		}
	}
	if add := without(ids, current); len(add) > 0 {
		return m.mirrorAdd(ctx, c, add)
	}
	return nil
}

// current returns the keys currently related, locking the rows read.
func (m *Manager) current(ctx context.Context, c *Client) ([]any, error) {
	r := m.rel
	if m.reverse {
		sel := sql.Select(r.Owner.ID.Column).From(sql.Table(r.Owner.Table)).Where(m.holders()).ForUpdate()
		var ids []any
		err := c.queryRows(ctx, sel, func(rows *sql.Rows) error {
			dest := scanDest(r.Owner.IDType(), false)
			if err := rows.Scan(dest); err != nil {
				return err
			}
			id, err := scanValue(r.Owner.IDType(), dest)
			ids = append(ids, id)
			return err
		})
		return ids, err
	}
	sel := sql.Select(r.Column).From(sql.Table(r.Owner.Table)).Where(m.ownerKey()).ForUpdate()
	var (
		ids   []any
		found bool
	)
	err := c.queryRows(ctx, sel, func(rows *sql.Rows) error {
		found = true
		dest := scanDest(r.Target.IDType(), true)
		if err := rows.Scan(dest); err != nil {
			return err
		}
		vs, err := scanValue(r.Target.IDType(), dest)
		ids, _ = vs.([]any)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, NewNotFoundErrorWithID(m.model.Name, m.pk)
	}
	return ids, nil
}

// mirrorAdd adds the instance key to the counterpart rows of a symmetric
// relation.
func (m *Manager) mirrorAdd(ctx context.Context, c *Client, ids []any) error {
	r := m.rel
	u := m.appendOf(m.pk).Apply(sql.Update(r.Owner.Table)).
		Where(sqlarray.In(r.Owner.ID.Column, r.ElemType(), sqlarray.Distinct(ids)))
	_, err := c.exec(ctx, u)
	return err
}

// mirrorRemove removes the instance key from the counterpart rows of a
// symmetric relation.
func (m *Manager) mirrorRemove(ctx context.Context, c *Client, ids []any) error {
	r := m.rel
	u := sqlarray.RemoveAll(r.Column, r.ElemType(), m.pk).Apply(sql.Update(r.Owner.Table)).
		Where(sqlarray.In(r.Owner.ID.Column, r.ElemType(), ids)).
		Where(m.holders())
	_, err := c.exec(ctx, u)
	return err
}

// without returns the distinct values of a that are not in b, in order.
func without(a, b []any) []any {
	drop := make(map[any]struct{}, len(b))
	for _, v := range b {
		drop[v] = struct{}{}
	}
	var out []any
	for _, v := range sqlarray.Distinct(a) {
		if _, ok := drop[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
