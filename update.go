package arrayrel

import (
	"context"

	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/dialect/sql/sqlarray"
	"github.com/syssam/arrayrel/graph"
)

// Set returns an assignment setting a scalar field to the given value.
// The name is a field name or column name.
//
//	client.Query("Article").Filter("headline", "draft").Update(ctx, arrayrel.Set("headline", "final"))
func Set(name string, v any) sqlarray.Assignment {
	return sqlarray.Func(name, func(string) sql.Querier {
		return sql.ExprFunc(func(b *sql.Builder) {
			b.Arg(v)
		})
	})
}

// assignment is an assignment resolved against the models of a query.
type assignment struct {
	sqlarray.Assignment
	owner  *graph.Model
	name   string
	column string
}

// resolveAssigns maps the assignments to the tables of the inheritance
// chain. An assignment's column is a field, relation or column name.
func (q *Query) resolveAssigns(as []sqlarray.Assignment) ([]assignment, error) {
	out := make([]assignment, 0, len(as))
	for _, a := range as {
		r, err := q.resolveAssign(a)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (q *Query) resolveAssign(a sqlarray.Assignment) (assignment, error) {
	for m := q.model; m != nil; m = m.Parent {
		if m.ID.Name == a.Column || m.ID.Column == a.Column || a.Column == graph.PK {
			return assignment{}, NewValidationError(a.Column, ErrKeyAssign)
		}
		for _, f := range m.Fields {
			if f.Name == a.Column || f.Column == a.Column {
				return assignment{Assignment: a, owner: m, name: f.Name, column: f.Column}, nil
			}
		}
		for _, r := range m.Relations {
			if r.Name == a.Column || r.Column == a.Column {
				return assignment{Assignment: a, owner: m, name: r.Name, column: r.Column}, nil
			}
		}
	}
	return assignment{}, &LookupError{Model: q.model.Name, Lookup: a.Column, Err: ErrUnknownField}
}

// Update applies the assignments to all matching rows and returns the
// number of updated rows. Assignments of columns stored on ancestor tables
// update those tables, all in one transaction. Symmetric relations are not
// mirrored by bulk updates.
//
//	client.Query("Article").Filter("headline__startswith", "Go").
//		Update(ctx, sqlarray.AppendDistinct("publications", "bigint", 7))
func (q *Query) Update(ctx context.Context, as ...sqlarray.Assignment) (int, error) {
	if err := q.err(); err != nil {
		return 0, err
	}
	if len(as) == 0 {
		return 0, nil
	}
	rs, err := q.resolveAssigns(as)
	if err != nil {
		return 0, err
	}
	ids, err := q.idSelector()
	if err != nil {
		return 0, err
	}
	var (
		owners []*graph.Model
		groups = make(map[*graph.Model][]assignment)
	)
	for _, a := range rs {
		if _, ok := groups[a.owner]; !ok {
			owners = append(owners, a.owner)
		}
		groups[a.owner] = append(groups[a.owner], a)
	}
	var n int64
	err = q.client.atomic(ctx, func(c *Client) error {
		for _, m := range owners {
			u := sql.Update(m.Table)
			for _, a := range groups[m] {
				u.SetExpr(a.column, a.Expr(sql.Quote(a.column)))
			}
			k, err := c.exec(ctx, u.Where(sql.In(m.ID.Column, ids)))
			if err != nil {
				return err
			}
			n = max(n, k)
		}
		return nil
	})
	if err != nil {
		return 0, mutationError(q.model, "update", err)
	}
	return int(n), nil
}

// Format returns the matching records with the assignments applied to the
// returned values, without writing them.
func (q *Query) Format(ctx context.Context, as ...sqlarray.Assignment) ([]*Record, error) {
	if err := q.err(); err != nil {
		return nil, err
	}
	rs, err := q.resolveAssigns(as)
	if err != nil {
		return nil, err
	}
	cols, err := q.columns()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]assignment, len(rs))
	for _, a := range rs {
		byName[a.name] = a
	}
	for i, c := range cols {
		if a, ok := byName[c.name]; ok && c.name != "" {
			cols[i].value = a.Expr(c.expr)
		}
	}
	recs, err := q.load(ctx, "format", cols)
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

// Delete deletes the matching rows and returns their number. In one
// transaction, the rows are locked, the pre-delete listeners run in
// registration order, and the rows of the model, its descendants and its
// ancestors are deleted.
func (q *Query) Delete(ctx context.Context) (int, error) {
	if err := q.err(); err != nil {
		return 0, err
	}
	var n int64
	err := q.client.atomic(ctx, func(c *Client) error {
		ids, err := q.lock(ctx, c)
		if err != nil || len(ids) == 0 {
			return err
		}
		if err := c.listeners.preDelete(ctx, c, &DeleteEvent{Model: q.model, IDs: ids}); err != nil {
			return err
		}
		n, err = c.deleteRows(ctx, q.model, ids)
		return err
	})
	if err != nil {
		return 0, mutationError(q.model, "delete", err)
	}
	return int(n), nil
}

// lock selects the keys of the matching rows FOR UPDATE on the given
// (transactional) client.
func (q *Query) lock(ctx context.Context, c *Client) ([]any, error) {
	sel, err := q.idSelector()
	if err != nil {
		return nil, err
	}
	var ids []any
	err = c.queryRows(ctx, sel.ForUpdate(), func(rows *sql.Rows) error {
		dest := scanDest(q.model.IDType(), false)
		if err := rows.Scan(dest); err != nil {
			return err
		}
		id, err := scanValue(q.model.IDType(), dest)
		ids = append(ids, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sqlarray.Distinct(ids), nil
}

// deleteRows deletes the rows with the given keys from the tables of the
// model's inheritance chain, the deepest tables first.
func (c *Client) deleteRows(ctx context.Context, m *graph.Model, ids []any) (int64, error) {
	elem := m.IDType().SQLType()
	desc := m.Descendants()
	for i := len(desc) - 1; i >= 0; i-- {
		d := desc[i]
		if _, err := c.exec(ctx, sql.Delete(d.Table).Where(sqlarray.In(d.ID.Column, elem, ids))); err != nil {
			return 0, err
		}
	}
	n, err := c.exec(ctx, sql.Delete(m.Table).Where(sqlarray.In(m.ID.Column, elem, ids)))
	if err != nil {
		return 0, err
	}
	for _, a := range m.Ancestors() {
		if _, err := c.exec(ctx, sql.Delete(a.Table).Where(sqlarray.In(a.ID.Column, elem, ids))); err != nil {
			return 0, err
		}
	}
	return n, nil
}
