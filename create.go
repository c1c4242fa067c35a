package arrayrel

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/dialect/sql/sqlarray"
	"github.com/syssam/arrayrel/graph"
)

// Create inserts a row of the named model and returns it as read back
// from the database. Values are keyed by field or relation name; relation
// values are keys or entities of the target. For a model with ancestors,
// the ancestor rows are inserted first, root first, and share the key
// generated for the root row.
//
//	pub, err := client.Create(ctx, "Publication", map[string]any{"title": "The Python Journal"})
//	art, err := client.Create(ctx, "Article", map[string]any{"headline": "Django lets you build web apps easily", "publications": []any{pub}})
func (c *Client) Create(ctx context.Context, model string, values map[string]any) (*Record, error) {
	m := c.graph.Model(model)
	if m == nil {
		return nil, fmt.Errorf("arrayrel: unknown model %q", model)
	}
	var rec *Record
	err := c.atomic(ctx, func(c *Client) error {
		id, err := c.insert(ctx, m, values)
		if err != nil {
			return err
		}
		rec, err = c.Get(ctx, m.Name, id)
		return err
	})
	if err != nil {
		return nil, mutationError(m, "create", err)
	}
	return rec, nil
}

type insertRow struct {
	columns []string
	values  []any
}

func (r *insertRow) add(column string, v any) {
	r.columns = append(r.columns, column)
	r.values = append(r.values, v)
}

// insert inserts the rows of the inheritance chain of m and returns the
// key of the new row.
func (c *Client) insert(ctx context.Context, m *graph.Model, values map[string]any) (any, error) {
	chain := append([]*graph.Model{m}, m.Ancestors()...)
	slices.Reverse(chain)
	rows := make(map[*graph.Model]*insertRow, len(chain))
	for _, cm := range chain {
		rows[cm] = &insertRow{}
	}
	var (
		id      any
		mirrors = make(map[*graph.Relation][]any)
	)
	for _, name := range slices.Sorted(maps.Keys(values)) {
		v := values[name]
		if f := m.Field(name); f != nil {
			if !isKey(m, f) {
				rows[f.Model].add(f.Column, v)
				continue
			}
			k, err := m.IDType().Normalize(v)
			if err != nil {
				return nil, NewValidationError(name, err)
			}
			id = k
			continue
		}
		r := m.Relation(name)
		if r == nil {
			return nil, NewValidationError(name, ErrUnknownField)
		}
		var ids []any
		if v != nil {
			var err error
			if ids, err = c.resolveIDs(r.Target, v); err != nil {
				return nil, err
			}
		}
		if !r.AllowDuplicates {
			ids = sqlarray.Distinct(ids)
		}
		rows[r.Owner].add(r.Column, sqlarray.Of(r.ElemType(), ids))
		if r.Symmetric && len(ids) > 0 {
			mirrors[r] = ids
		}
	}
	for _, cm := range chain {
		for _, f := range cm.Fields {
			if _, ok := values[f.Name]; !ok && !f.Optional {
				return nil, NewValidationError(f.Name, ErrMissingValue)
			}
		}
	}
	for _, cm := range chain {
		row := rows[cm]
		ins := sql.Insert(cm.Table)
		if id == nil {
			// The root row generates the key.
			if len(row.columns) > 0 {
				ins.Columns(row.columns...).Values(row.values...)
			}
			ins.Returning(cm.ID.Column)
			err := c.queryRows(ctx, ins, func(rows *sql.Rows) error {
				dest := scanDest(cm.IDType(), false)
				if err := rows.Scan(dest); err != nil {
					return err
				}
				var err error
				id, err = scanValue(cm.IDType(), dest)
				return err
			})
			if err != nil {
				return nil, err
			}
			if id == nil {
				return nil, fmt.Errorf("arrayrel: insert into %q returned no key", cm.Table)
			}
			continue
		}
		ins.Columns(cm.ID.Column).Columns(row.columns...).Values(append([]any{id}, row.values...)...)
		if _, err := c.exec(ctx, ins); err != nil {
			return nil, err
		}
	}
	for _, r := range slices.SortedFunc(maps.Keys(mirrors), func(a, b *graph.Relation) int {
		return strings.Compare(a.Name, b.Name)
	}) {
		u := sqlarray.AppendDistinct(r.Column, r.ElemType(), id).Apply(sql.Update(r.Owner.Table)).
			Where(sqlarray.In(r.Owner.ID.Column, r.ElemType(), mirrors[r]))
		if _, err := c.exec(ctx, u); err != nil {
			return nil, err
		}
	}
	return id, nil
}
