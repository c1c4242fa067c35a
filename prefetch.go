package arrayrel

import (
	"context"

	"github.com/syssam/arrayrel/dialect/sql/sqlarray"
	"github.com/syssam/arrayrel/graph"
)

// prefetch loads the named relations and reverse accessors of the records.
// With the array joins enabled, each name is loaded with one query for all
// records. Otherwise each record's related rows are queried separately.
func (c *Client) prefetch(ctx context.Context, m *graph.Model, recs []*Record, names []string) error {
	for _, name := range names {
		r, reverse := m.Relation(name), false
		if r == nil {
			if r = m.Accessor(name); r == nil {
				return &LookupError{Model: m.Name, Lookup: name, Err: ErrUnknownField}
			}
			reverse = true
		}
		var err error
		switch {
		case !c.cfg.EnableArrayM2M:
			err = c.prefetchEach(ctx, recs, name)
		case reverse:
			err = c.prefetchReverse(ctx, r, name, recs)
		default:
			err = c.prefetchForward(ctx, r, name, recs)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// prefetchForward loads the targets of all records with a single query,
// and distributes them in array order.
func (c *Client) prefetchForward(ctx context.Context, r *graph.Relation, name string, recs []*Record) error {
	var ids []any
	for _, rec := range recs {
		ids = append(ids, rec.IDs(name)...)
	}
	ids = sqlarray.Distinct(ids)
	byID := make(map[any]*Record, len(ids))
	if len(ids) > 0 {
		q := c.newQuery(r.Target)
		targets, err := q.where(sqlarray.In(q.root.C(r.Target.ID.Column), r.ElemType(), ids)).All(ctx)
		if err != nil {
			return err
		}
		for _, t := range targets {
			byID[t.id] = t
		}
	}
	for _, rec := range recs {
		var rs []*Record
		for _, id := range rec.IDs(name) {
			if t, ok := byID[id]; ok {
				rs = append(rs, t)
			}
		}
		rec.setRelated(name, rs)
	}
	return nil
}

// prefetchReverse loads the owners holding any of the records' keys with a
// single query, in the owner's default ordering.
func (c *Client) prefetchReverse(ctx context.Context, r *graph.Relation, name string, recs []*Record) error {
	pks := make([]any, 0, len(recs))
	byPK := make(map[any][]*Record, len(recs))
	for _, rec := range recs {
		pks = append(pks, rec.id)
		byPK[rec.id] = append(byPK[rec.id], rec)
	}
	q := c.newQuery(r.Owner)
	owners, err := q.where(sqlarray.Overlap(q.root.C(r.Column), sqlarray.Of(r.ElemType(), sqlarray.Distinct(pks)))).All(ctx)
	if err != nil {
		return err
	}
	related := make(map[*Record][]*Record, len(recs))
	for _, o := range owners {
		for _, id := range sqlarray.Distinct(o.IDs(r.Name)) {
			for _, rec := range byPK[id] {
				related[rec] = append(related[rec], o)
			}
		}
	}
	for _, rec := range recs {
		rec.setRelated(name, related[rec])
	}
	return nil
}

// prefetchEach loads the related rows of each record with its manager.
func (c *Client) prefetchEach(ctx context.Context, recs []*Record, name string) error {
	for _, rec := range recs {
		mg, err := c.Related(rec, name)
		if err != nil {
			return err
		}
		rs, err := mg.All(ctx)
		if err != nil {
			return err
		}
		rec.setRelated(name, rs)
	}
	return nil
}
