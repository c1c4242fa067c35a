package arrayrel

import (
	"context"
	"slices"
	"sync"

	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/dialect/sql/sqlarray"
	"github.com/syssam/arrayrel/graph"
)

// DeleteEvent describes the rows about to be deleted by Query.Delete.
type DeleteEvent struct {
	// Model is the queried model. Rows of its descendants and ancestors
	// sharing the keys are deleted too.
	Model *graph.Model
	// IDs are the keys of the rows, locked for the transaction.
	IDs []any
}

// DeleteListener is notified before rows are deleted. The client passed
// to PreDelete is bound to the deleting transaction; a returned error
// aborts the delete.
type DeleteListener interface {
	PreDelete(ctx context.Context, c *Client, ev *DeleteEvent) error
}

// The DeleteListenerFunc type is an adapter to allow the use of ordinary
// functions as delete listeners.
type DeleteListenerFunc func(context.Context, *Client, *DeleteEvent) error

// PreDelete calls f(ctx, c, ev).
func (f DeleteListenerFunc) PreDelete(ctx context.Context, c *Client, ev *DeleteEvent) error {
	return f(ctx, c, ev)
}

type listeners struct {
	mu sync.RWMutex
	ls []DeleteListener
}

func (l *listeners) add(ls ...DeleteListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ls = append(l.ls, ls...)
}

// preDelete runs the listeners in registration order.
func (l *listeners) preDelete(ctx context.Context, c *Client, ev *DeleteEvent) error {
	l.mu.RLock()
	ls := slices.Clone(l.ls)
	l.mu.RUnlock()
	for _, lr := range ls {
		if err := lr.PreDelete(ctx, c, ev); err != nil {
			return err
		}
	}
	return nil
}

// OnPreDelete registers listeners notified before rows are deleted. The
// listeners are shared with transactional clients started by c.
func (c *Client) OnPreDelete(ls ...DeleteListener) {
	c.listeners.add(ls...)
}

// CascadePrune returns the listener removing the keys of deleted rows from
// every array column that may hold them: relations targeting any model of
// the deleted model's inheritance tree. Each relation is scrubbed with
// one statement:
//
//	UPDATE "articles" SET "publications" = ARRAY(SELECT elem FROM unnest("publications") WITH ORDINALITY AS a(elem, pos) WHERE NOT (elem = ANY($1::bigint[])) ORDER BY pos) WHERE "publications" && $2::bigint[]
//
// NewClient installs it when Config.EnableArrayM2M is set.
func CascadePrune() DeleteListener {
	return DeleteListenerFunc(func(ctx context.Context, c *Client, ev *DeleteEvent) error {
		for _, r := range c.graph.Referencing(ev.Model) {
			u := sqlarray.RemoveAll(r.Column, r.ElemType(), ev.IDs...).Apply(sql.Update(r.Owner.Table)).
				Where(sqlarray.Overlap(r.Column, sqlarray.Of(r.ElemType(), ev.IDs)))
			n, err := c.exec(ctx, u)
			if err != nil {
				return err
			}
			c.log.DebugContext(ctx, "arrayrel: cascade prune", "relation", r.String(), "model", ev.Model.Name, "rows", n)
		}
		return nil
	})
}
