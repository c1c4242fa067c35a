package arrayrel

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/graph"
)

// Prune removes identifiers that point at rows that no longer exist from
// every array column of the graph, and returns the number of updated rows.
// Relations are scrubbed concurrently, up to Config.PruneConcurrency at a
// time; each relation is scrubbed with one statement, bounded by
// Config.PruneTimeout. A failing relation does not stop the others; their
// errors are returned together as an AggregateError.
//
// Prune repairs dangling identifiers left by deletes that ran without the
// cascade listener, for example with EnableArrayM2M unset or by other
// applications sharing the database.
func (c *Client) Prune(ctx context.Context) (int64, error) {
	if c.cfg.PruneTimeout > 0 {
		ctx = sql.WithStatementTimeout(ctx, c.cfg.PruneTimeout)
	}
	var (
		total atomic.Int64
		mu    sync.Mutex
		errs  []error
		g     errgroup.Group
	)
	g.SetLimit(c.pruneConcurrency())
	for _, r := range c.graph.Relations() {
		g.Go(func() error {
			n, err := c.exec(ctx, pruneStmt(r))
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("arrayrel: prune %s: %w", r, err))
				mu.Unlock()
				return nil
			}
			if n > 0 {
				c.log.InfoContext(ctx, "arrayrel: pruned dangling identifiers", "relation", r.String(), "rows", n)
			}
			total.Add(n)
			return nil
		})
	}
	_ = g.Wait()
	return total.Load(), NewAggregateError(errs...)
}

// pruneStmt returns the statement scrubbing a relation column. Elements
// keep their order.
//
//	UPDATE "articles" SET "publications" = ARRAY(SELECT elem FROM unnest("publications") WITH ORDINALITY AS a(elem, pos) WHERE EXISTS (SELECT 1 FROM "publications" AS "p" WHERE "p"."id" = elem) ORDER BY pos)
//	WHERE EXISTS (SELECT 1 FROM unnest("publications") AS u(elem) WHERE NOT EXISTS (SELECT 1 FROM "publications" AS "p" WHERE "p"."id" = u.elem))
func pruneStmt(r *graph.Relation) *sql.UpdateBuilder {
	target := sql.Table(r.Target.Table).As("p")
	exists := func(b *sql.Builder, elem string) {
		b.WriteString("EXISTS (SELECT 1 FROM ").Ident(r.Target.Table).WriteString(" AS ").Ident(target.Alias()).
			WriteString(" WHERE ").Ident(target.C(r.Target.ID.Column)).WriteString(" = " + elem + ")")
	}
	return sql.Update(r.Owner.Table).
		SetExpr(r.Column, sql.ExprFunc(func(b *sql.Builder) {
			b.WriteString("ARRAY(SELECT elem FROM unnest(").Ident(r.Column).
				WriteString(") WITH ORDINALITY AS a(elem, pos) WHERE ")
			exists(b, "elem")
			b.WriteString(" ORDER BY pos)")
		})).
		Where(sql.P(func(b *sql.Builder) {
			b.WriteString("EXISTS (SELECT 1 FROM unnest(").Ident(r.Column).WriteString(") AS u(elem) WHERE NOT ")
			exists(b, "u.elem")
			b.WriteByte(')')
		}))
}
