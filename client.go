package arrayrel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/syssam/arrayrel/dialect"
	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/dialect/sql/sqlgraph"
	"github.com/syssam/arrayrel/graph"
)

// Client is the entry point of the package. It runs queries and relation
// mutations of the models of a graph against a PostgreSQL driver.
type Client struct {
	config
}

// NewClient creates a new client for the given driver and model graph.
// The configuration is read once: the join strategies and the cascade
// listener are installed here and never change for the client's lifetime.
func NewClient(drv dialect.Driver, g *graph.Graph, opts ...Option) *Client {
	cfg := config{driver: drv, graph: g, log: slog.Default(), listeners: &listeners{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.planner = sqlgraph.NewPlanner(cfg.cfg.EnableArrayM2M)
	if cfg.cfg.EnableArrayM2M {
		cfg.listeners.add(CascadePrune())
	}
	return &Client{config: cfg}
}

// Open opens a database/sql.DB specified by the driver name and the data
// source name, and returns a new client attached to it. Supported drivers
// are dialect.Postgres (lib/pq) and dialect.PGX (pgx stdlib, which must be
// registered by the caller).
func Open(driverName, dataSourceName string, g *graph.Graph, opts ...Option) (*Client, error) {
	switch driverName {
	case dialect.Postgres, dialect.PGX:
		drv, err := sql.Open(driverName, dataSourceName)
		if err != nil {
			return nil, err
		}
		return NewClient(drv, g, opts...), nil
	default:
		return nil, fmt.Errorf("arrayrel: unsupported driver: %q", driverName)
	}
}

// Close closes the database connection and prevents new queries from starting.
func (c *Client) Close() error {
	return c.driver.Close()
}

// Graph returns the model graph of the client.
func (c *Client) Graph() *graph.Graph {
	return c.graph
}

// Config returns the configuration the client was created with.
func (c *Client) Config() Config {
	return c.cfg
}

// Driver returns the driver of the client.
func (c *Client) Driver() dialect.Driver {
	return c.driver
}

// Tx returns a new transactional client.
func (c *Client) Tx(ctx context.Context) (*Tx, error) {
	if _, ok := c.driver.(*txDriver); ok {
		return nil, ErrTxStarted
	}
	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("arrayrel: starting transaction: %w", err)
	}
	cfg := c.config
	cfg.driver = &txDriver{tx: tx, drv: c.driver}
	return &Tx{config: cfg, ctx: ctx}, nil
}

// atomic runs fn in a transaction. If the client is already bound to a
// transaction, fn joins it.
func (c *Client) atomic(ctx context.Context, fn func(*Client) error) error {
	if _, ok := c.driver.(*txDriver); ok {
		return fn(c)
	}
	return WithTx(ctx, c, func(tx *Tx) error {
		return fn(tx.Client())
	})
}

// exec executes the statement and returns the number of affected rows.
func (c *Client) exec(ctx context.Context, q sql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := c.driver.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// queryRows executes the statement and calls scan for every returned row.
func (c *Client) queryRows(ctx context.Context, q sql.Querier, scan func(*sql.Rows) error) error {
	if e, ok := q.(interface{ Err() error }); ok {
		if err := e.Err(); err != nil {
			return err
		}
	}
	query, args := q.Query()
	rows := &sql.Rows{}
	if err := c.driver.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Tx is a transactional client.
type Tx struct {
	config
	ctx context.Context
	// lazily loaded.
	client     *Client
	clientOnce sync.Once
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	txd, ok := tx.driver.(*txDriver)
	if !ok {
		return errors.New("arrayrel: not in a transaction")
	}
	return txd.tx.Commit()
}

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error {
	txd, ok := tx.driver.(*txDriver)
	if !ok {
		return errors.New("arrayrel: not in a transaction")
	}
	return txd.tx.Rollback()
}

// Context returns the transaction context.
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// Client returns a Client that binds to current transaction.
func (tx *Tx) Client() *Client {
	tx.clientOnce.Do(func() {
		tx.client = &Client{config: tx.config}
	})
	return tx.client
}

// WithTx runs the given function within a transaction.
// If the function returns an error, the transaction is rolled back.
// If the function panics, the transaction is rolled back and the panic is re-raised.
// Otherwise, the transaction is committed.
func WithTx(ctx context.Context, client *Client, fn func(tx *Tx) error) error {
	tx, err := client.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Join(err, &RollbackError{Err: rerr})
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("arrayrel: committing transaction: %w", err)
	}
	return nil
}

// txDriver wraps the dialect driver to provide transaction capabilities.
type txDriver struct {
	tx  dialect.Tx
	drv dialect.Driver
}

// Exec implements the dialect.Driver interface.
func (tx *txDriver) Exec(ctx context.Context, query string, args, v any) error {
	return tx.tx.Exec(ctx, query, args, v)
}

// Query implements the dialect.Driver interface.
func (tx *txDriver) Query(ctx context.Context, query string, args, v any) error {
	return tx.tx.Query(ctx, query, args, v)
}

// Close is a noop close.
func (*txDriver) Close() error { return nil }

// Dialect returns the dialect of the driver.
func (tx *txDriver) Dialect() string { return tx.drv.Dialect() }

// Tx joins the open transaction. Commit and Rollback of the returned Tx are
// no-ops: only Tx.Commit or Tx.Rollback end the transaction.
func (tx *txDriver) Tx(context.Context) (dialect.Tx, error) { return dialect.NopTx(tx), nil }

var _ dialect.Driver = (*txDriver)(nil)

// mutationError wraps an error of a write on model m. Constraint
// violations reported by the database are classified as *ConstraintError.
func mutationError(m *graph.Model, op string, err error) error {
	if sqlgraph.IsConstraintError(err) {
		err = NewConstraintError(err.Error(), err)
	}
	return NewMutationError(m.Name, op, err)
}
