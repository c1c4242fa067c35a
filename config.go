package arrayrel

import (
	"log/slog"
	"time"

	"github.com/syssam/arrayrel/dialect"
	"github.com/syssam/arrayrel/dialect/sql/sqlgraph"
	"github.com/syssam/arrayrel/graph"
)

// Config holds the settings read once when a client is created.
type Config struct {
	// EnableArrayM2M registers the array join strategies on the query
	// planner, enables batched prefetching of array relations and installs
	// the CascadePrune pre-delete listener. Without it, array relations can
	// still be filtered and mutated, but lookups traversing them fail and
	// deletes leave dangling identifiers behind.
	EnableArrayM2M bool
	// PruneConcurrency limits the number of relations Client.Prune scrubs
	// at the same time. Zero means 4.
	PruneConcurrency int
	// PruneTimeout bounds each statement run by Client.Prune. Zero means
	// the server's statement_timeout applies.
	PruneTimeout time.Duration
}

// config is shared by a client and the transactional clients it starts.
type config struct {
	driver    dialect.Driver
	graph     *graph.Graph
	cfg       Config
	log       *slog.Logger
	planner   *sqlgraph.Planner
	listeners *listeners
}

// Option function to configure the client.
type Option func(*config)

// WithConfig sets the client configuration.
func WithConfig(cfg Config) Option {
	return func(c *config) {
		c.cfg = cfg
	}
}

// Log sets the logger of the client. It defaults to slog.Default().
func Log(l *slog.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

func (c config) pruneConcurrency() int {
	if c.cfg.PruneConcurrency > 0 {
		return c.cfg.PruneConcurrency
	}
	return 4
}
