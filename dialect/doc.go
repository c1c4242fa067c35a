// Package dialect provides the database driver abstraction for arrayrel.
//
// Array-backed relations rely on PostgreSQL array operators (@>, <@, &&,
// ANY, array_remove, unnest ... WITH ORDINALITY), so PostgreSQL is the only
// supported dialect. Both database/sql drivers that speak it are accepted:
//
//	dialect.Postgres = "postgres" // github.com/lib/pq
//	dialect.PGX      = "pgx"      // github.com/jackc/pgx/v5/stdlib
//
// # Driver Interface
//
// The package defines the Driver interface for database operations:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Transaction Interface
//
// The Tx interface extends ExecQuerier with transaction methods:
//
//	type Tx interface {
//	    ExecQuerier
//	    Commit() error
//	    Rollback() error
//	}
//
// Every multi-statement operation of the relationship manager and of the
// delete cascade runs inside a single Tx. NopTx wraps a driver that is
// already bound to a transaction so that nested units of work join it.
//
// # Usage
//
//	import (
//	    "github.com/syssam/arrayrel/dialect"
//	    "github.com/syssam/arrayrel/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// # Sub-packages
//
//   - dialect/sql: SQL builders, driver implementation, stats/debug/trace drivers
//   - dialect/sql/sqlarray: array predicates and array assignments
//   - dialect/sql/sqlgraph: join strategies for relation traversal
//   - dialect/sql/schema: DDL for declared models and layout validation
package dialect
