// Command arrayrel maintains the PostgreSQL tables of array-backed
// many-to-many relations.
//
// The commands are:
//   - ddl: print the CREATE statements of the declared models
//   - validate: check the models, and the live tables if a database is configured
//   - prune: remove identifiers of deleted rows from every array column
//
// Usage:
//
//	arrayrel [flags] <command>
//
// Settings are read from arrayrel.yaml (auto-discovered up to the repository
// root) and ARRAYREL_* environment variables; flags take precedence.
package main

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

func main() {
	Execute()
}
