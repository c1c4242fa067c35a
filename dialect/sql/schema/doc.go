// Package schema derives the PostgreSQL tables backing a model graph and
// plans their DDL with Atlas.
//
// Every array relation becomes a NOT NULL column of the target primary key
// array type, defaulting to the empty array and indexed with GIN:
//
//	tables := schema.Tables(g)
//	stmts, err := schema.DDL(ctx, tables)
//
// Child models of multi-table inheritance share their parent's key through a
// link column that references the parent table with ON DELETE CASCADE.
//
// ValidateDiff compares inspected tables with the desired ones and reports
// breaking changes, such as a changed array element type.
package schema
