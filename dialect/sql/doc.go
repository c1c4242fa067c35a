// Package sql provides SQL query building primitives and the database/sql
// backed driver used by arrayrel.
//
// # Builder Types
//
// The package provides specialized builders for different SQL operations:
//
//   - Builder: Low-level SQL string builder with identifier quoting
//   - Selector: SELECT query builder with joins, predicates, and pagination
//   - InsertBuilder: INSERT statement builder with RETURNING support
//   - UpdateBuilder: UPDATE statement builder with SET and WHERE clauses
//   - DeleteBuilder: DELETE statement builder with WHERE predicates
//
// Builders write "?" placeholders while composing and number them
// ($1, $2, ...) once, when the outermost statement is rendered by Query.
// A Selector passed as an argument is embedded as a parenthesized sub-query,
// so nested statements compose without renumbering:
//
//	sub := sql.Select("id").From(sql.Table("publications")).Where(sql.HasPrefix("title", "Science"))
//	sql.Select("id").From(sql.Table("articles")).Where(sql.NotIn("id", sub))
//	// SELECT "id" FROM "articles" WHERE "id" NOT IN (SELECT "id" FROM "publications" WHERE "title" LIKE $1)
//
// # Predicates
//
//	sql.EQ("headline", "NASA")         // "headline" = $1
//	sql.HasPrefix("title", "Sci")      // "title" LIKE $1
//	sql.EqualFold("name", "pepperoni") // "name" ILIKE $1
//	sql.IsNull("published_at")         // "published_at" IS NULL
//	sql.In("id", 1, 2)                 // "id" IN ($1, $2)
//
// Array predicates (@>, <@, &&, ANY) live in the sqlarray sub-package.
//
// # Joins
//
//	r, p := sql.Table("restaurants").As("t0"), sql.Table("places").As("t1")
//	sql.Select(r.C("place_ptr_id"), p.C("name")).
//	    From(r).
//	    Join(p).On(r.C("place_ptr_id"), p.C("id"))
//
// Joins along array relations are produced by sqlgraph join strategies.
//
// # Row-Level Locking
//
//	sql.Select("publications").From(sql.Table("articles")).
//	    Where(sql.EQ("id", 1)).
//	    ForUpdate() // SELECT ... FOR UPDATE
//
// # Drivers
//
// Driver wraps *sql.DB; StatsDriver, DebugDriver and TraceDriver decorate
// it with statistics, slog logging and OpenTelemetry spans.
package sql
