// Package sqlarray provides PostgreSQL array predicates and array update
// expressions for the sql builder.
//
// Array values are bound as a single typed parameter:
//
//	arr := sqlarray.Of("bigint", []any{int64(1), int64(2)})
//	sql.Select("*").From(sql.Table("articles")).
//	    Where(sqlarray.Contains("publications", arr))
//	// SELECT * FROM "articles" WHERE "publications" @> $1::bigint[]
//
// # Predicates
//
//	sqlarray.EQ(col, arr)           // col = $1::t[]   (order sensitive)
//	sqlarray.Contains(col, arr)     // col @> $1::t[]
//	sqlarray.ContainedBy(col, arr)  // col <@ $1::t[]
//	sqlarray.Overlap(col, arr)      // col && $1::t[]
//	sqlarray.Has(col, v)            // $1 = ANY(col)
//	sqlarray.GT(col, arr)           // col > $1::t[]   (lexicographic)
//	sqlarray.LenEQ(col, 2)          // cardinality(col) = 2
//
// # Assignments
//
// Assignments describe the new value of an array column. They are used both
// by bulk updates and by query previews:
//
//	sqlarray.Append(col, "bigint", ids...)          // col || $1::bigint[]
//	sqlarray.AppendDistinct(col, "bigint", ids...)  // only ids not yet present
//	sqlarray.Remove(col, "bigint", id)              // array_remove(col, $1::bigint)
//	sqlarray.RemoveAll(col, "bigint", ids...)       // order preserving difference
//	sqlarray.Replace(col, "bigint", ids...)         // $1::bigint[]
//	sqlarray.Clear(col, "bigint")                   // '{}'::bigint[]
package sqlarray
