// Package graph resolves model declarations into the graph used by the
// client, the join planner and the DDL generator.
//
// Resolution fills in every default the declarations leave out:
//
//   - Table names are the pluralized snake-case model names ("articles").
//   - Models without an ID get an int64 "id" primary key.
//   - Relation columns are named after the relation.
//   - Reverse accessors default to "<owner>_set" and reverse query names
//     to "<owner>"; an explicit related name sets both.
//   - Relations to the model itself are symmetric unless declared otherwise,
//     and symmetric relations expose no reverse side.
//   - A child model in multi-table inheritance uses its parent link
//     ("<parent>_ptr_id") as its primary key.
//
// # Cascade Plans
//
// Referencing returns, for a model, every relation whose array may hold an
// identifier of one of its rows. The plan is computed once by New:
//
//	for _, r := range g.Referencing(g.Model("Publication")) {
//	    fmt.Println(r) // Article.publications
//	}
package graph
