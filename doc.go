// Package arrayrel stores many-to-many relations in PostgreSQL array
// columns and queries them like join-table relations.
//
// A relation declared with edge.Array keeps the keys of the related rows in
// an array column of the owning table, in insertion order. The client reads
// and writes these columns:
//
//	g := graph.MustNew(
//		schema.Model("Publication").Fields(field.String("title")).Descriptor(),
//		schema.Model("Article").
//			Fields(field.String("headline")).
//			Edges(edge.Array("publications", "Publication")).
//			Descriptor(),
//	)
//	client, err := arrayrel.Open(dialect.Postgres, dsn, g,
//		arrayrel.WithConfig(arrayrel.Config{EnableArrayM2M: true}),
//	)
//
// Relation managers add, remove and replace related rows:
//
//	pubs, err := client.Related(article, "publications")
//	err = pubs.Add(ctx, p1, p2)
//	err = pubs.Set(ctx, []any{p2}, arrayrel.WithClear())
//
// Queries accept lookups that span relations in both directions:
//
//	client.Query("Article").Filter("publications__title__startswith", "Science")
//	client.Query("Publication").Filter("article__headline", "Django")
//
// Lookups traversing an array relation into the related table need the
// array join strategies, enabled by Config.EnableArrayM2M. The same flag
// installs CascadePrune, which removes the keys of deleted rows from the
// arrays holding them. Client.Prune repairs arrays left with dangling keys.
package arrayrel
