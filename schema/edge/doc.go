// Package edge provides fluent builders for array-backed many-to-many
// relations.
//
// A relation is stored as a single PostgreSQL array column on the owning
// model's table, holding the primary keys of the related rows. There is no
// join table:
//
//	// articles.publications bigint[]
//	edge.Array("publications", "Publication")
//
// # Reverse Names
//
// The target model gets a reverse accessor, "<owner>_set" by default, and a
// reverse query name, "<owner>" by default. Both can be renamed, or
// suppressed with NoReverse (related name "+"):
//
//	edge.Array("publications", "Publication").RelatedName("articles")
//	edge.Array("tags", "Tag").NoReverse()
//
// # Self-Referential Relations
//
// Relations to edge.Self are symmetric unless declared otherwise. A
// symmetric relation has no reverse accessor; adding B to A's friends also
// adds A to B's friends:
//
//	edge.Array("friends", edge.Self)
//	edge.Array("idols", edge.Self).Asymmetric().RelatedName("stalkers")
//
// # Storage Key Customization
//
//	edge.Array("publications", "Publication").StorageKey("publication_ids")
package edge
