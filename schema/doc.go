// Package schema provides the building blocks for declaring models that
// are connected by array-backed many-to-many relations.
//
// It is the entry point for model declaration; the scalar field and relation
// builders live in the sub-packages:
//
//   - [field]: Field builders for model attributes
//   - [edge]: Array relation builders
//   - [mixin]: Reusable sets of fields and relations
//
// # Quick Start
//
//	publication := schema.Model("Publication").
//	    Fields(field.String("title")).
//	    Ordering("title")
//
//	article := schema.Model("Article").
//	    Fields(field.String("headline")).
//	    Edges(edge.Array("publications", "Publication")).
//	    Ordering("headline")
//
//	g, err := graph.New(publication.Descriptor(), article.Descriptor())
//
// Models without an explicit ID get an int64 "id" primary key. Table names
// default to the pluralized snake-case model name ("articles").
//
// # Multi-Table Inheritance
//
//	schema.Model("Place").Fields(field.String("name"))
//	schema.Model("Restaurant").Inherits("Place").Fields(field.Bool("serves_pizza"))
//
// The child table references the parent through its link column, which is
// also its primary key ("place_ptr_id" by default).
//
// # Models Files
//
// LoadYAML reads the same declarations from a YAML document, which is what
// the arrayrel command uses.
package schema
