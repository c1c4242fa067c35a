package graph_test

import (
	"testing"

	"github.com/syssam/arrayrel/graph"
	"github.com/syssam/arrayrel/schema"
	"github.com/syssam/arrayrel/schema/edge"
	"github.com/syssam/arrayrel/schema/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articles() []*schema.Descriptor {
	return []*schema.Descriptor{
		schema.Model("Publication").
			Fields(field.String("title")).
			Ordering("title").
			Descriptor(),
		schema.Model("Article").
			Fields(field.String("headline")).
			Edges(edge.Array("publications", "Publication")).
			Ordering("headline").
			Descriptor(),
	}
}

func TestNewDefaults(t *testing.T) {
	g, err := graph.New(articles()...)
	require.NoError(t, err)

	pub, art := g.Model("Publication"), g.Model("Article")
	require.NotNil(t, pub)
	require.NotNil(t, art)
	assert.Nil(t, g.Model("Unknown"))
	assert.Equal(t, "publications", pub.Table)
	assert.Equal(t, "articles", art.Table)
	assert.Equal(t, "id", art.ID.Column)
	assert.Equal(t, field.TypeInt64, art.IDType())

	r := art.Relation("publications")
	require.NotNil(t, r)
	assert.Equal(t, "publications", r.Column)
	assert.Equal(t, pub, r.Target)
	assert.Equal(t, art, r.Owner)
	assert.False(t, r.Symmetric)
	assert.Equal(t, "article_set", r.RelatedName)
	assert.Equal(t, "article", r.QueryName)
	assert.Equal(t, "bigint[]", r.ArrayType())
	assert.Equal(t, "bigint", r.ElemType())
	assert.Equal(t, "Article.publications", r.String())
	assert.True(t, r.HasReverse())

	assert.Equal(t, r, pub.ReverseRelation("article"))
	assert.Equal(t, r, pub.Accessor("article_set"))
	assert.Nil(t, pub.Accessor("article"))
	assert.Equal(t, []string{"id", "headline", "publications"}, art.Columns())

	require.Len(t, art.Ordering, 1)
	assert.Equal(t, "headline", art.Ordering[0].Field.Name)
	assert.False(t, art.Ordering[0].Desc)
	assert.Equal(t, art.ID, art.Field(graph.PK))
}

func TestRelatedName(t *testing.T) {
	g, err := graph.New(
		schema.Model("Publication").Descriptor(),
		schema.Model("Article").
			Edges(edge.Array("publications", "Publication").RelatedName("articles")).
			Descriptor(),
		schema.Model("Note").
			Edges(edge.Array("publications", "Publication").NoReverse()).
			Descriptor(),
	)
	require.NoError(t, err)
	r := g.Model("Article").Relation("publications")
	assert.Equal(t, "articles", r.RelatedName)
	assert.Equal(t, "articles", r.QueryName)

	hidden := g.Model("Note").Relation("publications")
	assert.False(t, hidden.HasReverse())
	assert.Empty(t, hidden.QueryName)
	assert.Len(t, g.Model("Publication").Reverse, 1)
}

func TestSelfRelations(t *testing.T) {
	g, err := graph.New(schema.Model("Person").
		Fields(field.String("name")).
		Edges(
			edge.Array("friends", edge.Self),
			edge.Array("idols", edge.Self).Asymmetric().RelatedName("stalkers"),
		).
		Descriptor())
	require.NoError(t, err)
	p := g.Model("Person")
	assert.Equal(t, "people", p.Table)

	friends := p.Relation("friends")
	assert.True(t, friends.Symmetric)
	assert.False(t, friends.HasReverse())

	idols := p.Relation("idols")
	assert.False(t, idols.Symmetric)
	assert.Equal(t, idols, p.Accessor("stalkers"))
	assert.Equal(t, idols, p.ReverseRelation("stalkers"))
}

func inheritance() []*schema.Descriptor {
	return []*schema.Descriptor{
		schema.Model("Place").
			ID(field.UUID("id")).
			Fields(field.String("name")).
			Descriptor(),
		schema.Model("Restaurant").
			Inherits("Place").
			Fields(field.Bool("serves_pizza")).
			Edges(edge.Array("cooks", "Person")).
			Descriptor(),
		schema.Model("Pizzeria").
			Inherits("Restaurant").
			ParentLink("restaurant_id").
			Descriptor(),
		schema.Model("Person").
			ID(field.UUID("id")).
			Edges(
				edge.Array("favorite_places", "Place").RelatedName("fans"),
				edge.Array("favorite_restaurants", "Restaurant").NoReverse(),
			).
			Descriptor(),
	}
}

func TestInheritance(t *testing.T) {
	g, err := graph.New(inheritance()...)
	require.NoError(t, err)
	place, rest, pizz, person := g.Model("Place"), g.Model("Restaurant"), g.Model("Pizzeria"), g.Model("Person")

	assert.Equal(t, "place_ptr_id", rest.ID.Column)
	assert.Equal(t, "restaurant_id", pizz.ID.Column)
	assert.Equal(t, field.TypeUUID, pizz.IDType())
	assert.Equal(t, place, pizz.Root())
	assert.Equal(t, []*graph.Model{rest, place}, pizz.Ancestors())
	assert.Equal(t, []*graph.Model{rest, pizz}, place.Descendants())
	assert.Equal(t, []*graph.Model{place, rest, pizz}, rest.Family())
	assert.True(t, pizz.Is(place))
	assert.False(t, place.Is(pizz))

	// Fields and relations are inherited.
	name := pizz.Field("name")
	require.NotNil(t, name)
	assert.Equal(t, place, name.Model)
	assert.Equal(t, place.ID, pizz.Field("id"))
	assert.Equal(t, pizz.ID, pizz.Field(graph.PK))
	assert.NotNil(t, pizz.Relation("cooks"))
	assert.NotNil(t, pizz.Accessor("fans"))
	assert.Equal(t, "uuid[]", person.Relation("favorite_places").ArrayType())

	// Deleting any member of the family may leave identifiers in both relations.
	for _, m := range []*graph.Model{place, rest, pizz} {
		rels := g.Referencing(m)
		require.Len(t, rels, 2, m.Name)
		assert.Equal(t, "Person.favorite_places", rels[0].String())
		assert.Equal(t, "Person.favorite_restaurants", rels[1].String())
	}
	require.Len(t, g.Referencing(person), 1)
	assert.Equal(t, "Restaurant.cooks", g.Referencing(person)[0].String())
	assert.Len(t, g.Relations(), 3)
}

func TestReferencingSiblings(t *testing.T) {
	g, err := graph.New(
		schema.Model("Place").Fields(field.String("name")).Descriptor(),
		schema.Model("Restaurant").Inherits("Place").Descriptor(),
		schema.Model("Bar").Inherits("Place").Descriptor(),
		schema.Model("Guide").
			Edges(
				edge.Array("restaurants", "Restaurant"),
				edge.Array("bars", "Bar"),
			).
			Descriptor(),
	)
	require.NoError(t, err)

	// A restaurant row shares its places row with a bar of the same key.
	for _, name := range []string{"Place", "Restaurant", "Bar"} {
		var got []string
		for _, r := range g.Referencing(g.Model(name)) {
			got = append(got, r.String())
		}
		assert.ElementsMatch(t, []string{"Guide.restaurants", "Guide.bars"}, got, name)
	}
	assert.Empty(t, g.Referencing(g.Model("Guide")))
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name  string
		descs []*schema.Descriptor
		err   string
	}{
		{
			name: "unknown_target",
			descs: []*schema.Descriptor{
				schema.Model("A").Edges(edge.Array("bs", "B")).Descriptor(),
			},
			err: `targets unknown model "B"`,
		},
		{
			name: "unknown_parent",
			descs: []*schema.Descriptor{
				schema.Model("A").Inherits("B").Descriptor(),
			},
			err: `inherits unknown model "B"`,
		},
		{
			name: "cycle",
			descs: []*schema.Descriptor{
				schema.Model("A").Inherits("B").Descriptor(),
				schema.Model("B").Inherits("A").Descriptor(),
			},
			err: "inheritance cycle",
		},
		{
			name: "symmetric_non_self",
			descs: []*schema.Descriptor{
				schema.Model("A").Descriptor(),
				schema.Model("B").Edges(edge.Array("as", "A").Symmetric()).Descriptor(),
			},
			err: "only self relations can be symmetric",
		},
		{
			name: "duplicate_model",
			descs: []*schema.Descriptor{
				schema.Model("A").Descriptor(),
				schema.Model("A").Descriptor(),
			},
			err: "duplicate model",
		},
		{
			name: "duplicate_field",
			descs: []*schema.Descriptor{
				schema.Model("A").
					Fields(field.String("x")).
					Edges(edge.Array("x", edge.Self)).
					Descriptor(),
			},
			err: `relation "x" clashes with field`,
		},
		{
			name: "duplicate_reverse",
			descs: []*schema.Descriptor{
				schema.Model("A").Descriptor(),
				schema.Model("B").
					Edges(edge.Array("as", "A"), edge.Array("others", "A")).
					Descriptor(),
			},
			err: "clashes",
		},
		{
			name: "unknown_ordering",
			descs: []*schema.Descriptor{
				schema.Model("A").Ordering("-missing").Descriptor(),
			},
			err: `orders by unknown field "missing"`,
		},
		{
			name: "child_declares_id",
			descs: []*schema.Descriptor{
				schema.Model("A").Descriptor(),
				schema.Model("B").Inherits("A").ID(field.Int64("id")).Descriptor(),
			},
			err: "inherits its primary key",
		},
		{
			name: "shared_table",
			descs: []*schema.Descriptor{
				schema.Model("A").Table("t").Descriptor(),
				schema.Model("B").Table("t").Descriptor(),
			},
			err: `share table "t"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graph.New(tt.descs...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestMustNew(t *testing.T) {
	assert.NotPanics(t, func() { graph.MustNew(articles()...) })
	assert.Panics(t, func() {
		graph.MustNew(schema.Model("A").Edges(edge.Array("bs", "B")).Descriptor())
	})
}
