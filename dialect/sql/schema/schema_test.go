package schema

import (
	"context"
	"strings"
	"testing"

	"github.com/syssam/arrayrel/graph"
	dsl "github.com/syssam/arrayrel/schema"
	"github.com/syssam/arrayrel/schema/edge"
	"github.com/syssam/arrayrel/schema/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(
		dsl.Model("Topping").
			ID(field.UUID("id")).
			Fields(field.String("name")).
			Descriptor(),
		dsl.Model("Restaurant").
			Inherits("Place").
			Edges(edge.Array("toppings", "Topping")).
			Descriptor(),
		dsl.Model("Place").
			Fields(field.String("name"), field.String("address").Optional()).
			Edges(edge.Array("neighbours", edge.Self)).
			Comment("places to eat").
			Descriptor(),
	)
	require.NoError(t, err)
	return g
}

func table(tables []*Table, name string) *Table {
	for _, t := range tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func TestTables(t *testing.T) {
	tables := Tables(testGraph(t))
	require.Len(t, tables, 3)

	place := table(tables, "places")
	require.NotNil(t, place)
	assert.Equal(t, "places to eat", place.Comment)
	id := place.Column("id")
	require.NotNil(t, id)
	assert.Equal(t, "bigint", id.Type)
	assert.True(t, id.Increment)
	assert.Equal(t, []*Column{id}, place.PrimaryKey)
	assert.True(t, place.Column("address").Nullable)
	assert.False(t, place.Column("name").Nullable)

	n := place.Column("neighbours")
	require.NotNil(t, n)
	assert.Equal(t, "bigint[]", n.Type)
	assert.True(t, n.IsArray())
	assert.False(t, n.Nullable)
	assert.Equal(t, "'{}'", n.Default)
	require.Len(t, place.Indexes, 1)
	assert.True(t, place.Indexes[0].GIN)
	assert.Equal(t, "places_neighbours_gin", place.Indexes[0].Name)

	topping := table(tables, "toppings")
	require.NotNil(t, topping)
	assert.Equal(t, "uuid", topping.Column("id").Type)
	assert.Equal(t, "gen_random_uuid()", topping.Column("id").Default)
	assert.False(t, topping.Column("id").Increment)

	rest := table(tables, "restaurants")
	require.NotNil(t, rest)
	link := rest.Column("place_ptr_id")
	require.NotNil(t, link)
	assert.Equal(t, "bigint", link.Type)
	assert.False(t, link.Increment)
	assert.Equal(t, "uuid[]", rest.Column("toppings").Type)
	require.Len(t, rest.ForeignKeys, 1)
	fk := rest.ForeignKeys[0]
	assert.Equal(t, place, fk.RefTable)
	assert.Equal(t, "CASCADE", fk.OnDelete)
	assert.Equal(t, []*Column{link}, fk.Columns)
	assert.Equal(t, []*Column{id}, fk.RefColumns)
}

func TestSortByDeps(t *testing.T) {
	tables := Tables(testGraph(t))
	sorted := sortByDeps(tables)
	require.Len(t, sorted, 3)
	pos := make(map[string]int)
	for i, tt := range sorted {
		pos[tt.Name] = i
	}
	assert.Less(t, pos["places"], pos["restaurants"])
}

func TestDDL(t *testing.T) {
	stmts, err := DDL(context.Background(), Tables(testGraph(t)))
	require.NoError(t, err)
	all := strings.Join(stmts, ";\n")
	assert.Contains(t, all, `CREATE TABLE "places"`)
	assert.Contains(t, all, `"neighbours" bigint[] NOT NULL DEFAULT '{}'`)
	assert.Contains(t, all, `"id" bigserial NOT NULL`)
	assert.Contains(t, all, `"toppings" uuid[] NOT NULL DEFAULT '{}'`)
	assert.Contains(t, all, `"id" uuid NOT NULL DEFAULT gen_random_uuid()`)
	assert.Contains(t, all, `USING GIN ("neighbours")`)
	assert.Contains(t, all, `REFERENCES "places" ("id")`)
	assert.Contains(t, all, `ON DELETE CASCADE`)
	assert.Less(t, strings.Index(all, `CREATE TABLE "places"`), strings.Index(all, `CREATE TABLE "restaurants"`))
}

func TestDDLUnknownReference(t *testing.T) {
	orphan := &Table{Name: "orphans", Columns: []*Column{{Name: "id", Type: "bigint"}}}
	orphan.PrimaryKey = orphan.Columns
	orphan.ForeignKeys = []*ForeignKey{{
		Symbol:     "orphans_id_fkey",
		Columns:    orphan.Columns,
		RefTable:   &Table{Name: "parents"},
		RefColumns: []*Column{{Name: "id"}},
	}}
	_, err := DDL(context.Background(), []*Table{orphan})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown table "parents"`)
}

func TestColumnRoundTripTypes(t *testing.T) {
	for _, c := range []*Column{
		{Name: "ids", Type: "bigint[]", Default: "'{}'"},
		{Name: "tags", Type: "uuid[]"},
		{Name: "name", Type: "text", Nullable: true},
		{Name: "id", Type: "bigint", Increment: true},
		{Name: "rank", Type: "integer", Increment: true},
	} {
		ac, err := columnToAtlas(c)
		require.NoError(t, err, c.Name)
		back, err := columnFromAtlas(ac)
		require.NoError(t, err, c.Name)
		assert.Equal(t, c.Type, back.Type, c.Name)
		assert.Equal(t, c.Increment, back.Increment, c.Name)
		assert.Equal(t, c.Nullable, back.Nullable, c.Name)
		assert.Equal(t, c.Default, back.Default, c.Name)
	}
}
