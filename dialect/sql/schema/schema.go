package schema

import (
	"strings"

	"github.com/syssam/arrayrel/graph"
	"github.com/syssam/arrayrel/schema/field"
)

type (
	// Table describes a table of the database schema.
	Table struct {
		Name        string
		Columns     []*Column
		PrimaryKey  []*Column
		ForeignKeys []*ForeignKey
		Indexes     []*Index
		Comment     string
	}

	// Column describes a table column.
	Column struct {
		Name      string
		Type      string // SQL type, e.g. "bigint" or "uuid[]".
		Nullable  bool
		Default   string // raw SQL default expression.
		Increment bool   // serial primary key.
		Unique    bool
		Comment   string
	}

	// Index describes a table index.
	Index struct {
		Name    string
		Unique  bool
		GIN     bool
		Columns []*Column
	}

	// ForeignKey describes a foreign key, used by child tables of
	// multi-table inheritance to reference their parent rows.
	ForeignKey struct {
		Symbol     string
		Columns    []*Column
		RefTable   *Table
		RefColumns []*Column
		OnDelete   string
	}
)

// IsArray reports if the column holds a PostgreSQL array.
func (c *Column) IsArray() bool {
	return strings.HasSuffix(c.Type, "[]")
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Tables returns the tables of the given graph. Every relation adds a NOT
// NULL array column defaulting to the empty array and a GIN index on it, so
// that containment lookups and reverse joins can use the index.
func Tables(g *graph.Graph) []*Table {
	tables := make([]*Table, 0, len(g.Models))
	byModel := make(map[*graph.Model]*Table, len(g.Models))
	for _, m := range g.Models {
		t := &Table{Name: m.Table, Comment: m.Comment}
		id := &Column{Name: m.ID.Column, Type: m.IDType().SQLType(), Unique: true}
		switch {
		case m.Parent != nil:
		case m.IDType() == field.TypeInt || m.IDType() == field.TypeInt64:
			id.Increment = true
		case m.IDType() == field.TypeUUID:
			id.Default = "gen_random_uuid()"
		}
		t.Columns = append(t.Columns, id)
		t.PrimaryKey = []*Column{id}
		for _, f := range m.Fields {
			t.Columns = append(t.Columns, &Column{
				Name:     f.Column,
				Type:     f.Type.SQLType(),
				Nullable: f.Optional,
			})
		}
		for _, r := range m.Relations {
			c := &Column{
				Name:    r.Column,
				Type:    r.ArrayType(),
				Default: "'{}'",
				Comment: r.Comment,
			}
			t.Columns = append(t.Columns, c)
			t.Indexes = append(t.Indexes, &Index{
				Name:    t.Name + "_" + c.Name + "_gin",
				GIN:     true,
				Columns: []*Column{c},
			})
		}
		tables = append(tables, t)
		byModel[m] = t
	}
	for _, m := range g.Models {
		if m.Parent == nil {
			continue
		}
		t, pt := byModel[m], byModel[m.Parent]
		t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
			Symbol:     t.Name + "_" + m.ID.Column + "_fkey",
			Columns:    t.PrimaryKey,
			RefTable:   pt,
			RefColumns: pt.PrimaryKey,
			OnDelete:   "CASCADE",
		})
	}
	return tables
}
