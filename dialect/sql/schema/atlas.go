package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
)

// DDL returns the statements creating the given tables, planned by the Atlas
// PostgreSQL driver. Parent tables are created before the child tables that
// reference them.
func DDL(ctx context.Context, tables []*Table) ([]string, error) {
	ats, err := toAtlas(sortByDeps(tables))
	if err != nil {
		return nil, err
	}
	changes := make([]schema.Change, 0, len(ats))
	for _, t := range ats {
		changes = append(changes, &schema.AddTable{T: t})
	}
	plan, err := postgres.DefaultPlan.PlanChanges(ctx, "arrayrel", changes)
	if err != nil {
		return nil, fmt.Errorf("sql/schema: plan changes: %w", err)
	}
	stmts := make([]string, 0, len(plan.Changes))
	for _, c := range plan.Changes {
		stmts = append(stmts, c.Cmd)
	}
	return stmts, nil
}

// Inspect reads the current definition of the named tables from the
// database. Tables that do not exist are omitted from the result.
func Inspect(ctx context.Context, db *sql.DB, names ...string) ([]*Table, error) {
	drv, err := postgres.Open(db)
	if err != nil {
		return nil, fmt.Errorf("sql/schema: open atlas driver: %w", err)
	}
	s, err := drv.InspectSchema(ctx, "", &schema.InspectOptions{Tables: names})
	if err != nil {
		return nil, fmt.Errorf("sql/schema: inspect schema: %w", err)
	}
	return fromAtlas(s.Tables)
}

func toAtlas(tables []*Table) ([]*schema.Table, error) {
	byName := make(map[string]*schema.Table, len(tables))
	out := make([]*schema.Table, 0, len(tables))
	for _, t := range tables {
		at := schema.NewTable(t.Name)
		if t.Comment != "" {
			at.SetComment(t.Comment)
		}
		for _, c := range t.Columns {
			ac, err := columnToAtlas(c)
			if err != nil {
				return nil, fmt.Errorf("sql/schema: table %q: %w", t.Name, err)
			}
			at.AddColumns(ac)
		}
		pk := make([]*schema.Column, 0, len(t.PrimaryKey))
		for _, c := range t.PrimaryKey {
			ac, ok := at.Column(c.Name)
			if !ok {
				return nil, fmt.Errorf("sql/schema: table %q: primary key column %q not found", t.Name, c.Name)
			}
			pk = append(pk, ac)
		}
		if len(pk) > 0 {
			at.SetPrimaryKey(schema.NewPrimaryKey(pk...))
		}
		for _, idx := range t.Indexes {
			ai := schema.NewIndex(idx.Name).SetUnique(idx.Unique)
			for _, c := range idx.Columns {
				ac, ok := at.Column(c.Name)
				if !ok {
					return nil, fmt.Errorf("sql/schema: index %q: column %q not found", idx.Name, c.Name)
				}
				ai.AddColumns(ac)
			}
			if idx.GIN {
				ai.AddAttrs(&postgres.IndexType{T: postgres.IndexTypeGIN})
			}
			at.AddIndexes(ai)
		}
		byName[t.Name] = at
		out = append(out, at)
	}
	for _, t := range tables {
		at := byName[t.Name]
		for _, fk := range t.ForeignKeys {
			ref, ok := byName[fk.RefTable.Name]
			if !ok {
				return nil, fmt.Errorf("sql/schema: foreign key %q references unknown table %q", fk.Symbol, fk.RefTable.Name)
			}
			afk := schema.NewForeignKey(fk.Symbol).SetRefTable(ref)
			for _, c := range fk.Columns {
				ac, _ := at.Column(c.Name)
				afk.AddColumns(ac)
			}
			for _, c := range fk.RefColumns {
				ac, _ := ref.Column(c.Name)
				afk.AddRefColumns(ac)
			}
			if fk.OnDelete != "" {
				afk.SetOnDelete(schema.ReferenceOption(fk.OnDelete))
			}
			at.AddForeignKeys(afk)
		}
	}
	return out, nil
}

func columnToAtlas(c *Column) (*schema.Column, error) {
	ac := schema.NewColumn(c.Name).SetNull(c.Nullable)
	switch {
	case c.Increment && c.Type == "integer":
		ac.SetType(&postgres.SerialType{T: postgres.TypeSerial})
	case c.Increment:
		ac.SetType(&postgres.SerialType{T: postgres.TypeBigSerial})
	default:
		t, err := postgres.ParseType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		ac.SetType(t)
	}
	if c.Default != "" {
		ac.SetDefault(&schema.RawExpr{X: c.Default})
	}
	if c.Comment != "" {
		ac.SetComment(c.Comment)
	}
	return ac, nil
}

func fromAtlas(ats []*schema.Table) ([]*Table, error) {
	byName := make(map[string]*Table, len(ats))
	tables := make([]*Table, 0, len(ats))
	for _, at := range ats {
		t := &Table{Name: at.Name}
		for _, a := range at.Attrs {
			if c, ok := a.(*schema.Comment); ok {
				t.Comment = c.Text
			}
		}
		for _, ac := range at.Columns {
			c, err := columnFromAtlas(ac)
			if err != nil {
				return nil, fmt.Errorf("sql/schema: table %q: %w", at.Name, err)
			}
			t.Columns = append(t.Columns, c)
		}
		if at.PrimaryKey != nil {
			for _, p := range at.PrimaryKey.Parts {
				if p.C != nil {
					t.PrimaryKey = append(t.PrimaryKey, t.Column(p.C.Name))
				}
			}
		}
		for _, ai := range at.Indexes {
			idx := &Index{Name: ai.Name, Unique: ai.Unique}
			for _, a := range ai.Attrs {
				if it, ok := a.(*postgres.IndexType); ok && strings.EqualFold(it.T, postgres.IndexTypeGIN) {
					idx.GIN = true
				}
			}
			for _, p := range ai.Parts {
				if p.C != nil {
					idx.Columns = append(idx.Columns, t.Column(p.C.Name))
				}
			}
			t.Indexes = append(t.Indexes, idx)
		}
		byName[t.Name] = t
		tables = append(tables, t)
	}
	for i, at := range ats {
		t := tables[i]
		for _, afk := range at.ForeignKeys {
			fk := &ForeignKey{Symbol: afk.Symbol, OnDelete: string(afk.OnDelete)}
			if afk.RefTable != nil {
				fk.RefTable = byName[afk.RefTable.Name]
				if fk.RefTable == nil {
					fk.RefTable = &Table{Name: afk.RefTable.Name}
				}
			}
			for _, c := range afk.Columns {
				fk.Columns = append(fk.Columns, t.Column(c.Name))
			}
			for _, c := range afk.RefColumns {
				fk.RefColumns = append(fk.RefColumns, &Column{Name: c.Name})
			}
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
	}
	return tables, nil
}

func columnFromAtlas(ac *schema.Column) (*Column, error) {
	c := &Column{Name: ac.Name}
	if ac.Type != nil {
		c.Nullable = ac.Type.Null
		switch t := ac.Type.Type.(type) {
		case *postgres.SerialType:
			c.Increment = true
			c.Type = "bigint"
			if t.T == postgres.TypeSerial || t.T == postgres.TypeSmallSerial {
				c.Type = "integer"
			}
		default:
			s, err := postgres.FormatType(t)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", ac.Name, err)
			}
			c.Type = s
		}
	}
	switch x := ac.Default.(type) {
	case *schema.RawExpr:
		c.Default = x.X
	case *schema.Literal:
		c.Default = x.V
	}
	for _, a := range ac.Attrs {
		if cm, ok := a.(*schema.Comment); ok {
			c.Comment = cm.Text
		}
	}
	return c, nil
}

// sortByDeps orders tables so that every table follows the tables its
// foreign keys reference.
func sortByDeps(tables []*Table) []*Table {
	var (
		out  = make([]*Table, 0, len(tables))
		seen = make(map[*Table]bool, len(tables))
		ok   = make(map[string]bool, len(tables))
		add  func(*Table)
	)
	for _, t := range tables {
		ok[t.Name] = true
	}
	add = func(t *Table) {
		if seen[t] {
			return
		}
		seen[t] = true
		for _, fk := range t.ForeignKeys {
			if fk.RefTable != nil && fk.RefTable != t && ok[fk.RefTable.Name] {
				add(fk.RefTable)
			}
		}
		out = append(out, t)
	}
	for _, t := range tables {
		add(t)
	}
	return out
}
