package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Issue is a problem found in a table definition or between the live
// tables and the desired ones.
type Issue struct {
	Table   string
	Column  string
	Message string
	// Breaking is set when applying the change loses stored data or
	// invalidates identifiers kept in array columns.
	Breaking bool
}

func (i *Issue) Error() string {
	s := i.Table
	if i.Column != "" {
		s += "." + i.Column
	}
	s += ": " + i.Message
	if i.Breaking {
		s += " [BREAKING]"
	}
	return s
}

// ValidationResult holds the issues found by a validation.
type ValidationResult struct {
	Errors   []*Issue
	Warnings []*Issue
}

// HasErrors reports if any issue fails the validation.
func (r *ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// HasWarnings reports if any issue was downgraded to a warning.
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// HasBreakingChanges reports if any issue, error or warning, is breaking.
func (r *ValidationResult) HasBreakingChanges() bool {
	return slices.ContainsFunc(r.Errors, isBreaking) || slices.ContainsFunc(r.Warnings, isBreaking)
}

func isBreaking(i *Issue) bool { return i.Breaking }

func (r *ValidationResult) String() string {
	if !r.HasErrors() && !r.HasWarnings() {
		return "No issues found"
	}
	var b strings.Builder
	for _, sec := range []struct {
		title  string
		issues []*Issue
	}{{"Errors", r.Errors}, {"Warnings", r.Warnings}} {
		if len(sec.issues) == 0 {
			continue
		}
		b.WriteString(sec.title + ":\n")
		for _, i := range sec.issues {
			fmt.Fprintf(&b, "  - %s\n", i)
		}
	}
	return b.String()
}

// merge appends the issues of o to r.
func (r *ValidationResult) merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

func (r *ValidationResult) fail(i *Issue) { r.Errors = append(r.Errors, i) }
func (r *ValidationResult) warn(i *Issue) { r.Warnings = append(r.Warnings, i) }

func (r *ValidationResult) report(allowed bool, i *Issue) {
	if allowed {
		r.warn(i)
	} else {
		r.fail(i)
	}
}

// ValidateOption configures ValidateDiff.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	dropColumn, dropTable, dropIndex, nullToNotNull bool
}

// AllowDropColumn reports dropped columns as warnings.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) { c.dropColumn = true }
}

// AllowDropTable reports dropped tables as warnings.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) { c.dropTable = true }
}

// AllowDropIndex reports dropped indexes as warnings.
func AllowDropIndex() ValidateOption {
	return func(c *validateConfig) { c.dropIndex = true }
}

// AllowNullToNotNull reports nullable columns becoming NOT NULL as warnings.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) { c.nullToNotNull = true }
}

// ValidateDiff compares the live tables with the desired ones. Changing the
// element type of an array column is always an error: the identifiers it
// stores no longer match the target key.
//
//	current, err := schema.Inspect(ctx, db, names...)
//	if err != nil {
//		return err
//	}
//	if r := schema.ValidateDiff(current, schema.Tables(g)); r.HasErrors() {
//		return fmt.Errorf("schema drift:\n%s", r)
//	}
func ValidateDiff(current, desired []*Table, opts ...ValidateOption) *ValidationResult {
	var cfg validateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &ValidationResult{}
	want := byName(desired)
	have := byName(current)
	for _, name := range slices.Sorted(maps.Keys(have)) {
		if _, ok := want[name]; !ok {
			r.report(cfg.dropTable, &Issue{Table: name, Message: "table will be dropped", Breaking: true})
		}
	}
	for _, name := range slices.Sorted(maps.Keys(want)) {
		if cur, ok := have[name]; ok {
			diffTable(r, &cfg, cur, want[name])
		}
	}
	return r
}

func byName(tables []*Table) map[string]*Table {
	m := make(map[string]*Table, len(tables))
	for _, t := range tables {
		m[t.Name] = t
	}
	return m
}

func diffTable(r *ValidationResult, cfg *validateConfig, cur, want *Table) {
	for _, c := range cur.Columns {
		if want.Column(c.Name) == nil {
			r.report(cfg.dropColumn, &Issue{Table: cur.Name, Column: c.Name, Message: "column will be dropped", Breaking: true})
		}
	}
	for _, w := range want.Columns {
		c := cur.Column(w.Name)
		if c == nil {
			if !w.Nullable && w.Default == "" && !w.Increment {
				r.warn(&Issue{Table: cur.Name, Column: w.Name, Message: "new NOT NULL column without default value may fail if table has data"})
			}
			continue
		}
		if c.Type != w.Type {
			i := &Issue{Table: cur.Name, Column: w.Name, Message: fmt.Sprintf("column type changing from %s to %s", c.Type, w.Type)}
			if c.IsArray() || w.IsArray() {
				i.Breaking = true
				r.fail(i)
			} else {
				r.warn(i)
			}
		}
		if c.Nullable && !w.Nullable {
			r.report(cfg.nullToNotNull, &Issue{Table: cur.Name, Column: w.Name, Message: "column changing from NULL to NOT NULL may fail if column has NULL values", Breaking: true})
		}
		if !c.Unique && w.Unique {
			r.warn(&Issue{Table: cur.Name, Column: w.Name, Message: "adding UNIQUE constraint may fail if duplicate values exist"})
		}
	}
	for _, idx := range cur.Indexes {
		if !slices.ContainsFunc(want.Indexes, func(w *Index) bool { return w.Name == idx.Name }) {
			r.report(cfg.dropIndex, &Issue{Table: cur.Name, Message: fmt.Sprintf("index %q will be dropped", idx.Name)})
		}
	}
}

// ValidateTable checks a single table definition.
func ValidateTable(t *Table) *ValidationResult {
	r := &ValidationResult{}
	if len(t.PrimaryKey) == 0 {
		r.warn(&Issue{Table: t.Name, Message: "table has no primary key"})
	}
	cols := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if cols[c.Name] {
			r.fail(&Issue{Table: t.Name, Column: c.Name, Message: "duplicate column name"})
		}
		cols[c.Name] = true
	}
	gin := make(map[string]bool)
	for _, idx := range t.Indexes {
		if idx.GIN && len(idx.Columns) == 1 && idx.Columns[0] != nil {
			gin[idx.Columns[0].Name] = true
		}
	}
	for _, c := range t.Columns {
		if !c.IsArray() {
			continue
		}
		if c.Nullable {
			r.warn(&Issue{Table: t.Name, Column: c.Name, Message: "array column is nullable; NULL and empty arrays match different lookups"})
		}
		if !gin[c.Name] {
			r.warn(&Issue{Table: t.Name, Column: c.Name, Message: "array column has no GIN index; reverse joins will scan the table"})
		}
	}
	seen := make(map[string]bool, len(t.Indexes))
	for _, idx := range t.Indexes {
		if seen[idx.Name] {
			r.fail(&Issue{Table: t.Name, Message: "duplicate index name: " + idx.Name})
		}
		seen[idx.Name] = true
		for _, c := range idx.Columns {
			if c != nil && !cols[c.Name] {
				r.fail(&Issue{Table: t.Name, Message: fmt.Sprintf("index %q references non-existent column %q", idx.Name, c.Name)})
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			if !cols[c.Name] {
				r.fail(&Issue{Table: t.Name, Message: fmt.Sprintf("foreign key references non-existent column %q", c.Name)})
			}
		}
	}
	return r
}

// ValidateSchema checks every table and the references between them.
func ValidateSchema(tables []*Table) *ValidationResult {
	r := &ValidationResult{}
	names := make(map[string]bool, len(tables))
	for _, t := range tables {
		if names[t.Name] {
			r.fail(&Issue{Table: t.Name, Message: "duplicate table name"})
		}
		names[t.Name] = true
		r.merge(ValidateTable(t))
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			var ref string
			if fk.RefTable != nil {
				ref = fk.RefTable.Name
			}
			if !names[ref] {
				r.fail(&Issue{Table: t.Name, Message: fmt.Sprintf("foreign key references non-existent table %q", ref)})
			}
		}
	}
	return r
}
