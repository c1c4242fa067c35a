package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/arrayrel/schema"
	"github.com/syssam/arrayrel/schema/edge"
	"github.com/syssam/arrayrel/schema/field"
)

// PK is the field alias that always resolves to the primary key of a model.
const PK = "pk"

type (
	// Graph holds the resolved models and their array relations.
	Graph struct {
		Models      []*Model
		byName      map[string]*Model
		referencing map[*Model][]*Relation
	}

	// Model is a resolved model declaration.
	Model struct {
		Name      string
		Table     string
		ID        *Field
		Fields    []*Field    // own scalar fields, the ID excluded.
		Relations []*Relation // array relations stored on this model's table.
		Reverse   []*Relation // relations targeting this model that expose a reverse side.
		Parent    *Model
		Children  []*Model
		Ordering  []Order
		Comment   string
	}

	// Field is a resolved scalar field.
	Field struct {
		Name     string
		Column   string
		Type     field.Type
		Optional bool
		Nillable bool
		Model    *Model // declaring model.
	}

	// Relation is a resolved array relation. The array column lives on the
	// owner's table and holds primary keys of the target's family.
	Relation struct {
		Name            string
		Column          string
		Owner           *Model
		Target          *Model
		Symmetric       bool
		RelatedName     string // reverse accessor name, empty if suppressed.
		QueryName       string // reverse lookup name, empty if suppressed.
		Blank           bool
		AllowDuplicates bool
		Comment         string
	}

	// Order is a single term of a default ordering.
	Order struct {
		Field *Field
		Desc  bool
	}
)

// New resolves the given declarations into a graph. All validation errors
// are reported together.
func New(descs ...*schema.Descriptor) (*Graph, error) {
	g := &Graph{
		byName:      make(map[string]*Model, len(descs)),
		referencing: make(map[*Model][]*Relation, len(descs)),
	}
	var errs []error
	for _, d := range descs {
		if err := d.Err(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := g.byName[d.Name]; ok {
			errs = append(errs, fmt.Errorf("graph: duplicate model %q", d.Name))
			continue
		}
		m := &Model{Name: d.Name, Table: d.Table, Comment: d.Comment}
		if m.Table == "" {
			m.Table = inflect.Underscore(inflect.Pluralize(d.Name))
		}
		g.Models = append(g.Models, m)
		g.byName[d.Name] = m
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	dmap := make(map[*Model]*schema.Descriptor, len(descs))
	for _, d := range descs {
		dmap[g.byName[d.Name]] = d
	}
	steps := []func(map[*Model]*schema.Descriptor) error{
		g.resolveParents,
		g.resolveFields,
		g.resolveRelations,
		g.resolveOrdering,
		g.checkNames,
	}
	for _, step := range steps {
		if err := step(dmap); err != nil {
			return nil, err
		}
	}
	g.planCascades()
	return g, nil
}

// MustNew is like New but panics on error.
func MustNew(descs ...*schema.Descriptor) *Graph {
	g, err := New(descs...)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Graph) resolveParents(dmap map[*Model]*schema.Descriptor) error {
	var errs []error
	for _, m := range g.Models {
		d := dmap[m]
		if d.Parent == "" {
			continue
		}
		p, ok := g.byName[d.Parent]
		if !ok {
			errs = append(errs, fmt.Errorf("graph: model %q inherits unknown model %q", m.Name, d.Parent))
			continue
		}
		m.Parent = p
		p.Children = append(p.Children, m)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, m := range g.Models {
		seen := map[*Model]bool{m: true}
		for p := m.Parent; p != nil; p = p.Parent {
			if seen[p] {
				return fmt.Errorf("graph: inheritance cycle through model %q", m.Name)
			}
			seen[p] = true
		}
	}
	return nil
}

func (g *Graph) resolveFields(dmap map[*Model]*schema.Descriptor) error {
	var errs []error
	for _, m := range g.Models {
		d := dmap[m]
		switch {
		case m.Parent != nil:
			if d.ID != nil {
				errs = append(errs, fmt.Errorf("graph: model %q inherits its primary key and must not declare one", m.Name))
			}
			link := d.ParentLink
			if link == "" {
				link = lower(m.Parent.Name) + "_ptr_id"
			}
			m.ID = &Field{Name: link, Column: link, Model: m}
		case d.ID != nil:
			m.ID = newField(d.ID, m)
		default:
			m.ID = &Field{Name: "id", Column: "id", Type: field.TypeInt64, Model: m}
		}
		for _, fd := range d.Fields {
			m.Fields = append(m.Fields, newField(fd, m))
		}
	}
	// Child keys share the type of the root key.
	for _, m := range g.Models {
		if m.Parent != nil {
			m.ID.Type = m.Root().ID.Type
		}
	}
	return errors.Join(errs...)
}

func newField(d *field.Descriptor, m *Model) *Field {
	return &Field{
		Name:     d.Name,
		Column:   d.Column(),
		Type:     d.Type,
		Optional: d.Optional,
		Nillable: d.Nillable,
		Model:    m,
	}
}

func (g *Graph) resolveRelations(dmap map[*Model]*schema.Descriptor) error {
	var errs []error
	for _, m := range g.Models {
		for _, ed := range dmap[m].Edges {
			target := m
			if ed.Target != edge.Self {
				t, ok := g.byName[ed.Target]
				if !ok {
					errs = append(errs, fmt.Errorf("graph: relation %s.%s targets unknown model %q", m.Name, ed.Name, ed.Target))
					continue
				}
				target = t
			}
			r := &Relation{
				Name:            ed.Name,
				Column:          ed.Column(),
				Owner:           m,
				Target:          target,
				Blank:           ed.Blank,
				AllowDuplicates: ed.AllowDuplicates,
				Comment:         ed.Comment,
			}
			self := target == m
			switch {
			case ed.Symmetric == nil:
				r.Symmetric = self
			case *ed.Symmetric && !self:
				errs = append(errs, fmt.Errorf("graph: relation %s.%s: only self relations can be symmetric", m.Name, ed.Name))
				continue
			default:
				r.Symmetric = *ed.Symmetric
			}
			if !r.Symmetric && !ed.Suppressed() {
				r.RelatedName = ed.RelatedName
				if r.RelatedName == "" {
					r.RelatedName = lower(m.Name) + "_set"
				}
				r.QueryName = ed.QueryName
				switch {
				case r.QueryName != "":
				case ed.RelatedName != "":
					r.QueryName = ed.RelatedName
				default:
					r.QueryName = lower(m.Name)
				}
				target.Reverse = append(target.Reverse, r)
			}
			m.Relations = append(m.Relations, r)
		}
	}
	return errors.Join(errs...)
}

func (g *Graph) resolveOrdering(dmap map[*Model]*schema.Descriptor) error {
	var errs []error
	for _, m := range g.Models {
		for _, o := range dmap[m].Ordering {
			name, desc := strings.CutPrefix(o, "-")
			f := m.Field(name)
			if f == nil {
				errs = append(errs, fmt.Errorf("graph: model %q orders by unknown field %q", m.Name, name))
				continue
			}
			m.Ordering = append(m.Ordering, Order{Field: f, Desc: desc})
		}
	}
	return errors.Join(errs...)
}

// checkNames reports clashes between the names that can appear in a lookup
// path on the same model: fields, relations and reverse query names.
func (g *Graph) checkNames(map[*Model]*schema.Descriptor) error {
	var errs []error
	for _, m := range g.Models {
		seen := make(map[string]string)
		add := func(name, what string) {
			if name == "" {
				return
			}
			if prev, ok := seen[name]; ok {
				errs = append(errs, fmt.Errorf("graph: model %q: %s %q clashes with %s", m.Name, what, name, prev))
				return
			}
			seen[name] = what
		}
		add(m.ID.Name, "field")
		for _, f := range m.Fields {
			add(f.Name, "field")
		}
		for _, r := range m.Relations {
			add(r.Name, "relation")
		}
		for _, r := range m.Reverse {
			add(r.QueryName, fmt.Sprintf("reverse query name of %s", r))
		}
		accessors := make(map[string]bool)
		for _, r := range m.Reverse {
			if accessors[r.RelatedName] || m.Relation(r.RelatedName) != nil {
				errs = append(errs, fmt.Errorf("graph: model %q: reverse accessor %q of %s clashes with another relation", m.Name, r.RelatedName, r))
			}
			accessors[r.RelatedName] = true
		}
	}
	tables := make(map[string]string)
	for _, m := range g.Models {
		if prev, ok := tables[m.Table]; ok {
			errs = append(errs, fmt.Errorf("graph: models %q and %q share table %q", prev, m.Name, m.Table))
		}
		tables[m.Table] = m.Name
	}
	return errors.Join(errs...)
}

// planCascades computes, once per model, the relations that may hold the
// identifier of a deleted row of the model. Deleting a row removes its
// ancestor rows, and the child links cascade from there to every sibling
// sharing the key, so the plan covers the whole family of the root.
func (g *Graph) planCascades() {
	for _, m := range g.Models {
		var rels []*Relation
		for _, fm := range m.Root().Family() {
			for _, o := range g.Models {
				for _, r := range o.Relations {
					if r.Target == fm && !slices.Contains(rels, r) {
						rels = append(rels, r)
					}
				}
			}
		}
		g.referencing[m] = rels
	}
}

// Model returns the model with the given name, or nil.
func (g *Graph) Model(name string) *Model {
	return g.byName[name]
}

// Referencing returns the relations whose array columns may hold an
// identifier of a row of the given model: relations targeting any model
// of its inheritance tree.
func (g *Graph) Referencing(m *Model) []*Relation {
	return g.referencing[m]
}

// Relations returns all relations of the graph.
func (g *Graph) Relations() []*Relation {
	var rels []*Relation
	for _, m := range g.Models {
		rels = append(rels, m.Relations...)
	}
	return rels
}

// Root returns the top-most ancestor of the model, or the model itself.
func (m *Model) Root() *Model {
	r := m
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// Ancestors returns the ancestors of the model, nearest first.
func (m *Model) Ancestors() []*Model {
	var as []*Model
	for p := m.Parent; p != nil; p = p.Parent {
		as = append(as, p)
	}
	return as
}

// Descendants returns the descendants of the model, depth first.
func (m *Model) Descendants() []*Model {
	var ds []*Model
	for _, c := range m.Children {
		ds = append(ds, c)
		ds = append(ds, c.Descendants()...)
	}
	return ds
}

// Family returns the ancestors, the model itself and its descendants.
func (m *Model) Family() []*Model {
	f := m.Ancestors()
	f = append(f, m)
	return append(f, m.Descendants()...)
}

// Is reports if the model is other or one of its descendants.
func (m *Model) Is(other *Model) bool {
	for c := m; c != nil; c = c.Parent {
		if c == other {
			return true
		}
	}
	return false
}

// IDType returns the type of the model's primary key.
func (m *Model) IDType() field.Type {
	return m.ID.Type
}

// Field returns the scalar field with the given name, declared on the model
// or one of its ancestors. The name "pk" resolves to the primary key.
func (m *Model) Field(name string) *Field {
	if name == PK {
		return m.ID
	}
	for c := m; c != nil; c = c.Parent {
		if c.ID.Name == name {
			return c.ID
		}
		for _, f := range c.Fields {
			if f.Name == name {
				return f
			}
		}
	}
	return nil
}

// Relation returns the forward relation with the given name, declared on the
// model or one of its ancestors.
func (m *Model) Relation(name string) *Relation {
	for c := m; c != nil; c = c.Parent {
		for _, r := range c.Relations {
			if r.Name == name {
				return r
			}
		}
	}
	return nil
}

// ReverseRelation returns the relation whose reverse query name is the
// given name, targeting the model or one of its ancestors.
func (m *Model) ReverseRelation(queryName string) *Relation {
	for c := m; c != nil; c = c.Parent {
		for _, r := range c.Reverse {
			if r.QueryName == queryName {
				return r
			}
		}
	}
	return nil
}

// Accessor returns the relation whose reverse accessor is the given name,
// targeting the model or one of its ancestors.
func (m *Model) Accessor(name string) *Relation {
	for c := m; c != nil; c = c.Parent {
		for _, r := range c.Reverse {
			if r.RelatedName == name {
				return r
			}
		}
	}
	return nil
}

// Columns returns the columns stored on the model's own table.
func (m *Model) Columns() []string {
	cols := make([]string, 0, 1+len(m.Fields)+len(m.Relations))
	cols = append(cols, m.ID.Column)
	for _, f := range m.Fields {
		cols = append(cols, f.Column)
	}
	for _, r := range m.Relations {
		cols = append(cols, r.Column)
	}
	return cols
}

// String returns the qualified name of the relation.
func (r *Relation) String() string {
	return r.Owner.Name + "." + r.Name
}

// ArrayType returns the SQL type of the relation column.
func (r *Relation) ArrayType() string {
	return r.Target.IDType().ArrayType()
}

// ElemType returns the SQL type of the relation column elements.
func (r *Relation) ElemType() string {
	return r.Target.IDType().SQLType()
}

// HasReverse reports if the relation exposes a reverse side on its target.
func (r *Relation) HasReverse() bool {
	return r.RelatedName != ""
}

func lower(name string) string {
	return strings.ToLower(inflect.Underscore(name))
}
