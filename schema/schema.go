package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/syssam/arrayrel/schema/edge"
	"github.com/syssam/arrayrel/schema/field"
)

type (
	// Field is implemented by the field builders.
	Field interface {
		Descriptor() *field.Descriptor
	}

	// Edge is implemented by the edge builders.
	Edge interface {
		Descriptor() *edge.Descriptor
	}

	// Mixin is a reusable set of fields and relations that can be
	// attached to several models.
	Mixin interface {
		Fields() []Field
		Edges() []Edge
	}
)

// A Descriptor holds the declaration of a single model.
type Descriptor struct {
	Name       string
	Table      string              // defaults to the pluralized snake-case name.
	ID         *field.Descriptor   // defaults to an int64 "id" field.
	Fields     []*field.Descriptor // scalar fields, the ID excluded.
	Edges      []*edge.Descriptor  // array relations declared on this model.
	Parent     string              // parent model in multi-table inheritance.
	ParentLink string              // child column that references the parent id.
	Ordering   []string            // default ordering; "-" prefix for descending.
	Comment    string
}

// Err returns an error if the declaration is invalid on its own. Errors that
// need the other models (unknown targets, cycles) are reported by the graph.
func (d *Descriptor) Err() error {
	var errs []error
	if d.Name == "" {
		return errors.New("schema: model without a name")
	}
	if strings.Contains(d.Name, "__") {
		errs = append(errs, fmt.Errorf("schema: model %q: name must not contain %q", d.Name, "__"))
	}
	if d.ID != nil {
		if err := d.ID.Err(); err != nil {
			errs = append(errs, fmt.Errorf("schema: model %q: id: %w", d.Name, err))
		} else if !d.ID.Type.Identifier() {
			errs = append(errs, fmt.Errorf("schema: model %q: id type %s cannot be a primary key", d.Name, d.ID.Type))
		}
	}
	for _, f := range d.Fields {
		if err := f.Err(); err != nil {
			errs = append(errs, fmt.Errorf("schema: model %q: %w", d.Name, err))
		}
	}
	for _, e := range d.Edges {
		if err := e.Err(); err != nil {
			errs = append(errs, fmt.Errorf("schema: model %q: %w", d.Name, err))
		}
	}
	if d.ParentLink != "" && d.Parent == "" {
		errs = append(errs, fmt.Errorf("schema: model %q: parent link %q without a parent", d.Name, d.ParentLink))
	}
	return errors.Join(errs...)
}

// ModelBuilder is the fluent builder of model declarations.
type ModelBuilder struct {
	desc *Descriptor
}

// Model returns a new model builder.
//
//	schema.Model("Article").
//		Fields(field.String("headline")).
//		Edges(edge.Array("publications", "Publication")).
//		Ordering("headline")
func Model(name string) *ModelBuilder {
	return &ModelBuilder{desc: &Descriptor{Name: name}}
}

// Table sets the table name of the model.
func (b *ModelBuilder) Table(name string) *ModelBuilder {
	b.desc.Table = name
	return b
}

// ID sets the primary key field of the model.
func (b *ModelBuilder) ID(f Field) *ModelBuilder {
	b.desc.ID = f.Descriptor()
	return b
}

// Fields appends scalar fields to the model.
func (b *ModelBuilder) Fields(fields ...Field) *ModelBuilder {
	for _, f := range fields {
		b.desc.Fields = append(b.desc.Fields, f.Descriptor())
	}
	return b
}

// Edges appends array relations to the model.
func (b *ModelBuilder) Edges(edges ...Edge) *ModelBuilder {
	for _, e := range edges {
		b.desc.Edges = append(b.desc.Edges, e.Descriptor())
	}
	return b
}

var (
	mixinsMu sync.RWMutex
	mixins   = make(map[string]func(target string) Mixin)
)

// RegisterMixin makes a mixin available to models files under the given
// name. The target is the value of the "target" key of the mixin entry,
// used by mixins that declare relations. It panics if the name is already
// registered.
func RegisterMixin(name string, f func(target string) Mixin) {
	mixinsMu.Lock()
	defer mixinsMu.Unlock()
	if f == nil {
		panic("schema: RegisterMixin of nil mixin " + name)
	}
	if _, dup := mixins[name]; dup {
		panic("schema: RegisterMixin called twice for mixin " + name)
	}
	mixins[name] = f
}

func lookupMixin(name string) (func(target string) Mixin, bool) {
	mixinsMu.RLock()
	defer mixinsMu.RUnlock()
	f, ok := mixins[name]
	return f, ok
}

// Mixin appends the fields and relations of the given mixins.
func (b *ModelBuilder) Mixin(mixins ...Mixin) *ModelBuilder {
	for _, m := range mixins {
		b.Fields(m.Fields()...)
		b.Edges(m.Edges()...)
	}
	return b
}

// Inherits declares the model as a child of parent in multi-table
// inheritance. The child table holds only the child's own columns and a
// link column that is both its primary key and a reference to the parent.
func (b *ModelBuilder) Inherits(parent string) *ModelBuilder {
	b.desc.Parent = parent
	return b
}

// ParentLink sets the name of the child column that references the parent.
func (b *ModelBuilder) ParentLink(column string) *ModelBuilder {
	b.desc.ParentLink = column
	return b
}

// Ordering sets the default ordering of the model.
func (b *ModelBuilder) Ordering(fields ...string) *ModelBuilder {
	b.desc.Ordering = fields
	return b
}

// Comment sets the model comment.
func (b *ModelBuilder) Comment(c string) *ModelBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the model declaration.
func (b *ModelBuilder) Descriptor() *Descriptor {
	return b.desc
}
