package edge

import (
	"fmt"
	"strings"
)

const (
	// Self is the target of a relation that points back to its own model.
	Self = "self"
	// Hidden is the related name that suppresses the reverse accessor and
	// the reverse query name of a relation.
	Hidden = "+"
)

// A Descriptor for an array relation.
type Descriptor struct {
	Name            string // relation name, and the default column name.
	Target          string // target model name, or Self.
	Symmetric       *bool  // nil means "derive": symmetric for self relations.
	RelatedName     string // reverse accessor name, or Hidden.
	QueryName       string // reverse query name used in lookups.
	Blank           bool   // relation may be empty on validation.
	AllowDuplicates bool   // append without de-duplication.
	StorageKey      string // array column name.
	Comment         string
}

// Column returns the name of the array column that stores the relation.
func (d *Descriptor) Column() string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Name
}

// IsSelf reports if the relation targets its own model.
func (d *Descriptor) IsSelf(owner string) bool {
	return d.Target == Self || d.Target == owner
}

// Suppressed reports if the reverse side of the relation was suppressed
// with the Hidden related name.
func (d *Descriptor) Suppressed() bool {
	return d.RelatedName == Hidden || strings.HasSuffix(d.RelatedName, Hidden)
}

// Err returns an error if the descriptor is invalid.
func (d *Descriptor) Err() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("edge: missing name")
	case d.Target == "":
		return fmt.Errorf("edge %q: missing target", d.Name)
	case strings.Contains(d.Name, "__"):
		return fmt.Errorf("edge %q: name must not contain the lookup separator %q", d.Name, "__")
	case !d.Suppressed() && strings.Contains(d.RelatedName, "__"):
		return fmt.Errorf("edge %q: related name %q must not contain %q", d.Name, d.RelatedName, "__")
	case strings.Contains(d.QueryName, "__"):
		return fmt.Errorf("edge %q: query name %q must not contain %q", d.Name, d.QueryName, "__")
	}
	return nil
}

// Builder for array relations.
type Builder struct {
	desc *Descriptor
}

// Array returns a new many-to-many relation stored as an array of target
// primary keys on the owning model's table.
//
//	edge.Array("publications", "Publication")
//	edge.Array("friends", edge.Self)
func Array(name, target string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Target: target}}
}

// Symmetric marks a self relation as symmetric. Every change made on one
// side is mirrored on the counterpart rows.
func (b *Builder) Symmetric() *Builder {
	v := true
	b.desc.Symmetric = &v
	return b
}

// Asymmetric marks a self relation as one-directional.
//
//	edge.Array("idols", edge.Self).Asymmetric().RelatedName("stalkers")
func (b *Builder) Asymmetric() *Builder {
	v := false
	b.desc.Symmetric = &v
	return b
}

// RelatedName sets the reverse accessor name on the target model.
func (b *Builder) RelatedName(name string) *Builder {
	b.desc.RelatedName = name
	return b
}

// NoReverse suppresses the reverse accessor and the reverse query name.
func (b *Builder) NoReverse() *Builder {
	b.desc.RelatedName = Hidden
	return b
}

// QueryName sets the reverse name used in lookups on the target model.
func (b *Builder) QueryName(name string) *Builder {
	b.desc.QueryName = name
	return b
}

// Blank allows the relation to be empty in model validation.
func (b *Builder) Blank() *Builder {
	b.desc.Blank = true
	return b
}

// AllowDuplicates lets the array hold the same identifier more than once.
func (b *Builder) AllowDuplicates() *Builder {
	b.desc.AllowDuplicates = true
	return b
}

// StorageKey sets the array column name.
func (b *Builder) StorageKey(column string) *Builder {
	b.desc.StorageKey = column
	return b
}

// Comment sets the relation comment.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the schema edge interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}
