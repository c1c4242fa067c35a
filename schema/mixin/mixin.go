package mixin

import (
	"github.com/syssam/arrayrel/schema"
	"github.com/syssam/arrayrel/schema/edge"
	"github.com/syssam/arrayrel/schema/field"
)

// Schema is the default implementation for the schema.Mixin interface.
// It should be embedded in all custom mixin definitions.
//
// Example:
//
//	type MyMixin struct {
//	    mixin.Schema
//	}
//
//	func (MyMixin) Fields() []schema.Field {
//	    return []schema.Field{
//	        field.String("custom_field"),
//	    }
//	}
type Schema struct{}

// Fields returns the fields of the mixin.
func (Schema) Fields() []schema.Field { return nil }

// Edges returns the relations of the mixin.
func (Schema) Edges() []schema.Edge { return nil }

var _ schema.Mixin = (*Schema)(nil)

func init() {
	schema.RegisterMixin("time", func(string) schema.Mixin { return Time{} })
	schema.RegisterMixin("soft_delete", func(string) schema.Mixin { return SoftDelete{} })
	schema.RegisterMixin("tags", func(target string) schema.Mixin { return Tags{Target: target} })
}

// Time adds created_at and updated_at timestamp fields to a model.
type Time struct {
	Schema
}

// Fields returns the time tracking fields.
func (Time) Fields() []schema.Field {
	return []schema.Field{
		field.Time("created_at").
			Optional().
			Comment("Timestamp when the row was created"),
		field.Time("updated_at").
			Optional().
			Comment("Timestamp when the row was last updated"),
	}
}

// SoftDelete adds a deleted_at field for soft deletion support.
type SoftDelete struct {
	Schema
}

// Fields returns the soft delete field.
func (SoftDelete) Fields() []schema.Field {
	return []schema.Field{
		field.Time("deleted_at").
			Nillable().
			Comment("Timestamp when the row was soft deleted (nil means not deleted)"),
	}
}

// Tags adds a "tags" array relation to the given target model. The reverse
// accessor is suppressed, as tag models are shared by many owners.
//
//	schema.Model("Article").Mixin(mixin.Tags{Target: "Tag"})
type Tags struct {
	Schema
	// Target is the tag model name.
	Target string
	// Name overrides the relation name. Defaults to "tags".
	Name string
}

// Edges returns the tags relation.
func (t Tags) Edges() []schema.Edge {
	name := t.Name
	if name == "" {
		name = "tags"
	}
	return []schema.Edge{
		edge.Array(name, t.Target).NoReverse().Blank(),
	}
}
