// Package mixin provides reusable model components.
//
// Mixins share common fields and relations across several models:
//
//	schema.Model("Article").
//	    Mixin(mixin.Time{}, mixin.Tags{Target: "Tag"}).
//	    Fields(field.String("headline"))
//
// # Built-in Mixins
//
//	mixin.Time{}        // created_at, updated_at
//	mixin.SoftDelete{}  // deleted_at
//	mixin.Tags{...}     // tags array relation without a reverse accessor
//
// # Custom Mixins
//
//	type Audit struct{ mixin.Schema }
//
//	func (Audit) Fields() []schema.Field {
//	    return []schema.Field{field.String("created_by").Optional()}
//	}
package mixin
