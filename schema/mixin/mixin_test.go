package mixin_test

import (
	"testing"

	"github.com/syssam/arrayrel/schema"
	"github.com/syssam/arrayrel/schema/edge"
	"github.com/syssam/arrayrel/schema/field"
	"github.com/syssam/arrayrel/schema/mixin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSchemaBaseMixin tests the base Schema mixin.
func TestSchemaBaseMixin(t *testing.T) {
	m := mixin.Schema{}

	t.Run("returns_nil_fields", func(t *testing.T) {
		assert.Nil(t, m.Fields())
	})

	t.Run("returns_nil_edges", func(t *testing.T) {
		assert.Nil(t, m.Edges())
	})
}

// TestMixinImplementsInterface tests that the mixins implement schema.Mixin.
func TestMixinImplementsInterface(t *testing.T) {
	var _ schema.Mixin = mixin.Schema{}
	var _ schema.Mixin = mixin.Time{}
	var _ schema.Mixin = mixin.SoftDelete{}
	var _ schema.Mixin = mixin.Tags{}
}

type customMixin struct {
	mixin.Schema
}

func (customMixin) Fields() []schema.Field {
	return []schema.Field{
		field.String("field1"),
		field.String("field2"),
	}
}

func TestTime(t *testing.T) {
	fields := mixin.Time{}.Fields()
	require.Len(t, fields, 2)
	created, updated := fields[0].Descriptor(), fields[1].Descriptor()
	assert.Equal(t, "created_at", created.Name)
	assert.Equal(t, field.TypeTime, created.Type)
	assert.True(t, created.Optional)
	assert.Equal(t, "updated_at", updated.Name)
	assert.Nil(t, mixin.Time{}.Edges())
}

func TestSoftDelete(t *testing.T) {
	fields := mixin.SoftDelete{}.Fields()
	require.Len(t, fields, 1)
	d := fields[0].Descriptor()
	assert.Equal(t, "deleted_at", d.Name)
	assert.True(t, d.Nillable)
	assert.True(t, d.Optional)
}

func TestTags(t *testing.T) {
	t.Run("default_name", func(t *testing.T) {
		edges := mixin.Tags{Target: "Tag"}.Edges()
		require.Len(t, edges, 1)
		d := edges[0].Descriptor()
		assert.Equal(t, "tags", d.Name)
		assert.Equal(t, "Tag", d.Target)
		assert.Equal(t, edge.Hidden, d.RelatedName)
		assert.True(t, d.Suppressed())
		assert.True(t, d.Blank)
	})

	t.Run("custom_name", func(t *testing.T) {
		d := mixin.Tags{Target: "Label", Name: "labels"}.Edges()[0].Descriptor()
		assert.Equal(t, "labels", d.Name)
		assert.Equal(t, "labels", d.Column())
	})
}

func TestModelMixin(t *testing.T) {
	d := schema.Model("Article").
		Mixin(mixin.Time{}, customMixin{}, mixin.Tags{Target: "Tag"}).
		Fields(field.String("headline")).
		Descriptor()
	require.Len(t, d.Fields, 5)
	assert.Equal(t, "created_at", d.Fields[0].Name)
	assert.Equal(t, "field1", d.Fields[2].Name)
	assert.Equal(t, "headline", d.Fields[4].Name)
	require.Len(t, d.Edges, 1)
	assert.Equal(t, "tags", d.Edges[0].Name)
	require.NoError(t, d.Err())
}

func TestYAMLMixins(t *testing.T) {
	descs, err := schema.LoadYAML([]byte(`
models:
  - name: Tag
  - name: Article
    fields:
      - {name: headline, type: string}
    mixins:
      - {name: time}
      - {name: soft_delete}
      - {name: tags, target: Tag}
`))
	require.NoError(t, err)
	require.Len(t, descs, 2)
	d := descs[1]
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"headline", "created_at", "updated_at", "deleted_at"}, names)
	require.Len(t, d.Edges, 1)
	assert.Equal(t, "Tag", d.Edges[0].Target)

	_, err = schema.LoadYAML([]byte("models:\n  - name: Article\n    mixins:\n      - {name: audit}\n"))
	assert.ErrorContains(t, err, `unknown mixin "audit"`)
}

func TestRegisterMixinTwice(t *testing.T) {
	assert.Panics(t, func() {
		schema.RegisterMixin("time", func(string) schema.Mixin { return mixin.Time{} })
	})
}
