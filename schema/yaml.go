package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/syssam/arrayrel/schema/edge"
	"github.com/syssam/arrayrel/schema/field"
)

type (
	yamlFile struct {
		Models []yamlModel `yaml:"models"`
	}
	yamlModel struct {
		Name       string         `yaml:"name"`
		Table      string         `yaml:"table"`
		ID         *yamlField     `yaml:"id"`
		Fields     []yamlField    `yaml:"fields"`
		Relations  []yamlRelation `yaml:"relations"`
		Inherits   string         `yaml:"inherits"`
		ParentLink string         `yaml:"parent_link"`
		Ordering   []string       `yaml:"ordering"`
		Mixins     []yamlMixin    `yaml:"mixins"`
		Comment    string         `yaml:"comment"`
	}
	yamlMixin struct {
		Name   string `yaml:"name"`
		Target string `yaml:"target"`
	}
	yamlField struct {
		Name     string `yaml:"name"`
		Type     string `yaml:"type"`
		Column   string `yaml:"column"`
		Optional bool   `yaml:"optional"`
		Nillable bool   `yaml:"nillable"`
		Comment  string `yaml:"comment"`
	}
	yamlRelation struct {
		Name            string `yaml:"name"`
		Target          string `yaml:"target"`
		Symmetric       *bool  `yaml:"symmetric"`
		RelatedName     string `yaml:"related_name"`
		QueryName       string `yaml:"query_name"`
		Blank           bool   `yaml:"blank"`
		AllowDuplicates bool   `yaml:"allow_duplicates"`
		Column          string `yaml:"column"`
		Comment         string `yaml:"comment"`
	}
)

// LoadYAML parses a models file. Unknown keys are rejected. Mixins are
// resolved by the names given to RegisterMixin; the schema/mixin package
// registers its mixins when imported.
//
//	models:
//	  - name: Publication
//	    fields:
//	      - {name: title, type: string}
//	  - name: Article
//	    fields:
//	      - {name: headline, type: string}
//	    relations:
//	      - {name: publications, target: Publication}
//	    mixins:
//	      - {name: time}
//	      - {name: tags, target: Tag}
func LoadYAML(data []byte) ([]*Descriptor, error) {
	return DecodeYAML(bytes.NewReader(data))
}

// DecodeYAML is like LoadYAML but reads the models file from r.
func DecodeYAML(r io.Reader) ([]*Descriptor, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f yamlFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schema: empty models file")
		}
		return nil, fmt.Errorf("schema: decode models: %w", err)
	}
	descs := make([]*Descriptor, 0, len(f.Models))
	for _, m := range f.Models {
		d, err := m.descriptor()
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func (m yamlModel) descriptor() (*Descriptor, error) {
	b := Model(m.Name).
		Table(m.Table).
		Inherits(m.Inherits).
		ParentLink(m.ParentLink).
		Ordering(m.Ordering...).
		Comment(m.Comment)
	if m.ID != nil {
		id, err := m.ID.builder()
		if err != nil {
			return nil, fmt.Errorf("schema: model %q: id: %w", m.Name, err)
		}
		b.ID(id)
	}
	for _, f := range m.Fields {
		fb, err := f.builder()
		if err != nil {
			return nil, fmt.Errorf("schema: model %q: %w", m.Name, err)
		}
		b.Fields(fb)
	}
	for _, mx := range m.Mixins {
		f, ok := lookupMixin(mx.Name)
		if !ok {
			return nil, fmt.Errorf("schema: model %q: unknown mixin %q", m.Name, mx.Name)
		}
		b.Mixin(f(mx.Target))
	}
	for _, r := range m.Relations {
		e := edge.Array(r.Name, r.Target).
			RelatedName(r.RelatedName).
			QueryName(r.QueryName).
			StorageKey(r.Column).
			Comment(r.Comment)
		if r.Symmetric != nil {
			if *r.Symmetric {
				e.Symmetric()
			} else {
				e.Asymmetric()
			}
		}
		if r.Blank {
			e.Blank()
		}
		if r.AllowDuplicates {
			e.AllowDuplicates()
		}
		b.Edges(e)
	}
	d := b.Descriptor()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func (f yamlField) builder() (*field.Builder, error) {
	t, err := field.ParseType(f.Type)
	if err != nil {
		return nil, err
	}
	var b *field.Builder
	switch t {
	case field.TypeBool:
		b = field.Bool(f.Name)
	case field.TypeInt:
		b = field.Int(f.Name)
	case field.TypeInt64:
		b = field.Int64(f.Name)
	case field.TypeFloat64:
		b = field.Float(f.Name)
	case field.TypeString:
		b = field.String(f.Name)
	case field.TypeUUID:
		b = field.UUID(f.Name)
	case field.TypeTime:
		b = field.Time(f.Name)
	}
	b.StorageKey(f.Column).Comment(f.Comment)
	if f.Optional {
		b.Optional()
	}
	if f.Nillable {
		b.Nillable()
	}
	return b, nil
}
