package arrayrel

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/graph"
	"github.com/syssam/arrayrel/schema/field"
)

// Entity is a model instance. Entities can be given wherever a related
// object is expected; they resolve to their primary key.
type Entity interface {
	// ModelName returns the name of the entity's model.
	ModelName() string
	// PK returns the primary key, or nil if the entity is not saved.
	PK() any
}

type ref struct {
	model string
	id    any
}

func (r ref) ModelName() string { return r.model }
func (r ref) PK() any           { return r.id }

// Ref returns an entity of the given model identified by id. A nil id
// refers to an unsaved instance.
func Ref(model string, id any) Entity {
	return ref{model: model, id: id}
}

// Record is a row loaded by a query.
type Record struct {
	model   *graph.Model
	id      any
	values  map[string]any
	related map[string][]*Record
}

// ModelName returns the name of the record's model.
func (r *Record) ModelName() string {
	if r == nil || r.model == nil {
		return ""
	}
	return r.model.Name
}

// PK returns the primary key of the record.
func (r *Record) PK() any {
	if r == nil {
		return nil
	}
	return r.id
}

// Model returns the model of the record.
func (r *Record) Model() *graph.Model {
	return r.model
}

// Get returns the value of a field or relation. Relation values are the
// identifiers stored in the array column, in order. The name "pk" returns
// the primary key.
func (r *Record) Get(name string) (any, bool) {
	if name == graph.PK {
		return r.id, true
	}
	v, ok := r.values[name]
	return v, ok
}

// IDs returns the identifiers stored in the given relation column.
func (r *Record) IDs(relation string) []any {
	ids, _ := r.values[relation].([]any)
	return ids
}

// Related returns the records of a relation or reverse accessor loaded by
// Query.WithRelated.
func (r *Record) Related(name string) ([]*Record, error) {
	rs, ok := r.related[name]
	if !ok {
		return nil, NewNotLoadedError(name)
	}
	return rs, nil
}

func (r *Record) setRelated(name string, rs []*Record) {
	if r.related == nil {
		r.related = make(map[string][]*Record)
	}
	r.related[name] = rs
}

// resolveID resolves an entity or a raw identifier to the canonical
// primary key value of the target model.
func (c *config) resolveID(target *graph.Model, v any) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, &TypeError{Expected: target.Name, Got: "nil"}
	case *Query:
		return nil, &TypeError{Expected: target.Name, Got: "query"}
	case Entity:
		m := c.graph.Model(v.ModelName())
		if m == nil || !m.Is(target) {
			return nil, &TypeError{Expected: target.Name, Got: v.ModelName()}
		}
		pk := v.PK()
		if pk == nil {
			return nil, &UnboundError{Model: m.Name}
		}
		id, err := target.IDType().Normalize(pk)
		if err != nil {
			return nil, &TypeError{Expected: target.Name, Got: fmt.Sprintf("%s with %T key", m.Name, pk)}
		}
		return id, nil
	default:
		id, err := target.IDType().Normalize(v)
		if err != nil {
			return nil, &TypeError{Expected: target.Name, Got: fmt.Sprintf("%T", v)}
		}
		return id, nil
	}
}

// resolveIDs resolves the given items element-wise. Sequences are
// flattened one level, so identifiers, entities and slices of either can
// be mixed.
func (c *config) resolveIDs(target *graph.Model, items ...any) ([]any, error) {
	ids := make([]any, 0, len(items))
	for _, item := range items {
		if !isSequence(item) {
			id, err := c.resolveID(target, item)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
			continue
		}
		rv := reflect.ValueOf(item)
		for i := 0; i < rv.Len(); i++ {
			id, err := c.resolveID(target, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// isSequence reports if v is a slice or an array of values. Byte slices
// and arrays (such as uuid.UUID) are single values.
func isSequence(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return t.Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}

// selected is a column in the select list of a model query.
type selected struct {
	name  string // field or relation name, empty for the primary key.
	expr  string // qualified column.
	value sql.Querier
	typ   field.Type
	array bool
}

// scanDest returns the scan destination of a column of the given type.
func scanDest(t field.Type, array bool) any {
	if array {
		switch t {
		case field.TypeInt, field.TypeInt64:
			return &pq.Int64Array{}
		default:
			return &pq.StringArray{}
		}
	}
	switch t {
	case field.TypeBool:
		return &sql.NullBool{}
	case field.TypeInt, field.TypeInt64:
		return &sql.NullInt64{}
	case field.TypeFloat64:
		return &sql.NullFloat64{}
	case field.TypeUUID:
		return &uuid.NullUUID{}
	case field.TypeTime:
		return &sql.NullTime{}
	default:
		return &sql.NullString{}
	}
}

// scanValue returns the Go value held by a scan destination.
func scanValue(t field.Type, dest any) (any, error) {
	switch d := dest.(type) {
	case *pq.Int64Array:
		vs := make([]any, len(*d))
		for i, v := range *d {
			vs[i] = v
		}
		return vs, nil
	case *pq.StringArray:
		vs := make([]any, len(*d))
		for i, v := range *d {
			if t != field.TypeUUID {
				vs[i] = v
				continue
			}
			u, err := uuid.Parse(v)
			if err != nil {
				return nil, fmt.Errorf("arrayrel: invalid uuid element %q: %w", v, err)
			}
			vs[i] = u
		}
		return vs, nil
	case *sql.NullBool:
		if d.Valid {
			return d.Bool, nil
		}
	case *sql.NullInt64:
		if d.Valid {
			return d.Int64, nil
		}
	case *sql.NullFloat64:
		if d.Valid {
			return d.Float64, nil
		}
	case *uuid.NullUUID:
		if d.Valid {
			return d.UUID, nil
		}
	case *sql.NullTime:
		if d.Valid {
			return d.Time, nil
		}
	case *sql.NullString:
		if d.Valid {
			return d.String, nil
		}
	}
	return nil, nil
}

// scanRecord scans the current row into a record of model m. Columns past
// the selected ones (ordering terms) are discarded.
func scanRecord(rows *sql.Rows, m *graph.Model, cols []selected, extra int) (*Record, error) {
	dests := make([]any, 0, len(cols)+extra)
	for _, c := range cols {
		dests = append(dests, scanDest(c.typ, c.array))
	}
	for i := 0; i < extra; i++ {
		dests = append(dests, new(any))
	}
	if err := rows.Scan(dests...); err != nil {
		return nil, err
	}
	rec := &Record{model: m, values: make(map[string]any, len(cols))}
	for i, c := range cols {
		v, err := scanValue(c.typ, dests[i])
		if err != nil {
			return nil, err
		}
		if c.name == "" {
			rec.id = v
			continue
		}
		rec.values[c.name] = v
	}
	return rec, nil
}
