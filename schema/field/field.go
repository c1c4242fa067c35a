package field

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// A Type represents a field type.
type Type uint8

// List of field types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt
	TypeInt64
	TypeFloat64
	TypeString
	TypeUUID
	TypeTime
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat64: "float64",
	TypeString:  "string",
	TypeUUID:    "uuid",
	TypeTime:    "time",
}

var sqlTypes = [...]string{
	TypeBool:    "boolean",
	TypeInt:     "integer",
	TypeInt64:   "bigint",
	TypeFloat64: "double precision",
	TypeString:  "text",
	TypeUUID:    "uuid",
	TypeTime:    "timestamp with time zone",
}

// String returns the string representation of a type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type if known type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeInt64 || t == TypeFloat64
}

// Identifier reports if the type can be used as a primary key, and
// therefore as the element type of an array relation.
func (t Type) Identifier() bool {
	switch t {
	case TypeInt, TypeInt64, TypeString, TypeUUID:
		return true
	}
	return false
}

// SQLType returns the PostgreSQL column type.
func (t Type) SQLType() string {
	if !t.Valid() {
		return ""
	}
	return sqlTypes[t]
}

// ArrayType returns the PostgreSQL array type holding elements of this type.
func (t Type) ArrayType() string {
	if !t.Valid() {
		return ""
	}
	return sqlTypes[t] + "[]"
}

// ParseType parses the type name used in model files.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "bool", "boolean":
		return TypeBool, nil
	case "int", "integer", "int32":
		return TypeInt, nil
	case "int64", "bigint":
		return TypeInt64, nil
	case "float", "float64", "double":
		return TypeFloat64, nil
	case "string", "text":
		return TypeString, nil
	case "uuid":
		return TypeUUID, nil
	case "time", "timestamp", "timestamptz":
		return TypeTime, nil
	}
	return TypeInvalid, fmt.Errorf("field: unknown type %q", s)
}

// Normalize converts a raw identifier to the canonical Go value of the type:
// int64 for integer types, uuid.UUID for UUIDs and string for strings.
func (t Type) Normalize(v any) (any, error) {
	switch t {
	case TypeInt, TypeInt64:
		return normalizeInt(v)
	case TypeUUID:
		switch v := v.(type) {
		case uuid.UUID:
			return v, nil
		case [16]byte:
			return uuid.UUID(v), nil
		case string:
			u, err := uuid.Parse(v)
			if err != nil {
				return nil, fmt.Errorf("field: invalid uuid %q: %w", v, err)
			}
			return u, nil
		case []byte:
			u, err := uuid.FromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("field: invalid uuid bytes: %w", err)
			}
			return u, nil
		}
	case TypeString:
		switch v := v.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		case fmt.Stringer:
			return v.String(), nil
		}
	default:
		return nil, fmt.Errorf("field: type %s cannot hold identifiers", t)
	}
	return nil, fmt.Errorf("field: %T is not a valid %s identifier", v, t)
}

func normalizeInt(v any) (any, error) {
	switch v := v.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, fmt.Errorf("field: identifier %d overflows int64", v)
		}
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("field: identifier %d overflows int64", v)
		}
		return int64(v), nil
	}
	return nil, fmt.Errorf("field: %T is not a valid integer identifier", v)
}

// A Descriptor for field configuration.
type Descriptor struct {
	Name       string // field name.
	StorageKey string // sql column name, defaults to Name.
	Type       Type   // field type.
	Optional   bool   // nullable field in database.
	Nillable   bool   // nullable struct field; scanned as nil instead of the zero value.
	Comment    string // field comment.
}

// Column returns the column name of the field.
func (d *Descriptor) Column() string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Name
}

// Err returns an error if the descriptor is invalid.
func (d *Descriptor) Err() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("field: missing name")
	case !d.Type.Valid():
		return fmt.Errorf("field %q: invalid type", d.Name)
	case strings.Contains(d.Name, "__"):
		return fmt.Errorf("field %q: name must not contain the lookup separator %q", d.Name, "__")
	}
	return nil
}

// Builder is the builder for all field types.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, t Type) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: t}}
}

// Bool returns a new field with type bool.
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// Int returns a new field with type int.
func Int(name string) *Builder { return newBuilder(name, TypeInt) }

// Int64 returns a new field with type int64.
func Int64(name string) *Builder { return newBuilder(name, TypeInt64) }

// Float returns a new field with type float64.
func Float(name string) *Builder { return newBuilder(name, TypeFloat64) }

// String returns a new field with type string.
func String(name string) *Builder { return newBuilder(name, TypeString) }

// Text returns a new string field. Kept for symmetry with other schema
// definitions; PostgreSQL stores both as text.
func Text(name string) *Builder { return newBuilder(name, TypeString) }

// UUID returns a new field with type uuid.
func UUID(name string) *Builder { return newBuilder(name, TypeUUID) }

// Time returns a new field with type timestamp.
func Time(name string) *Builder { return newBuilder(name, TypeTime) }

// StorageKey sets the storage key (column name) of the field.
func (b *Builder) StorageKey(key string) *Builder {
	b.desc.StorageKey = key
	return b
}

// Optional indicates that this field is optional and nullable in the database.
func (b *Builder) Optional() *Builder {
	b.desc.Optional = true
	return b
}

// Nillable indicates that this field is a nullable value that is returned
// as nil, rather than the zero value, when it is NULL in the database.
func (b *Builder) Nillable() *Builder {
	b.desc.Nillable = true
	b.desc.Optional = true
	return b
}

// Comment sets the comment of the field.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the schema field interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}
