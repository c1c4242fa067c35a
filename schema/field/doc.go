// Package field provides fluent builders for the scalar fields of models
// that take part in array-backed relations.
//
// Field names are also the column names unless a storage key is set:
//
//	field.String("headline")                    // column: headline
//	field.Int64("legacy_id").StorageKey("lid")  // column: lid
//
// # Field Types
//
//	field.Bool("active")
//	field.Int("rank")
//	field.Int64("big_number")
//	field.Float("price")
//	field.String("name")
//	field.UUID("id")
//	field.Time("created_at")
//
// # Identifier Types
//
// A model's primary key must be one of TypeInt, TypeInt64, TypeUUID or
// TypeString. The primary key type is the element type of every array
// column that references the model:
//
//	field.TypeInt64.ArrayType() // "bigint[]"
//	field.TypeUUID.ArrayType()  // "uuid[]"
//
// Type.Normalize converts raw identifiers (int, uint32, string UUIDs, ...)
// to the canonical Go value bound to array parameters.
package field
