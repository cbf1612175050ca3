// Package reconcile merges stored nested values with partial updates.
//
// The shape of every field is declared up front in a Schema. A field is
// either a scalar (overwritten verbatim), an object (merged key by key) or a
// collection of identity-bearing sub-documents (merged by identity). Keys that
// a Schema does not declare are scalars.
package reconcile

const (
	// IdentityKey is the key holding a sub-document identity
	IdentityKey = "id"
	// TombstoneKey is the key carrying a removal instruction
	TombstoneKey = "isDeleted"
)

// FieldKind is the declared shape of a field
type FieldKind int

const (
	Scalar FieldKind = iota
	Object
	Collection
)

func (k FieldKind) String() string {
	switch k {
	case Object:
		return "object"
	case Collection:
		return "collection"
	default:
		return "scalar"
	}
}

// Field declares one field of a Schema. Nested describes the keys of an
// object field; it is nil when every nested key is a scalar.
type Field struct {
	Kind   FieldKind
	Nested Schema
}

// Schema maps field names to their declared shape
type Schema map[string]Field

// ObjectField declares an object field with an optional nested schema
func ObjectField(nested Schema) Field {
	return Field{Kind: Object, Nested: nested}
}

// CollectionField declares a collection of sub-documents
func CollectionField() Field {
	return Field{Kind: Collection}
}

// Kind returns the declared kind of key, Scalar when undeclared
func (s Schema) Kind(key string) FieldKind {
	if s == nil {
		return Scalar
	}
	return s[key].Kind
}

func (s Schema) nested(key string) Schema {
	if s == nil {
		return nil
	}
	return s[key].Nested
}
