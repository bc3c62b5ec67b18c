package types

import "github.com/stephengoldbaum/icppgo/layout"

// TupleIndex, PropertyID, and FieldID are globally interned identifiers
// used to address tuple slots, record properties, and entity fields
// respectively (spec §3 "Record descriptor", "Entity descriptor").
type (
	TupleIndex = uint32
	PropertyID = uint32
	FieldID    = uint32
)

// TupleShape extends a struct/ref descriptor with positional layout
// (spec §3 "Tuple descriptor").
type TupleShape struct {
	MaxIndex   int
	TTypes     []layout.TypeID
	IdxOffsets []uint32
}

// OffsetOf returns the byte offset of tuple index idx, and whether idx is
// in range.
func (s *TupleShape) OffsetOf(idx int) (uint32, bool) {
	if s == nil || idx < 0 || idx >= len(s.IdxOffsets) {
		return 0, false
	}
	return s.IdxOffsets[idx], true
}

// RecordShape extends a struct/ref descriptor with named-property layout
// (spec §3 "Record descriptor").
type RecordShape struct {
	PropertyIDs     []PropertyID
	RTypes          []layout.TypeID
	PropertyOffsets []uint32
}

// OffsetOf searches for propID the way the original's Virtual field ops
// linearly scan the property table at runtime (spec §4.4 "LoadRecordPropertyVirtual").
func (s *RecordShape) OffsetOf(propID PropertyID) (uint32, layout.TypeID, bool) {
	if s == nil {
		return 0, 0, false
	}
	for i, p := range s.PropertyIDs {
		if p == propID {
			return s.PropertyOffsets[i], s.RTypes[i], true
		}
	}
	return 0, 0, false
}

// EntityShape extends a struct/ref descriptor with named-field layout
// (spec §3 "Entity descriptor").
type EntityShape struct {
	FieldIDs    []FieldID
	FieldTypes  []layout.TypeID
	FieldOffsets []uint32
}

// OffsetOf searches for fieldID (spec §4.4 "LoadEntityFieldVirtual").
func (s *EntityShape) OffsetOf(fieldID FieldID) (uint32, layout.TypeID, bool) {
	if s == nil {
		return 0, 0, false
	}
	for i, f := range s.FieldIDs {
		if f == fieldID {
			return s.FieldOffsets[i], s.FieldTypes[i], true
		}
	}
	return 0, 0, false
}

// EphemeralShape extends a struct descriptor with positional layout for
// a stack-only, never-heap-allocated, never-a-union-variant value (spec
// §3 "Ephemeral-list descriptor").
type EphemeralShape struct {
	ETypes     []layout.TypeID
	IdxOffsets []uint32
}

func (s *EphemeralShape) OffsetOf(idx int) (uint32, bool) {
	if s == nil || idx < 0 || idx >= len(s.IdxOffsets) {
		return 0, false
	}
	return s.IdxOffsets[idx], true
}

// UnionShape records the variant set of a union descriptor (spec §3:
// UnionRef/UnionInline/UnionUniversal "subtypes").
type UnionShape struct {
	Subtypes []layout.TypeID
}

// Contains reports whether tid is one of the union's declared variants.
func (s *UnionShape) Contains(tid layout.TypeID) bool {
	if s == nil {
		return false
	}
	for _, v := range s.Subtypes {
		if v == tid {
			return true
		}
	}
	return false
}

// Type is the immutable descriptor record for one TypeID (spec §3
// "TypeDescriptor"). Created once at program load and never mutated
// afterward (spec §3 "Lifecycle").
type Type struct {
	TID      layout.TypeID
	Name     string
	Category Category
	Size     SizeInfo

	GC      GCFunctors
	KeyCmp  KeyCmpFunc
	Display DisplayFunc

	// VTable maps a virtual-invoke ID to this type's concrete invoke ID,
	// populated by the program loader from the type declaration's vtable
	// field (spec §4.4 "InvokeVirtualFunction").
	VTable map[uint32]uint32

	// Category-specific shape; exactly one (or none) is non-nil depending
	// on Category.
	Tuple     *TupleShape
	Record    *RecordShape
	Entity    *EntityShape
	Ephemeral *EphemeralShape
	Union     *UnionShape

	// BoxedOf is set on a BoxedStruct descriptor to the struct TypeID it
	// boxes, and on a Struct descriptor to the TypeID of its associated
	// BoxedStruct envelope (0 if the struct has none) — used by Coerce
	// when auto-boxing a struct into a UnionUniversal (spec §4.3 table).
	BoxedOf layout.TypeID
}

// IsKeyComparable reports whether this type exposes a usable comparator
// (spec §4.3 "Key comparison": Float/Decimal/Rational/non-comparable
// aggregates have keyCmp=⊥).
func (t *Type) IsKeyComparable() bool {
	return t != nil && t.KeyCmp != nil
}
