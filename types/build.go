package types

import "github.com/stephengoldbaum/icppgo/layout"

// NewPrimitiveType builds a leaf Register-category descriptor: Bool, Nat,
// Int, Float, the time/UUID/hash scalar types, etc. (spec §3 "Register
// descriptor"). heapSize is the payload width; primitives never need a
// heap allocation of their own, but HeapSize mirrors the size they'd take
// if boxed into a UnionUniversal's BoxedStruct fallback.
func NewPrimitiveType(tid layout.TypeID, name string, heapSize uint32, keyCmp KeyCmpFunc, display DisplayFunc) *Type {
	inline := AlignedWordSize(heapSize)
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: CategoryRegister,
		Size: SizeInfo{
			HeapSize:   heapSize,
			InlineSize: inline,
			AssignSize: inline,
			HeapMask:   "",
			InlineMask: "",
		},
		KeyCmp:  keyCmp,
		Display: display,
	}
	t.GC = GenericFunctors(t)
	return t
}

// NewEmptyType builds the two zero-payload descriptors None and Nothing
// (spec §3 "Empty descriptor": "no payload, no keyCmp needed beyond
// identity since every value of the type is indistinguishable").
func NewEmptyType(tid layout.TypeID, name string) *Type {
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: CategoryEmpty,
		KeyCmp:   func(_ *Type, _ *Registry, _, _ []byte) int { return 0 },
	}
	t.GC = GenericFunctors(t)
	return t
}

// NewBigNumType builds the inline-handle BigNum descriptor shared by
// BigNat, BigInt, Rational, and Decimal: spec §3 calls these "fully
// inline, never heap-traced", which in Go is realized as an 8-byte handle
// indexing an external side-table of boxed math/big or shopspring/decimal
// values (see values/bignum.go) rather than literal inline digits.
func NewBigNumType(tid layout.TypeID, name string, keyCmp KeyCmpFunc, display DisplayFunc) *Type {
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: CategoryBigNum,
		Size: SizeInfo{
			HeapSize:   layout.WordSize,
			InlineSize: layout.WordSize,
			AssignSize: layout.WordSize,
			HeapMask:   "",
			InlineMask: "",
		},
		KeyCmp:  keyCmp,
		Display: display,
	}
	t.GC = GenericFunctors(t)
	return t
}

// NewStringType builds the one well-known String descriptor (spec §3:
// String is always TypeIDString, a fixed 16-byte slot). keyCmp is supplied
// by the bsqstring package, which owns the byte-content comparator; types
// itself never interprets a string slot's payload.
func NewStringType(keyCmp KeyCmpFunc, display DisplayFunc) *Type {
	return NewStringLikeType(layout.TypeIDString, "String", keyCmp, display)
}

// NewStringLikeType builds a descriptor with String's 16-byte
// inline/K-repr/concat-tree slot shape under a different TypeID and name
// — used for ByteBuffer, which shares the exact chunking machinery (see
// bsqstring.ByteBuffer) but is a distinct type with no UTF-8 validity
// expectation (spec §9 "byte buffers ... the same leaf/node chain").
func NewStringLikeType(tid layout.TypeID, name string, keyCmp KeyCmpFunc, display DisplayFunc) *Type {
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: CategoryString,
		Size: SizeInfo{
			HeapSize:   16,
			InlineSize: 16,
			AssignSize: 16,
			HeapMask:   string(layout.MaskString),
			InlineMask: string(layout.MaskString),
		},
		KeyCmp:  keyCmp,
		Display: display,
	}
	t.GC = GenericFunctors(t)
	return t
}

// NewRefType builds a one-pointer-slot descriptor for a Collection (List,
// Map) or a Ref-category entity: a type whose values are always heap
// pointers with no inline representation of their own.
func NewRefType(tid layout.TypeID, name string, cat Category) *Type {
	if cat != CategoryRef && cat != CategoryCollection {
		panic("types: NewRefType requires CategoryRef or CategoryCollection")
	}
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: cat,
		Size: SizeInfo{
			HeapSize:   0,
			InlineSize: layout.WordSize,
			AssignSize: layout.WordSize,
			HeapMask:   "",
			InlineMask: string(layout.MaskOwnedPtr),
		},
	}
	t.GC = GenericFunctors(t)
	return t
}

// aggregateSize computes HeapSize/InlineSize/the two masks for a
// Tuple/Record/Entity/Ephemeral shape given its flat field type list and
// byte offsets, word-aligning each field's contribution the way the
// original's layout pass does (spec §3 "Struct descriptor").
func aggregateSize(fieldTypes []layout.TypeID, offsets []uint32, reg *Registry) (uint32, string) {
	var total uint32
	maskBytes := make([]byte, 0, len(fieldTypes))
	for i, ftid := range fieldTypes {
		ft := reg.MustLookup(ftid)
		w := fieldSlotWidth(ft)
		end := offsets[i] + w
		if end > total {
			total = end
		}
		maskBytes = append(maskBytes, fieldMaskChar(ft.Category))
	}
	return AlignedWordSize(total), string(maskBytes)
}

// NewTupleType builds a Struct-category Tuple descriptor. offsets must be
// pre-computed by the caller (program loader) by packing TTypes in order,
// word-aligning each field (spec §3 "Tuple descriptor": fields are stored
// in declaration order with no reordering for packing).
func NewTupleType(tid layout.TypeID, name string, ttypes []layout.TypeID, offsets []uint32, reg *Registry, boxed bool) *Type {
	size, mask := aggregateSize(ttypes, offsets, reg)
	cat := CategoryStruct
	if boxed {
		cat = CategoryBoxedStruct
	}
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: cat,
		Size: SizeInfo{
			HeapSize:   size,
			InlineSize: size,
			AssignSize: size,
			HeapMask:   mask,
			InlineMask: mask,
		},
		Tuple: &TupleShape{MaxIndex: len(ttypes) - 1, TTypes: ttypes, IdxOffsets: offsets},
	}
	t.Display = GenericAggregateDisplay
	t.GC = GenericFunctors(t)
	return t
}

// NewRecordType builds a Struct-category Record descriptor (spec §3
// "Record descriptor"): named properties, offsets precomputed by caller.
func NewRecordType(tid layout.TypeID, name string, propIDs []PropertyID, rtypes []layout.TypeID, offsets []uint32, reg *Registry, boxed bool) *Type {
	size, mask := aggregateSize(rtypes, offsets, reg)
	cat := CategoryStruct
	if boxed {
		cat = CategoryBoxedStruct
	}
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: cat,
		Size: SizeInfo{
			HeapSize:   size,
			InlineSize: size,
			AssignSize: size,
			HeapMask:   mask,
			InlineMask: mask,
		},
		Record: &RecordShape{PropertyIDs: propIDs, RTypes: rtypes, PropertyOffsets: offsets},
	}
	t.Display = GenericAggregateDisplay
	t.GC = GenericFunctors(t)
	return t
}

// NewEntityType builds a Struct-category Entity descriptor (spec §3
// "Entity descriptor"): named fields plus a vtable for virtual dispatch,
// and an optional boxedOf link to the envelope used when this entity is
// coerced into a UnionUniversal slot too large to carry inline.
func NewEntityType(tid layout.TypeID, name string, fieldIDs []FieldID, ftypes []layout.TypeID, offsets []uint32, reg *Registry, vtable map[uint32]uint32, keyCmp KeyCmpFunc, display DisplayFunc, boxedOf layout.TypeID) *Type {
	size, mask := aggregateSize(ftypes, offsets, reg)
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: CategoryStruct,
		Size: SizeInfo{
			HeapSize:   size,
			InlineSize: size,
			AssignSize: size,
			HeapMask:   mask,
			InlineMask: mask,
		},
		Entity:  &EntityShape{FieldIDs: fieldIDs, FieldTypes: ftypes, FieldOffsets: offsets},
		VTable:  vtable,
		KeyCmp:  keyCmp,
		Display: display,
		BoxedOf: boxedOf,
	}
	if t.Display == nil {
		t.Display = GenericAggregateDisplay
	}
	t.GC = GenericFunctors(t)
	return t
}

// NewBoxedStructType wraps an existing Struct-category descriptor struct
// in a one-word heap envelope (spec §3 "BoxedStruct descriptor"), used
// when a struct is too large to live inline in a UnionUniversal slot.
func NewBoxedStructType(tid layout.TypeID, name string, of layout.TypeID, reg *Registry) *Type {
	inner := reg.MustLookup(of)
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: CategoryBoxedStruct,
		Size: SizeInfo{
			HeapSize:   inner.Size.HeapSize,
			InlineSize: layout.WordSize,
			AssignSize: layout.WordSize,
			HeapMask:   inner.Size.HeapMask,
			InlineMask: string(layout.MaskOwnedPtr),
		},
		BoxedOf: of,
		KeyCmp:  inner.KeyCmp,
		Display: inner.Display,
	}
	t.GC = GCFunctors{
		Visit: func(_ *Type, reg *Registry, slot []byte, ops GCOps) { visitPointerWord(slot, ops) },
		Dec:   func(_ *Type, reg *Registry, slot []byte, ops GCOps) { decPointerWord(slot, ops) },
		EvacuateParent:   genericEvacuateParent,
		EvacuateChildren: genericEvacuateChildren,
	}
	return t
}

// NewEphemeralType builds a positional, stack-only descriptor that is
// never heap-allocated and never a union variant (spec §3 "Ephemeral-list
// descriptor"; used for multi-value returns).
func NewEphemeralType(tid layout.TypeID, name string, etypes []layout.TypeID, offsets []uint32, reg *Registry) *Type {
	size, mask := aggregateSize(etypes, offsets, reg)
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: CategoryStruct,
		Size: SizeInfo{
			HeapSize:   size,
			InlineSize: size,
			AssignSize: size,
			HeapMask:   mask,
			InlineMask: mask,
		},
		Ephemeral: &EphemeralShape{ETypes: etypes, IdxOffsets: offsets},
	}
	t.Display = GenericAggregateDisplay
	t.GC = GenericFunctors(t)
	return t
}

// NewUnionType builds one of the three union disciplines (spec §3
// "UnionRef / UnionInline / UnionUniversal"), chosen by the caller
// (program loader) according to the widest-variant rule in spec §4.3:
// all-Ref subtypes -> UnionRef, fits in the inline tag+payload budget ->
// UnionInline, otherwise -> UnionUniversal.
func NewUnionType(tid layout.TypeID, name string, cat Category, subtypes []layout.TypeID, widestInline uint32) *Type {
	if !cat.IsUnion() {
		panic("types: NewUnionType requires a union category")
	}
	var size SizeInfo
	switch cat {
	case CategoryUnionRef:
		size = SizeInfo{InlineSize: layout.WordSize, AssignSize: layout.WordSize, InlineMask: string(layout.MaskOwnedPtr)}
	case CategoryUnionInline:
		full := layout.WordSize + AlignedWordSize(widestInline)
		size = SizeInfo{InlineSize: full, AssignSize: full, InlineMask: string(layout.MaskUnion)}
	case CategoryUnionUniversal:
		size = SizeInfo{InlineSize: layout.UnionUniversalSize, AssignSize: layout.UnionUniversalSize, InlineMask: string(layout.MaskUnion)}
	}
	t := &Type{
		TID:      tid,
		Name:     name,
		Category: cat,
		Size:     size,
		Union:    &UnionShape{Subtypes: subtypes},
	}
	t.GC = GenericFunctors(t)
	return t
}
