package types

// Category is the tagged-union discriminant for a type descriptor's
// storage discipline, replacing the original's single-inheritance class
// hierarchy with downcasts (Design Notes §9 "Polymorphism"): one enum,
// dispatch by switch or by a per-descriptor functor table.
type Category uint8

const (
	CategoryEmpty Category = iota
	CategoryRegister
	CategoryStruct
	CategoryBoxedStruct
	CategoryString
	CategoryBigNum
	CategoryCollection
	CategoryRef
	CategoryUnionRef
	CategoryUnionInline
	CategoryUnionUniversal
)

func (c Category) String() string {
	switch c {
	case CategoryEmpty:
		return "Empty"
	case CategoryRegister:
		return "Register"
	case CategoryStruct:
		return "Struct"
	case CategoryBoxedStruct:
		return "BoxedStruct"
	case CategoryString:
		return "String"
	case CategoryBigNum:
		return "BigNum"
	case CategoryCollection:
		return "Collection"
	case CategoryRef:
		return "Ref"
	case CategoryUnionRef:
		return "UnionRef"
	case CategoryUnionInline:
		return "UnionInline"
	case CategoryUnionUniversal:
		return "UnionUniversal"
	default:
		return "Unknown"
	}
}

// IsUnion reports whether the category is one of the three union
// disciplines (spec §3 "UnionRef / UnionInline / UnionUniversal").
func (c Category) IsUnion() bool {
	return c == CategoryUnionRef || c == CategoryUnionInline || c == CategoryUnionUniversal
}

// OccupiesOnePointerSlot reports whether a storage slot of this category
// holds exactly one heap pointer word (spec §3 invariants).
func (c Category) OccupiesOnePointerSlot() bool {
	return c == CategoryRef || c == CategoryCollection || c == CategoryUnionRef
}

// IsFullyInline reports whether values of this category live entirely
// inline in their storage slot (spec §3 invariants: Register, Struct,
// BigNum).
func (c Category) IsFullyInline() bool {
	return c == CategoryRegister || c == CategoryStruct || c == CategoryBigNum
}
