package types

import "github.com/stephengoldbaum/icppgo/layout"

// BuildMask computes the reference-mask string for a value of category cat
// given (for struct-shaped categories) its field type list looked up in
// reg, mirroring the original's compile-time mask concatenation (spec §3
// "reference mask"). The descriptor constructors in build.go do not call
// it: they compute the stored mask themselves (aggregateSize with
// fieldMaskChar). Actual GC tracing walks the shape directly (see
// walk.go) rather than interpreting a mask string character by character.
func BuildMask(cat Category, fieldTypes []layout.TypeID, reg *Registry) string {
	switch cat {
	case CategoryEmpty, CategoryRegister, CategoryBigNum:
		return ""
	case CategoryRef, CategoryCollection, CategoryUnionRef:
		return string(layout.MaskOwnedPtr)
	case CategoryString:
		return string(layout.MaskString)
	case CategoryUnionInline, CategoryUnionUniversal:
		return string(layout.MaskUnion)
	case CategoryStruct, CategoryBoxedStruct:
		out := make([]byte, 0, len(fieldTypes))
		for _, ftid := range fieldTypes {
			ft := reg.MustLookup(ftid)
			out = append(out, fieldMaskChar(ft.Category))
		}
		return string(out)
	default:
		return ""
	}
}

func fieldMaskChar(cat Category) byte {
	switch cat {
	case CategoryRef, CategoryCollection, CategoryUnionRef:
		return layout.MaskOwnedPtr
	case CategoryString:
		return layout.MaskString
	case CategoryBigNum:
		return layout.MaskBigNum
	case CategoryUnionInline, CategoryUnionUniversal:
		return layout.MaskUnion
	default:
		return layout.MaskScalar
	}
}
