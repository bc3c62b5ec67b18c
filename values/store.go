// Package values implements the type-descriptor-driven value operations:
// Store/Clear/Index, the Coerce widening/narrowing table, and KeyCmp
// dispatch (spec §4.3 "Type Operations"). Grounded on hive/values'
// reader.go/writer.go pairing of a typed decode/encode table keyed by a
// REG_* tag, generalized here to a table keyed by types.Category.
package values

import (
	"encoding/binary"

	"github.com/stephengoldbaum/icppgo/heapref"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/types"
)

// Store copies src into dst per desc.store (spec §4.3 "Store"): Register
// copies InlineSize bytes, Struct copies AssignSize bytes, Ref/Collection
// copy one pointer word, String copies 16 bytes, and the union
// disciplines copy their full slot.
func Store(desc *types.Type, dst, src []byte) {
	n := storeWidth(desc)
	copy(dst[:n], src[:n])
}

func storeWidth(desc *types.Type) uint32 {
	switch desc.Category {
	case types.CategoryRegister, types.CategoryBigNum:
		return desc.Size.InlineSize
	case types.CategoryStruct, types.CategoryBoxedStruct:
		return desc.Size.AssignSize
	case types.CategoryRef, types.CategoryCollection, types.CategoryUnionRef:
		return layout.WordSize
	case types.CategoryString:
		return 16
	case types.CategoryUnionInline, types.CategoryUnionUniversal:
		return desc.Size.InlineSize
	default:
		return desc.Size.InlineSize
	}
}

// Clear zeroes dst's storage slot for desc.
func Clear(desc *types.Type, dst []byte) {
	n := storeWidth(desc)
	for i := uint32(0); i < n; i++ {
		dst[i] = 0
	}
}

// Index implements desc.index(src, offset) (spec §4.3 "Index"): for
// Struct/Ephemeral it is a plain byte-offset add; for Ref it first
// dereferences through the pointer word; for a union it extracts the
// concrete variant descriptor from the slot header before recursing.
func Index(desc *types.Type, reg *types.Registry, src []byte, offset uint32) []byte {
	switch desc.Category {
	case types.CategoryStruct, types.CategoryBoxedStruct:
		return src[offset:]
	case types.CategoryRef, types.CategoryCollection:
		r := heapref.DecodeWord(src)
		return r.Slot()[offset:]
	case types.CategoryUnionRef, types.CategoryUnionInline, types.CategoryUnionUniversal:
		variant, payload := ExtractUnion(desc, reg, src)
		return Index(variant, reg, payload, offset)
	default:
		return src[offset:]
	}
}

// ExtractUnion reads the concrete variant descriptor and its payload slice
// out of a union-category slot, regardless of discipline.
func ExtractUnion(desc *types.Type, reg *types.Registry, slot []byte) (*types.Type, []byte) {
	switch desc.Category {
	case types.CategoryUnionRef:
		r := heapref.DecodeWord(slot)
		variant := reg.MustLookup(layout.TypeID(r.TypeID()))
		return variant, r.Slot()
	case types.CategoryUnionInline:
		tid := layout.TypeID(binary.LittleEndian.Uint32(slot[:4]))
		variant := reg.MustLookup(tid)
		return variant, slot[layout.WordSize:]
	case types.CategoryUnionUniversal:
		tid := layout.TypeID(binary.LittleEndian.Uint32(slot[:4]))
		variant := reg.MustLookup(tid)
		payload := slot[layout.WordSize : layout.WordSize+layout.UnionUniversalContentSize]
		if variant.Category == types.CategoryBoxedStruct {
			r := heapref.DecodeWord(payload)
			return reg.MustLookup(variant.BoxedOf), r.Slot()
		}
		return variant, payload
	default:
		panic("values: ExtractUnion called on a non-union descriptor")
	}
}
