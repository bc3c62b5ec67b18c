package values

import (
	"encoding/binary"
	"fmt"

	"github.com/stephengoldbaum/icppgo/heapref"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/types"
)

// Allocator is the subset of the collector's allocation surface Coerce
// needs to auto-box a struct into a BoxedStruct envelope. It is an
// interface rather than a gc import, so values does not depend on gc;
// *gc.Collector's Alloc method satisfies it.
type Allocator interface {
	// Alloc returns a fresh zeroed slot sized for desc's heap
	// representation, plus the Ref addressing it.
	Alloc(desc *types.Type) heapref.Ref
}

// Coerce implements desc-pair dispatch for §4.3's Coerce table. from is
// src's static descriptor, into is dst's static descriptor. alloc is
// consulted only when boxing a struct into a UnionUniversal slot whose
// struct has an associated boxed envelope type.
func Coerce(reg *types.Registry, alloc Allocator, from, into *types.Type, dst, src []byte) {
	switch into.Category {
	case types.CategoryRef, types.CategoryStruct, types.CategoryBoxedStruct,
		types.CategoryRegister, types.CategoryBigNum, types.CategoryString,
		types.CategoryCollection:
		coerceIntoPlain(reg, alloc, from, into, dst, src)
	case types.CategoryUnionRef:
		coerceIntoUnionRef(reg, from, into, dst, src)
	case types.CategoryUnionInline:
		coerceIntoUnionInline(reg, alloc, from, into, dst, src)
	case types.CategoryUnionUniversal:
		coerceIntoUnionUniversal(reg, alloc, from, into, dst, src)
	default:
		panic(fmt.Sprintf("values: Coerce: unhandled into category %s", into.Category))
	}
}

// coerceIntoPlain handles every "into" column other than the three
// unions: atomic/struct/ref (plain store), or extracting out of a
// union-shaped "from" (spec §4.3 rows 2-4, column 1).
func coerceIntoPlain(reg *types.Registry, alloc Allocator, from, into *types.Type, dst, src []byte) {
	switch from.Category {
	case types.CategoryUnionRef:
		// "extract payload-as-ref": the slot already IS the ref.
		Store(into, dst, src)
	case types.CategoryUnionInline:
		tid := layout.TypeID(binary.LittleEndian.Uint32(src[:4]))
		mustMatch(into, tid)
		Store(into, dst, src[layout.WordSize:])
	case types.CategoryUnionUniversal:
		variant, payload := ExtractUnion(from, reg, src)
		if into.Category == types.CategoryStruct && variant.Category == types.CategoryBoxedStruct {
			r := heapref.DecodeWord(payload)
			Store(into, dst, r.Slot())
			return
		}
		mustMatch(into, variant.TID)
		Store(into, dst, payload)
	default:
		Store(into, dst, src)
	}
}

func coerceIntoUnionRef(reg *types.Registry, from, into *types.Type, dst, src []byte) {
	switch from.Category {
	case types.CategoryUnionRef:
		Store(into, dst, src)
	case types.CategoryUnionInline, types.CategoryUnionUniversal:
		_, payload := ExtractUnion(from, reg, src)
		copy(dst[:layout.WordSize], payload[:layout.WordSize])
	default:
		if !into.Union.Contains(from.TID) {
			panic(fmt.Sprintf("values: Coerce: %s is not a UnionRef variant", from.Name))
		}
		Store(into, dst, src)
	}
}

func coerceIntoUnionInline(reg *types.Registry, alloc Allocator, from, into *types.Type, dst, src []byte) {
	switch from.Category {
	case types.CategoryUnionRef:
		r := heapref.DecodeWord(src)
		writeUnionHeader(dst, layout.TypeID(r.TypeID()))
		copy(dst[layout.WordSize:layout.WordSize+layout.WordSize], src)
	case types.CategoryUnionInline, types.CategoryUnionUniversal:
		variant, payload := ExtractUnion(from, reg, src)
		writeUnionHeader(dst, variant.TID)
		Store(variant, dst[layout.WordSize:], payload)
	default:
		writeUnionHeader(dst, from.TID)
		Store(from, dst[layout.WordSize:], src)
	}
}

func coerceIntoUnionUniversal(reg *types.Registry, alloc Allocator, from, into *types.Type, dst, src []byte) {
	switch from.Category {
	case types.CategoryUnionRef:
		r := heapref.DecodeWord(src)
		writeUnionHeader(dst, layout.TypeID(r.TypeID()))
		copy(dst[layout.WordSize:layout.WordSize+layout.WordSize], src)
	case types.CategoryUnionInline, types.CategoryUnionUniversal:
		variant, payload := ExtractUnion(from, reg, src)
		storeVariantIntoUniversal(reg, alloc, variant, dst, payload)
	default:
		storeVariantIntoUniversal(reg, alloc, from, dst, src)
	}
}

// storeVariantIntoUniversal auto-boxes a struct with a registered boxed
// envelope (spec §4.3: "if from is a struct with an associated boxed
// envelope type: allocate BoxedStruct, store payload into it, write
// (boxedDesc, ptr-to-box); else write (from, payload)").
func storeVariantIntoUniversal(reg *types.Registry, alloc Allocator, variant *types.Type, dst, payload []byte) {
	if variant.Category == types.CategoryStruct && variant.BoxedOf != layout.TypeIDNone && variant.BoxedOf != 0 {
		boxedDesc := reg.MustLookup(variant.BoxedOf)
		ref := alloc.Alloc(boxedDesc)
		copy(ref.Slot(), payload[:variant.Size.HeapSize])
		writeUnionHeader(dst, boxedDesc.TID)
		heapref.EncodeWord(dst[layout.WordSize:], ref)
		return
	}
	writeUnionHeader(dst, variant.TID)
	Store(variant, dst[layout.WordSize:layout.WordSize+layout.UnionUniversalContentSize], payload)
}

func writeUnionHeader(dst []byte, tid layout.TypeID) {
	binary.LittleEndian.PutUint32(dst[:4], uint32(tid))
	binary.LittleEndian.PutUint32(dst[4:8], 0)
}

// CoerceError reports a failed union narrowing (spec §4.3's Extract
// column): the union's live variant does not match the fixed type the
// caller asked to narrow into. Unlike the other panics in this file,
// this is a program-reachable condition (OpExtract hitting a mismatched
// case at runtime, spec §8 scenario S3), not a Go-level bug — so it is a
// distinct, typed panic value the eval package's OpExtract handler
// specifically recovers and turns into a spec §6 abort report, rather
// than letting it fall through as an unrecovered crash.
type CoerceError struct {
	Live layout.TypeID
	Want layout.TypeID
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("Extract: live case %d does not match expected type %d", e.Live, e.Want)
}

func mustMatch(into *types.Type, tid layout.TypeID) {
	if into.TID != tid {
		panic(&CoerceError{Live: tid, Want: into.TID})
	}
}
