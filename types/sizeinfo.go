package types

import "github.com/stephengoldbaum/icppgo/layout"

// SizeInfo is the immutable layout-size record every descriptor carries
// (spec §3 "TypeDescriptor"). Grounded on internal/format's fixed-offset
// struct-of-constants style, generalized from compile-time constants to
// a runtime record per descriptor.
type SizeInfo struct {
	// HeapSize is the number of bytes needed to represent the data (no
	// type tag) when the value is heap-allocated.
	HeapSize uint32
	// InlineSize is the number of bytes needed in a storage slot for this
	// type (includes the union type-tag word for UnionInline/UnionUniversal,
	// is a pointer width for Ref/Collection/UnionRef, is 16 for String).
	InlineSize uint32
	// AssignSize is the number of bytes copied on assignment; equal to
	// InlineSize except where a type's logical size differs from its
	// physical assignment footprint.
	AssignSize uint32
	// HeapMask traces a heap-allocated instance of this type; empty
	// string for leaf (pointer-free) payloads.
	HeapMask string
	// InlineMask traces this type's storage slot representation in place
	// (on the evaluation stack, or nested inline in a struct).
	InlineMask string
}

// AlignedWordSize rounds n up to a multiple of layout.WordSize, matching
// BSQ_SIZE_ENSURE_ALIGN_MIN in the original (every storage location is at
// least pointer-width).
func AlignedWordSize(n uint32) uint32 {
	if n < layout.WordSize {
		return layout.WordSize
	}
	rem := n % layout.WordSize
	if rem == 0 {
		return n
	}
	return n + (layout.WordSize - rem)
}
