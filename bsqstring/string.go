// Package bsqstring implements the string engine of spec §4.6: a 16-byte
// value slot holding either an inline string (<=15 bytes), a pointer to a
// fixed-capacity heap K-repr, or a pointer to a concat-tree node, joined
// by concat/slice operations.
//
// Grounded on hive/vk.go (a fixed-size value-cell header whose payload is
// either inline or redirected through a big-data chain) and
// hive/bigdata/db.go's DB block-chain (the model this package's
// chunked-string completion follows for strings and byte buffers that
// exceed one leaf's capacity — see DESIGN.md and spec §9 "Large strings &
// byte buffers"). Like collections and values/bignum.go, a BSQString's
// heap-shaped variants (K-repr, concat node) are plain Go values reached
// through a handle, not literal gc.Page slots; DESIGN.md documents why.
package bsqstring

import "unicode/utf8"

// kreprCapacities is the fixed capacity ladder a K-repr is chosen from,
// carried verbatim from the original (spec §4.6 "K-repr").
var kreprCapacities = []int{16, 32, 64, 96, 128}

// MaxInline is the largest byte count that still fits the 16-byte inline
// slot representation (spec §8 boundary: "inline-string exactly 15 bytes
// stays inline").
const MaxInline = 15

// MaxKRepr is the largest K-repr capacity (spec §8 boundary: "K-128 + 1
// byte promotes to tree").
const MaxKRepr = 128

// kind discriminates a BSQString's representation.
type kind uint8

const (
	kindInline kind = iota
	kindKRepr
	kindConcat
)

// BSQString is an immutable string value. The zero BSQString is the empty
// string (spec §4.6 "empty(s) <-> slot is zero").
type BSQString struct {
	k           kind
	inline      []byte // kindInline: 0..15 raw bytes
	krepr       []byte // kindKRepr: logical bytes, len <= capacity
	left, right *BSQString
	size        int // total byte length (all kinds)
}

// Empty returns the empty string.
func Empty() BSQString { return BSQString{} }

// IsEmpty reports whether s holds zero bytes.
func (s BSQString) IsEmpty() bool { return s.size == 0 }

// Len returns the UTF-8 byte count (spec §8 invariant 7: utf8ByteCount).
func (s BSQString) Len() int { return s.size }

// chooseKReprCap returns the smallest ladder capacity that holds n bytes,
// or 0 if n exceeds the ladder (caller must use a concat tree instead).
func chooseKReprCap(n int) int {
	for _, c := range kreprCapacities {
		if n <= c {
			return c
		}
	}
	return 0
}

// FromBytes builds the smallest-fitting representation for b: inline if
// it fits in MaxInline bytes, a single K-repr if it fits the ladder,
// otherwise a balanced concat tree of K-repr leaves (spec §4.6 "concat(a,b)
// produces an inline string if the sum fits, else a K-repr if total <=
// 128, else a concat-tree", generalized here to direct construction).
func FromBytes(b []byte) BSQString {
	n := len(b)
	switch {
	case n == 0:
		return Empty()
	case n <= MaxInline:
		cp := make([]byte, n)
		copy(cp, b)
		return BSQString{k: kindInline, inline: cp, size: n}
	case n <= MaxKRepr:
		return newKRepr(b)
	default:
		mid := n / 2
		left := FromBytes(b[:mid])
		right := FromBytes(b[mid:])
		return concatNode(left, right)
	}
}

func newKRepr(b []byte) BSQString {
	cap := chooseKReprCap(len(b))
	buf := make([]byte, len(b), cap)
	copy(buf, b)
	return BSQString{k: kindKRepr, krepr: buf, size: len(b)}
}

func concatNode(left, right BSQString) BSQString {
	l, r := left, right
	return BSQString{k: kindConcat, left: &l, right: &r, size: left.size + right.size}
}

// FromString is a convenience wrapper for Go string literals/values.
func FromString(s string) BSQString { return FromBytes([]byte(s)) }

// Bytes flattens s into a single contiguous byte slice. Used internally
// by Concat/Slice and exposed for display/hashing.
func (s BSQString) Bytes() []byte {
	out := make([]byte, 0, s.size)
	s.appendTo(&out)
	return out
}

func (s BSQString) appendTo(out *[]byte) {
	switch s.k {
	case kindInline:
		*out = append(*out, s.inline...)
	case kindKRepr:
		*out = append(*out, s.krepr...)
	case kindConcat:
		s.left.appendTo(out)
		s.right.appendTo(out)
	}
}

// String implements fmt.Stringer for debug display.
func (s BSQString) String() string { return string(s.Bytes()) }

// Concat joins a and b (spec §4.6 "concat(a,b)"); the result picks the
// smallest representation that fits, re-chunking through FromBytes when
// the combined size crosses a promotion boundary and otherwise building a
// concat node directly to avoid needlessly re-copying two already-built
// subtrees.
func Concat(a, b BSQString) BSQString {
	total := a.size + b.size
	if total == 0 {
		return Empty()
	}
	if total <= MaxKRepr {
		out := make([]byte, 0, total)
		a.appendTo(&out)
		b.appendTo(&out)
		return FromBytes(out)
	}
	return concatNode(a, b)
}

// Slice returns the byte range [i,j) of s, rebuilt via FromBytes into the
// smallest representation that covers it (spec §4.6 "slice(a, i, j) walks
// the tree to produce the smallest repr that covers the requested byte
// range" — flattening the covered range and re-chunking is equivalent for
// any concat-tree shape and avoids a bespoke tree-splice walk for a
// structure that is rebuilt wholesale on most mutations anyway).
func Slice(s BSQString, i, j int) BSQString {
	if i < 0 {
		i = 0
	}
	if j > s.size {
		j = s.size
	}
	if i >= j {
		return Empty()
	}
	full := s.Bytes()
	return FromBytes(full[i:j])
}

// Equal compares two strings by byte content.
func Equal(a, b BSQString) bool {
	if a.size != b.size {
		return false
	}
	return string(a.Bytes()) == string(b.Bytes())
}

// KeyCmp provides the byte-lexicographic three-way comparator installed
// on the String type descriptor (types.NewStringType's keyCmp argument;
// wired in program/loader.go).
func KeyCmp(a, b BSQString) int {
	ab, bb := a.Bytes(), b.Bytes()
	n := len(ab)
	if len(bb) < n {
		n = len(bb)
	}
	for i := 0; i < n; i++ {
		if ab[i] != bb[i] {
			if ab[i] < bb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ab) < len(bb):
		return -1
	case len(ab) > len(bb):
		return 1
	default:
		return 0
	}
}

// ValidateUTF8 panics with a well-defined message on malformed UTF-8
// (spec §4.6 "well-defined panics on malformed UTF-8"); ASCII content
// (the spec's required baseline) always passes trivially.
func ValidateUTF8(s BSQString) {
	b := s.Bytes()
	if !utf8.Valid(b) {
		panic("bsqstring: malformed UTF-8")
	}
}
