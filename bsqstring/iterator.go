package bsqstring

import "unicode/utf8"

// ByteIterator walks a string's bytes forward or backward, tracking the
// state spec §4.6 names explicitly: "(current byte offset, max byte
// offset, leaf buffer, leaf offset) plus a spine stack for restoration".
// Since Bytes() already flattens the tree, the leaf buffer here is the
// whole flattened string and the "spine stack" degenerates to the single
// flattened-offset cursor — a valid realization for a structure whose
// Slice/Concat operations already flatten-and-rebuild (see string.go).
type ByteIterator struct {
	buf     []byte
	pos     int
	max     int
	reverse bool
}

func NewByteIterator(s BSQString) *ByteIterator {
	return &ByteIterator{buf: s.Bytes(), pos: -1, max: s.Len()}
}

func NewReverseByteIterator(s BSQString) *ByteIterator {
	return &ByteIterator{buf: s.Bytes(), pos: s.Len(), max: s.Len(), reverse: true}
}

func (it *ByteIterator) Next() bool {
	if it.reverse {
		it.pos--
		return it.pos >= 0
	}
	it.pos++
	return it.pos < it.max
}

func (it *ByteIterator) Current() byte { return it.buf[it.pos] }

// CodePointIterator decodes UTF-8 runes, panicking on malformed input
// (spec §4.6 "well-defined panics on malformed UTF-8"; ASCII input never
// triggers this path since every ASCII byte is a valid one-byte rune).
type CodePointIterator struct {
	buf     []byte
	byteOff int
	reverse bool
	done    bool
	current rune
}

func NewCodePointIterator(s BSQString) *CodePointIterator {
	return &CodePointIterator{buf: s.Bytes()}
}

func NewReverseCodePointIterator(s BSQString) *CodePointIterator {
	return &CodePointIterator{buf: s.Bytes(), byteOff: len(s.Bytes()), reverse: true}
}

func (it *CodePointIterator) Next() bool {
	if it.reverse {
		if it.byteOff <= 0 {
			return false
		}
		r, size := utf8.DecodeLastRune(it.buf[:it.byteOff])
		if r == utf8.RuneError && size <= 1 {
			panic("bsqstring: malformed UTF-8")
		}
		it.byteOff -= size
		it.current = r
		return true
	}
	if it.byteOff >= len(it.buf) {
		return false
	}
	r, size := utf8.DecodeRune(it.buf[it.byteOff:])
	if r == utf8.RuneError && size <= 1 {
		panic("bsqstring: malformed UTF-8")
	}
	it.byteOff += size
	it.current = r
	return true
}

func (it *CodePointIterator) Current() rune { return it.current }
