package bsqstring

import "encoding/binary"

// Table is the process-wide handle side-table for heap-shaped BSQString
// values (K-repr or concat-tree), the same adaptation used for BigNum
// (values/bignum.go) and collections (collections/list.go doc comment):
// Go's moving, type-safe heap gives no safe raw-pointer encoding for a
// 16-byte slot's "pointer to heap string" case, so the slot's leading
// word holds a handle into this table instead.
type Table struct {
	strs []BSQString
}

func NewTable() *Table { return &Table{} }

func (t *Table) put(s BSQString) uint64 {
	t.strs = append(t.strs, s)
	return uint64(len(t.strs) - 1)
}

func (t *Table) get(h uint64) BSQString { return t.strs[h] }

// EncodeSlot writes s into the 16-byte slot per spec §4.6: an inline
// string writes its bytes directly with byte 15 holding the length (or,
// for the canonical empty string, an all-zero slot); a heap-shaped
// string writes its table handle into the leading 8 bytes and zeroes the
// rest, which is never mistaken for inline because byte 15 stays zero and
// the leading word is nonzero whenever the table's first slot (handle 0)
// is never used for this purpose... to keep the "pointer nil + length
// zero = empty" rule exact, handle values are stored offset by one so a
// zero leading word unambiguously means "inline/empty", never "handle 0".
func EncodeSlot(slot []byte, t *Table, s BSQString) {
	for i := range slot[:16] {
		slot[i] = 0
	}
	if s.k == kindInline {
		if s.size > 0 {
			copy(slot[:s.size], s.inline)
			slot[15] = byte(s.size)
		}
		return
	}
	h := t.put(s)
	binary.LittleEndian.PutUint64(slot[:8], h+1)
}

// DecodeSlot reads back a BSQString written by EncodeSlot.
func DecodeSlot(slot []byte, t *Table) BSQString {
	if slot[15] != 0 {
		n := int(slot[15])
		return BSQString{k: kindInline, inline: append([]byte(nil), slot[:n]...), size: n}
	}
	word := binary.LittleEndian.Uint64(slot[:8])
	if word == 0 {
		return Empty()
	}
	return t.get(word - 1)
}

// IsInlineSlot reports whether slot holds an inline (or empty)
// representation without needing the handle table, mirroring the
// original's IS_INLINE_STRING predicate. Heap-shaped (non-inline) slots
// hold a Table handle, never a heapref pointer, so the GC walk in
// types.genericVisit/genericDec treats the whole String category as an
// untraced leaf and never calls this predicate during tracing.
func IsInlineSlot(slot []byte) bool {
	if slot[15] != 0 {
		return true
	}
	for _, b := range slot[:16] {
		if b != 0 {
			return false
		}
	}
	return true
}
