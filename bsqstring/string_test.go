package bsqstring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyStringIsZeroValue(t *testing.T) {
	require.True(t, Empty().IsEmpty())
	require.Equal(t, 0, Empty().Len())
}

func TestInlineBoundaryAt15Bytes(t *testing.T) {
	s := FromBytes([]byte(strings.Repeat("a", MaxInline)))
	require.Equal(t, kindInline, s.k)
	require.Equal(t, MaxInline, s.Len())
}

func TestSixteenBytesPromotesToKRepr(t *testing.T) {
	s := FromBytes([]byte(strings.Repeat("a", 16)))
	require.Equal(t, kindKRepr, s.k)
	require.Equal(t, 16, s.Len())
}

func TestKRepr128PlusOnePromotesToTree(t *testing.T) {
	s := FromBytes([]byte(strings.Repeat("a", MaxKRepr+1)))
	require.Equal(t, kindConcat, s.k)
	require.Equal(t, MaxKRepr+1, s.Len())
}

func TestConcatIsAssociativeUpToRepresentation(t *testing.T) {
	a := FromString("hello ")
	b := FromString("brave ")
	c := FromString("world")

	left := Concat(Concat(a, b), c)
	right := Concat(a, Concat(b, c))
	require.Equal(t, left.String(), right.String())
	require.Equal(t, "hello brave world", left.String())
}

func TestConcatByteCountIsAdditive(t *testing.T) {
	a := FromString(strings.Repeat("x", 100))
	b := FromString(strings.Repeat("y", 50))
	c := Concat(a, b)
	require.Equal(t, a.Len()+b.Len(), c.Len())
}

func TestSliceProducesExpectedSubstring(t *testing.T) {
	s := FromString("the quick brown fox")
	require.Equal(t, "quick", Slice(s, 4, 9).String())
}

func TestLargeConcatSliceRoundTrips(t *testing.T) {
	s := FromString(strings.Repeat("abcdefgh", 100)) // 800 bytes, forces a concat tree
	require.Equal(t, 800, s.Len())
	mid := Slice(s, 400, 408)
	require.Equal(t, "abcdefgh", mid.String())
}

func TestKeyCmpLexicographic(t *testing.T) {
	require.Equal(t, -1, KeyCmp(FromString("abc"), FromString("abd")))
	require.Equal(t, 0, KeyCmp(FromString("abc"), FromString("abc")))
	require.Equal(t, -1, KeyCmp(FromString("ab"), FromString("abc")))
}

func TestSlotRoundTripInline(t *testing.T) {
	tbl := NewTable()
	slot := make([]byte, 16)
	s := FromString("hi")
	EncodeSlot(slot, tbl, s)
	require.True(t, IsInlineSlot(slot))
	got := DecodeSlot(slot, tbl)
	require.Equal(t, "hi", got.String())
}

func TestSlotRoundTripHeapShaped(t *testing.T) {
	tbl := NewTable()
	slot := make([]byte, 16)
	s := FromString(strings.Repeat("z", 200))
	EncodeSlot(slot, tbl, s)
	require.False(t, IsInlineSlot(slot))
	got := DecodeSlot(slot, tbl)
	require.Equal(t, 200, got.Len())
	require.Equal(t, s.String(), got.String())
}

func TestEmptySlotIsAllZeroAndInline(t *testing.T) {
	tbl := NewTable()
	slot := make([]byte, 16)
	EncodeSlot(slot, tbl, Empty())
	for _, b := range slot {
		require.Zero(t, b)
	}
	require.True(t, IsInlineSlot(slot))
}

func TestByteIteratorForwardAndReverse(t *testing.T) {
	s := FromString("abc")
	fwd := NewByteIterator(s)
	var got []byte
	for fwd.Next() {
		got = append(got, fwd.Current())
	}
	require.Equal(t, []byte("abc"), got)

	rev := NewReverseByteIterator(s)
	got = nil
	for rev.Next() {
		got = append(got, rev.Current())
	}
	require.Equal(t, []byte("cba"), got)
}

func TestCodePointIteratorASCII(t *testing.T) {
	s := FromString("go")
	it := NewCodePointIterator(s)
	var runes []rune
	for it.Next() {
		runes = append(runes, it.Current())
	}
	require.Equal(t, []rune{'g', 'o'}, runes)
}

func TestCodePointIteratorPanicsOnMalformedUTF8(t *testing.T) {
	bad := BSQString{k: kindInline, inline: []byte{0xff, 0xfe}, size: 2}
	it := NewCodePointIterator(bad)
	require.Panics(t, func() { it.Next() })
}

func TestByteBufferChunkingMatchesString(t *testing.T) {
	buf := NewByteBuffer([]byte(strings.Repeat("\x00\x01\x02\x03", 50)))
	require.Equal(t, 200, buf.Len())
	sliced := SliceBuffer(buf, 0, 4)
	require.Equal(t, []byte{0, 1, 2, 3}, sliced.Bytes())
}
