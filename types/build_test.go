package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stephengoldbaum/icppgo/heapref"
	"github.com/stephengoldbaum/icppgo/layout"
)

func boolKeyCmp(_ *Type, _ *Registry, a, b []byte) int {
	if a[0] == b[0] {
		return 0
	}
	if a[0] < b[0] {
		return -1
	}
	return 1
}

func displayNoop(_ *Type, _ *Registry, _ []byte, _ DisplayMode) string { return "" }

func TestRegistryRejectsDuplicateTypeID(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewPrimitiveType(layout.TypeIDBool, "Bool", 1, boolKeyCmp, displayNoop))
	require.Panics(t, func() {
		reg.Register(NewPrimitiveType(layout.TypeIDBool, "Bool2", 1, boolKeyCmp, displayNoop))
	})
}

func TestMustLookupPanicsOnUnknownTypeID(t *testing.T) {
	reg := NewRegistry()
	require.Panics(t, func() { reg.MustLookup(layout.TypeIDBool) })
}

func TestTupleOffsetOfAndMask(t *testing.T) {
	reg := NewRegistry()
	natT := NewPrimitiveType(layout.TypeIDNat, "Nat", 8, nil, displayNoop)
	boolT := NewPrimitiveType(layout.TypeIDBool, "Bool", 1, boolKeyCmp, displayNoop)
	reg.Register(natT)
	reg.Register(boolT)

	tup := NewTupleType(layout.TypeIDFirstUser, "Tuple<Nat,Bool>",
		[]layout.TypeID{layout.TypeIDNat, layout.TypeIDBool},
		[]uint32{0, layout.WordSize}, reg, false)
	reg.Register(tup)

	off, ok := tup.Tuple.OffsetOf(1)
	require.True(t, ok)
	require.Equal(t, uint32(layout.WordSize), off)

	_, ok = tup.Tuple.OffsetOf(5)
	require.False(t, ok)

	require.Equal(t, string([]byte{layout.MaskScalar, layout.MaskScalar}), tup.Size.HeapMask)
	require.Equal(t, uint32(layout.WordSize*2), tup.Size.InlineSize)
}

func TestRecordOffsetOfLinearScan(t *testing.T) {
	reg := NewRegistry()
	strT := NewStringType(nil, displayNoop)
	reg.Register(strT)

	rec := NewRecordType(layout.TypeIDFirstUser, "Record<name>",
		[]PropertyID{42}, []layout.TypeID{layout.TypeIDString},
		[]uint32{0}, reg, false)

	off, ftid, ok := rec.Record.OffsetOf(42)
	require.True(t, ok)
	require.Equal(t, uint32(0), off)
	require.Equal(t, layout.TypeIDString, ftid)

	_, _, ok = rec.Record.OffsetOf(99)
	require.False(t, ok)
}

func TestUnionShapeContains(t *testing.T) {
	u := NewUnionType(layout.TypeIDFirstUser, "Bool|Nat", CategoryUnionInline,
		[]layout.TypeID{layout.TypeIDBool, layout.TypeIDNat}, layout.WordSize)
	require.True(t, u.Union.Contains(layout.TypeIDBool))
	require.False(t, u.Union.Contains(layout.TypeIDInt))
}

func TestBoxedStructSharesInnerKeyCmpAndDisplay(t *testing.T) {
	reg := NewRegistry()
	inner := NewEntityType(layout.TypeIDFirstUser, "Point", []FieldID{1},
		[]layout.TypeID{layout.TypeIDNat}, []uint32{0}, reg, nil, boolKeyCmp, displayNoop, 0)
	reg.Register(inner)

	boxed := NewBoxedStructType(layout.TypeIDFirstUser+1, "Point@", layout.TypeIDFirstUser, reg)
	require.Equal(t, CategoryBoxedStruct, boxed.Category)
	require.Equal(t, uint32(layout.WordSize), boxed.Size.InlineSize)
	require.NotNil(t, boxed.KeyCmp)
}

// fakePage is a minimal heapref.PageHandle for exercising pointer-slot
// round trips without depending on the gc package.
type fakePage struct {
	id        uint32
	tid       uint32
	entrySize int
	data      []byte
	meta      []uint64
}

func newFakePage(id, tid uint32, entrySize int, n int) *fakePage {
	return &fakePage{id: id, tid: tid, entrySize: entrySize, data: make([]byte, entrySize*n), meta: make([]uint64, n)}
}

func (p *fakePage) PageID() uint32             { return p.id }
func (p *fakePage) TypeID() uint32             { return p.tid }
func (p *fakePage) Bytes() []byte              { return p.data }
func (p *fakePage) EntrySize() int             { return p.entrySize }
func (p *fakePage) MetaWord(i uint32) uint64   { return p.meta[i] }
func (p *fakePage) SetMetaWord(i uint32, w uint64) { p.meta[i] = w }

type recordingOps struct {
	evacuated []heapref.Ref
	decced    []heapref.Ref
}

func (o *recordingOps) EvacuateChild(child heapref.Ref) heapref.Ref {
	o.evacuated = append(o.evacuated, child)
	return child
}
func (o *recordingOps) DecChild(child heapref.Ref) {
	o.decced = append(o.decced, child)
}

func TestGenericVisitWalksStructFields(t *testing.T) {
	reg := NewRegistry()
	natT := NewPrimitiveType(layout.TypeIDNat, "Nat", 8, nil, displayNoop)
	entityT := NewRefType(layout.TypeIDFirstUser, "Entity", CategoryRef)
	reg.Register(natT)
	reg.Register(entityT)

	rec := NewRecordType(layout.TypeIDFirstUser+1, "Record<items>",
		[]PropertyID{1, 2},
		[]layout.TypeID{layout.TypeIDNat, layout.TypeIDFirstUser},
		[]uint32{0, layout.WordSize}, reg, false)
	reg.Register(rec)

	page := newFakePage(7, uint32(layout.TypeIDFirstUser), 8, 4)
	child := heapref.Ref{Page: page, Index: 2}
	heapref.RegisterPage(page)
	defer heapref.UnregisterPage(7)

	slot := make([]byte, rec.Size.InlineSize)
	heapref.EncodeWord(slot[layout.WordSize:], child)

	ops := &recordingOps{}
	genericVisit(rec, reg, slot, ops)
	require.Len(t, ops.evacuated, 1)
	require.True(t, ops.evacuated[0].Equal(child))
}

func TestGenericDecWalksStructFields(t *testing.T) {
	reg := NewRegistry()
	natT := NewPrimitiveType(layout.TypeIDNat, "Nat", 8, nil, displayNoop)
	entityT := NewRefType(layout.TypeIDFirstUser, "Entity", CategoryRef)
	reg.Register(natT)
	reg.Register(entityT)

	rec := NewRecordType(layout.TypeIDFirstUser+1, "Record<items>",
		[]PropertyID{1, 2},
		[]layout.TypeID{layout.TypeIDNat, layout.TypeIDFirstUser},
		[]uint32{0, layout.WordSize}, reg, false)

	page := newFakePage(8, uint32(layout.TypeIDFirstUser), 8, 4)
	child := heapref.Ref{Page: page, Index: 1}
	heapref.RegisterPage(page)
	defer heapref.UnregisterPage(8)

	slot := make([]byte, rec.Size.InlineSize)
	heapref.EncodeWord(slot[layout.WordSize:], child)

	ops := &recordingOps{}
	genericDec(rec, reg, slot, ops)
	require.Len(t, ops.decced, 1)
	require.True(t, ops.decced[0].Equal(child))
}

func TestIsKeyComparable(t *testing.T) {
	withCmp := NewPrimitiveType(layout.TypeIDBool, "Bool", 1, boolKeyCmp, displayNoop)
	withoutCmp := NewPrimitiveType(layout.TypeIDFloat, "Float", 8, nil, displayNoop)
	require.True(t, withCmp.IsKeyComparable())
	require.False(t, withoutCmp.IsKeyComparable())
}

func TestAlignedWordSize(t *testing.T) {
	require.Equal(t, uint32(layout.WordSize), AlignedWordSize(1))
	require.Equal(t, uint32(layout.WordSize), AlignedWordSize(layout.WordSize))
	require.Equal(t, uint32(layout.WordSize*2), AlignedWordSize(layout.WordSize+1))
}
