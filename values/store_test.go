package values

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stephengoldbaum/icppgo/heapref"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/types"
)

func displayNoop(_ *types.Type, _ *types.Registry, _ []byte, _ types.DisplayMode) string { return "" }

func newReg() (*types.Registry, *types.Type, *types.Type) {
	reg := types.NewRegistry()
	natT := types.NewPrimitiveType(layout.TypeIDNat, "Nat", 8, NatKeyCmp, displayNoop)
	boolT := types.NewPrimitiveType(layout.TypeIDBool, "Bool", 1, BoolKeyCmp, displayNoop)
	reg.Register(natT)
	reg.Register(boolT)
	return reg, natT, boolT
}

func TestStoreRegisterCopiesInlineSize(t *testing.T) {
	_, natT, _ := newReg()
	src := make([]byte, 8)
	binary.LittleEndian.PutUint64(src, 42)
	dst := make([]byte, 8)
	Store(natT, dst, src)
	require.Equal(t, uint64(42), binary.LittleEndian.Uint64(dst))
}

func TestClearZeroesSlot(t *testing.T) {
	_, natT, _ := newReg()
	dst := make([]byte, 8)
	binary.LittleEndian.PutUint64(dst, 99)
	Clear(natT, dst)
	require.Equal(t, make([]byte, 8), dst)
}

func TestKeyCmpNat(t *testing.T) {
	_, natT, _ := newReg()
	a := make([]byte, 8)
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(a, 1)
	binary.LittleEndian.PutUint64(b, 2)
	require.Equal(t, -1, KeyCmp(natT, nil, a, b))
	require.Equal(t, 1, KeyCmp(natT, nil, b, a))
	require.Equal(t, 0, KeyCmp(natT, nil, a, a))
}

func TestBigNumTableRoundTrip(t *testing.T) {
	table := NewBigNumTable()
	v := big.NewInt(123456789)
	h := table.PutBigInt(v)
	require.Equal(t, v, table.BigInt(h))

	keyCmp := BigIntKeyCmpFor(table)
	a := make([]byte, 8)
	b := make([]byte, 8)
	writeHandle(a, table.PutBigInt(big.NewInt(5)))
	writeHandle(b, table.PutBigInt(big.NewInt(9)))
	require.Equal(t, -1, keyCmp(nil, nil, a, b))
}

func TestIndexStructOffset(t *testing.T) {
	reg, natT, boolT := newReg()
	rec := types.NewRecordType(layout.TypeIDFirstUser, "Record<a,b>",
		[]types.PropertyID{1, 2},
		[]layout.TypeID{layout.TypeIDNat, layout.TypeIDBool},
		[]uint32{0, layout.WordSize}, reg, false)

	slot := make([]byte, rec.Size.InlineSize)
	binary.LittleEndian.PutUint64(slot[layout.WordSize:], 7)

	field := Index(rec, reg, slot, layout.WordSize)
	require.Equal(t, uint64(7), binary.LittleEndian.Uint64(field))
	_ = natT
	_ = boolT
}

// fakePage mirrors types/build_test.go's helper for exercising ref-slot
// decode without importing gc.
type fakePage struct {
	id        uint32
	tid       uint32
	entrySize int
	data      []byte
	meta      []uint64
}

func newFakePage(id, tid uint32, entrySize, n int) *fakePage {
	return &fakePage{id: id, tid: tid, entrySize: entrySize, data: make([]byte, entrySize*n), meta: make([]uint64, n)}
}

func (p *fakePage) PageID() uint32                 { return p.id }
func (p *fakePage) TypeID() uint32                 { return p.tid }
func (p *fakePage) Bytes() []byte                  { return p.data }
func (p *fakePage) EntrySize() int                 { return p.entrySize }
func (p *fakePage) MetaWord(i uint32) uint64       { return p.meta[i] }
func (p *fakePage) SetMetaWord(i uint32, w uint64) { p.meta[i] = w }

func TestCoerceNatIntoUnionInline(t *testing.T) {
	reg, natT, _ := newReg()
	union := types.NewUnionType(layout.TypeIDFirstUser+1, "Nat|Bool", types.CategoryUnionInline,
		[]layout.TypeID{layout.TypeIDNat, layout.TypeIDBool}, layout.WordSize)
	reg.Register(union)

	src := make([]byte, 8)
	binary.LittleEndian.PutUint64(src, 55)
	dst := make([]byte, union.Size.InlineSize)

	Coerce(reg, nil, natT, union, dst, src)

	tid := layout.TypeID(binary.LittleEndian.Uint32(dst[:4]))
	require.Equal(t, layout.TypeIDNat, tid)
	require.Equal(t, uint64(55), binary.LittleEndian.Uint64(dst[layout.WordSize:]))
}

func TestCoerceUnionRefExtractsPayload(t *testing.T) {
	reg := types.NewRegistry()
	listT := types.NewRefType(layout.TypeIDFirstUser, "List<Nat>", types.CategoryCollection)
	reg.Register(listT)
	unionRef := types.NewUnionType(layout.TypeIDFirstUser+1, "List<Nat>", types.CategoryUnionRef,
		[]layout.TypeID{layout.TypeIDFirstUser}, 0)

	page := newFakePage(1, uint32(layout.TypeIDFirstUser), layout.WordSize, 2)
	heapref.RegisterPage(page)
	defer heapref.UnregisterPage(1)
	r := heapref.Ref{Page: page, Index: 0}

	src := make([]byte, layout.WordSize)
	heapref.EncodeWord(src, r)
	dst := make([]byte, layout.WordSize)

	Coerce(reg, nil, unionRef, listT, dst, src)
	got := heapref.DecodeWord(dst)
	require.True(t, got.Equal(r))
}

// TestCoerceExtractMismatchPanicsWithCoerceError guards spec §8 scenario
// S3: narrowing a union into a fixed type whose TID doesn't match the
// live variant must panic with a typed *CoerceError the eval package
// can recover and turn into an abort, not a bare string.
func TestCoerceExtractMismatchPanicsWithCoerceError(t *testing.T) {
	reg, natT, boolT := newReg()
	union := types.NewUnionType(layout.TypeIDFirstUser+1, "Nat|Bool", types.CategoryUnionInline,
		[]layout.TypeID{layout.TypeIDNat, layout.TypeIDBool}, layout.WordSize)
	reg.Register(union)

	src := make([]byte, union.Size.InlineSize)
	binary.LittleEndian.PutUint32(src[:4], uint32(layout.TypeIDNat))
	dst := make([]byte, boolT.Size.InlineSize)

	defer func() {
		r := recover()
		ce, ok := r.(*CoerceError)
		require.True(t, ok, "expected *CoerceError, got %T: %v", r, r)
		require.Equal(t, layout.TypeIDNat, ce.Live)
		require.Equal(t, layout.TypeIDBool, ce.Want)
	}()
	Coerce(reg, nil, union, boolT, dst, src)
}
