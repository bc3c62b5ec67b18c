package values

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stephengoldbaum/icppgo/bsqstring"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/types"
)

func TestBoolDisplay(t *testing.T) {
	require.Equal(t, "true", BoolDisplay(nil, nil, []byte{1}, types.DisplayStandard))
	require.Equal(t, "false", BoolDisplay(nil, nil, []byte{0}, types.DisplayStandard))
}

func TestNatAndIntDisplay(t *testing.T) {
	slot := make([]byte, 8)
	binary.LittleEndian.PutUint64(slot, 42)
	require.Equal(t, "42n", NatDisplay(nil, nil, slot, types.DisplayStandard))

	binary.LittleEndian.PutUint64(slot, uint64(int64(-7)))
	require.Equal(t, "-7i", IntDisplay(nil, nil, slot, types.DisplayStandard))
}

func TestStringDisplayForInlineSlot(t *testing.T) {
	tbl := bsqstring.NewTable()
	slot := make([]byte, 16)
	bsqstring.EncodeSlot(slot, tbl, bsqstring.FromString("hi"))

	f := StringDisplayFor(tbl)
	require.Equal(t, `"hi"`, f(nil, nil, slot, types.DisplayStandard))
}

func TestBigNatDisplayFor(t *testing.T) {
	tbl := NewBigNumTable()
	h := tbl.PutBigNat(big.NewInt(7))
	slot := make([]byte, 8)
	writeHandle(slot, h)

	f := BigNatDisplayFor(tbl)
	require.Equal(t, "7N", f(nil, nil, slot, types.DisplayStandard))
}

func TestScalarWordDisplay(t *testing.T) {
	uuidT := types.NewPrimitiveType(layout.TypeIDUUID4, "UUID4", 16, nil, nil)
	slot := make([]byte, 16)
	slot[0] = 0xab

	f := ScalarWordDisplay("UUID4")
	got := f(uuidT, nil, slot, types.DisplayStandard)
	require.Contains(t, got, "UUID4(")
	require.Contains(t, got, "ab")
}

func TestDisplayDispatchesThroughDescriptor(t *testing.T) {
	natT := types.NewPrimitiveType(layout.TypeIDNat, "Nat", 8, nil, NatDisplay)
	slot := make([]byte, 8)
	binary.LittleEndian.PutUint64(slot, 9)

	require.Equal(t, "9n", Display(natT, nil, slot, types.DisplayStandard))
}

func TestDisplayFallsBackWhenNoDisplayFunc(t *testing.T) {
	natT := types.NewPrimitiveType(layout.TypeIDNat, "Nat", 8, nil, nil)
	slot := make([]byte, 8)
	require.Equal(t, "<Nat>", Display(natT, nil, slot, types.DisplayStandard))
}
