package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stephengoldbaum/icppgo/layout"
)

func TestGenericAggregateDisplayRecursesFields(t *testing.T) {
	reg := NewRegistry()
	natT := NewPrimitiveType(layout.TypeIDNat, "Nat", 8, nil, func(_ *Type, _ *Registry, slot []byte, _ DisplayMode) string {
		return "N"
	})
	boolT := NewPrimitiveType(layout.TypeIDBool, "Bool", 1, boolKeyCmp, func(_ *Type, _ *Registry, slot []byte, _ DisplayMode) string {
		return "B"
	})
	reg.Register(natT)
	reg.Register(boolT)

	rec := NewRecordType(layout.TypeIDFirstUser, "Record<a,b>",
		[]PropertyID{1, 2},
		[]layout.TypeID{layout.TypeIDNat, layout.TypeIDBool},
		[]uint32{0, layout.WordSize}, reg, false)

	slot := make([]byte, rec.Size.InlineSize)
	require.Equal(t, "Record<a,b>[N B]", GenericAggregateDisplay(rec, reg, slot, DisplayStandard))
}

func TestGenericAggregateDisplayEmptyShape(t *testing.T) {
	reg := NewRegistry()
	eph := NewEphemeralType(layout.TypeIDFirstUser, "Ephemeral<>", nil, nil, reg)
	require.Equal(t, "Ephemeral<>{}", GenericAggregateDisplay(eph, reg, make([]byte, eph.Size.InlineSize), DisplayStandard))
}
