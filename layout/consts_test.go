package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaxBlockSizeFormula(t *testing.T) {
	require.Equal(t, MaxObjectSize*16+16, MaxBlockSize)
}

func TestPageMaskRoundTrips(t *testing.T) {
	base := uintptr(MinAllocatedAddress)
	addr := base + 123
	require.Equal(t, base, addr&PageAddrMask)
	require.Equal(t, uintptr(123), addr&PageIndexMask)
}

func TestUnionUniversalSizeMatchesMask(t *testing.T) {
	require.Equal(t, len(UnionUniversalMask), UnionUniversalPayloadWords+1)
	require.Equal(t, WordSize+UnionUniversalContentSize, UnionUniversalSize)
}

func TestRCSentinelsAreShifted(t *testing.T) {
	require.Equal(t, uint64(0), RCZero)
	require.Equal(t, uint64(1)<<MetaRCShift, RCOne)
	require.Equal(t, uint64(2)<<MetaRCShift, RCTwo)
}
