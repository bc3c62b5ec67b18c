package gc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForwardingRoundTrip(t *testing.T) {
	m := FreshAllocated(true)
	fwd := m.WithForwarding(7, 1234)
	require.True(t, fwd.IsFwdPtr())
	pageID, index := fwd.Ref()
	require.Equal(t, uint32(7), pageID)
	require.Equal(t, uint32(1234), index)
}

func TestBackPointerThenCountUpgrade(t *testing.T) {
	m := FreshAllocated(false)
	bp := m.WithBackPointer(3, 9)
	require.False(t, bp.IsRCKind())
	require.True(t, bp.Allocated())
	pageID, index := bp.Ref()
	require.Equal(t, uint32(3), pageID)
	require.Equal(t, uint32(9), index)

	counted := bp.WithCount(2)
	require.True(t, counted.IsRCKind())
	require.Equal(t, uint64(2), counted.Count())
}

func TestDecPendingAndMarkFlagsIndependent(t *testing.T) {
	m := FreshAllocated(true)
	m = m.WithDecPending(true)
	m = m.WithMark(true)
	require.True(t, m.DecPending())
	require.True(t, m.Mark())
	require.True(t, m.Young())

	m = m.WithMark(false)
	require.False(t, m.Mark())
	require.True(t, m.DecPending())
}

func TestPackRefPanicsOnOversizedPageID(t *testing.T) {
	require.Panics(t, func() {
		FreshAllocated(true).WithBackPointer(maxPageID+1, 0)
	})
}
