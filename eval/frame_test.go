package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stephengoldbaum/icppgo/gc"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/program"
	"github.com/stephengoldbaum/icppgo/types"
)

func displayNoop(_ *types.Type, _ *types.Registry, _ []byte, _ types.DisplayMode) string { return "" }

func newTestMachine(threshold uint64) (*Machine, *program.Program, *types.Type) {
	reg := types.NewRegistry()
	natT := types.NewPrimitiveType(layout.TypeIDNat, "Nat", 8, nil, displayNoop)
	reg.Register(natT)

	prog := &program.Program{Registry: reg, Invokes: map[uint32]*program.Invoke{}, InvokesByName: map[string]*program.Invoke{}}
	collector := gc.NewCollector(reg, threshold, gc.DebugPolicy{})
	return NewMachine(prog, collector), prog, natT
}

func TestGCRootsCollectsParamsAndLocals(t *testing.T) {
	m, _, natT := newTestMachine(layout.DefaultCollectionThresholdBytes)

	inv := &program.Invoke{
		ID:         1,
		Name:       "test",
		StackBytes: 16,
		Params:     []program.ParamInfo{{Name: "x", Type: natT.TID, FrameOff: 0}},
		Locals:     []program.ParamInfo{{Name: "y", Type: natT.TID, FrameOff: 8}},
	}

	arg := make([]byte, 8)
	m.PushFrame(inv, [][]byte{arg}, nil, nil)

	roots := m.GCRoots()
	require.Len(t, roots, 2)
	require.Equal(t, natT.TID, roots[0].Desc.TID)
	require.Equal(t, natT.TID, roots[1].Desc.TID)
}

func TestGCRootsIncludesFrameResultAndGlobal(t *testing.T) {
	m, _, natT := newTestMachine(layout.DefaultCollectionThresholdBytes)

	inv := &program.Invoke{ID: 1, Name: "test", StackBytes: 8, ResultType: natT.TID}
	result := make([]byte, 8)
	m.PushFrame(inv, nil, nil, result)

	m.GlobalType = natT.TID
	m.Global = make([]byte, 8)

	roots := m.GCRoots()
	require.Len(t, roots, 2)
}

func TestAllocTriggersMinorGCPastThreshold(t *testing.T) {
	// Each Nat allocation costs one word (8 bytes); with a 16-byte
	// threshold the third call observes bytesAllocated==16 before its
	// own allocation and runs a MinorGC (rooted at zero live frames, so
	// nothing survives) before resuming, leaving the counter at just
	// this call's own 8 bytes afterward instead of 24.
	m, _, natT := newTestMachine(16)

	r1 := m.Alloc(natT)
	require.False(t, r1.IsNil())
	require.Equal(t, uint64(8), m.GC.BytesSinceLastCycle())

	r2 := m.Alloc(natT)
	require.False(t, r2.IsNil())
	require.Equal(t, uint64(16), m.GC.BytesSinceLastCycle())

	r3 := m.Alloc(natT)
	require.False(t, r3.IsNil())
	require.Equal(t, uint64(8), m.GC.BytesSinceLastCycle())
}

func TestPushPopFrameReturnsStackSpace(t *testing.T) {
	m, _, natT := newTestMachine(layout.DefaultCollectionThresholdBytes)
	inv := &program.Invoke{ID: 1, Name: "test", StackBytes: 8, Params: []program.ParamInfo{{Name: "x", Type: natT.TID, FrameOff: 0}}}

	m.PushFrame(inv, [][]byte{make([]byte, 8)}, nil, nil)
	require.NotNil(t, m.Current())
	m.PopFrame()
	require.Nil(t, m.Current())

	// The freed region is reusable by a second frame of the same size.
	m.PushFrame(inv, [][]byte{make([]byte, 8)}, nil, nil)
	require.NotNil(t, m.Current())
}
