package eval

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stephengoldbaum/icppgo/gc"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/program"
	"github.com/stephengoldbaum/icppgo/types"
)

// TestOpExtractMismatchAbortsInsteadOfPanicking exercises spec §8 scenario
// S3: Extract-ing a union whose live variant does not match the target
// type must surface as an AbortSignal from Machine.Invoke, not an
// unrecovered Go panic.
func TestOpExtractMismatchAbortsInsteadOfPanicking(t *testing.T) {
	reg := types.NewRegistry()
	natT := types.NewPrimitiveType(layout.TypeIDNat, "Nat", 8, nil, displayNoop)
	intT := types.NewPrimitiveType(layout.TypeIDInt, "Int", 8, nil, displayNoop)
	unionT := types.NewUnionType(layout.TypeIDFirstUser, "Nat|Int", types.CategoryUnionInline,
		[]layout.TypeID{layout.TypeIDNat, layout.TypeIDInt}, 8)
	reg.Register(natT)
	reg.Register(intT)
	reg.Register(unionT)

	prog := &program.Program{Registry: reg, Invokes: map[uint32]*program.Invoke{}, InvokesByName: map[string]*program.Invoke{}}
	collector := gc.NewCollector(reg, layout.DefaultCollectionThresholdBytes, gc.DebugPolicy{})
	m := NewMachine(prog, collector)

	// Frame layout: [0:16) union local, [16:24) Int destination local.
	unionOff := uint32(0)
	dstOff := uint32(16)

	inv := &program.Invoke{
		ID:         1,
		Name:       "extractMismatch",
		StackBytes: 24,
		Params: []program.ParamInfo{
			{Name: "u", Type: unionT.TID, FrameOff: unionOff},
		},
		Locals: []program.ParamInfo{
			{Name: "d", Type: intT.TID, FrameOff: dstOff},
		},
		Body: []program.Op{
			{
				Tag:    program.OpExtract,
				From:   unionT.TID,
				Into:   intT.TID,
				Target: &program.TargetVar{Offset: dstOff},
				Src:    &program.ArgRef{Kind: program.ArgLocal, Location: unionOff},
			},
		},
	}
	prog.Invokes[inv.ID] = inv
	prog.InvokesByName[inv.Name] = inv

	// Live variant is Nat, not Int: Extract into Int must fail.
	arg := make([]byte, 16)
	binary.LittleEndian.PutUint32(arg[:4], uint32(natT.TID))

	err := m.Invoke(inv.ID, [][]byte{arg}, nil)
	require.Error(t, err)
	sig, ok := err.(*AbortSignal)
	require.True(t, ok)
	require.Equal(t, AbortUser, sig.Kind)
}
