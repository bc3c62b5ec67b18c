// Package eval is the bytecode evaluator: frame/stack management, the
// opcode dispatch loop, checked arithmetic, and the primitive builtin
// table (spec §4.4 "Evaluator"). Grounded on cmd/hivectl's Cobra
// subcommand-dispatch table (a tag picks a handler) generalized from CLI
// verbs to opcode tags, and cross-checked against
// other_examples/.../sneller-vm-bytecode.go.go's flat bcop-dispatch loop
// for idiomatic Go interpreter-loop style.
package eval

import (
	"github.com/stephengoldbaum/icppgo/gc"
	"github.com/stephengoldbaum/icppgo/heapref"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/program"
	"github.com/stephengoldbaum/icppgo/types"
)

// Frame is one activation record (spec §4.4 "Frame: {invocation,
// cstackBase, optionalMaskPtr, localMaskBase, instructionPointer,
// debugLine}"). Vars is the frame's window into the Machine's shared
// stack region; OptionalMask and LocalMask are the two mask regions
// described in spec §4.4 "Masks".
type Frame struct {
	Invoke       *program.Invoke
	Base         int
	Vars         []byte
	OptionalMask []byte
	LocalMask    []byte
	IP           int
	DebugLine    int

	// Result is where ReturnAssign/ReturnAssignOfCons writes this
	// invocation's result — the caller's destination slot, published
	// into the frame at push time so a return opcode never needs to walk
	// back up the call stack to find it.
	Result []byte
}

// Local returns the byte window at frame-relative offset off.
func (f *Frame) Local(off uint32) []byte { return f.Vars[off:] }

// Machine owns the single shared evaluation stack and the live frame
// stack (spec §5 "Shared resources: the stack region, mutated by frame
// push/pop, LIFO").
type Machine struct {
	Prog        *program.Program
	GC          *gc.Collector
	Collections *CollectionTable

	// Global is the one process-wide global-object root (spec §4.2
	// "Roots ... the global-object root"). Unset (nil) unless a program
	// publishes something there; scanned by GCRoots whenever GlobalType
	// is non-zero and Global is non-nil.
	Global     []byte
	GlobalType layout.TypeID

	stack  []byte
	sp     int
	frames []*Frame
}

// NewMachine builds an evaluator bound to prog and collector.
func NewMachine(prog *program.Program, collector *gc.Collector) *Machine {
	return &Machine{
		Prog:        prog,
		GC:          collector,
		Collections: NewCollectionTable(),
		stack:       make([]byte, layout.MaxStackBytes),
	}
}

// Current returns the innermost active frame, or nil if the call stack
// is empty.
func (m *Machine) Current() *Frame {
	if len(m.frames) == 0 {
		return nil
	}
	return m.frames[len(m.frames)-1]
}

// PushFrame allocates inv's frame region from the shared stack,
// marshals args into their declared parameter offsets (spec §4.4
// "Parameter marshalling"), and installs optionalMask (may be nil if inv
// has no optional parameters). result is the caller-owned destination
// slot for this invocation's return value.
func (m *Machine) PushFrame(inv *program.Invoke, args [][]byte, optionalMask []byte, result []byte) *Frame {
	need := int(inv.StackBytes)
	if m.sp+need > len(m.stack) {
		raiseInternal(m, "stack overflow")
	}
	base := m.sp
	vars := m.stack[base : base+need]
	for i := range vars {
		vars[i] = 0
	}
	m.sp += need

	f := &Frame{
		Invoke:       inv,
		Base:         base,
		Vars:         vars,
		OptionalMask: optionalMask,
		LocalMask:    make([]byte, inv.MaskSlots),
		Result:       result,
	}
	for i, p := range inv.Params {
		if i >= len(args) || args[i] == nil {
			continue
		}
		desc := m.Prog.Registry.MustLookup(p.Type)
		copy(vars[p.FrameOff:p.FrameOff+desc.Size.AssignSize], args[i])
	}
	m.frames = append(m.frames, f)
	return f
}

// PopFrame retires the innermost frame, returning the shared stack
// region it occupied to the free-bump cursor (LIFO, per spec §5).
func (m *Machine) PopFrame() {
	f := m.Current()
	m.sp = f.Base
	m.frames = m.frames[:len(m.frames)-1]
}

// GuardBool reads the boolean at the local mask's (maskOffset, index),
// or from a frame variable at varOffset when kind selects the variable
// form (spec §4.4 "Statement guard").
func GuardBool(f *Frame, g program.Guard, fromVar bool) bool {
	if fromVar {
		return f.Vars[g.VarOffset] != 0
	}
	return f.LocalMask[g.MaskOffset+g.Index] != 0
}

// Alloc is the single entry point every opcode that allocates a heap
// object (execConstructor, execConstructorFromEL, execUpdate) must call
// instead of m.GC.Alloc directly: it checks the collection threshold
// first and runs a minor GC, rooted at every live frame plus the global
// object, before the allocation that would cross it (spec §4.1
// "Collection threshold: ... trigger a collection before the next
// allocation").
func (m *Machine) Alloc(desc *types.Type) heapref.Ref {
	if m.GC.BytesSinceLastCycle() >= m.GC.ThresholdBytes() {
		m.GC.MinorGC(m.GCRoots())
	}
	return m.GC.Alloc(desc)
}

// GCRoots gathers every live GC root this machine currently owns (spec
// §4.2 "Roots"): each active frame's parameter and local variable slots
// (traced per that slot's own descriptor, the shape-driven walk of
// types/walk.go rather than a raw mask-character interpretation), and
// the one process-wide global object when set. Registered collection
// iterators are not included: collections.List/Map values are plain
// immutable Go values addressed through eval.CollectionTable, not
// through this collector's heap (see DESIGN.md and
// eval/collections_table.go), so they carry nothing for this collector
// to trace.
func (m *Machine) GCRoots() []gc.Root {
	var roots []gc.Root
	for _, f := range m.frames {
		roots = appendFrameRoots(roots, m.Prog, f.Invoke.Params, f.Vars)
		roots = appendFrameRoots(roots, m.Prog, f.Invoke.Locals, f.Vars)
		if f.Result != nil && f.Invoke.ResultType != 0 {
			roots = append(roots, gc.Root{
				Desc: m.Prog.Registry.MustLookup(f.Invoke.ResultType),
				Slot: f.Result,
			})
		}
	}
	if m.GlobalType != 0 && m.Global != nil {
		roots = append(roots, gc.Root{Desc: m.Prog.Registry.MustLookup(m.GlobalType), Slot: m.Global})
	}
	return roots
}

func appendFrameRoots(roots []gc.Root, prog *program.Program, vars []program.ParamInfo, frameVars []byte) []gc.Root {
	for _, v := range vars {
		desc := prog.Registry.MustLookup(v.Type)
		width := desc.Size.AssignSize
		roots = append(roots, gc.Root{Desc: desc, Slot: frameVars[v.FrameOff : v.FrameOff+width]})
	}
	return roots
}
