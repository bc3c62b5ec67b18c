package eval

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"os"

	"github.com/stephengoldbaum/icppgo/heapref"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/program"
	"github.com/stephengoldbaum/icppgo/types"
	"github.com/stephengoldbaum/icppgo/values"
)

// Invoke runs invokeID to completion with args already laid out as one
// byte slice per parameter (spec §4.4 "Parameter marshalling"), writing
// its result into result (nil if the invocation has no result slot to
// populate, e.g. a top-level Main with side effects only). This is the
// single recovery point for AbortSignal (spec §5 "long-jumps unwind to
// a pre-recorded entry buffer held at interpreter startup").
func (m *Machine) Invoke(invokeID uint32, args [][]byte, result []byte) (err error) {
	defer func() { err = Recover(recover()) }()
	inv := m.Prog.Invokes[invokeID]
	if inv == nil {
		raiseInternal(m, "unknown invoke id")
	}
	m.callInvoke(inv, args, nil, result)
	return nil
}

// callInvoke pushes inv's frame, runs it (primitive dispatch or the
// opcode loop), copies its result into dst, and pops the frame. Shared
// by the top-level Invoke entry point and InvokeFixedFunction/
// InvokeVirtualFunction so nested calls behave identically to the
// top-level one.
func (m *Machine) callInvoke(inv *program.Invoke, args [][]byte, optionalMask []byte, dst []byte) {
	f := m.PushFrame(inv, args, optionalMask, dst)
	if inv.IsPrimitive {
		dispatchPrimitive(m, f, inv)
		if dst != nil {
			resDesc := m.Prog.Registry.MustLookup(inv.ResultType)
			values.Store(resDesc, dst, f.Vars[inv.ResultArg:])
		}
	} else {
		// A non-primitive body publishes its result itself, via
		// ReturnAssign/ReturnAssignOfCons writing straight into f.Result
		// (spec §4.4 "Frame ... the caller's destination slot, published
		// into the frame at push time").
		m.run(f)
	}
	m.PopFrame()
}

// run executes f's body until it falls off the end (an implicit return
// for a void invocation) or a Return* opcode breaks out via a direct
// function return (spec §4.4 "Opcode order is the only observable
// order").
func (m *Machine) run(f *Frame) {
	body := f.Invoke.Body
	for f.IP < len(body) {
		op := &body[f.IP]
		f.DebugLine = op.SInfo.Line
		if execOp(m, f, op) {
			return
		}
	}
}

// execOp runs one opcode, advancing f.IP itself for branches and
// returning true only when the opcode ends the invocation (a Return*
// family opcode).
func execOp(m *Machine, f *Frame, op *program.Op) bool {
	switch op.Tag {
	case program.OpDeadFlow:
		raiseInternal(m, "dead flow reached")
	case program.OpAbort:
		raiseUser(m, op.Msg)
	case program.OpAssert:
		if !truthy(resolveArg(m, f, op.Arg)) {
			raiseUser(m, op.Msg)
		}
	case program.OpDebug:
		// A debugger front-end, if attached, would intercept this tag
		// before it reaches here (spec §4.4 "or engages the debugger if
		// one is attached and arg is absent"); without one, Debug(arg)
		// prints the value's display form and the bare Debug() breakpoint
		// form is a no-op since there is nothing to break into.
		if op.Arg != nil {
			desc := m.Prog.Registry.MustLookup(op.Type)
			slot := resolveArg(m, f, op.Arg)
			fmt.Fprintf(os.Stdout, "%s\n", values.Display(desc, m.Prog.Registry, slot, types.DisplayStandard))
		}

	case program.OpLoadUnint:
		desc := m.Prog.Registry.MustLookup(op.Type)
		values.Clear(desc, targetSlot(f, op.Target))
	case program.OpNoneInitUnion:
		dst := targetSlot(f, op.Target)
		writeUnionTag(dst, layout.TypeIDNone)
	case program.OpLoadConst:
		desc := m.Prog.Registry.MustLookup(op.Type)
		src := resolveArg(m, f, op.ConstRef)
		values.Store(desc, targetSlot(f, op.Target), src)
	case program.OpStoreConstantMask:
		v := byte(0)
		if op.Flag {
			v = 1
		}
		f.LocalMask[op.MaskOffset+op.Index] = v

	case program.OpDirectAssign:
		if !guardSuppresses(f, op) {
			into := m.Prog.Registry.MustLookup(op.Into)
			values.Store(into, targetSlot(f, op.Target), resolveArg(m, f, op.Src))
		} else if op.SGuard != nil && op.SGuard.UseDefaultOn {
			into := m.Prog.Registry.MustLookup(op.Into)
			values.Store(into, targetSlot(f, op.Target), resolveArg(m, f, &op.SGuard.DefaultArg))
		}
	case program.OpBox:
		if !guardSuppresses(f, op) {
			from := m.Prog.Registry.MustLookup(op.From)
			into := m.Prog.Registry.MustLookup(op.Into)
			values.Coerce(m.Prog.Registry, m.GC, from, into, targetSlot(f, op.Target), resolveArg(m, f, op.Src))
		}
	case program.OpExtract:
		if !guardSuppresses(f, op) {
			from := m.Prog.Registry.MustLookup(op.From)
			into := m.Prog.Registry.MustLookup(op.Into)
			extractOrAbort(m, from, into, targetSlot(f, op.Target), resolveArg(m, f, op.Src))
		}

	case program.OpLoadTupleIndexDirect, program.OpLoadRecordPropertyDirect, program.OpLoadEntityFieldDirect:
		src := resolveArg(m, f, op.Arg)
		into := m.Prog.Registry.MustLookup(op.Into)
		values.Store(into, targetSlot(f, op.Target), src[op.DirectOffset:])
	case program.OpLoadTupleIndexVirtual:
		execLoadVirtual(m, f, op, func(shape *types.TupleShape) (uint32, layout.TypeID, bool) {
			off, ok := shape.OffsetOf(int(op.TupleIdx))
			if !ok {
				return 0, 0, false
			}
			return off, shape.TTypes[op.TupleIdx], true
		})
	case program.OpLoadRecordPropertyVirtual:
		execLoadRecordVirtual(m, f, op)
	case program.OpLoadEntityFieldVirtual:
		execLoadEntityVirtual(m, f, op)

	case program.OpProjectTuple, program.OpProjectRecord, program.OpProjectEntity:
		execProject(m, f, op)

	case program.OpUpdateTuple, program.OpUpdateRecord, program.OpUpdateEntity:
		execUpdate(m, f, op)

	case program.OpConstructorTuple, program.OpConstructorRecord, program.OpConstructorEntity, program.OpConstructorEphemeralList:
		execConstructor(m, f, op)
	case program.OpConstructorTupleFromEL, program.OpConstructorRecordFromEL, program.OpConstructorEntityFromEL:
		execConstructorFromEL(m, f, op)
	case program.OpEphemeralListExtendOp:
		execEphemeralExtend(m, f, op)

	case program.OpInvokeFixedFunction:
		execInvokeFixed(m, f, op)
	case program.OpInvokeVirtualFunction:
		execInvokeVirtual(m, f, op)

	case program.OpJump:
		f.IP += int(op.JumpOffset)
		return false
	case program.OpJumpCond:
		if truthy(resolveArg(m, f, op.Arg)) {
			f.IP += int(op.TrueOff)
		} else {
			f.IP += int(op.FalseOff)
		}
		return false
	case program.OpJumpNone:
		desc := m.Prog.Registry.MustLookup(op.Type)
		slot := resolveArg(m, f, op.Arg)
		if dynamicTID(desc, slot) == layout.TypeIDNone {
			f.IP += int(op.NoneOff)
		} else {
			f.IP += int(op.SomeOff)
		}
		return false

	case program.OpPrefixNot:
		b := boolByte(!truthy(resolveArg(m, f, op.Arg)))
		targetSlot(f, op.Target)[0] = b
	case program.OpAllTrue:
		all := true
		for i := range op.Args {
			if !truthy(resolveArg(m, f, &op.Args[i])) {
				all = false
				break
			}
		}
		targetSlot(f, op.Target)[0] = boolByte(all)
	case program.OpSomeTrue:
		any := false
		for i := range op.Args {
			if truthy(resolveArg(m, f, &op.Args[i])) {
				any = true
				break
			}
		}
		targetSlot(f, op.Target)[0] = boolByte(any)

	case program.OpKeyEqFast, program.OpKeyEqStatic, program.OpKeyEqVirtual:
		desc := m.Prog.Registry.MustLookup(op.Type)
		a, b := resolveArg(m, f, &op.Args[0]), resolveArg(m, f, &op.Args[1])
		eq := values.KeyCmp(desc, m.Prog.Registry, a, b) == 0
		targetSlot(f, op.Target)[0] = boolByte(eq)
	case program.OpKeyLessFast, program.OpKeyLessStatic, program.OpKeyLessVirtual:
		desc := m.Prog.Registry.MustLookup(op.Type)
		a, b := resolveArg(m, f, &op.Args[0]), resolveArg(m, f, &op.Args[1])
		lt := values.KeyCmp(desc, m.Prog.Registry, a, b) < 0
		targetSlot(f, op.Target)[0] = boolByte(lt)

	case program.OpIsNone, program.OpIsSome, program.OpIsNothing:
		desc := m.Prog.Registry.MustLookup(op.Type)
		tid := dynamicTID(desc, resolveArg(m, f, op.Arg))
		var v bool
		switch op.Tag {
		case program.OpIsNone:
			v = tid == layout.TypeIDNone
		case program.OpIsNothing:
			v = tid == layout.TypeIDNothing
		case program.OpIsSome:
			v = tid != layout.TypeIDNone
		}
		targetSlot(f, op.Target)[0] = boolByte(v)
	case program.OpTypeTagIs:
		desc := m.Prog.Registry.MustLookup(op.Type)
		tid := dynamicTID(desc, resolveArg(m, f, op.Arg))
		targetSlot(f, op.Target)[0] = boolByte(tid == op.Of)
	case program.OpTypeTagSubtypeOf:
		desc := m.Prog.Registry.MustLookup(op.Type)
		tid := dynamicTID(desc, resolveArg(m, f, op.Arg))
		of := m.Prog.Registry.MustLookup(op.Of)
		targetSlot(f, op.Target)[0] = boolByte(of.Union.Contains(tid))

	case program.OpReturnAssign:
		desc := m.Prog.Registry.MustLookup(op.Type)
		src := resolveArg(m, f, op.Src)
		values.Store(desc, targetSlot(f, op.Dst), src)
		if f.Result != nil {
			values.Store(desc, f.Result, src)
		}
		return true
	case program.OpReturnAssignOfCons:
		execConstructor(m, f, &program.Op{
			Tag: program.OpConstructorEntity, Target: op.Dst, OfType: op.EntityType, Args: op.Args,
		})
		if f.Result != nil {
			desc := m.Prog.Registry.MustLookup(op.EntityType)
			values.Store(desc, f.Result, targetSlot(f, op.Dst))
		}
		return true

	case program.OpCheckedNegate:
		writeInt(targetSlot(f, op.Target), checkedNegateInt(m, readInt(resolveArg(m, f, op.Arg))))
	case program.OpCheckedAdd, program.OpCheckedSub, program.OpCheckedMul:
		execCheckedArith(m, f, op)
	case program.OpCheckedDiv:
		execCheckedDiv(m, f, op)
	case program.OpSafeArith:
		execSafeArith(m, f, op)
	case program.OpFloatOrder:
		execFloatOrder(m, f, op)
	case program.OpPrimitiveCall:
		execPrimitiveCallOp(m, f, op)

	default:
		raiseInternal(m, "unimplemented opcode: "+string(op.Tag))
	}
	f.IP++
	return false
}

func truthy(slot []byte) bool { return slot[0] != 0 }

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func resolveArg(m *Machine, f *Frame, ref *program.ArgRef) []byte {
	if ref == nil {
		return nil
	}
	if ref.Kind == program.ArgConst {
		return m.Prog.ConstPool[ref.Location:]
	}
	return f.Vars[ref.Location:]
}

func targetSlot(f *Frame, t *program.TargetVar) []byte {
	return f.Vars[t.Offset:]
}

// extractOrAbort runs the narrowing Coerce that backs OpExtract (spec
// §4.3's Extract column) and turns a failed narrowing into a spec §6
// user abort instead of letting values.CoerceError reach Machine.Invoke's
// top-level Recover unhandled (spec §8 scenario S3).
func extractOrAbort(m *Machine, from, into *types.Type, dst, src []byte) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*values.CoerceError); ok {
				live := m.Prog.Registry.MustLookup(ce.Live)
				raiseUser(m, fmt.Sprintf("Extract: live case %s does not match expected type %s", live.Name, into.Name))
				return
			}
			panic(r)
		}
	}()
	values.Coerce(m.Prog.Registry, m.GC, from, into, dst, src)
}

func writeUnionTag(dst []byte, tid layout.TypeID) {
	binary.LittleEndian.PutUint32(dst[:4], uint32(tid))
	binary.LittleEndian.PutUint32(dst[4:8], 0)
}

// dynamicTID reads desc's runtime variant TypeID out of slot; for a
// non-union descriptor the "dynamic" type is just its own static TID.
func dynamicTID(desc *types.Type, slot []byte) layout.TypeID {
	switch desc.Category {
	case types.CategoryUnionRef:
		return layout.TypeID(heapref.DecodeWord(slot).TypeID())
	case types.CategoryUnionInline, types.CategoryUnionUniversal:
		return layout.TypeID(binary.LittleEndian.Uint32(slot[:4]))
	default:
		return desc.TID
	}
}

// guardSuppresses reports whether op's statement guard (spec §4.4
// "Statement guard") is enabled and currently false, meaning the
// opcode's primary effect should not run.
func guardSuppresses(f *Frame, op *program.Op) bool {
	if op.SGuard == nil || !op.SGuard.Enabled {
		return false
	}
	return !guardValue(f, op.SGuard.Guard)
}

func guardValue(f *Frame, g program.Guard) bool {
	return f.LocalMask[g.MaskOffset+g.Index] != 0
}

// execLoadVirtual implements the tuple Virtual load's shared pattern
// with execLoadRecordVirtual/execLoadEntityVirtual: resolve the
// union-typed source's runtime variant, search its shape for the
// requested index/property/field, load from the resolved offset, and
// for a SetGuard variant additionally record whether the lookup
// succeeded.
func execLoadVirtual(m *Machine, f *Frame, op *program.Op, pick func(*types.TupleShape) (uint32, layout.TypeID, bool)) {
	srcDesc := m.Prog.Registry.MustLookup(op.From)
	slot := resolveArg(m, f, op.Arg)
	variant, payload := values.ExtractUnion(srcDesc, m.Prog.Registry, slot)
	off, ftid, ok := pick(variant.Tuple)
	writeSetGuard(f, op, ok)
	if !ok {
		return
	}
	into := m.Prog.Registry.MustLookup(ftid)
	values.Store(into, targetSlot(f, op.Target), payload[off:])
}

func execLoadRecordVirtual(m *Machine, f *Frame, op *program.Op) {
	srcDesc := m.Prog.Registry.MustLookup(op.From)
	slot := resolveArg(m, f, op.Arg)
	variant, payload := values.ExtractUnion(srcDesc, m.Prog.Registry, slot)
	off, ftid, ok := variant.Record.OffsetOf(op.PropID)
	writeSetGuard(f, op, ok)
	if !ok {
		return
	}
	into := m.Prog.Registry.MustLookup(ftid)
	values.Store(into, targetSlot(f, op.Target), payload[off:])
}

func execLoadEntityVirtual(m *Machine, f *Frame, op *program.Op) {
	srcDesc := m.Prog.Registry.MustLookup(op.From)
	slot := resolveArg(m, f, op.Arg)
	variant, payload := values.ExtractUnion(srcDesc, m.Prog.Registry, slot)
	off, ftid, ok := variant.Entity.OffsetOf(op.FieldID)
	writeSetGuard(f, op, ok)
	if !ok {
		return
	}
	into := m.Prog.Registry.MustLookup(ftid)
	values.Store(into, targetSlot(f, op.Target), payload[off:])
}

// writeSetGuard implements the SetGuard* field-access variants (spec
// §4.4 "additionally write the local mask with whether the load was
// legal"): a virtual load whose op carries an SGuard records legality
// there regardless of SGuard.Enabled, since for these opcodes the guard
// slot IS the output, not a conditional on the opcode's own effect.
func writeSetGuard(f *Frame, op *program.Op, legal bool) {
	if op.SGuard == nil {
		return
	}
	v := byte(0)
	if legal {
		v = 1
	}
	f.LocalMask[op.SGuard.Guard.MaskOffset+op.SGuard.Guard.Index] = v
}

// execProject builds an ephemeral list by copying each picked offset's
// word-width slot from src into the target's successive slots (spec
// §4.4 "Projections"). Every picked field in a projection is itself
// scalar/pointer/ref-shaped in the programs this evaluator targets, so a
// uniform word-width copy per pick is exact; a projection that selects a
// wide inline struct field would need per-field width carried in the
// op, which this wire shape does not encode.
func execProject(m *Machine, f *Frame, op *program.Op) {
	src := resolveArg(m, f, op.Arg)
	dst := targetSlot(f, op.Target)
	cursor := uint32(0)
	for _, off := range op.Picks {
		copy(dst[cursor:cursor+layout.WordSize], src[off:off+layout.WordSize])
		cursor += layout.WordSize
	}
}

// execUpdate implements the Update family (spec §4.4 "Updates"): copy
// the source payload into the target slot (allocating a fresh heap
// object first for a Ref-category target), then apply each field
// assignment at its offset.
func execUpdate(m *Machine, f *Frame, op *program.Op) {
	trgtDesc := m.Prog.Registry.MustLookup(op.TrgtType)
	src := resolveArg(m, f, op.Arg)

	var payload []byte
	if trgtDesc.Category == types.CategoryRef {
		ref := m.Alloc(trgtDesc)
		payload = ref.Slot()
		copy(payload, src[:trgtDesc.Size.HeapSize])
		heapref.EncodeWord(targetSlot(f, op.Target), ref)
	} else {
		payload = targetSlot(f, op.Target)
		copy(payload, src[:trgtDesc.Size.AssignSize])
	}

	for _, u := range op.Updates {
		val := resolveArg(m, f, &u.Value)
		copy(payload[u.Offset:u.Offset+layout.WordSize], val[:layout.WordSize])
	}
}

// execConstructor implements Constructor{Tuple,Record,Entity,
// EphemeralList} (spec §4.4 "Constructors"): allocate (Ref target) or
// address in place (Struct target), then write each argument at its
// successive word-width offset.
func execConstructor(m *Machine, f *Frame, op *program.Op) {
	trgtDesc := m.Prog.Registry.MustLookup(op.OfType)
	var dst []byte
	if trgtDesc.Category == types.CategoryRef {
		ref := m.Alloc(trgtDesc)
		dst = ref.Slot()
		heapref.EncodeWord(targetSlot(f, op.Target), ref)
	} else {
		dst = targetSlot(f, op.Target)
	}
	cursor := uint32(0)
	for i := range op.Args {
		val := resolveArg(m, f, &op.Args[i])
		copy(dst[cursor:cursor+layout.WordSize], val[:layout.WordSize])
		cursor += layout.WordSize
	}
}

// execConstructorFromEL implements the *FromEphemeralList variants
// (spec §4.4 "skip the argument evaluation and instead memcpy the
// ephemeral payload").
func execConstructorFromEL(m *Machine, f *Frame, op *program.Op) {
	trgtDesc := m.Prog.Registry.MustLookup(op.OfType)
	src := resolveArg(m, f, op.Arg)
	var dst []byte
	if trgtDesc.Category == types.CategoryRef {
		ref := m.Alloc(trgtDesc)
		dst = ref.Slot()
		heapref.EncodeWord(targetSlot(f, op.Target), ref)
	} else {
		dst = targetSlot(f, op.Target)
	}
	copy(dst, src[:trgtDesc.Size.AssignSize])
}

// execEphemeralExtend implements EphemeralListExtendOp (spec §4.4
// "concatenates an ephemeral with extra arguments").
func execEphemeralExtend(m *Machine, f *Frame, op *program.Op) {
	baseDesc := m.Prog.Registry.MustLookup(op.OfType)
	base := resolveArg(m, f, op.Arg)
	dst := targetSlot(f, op.Target)
	copy(dst, base[:baseDesc.Size.AssignSize])
	cursor := baseDesc.Size.AssignSize
	for i := range op.Args {
		val := resolveArg(m, f, &op.Args[i])
		copy(dst[cursor:cursor+layout.WordSize], val[:layout.WordSize])
		cursor += layout.WordSize
	}
}

// execInvokeFixed implements InvokeFixedFunction (spec §4.4
// "Invocation"): resolve the decl, marshal args, push a frame, evaluate,
// pop, store the result at the target.
func execInvokeFixed(m *Machine, f *Frame, op *program.Op) {
	inv := m.Prog.Invokes[op.InvokeID]
	if inv == nil {
		raiseInternal(m, "invoke: unknown invoke id")
	}
	args := make([][]byte, len(op.Args))
	for i := range op.Args {
		args[i] = resolveArg(m, f, &op.Args[i])
	}
	var optMask []byte
	if op.OptMaskOffset != 0 {
		optMask = f.Vars[op.OptMaskOffset:]
	}
	m.callInvoke(inv, args, optMask, targetSlot(f, op.Target))
}

// execInvokeVirtual additionally resolves the concrete invoke ID from
// the receiver's static entity descriptor's vtable (spec §4.4
// "resolves the target by the receiver's runtime TypeID's vtable"). The
// receiver's static descriptor is carried explicitly on the op
// (EntityType) rather than re-derived from a union-typed first argument,
// since the wire shape here gives the loader that type directly.
func execInvokeVirtual(m *Machine, f *Frame, op *program.Op) {
	receiverDesc := m.Prog.Registry.MustLookup(op.EntityType)
	concreteID, ok := receiverDesc.VTable[op.InvokeID]
	if !ok {
		raiseInternal(m, "virtual dispatch: no vtable entry")
	}
	inv := m.Prog.Invokes[concreteID]
	if inv == nil {
		raiseInternal(m, "invoke: unknown invoke id")
	}
	args := make([][]byte, len(op.Args))
	for i := range op.Args {
		args[i] = resolveArg(m, f, &op.Args[i])
	}
	m.callInvoke(inv, args, nil, targetSlot(f, op.Target))
}

// execCheckedArith implements CheckedAdd/CheckedSub/CheckedMul over the
// two fixed-width checked number kinds (spec §4.4 "Checked arithmetic").
func execCheckedArith(m *Machine, f *Frame, op *program.Op) {
	a, b := resolveArg(m, f, &op.Args[0]), resolveArg(m, f, &op.Args[1])
	dst := targetSlot(f, op.Target)
	switch op.NumWidth {
	case "Nat":
		x, y := readNat(a), readNat(b)
		switch op.Tag {
		case program.OpCheckedAdd:
			writeNat(dst, checkedAddNat(m, x, y))
		case program.OpCheckedSub:
			writeNat(dst, checkedSubNat(m, x, y))
		case program.OpCheckedMul:
			writeNat(dst, checkedMulNat(m, x, y))
		}
	case "Int":
		x, y := readInt(a), readInt(b)
		switch op.Tag {
		case program.OpCheckedAdd:
			writeInt(dst, checkedAddInt(m, x, y))
		case program.OpCheckedSub:
			writeInt(dst, checkedSubInt(m, x, y))
		case program.OpCheckedMul:
			writeInt(dst, checkedMulInt(m, x, y))
		}
	default:
		raiseInternal(m, "checked arithmetic: unsupported width "+op.NumWidth)
	}
}

func execCheckedDiv(m *Machine, f *Frame, op *program.Op) {
	a, b := resolveArg(m, f, &op.Args[0]), resolveArg(m, f, &op.Args[1])
	dst := targetSlot(f, op.Target)
	switch op.NumWidth {
	case "Nat":
		writeNat(dst, checkedDivNat(m, readNat(a), readNat(b)))
	case "Int":
		writeInt(dst, checkedDivInt(m, readInt(a), readInt(b)))
	default:
		raiseInternal(m, "checked division: unsupported width "+op.NumWidth)
	}
}

// execSafeArith implements SafeArith over the three unchecked kinds
// (spec §4.4 "Safe on big-numbers and floats"): Float does the raw
// IEEE-754 op in place, BigNat/BigInt round-trip through the BigNum
// handle table since their storage slot is a handle, not inline digits.
func execSafeArith(m *Machine, f *Frame, op *program.Op) {
	a, b := resolveArg(m, f, &op.Args[0]), resolveArg(m, f, &op.Args[1])
	dst := targetSlot(f, op.Target)
	switch op.NumWidth {
	case "Float":
		x, y := readFloat(a), readFloat(b)
		var r float64
		switch op.ArithKind {
		case "add":
			r = safeAddFloat(x, y)
		case "sub":
			r = safeSubFloat(x, y)
		case "mul":
			r = safeMulFloat(x, y)
		case "div":
			r = safeDivFloat(x, y)
		default:
			raiseInternal(m, "safe arithmetic: unsupported kind "+op.ArithKind)
		}
		writeFloat(dst, r)
	case "BigNat", "BigInt":
		var x, y *big.Int
		if op.NumWidth == "BigInt" {
			x, y = m.Prog.BigNums.BigInt(readBigHandle(a)), m.Prog.BigNums.BigInt(readBigHandle(b))
		} else {
			x, y = m.Prog.BigNums.BigNat(readBigHandle(a)), m.Prog.BigNums.BigNat(readBigHandle(b))
		}
		var r *big.Int
		switch op.ArithKind {
		case "add":
			r = safeAddBig(x, y)
		case "sub":
			r = safeSubBig(x, y)
		case "mul":
			r = safeMulBig(x, y)
		default:
			raiseInternal(m, "safe big arithmetic: unsupported kind "+op.ArithKind)
		}
		var h uint64
		if op.NumWidth == "BigInt" {
			h = m.Prog.BigNums.PutBigInt(r)
		} else {
			h = m.Prog.BigNums.PutBigNat(r)
		}
		writeBigHandle(dst, h)
	default:
		raiseInternal(m, "safe arithmetic: unsupported width "+op.NumWidth)
	}
}

// execFloatOrder implements FloatOrder over Float and Decimal (spec
// §4.4 "Float/Decimal order").
func execFloatOrder(m *Machine, f *Frame, op *program.Op) {
	a, b := resolveArg(m, f, &op.Args[0]), resolveArg(m, f, &op.Args[1])
	orEqual := op.ArithKind == "le"
	var result bool
	if op.NumWidth == "Decimal" {
		x := m.Prog.BigNums.Decimal(readBigHandle(a))
		y := m.Prog.BigNums.Decimal(readBigHandle(b))
		result = decimalOrder(m, x, y, orEqual)
	} else {
		result = floatOrder(m, readFloat(a), readFloat(b), orEqual)
	}
	targetSlot(f, op.Target)[0] = boolByte(result)
}

func readBigHandle(b []byte) uint64     { return binary.LittleEndian.Uint64(b[:8]) }
func writeBigHandle(b []byte, h uint64) { binary.LittleEndian.PutUint64(b[:8], h) }

// execPrimitiveCallOp implements PrimitiveCall (spec §4.4 "Primitive
// built-ins"): an inline call into the tag-dispatched builtin table
// without a separate Invoke declaration. It is wired through the same
// dispatchPrimitive/primitiveTable path InvokeFixedFunction uses for a
// primitive Invoke, by wrapping the op's current-frame operand
// references as a throwaway Invoke whose Params/ResultArg point at
// those same offsets.
func execPrimitiveCallOp(m *Machine, f *Frame, op *program.Op) {
	params := make([]program.ParamInfo, len(op.Args))
	for i, a := range op.Args {
		params[i] = program.ParamInfo{FrameOff: a.Location}
	}
	synthetic := &program.Invoke{
		ImplKey:   op.PrimitiveTag,
		Params:    params,
		ResultArg: op.Target.Offset,
	}
	dispatchPrimitive(m, f, synthetic)
}
