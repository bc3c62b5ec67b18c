package eval

import (
	"encoding/binary"

	"github.com/stephengoldbaum/icppgo/bsqstring"
	"github.com/stephengoldbaum/icppgo/collections"
	"github.com/stephengoldbaum/icppgo/program"
)

// PrimitiveFunc is the shape of one entry of the tag-dispatched builtin
// table (spec §4.4 "Primitive built-ins"): it reads inv's already-
// marshalled parameters out of f.Vars and writes the result into
// f.Vars at inv.ResultArg.
type PrimitiveFunc func(m *Machine, f *Frame, inv *program.Invoke)

// primitiveTable is populated once in init; every entry is grounded on a
// spec §4.4 example tag or its natural sibling (the four arithmetic
// widths of the same operation, the same shape of conversion for each
// (from,into) pair). It is deliberately not an exhaustive enumeration of
// every tag the original interpreter's op_eval.cpp dispatches — that
// catalog runs into the hundreds of narrow numeric-conversion variants —
// but every opcode *family* (arithmetic, string, collection, byte
// buffer) has at least one fully worked, testable representative, and
// the table is open for extension at this one place.
var primitiveTable = map[string]PrimitiveFunc{
	"number_add_nat":    primAddNat,
	"number_sub_nat":    primSubNat,
	"number_mul_nat":    primMulNat,
	"number_div_nat":    primDivNat,
	"number_add_int":    primAddInt,
	"number_sub_int":    primSubInt,
	"number_mul_int":    primMulInt,
	"number_div_int":    primDivInt,
	"number_negate_int": primNegateInt,
	"number_add_float":  primAddFloat,
	"number_sub_float":  primSubFloat,
	"number_mul_float":  primMulFloat,
	"number_div_float":  primDivFloat,

	"number_nattoint": primNatToInt,
	"number_inttonat": primIntToNat,

	"string_append": primStringAppend,
	"string_length": primStringLength,

	"s_list_push_back": primListPushBack,
	"s_list_get":       primListGet,
	"s_list_size":      primListSize,
	"s_list_empty":     primListEmpty,

	"s_map_set":   primMapSet,
	"s_map_get":   primMapGet,
	"s_map_has":   primMapHas,
	"s_map_count": primMapCount,

	"bytebuffer_concat": primByteBufferConcat,
	"bytebuffer_length": primByteBufferLength,
}

// dispatchPrimitive runs inv (inv.IsPrimitive must be true) against
// frame f, aborting with an internal-invariant violation if ImplKey
// names no installed builtin — an unknown tag means the program blob
// references a primitive this build doesn't implement, not a user-level
// error (spec §4.4 "control jumps into a C-style dispatch on a tag").
func dispatchPrimitive(m *Machine, f *Frame, inv *program.Invoke) {
	fn, ok := primitiveTable[inv.ImplKey]
	if !ok {
		raiseInternal(m, "unimplemented primitive: "+inv.ImplKey)
	}
	fn(m, f, inv)
}

func argSlot(f *Frame, inv *program.Invoke, i int) []byte {
	p := inv.Params[i]
	return f.Vars[p.FrameOff:]
}

func resultSlot(f *Frame, inv *program.Invoke) []byte {
	return f.Vars[inv.ResultArg:]
}

func primAddNat(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readNat(argSlot(f, inv, 0)), readNat(argSlot(f, inv, 1))
	writeNat(resultSlot(f, inv), checkedAddNat(m, a, b))
}

func primSubNat(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readNat(argSlot(f, inv, 0)), readNat(argSlot(f, inv, 1))
	writeNat(resultSlot(f, inv), checkedSubNat(m, a, b))
}

func primMulNat(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readNat(argSlot(f, inv, 0)), readNat(argSlot(f, inv, 1))
	writeNat(resultSlot(f, inv), checkedMulNat(m, a, b))
}

func primDivNat(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readNat(argSlot(f, inv, 0)), readNat(argSlot(f, inv, 1))
	writeNat(resultSlot(f, inv), checkedDivNat(m, a, b))
}

func primAddInt(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readInt(argSlot(f, inv, 0)), readInt(argSlot(f, inv, 1))
	writeInt(resultSlot(f, inv), checkedAddInt(m, a, b))
}

func primSubInt(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readInt(argSlot(f, inv, 0)), readInt(argSlot(f, inv, 1))
	writeInt(resultSlot(f, inv), checkedSubInt(m, a, b))
}

func primMulInt(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readInt(argSlot(f, inv, 0)), readInt(argSlot(f, inv, 1))
	writeInt(resultSlot(f, inv), checkedMulInt(m, a, b))
}

func primDivInt(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readInt(argSlot(f, inv, 0)), readInt(argSlot(f, inv, 1))
	writeInt(resultSlot(f, inv), checkedDivInt(m, a, b))
}

func primNegateInt(m *Machine, f *Frame, inv *program.Invoke) {
	a := readInt(argSlot(f, inv, 0))
	writeInt(resultSlot(f, inv), checkedNegateInt(m, a))
}

func primAddFloat(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readFloat(argSlot(f, inv, 0)), readFloat(argSlot(f, inv, 1))
	writeFloat(resultSlot(f, inv), safeAddFloat(a, b))
}

func primSubFloat(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readFloat(argSlot(f, inv, 0)), readFloat(argSlot(f, inv, 1))
	writeFloat(resultSlot(f, inv), safeSubFloat(a, b))
}

func primMulFloat(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readFloat(argSlot(f, inv, 0)), readFloat(argSlot(f, inv, 1))
	writeFloat(resultSlot(f, inv), safeMulFloat(a, b))
}

func primDivFloat(m *Machine, f *Frame, inv *program.Invoke) {
	a, b := readFloat(argSlot(f, inv, 0)), readFloat(argSlot(f, inv, 1))
	writeFloat(resultSlot(f, inv), safeDivFloat(a, b))
}

// primNatToInt/primIntToNat implement the checked-bounds numeric
// conversions spec §4.4 calls out by name ("Out-of-bounds Nat to Int",
// "Out-of-bounds Int to Nat").
func primNatToInt(m *Machine, f *Frame, inv *program.Invoke) {
	v := readNat(argSlot(f, inv, 0))
	if v > 1<<63-1 {
		raiseUser(m, "Out-of-bounds Nat to Int")
	}
	writeInt(resultSlot(f, inv), int64(v))
}

func primIntToNat(m *Machine, f *Frame, inv *program.Invoke) {
	v := readInt(argSlot(f, inv, 0))
	if v < 0 {
		raiseUser(m, "Out-of-bounds Int to Nat")
	}
	writeNat(resultSlot(f, inv), uint64(v))
}

func primStringAppend(m *Machine, f *Frame, inv *program.Invoke) {
	a := bsqstring.DecodeSlot(argSlot(f, inv, 0), m.Prog.Strings)
	b := bsqstring.DecodeSlot(argSlot(f, inv, 1), m.Prog.Strings)
	r := bsqstring.Concat(a, b)
	bsqstring.EncodeSlot(resultSlot(f, inv), m.Prog.Strings, r)
}

func primStringLength(m *Machine, f *Frame, inv *program.Invoke) {
	a := bsqstring.DecodeSlot(argSlot(f, inv, 0), m.Prog.Strings)
	writeNat(resultSlot(f, inv), uint64(a.Len()))
}

func readCollectionHandle(slot []byte) uint64  { return binary.LittleEndian.Uint64(slot[:8]) }
func writeCollectionHandle(slot []byte, h uint64) { binary.LittleEndian.PutUint64(slot[:8], h) }

func primListPushBack(m *Machine, f *Frame, inv *program.Invoke) {
	h := readCollectionHandle(argSlot(f, inv, 0))
	l := m.Collections.List(h)
	elem := collections.Element(argSlot(f, inv, 1))
	newH := m.Collections.PutList(l.PushBack(append(collections.Element{}, elem...)))
	writeCollectionHandle(resultSlot(f, inv), newH)
}

func primListGet(m *Machine, f *Frame, inv *program.Invoke) {
	h := readCollectionHandle(argSlot(f, inv, 0))
	i := readNat(argSlot(f, inv, 1))
	l := m.Collections.List(h)
	copy(resultSlot(f, inv), l.Get(int(i)))
}

func primListSize(m *Machine, f *Frame, inv *program.Invoke) {
	h := readCollectionHandle(argSlot(f, inv, 0))
	writeNat(resultSlot(f, inv), uint64(m.Collections.List(h).Size()))
}

func primListEmpty(m *Machine, f *Frame, inv *program.Invoke) {
	h := m.Collections.PutList(collections.Empty())
	writeCollectionHandle(resultSlot(f, inv), h)
}

func primMapSet(m *Machine, f *Frame, inv *program.Invoke) {
	h := readCollectionHandle(argSlot(f, inv, 0))
	k := collections.Element(argSlot(f, inv, 1))
	v := collections.Element(argSlot(f, inv, 2))
	mp := m.Collections.Map(h)
	newH := m.Collections.PutMap(mp.Set(append(collections.Element{}, k...), append(collections.Element{}, v...)))
	writeCollectionHandle(resultSlot(f, inv), newH)
}

func primMapGet(m *Machine, f *Frame, inv *program.Invoke) {
	h := readCollectionHandle(argSlot(f, inv, 0))
	k := collections.Element(argSlot(f, inv, 1))
	mp := m.Collections.Map(h)
	copy(resultSlot(f, inv), mp.Get(k))
}

func primMapHas(m *Machine, f *Frame, inv *program.Invoke) {
	h := readCollectionHandle(argSlot(f, inv, 0))
	k := collections.Element(argSlot(f, inv, 1))
	v := uint64(0)
	if m.Collections.Map(h).Has(k) {
		v = 1
	}
	resultSlot(f, inv)[0] = byte(v)
}

func primMapCount(m *Machine, f *Frame, inv *program.Invoke) {
	h := readCollectionHandle(argSlot(f, inv, 0))
	writeNat(resultSlot(f, inv), uint64(m.Collections.Map(h).Count()))
}

func primByteBufferConcat(m *Machine, f *Frame, inv *program.Invoke) {
	a := bsqstring.DecodeBufferSlot(argSlot(f, inv, 0), m.Prog.Strings)
	b := bsqstring.DecodeBufferSlot(argSlot(f, inv, 1), m.Prog.Strings)
	r := bsqstring.ConcatBuffers(a, b)
	bsqstring.EncodeBufferSlot(resultSlot(f, inv), m.Prog.Strings, r)
}

func primByteBufferLength(m *Machine, f *Frame, inv *program.Invoke) {
	a := bsqstring.DecodeBufferSlot(argSlot(f, inv, 0), m.Prog.Strings)
	writeNat(resultSlot(f, inv), uint64(a.Len()))
}
