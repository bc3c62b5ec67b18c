package program

import (
	"fmt"

	"github.com/stephengoldbaum/icppgo/bsqstring"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/types"
	"github.com/stephengoldbaum/icppgo/values"
)

// Field is a loaded field declaration (spec §6 fieldDecls), kept for
// display/debug purposes (disasm, virtual field lookup diagnostics).
type Field struct {
	Key          uint32
	Name         string
	DeclaredType layout.TypeID
	IsOptional   bool
}

// ParamInfo is one loaded invocation parameter.
type ParamInfo struct {
	Name       string
	Type       layout.TypeID
	FrameOff   uint32
	IsOptional bool
}

// Invoke is a loaded invocation: either a body of Ops (spec §4.4's
// opcode families) or a primitive dispatched by ImplKey into the
// evaluator's builtin table (spec §4.4 "Primitive built-ins").
type Invoke struct {
	ID          uint32
	Name        string
	IsPrimitive bool
	StackBytes  uint32
	MaskSlots   uint32
	Params      []ParamInfo
	// Locals is the frame's non-parameter, GC-relevant variable table:
	// the generalization of spec §6's "paraminfo" field to every typed
	// stack slot a body can address, not just its parameters, so the
	// evaluator's root scanner (eval.Machine.GCRoots, spec §4.2 "Roots:
	// every live byte of the GC stack traced via the active invocation's
	// slot mask") can recover each live slot's descriptor without a
	// mask-character walk (see types/walk.go's "shape-driven GC walk"
	// design note for why a bare mask string can't do this alone).
	Locals      []ParamInfo
	ResultType  layout.TypeID
	ResultArg   uint32
	Body        []Op

	ImplKey string
	Binds   map[string]uint32
	PCodes  []uint32
}

// ConstEntry is a loaded named constant: its type plus its byte offset
// into Program.ConstPool (spec §6 "constDecls").
type ConstEntry struct {
	Name   string
	Type   layout.TypeID
	Offset uint32
}

// Program is the fully loaded, ready-to-run unit the evaluator walks:
// the type registry, every invocation (body or primitive), the constant
// pool, and the side-tables backing BigNum and String slots (spec §6
// "the decoded program is the unit the evaluator operates over").
type Program struct {
	Registry     *types.Registry
	Invokes      map[uint32]*Invoke
	InvokesByName map[string]*Invoke
	Consts       []ConstEntry
	ConstPool    []byte
	PrimaryEntry uint32

	BigNums *values.BigNumTable
	Strings *bsqstring.Table
}

// Load decodes blob into a runnable Program: installs the fixed set of
// builtin primitive descriptors, then the program's own type, field and
// invocation declarations (spec §6, spec §3 "Lifecycle: a descriptor is
// built once at program load").
func Load(blob *ProgramBlobJSON) (*Program, error) {
	p := &Program{
		Registry:      types.NewRegistry(),
		Invokes:       make(map[uint32]*Invoke),
		InvokesByName: make(map[string]*Invoke),
		ConstPool:     blob.ConstPool,
		PrimaryEntry:  blob.PrimaryEntry,
		BigNums:       values.NewBigNumTable(),
		Strings:       bsqstring.NewTable(),
	}
	registerBuiltinTypes(p)

	for _, td := range blob.TypeDecls {
		t, err := buildType(p, td)
		if err != nil {
			return nil, fmt.Errorf("program: type %q (tid %d): %w", td.Name, td.TID, err)
		}
		p.Registry.Register(t)
	}

	for _, id := range blob.InvokeDecls {
		inv, err := buildInvoke(id)
		if err != nil {
			return nil, fmt.Errorf("program: invoke %q (id %d): %w", id.Name, id.ID, err)
		}
		p.Invokes[inv.ID] = inv
		p.InvokesByName[inv.Name] = inv
	}

	for _, cd := range blob.ConstDecls {
		p.Consts = append(p.Consts, ConstEntry{Name: cd.Name, Type: cd.Type, Offset: cd.Offset})
	}

	return p, nil
}

// registerBuiltinTypes installs the reserved low TypeIDs (spec §3
// "Well-known TypeIDs for primitive types") that exist before any
// program-specific type is loaded: None/Nothing, Bool/Nat/Int,
// BigNat/BigInt/Rational/Decimal, String and ByteBuffer.
//
// Grounded on hive's bootstrap registration of its fixed system indexes
// before user collections are opened (hive/db.go) — a small set of
// well-known identifiers seeded before anything user-supplied loads.
func registerBuiltinTypes(p *Program) {
	reg := p.Registry
	reg.Register(types.NewEmptyType(layout.TypeIDNone, "None"))
	reg.Register(types.NewEmptyType(layout.TypeIDNothing, "Nothing"))

	reg.Register(types.NewPrimitiveType(layout.TypeIDBool, "Bool", 1, values.BoolKeyCmp, values.BoolDisplay))
	reg.Register(types.NewPrimitiveType(layout.TypeIDNat, "Nat", 8, values.NatKeyCmp, values.NatDisplay))
	reg.Register(types.NewPrimitiveType(layout.TypeIDInt, "Int", 8, values.IntKeyCmp, values.IntDisplay))

	reg.Register(types.NewBigNumType(layout.TypeIDBigNat, "BigNat", values.BigNatKeyCmpFor(p.BigNums), values.BigNatDisplayFor(p.BigNums)))
	reg.Register(types.NewBigNumType(layout.TypeIDBigInt, "BigInt", values.BigIntKeyCmpFor(p.BigNums), values.BigIntDisplayFor(p.BigNums)))
	reg.Register(types.NewBigNumType(layout.TypeIDRational, "Rational", nil, values.RationalDisplayFor(p.BigNums)))
	reg.Register(types.NewBigNumType(layout.TypeIDDecimal, "Decimal", nil, values.DecimalDisplayFor(p.BigNums)))

	reg.Register(types.NewStringType(stringKeyCmpFor(p.Strings), values.StringDisplayFor(p.Strings)))
	reg.Register(types.NewStringLikeType(layout.TypeIDByteBuffer, "ByteBuffer", nil, nil))

	// Scalar time/identity primitives (spec §2 "other register-category
	// leaves"): 8-byte values compared as unsigned integers, except
	// UUID4/UUID7/SHAContentHash/LatLongCoordinate which are wider and
	// get no KeyCmp and no comparison primitive (they are not spec
	// key-comparable).
	for _, w := range []struct {
		tid  layout.TypeID
		name string
		size uint32
	}{
		{layout.TypeIDDateTime, "DateTime", 8},
		{layout.TypeIDUTCDateTime, "UTCDateTime", 8},
		{layout.TypeIDCalendarDate, "CalendarDate", 8},
		{layout.TypeIDRelativeTime, "RelativeTime", 8},
		{layout.TypeIDTickTime, "TickTime", 8},
		{layout.TypeIDLogicalTime, "LogicalTime", 8},
		{layout.TypeIDISOTimeStamp, "ISOTimeStamp", 8},
		{layout.TypeIDUUID4, "UUID4", 16},
		{layout.TypeIDUUID7, "UUID7", 16},
		{layout.TypeIDSHAContentHash, "SHAContentHash", 32},
		{layout.TypeIDLatLongCoordinate, "LatLongCoordinate", 16},
		{layout.TypeIDRegex, "Regex", 8},
	} {
		var cmp types.KeyCmpFunc
		if w.size == 8 {
			cmp = values.NatKeyCmp
		}
		reg.Register(types.NewPrimitiveType(w.tid, w.name, w.size, cmp, values.ScalarWordDisplay(w.name)))
	}
}

// stringKeyCmpFor closes over the String slot table so a 16-byte slot
// comparison can decode both sides before delegating to bsqstring's
// byte-lexicographic comparator.
func stringKeyCmpFor(tbl *bsqstring.Table) types.KeyCmpFunc {
	return func(_ *types.Type, _ *types.Registry, a, b []byte) int {
		sa := bsqstring.DecodeSlot(a, tbl)
		sb := bsqstring.DecodeSlot(b, tbl)
		return bsqstring.KeyCmp(sa, sb)
	}
}

// buildType dispatches on td.Category (spec §6 "category tag") to the
// matching types.New*Type constructor. Collection and Ref categories use
// NewRefType directly; Union uses td.WidestInline (pre-computed by the
// tool that emitted the program blob) to pick UnionInline's payload
// width.
func buildType(p *Program, td TypeDeclJSON) (*types.Type, error) {
	reg := p.Registry
	switch td.Category {
	case "Empty":
		return types.NewEmptyType(td.TID, td.Name), nil
	case "Register":
		return types.NewPrimitiveType(td.TID, td.Name, td.HeapSize, nil, nil), nil
	case "BigNum":
		return types.NewBigNumType(td.TID, td.Name, nil, nil), nil
	case "String":
		return types.NewStringLikeType(td.TID, td.Name, stringKeyCmpFor(p.Strings), nil), nil
	case "Ref":
		return types.NewRefType(td.TID, td.Name, types.CategoryRef), nil
	case "Collection":
		return types.NewRefType(td.TID, td.Name, types.CategoryCollection), nil
	case "Struct":
		return buildStructLike(reg, td, false)
	case "BoxedStruct":
		if len(td.Idxs) > 0 || len(td.Props) > 0 || len(td.Fields) > 0 {
			return buildStructLike(reg, td, true)
		}
		return types.NewBoxedStructType(td.TID, td.Name, td.BoxedOf, reg), nil
	case "UnionRef":
		return types.NewUnionType(td.TID, td.Name, types.CategoryUnionRef, td.Subtypes, 0), nil
	case "UnionInline":
		return types.NewUnionType(td.TID, td.Name, types.CategoryUnionInline, td.Subtypes, td.WidestInline), nil
	case "UnionUniversal":
		return types.NewUnionType(td.TID, td.Name, types.CategoryUnionUniversal, td.Subtypes, 0), nil
	default:
		return nil, fmt.Errorf("unknown category %q", td.Category)
	}
}

// buildStructLike picks Tuple vs Record vs Entity vs plain Ephemeral
// shape by which index lists td actually populates: a program blob's
// type decl carries exactly one non-empty shape (spec §3 "exactly one
// shape applies").
func buildStructLike(reg *types.Registry, td TypeDeclJSON, boxed bool) (*types.Type, error) {
	switch {
	case len(td.Idxs) > 0:
		return types.NewTupleType(td.TID, td.Name, td.Idxs, td.IdxOffs, reg, boxed), nil
	case len(td.Props) > 0:
		return types.NewRecordType(td.TID, td.Name, td.Props, td.PropTys, td.PropOffs, reg, boxed), nil
	case len(td.Fields) > 0:
		return types.NewEntityType(td.TID, td.Name, td.Fields, td.FieldTys, td.FieldOffs, reg, td.VTable, nil, nil, td.BoxedOf), nil
	default:
		// Zero-field struct (e.g. an empty tuple/record) still needs a
		// descriptor; NewEphemeralType's aggregateSize handles the empty
		// list case (size clamps to one word via AlignedWordSize).
		return types.NewEphemeralType(td.TID, td.Name, nil, nil, reg), nil
	}
}

// buildInvoke decodes one invocation declaration into its runtime form,
// decoding the op body for a non-primitive invoke (spec §6 "body:
// InterpOp[]").
func buildInvoke(id InvokeDeclJSON) (*Invoke, error) {
	inv := &Invoke{
		ID:          id.ID,
		Name:        id.Name,
		IsPrimitive: id.IsPrimitive,
		StackBytes:  id.StackBytes,
		MaskSlots:   id.MaskSlots,
		ResultType:  id.ResultType,
		ResultArg:   id.ResultArg,
		ImplKey:     id.ImplKey,
		Binds:       id.Binds,
		PCodes:      id.PCodes,
	}
	for _, pp := range id.Params {
		inv.Params = append(inv.Params, ParamInfo{
			Name: pp.Name, Type: pp.Type, FrameOff: pp.FrameOff, IsOptional: pp.IsOptional,
		})
	}
	for _, lv := range id.Locals {
		inv.Locals = append(inv.Locals, ParamInfo{
			Name: lv.Name, Type: lv.Type, FrameOff: lv.FrameOff, IsOptional: lv.IsOptional,
		})
	}
	if !id.IsPrimitive {
		body, err := DecodeBody(id.Body)
		if err != nil {
			return nil, err
		}
		inv.Body = body
	}
	return inv, nil
}
