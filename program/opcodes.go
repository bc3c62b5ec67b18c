package program

import (
	"encoding/json"
	"fmt"

	"github.com/stephengoldbaum/icppgo/layout"
)

// OpTag is an opcode's tag value (spec §4.4 "Opcode families"; spec §6
// "Each opcode is a tagged record with tag, ...").
type OpTag string

const (
	OpDeadFlow OpTag = "DeadFlow"
	OpAbort    OpTag = "Abort"
	OpAssert   OpTag = "Assert"
	OpDebug    OpTag = "Debug"

	OpLoadUnint          OpTag = "LoadUnint"
	OpNoneInitUnion      OpTag = "NoneInitUnion"
	OpLoadConst          OpTag = "LoadConst"
	OpStoreConstantMask  OpTag = "StoreConstantMask"

	OpDirectAssign OpTag = "DirectAssign"
	OpBox          OpTag = "Box"
	OpExtract      OpTag = "Extract"

	OpLoadTupleIndexDirect    OpTag = "LoadTupleIndexDirect"
	OpLoadTupleIndexVirtual   OpTag = "LoadTupleIndexVirtual"
	OpLoadRecordPropertyDirect  OpTag = "LoadRecordPropertyDirect"
	OpLoadRecordPropertyVirtual OpTag = "LoadRecordPropertyVirtual"
	OpLoadEntityFieldDirect   OpTag = "LoadEntityFieldDirect"
	OpLoadEntityFieldVirtual  OpTag = "LoadEntityFieldVirtual"

	OpProjectTuple  OpTag = "ProjectTuple"
	OpProjectRecord OpTag = "ProjectRecord"
	OpProjectEntity OpTag = "ProjectEntity"

	OpUpdateTuple  OpTag = "UpdateTuple"
	OpUpdateRecord OpTag = "UpdateRecord"
	OpUpdateEntity OpTag = "UpdateEntity"

	OpConstructorTuple          OpTag = "ConstructorTuple"
	OpConstructorRecord         OpTag = "ConstructorRecord"
	OpConstructorEntity         OpTag = "ConstructorEntity"
	OpConstructorEphemeralList  OpTag = "ConstructorEphemeralList"
	OpConstructorTupleFromEL    OpTag = "ConstructorTupleFromEphemeralList"
	OpConstructorRecordFromEL   OpTag = "ConstructorRecordFromEphemeralList"
	OpConstructorEntityFromEL   OpTag = "ConstructorEntityFromEphemeralList"
	OpEphemeralListExtendOp     OpTag = "EphemeralListExtendOp"

	OpInvokeFixedFunction   OpTag = "InvokeFixedFunction"
	OpInvokeVirtualFunction OpTag = "InvokeVirtualFunction"

	OpJump     OpTag = "Jump"
	OpJumpCond OpTag = "JumpCond"
	OpJumpNone OpTag = "JumpNone"

	OpPrefixNot OpTag = "PrefixNot"
	OpAllTrue   OpTag = "AllTrue"
	OpSomeTrue  OpTag = "SomeTrue"

	OpKeyEqFast  OpTag = "KeyEqFast"
	OpKeyEqStatic  OpTag = "KeyEqStatic"
	OpKeyEqVirtual OpTag = "KeyEqVirtual"
	OpKeyLessFast  OpTag = "KeyLessFast"
	OpKeyLessStatic  OpTag = "KeyLessStatic"
	OpKeyLessVirtual OpTag = "KeyLessVirtual"

	OpIsNone             OpTag = "IsNone"
	OpIsSome             OpTag = "IsSome"
	OpIsNothing          OpTag = "IsNothing"
	OpTypeTagIs          OpTag = "TypeTagIs"
	OpTypeTagSubtypeOf   OpTag = "TypeTagSubtypeOf"

	OpReturnAssign       OpTag = "ReturnAssign"
	OpReturnAssignOfCons OpTag = "ReturnAssignOfCons"

	// Primitive arithmetic opcodes (spec §4.4 "Primitive arithmetic").
	OpCheckedNegate OpTag = "CheckedNegate"
	OpCheckedAdd    OpTag = "CheckedAdd"
	OpCheckedSub    OpTag = "CheckedSub"
	OpCheckedMul    OpTag = "CheckedMul"
	OpCheckedDiv    OpTag = "CheckedDiv"
	OpSafeArith     OpTag = "SafeArith"
	OpFloatOrder    OpTag = "FloatOrder"

	// PrimitiveCall dispatches into the tag-indexed builtin table (spec
	// §4.4 "Primitive built-ins").
	OpPrimitiveCall OpTag = "PrimitiveCall"
)

// ArgKind selects what an ArgRef's Location addresses (spec §6 "Argument
// references have {kind, location} where kind selects constant /
// parameter / local / register").
type ArgKind uint8

const (
	ArgConst ArgKind = iota
	ArgParam
	ArgLocal
	ArgRegister
)

func (k ArgKind) String() string {
	switch k {
	case ArgConst:
		return "const"
	case ArgParam:
		return "param"
	case ArgLocal:
		return "local"
	case ArgRegister:
		return "register"
	default:
		return "unknown"
	}
}

func (k ArgKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *ArgKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "const":
		*k = ArgConst
	case "param":
		*k = ArgParam
	case "local":
		*k = ArgLocal
	case "register":
		*k = ArgRegister
	default:
		return fmt.Errorf("program: unknown arg kind %q", s)
	}
	return nil
}

// ArgRef is a reference to one value-producing location (spec §6).
type ArgRef struct {
	Kind     ArgKind `json:"kind"`
	Location uint32  `json:"location"`
}

// TargetVar names a frame-slot destination (spec §6 "TargetVars are
// {offset}").
type TargetVar struct {
	Offset uint32 `json:"offset"`
}

// Guard is the unconditional guard-read shape (spec §6 "Guards are
// {gmaskoffset, gindex, gvaroffset}").
type Guard struct {
	MaskOffset uint32 `json:"gmaskoffset"`
	Index      uint32 `json:"gindex"`
	VarOffset  uint32 `json:"gvaroffset"`
}

// StatementGuard wraps a Guard with the default-substitution behavior of
// spec §4.4 "Statement guard": "{kind, varOffset, maskOffset, index,
// defaultArg, useDefaultOn, enabled}".
type StatementGuard struct {
	Guard        Guard  `json:"guard"`
	DefaultArg   ArgRef `json:"defaultarg"`
	UseDefaultOn bool   `json:"usedefaulton"`
	Enabled      bool   `json:"enabled"`
}

// SourceInfo is the {line,column} pair every opcode carries for abort
// reporting (spec §6 "sinfo={line,column}").
type SourceInfo struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// FieldUpdate is one (offset,value) pair of an Update* opcode's updates
// list (spec §4.4 "Updates").
type FieldUpdate struct {
	Offset uint32 `json:"offset"`
	Value  ArgRef `json:"value"`
}

// Op is the single generic instruction shape every opcode decodes into:
// "tag", the shared {sinfo, ssrc} pair, and every field any opcode family
// might use, left zero-valued where a given tag doesn't need it. This
// mirrors the sneller VM's flat bcop-plus-operand-words instruction shape
// (DESIGN.md: "cross-checked against ... sneller-vm-bytecode.go.go") more
// than a deep class hierarchy per opcode, and keeps the dispatch loop
// (eval/dispatch.go) a single flat switch on Tag.
type Op struct {
	Tag   OpTag      `json:"tag"`
	SInfo SourceInfo `json:"sinfo"`
	SSrc  string     `json:"ssrc"`

	Target *TargetVar `json:"trgt,omitempty"`
	Dst    *TargetVar `json:"dst,omitempty"`

	Arg  *ArgRef  `json:"arg,omitempty"`
	Args []ArgRef `json:"args,omitempty"`
	Src  *ArgRef  `json:"src,omitempty"`

	Msg string `json:"msg,omitempty"`

	ConstRef *ArgRef       `json:"constref,omitempty"`
	Type     layout.TypeID `json:"type,omitempty"`
	Into     layout.TypeID `json:"into,omitempty"`
	From     layout.TypeID `json:"from,omitempty"`

	UnionType layout.TypeID `json:"uniontype,omitempty"`

	MaskOffset uint32 `json:"maskoffset,omitempty"`
	Index      uint32 `json:"index,omitempty"`
	Flag       bool   `json:"flag,omitempty"`

	SGuard *StatementGuard `json:"sguard,omitempty"`

	FieldID  uint32 `json:"fieldid,omitempty"`
	PropID   uint32 `json:"propid,omitempty"`
	TupleIdx uint32 `json:"tupleidx,omitempty"`

	// DirectOffset is the byte offset a Load*Direct op was baked with at
	// compile time — the monomorphized counterpart of the Virtual
	// family's runtime shape search (spec §4.4 "Direct ... Virtual").
	DirectOffset uint32 `json:"directoffset,omitempty"`

	TargetEL *TargetVar     `json:"trgtel,omitempty"`
	Picks    []uint32       `json:"picks,omitempty"`
	Updates  []FieldUpdate  `json:"updates,omitempty"`
	OfType   layout.TypeID  `json:"oftype,omitempty"`
	TrgtType layout.TypeID  `json:"trgttype,omitempty"`

	InvokeID      uint32 `json:"invokeid,omitempty"`
	OptMaskOffset uint32 `json:"optmaskoffset,omitempty"`

	JumpOffset int32 `json:"off,omitempty"`
	TrueOff    int32 `json:"t,omitempty"`
	FalseOff   int32 `json:"f,omitempty"`
	NoneOff    int32 `json:"n,omitempty"`
	SomeOff    int32 `json:"s,omitempty"`

	EntityType layout.TypeID `json:"entitytype,omitempty"`
	Of         layout.TypeID `json:"of,omitempty"`

	ArithKind string `json:"arithkind,omitempty"` // negate/add/sub/mul/div/less/le
	NumWidth  string `json:"numwidth,omitempty"`  // Nat/Int/Float/Decimal/BigNat/BigInt

	PrimitiveTag string   `json:"primitivetag,omitempty"`
	Binds        []uint32 `json:"binds,omitempty"`
}

// DecodeBody decodes an invoke decl's raw JSON op list into Ops.
func DecodeBody(raw []json.RawMessage) ([]Op, error) {
	ops := make([]Op, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &ops[i]); err != nil {
			return nil, fmt.Errorf("program: op %d: %w", i, err)
		}
	}
	return ops, nil
}
