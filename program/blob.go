// Package program decodes the serialized program blob of spec §6 (type
// table, field table, invocation declarations, constant pool) into the
// in-memory Program the evaluator walks, and builds the types.Registry
// that describes it.
//
// Grounded on internal/format/regf.go and internal/format/nk.go (a
// top-level header record followed by a table of fixed-shape decl
// records, the model for this package's top-level ProgramBlob followed
// by TypeDecl/FieldDecl/InvokeDecl tables) and internal/format/encoding.go
// (little-endian primitive reader helpers — the model for ConstantPool's
// offset-addressed reads). encoding/json is used for the wire format
// itself per spec §6 ("Program blob. JSON with these top-level
// sections"): this is the boundary format the spec mandates, not an
// avoidable library gap.
package program

import (
	"encoding/json"
	"fmt"

	"github.com/stephengoldbaum/icppgo/layout"
)

// TypeDeclJSON mirrors spec §6's typeDecls entry: "tid, category tag,
// layout sizes, masks, vtable entries, and category-specific fields
// (tuple idxs, record props, entity fields, union subtypes)".
type TypeDeclJSON struct {
	TID        layout.TypeID     `json:"tid"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	HeapSize   uint32            `json:"heapSize"`
	InlineSize uint32            `json:"inlineSize"`
	AssignSize uint32            `json:"assignSize"`
	HeapMask   string            `json:"heapMask"`
	InlineMask string            `json:"inlineMask"`
	VTable     map[uint32]uint32 `json:"vtable"`
	BoxedOf    layout.TypeID     `json:"boxedOf"`
	WidestInline uint32          `json:"widestInline"`

	// Tuple
	Idxs    []layout.TypeID `json:"idxs"`
	IdxOffs []uint32        `json:"idxOffsets"`

	// Record
	Props    []uint32       `json:"props"`
	PropTys  []layout.TypeID `json:"propTypes"`
	PropOffs []uint32       `json:"propOffsets"`

	// Entity
	Fields     []uint32        `json:"fields"`
	FieldTys   []layout.TypeID `json:"fieldTypes"`
	FieldOffs  []uint32        `json:"fieldOffsets"`

	// Union
	Subtypes []layout.TypeID `json:"subtypes"`
}

// FieldDeclJSON mirrors spec §6's fieldDecls entry.
type FieldDeclJSON struct {
	FKey         uint32        `json:"fkey"`
	FName        string        `json:"fname"`
	DeclaredType layout.TypeID `json:"declaredType"`
	IsOptional   bool          `json:"isOptional"`
}

// ParamInfoJSON mirrors one parameter of a body or primitive invocation.
type ParamInfoJSON struct {
	Name       string        `json:"name"`
	Type       layout.TypeID `json:"type"`
	FrameOff   uint32        `json:"frameOffset"`
	IsOptional bool          `json:"isOptional"`
}

// InvokeDeclJSON mirrors spec §6's invokeDecls entry: "each is either
// body {stackBytes, maskSlots, params, paraminfo, resultType, resultArg,
// body: InterpOp[]} or primitive {implkey, binds, pcodes, params,
// resultType}".
type InvokeDeclJSON struct {
	ID          uint32          `json:"id"`
	Name        string          `json:"name"`
	IsPrimitive bool            `json:"isPrimitive"`
	StackBytes  uint32          `json:"stackBytes"`
	MaskSlots   uint32          `json:"maskSlots"`
	Params      []ParamInfoJSON `json:"params"`
	// Locals mirrors spec §6's "paraminfo" generalized to the invocation's
	// full GC-relevant local variable table (offset + declared type for
	// every non-parameter stack slot the body addresses), not just its
	// parameters — see program.Invoke.Locals.
	Locals      []ParamInfoJSON `json:"locals"`
	ResultType  layout.TypeID   `json:"resultType"`
	ResultArg   uint32          `json:"resultArg"`
	Body        []json.RawMessage `json:"body"`

	ImplKey string            `json:"implkey"`
	Binds   map[string]uint32 `json:"binds"`
	PCodes  []uint32          `json:"pcodes"`
}

// ConstDeclJSON mirrors one entry of spec §6's constDecls: a named,
// typed offset into the single constant-pool byte buffer.
type ConstDeclJSON struct {
	Name   string        `json:"name"`
	Type   layout.TypeID `json:"type"`
	Offset uint32        `json:"offset"`
}

// ProgramBlobJSON is the top-level decode target for the whole program
// blob (spec §6).
type ProgramBlobJSON struct {
	TypeDecls   []TypeDeclJSON  `json:"typeDecls"`
	FieldDecls  []FieldDeclJSON `json:"fieldDecls"`
	InvokeDecls []InvokeDeclJSON `json:"invokeDecls"`
	ConstDecls  []ConstDeclJSON `json:"constDecls"`
	ConstPool   []byte          `json:"constPool"`
	PrimaryEntry uint32         `json:"primaryEntry"`
}

// Decode parses a program blob from raw JSON bytes.
func Decode(data []byte) (*ProgramBlobJSON, error) {
	var blob ProgramBlobJSON
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("program: malformed program blob: %w", err)
	}
	return &blob, nil
}
