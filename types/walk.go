package types

import (
	"encoding/binary"

	"github.com/stephengoldbaum/icppgo/heapref"
	"github.com/stephengoldbaum/icppgo/layout"
)

// GenericFunctors builds the four GC entry points for t purely from its
// Category and shape (Tuple/Record/Entity/Union), the shape-driven
// realization of Design Notes §9 "Polymorphism": dispatch by category
// switch, recursing through field/variant type lists rather than a raw
// mask-character walk (which cannot by itself recover a nested
// UnionInline field's width — see DESIGN.md).
func GenericFunctors(t *Type) GCFunctors {
	return GCFunctors{
		Visit:            genericVisit,
		Dec:              genericDec,
		EvacuateParent:   genericEvacuateParent,
		EvacuateChildren: genericEvacuateChildren,
	}
}

// fieldTypesAndOffsets returns the flat (offset, fieldTypeID) list for
// any struct-shaped descriptor (Tuple, Record, Entity, Ephemeral), or
// nil for descriptors with no such shape.
func fieldTypesAndOffsets(t *Type) ([]uint32, []layout.TypeID) {
	switch {
	case t.Tuple != nil:
		return t.Tuple.IdxOffsets, t.Tuple.TTypes
	case t.Record != nil:
		return t.Record.PropertyOffsets, t.Record.RTypes
	case t.Entity != nil:
		return t.Entity.FieldOffsets, t.Entity.FieldTypes
	case t.Ephemeral != nil:
		return t.Ephemeral.IdxOffsets, t.Ephemeral.ETypes
	default:
		return nil, nil
	}
}

func genericVisit(t *Type, reg *Registry, slot []byte, ops GCOps) {
	switch t.Category {
	case CategoryEmpty, CategoryRegister, CategoryBigNum:
		// Leaf payload: no pointers to trace. BigNum is a handle into a
		// process-wide Go-GC'd side table (values.BigNumTable — see
		// DESIGN.md "BigNum as an 8-byte handle"), never a heapref-
		// decodable pointer into one of this collector's own pages.
	case CategoryCollection:
		// Leaf payload: a CollectionTable handle (eval.CollectionTable),
		// not a heapref pointer. Both handles and heapref page IDs are
		// small sequential integers occupying the same slot bytes, so
		// decoding this slot with DecodeWord would risk resolving an
		// unrelated live page and corrupting or misevacuating it.
	case CategoryString:
		// Leaf payload: non-inline slots hold a bsqstring.Table handle,
		// same representation hazard as CategoryCollection above.
	case CategoryRef, CategoryUnionRef:
		visitPointerWord(slot, ops)
	case CategoryStruct, CategoryBoxedStruct:
		visitAggregate(t, reg, slot, ops)
	case CategoryUnionInline:
		visitUnionInline(t, reg, slot, ops)
	case CategoryUnionUniversal:
		visitUnionUniversal(reg, slot, ops)
	}
}

func visitAggregate(t *Type, reg *Registry, slot []byte, ops GCOps) {
	offs, ftypes := fieldTypesAndOffsets(t)
	for i, off := range offs {
		ft := reg.MustLookup(ftypes[i])
		width := fieldSlotWidth(ft)
		genericVisit(ft, reg, slot[off:off+width], ops)
	}
}

func visitUnionInline(t *Type, reg *Registry, slot []byte, ops GCOps) {
	variantTID := layout.TypeID(binary.LittleEndian.Uint32(slot[:4]))
	if variantTID == layout.TypeIDNone {
		return
	}
	variant := reg.Lookup(variantTID)
	if variant == nil {
		return
	}
	payload := slot[layout.WordSize:]
	genericVisit(variant, reg, payload[:fieldSlotWidth(variant)], ops)
}

func visitUnionUniversal(reg *Registry, slot []byte, ops GCOps) {
	variantTID := layout.TypeID(binary.LittleEndian.Uint32(slot[:4]))
	if variantTID == layout.TypeIDNone {
		return
	}
	variant := reg.Lookup(variantTID)
	if variant == nil {
		return
	}
	payload := slot[layout.WordSize : layout.WordSize+layout.UnionUniversalContentSize]
	if variant.Category == CategoryBoxedStruct {
		// Struct was auto-boxed in; payload[0:8] holds the box pointer.
		visitPointerWord(payload, ops)
		return
	}
	genericVisit(variant, reg, payload[:min32(fieldSlotWidth(variant), uint32(len(payload)))], ops)
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// fieldSlotWidth returns the number of bytes a value of type ft occupies
// when embedded as a field of a containing struct (its InlineSize, word-
// aligned).
func fieldSlotWidth(ft *Type) uint32 {
	return AlignedWordSize(ft.Size.InlineSize)
}

func visitPointerWord(slot []byte, ops GCOps) {
	r := decodeRefWord(slot)
	if r.IsNil() {
		return
	}
	updated := ops.EvacuateChild(r)
	encodeRefWord(slot, updated)
}

func genericDec(t *Type, reg *Registry, slot []byte, ops GCOps) {
	switch t.Category {
	case CategoryEmpty, CategoryRegister, CategoryBigNum, CategoryCollection, CategoryString:
		// See the matching cases in genericVisit: Collection and String
		// slots hold table handles, not heapref pointers.
	case CategoryRef, CategoryUnionRef:
		decPointerWord(slot, ops)
	case CategoryStruct, CategoryBoxedStruct:
		offs, ftypes := fieldTypesAndOffsets(t)
		for i, off := range offs {
			ft := reg.MustLookup(ftypes[i])
			width := fieldSlotWidth(ft)
			genericDec(ft, reg, slot[off:off+width], ops)
		}
	case CategoryUnionInline:
		variantTID := layout.TypeID(binary.LittleEndian.Uint32(slot[:4]))
		if variantTID == layout.TypeIDNone {
			return
		}
		if variant := reg.Lookup(variantTID); variant != nil {
			payload := slot[layout.WordSize:]
			genericDec(variant, reg, payload[:fieldSlotWidth(variant)], ops)
		}
	case CategoryUnionUniversal:
		variantTID := layout.TypeID(binary.LittleEndian.Uint32(slot[:4]))
		if variantTID == layout.TypeIDNone {
			return
		}
		if variant := reg.Lookup(variantTID); variant != nil {
			payload := slot[layout.WordSize : layout.WordSize+layout.UnionUniversalContentSize]
			if variant.Category == CategoryBoxedStruct {
				decPointerWord(payload, ops)
				return
			}
			genericDec(variant, reg, payload[:min32(fieldSlotWidth(variant), uint32(len(payload)))], ops)
		}
	}
}

func decPointerWord(slot []byte, ops GCOps) {
	r := decodeRefWord(slot)
	if !r.IsNil() {
		ops.DecChild(r)
	}
}

// The collector calls genericEvacuateParent and genericEvacuateChildren
// with the whole slot of the object it has just evacuated, whatever that
// object's category; genericEvacuateChildren walks nested aggregates via
// genericVisit. Collection and String fields carry table handles, not
// heapref pointers, so the walk passes no child Ref for them.
// genericEvacuateParent is called by the collector (gc.evacOps.finalize)
// the moment a survivor's metadata word is committed to back-pointer form,
// naming its one owner. The collector itself owns that metadata-word
// transition (layout.MetaRCKindBit); this functor is the generic type's
// hook for types whose own slot layout also wants to record the owner
// (e.g. an inline self-link field), which none of today's built-in
// categories do, so it stays a no-op.
func genericEvacuateParent(t *Type, reg *Registry, slot []byte, newParent heapref.Ref) {
	_ = t
	_ = reg
	_ = slot
	_ = newParent
}

// genericEvacuateChildren is called by the collector (gc.evacOps) right
// after an object is copied to its new address, before any of its
// pointer fields are visited: the opportunity for a descriptor to
// retarget a child that already holds a back-pointer to this object's
// pre-evacuation address. Under this collector's single-pass young
// evacuation no child can have recorded such a back-pointer yet (the
// object's address is finalized before its children are ever visited),
// so walking with an identity EvacuateChild is a genuine no-op today —
// but the call fires on every evacuation, giving a future back-pointer-
// bearing representation a real hook instead of an unused one.
func genericEvacuateChildren(t *Type, reg *Registry, slot []byte, oldParent, newParent heapref.Ref) {
	_ = oldParent
	genericVisit(t, reg, slot, evacuateChildrenOps{newParent: newParent})
}

// evacuateChildrenOps is a GCOps adapter used only by
// genericEvacuateChildren: walking the slot with an identity
// EvacuateChild (no forwarding lookup, no counting) since nothing in the
// generic walk needs to change here — see genericEvacuateChildren.
type evacuateChildrenOps struct {
	newParent heapref.Ref
}

func (evacuateChildrenOps) EvacuateChild(child heapref.Ref) heapref.Ref { return child }
func (evacuateChildrenOps) DecChild(heapref.Ref)                        {}

func decodeRefWord(slot []byte) heapref.Ref {
	// The 8-byte pointer word is resolved into a live heapref.Ref by
	// heapref.DecodeWord through heapref's process-wide page table, so
	// types needs no import of gc to hand real Refs to ops.
	return heapref.DecodeWord(slot)
}

func encodeRefWord(slot []byte, r heapref.Ref) {
	heapref.EncodeWord(slot, r)
}
