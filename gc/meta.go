// Package gc implements the page-segregated, generational collector
// described in spec §4.2: young-generation copying/evacuation plus
// old-generation decrement-queue reclamation, driven by each live type's
// GCFunctors (types.GCFunctors) rather than by interpreting a mask string
// directly (see DESIGN.md "types package internals").
//
// Grounded on hive/alloc's allocator pair (bump.go for the young
// generation's append-only strategy, fastalloc.go for the old
// generation's segregated free-list) and hive/sk.go's refcounted,
// back-pointer-then-count shared-ownership discipline.
package gc

import "github.com/stephengoldbaum/icppgo/layout"

// Meta is a GC metadata word, bit-packed exactly per spec §4.2:
//
//	bit 63          Allocated
//	bit 62          Dec-pending
//	bit 61          IsForwardingPointer
//	bit 60          RC-kind (1=count, 0=back-pointer)
//	bits 59..2      RC-data
//	bit 1           Mark
//	bit 0           Young
//
// RC-data holds either a plain refcount (RC-kind=count) or a packed
// (pageID, index) pair addressing the single owning back-pointer or a
// forwarding target (RC-kind=back-pointer, or IsFwdPtr set). Packing a
// (pageID, index) pair into the 58-bit RC-data field — rather than a raw
// pointer, which the original's tagged-pointer scheme allows but Go's
// moving, type-safe heap does not — is adapted here: pageID is limited
// to 26 bits and index to 32 bits, which
// together exactly fill the 58-bit field.
type Meta uint64

const maxPageID = 1<<26 - 1

func (m Meta) Allocated() bool  { return uint64(m)&layout.MetaAllocatedBit != 0 }
func (m Meta) DecPending() bool { return uint64(m)&layout.MetaDecPendingBit != 0 }
func (m Meta) IsFwdPtr() bool   { return uint64(m)&layout.MetaIsFwdPtrBit != 0 }
func (m Meta) IsRCKind() bool   { return uint64(m)&layout.MetaRCKindBit != 0 }
func (m Meta) Mark() bool       { return uint64(m)&layout.MetaMarkBit != 0 }
func (m Meta) Young() bool      { return uint64(m)&layout.MetaYoungBit != 0 }

func (m Meta) rcData() uint64 {
	return (uint64(m) & layout.MetaRCDataMask) >> layout.MetaRCShift
}

// Count returns RC-data interpreted as a plain refcount (valid only when
// IsRCKind is true).
func (m Meta) Count() uint64 { return m.rcData() }

// Ref returns RC-data interpreted as a packed (pageID, index) pair (valid
// when IsRCKind is false, or when IsFwdPtr is true).
func (m Meta) Ref() (pageID, index uint32) {
	d := m.rcData()
	return uint32(d >> 32), uint32(d)
}

func packRef(pageID, index uint32) uint64 {
	if pageID > maxPageID {
		panic("gc: pageID exceeds 26-bit RC-data budget")
	}
	return (uint64(pageID) << 32) | uint64(index)
}

func withRCData(base uint64, data uint64) Meta {
	return Meta((base &^ layout.MetaRCDataMask) | ((data << layout.MetaRCShift) & layout.MetaRCDataMask))
}

func flags(m Meta, bit uint64, on bool) Meta {
	if on {
		return Meta(uint64(m) | bit)
	}
	return Meta(uint64(m) &^ bit)
}

func (m Meta) WithAllocated(v bool) Meta  { return flags(m, layout.MetaAllocatedBit, v) }
func (m Meta) WithDecPending(v bool) Meta { return flags(m, layout.MetaDecPendingBit, v) }
func (m Meta) WithMark(v bool) Meta       { return flags(m, layout.MetaMarkBit, v) }
func (m Meta) WithYoung(v bool) Meta      { return flags(m, layout.MetaYoungBit, v) }

// WithForwarding rewrites m into a forwarding pointer to (pageID, index),
// per spec §4.2 "its original slot's metadata word is rewritten to
// (IS_FWD_PTR | newAddress<<2)".
func (m Meta) WithForwarding(pageID, index uint32) Meta {
	out := flags(m, layout.MetaIsFwdPtrBit, true)
	return withRCData(uint64(out), packRef(pageID, index))
}

// WithBackPointer records (pageID, index) as the slot's sole owner, per
// spec §4.2 "Parent accounting": metadata becomes (Allocated |
// (parentPtr<<2)) with RC-kind=back-pointer.
func (m Meta) WithBackPointer(pageID, index uint32) Meta {
	out := flags(m, layout.MetaRCKindBit, false)
	out = flags(out, layout.MetaAllocatedBit, true)
	return withRCData(uint64(out), packRef(pageID, index))
}

// WithCount upgrades (or updates) m to count discipline with value n, per
// spec §4.2 "the back-pointer representation is upgraded to a count:
// (Allocated | RC_KIND | count) starting at 2".
func (m Meta) WithCount(n uint64) Meta {
	out := flags(m, layout.MetaRCKindBit, true)
	out = flags(out, layout.MetaAllocatedBit, true)
	return withRCData(uint64(out), n)
}

// FreshAllocated returns the metadata word for a just-bumped young slot:
// allocated, young, refcount-kind not yet meaningful until a back-pointer
// is recorded by the first reference that points at it.
func FreshAllocated(young bool) Meta {
	m := Meta(layout.MetaAllocatedBit)
	if young {
		m = m.WithYoung(true)
	}
	return m
}
