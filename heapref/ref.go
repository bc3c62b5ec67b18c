// Package heapref defines the logical heap-address type shared by the gc
// and types packages without forcing them into an import cycle.
//
// The original interpreter resolves a page (and its metadata word) from a
// raw pointer by masking off the low bits of the address (spec §4.1). Go
// gives no safe way to do that kind of address arithmetic across a slice
// that the runtime is free to move, so this is adapted into an explicit
// logical pointer: a page handle plus an index, which recovers the
// O(1)-lookup property the masking trick existed to provide, without the
// unsafe raw-address games.
package heapref

import (
	"encoding/binary"
	"sync"
)

// PageHandle is the subset of *gc.Page every package outside gc needs.
// gc.Page implements it; kept as an interface here so this package (and
// types, which stores Refs inside descriptors' runtime data) never needs
// to import gc.
type PageHandle interface {
	// PageID is a process-unique, stable identifier for this page, used to
	// round-trip a Ref through the flat byte encoding a slot stores (see
	// EncodeWord/DecodeWord) without either package needing unsafe.Pointer
	// arithmetic across a slice the Go runtime may move.
	PageID() uint32
	// TypeID returns the TypeID every object on this page shares.
	TypeID() uint32
	// Bytes returns the page's full data segment.
	Bytes() []byte
	// EntrySize returns the per-object stride within Bytes.
	EntrySize() int
	// MetaWord returns the raw GC metadata word for the object at index.
	MetaWord(index uint32) uint64
	// SetMetaWord overwrites the raw GC metadata word for the object at index.
	SetMetaWord(index uint32, w uint64)
}

// pages is the process-wide PageID -> PageHandle table. A page registers
// itself here when created (gc.NewPage) and deregisters when retired, so
// any slot's raw 8-byte pointer word can be decoded back into a live Ref
// without the types/eval packages needing to import gc.
var pages = struct {
	mu sync.RWMutex
	m  map[uint32]PageHandle
}{m: make(map[uint32]PageHandle)}

// RegisterPage makes p resolvable by DecodeWord under p.PageID(). Called
// once by the gc package when a page is allocated.
func RegisterPage(p PageHandle) {
	pages.mu.Lock()
	pages.m[p.PageID()] = p
	pages.mu.Unlock()
}

// UnregisterPage removes a retired page's ID, e.g. once an old-generation
// page is fully reclaimed and its slot reused for a different type.
func UnregisterPage(id uint32) {
	pages.mu.Lock()
	delete(pages.m, id)
	pages.mu.Unlock()
}

func lookupPage(id uint32) PageHandle {
	if id == 0 {
		return nil
	}
	pages.mu.RLock()
	p := pages.m[id]
	pages.mu.RUnlock()
	return p
}

// EncodeWord writes r into the leading 8 bytes of slot as (pageID uint32,
// index uint32), little-endian. The zero encoding (both halves 0) is Nil.
func EncodeWord(slot []byte, r Ref) {
	var pageID uint32
	if r.Page != nil {
		pageID = r.Page.PageID()
	}
	binary.LittleEndian.PutUint32(slot[0:4], pageID)
	binary.LittleEndian.PutUint32(slot[4:8], r.Index)
}

// DecodeWord reads back a Ref written by EncodeWord, resolving the page ID
// through the process-wide page table. Returns Nil if the word is zero or
// names a page that is no longer registered (already reclaimed).
func DecodeWord(slot []byte) Ref {
	pageID := binary.LittleEndian.Uint32(slot[0:4])
	index := binary.LittleEndian.Uint32(slot[4:8])
	page := lookupPage(pageID)
	if page == nil {
		return Nil
	}
	return Ref{Page: page, Index: index}
}

// Ref is a logical heap pointer: the page an object lives on, plus its
// slot index within that page. The zero Ref is the null reference.
type Ref struct {
	Page  PageHandle
	Index uint32
}

// Nil is the null heap reference.
var Nil = Ref{}

// IsNil reports whether r is the null reference.
func (r Ref) IsNil() bool { return r.Page == nil }

// Slot returns the byte window this reference addresses.
func (r Ref) Slot() []byte {
	if r.Page == nil {
		return nil
	}
	es := r.Page.EntrySize()
	off := int(r.Index) * es
	b := r.Page.Bytes()
	return b[off : off+es]
}

// TypeID returns the TypeID of the object r addresses, recovered from the
// owning page the way the original recovers it by masking the pointer
// down to the page base (spec §3 "Page").
func (r Ref) TypeID() uint32 {
	if r.Page == nil {
		return 0
	}
	return r.Page.TypeID()
}

// Meta returns the raw GC metadata word for this reference's slot.
func (r Ref) Meta() uint64 {
	if r.Page == nil {
		return 0
	}
	return r.Page.MetaWord(r.Index)
}

// SetMeta overwrites the raw GC metadata word for this reference's slot.
func (r Ref) SetMeta(w uint64) {
	if r.Page == nil {
		return
	}
	r.Page.SetMetaWord(r.Index, w)
}

// Equal reports whether two refs address the same slot on the same page.
func (r Ref) Equal(o Ref) bool {
	return r.Page == o.Page && r.Index == o.Index
}
