package gc

import (
	"sync/atomic"

	"github.com/stephengoldbaum/icppgo/heapref"
	"github.com/stephengoldbaum/icppgo/layout"
)

var nextPageID uint32

func allocPageID() uint32 {
	id := atomic.AddUint32(&nextPageID, 1)
	if id > maxPageID {
		panic("gc: exhausted the 26-bit page ID space")
	}
	return id
}

// Page is a type-homed heap page: every object on it shares one TypeID
// and one entry size, addressed by index (spec §4.1 "Page"). Young pages
// are bump-allocated (grounded on hive/alloc/bump.go's append-only
// strategy); old pages use a per-page free-index list (a degenerate,
// single-size-class form of hive/alloc/fastalloc.go's segregated
// free-list, since a page never mixes object sizes).
type Page struct {
	id        uint32
	tid       uint32
	entrySize int
	young     bool
	canary    bool

	data       []byte
	canaryData []byte // 2*layout.DebugCanarySize per slot, only allocated when canary is set
	meta       []Meta

	bump     uint32 // young: index of the next unused slot
	freeList []uint32
}

// NewPage allocates a page of capacity slots for objects of tid, each
// entrySize bytes, and registers it with the heapref page table so any
// Ref pointing at it can be decoded from a raw slot word. canary enables
// the debug-policy guard bytes of spec §4.2 "Debug policy" (b): rather
// than interleaving them into the object stride (which would force every
// Ref/Slot offset computation in heapref to know about debug mode), they
// live in a parallel side array indexed the same way as the object data.
func NewPage(tid layout.TypeID, entrySize int, capacity uint32, young bool, canary bool) *Page {
	p := &Page{
		id:        allocPageID(),
		tid:       uint32(tid),
		entrySize: entrySize,
		young:     young,
		canary:    canary,
		data:      make([]byte, entrySize*int(capacity)),
		meta:      make([]Meta, capacity),
	}
	if canary {
		p.canaryData = make([]byte, 2*layout.DebugCanarySize*int(capacity))
	}
	heapref.RegisterPage(p)
	return p
}

// CanaryBefore and CanaryAfter return the guard-byte windows the debug
// policy places immediately before and after the object at index (spec
// §4.2 "Debug policy" (b)/(c)). Valid only when the page was built with
// canary instrumentation enabled.
func (p *Page) CanaryBefore(index uint32) []byte {
	off := int(index) * 2 * layout.DebugCanarySize
	return p.canaryData[off : off+layout.DebugCanarySize]
}

func (p *Page) CanaryAfter(index uint32) []byte {
	off := int(index)*2*layout.DebugCanarySize + layout.DebugCanarySize
	return p.canaryData[off : off+layout.DebugCanarySize]
}

func (p *Page) PageID() uint32 { return p.id }
func (p *Page) TypeID() uint32 { return p.tid }
func (p *Page) Bytes() []byte  { return p.data }
func (p *Page) EntrySize() int { return p.entrySize }
func (p *Page) Capacity() uint32 { return uint32(len(p.meta)) }
func (p *Page) IsYoung() bool  { return p.young }

func (p *Page) MetaWord(index uint32) uint64 { return uint64(p.meta[index]) }
func (p *Page) SetMetaWord(index uint32, w uint64) { p.meta[index] = Meta(w) }

func (p *Page) MetaAt(index uint32) Meta        { return p.meta[index] }
func (p *Page) SetMetaAt(index uint32, m Meta)   { p.meta[index] = m }

func (p *Page) Slot(index uint32) []byte {
	off := int(index) * p.entrySize
	return p.data[off : off+p.entrySize]
}

// BumpAlloc hands out the next free slot on a young page; ok is false
// once the page is full (the caller must grow to a fresh page).
func (p *Page) BumpAlloc() (index uint32, ok bool) {
	if !p.young {
		panic("gc: BumpAlloc called on an old-generation page")
	}
	if p.bump >= uint32(len(p.meta)) {
		return 0, false
	}
	idx := p.bump
	p.bump++
	p.meta[idx] = FreshAllocated(true)
	return idx, true
}

// FreeListAlloc pops a free index off an old page's free list; ok is
// false once none remain.
func (p *Page) FreeListAlloc() (index uint32, ok bool) {
	if p.young {
		panic("gc: FreeListAlloc called on a young-generation page")
	}
	if len(p.freeList) == 0 {
		return 0, false
	}
	idx := p.freeList[len(p.freeList)-1]
	p.freeList = p.freeList[:len(p.freeList)-1]
	p.meta[idx] = FreshAllocated(false)
	return idx, true
}

// Release returns index to the old page's free list; the original
// interpreter's "recursively enqueue children and return the slot to the
// page freelist" step (spec §4.2 "Old-generation decrement").
func (p *Page) Release(index uint32) {
	if p.young {
		panic("gc: Release called on a young-generation page")
	}
	p.meta[index] = Meta(0)
	p.freeList = append(p.freeList, index)
}

// Ref returns the heapref.Ref addressing index on this page.
func (p *Page) Ref(index uint32) heapref.Ref { return heapref.Ref{Page: p, Index: index} }

// Unregister removes this page from the process-wide page table, e.g.
// once every object on an old page has been released and the page itself
// is being retired.
func (p *Page) Unregister() { heapref.UnregisterPage(p.id) }
