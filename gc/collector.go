package gc

import (
	"fmt"

	"github.com/stephengoldbaum/icppgo/heapref"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/types"
)

// DebugPolicy controls the canary/fill-marker instrumentation described
// in spec §4.2 "Debug policy".
type DebugPolicy struct {
	Enabled bool
}

type pageIndexKey struct {
	pageID uint32
	index  uint32
}

// Collector owns every type-homed page and drives both the young
// evacuating minor GC and the old-generation decrement queue (spec §4.2
// "Algorithm"). One Collector is created per running program, sharing its
// *types.Registry with the evaluator.
type Collector struct {
	reg   *types.Registry
	young map[layout.TypeID][]*Page
	old   map[layout.TypeID][]*Page

	thresholdBytes uint64
	bytesAllocated uint64

	decQueue []heapref.Ref
	debug    DebugPolicy
}

// NewCollector builds a collector for reg, using threshold as the
// bytes-allocated-since-last-cycle budget that should trigger a minor GC
// (spec §4.2 "Scheduling model"; clamped to the spec's configured bounds
// by the caller).
func NewCollector(reg *types.Registry, threshold uint64, debug DebugPolicy) *Collector {
	return &Collector{
		reg:            reg,
		young:          make(map[layout.TypeID][]*Page),
		old:            make(map[layout.TypeID][]*Page),
		thresholdBytes: threshold,
		debug:          debug,
	}
}

// BytesSinceLastCycle reports the running allocation counter the
// mutator's allocation loop compares against thresholdBytes to decide
// when to call MinorGC.
func (c *Collector) BytesSinceLastCycle() uint64 { return c.bytesAllocated }

func (c *Collector) ThresholdBytes() uint64 { return c.thresholdBytes }

// entrySizeFor is the per-slot stride a type's instances occupy on a
// heap page: its word-aligned heap representation.
func entrySizeFor(t *types.Type) int {
	return int(types.AlignedWordSize(t.Size.HeapSize))
}

func pageCapacityFor(entrySize int) uint32 {
	n := layout.PageSize / entrySize
	if n < 1 {
		n = 1
	}
	return uint32(n)
}

// Alloc bumps a fresh young slot for desc, growing a new young page when
// the current one is full (spec §4.1 "Page", §4.2 young generation).
func (c *Collector) Alloc(desc *types.Type) heapref.Ref {
	pages := c.young[desc.TID]
	var page *Page
	if n := len(pages); n > 0 {
		page = pages[n-1]
	}
	if page == nil {
		page = c.newYoungPage(desc)
	}
	idx, ok := page.BumpAlloc()
	if !ok {
		page = c.newYoungPage(desc)
		idx, ok = page.BumpAlloc()
		if !ok {
			panic("gc: freshly created young page reports no capacity")
		}
	}
	if c.debug.Enabled {
		fillDebugMarker(page.Slot(idx))
		writeCanaries(page, idx)
	}
	c.bytesAllocated += uint64(page.EntrySize())
	return page.Ref(idx)
}

func (c *Collector) newYoungPage(desc *types.Type) *Page {
	es := entrySizeFor(desc)
	p := NewPage(desc.TID, es, pageCapacityFor(es), true, c.debug.Enabled)
	c.young[desc.TID] = append(c.young[desc.TID], p)
	return p
}

func (c *Collector) oldPageFor(desc *types.Type) *Page {
	pages := c.old[desc.TID]
	if n := len(pages); n > 0 {
		last := pages[n-1]
		if len(last.freeList) > 0 || last.bump < last.Capacity() {
			return last
		}
	}
	es := entrySizeFor(desc)
	p := NewPage(desc.TID, es, pageCapacityFor(es), false, c.debug.Enabled)
	c.old[desc.TID] = append(c.old[desc.TID], p)
	return p
}

func (c *Collector) allocOld(desc *types.Type) (*Page, uint32) {
	page := c.oldPageFor(desc)
	if idx, ok := page.FreeListAlloc(); ok {
		if c.debug.Enabled {
			fillDebugMarker(page.Slot(idx))
			writeCanaries(page, idx)
		}
		return page, idx
	}
	if page.bump < page.Capacity() {
		idx := page.bump
		page.bump++
		page.meta[idx] = FreshAllocated(false)
		if c.debug.Enabled {
			fillDebugMarker(page.Slot(idx))
			writeCanaries(page, idx)
		}
		return page, idx
	}
	fresh := c.newOldPage(desc)
	idx := fresh.bump
	fresh.bump++
	fresh.meta[idx] = FreshAllocated(false)
	if c.debug.Enabled {
		fillDebugMarker(fresh.Slot(idx))
		writeCanaries(fresh, idx)
	}
	return fresh, idx
}

func (c *Collector) newOldPage(desc *types.Type) *Page {
	es := entrySizeFor(desc)
	p := NewPage(desc.TID, es, pageCapacityFor(es), false, c.debug.Enabled)
	c.old[desc.TID] = append(c.old[desc.TID], p)
	return p
}

// PageStats reports one page's type, generation, slot capacity and entry
// size for the icppvm gcstats command (spec §4.1 "Page"); it carries no
// live-slot count.
type PageStats struct {
	TypeID    layout.TypeID
	Young     bool
	Capacity  uint32
	EntrySize int
}

// Stats reports every page this collector currently owns, young pages
// first, grouped by TypeID in Go map iteration order (the TypeID order
// is not defined and may differ between calls). It allocates a fresh
// slice on every call rather than caching, since it is a diagnostics
// path, not one the mutator's hot loop touches.
func (c *Collector) Stats() []PageStats {
	var out []PageStats
	for tid, pages := range c.young {
		for _, p := range pages {
			out = append(out, PageStats{TypeID: tid, Young: true, Capacity: p.Capacity(), EntrySize: p.EntrySize()})
		}
	}
	for tid, pages := range c.old {
		for _, p := range pages {
			out = append(out, PageStats{TypeID: tid, Young: false, Capacity: p.Capacity(), EntrySize: p.EntrySize()})
		}
	}
	return out
}

// DecQueueLen reports how many refs are still pending old-generation
// decrement (spec §4.2 "Queue drain").
func (c *Collector) DecQueueLen() int { return len(c.decQueue) }

// Root names one live root location: a byte window of Desc's storage
// discipline (a stack slot, the global-object slot, an iterator's
// currentNode, the interpreter's current-result slot — spec §4.2
// "Roots"). Slot is mutated in place: every pointer word Desc's Visit
// functor finds in it is rewritten to the evacuated survivor's address.
type Root struct {
	Desc *types.Type
	Slot []byte
}

// MinorGC evacuates every young object reachable from roots onto fresh
// old-generation pages, rewriting each root's pointer words in place
// (spec §4.2 "Young evacuation"). Parent accounting follows spec §4.2
// literally: the first time a survivor is reached its metadata records a
// back-pointer to the one referrer that reached it (Root-sourced
// references have no heap address of their own, so a root-reached
// survivor starts directly in count form — see parentScope); the moment
// a second distinct reach happens, on the same survivor it is upgraded to
// a plain count (evacOps.finalize).
func (c *Collector) MinorGC(roots []Root) {
	ops := &evacOps{c: c, visited: make(map[pageIndexKey]*evacState)}
	for _, root := range roots {
		root.Desc.GC.Visit(root.Desc, c.reg, root.Slot, parentScope{ops: ops, parent: heapref.Nil})
	}
	ops.finalize()
	c.bytesAllocated = 0
}

type evacState struct {
	newRef heapref.Ref
	count  uint64
	parent heapref.Ref
}

type evacOps struct {
	c       *Collector
	visited map[pageIndexKey]*evacState
}

// parentScope is the GCOps view handed to a single Visit call: it
// remembers which object is doing the referencing (heapref.Nil for a
// root slot, which has no heap address to record as a back-pointer), so
// EvacuateChild can apply the back-pointer/count discipline above.
type parentScope struct {
	ops    *evacOps
	parent heapref.Ref
}

func (p parentScope) EvacuateChild(child heapref.Ref) heapref.Ref {
	return p.ops.evacuateChild(child, p.parent)
}

func (p parentScope) DecChild(child heapref.Ref) { p.ops.c.Dec(child) }

func (o *evacOps) evacuateChild(child, parent heapref.Ref) heapref.Ref {
	if child.IsNil() {
		return child
	}
	page, ok := child.Page.(*Page)
	if !ok || !page.young {
		return child
	}
	m := page.MetaAt(child.Index)
	if m.IsFwdPtr() {
		pageID, index := m.Ref()
		newPage := lookupOldPage(o.c, pageID)
		nr := heapref.Ref{Page: newPage, Index: index}
		o.recordReferrer(nr, parent)
		return nr
	}

	if o.c.debug.Enabled {
		verifyDebugMarker(page, child.Index)
	}
	desc := o.c.reg.MustLookup(layout.TypeID(child.TypeID()))
	newPage, newIdx := o.c.allocOld(desc)
	copy(newPage.Slot(newIdx), child.Slot())
	page.SetMetaAt(child.Index, m.WithForwarding(newPage.id, newIdx))

	nr := newPage.Ref(newIdx)
	o.visited[pageIndexKey{newPage.id, newIdx}] = &evacState{newRef: nr}
	o.recordReferrer(nr, parent)

	// The object now lives at nr. Give its descriptor a chance to retarget
	// any back-pointer children that were already set to reference it at
	// its pre-evacuation address (spec §4.2 "Parent accounting"); every
	// built-in type's generic functor is a no-op here, since nothing can
	// have recorded a back-pointer to child before this call returns, but
	// the hook fires on every single evacuation so it is a live call site,
	// not a declared-and-ignored one.
	desc.GC.EvacuateChildren(desc, o.c.reg, newPage.Slot(newIdx), child, nr)

	desc.GC.Visit(desc, o.c.reg, newPage.Slot(newIdx), parentScope{ops: o, parent: nr})
	return nr
}

// recordReferrer tallies one more reach of child, remembering the first
// referrer so finalize can decide between back-pointer and count form.
// A child reached again on a later MinorGC, after already being promoted
// and dropped from this cycle's visited set, has nothing left to finalize
// here — its representation was already fixed by a prior cycle.
func (o *evacOps) recordReferrer(child, parent heapref.Ref) {
	cp, ok := child.Page.(*Page)
	if !ok {
		return
	}
	st := o.visited[pageIndexKey{cp.id, child.Index}]
	if st == nil {
		return
	}
	st.count++
	if st.count == 1 {
		st.parent = parent
	}
}

func (o *evacOps) finalize() {
	for _, st := range o.visited {
		page, ok := st.newRef.Page.(*Page)
		if !ok {
			continue
		}
		m := page.MetaAt(st.newRef.Index)
		if st.count == 1 && !st.parent.IsNil() {
			if parentPage, ok := st.parent.Page.(*Page); ok {
				page.SetMetaAt(st.newRef.Index, m.WithBackPointer(parentPage.id, st.parent.Index))
				desc := o.c.reg.MustLookup(layout.TypeID(page.tid))
				desc.GC.EvacuateParent(desc, o.c.reg, st.newRef.Slot(), st.parent)
				continue
			}
		}
		page.SetMetaAt(st.newRef.Index, m.WithCount(st.count))
	}
}

func lookupOldPage(c *Collector, pageID uint32) *Page {
	for _, pages := range c.old {
		for _, p := range pages {
			if p.id == pageID {
				return p
			}
		}
	}
	return nil
}

// Dec enqueues ref for old-generation decrement (spec §4.2 "Old-
// generation decrement": "the target is pushed onto a decrement queue
// via setting Dec-pending").
func (c *Collector) Dec(ref heapref.Ref) {
	if ref.IsNil() {
		return
	}
	page, ok := ref.Page.(*Page)
	if !ok {
		return
	}
	m := page.MetaAt(ref.Index)
	if m.DecPending() {
		return
	}
	page.SetMetaAt(ref.Index, m.WithDecPending(true))
	c.decQueue = append(c.decQueue, ref)
}

// DrainDecQueue pops every pending decrement, decrementing the target's
// count (or releasing it entirely once its count and mark bit are both
// zero), recursively enqueueing its children per spec §4.2 "Queue drain".
func (c *Collector) DrainDecQueue() {
	ops := &decOps{c: c}
	for len(c.decQueue) > 0 {
		ref := c.decQueue[len(c.decQueue)-1]
		c.decQueue = c.decQueue[:len(c.decQueue)-1]
		c.drainOne(ref, ops)
	}
}

type decOps struct{ c *Collector }

func (o *decOps) EvacuateChild(child heapref.Ref) heapref.Ref { return child }
func (o *decOps) DecChild(child heapref.Ref)                  { o.c.Dec(child) }

func (c *Collector) drainOne(ref heapref.Ref, ops *decOps) {
	page, ok := ref.Page.(*Page)
	if !ok {
		return
	}
	if c.debug.Enabled {
		verifyDebugMarker(page, ref.Index)
	}
	m := page.MetaAt(ref.Index)
	m = m.WithDecPending(false)
	if m.IsRCKind() {
		n := m.Count()
		if n > 0 {
			n--
		}
		m = m.WithCount(n)
	} else {
		// Back-pointer kind: the single recorded owner is the one
		// releasing, so its reachable count drops straight to zero (spec
		// §4.2 "revert back-pointer to RC=0").
		m = m.WithCount(0)
	}
	page.SetMetaAt(ref.Index, m)

	if m.Count() == 0 && !m.Mark() {
		desc := c.reg.MustLookup(layout.TypeID(page.tid))
		desc.GC.Dec(desc, c.reg, ref.Slot(), ops)
		page.Release(ref.Index)
	}
}

// fillDebugMarker implements spec §4.2 "Debug policy" (a): fill a freshly
// allocated payload with a marker byte, so an un-initialized read shows up
// as a recognizable pattern instead of stale page contents.
func fillDebugMarker(slot []byte) {
	for i := range slot {
		slot[i] = layout.DebugFillMarkerByte
	}
}

// writeCanaries implements spec §4.2 "Debug policy" (b): place canary
// bytes immediately before and after the object at idx.
func writeCanaries(page *Page, idx uint32) {
	fillCanary(page.CanaryBefore(idx))
	fillCanary(page.CanaryAfter(idx))
}

func fillCanary(b []byte) {
	for i := range b {
		b[i] = layout.DebugCanaryByteValue
	}
}

// verifyDebugMarker implements spec §4.2 "Debug policy" (c): verify the
// canaries on every visit, panicking on corruption since a blown canary
// means an out-of-bounds write already happened — not a recoverable
// program-level condition the spec §6 abort report can describe.
func verifyDebugMarker(page *Page, idx uint32) {
	if !page.canary {
		return
	}
	if !canaryIntact(page.CanaryBefore(idx)) || !canaryIntact(page.CanaryAfter(idx)) {
		panic(fmt.Sprintf("gc: canary corruption detected on page %d index %d", page.id, idx))
	}
}

func canaryIntact(b []byte) bool {
	for _, v := range b {
		if v != layout.DebugCanaryByteValue {
			return false
		}
	}
	return true
}
