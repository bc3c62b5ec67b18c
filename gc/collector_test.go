package gc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stephengoldbaum/icppgo/heapref"
	"github.com/stephengoldbaum/icppgo/layout"
	"github.com/stephengoldbaum/icppgo/types"
)

func displayNoop(_ *types.Type, _ *types.Registry, _ []byte, _ types.DisplayMode) string { return "" }

func buildRegistry() (*types.Registry, *types.Type, *types.Type) {
	reg := types.NewRegistry()
	natT := types.NewPrimitiveType(layout.TypeIDNat, "Nat", 8, nil, displayNoop)
	entityT := types.NewRefType(layout.TypeIDFirstUser, "EntityRef", types.CategoryRef)
	reg.Register(natT)
	reg.Register(entityT)

	nodeT := types.NewRecordType(layout.TypeIDFirstUser+1, "ListNode",
		[]types.PropertyID{1, 2},
		[]layout.TypeID{layout.TypeIDNat, layout.TypeIDFirstUser},
		[]uint32{0, layout.WordSize}, reg, false)
	reg.Register(nodeT)
	return reg, natT, nodeT
}

func TestAllocBumpsDistinctSlotsAndCountsBytes(t *testing.T) {
	reg, natT, _ := buildRegistry()
	c := NewCollector(reg, layout.DefaultCollectionThresholdBytes, DebugPolicy{})

	r1 := c.Alloc(natT)
	r2 := c.Alloc(natT)
	require.False(t, r1.Equal(r2))
	require.Equal(t, uint64(16), c.BytesSinceLastCycle())
}

func TestMinorGCEvacuatesAndRewritesRoot(t *testing.T) {
	reg, natT, nodeT := buildRegistry()

	c := NewCollector(reg, layout.DefaultCollectionThresholdBytes, DebugPolicy{})
	child := c.Alloc(natT)
	childPage := child.Page.(*Page)
	require.True(t, childPage.MetaAt(child.Index).Young())

	rootSlot := make([]byte, layout.WordSize)
	heapref.EncodeWord(rootSlot, child)

	entityT := reg.MustLookup(layout.TypeIDFirstUser)
	c.MinorGC([]Root{{Desc: entityT, Slot: rootSlot}})

	newRef := heapref.DecodeWord(rootSlot)
	require.False(t, newRef.IsNil())
	newPage := newRef.Page.(*Page)
	require.False(t, newPage.young)

	oldMeta := childPage.MetaAt(child.Index)
	require.True(t, oldMeta.IsFwdPtr())
	fwdPage, fwdIdx := oldMeta.Ref()
	require.Equal(t, newPage.id, fwdPage)
	require.Equal(t, newRef.Index, fwdIdx)

	survivorMeta := newPage.MetaAt(newRef.Index)
	require.True(t, survivorMeta.IsRCKind())
	require.Equal(t, uint64(1), survivorMeta.Count())
	_ = nodeT
}

func TestMinorGCSharedChildGetsCountTwo(t *testing.T) {
	reg, natT, nodeT := buildRegistry()
	c := NewCollector(reg, layout.DefaultCollectionThresholdBytes, DebugPolicy{})
	child := c.Alloc(natT)

	rootA := make([]byte, layout.WordSize)
	rootB := make([]byte, layout.WordSize)
	heapref.EncodeWord(rootA, child)
	heapref.EncodeWord(rootB, child)

	entityT := reg.MustLookup(layout.TypeIDFirstUser)
	c.MinorGC([]Root{{Desc: entityT, Slot: rootA}, {Desc: entityT, Slot: rootB}})

	refA := heapref.DecodeWord(rootA)
	refB := heapref.DecodeWord(rootB)
	require.True(t, refA.Equal(refB))

	page := refA.Page.(*Page)
	require.Equal(t, uint64(2), page.MetaAt(refA.Index).Count())
	_ = nodeT
}

// TestMinorGCBackPointersSingleOwnerThroughNestedField checks spec §4.2
// "Parent accounting": a child reached through exactly one heap owner
// (nodeT's Ref field, not a root slot) gets a back-pointer to that owner
// instead of a plain count.
func TestMinorGCBackPointersSingleOwnerThroughNestedField(t *testing.T) {
	reg, natT, nodeT := buildRegistry()
	c := NewCollector(reg, layout.DefaultCollectionThresholdBytes, DebugPolicy{})

	child := c.Alloc(natT)
	parent := c.Alloc(nodeT)
	heapref.EncodeWord(parent.Slot()[layout.WordSize:], child)

	rootSlot := make([]byte, layout.WordSize)
	heapref.EncodeWord(rootSlot, parent)

	entityT := reg.MustLookup(layout.TypeIDFirstUser)
	c.MinorGC([]Root{{Desc: entityT, Slot: rootSlot}})

	newParentRef := heapref.DecodeWord(rootSlot)
	newParentPage := newParentRef.Page.(*Page)
	parentMeta := newParentPage.MetaAt(newParentRef.Index)
	require.True(t, parentMeta.IsRCKind())
	require.Equal(t, uint64(1), parentMeta.Count())

	newChildRef := heapref.DecodeWord(newParentPage.Slot(newParentRef.Index)[layout.WordSize:])
	childPage := newChildRef.Page.(*Page)
	childMeta := childPage.MetaAt(newChildRef.Index)

	require.False(t, childMeta.IsRCKind())
	fwdPage, fwdIdx := childMeta.Ref()
	require.Equal(t, newParentPage.id, fwdPage)
	require.Equal(t, newParentRef.Index, fwdIdx)
}

// TestMinorGCLeavesCollectionHandleSlotUntouched guards against treating a
// CollectionTable handle as a heapref pointer (spec §8 scenario S6): a List
// local's handle bytes can coincide with a real page ID, and decoding them
// as a pointer would corrupt the slot or evacuate an unrelated page.
func TestMinorGCLeavesCollectionHandleSlotUntouched(t *testing.T) {
	reg := types.NewRegistry()
	natT := types.NewPrimitiveType(layout.TypeIDNat, "Nat", 8, nil, displayNoop)
	listT := types.NewRefType(layout.TypeIDFirstUser, "List<Nat>", types.CategoryCollection)
	reg.Register(natT)
	reg.Register(listT)

	c := NewCollector(reg, layout.DefaultCollectionThresholdBytes, DebugPolicy{})
	// Force a real page into existence so its PageID collides with the
	// handle value written into the Collection slot below.
	child := c.Alloc(natT)
	collidingPageID := child.Page.(*Page).id

	handleSlot := make([]byte, layout.WordSize)
	binary.LittleEndian.PutUint32(handleSlot[0:4], collidingPageID)
	binary.LittleEndian.PutUint32(handleSlot[4:8], 7)
	want := make([]byte, layout.WordSize)
	copy(want, handleSlot)

	c.MinorGC([]Root{{Desc: listT, Slot: handleSlot}})

	require.Equal(t, want, handleSlot)
}

func TestDebugPolicyFillsMarkerAndCanaries(t *testing.T) {
	reg, natT, _ := buildRegistry()
	c := NewCollector(reg, layout.DefaultCollectionThresholdBytes, DebugPolicy{Enabled: true})

	ref := c.Alloc(natT)
	page := ref.Page.(*Page)

	for _, b := range page.CanaryBefore(ref.Index) {
		require.Equal(t, byte(layout.DebugCanaryByteValue), b)
	}
	for _, b := range page.CanaryAfter(ref.Index) {
		require.Equal(t, byte(layout.DebugCanaryByteValue), b)
	}
	for _, b := range ref.Slot() {
		require.Equal(t, byte(layout.DebugFillMarkerByte), b)
	}
}

func TestDebugPolicyCatchesCanaryCorruptionOnEvacuation(t *testing.T) {
	reg, natT, _ := buildRegistry()
	c := NewCollector(reg, layout.DefaultCollectionThresholdBytes, DebugPolicy{Enabled: true})

	child := c.Alloc(natT)
	page := child.Page.(*Page)
	page.CanaryAfter(child.Index)[0] ^= 0xFF

	rootSlot := make([]byte, layout.WordSize)
	heapref.EncodeWord(rootSlot, child)
	entityT := reg.MustLookup(layout.TypeIDFirstUser)

	require.Panics(t, func() {
		c.MinorGC([]Root{{Desc: entityT, Slot: rootSlot}})
	})
}

func TestDecDrainReleasesSlotAtZeroCount(t *testing.T) {
	reg, natT, _ := buildRegistry()
	c := NewCollector(reg, layout.DefaultCollectionThresholdBytes, DebugPolicy{})

	page := c.newOldPage(natT)
	idx := page.bump
	page.bump++
	page.meta[idx] = FreshAllocated(false).WithCount(1)
	ref := page.Ref(idx)

	c.Dec(ref)
	c.DrainDecQueue()

	require.Contains(t, page.freeList, idx)
}
