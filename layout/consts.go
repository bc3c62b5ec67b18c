// Package layout holds the process-wide numeric constants that describe
// object layout, page geometry, and GC metadata encoding. Nothing in here
// mutates at runtime; it mirrors the way a binary file format's package
// (offsets, alignments, signatures) stays pure constants.
package layout

// TypeID is a 32-bit process-unique identifier for a type descriptor.
type TypeID uint32

// Well-known TypeIDs for primitive types. Reserved low IDs; user-defined
// types start at TypeIDFirstUser.
const (
	TypeIDNone TypeID = iota
	TypeIDNothing
	TypeIDBool
	TypeIDNat
	TypeIDInt
	TypeIDBigNat
	TypeIDBigInt
	TypeIDFloat
	TypeIDDecimal
	TypeIDRational
	TypeIDString
	TypeIDByteBuffer
	TypeIDDateTime
	TypeIDUTCDateTime
	TypeIDCalendarDate
	TypeIDRelativeTime
	TypeIDTickTime
	TypeIDLogicalTime
	TypeIDISOTimeStamp
	TypeIDUUID4
	TypeIDUUID7
	TypeIDSHAContentHash
	TypeIDLatLongCoordinate
	TypeIDRegex

	TypeIDFirstUser
)

// TypeIDInternal marks a descriptor as not user-visible (e.g. ephemeral
// list descriptors, which never appear as a union variant).
const TypeIDInternal TypeID = 0xFFFFFFFF

// Reference-mask characters. One character describes one machine word of
// a value's layout; masks are read left-to-right and implicitly
// terminated (the Go string's length IS the terminator — no '\0' byte is
// stored, unlike the C++ original).
const (
	MaskScalar     = '1' // plain data word, not traced
	MaskOwnedPtr   = '2' // owned heap pointer (Ref/Collection slot)
	MaskString     = '3' // 16-byte BSQString slot
	MaskBigNum     = '4' // inline big-number slot (never heap-traced)
	MaskCollection = '5' // collection slot (alias of MaskOwnedPtr, kept distinct for readability)
	MaskUnion      = '6' // inline-union slot: (descriptor*, payload)
)

// UnionUniversalMask is the fixed reference mask for a UnionUniversal
// slot: a descriptor pointer followed by four scalar payload words.
// Carried verbatim from the original interpreter (common.h
// UNION_UNIVERSAL_MASK) since the 4-word payload budget is a wire
// invariant, not an implementation detail.
const UnionUniversalMask = "61111"

// Word size assumed throughout (matches ICPP_WORD_SIZE in the original).
const WordSize = 8

// UnionUniversalPayloadWords is the number of scalar payload words folded
// into a UnionUniversal slot before auto-boxing into a BoxedStruct kicks in.
const UnionUniversalPayloadWords = 4

// UnionUniversalContentSize and UnionUniversalSize are the byte sizes of
// the payload-only and full (descriptor+payload) UnionUniversal slot.
const (
	UnionUniversalContentSize = WordSize * UnionUniversalPayloadWords
	UnionUniversalSize        = WordSize + UnionUniversalContentSize
)

// MaxObjectSize is the largest heap size (in bytes) an ordinary
// (non-collection-node) object may declare. Carried from
// BSQ_ALLOC_MAX_OBJ_SIZE in the original interpreter: struct/tuple/record
// values must fit a single allocation block.
const MaxObjectSize = 496

// MaxBlockSize is the largest single allocation a collection node (list
// tree node, map tree node) may request: up to 16 objects worth of
// payload plus a 16-byte count/color header.
const MaxBlockSize = MaxObjectSize*16 + 16

// PageSize is the allocation unit size for heap pages; page base
// addresses are PageSize-aligned so any interior pointer can recover its
// owning page by masking off the low PageBits bits.
const (
	PageSize = 8192
	PageBits = 13
)

// PageAddrMask clears the low PageBits bits of an address, yielding the
// owning page's base address.
const PageAddrMask = ^uintptr(0) << PageBits

// PageIndexMask isolates the low PageBits bits: the byte offset of an
// address within its page.
const PageIndexMask = uintptr(PageSize - 1)

// MinAllocatedAddress and MaxAllocatedAddress bound the address range the
// allocator is permitted to hand out, so every valid heap pointer can be
// told apart from a small integer or a non-heap stack address by range
// check alone (defense used by the allocator's debug assertions).
const (
	MinAllocatedAddress = 1 << 31
	MaxAllocatedAddress = 1 << 48
)

// DefaultCollectionThresholdBytes is the default bytes-allocated-since-
// last-cycle budget that triggers a young collection. Adjustable at
// runtime between MinCollectionThresholdBytes and MaxCollectionThresholdBytes.
const (
	DefaultCollectionThresholdBytes = 8 * 1024 * 1024
	MinCollectionThresholdBytes     = 2 * 1024 * 1024
	MaxCollectionThresholdBytes     = 16 * 1024 * 1024
)

// MaxStackBytes is the hard ceiling on the evaluation stack (frame
// region). Exceeding it on allocFrame is an internal-invariant abort,
// carried from BSQ_MAX_STACK in the original interpreter.
const MaxStackBytes = 65536

// Debug-policy constants (canary + fill-marker), carried from the
// original's ALLOC_DEBUG_* constants.
const (
	DebugCanarySize      = 16
	DebugFillMarkerByte  = 0x00
	DebugCanaryByteValue = 0xCD
)

// GC metadata word bit layout. High to low:
//
//	bit 63          Allocated
//	bit 62          Dec-pending
//	bit 61          IsForwardingPointer
//	bit 60          RC-kind (1=count, 0=back-pointer)
//	bits 59..2      RC-data (count, back-pointer, forwarding addr, or dec-queue head, shifted left 2)
//	bit 1           Mark
//	bit 0           Young
const (
	MetaAllocatedBit   uint64 = 1 << 63
	MetaDecPendingBit  uint64 = 1 << 62
	MetaIsFwdPtrBit    uint64 = 1 << 61
	MetaRCKindBit      uint64 = 1 << 60
	MetaRCDataMask     uint64 = 0x0FFFFFFFFFFFFFFC
	MetaRCShift        uint64 = 2
	MetaMarkBit        uint64 = 1 << 1
	MetaYoungBit       uint64 = 1 << 0
)

// RC-data sentinel values for the count discipline, pre-shifted into the
// RC-data field. A freshly-shared object starts at count 2 (the back-
// pointer owner plus the new referrer); RC-data 0 means unreachable by
// refcount (mark bit may still keep it alive during a cycle).
const (
	RCZero uint64 = 0
	RCOne  uint64 = 1 << MetaRCShift
	RCTwo  uint64 = 2 << MetaRCShift
)
