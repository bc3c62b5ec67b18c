package types

import "github.com/stephengoldbaum/icppgo/heapref"

// GCOps is the callback surface the collector hands to a descriptor's
// functors, so type-layout code never needs to import the gc package
// (which in turn depends on types for descriptors). This is the
// functor-table side of Design Notes §9 "Polymorphism": the *shape* of
// the dispatch (visit/dec/evacuate-parent/evacuate-children) lives on
// the descriptor, the *mechanism* (how to evacuate, how to decrement)
// is supplied by whoever is running the collection.
type GCOps interface {
	// EvacuateChild resolves forwarding (or evacuates on first visit) and
	// returns the child's live post-GC address.
	EvacuateChild(child heapref.Ref) heapref.Ref
	// DecChild enqueues the child for old-generation decrement.
	DecChild(child heapref.Ref)
}

// VisitFunc walks slot (of the descriptor's heap or inline layout,
// depending on call site) and asks ops to evacuate/update every owned
// pointer it finds. reg resolves nested field/variant types, since a
// functor dispatches purely off the shape its own descriptor declares.
type VisitFunc func(t *Type, reg *Registry, slot []byte, ops GCOps)

// DecFunc walks slot and asks ops to decrement every owned pointer.
type DecFunc func(t *Type, reg *Registry, slot []byte, ops GCOps)

// EvacuateParentFunc records newParent as slot's (possibly new) unique
// owner during evacuation's back-pointer bookkeeping.
type EvacuateParentFunc func(t *Type, reg *Registry, slot []byte, newParent heapref.Ref)

// EvacuateChildrenFunc re-points every child reachable from slot from
// oldParent to newParent (used when slot itself moves and its back-
// pointer children must be retargeted).
type EvacuateChildrenFunc func(t *Type, reg *Registry, slot []byte, oldParent, newParent heapref.Ref)

// GCFunctors is the four-entry-point table a descriptor exposes (spec
// §4.2 "Functor set").
type GCFunctors struct {
	Visit            VisitFunc
	Dec              DecFunc
	EvacuateParent   EvacuateParentFunc
	EvacuateChildren EvacuateChildrenFunc
}

// KeyCmpFunc is a three-way comparator for key-comparable types. A nil
// KeyCmpFunc on a descriptor means "not key-comparable" (spec §4.3:
// Float, Decimal, Rational, and non-comparable aggregates have keyCmp=⊥).
type KeyCmpFunc func(t *Type, reg *Registry, a, b []byte) int

// DisplayMode mirrors the original's DisplayMode (Standard vs debugger
// CmdDebug rendering).
type DisplayMode uint8

const (
	DisplayStandard DisplayMode = iota
	DisplayCmdDebug
)

// DisplayFunc renders slot as a human-readable string.
type DisplayFunc func(t *Type, reg *Registry, slot []byte, mode DisplayMode) string
