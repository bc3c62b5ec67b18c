package types

import (
	"fmt"

	"github.com/stephengoldbaum/icppgo/layout"
)

// Registry is the process-wide, immutable table of type descriptors
// keyed by TypeID (spec §2 component 2 "Type Descriptor Registry").
// Re-architected per Design Notes §9 ("Global mutable state") as an
// explicitly-constructed, explicitly-passed context rather than package
// globals: one Registry per loaded Program, threaded through the
// evaluator instead of being reached for implicitly.
type Registry struct {
	byID map[layout.TypeID]*Type
}

// NewRegistry builds an empty registry. Descriptors are added with
// Register during program load and never removed or mutated afterward.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[layout.TypeID]*Type)}
}

// Register installs t, keyed by t.TID. Re-registering the same TypeID is
// a programmer error (program loader bug) and panics, since the table is
// meant to be populated exactly once per type during program load.
func (r *Registry) Register(t *Type) {
	if _, exists := r.byID[t.TID]; exists {
		panic(fmt.Sprintf("types: duplicate registration for TypeID %d (%s)", t.TID, t.Name))
	}
	r.byID[t.TID] = t
}

// Lookup returns the descriptor for tid, or nil if unknown.
func (r *Registry) Lookup(tid layout.TypeID) *Type {
	return r.byID[tid]
}

// MustLookup is Lookup but panics on an unknown TypeID: an internal
// invariant violation (spec §7 "Internal invariant") rather than a
// recoverable error, since every TypeID the evaluator ever sees was
// validated against this table at program load.
func (r *Registry) MustLookup(tid layout.TypeID) *Type {
	t := r.byID[tid]
	if t == nil {
		panic(fmt.Sprintf("types: unknown TypeID %d", tid))
	}
	return t
}

// All returns every registered descriptor, for iteration (e.g. by the GC
// when walking every page-owning descriptor, or by a CLI disasm command).
func (r *Registry) All() []*Type {
	out := make([]*Type, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	return out
}

// Count returns the number of registered descriptors.
func (r *Registry) Count() int { return len(r.byID) }
