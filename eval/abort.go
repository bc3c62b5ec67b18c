package eval

// AbortKind distinguishes a user-facing abort (from the program's own
// Abort/Assert opcodes or a checked-arithmetic contract violation) from
// an internal-invariant violation (DeadFlow, stack overflow, an unknown
// opcode tag) that indicates a bug in the program blob or loader rather
// than in the running program's own logic.
type AbortKind int

const (
	AbortUser AbortKind = iota
	AbortInternal
)

// AbortSignal is what an aborting opcode raises. Spec §5 describes the
// original's mechanism as "long-jumps unwind to a pre-recorded entry
// buffer held at interpreter startup"; Go's panic/recover realizes the
// same non-local-exit-to-a-fixed-frame behavior without an actual
// setjmp/longjmp, recovered once at Machine.Invoke's entry point rather
// than at every call site.
type AbortSignal struct {
	Kind    AbortKind
	Message string
	Line    int
}

func (a *AbortSignal) Error() string { return a.Message }

// raiseUser aborts with msg and the current frame's debug line (spec
// §4.4 "Abort(msg) halts execution, delivering msg and the source line").
func raiseUser(m *Machine, msg string) {
	line := 0
	if f := m.Current(); f != nil {
		line = f.DebugLine
	}
	panic(&AbortSignal{Kind: AbortUser, Message: msg, Line: line})
}

// raiseInternal aborts with an internal-invariant message (spec §4.4
// "DeadFlow aborts with an internal-error").
func raiseInternal(m *Machine, msg string) {
	line := 0
	if f := m.Current(); f != nil {
		line = f.DebugLine
	}
	panic(&AbortSignal{Kind: AbortInternal, Message: msg, Line: line})
}

// Recover turns a panicking *AbortSignal into a returned error, letting
// every other panic (a genuine Go bug, not a modeled abort) propagate.
// Call via `defer func() { err = Recover(recover()) }()` at exactly one
// place per top-level invocation: Machine.Invoke.
func Recover(r any) error {
	if r == nil {
		return nil
	}
	if sig, ok := r.(*AbortSignal); ok {
		return sig
	}
	panic(r)
}
