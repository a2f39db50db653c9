// Package mutation defines the core contracts of the mutation log engine.
// It provides the record type that names a single state transition and the
// applier contract through which the engine invokes transitions against a
// collaborator-owned state store.
//
// The engine never defines transition semantics itself. The collaborator
// owns the state, applies transitions to it, and exposes an Applier so the
// engine can re-invoke recorded transitions during replay. Given the same
// state and record, an Applier must always produce the same resulting state
// and must not perform side effects beyond that state.
//
// Example usage:
//
//	reg := mutation.NewRegistry()
//	_ = reg.Register("increment", func(ctx context.Context, payload any) error {
//		// mutate the collaborator-owned state
//		return nil
//	})
//
//	eng, _ := engine.New(reg, "reset")
package mutation

import "context"

// Record is a single named, payload-carrying state transition.
//
// Records must be:
//   - Immutable once recorded
//   - Serializable to JSON for capture export
//   - Totally ordered by commit sequence (append order is the only ordering)
//
// The Payload is opaque to the engine; it is handed back verbatim to the
// Applier on replay and redo. Callers must not mutate a payload after the
// record has been committed.
type Record struct {
	// ID is a stable identifier for this record, assigned by the engine
	// (a UUID) when the committer leaves it empty.
	ID string `json:"id"`

	// Kind names the state transition type. The engine attaches no meaning
	// to it beyond routing; the collaborator's handlers define semantics.
	Kind string `json:"kind"`

	// Payload carries the transition's data as a JSON-serializable value.
	Payload any `json:"payload"`
}

// Applier invokes a transition by kind and payload against the
// collaborator-owned state. It is the engine's only way to change state and
// is used both for forward redo application and for silent replay passes.
//
// Implementations must be:
//   - Deterministic: same state plus same record gives the same next state
//   - Free of side effects outside the state they own (a replayed network
//     call would fire again on every undo)
//   - Synchronous: Apply runs to completion before returning
type Applier interface {
	Apply(ctx context.Context, rec Record) error
}

// ApplierFunc adapts a plain function to the Applier interface.
type ApplierFunc func(ctx context.Context, rec Record) error

// Apply implements Applier.
func (f ApplierFunc) Apply(ctx context.Context, rec Record) error { return f(ctx, rec) }
