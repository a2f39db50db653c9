package mutation

import (
	"context"
	"fmt"
	"sync"

	"github.com/rewindkit/rewind/pkg/errmodel"
)

// Handler applies one transition kind's payload to the collaborator's state.
type Handler func(ctx context.Context, payload any) error

// Registry maps transition kinds to handlers and is itself an Applier.
// It is how a collaborator assembles its transition table before handing it
// to the engine.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register adds a handler for a kind. Registering the same kind twice is an
// error; transition tables are meant to be assembled once at startup.
func (r *Registry) Register(kind string, h Handler) error {
	if kind == "" {
		return fmt.Errorf("kind is empty")
	}
	if h == nil {
		return fmt.Errorf("handler for %q is nil", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[kind]; exists {
		return fmt.Errorf("kind %q already registered", kind)
	}
	r.handlers[kind] = h
	return nil
}

// Resolve returns the handler for a kind.
func (r *Registry) Resolve(kind string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	return h, ok
}

// Apply implements Applier by dispatching to the registered handler.
// An unknown kind is a validation error: it means the log and the
// collaborator's transition table have drifted apart.
func (r *Registry) Apply(ctx context.Context, rec Record) error {
	h, ok := r.Resolve(rec.Kind)
	if !ok {
		return errmodel.Validation("unknown_kind", "no handler registered for kind", map[string]any{"kind": rec.Kind})
	}
	return h(ctx, rec.Payload)
}
