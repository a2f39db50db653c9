// Package engine sequences commits, undos, and redos over an append-only
// mutation log. State lives entirely in the collaborating store; the engine
// rebuilds it on undo by resetting the collaborator and replaying the
// remaining log through the injected Applier, so the collaborator's own
// change-notification machinery fires exactly as it does for organic
// commits.
package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rewindkit/rewind/pkg/errmodel"
	"github.com/rewindkit/rewind/pkg/journal"
	"github.com/rewindkit/rewind/pkg/mutation"
)

// mode tags the engine's execution state. idle is the only steady state;
// the transient modes suppress re-logging while the engine itself drives
// the applier, which re-enters Notify through the collaborator's
// subscription.
type mode int

const (
	modeIdle mode = iota
	modeReplaying
	modeRedoing
)

// Engine is the undo/redo controller over a single mutation log.
//
// The engine is built for a single-writer execution context: Notify, Undo,
// and Redo run to completion synchronously and must all be called from the
// same goroutine (or be serialized externally as one critical section).
// There is deliberately no internal lock; the applier re-enters Notify
// during replay and a lock here would self-deadlock.
type Engine struct {
	applier   mutation.Applier
	resetKind string
	log       *journal.Log
	redo      []mutation.Record
	mode      mode

	schemaSrc map[string][]byte
	schemas   map[string]*mutation.Schema

	checkpointer    Checkpointer
	checkpointEvery int
	checkpoints     []checkpoint
}

// Option configures the Engine at construction time.
type Option func(*Engine)

// WithSchema registers a JSON schema for payloads of the given kind,
// compiled once at New (invalid schemas fail New). The collaborator checks
// payloads against it via Validate before applying a transition.
func WithSchema(kind string, schema []byte) Option {
	return func(e *Engine) {
		if e.schemaSrc == nil {
			e.schemaSrc = map[string][]byte{}
		}
		e.schemaSrc[kind] = schema
	}
}

// New constructs an Engine around the collaborator's applier and its
// designated reset kind. The reset transition must be idempotent and restore
// the collaborator to its documented initial state; it is infrastructure and
// is never recorded as history.
func New(applier mutation.Applier, resetKind string, opts ...Option) (*Engine, error) {
	if applier == nil {
		return nil, errors.New("applier is nil")
	}
	if resetKind == "" {
		return nil, errors.New("resetKind is empty")
	}
	e := &Engine{
		applier:   applier,
		resetKind: resetKind,
		log:       journal.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.schemaSrc) > 0 {
		e.schemas = make(map[string]*mutation.Schema, len(e.schemaSrc))
		for kind, src := range e.schemaSrc {
			sch, err := mutation.CompileSchema(src)
			if err != nil {
				return nil, errmodel.Validation("invalid_schema", "schema does not compile", map[string]any{"kind": kind, "error": err.Error()})
			}
			e.schemas[kind] = sch
		}
		e.schemaSrc = nil
	}
	return e, nil
}

// Validate checks a payload against the schema registered for its kind, if
// any. The collaborator must call it before applying a transition to state:
// rejecting a payload that is already applied would leave state ahead of
// the log and corrupt every later replay.
func (e *Engine) Validate(kind string, payload any) error {
	sch, ok := e.schemas[kind]
	if !ok {
		return nil
	}
	if err := sch.Validate(payload); err != nil {
		return errmodel.Validation("invalid_payload", "payload failed schema validation", map[string]any{"kind": kind, "error": err.Error()})
	}
	return nil
}

// Notify is the commit signal: the collaborator calls it immediately after
// applying a transition to its state, having already passed the payload
// through Validate. Live commits are appended to the log and invalidate any
// pending redo history. Notifications that arrive while the engine itself is
// replaying or redoing are silently dropped, as are reset transitions.
func (e *Engine) Notify(ctx context.Context, rec mutation.Record) error {
	tr := otel.Tracer("engine")
	_, span := tr.Start(ctx, "Engine.Notify", trace.WithAttributes(
		attribute.String("mutation.kind", rec.Kind),
		attribute.Int("log.len", e.log.Len()),
	))
	defer span.End()

	if e.mode != modeIdle {
		return nil
	}
	if rec.Kind == e.resetKind {
		return nil
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	// A genuinely new commit forks history: pending redo entries and any
	// checkpoint taken past this point belong to the abandoned timeline.
	if len(e.redo) > 0 {
		e.redo = e.redo[:0]
	}
	e.pruneCheckpoints(e.log.Len())

	e.log.Append(rec)
	if err := e.maybeCheckpoint(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Undo removes the newest record from the log, parks it for redo, and
// rebuilds the collaborator's state by replaying the remaining records from
// a reset (or from the nearest checkpoint). Undo on an empty log is a no-op.
//
// If the applier fails partway through the replay the error propagates and
// the collaborator's state is undefined; there is no transactional rollback.
func (e *Engine) Undo(ctx context.Context) error {
	tr := otel.Tracer("engine")
	ctx, span := tr.Start(ctx, "Engine.Undo", trace.WithAttributes(
		attribute.Int("log.len", e.log.Len()),
	))
	defer span.End()

	rec, ok := e.log.RemoveLast()
	if !ok {
		return nil
	}
	e.redo = append(e.redo, rec)

	e.mode = modeReplaying
	defer func() { e.mode = modeIdle }()

	start, err := e.restoreBase(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	for i := start; i < e.log.Len(); i++ {
		r := e.log.At(i)
		if err := e.applier.Apply(ctx, r); err != nil {
			rerr := errmodel.Replay(r.Kind, i, err)
			span.RecordError(rerr)
			return rerr
		}
	}
	return nil
}

// Redo re-applies the most recently undone record as a single forward
// commit and appends it back to the log. No replay pass is needed: redo
// moves strictly forward from current state. Redo with no undone records is
// a no-op. The record is only popped once its application succeeded.
func (e *Engine) Redo(ctx context.Context) error {
	tr := otel.Tracer("engine")
	ctx, span := tr.Start(ctx, "Engine.Redo", trace.WithAttributes(
		attribute.Int("redo.len", len(e.redo)),
	))
	defer span.End()

	if len(e.redo) == 0 {
		return nil
	}
	rec := e.redo[len(e.redo)-1]

	e.mode = modeRedoing
	defer func() { e.mode = modeIdle }()

	if err := e.applier.Apply(ctx, rec); err != nil {
		rerr := errmodel.Replay(rec.Kind, e.log.Len(), err)
		span.RecordError(rerr)
		return rerr
	}
	e.redo = e.redo[:len(e.redo)-1]
	e.log.Append(rec)
	if err := e.maybeCheckpoint(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// CanUndo reports whether the log holds at least one record.
func (e *Engine) CanUndo() bool { return e.log.Len() > 0 }

// CanRedo reports whether any undone record is pending redo.
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// Len returns the number of recorded transitions.
func (e *Engine) Len() int { return e.log.Len() }

// RedoLen returns the number of undone records pending redo.
func (e *Engine) RedoLen() int { return len(e.redo) }

// History returns a snapshot copy of the log in commit order.
func (e *Engine) History() []mutation.Record { return e.log.Entries() }

// Reset invokes the collaborator's reset transition and discards the log,
// the redo stack, and all checkpoints.
func (e *Engine) Reset(ctx context.Context) error {
	e.mode = modeReplaying
	defer func() { e.mode = modeIdle }()

	if err := e.applier.Apply(ctx, mutation.Record{Kind: e.resetKind}); err != nil {
		return errmodel.New(errmodel.CategoryReplay, "reset_failed", "reset transition failed", map[string]any{"kind": e.resetKind}, err)
	}
	e.log.Clear()
	e.redo = e.redo[:0]
	e.checkpoints = nil
	return nil
}

// Load rebuilds the engine and the collaborator's state from an exported
// record sequence: reset, then replay-and-append every record in order.
// Reset-kind records in the input are skipped; they are never history.
func (e *Engine) Load(ctx context.Context, records []mutation.Record) error {
	tr := otel.Tracer("engine")
	ctx, span := tr.Start(ctx, "Engine.Load", trace.WithAttributes(
		attribute.Int("records.len", len(records)),
	))
	defer span.End()

	e.mode = modeReplaying
	defer func() { e.mode = modeIdle }()

	if err := e.applier.Apply(ctx, mutation.Record{Kind: e.resetKind}); err != nil {
		return errmodel.New(errmodel.CategoryReplay, "reset_failed", "reset transition failed", map[string]any{"kind": e.resetKind}, err)
	}
	e.log.Clear()
	e.redo = e.redo[:0]
	e.checkpoints = nil

	for i, rec := range records {
		if rec.Kind == e.resetKind {
			continue
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if err := e.Validate(rec.Kind, rec.Payload); err != nil {
			span.RecordError(err)
			return err
		}
		if err := e.applier.Apply(ctx, rec); err != nil {
			rerr := errmodel.Replay(rec.Kind, i, err)
			span.RecordError(rerr)
			return rerr
		}
		e.log.Append(rec)
		if err := e.maybeCheckpoint(ctx); err != nil {
			span.RecordError(err)
			return err
		}
	}
	return nil
}
