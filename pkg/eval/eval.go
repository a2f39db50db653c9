// Package eval provides offline tooling around exported mutation histories:
// replaying a capture into a fresh collaborator and checking that an applier
// is deterministic enough to be replayed at all.
package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rewindkit/rewind/pkg/engine"
	"github.com/rewindkit/rewind/pkg/mutation"
)

// Capture is an exported mutation history.
type Capture struct {
	Records []mutation.Record `json:"records"`
}

// Snapshot exports the engine's current history as a Capture.
func Snapshot(e *engine.Engine) Capture {
	return Capture{Records: e.History()}
}

// Marshal encodes a capture as JSON.
func (c Capture) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal decodes a capture from JSON.
func Unmarshal(data []byte) (Capture, error) {
	var c Capture
	if err := json.Unmarshal(data, &c); err != nil {
		return Capture{}, err
	}
	return c, nil
}

// Replay resets the collaborator and applies every captured record in
// order. Reset-kind records in the capture are skipped.
func Replay(ctx context.Context, applier mutation.Applier, resetKind string, c Capture) error {
	if err := applier.Apply(ctx, mutation.Record{Kind: resetKind}); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	for i, rec := range c.Records {
		if rec.Kind == resetKind {
			continue
		}
		if err := applier.Apply(ctx, rec); err != nil {
			return fmt.Errorf("apply record %d (%s): %w", i, rec.Kind, err)
		}
	}
	return nil
}

// Verify replays the capture twice and compares the checkpointed state
// bytes. A mismatch means the applier is not referentially deterministic —
// undo replay over it would corrupt state. Payload JSON round-tripping
// (as happens to a persisted capture) is applied to the second pass so
// handlers that depend on in-memory payload identity are caught too.
func Verify(ctx context.Context, applier mutation.Applier, resetKind string, c Capture, cp engine.Checkpointer) error {
	if cp == nil {
		return fmt.Errorf("checkpointer is nil")
	}
	if err := Replay(ctx, applier, resetKind, c); err != nil {
		return err
	}
	first, err := cp.Capture(ctx)
	if err != nil {
		return fmt.Errorf("capture first pass: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	roundTripped, err := Unmarshal(data)
	if err != nil {
		return err
	}
	if err := Replay(ctx, applier, resetKind, roundTripped); err != nil {
		return err
	}
	second, err := cp.Capture(ctx)
	if err != nil {
		return fmt.Errorf("capture second pass: %w", err)
	}

	if !bytes.Equal(first, second) {
		return fmt.Errorf("replay diverged: first pass %s, second pass %s", first, second)
	}
	return nil
}
