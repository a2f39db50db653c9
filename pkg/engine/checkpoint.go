package engine

import (
	"context"

	"github.com/rewindkit/rewind/pkg/errmodel"
	"github.com/rewindkit/rewind/pkg/mutation"
)

// Checkpointer captures and restores the collaborator's state as opaque
// bytes. Restore must go through the collaborator's own machinery (it is
// the one party allowed to swap state wholesale), which keeps the
// replay-based consistency story intact while bounding undo replay cost.
type Checkpointer interface {
	Capture(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, data []byte) error
}

// checkpoint pins a captured state to a log length. Replaying the first
// upto records from a reset produces exactly this state.
type checkpoint struct {
	upto  int
	state []byte
}

// WithCheckpoints enables state checkpoints every interval live commits.
// Undo then restores the nearest checkpoint at or below the target length
// and replays only the suffix, O(interval) instead of O(n).
// If interval <= 0 or cp is nil, checkpointing is disabled.
func WithCheckpoints(cp Checkpointer, interval int) Option {
	return func(e *Engine) {
		if cp != nil && interval > 0 {
			e.checkpointer = cp
			e.checkpointEvery = interval
		}
	}
}

// maybeCheckpoint captures the collaborator's state when the log length
// hits the configured interval. Checkpoints stay sorted by upto; a redo
// that regrows the log to an already-checkpointed length is skipped.
func (e *Engine) maybeCheckpoint(ctx context.Context) error {
	if e.checkpointer == nil || e.checkpointEvery <= 0 {
		return nil
	}
	n := e.log.Len()
	if n == 0 || n%e.checkpointEvery != 0 {
		return nil
	}
	if len(e.checkpoints) > 0 && e.checkpoints[len(e.checkpoints)-1].upto >= n {
		return nil
	}
	data, err := e.checkpointer.Capture(ctx)
	if err != nil {
		return errmodel.System("checkpoint_capture", "state capture failed", map[string]any{"upto": n}, err)
	}
	e.checkpoints = append(e.checkpoints, checkpoint{upto: n, state: data})
	return nil
}

// pruneCheckpoints drops checkpoints past maxLen. Called when a live commit
// forks history: anything captured beyond the current length belongs to the
// abandoned timeline. Checkpoints at or below maxLen cover an unchanged
// prefix and stay valid.
func (e *Engine) pruneCheckpoints(maxLen int) {
	for len(e.checkpoints) > 0 && e.checkpoints[len(e.checkpoints)-1].upto > maxLen {
		e.checkpoints = e.checkpoints[:len(e.checkpoints)-1]
	}
}

// restoreBase brings the collaborator to the replay starting point: the
// newest usable checkpoint when one exists, a full reset otherwise.
// It returns the log index replay should resume from.
func (e *Engine) restoreBase(ctx context.Context) (int, error) {
	if e.checkpointer != nil {
		for i := len(e.checkpoints) - 1; i >= 0; i-- {
			cp := e.checkpoints[i]
			if cp.upto > e.log.Len() {
				continue
			}
			if err := e.checkpointer.Restore(ctx, cp.state); err != nil {
				return 0, errmodel.System("checkpoint_restore", "state restore failed", map[string]any{"upto": cp.upto}, err)
			}
			return cp.upto, nil
		}
	}
	if err := e.applier.Apply(ctx, mutation.Record{Kind: e.resetKind}); err != nil {
		return 0, errmodel.New(errmodel.CategoryReplay, "reset_failed", "reset transition failed", map[string]any{"kind": e.resetKind}, err)
	}
	return 0, nil
}
