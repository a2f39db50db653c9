package engine

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/rewindkit/rewind/pkg/mutation"
)

// TestReplayDeterminismProperty checks that for any committed sequence,
// walking the whole history back with undo and forward again with redo
// lands on exactly the incrementally computed states, for all N >= 0.
func TestReplayDeterminismProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("undo/redo walk reproduces every prefix state", prop.ForAll(
		func(ns []int) bool {
			ctx := context.Background()
			s := &testStore{}
			eng, err := New(mutation.ApplierFunc(s.apply), "reset")
			if err != nil {
				return false
			}
			s.notify = eng.Notify

			// Incremental application, remembering every prefix sum.
			prefix := make([]int, len(ns)+1)
			for i, n := range ns {
				if err := s.commit(ctx, "add", n); err != nil {
					return false
				}
				prefix[i+1] = prefix[i] + n
			}
			if s.count != prefix[len(ns)] {
				return false
			}

			// Undo all the way down; each replay must land on the prefix state.
			for i := len(ns); i > 0; i-- {
				if err := eng.Undo(ctx); err != nil {
					return false
				}
				if s.count != prefix[i-1] || eng.Len() != i-1 {
					return false
				}
			}
			if eng.CanUndo() || eng.RedoLen() != len(ns) {
				return false
			}

			// Redo all the way back up.
			for i := 1; i <= len(ns); i++ {
				if err := eng.Redo(ctx); err != nil {
					return false
				}
				if s.count != prefix[i] || eng.Len() != i {
					return false
				}
			}
			return !eng.CanRedo()
		},
		gen.SliceOf(gen.IntRange(-50, 50)),
	))

	properties.Property("checkpointed undo matches plain replay", prop.ForAll(
		func(ns []int, interval int) bool {
			ctx := context.Background()
			plain := &testStore{}
			plainEng, err := New(mutation.ApplierFunc(plain.apply), "reset")
			if err != nil {
				return false
			}
			plain.notify = plainEng.Notify

			fast := &testStore{}
			cp := &jsonCheckpointer{s: fast}
			fastEng, err := New(mutation.ApplierFunc(fast.apply), "reset", WithCheckpoints(cp, interval))
			if err != nil {
				return false
			}
			fast.notify = fastEng.Notify

			for _, n := range ns {
				if err := plain.commit(ctx, "add", n); err != nil {
					return false
				}
				if err := fast.commit(ctx, "add", n); err != nil {
					return false
				}
			}
			for range ns {
				if err := plainEng.Undo(ctx); err != nil {
					return false
				}
				if err := fastEng.Undo(ctx); err != nil {
					return false
				}
				if plain.count != fast.count || plainEng.Len() != fastEng.Len() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-50, 50)),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
