package journal

import (
	"testing"

	"github.com/rewindkit/rewind/pkg/mutation"
)

func TestAppendEntriesLen(t *testing.T) {
	l := New()
	if l.Len() != 0 {
		t.Fatalf("new log len=%d want 0", l.Len())
	}
	l.Append(mutation.Record{ID: "a", Kind: "increment", Payload: 1})
	l.Append(mutation.Record{ID: "b", Kind: "increment", Payload: 2})
	if l.Len() != 2 {
		t.Fatalf("len=%d want 2", l.Len())
	}
	got := l.Entries()
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("entries out of order: %#v", got)
	}
}

func TestEntries_SnapshotNotBackingSlice(t *testing.T) {
	l := New()
	l.Append(mutation.Record{ID: "a", Kind: "increment", Payload: 1})
	snap := l.Entries()
	snap[0].Kind = "tampered"
	if l.Entries()[0].Kind != "increment" {
		t.Fatal("mutating the snapshot changed the log")
	}
}

func TestRemoveLast(t *testing.T) {
	l := New()
	if _, ok := l.RemoveLast(); ok {
		t.Fatal("RemoveLast on empty log reported ok")
	}
	l.Append(mutation.Record{ID: "a", Kind: "increment"})
	l.Append(mutation.Record{ID: "b", Kind: "decrement"})
	rec, ok := l.RemoveLast()
	if !ok || rec.ID != "b" {
		t.Fatalf("RemoveLast = %#v, %v", rec, ok)
	}
	if l.Len() != 1 {
		t.Fatalf("len=%d want 1", l.Len())
	}
}

func TestClear(t *testing.T) {
	l := New()
	l.Append(mutation.Record{ID: "a", Kind: "increment"})
	l.Clear()
	if l.Len() != 0 {
		t.Fatalf("len after clear=%d want 0", l.Len())
	}
	// Clear keeps the log usable for rebuild passes.
	l.Append(mutation.Record{ID: "b", Kind: "increment"})
	if l.Len() != 1 || l.At(0).ID != "b" {
		t.Fatal("append after clear broken")
	}
}
