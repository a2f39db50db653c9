// Package journal holds the append-only mutation log. Replaying the full
// log from the collaborator's initial state reconstructs its current state;
// the log is the source of truth and the state a derived value.
//
// A Log is owned exclusively by one engine and shares its single-writer
// discipline: all access must come from the same execution context that
// commits transitions. It carries no lock of its own.
package journal

import "github.com/rewindkit/rewind/pkg/mutation"

// Log is an ordered, append-only sequence of applied mutation records.
// Insertion order is the only ordering relation.
type Log struct {
	entries []mutation.Record
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Append records one transition. It never fails and the log is unbounded.
func (l *Log) Append(rec mutation.Record) {
	l.entries = append(l.entries, rec)
}

// Entries returns a snapshot copy of the log in commit order. The live
// backing slice is never exposed; recorded entries stay immutable.
func (l *Log) Entries() []mutation.Record {
	out := make([]mutation.Record, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded transitions.
func (l *Log) Len() int {
	return len(l.entries)
}

// Clear empties the log. Used by the engine before a rebuild pass.
func (l *Log) Clear() {
	l.entries = l.entries[:0]
}

// RemoveLast pops the newest record. It reports false on an empty log.
func (l *Log) RemoveLast() (mutation.Record, bool) {
	if len(l.entries) == 0 {
		return mutation.Record{}, false
	}
	rec := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return rec, true
}

// At returns the record at index i in commit order.
func (l *Log) At(i int) mutation.Record {
	return l.entries[i]
}
