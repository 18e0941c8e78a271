// Package history holds a session's ordered action log and its JSON
// persistence.
package history

import "github.com/v0xg/stepforge/internal/action"

// Log is the append-only, insertion-ordered record of executed actions.
// It is owned by a single session and is not safe for concurrent writers.
type Log struct {
	entries []action.Action
}

// NewLog creates an empty log
func NewLog() *Log {
	return &Log{}
}

// Append adds a successfully executed action at the end
func (l *Log) Append(a action.Action) {
	l.entries = append(l.entries, a)
}

// List returns a copy of the entries in replay order
func (l *Log) List() []action.Action {
	out := make([]action.Action, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded actions
func (l *Log) Len() int {
	return len(l.entries)
}

// Clear discards every entry
func (l *Log) Clear() {
	l.entries = nil
}
