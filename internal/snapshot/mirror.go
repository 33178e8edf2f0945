// Package snapshot keeps the client's local view of the remote collection:
// a mirror that is wholly replaced on every delivered snapshot, the per-item
// attachment URL resolver, and a small on-disk cache of the last snapshot.
package snapshot

import (
	"sync"

	"todosync/internal/model"
)

// Reduce is the state transition applied when a snapshot arrives: the new
// snapshot wholly supersedes the old state. Kept as an explicit function so
// the replace semantics are testable without any UI plumbing.
func Reduce(_ model.Snapshot, next model.Snapshot) model.Snapshot {
	return next
}

// Mirror holds the most recently received snapshot. Replace is the only
// mutator; there is no in-place patching of individual items. One writer (the
// subscription handler), any number of readers (the render path).
type Mirror struct {
	mu    sync.RWMutex
	items model.Snapshot
}

func NewMirror() *Mirror { return &Mirror{} }

// Replace overwrites the mirror with the given snapshot.
func (m *Mirror) Replace(s model.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = Reduce(m.items, s)
}

// Items returns a copy of the current snapshot, in delivery order.
func (m *Mirror) Items() model.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(model.Snapshot, len(m.items))
	copy(out, m.items)
	return out
}

// Find returns the mirrored item with the given id, if present.
func (m *Mirror) Find(id string) (model.Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items.Find(id)
}

// Len returns the number of mirrored items.
func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
