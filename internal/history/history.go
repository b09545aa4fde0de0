// Package history implements bounded linear undo/redo over full-state snapshots.
package history

// DefaultLimit is the number of snapshots kept before the oldest is evicted.
const DefaultLimit = 50

// Manager keeps snapshots of type T in a stack addressed by an index.
//
// entries[index] is the state the next Undo restores. The live state is not
// stored until the first Undo after a Push, at which point it is appended so a
// later Redo can return to it. Push discards everything past index.
type Manager[T any] struct {
	entries []T
	index   int
	limit   int
	clone   func(T) T
}

// New creates a manager. clone must return a deep copy; it is applied on the way
// in and on the way out so callers can never alias a stored snapshot. The limit
// is at least 2 so an undo can always keep the state it leaves.
func New[T any](limit int, clone func(T) T) *Manager[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = max(limit, 2)
	return &Manager[T]{
		index: -1,
		limit: limit,
		clone: clone,
	}
}

// Push records s as the state before a mutation and drops any redo future.
func (m *Manager[T]) Push(s T) {
	m.entries = append(m.entries[:m.index+1], m.clone(s))
	m.index = len(m.entries) - 1
	m.evict()
}

// Undo returns the state to restore given the current live state, or false when
// there is nothing to undo.
func (m *Manager[T]) Undo(live T) (T, bool) {
	var zero T
	if m.index < 0 {
		return zero, false
	}
	if m.index+1 == len(m.entries) {
		m.entries = append(m.entries, m.clone(live))
		m.evict()
	}
	s := m.clone(m.entries[m.index])
	m.index--
	return s, true
}

// Redo returns the state undone most recently, or false when there is none.
func (m *Manager[T]) Redo() (T, bool) {
	var zero T
	if !m.CanRedo() {
		return zero, false
	}
	m.index++
	return m.clone(m.entries[m.index+1]), true
}

// CanUndo reports whether Undo would restore anything.
func (m *Manager[T]) CanUndo() bool {
	return m.index >= 0
}

// CanRedo reports whether Redo would restore anything.
func (m *Manager[T]) CanRedo() bool {
	return m.index+2 < len(m.entries)
}

// Index returns the position of the most recent snapshot, -1 when empty.
func (m *Manager[T]) Index() int {
	return m.index
}

// Len returns the number of stored snapshots.
func (m *Manager[T]) Len() int {
	return len(m.entries)
}

// Limit returns the capacity.
func (m *Manager[T]) Limit() int {
	return m.limit
}

// Reset drops every snapshot.
func (m *Manager[T]) Reset() {
	clear(m.entries)
	m.entries = m.entries[:0]
	m.index = -1
}

func (m *Manager[T]) evict() {
	if over := len(m.entries) - m.limit; over > 0 {
		clear(m.entries[:over])
		m.entries = append(m.entries[:0], m.entries[over:]...)
		m.index -= over
	}
}
