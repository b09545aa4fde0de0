package history

import (
	"slices"
	"testing"
)

func cloneInts(s []int) []int { return slices.Clone(s) }

func TestPush_EvictsOldestBeyondLimit(t *testing.T) {
	m := New(DefaultLimit, cloneInts)
	for i := 0; i < 51; i++ {
		m.Push([]int{i})
	}
	if m.Len() != 50 {
		t.Fatalf("Len = %d, want 50", m.Len())
	}
	if m.Index() != 49 {
		t.Errorf("Index = %d, want 49", m.Index())
	}
	// The oldest snapshot (0) was evicted; the first undo lands on the newest.
	got, ok := m.Undo([]int{999})
	if !ok || got[0] != 50 {
		t.Errorf("Undo = %v, %v; want [50], true", got, ok)
	}
	for m.CanUndo() {
		got, _ = m.Undo(nil)
	}
	if got[0] != 1 {
		t.Errorf("oldest retained = %v, want [1]", got)
	}
}

func TestUndoRedo_Inverse(t *testing.T) {
	m := New(DefaultLimit, cloneInts)

	// Each mutation appends one element and is preceded by a Push of the
	// pre-mutation state.
	live := []int{}
	states := [][]int{slices.Clone(live)}
	for i := 1; i <= 4; i++ {
		m.Push(live)
		live = append(slices.Clone(live), i)
		states = append(states, slices.Clone(live))
	}

	for k := 4; k >= 1; k-- {
		var ok bool
		live, ok = m.Undo(live)
		if !ok {
			t.Fatalf("Undo %d failed", k)
		}
		if !slices.Equal(live, states[k-1]) {
			t.Fatalf("after undo of mutation %d: %v, want %v", k, live, states[k-1])
		}
	}
	if m.CanUndo() {
		t.Error("CanUndo after undoing everything")
	}

	for k := 1; k <= 4; k++ {
		var ok bool
		live, ok = m.Redo()
		if !ok {
			t.Fatalf("Redo %d failed", k)
		}
		if !slices.Equal(live, states[k]) {
			t.Fatalf("after redo of mutation %d: %v, want %v", k, live, states[k])
		}
	}
	if m.CanRedo() {
		t.Error("CanRedo at the tip")
	}
}

func TestPush_DiscardsFuture(t *testing.T) {
	m := New(DefaultLimit, cloneInts)
	m.Push([]int{0})
	live, _ := m.Undo([]int{0, 1})
	if !m.CanRedo() {
		t.Fatal("expected redo to be available")
	}

	m.Push(live)
	if m.CanRedo() {
		t.Error("Push should drop the redo future")
	}
	if m.Len() != 1 || m.Index() != 0 {
		t.Errorf("Len=%d Index=%d, want 1,0", m.Len(), m.Index())
	}
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	m := New(DefaultLimit, cloneInts)
	live := []int{1, 2, 3}
	m.Push(live)
	live[0] = 100

	got, _ := m.Undo(live)
	if got[0] != 1 {
		t.Errorf("stored snapshot was aliased: %v", got)
	}
	got[1] = 200
	again, _ := m.Redo()
	if again[0] != 100 || again[1] != 2 {
		t.Errorf("redo state = %v, want [100 2 3]", again)
	}
}

func TestUndo_Empty(t *testing.T) {
	m := New(0, cloneInts)
	if _, ok := m.Undo(nil); ok {
		t.Error("Undo on empty history should fail")
	}
	if _, ok := m.Redo(); ok {
		t.Error("Redo on empty history should fail")
	}
	if m.Limit() != DefaultLimit {
		t.Errorf("Limit = %d, want %d", m.Limit(), DefaultLimit)
	}
}

func TestReset(t *testing.T) {
	m := New(3, cloneInts)
	m.Push([]int{1})
	m.Push([]int{2})
	m.Reset()
	if m.Len() != 0 || m.Index() != -1 || m.CanUndo() {
		t.Errorf("after Reset: Len=%d Index=%d", m.Len(), m.Index())
	}
}
