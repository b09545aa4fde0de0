package engine

// selectOnly replaces the selection with id.
func (e *Engine) selectOnly(id string) {
	for sel := range e.selected {
		if sel != id {
			delete(e.selected, sel)
		}
	}
	e.addSelected(id)
	e.invalidate()
}

// addSelected adds id to the selection. Newly selected objects are brought to
// the front so their handles are never occluded.
func (e *Engine) addSelected(id string) {
	if e.selected[id] {
		return
	}
	obj := e.find(id)
	if obj == nil {
		return
	}
	e.selected[id] = true
	obj.ZIndex = e.maxZ() + 1
	e.changed(Change{Objects: true})
}

// toggleSelected flips id's membership in the selection.
func (e *Engine) toggleSelected(id string) {
	if e.selected[id] {
		delete(e.selected, id)
		e.invalidate()
		return
	}
	e.addSelected(id)
}

func (e *Engine) clearSelection() {
	if len(e.selected) > 0 {
		clear(e.selected)
		e.invalidate()
	}
}

func (e *Engine) countZ(z int) int {
	n := 0
	for i := range e.objects {
		if e.objects[i].ZIndex == z {
			n++
		}
	}
	return n
}

// Select replaces the selection with ids. Unknown ids are ignored.
func (e *Engine) Select(ids ...string) {
	e.clearSelection()
	for _, id := range ids {
		e.addSelected(id)
	}
	e.invalidate()
}

// ToggleSelect adds or removes id from the selection.
func (e *Engine) ToggleSelect(id string) {
	e.toggleSelected(id)
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() {
	e.clearSelection()
}
