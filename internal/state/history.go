package state

import (
	log "github.com/sirupsen/logrus"
)

// Snapshot is an immutable encoded copy of a whole Scene. Action names the
// user action that followed the captured state.
type Snapshot struct {
	Action string
	Data   []byte
}

// History is a snapshot-based undo/redo stack over one Scene.
//
// past holds committed states oldest first; future holds undone states with
// the most recently undone first. Any commit clears future, so there is never
// more than one redo branch.
type History struct {
	scene  *Scene
	past   []Snapshot
	future []Snapshot
	limit  int
}

// NewHistory binds a history to scene. A positive limit caps the number of
// undo steps kept; the oldest are dropped first.
func NewHistory(scene *Scene, limit int) *History {
	return &History{scene: scene, limit: limit}
}

// Capture encodes the current scene without touching the stacks.
func (h *History) Capture(action string) Snapshot {
	return Snapshot{Action: action, Data: snapshotBytes(h.scene)}
}

// Commit pushes the current scene onto past and clears future. Committing
// an empty scene is valid.
func (h *History) Commit(action string) {
	h.Push(h.Capture(action))
}

// Push commits a previously captured snapshot.
func (h *History) Push(snap Snapshot) {
	h.past = append(h.past, snap)
	h.future = nil
	if h.limit > 0 && len(h.past) > h.limit {
		drop := len(h.past) - h.limit
		h.past = append([]Snapshot(nil), h.past[drop:]...)
	}
	log.WithFields(log.Fields{"action": snap.Action, "past": len(h.past)}).Debug("history commit")
}

// Undo restores the most recent committed state. It is a no-op returning
// false when there is nothing to undo.
func (h *History) Undo() bool {
	if len(h.past) == 0 {
		return false
	}
	prev := h.past[len(h.past)-1]
	current := h.Capture(prev.Action)
	if err := h.scene.Restore(prev.Data); err != nil {
		log.WithError(err).Error("history: undo snapshot unreadable")
		return false
	}
	h.past = h.past[:len(h.past)-1]
	h.future = append([]Snapshot{current}, h.future...)
	log.WithFields(log.Fields{"action": prev.Action, "past": len(h.past), "future": len(h.future)}).Debug("history undo")
	return true
}

// Redo re-applies the most recently undone state. It is a no-op returning
// false when there is nothing to redo.
func (h *History) Redo() bool {
	if len(h.future) == 0 {
		return false
	}
	next := h.future[0]
	current := h.Capture(next.Action)
	if err := h.scene.Restore(next.Data); err != nil {
		log.WithError(err).Error("history: redo snapshot unreadable")
		return false
	}
	h.future = h.future[1:]
	h.past = append(h.past, current)
	log.WithFields(log.Fields{"action": next.Action, "past": len(h.past), "future": len(h.future)}).Debug("history redo")
	return true
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }

func (h *History) CanRedo() bool { return len(h.future) > 0 }

// UndoAction returns the label of the action Undo would revert.
func (h *History) UndoAction() string {
	if len(h.past) == 0 {
		return ""
	}
	return h.past[len(h.past)-1].Action
}

// RedoAction returns the label of the action Redo would re-apply.
func (h *History) RedoAction() string {
	if len(h.future) == 0 {
		return ""
	}
	return h.future[0].Action
}

// Len returns the sizes of both stacks.
func (h *History) Len() (past, future int) {
	return len(h.past), len(h.future)
}

// Reset forgets all history.
func (h *History) Reset() {
	h.past = nil
	h.future = nil
}
