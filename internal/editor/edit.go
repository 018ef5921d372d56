package editor

import (
	"bytes"
	"errors"

	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/state"
)

// ErrEditEnded is returned when an Edit is used after End.
var ErrEditEnded = errors.New("editor: edit already ended")

// Edit groups a continuous change, such as an object drag or a slider
// scrub, into one undo step. The state before the edit is captured when it
// begins and committed when it ends, provided something changed.
type Edit struct {
	session *Session
	before  state.Snapshot
	ended   bool
}

// BeginEdit opens an Edit on the current selection. An Edit still open is
// ended first.
func (s *Session) BeginEdit(action string) (*Edit, error) {
	if s.closed {
		return nil, ErrClosed
	}
	s.endEdit()
	e := &Edit{session: s, before: s.history.Capture(action)}
	s.edit = e
	return e, nil
}

// Set assigns attr on every selected object.
func (e *Edit) Set(attr state.Attr, value any) error {
	if e.ended {
		return ErrEditEnded
	}
	if err := e.session.setSelected(attr, value); err != nil {
		return err
	}
	e.session.notify(e.before.Action, true)
	return nil
}

// Move translates every selected object by (dx, dy).
func (e *Edit) Move(dx, dy float64) error {
	if e.ended {
		return ErrEditEnded
	}
	s := e.session
	for _, id := range s.scene.Selection().IDs() {
		if err := s.scene.Move(id, dx, dy); err != nil {
			return err
		}
	}
	s.notify(e.before.Action, true)
	return nil
}

// End commits the edit. It reports whether an undo step was recorded.
// Ending twice is harmless.
func (e *Edit) End() bool {
	if e.ended {
		return false
	}
	e.ended = true
	s := e.session
	if s.edit == e {
		s.edit = nil
	}
	after := s.history.Capture(e.before.Action)
	if bytes.Equal(e.before.Data, after.Data) {
		return false
	}
	s.history.Push(e.before)
	log.WithFields(log.Fields{"component": "editor", "action": e.before.Action}).Debug("edit committed")
	return true
}

func (s *Session) endEdit() {
	if s.edit != nil {
		s.edit.End()
	}
}
