// Package editor owns an editing session: the Scene, its History and
// Clipboard, and the rules for when a user action becomes an undo step.
package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/state"
	"SceneBoard/internal/store"
)

// ErrClosed is returned by actions on a closed Session.
var ErrClosed = errors.New("editor: session closed")

// Options configures a Session. Zero values select the defaults.
type Options struct {
	CanvasWidth  float64
	CanvasHeight float64
	HistoryLimit int
	Clipboard    *Clipboard
	Loop         Loop
}

// Change describes what a notification is about. Scene is false when only
// the selection moved.
type Change struct {
	Action string
	Scene  bool
}

// Session is the single owner of one Scene. All methods must be called from
// the Loop's goroutine.
type Session struct {
	scene   *state.Scene
	history *state.History
	clip    *Clipboard
	loop    Loop

	canvasWidth  float64
	canvasHeight float64

	edit      *Edit
	listeners []func(Change)
	closed    bool
}

func NewSession(opts Options) *Session {
	if opts.CanvasWidth <= 0 {
		opts.CanvasWidth = 800
	}
	if opts.CanvasHeight <= 0 {
		opts.CanvasHeight = 600
	}
	if opts.Clipboard == nil {
		opts.Clipboard = NewClipboard(NewMemorySlot(), "")
	}
	if opts.Loop == nil {
		opts.Loop = NewQueue()
	}
	scene := state.NewScene()
	return &Session{
		scene:        scene,
		history:      state.NewHistory(scene, opts.HistoryLimit),
		clip:         opts.Clipboard,
		loop:         opts.Loop,
		canvasWidth:  opts.CanvasWidth,
		canvasHeight: opts.CanvasHeight,
	}
}

func (s *Session) Scene() *state.Scene { return s.scene }

func (s *Session) History() *state.History { return s.history }

func (s *Session) Selection() *state.Selection { return s.scene.Selection() }

func (s *Session) CanvasSize() (float64, float64) { return s.canvasWidth, s.canvasHeight }

// OnChange registers fn to run after every action that changed the scene or
// the selection.
func (s *Session) OnChange(fn func(Change)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Session) notify(action string, scene bool) {
	for _, fn := range s.listeners {
		fn(Change{Action: action, Scene: scene})
	}
}

// Document encodes the current scene.
func (s *Session) Document() state.Document {
	return state.Encode(s.scene)
}

// Close tears the session down. Pending asynchronous results are discarded
// when they arrive.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.endEdit()
	s.closed = true
	s.listeners = nil
	log.WithField("component", "editor").Debug("session closed")
}

func (s *Session) Closed() bool { return s.closed }

// do runs one discrete action. The pre-action state becomes an undo step
// only when fn actually changed the document. A failing fn is rolled back,
// so the scene is either fully changed or not at all.
func (s *Session) do(action string, fn func() error) error {
	if s.closed {
		return ErrClosed
	}
	s.endEdit()
	before := s.history.Capture(action)
	if err := fn(); err != nil {
		s.rollback(before, err)
		return err
	}
	after := s.history.Capture(action)
	if bytes.Equal(before.Data, after.Data) {
		s.notify(action, false)
		return nil
	}
	s.history.Push(before)
	log.WithFields(log.Fields{"component": "editor", "action": action}).Debug("action")
	s.notify(action, true)
	return nil
}

func (s *Session) rollback(before state.Snapshot, cause error) {
	if bytes.Equal(before.Data, s.history.Capture(before.Action).Data) {
		return
	}
	entry := log.WithError(cause).WithFields(log.Fields{"component": "editor", "action": before.Action})
	if err := s.scene.Restore(before.Data); err != nil {
		entry.WithField("restore", err).Error("action failed and could not be rolled back")
		return
	}
	entry.Warn("action failed, rolled back")
	s.notify(before.Action, true)
}

// Add places obj on top of the scene and selects it.
func (s *Session) Add(obj *state.Object) (*state.Object, error) {
	err := s.do("add "+string(obj.Kind), func() error {
		s.scene.Add(obj)
		return s.scene.Selection().Set(obj.ID)
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (s *Session) AddRectangle() (*state.Object, error) {
	r := state.NewRect(100, 100, 100, 100)
	r.Fill, r.Stroke, r.StrokeWidth = "#4299e1", "#2b6cb0", 2
	return s.Add(r)
}

func (s *Session) AddEllipse() (*state.Object, error) {
	e := state.NewEllipse(100, 100, 100, 100)
	e.Fill, e.Stroke, e.StrokeWidth = "#ed8936", "#c05621", 2
	return s.Add(e)
}

func (s *Session) AddLine() (*state.Object, error) {
	l := state.NewLine(50, 100, 200, 100)
	l.Stroke, l.StrokeWidth = "#2d3748", 4
	return s.Add(l)
}

func (s *Session) AddTriangle() (*state.Object, error) {
	p := state.NewPolygon([]state.Point{{X: 100, Y: 50}, {X: 50, Y: 150}, {X: 150, Y: 150}})
	p.Fill, p.Stroke, p.StrokeWidth = "#9f7aea", "#805ad5", 2
	return s.Add(p)
}

func (s *Session) AddText(text string) (*state.Object, error) {
	if text == "" {
		text = "Edit this text"
	}
	t := state.NewText(100, 100, text)
	t.Fill = "#2d3748"
	return s.Add(t)
}

// Delete removes every selected object.
func (s *Session) Delete() error {
	return s.do("delete", func() error {
		for _, id := range s.scene.Selection().IDs() {
			if err := s.scene.Remove(id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Duplicate copies every selected object and selects the copies.
func (s *Session) Duplicate() ([]*state.Object, error) {
	var dups []*state.Object
	err := s.do("duplicate", func() error {
		for _, id := range s.scene.Selection().IDs() {
			d, err := s.scene.Duplicate(id)
			if err != nil {
				return err
			}
			dups = append(dups, d)
		}
		if len(dups) == 0 {
			return nil
		}
		out := make([]string, len(dups))
		for i, d := range dups {
			out[i] = d.ID
		}
		return s.scene.Selection().Set(out...)
	})
	return dups, err
}

// Group groups the selection. An ineligible selection is a no-op returning
// nil.
func (s *Session) Group() (*state.Object, error) {
	var g *state.Object
	err := s.do("group", func() error {
		var err error
		g, err = s.scene.Group(s.scene.Selection().IDs())
		return err
	})
	return g, err
}

// Ungroup dissolves the primary selection when it is a group.
func (s *Session) Ungroup() ([]*state.Object, error) {
	var children []*state.Object
	err := s.do("ungroup", func() error {
		p := s.scene.Selection().Primary()
		if p == nil {
			return nil
		}
		var err error
		children, err = s.scene.Ungroup(p.ID)
		return err
	})
	return children, err
}

func (s *Session) BringToFront() error {
	return s.reorder("bring to front", s.scene.BringToFront)
}

func (s *Session) SendToBack() error {
	return s.reorder("send to back", s.scene.SendToBack)
}

func (s *Session) BringForward() error {
	return s.reorder("bring forward", s.scene.BringForward)
}

func (s *Session) SendBackward() error {
	return s.reorder("send backward", s.scene.SendBackward)
}

func (s *Session) reorder(action string, fn func(string) (bool, error)) error {
	return s.do(action, func() error {
		for _, id := range s.scene.Selection().IDs() {
			if _, err := fn(id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Session) SetBackground(color string) error {
	return s.do("background", func() error {
		s.scene.SetBackground(color)
		return nil
	})
}

// SetProperty assigns attr on every selected object as one undo step. Use
// BeginEdit for continuous changes such as slider drags.
func (s *Session) SetProperty(attr state.Attr, value any) error {
	return s.do("set "+string(attr), func() error {
		return s.setSelected(attr, value)
	})
}

func (s *Session) setSelected(attr state.Attr, value any) error {
	for _, id := range s.scene.Selection().IDs() {
		if _, err := s.scene.SetProperty(id, attr, value); err != nil {
			return err
		}
	}
	return nil
}

// Copy stores the primary selection on the clipboard. Nothing selected is a
// no-op.
func (s *Session) Copy() error {
	if s.closed {
		return ErrClosed
	}
	p := s.scene.Selection().Primary()
	if p == nil {
		return nil
	}
	return s.clip.Copy(p)
}

// Paste adds the clipboard object on top of the scene and selects it. It
// returns nil, nil when the clipboard is empty.
func (s *Session) Paste() (*state.Object, error) {
	var obj *state.Object
	err := s.do("paste", func() error {
		var err error
		obj, err = s.clip.Paste(s.scene)
		return err
	})
	return obj, err
}

// Undo reverts the last action. It reports false when there was nothing to
// undo.
func (s *Session) Undo() bool {
	if s.closed {
		return false
	}
	s.endEdit()
	if !s.history.Undo() {
		return false
	}
	s.notify("undo", true)
	return true
}

// Redo re-applies the last undone action. It reports false when there was
// nothing to redo.
func (s *Session) Redo() bool {
	if s.closed {
		return false
	}
	s.endEdit()
	if !s.history.Redo() {
		return false
	}
	s.notify("redo", true)
	return true
}

// Select replaces the selection. No ids clears it.
func (s *Session) Select(ids ...string) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.scene.Selection().Set(ids...); err != nil {
		return err
	}
	s.notify("select", false)
	return nil
}

// SelectAt selects the topmost object under (x, y). With extend the object
// is toggled in the current selection instead. Clicking empty canvas clears
// the selection unless extend is set.
func (s *Session) SelectAt(x, y float64, extend bool) (*state.Object, error) {
	if s.closed {
		return nil, ErrClosed
	}
	sel := s.scene.Selection()
	hit := s.scene.ObjectAt(x, y)
	switch {
	case hit == nil && !extend:
		sel.Clear()
	case hit == nil:
	case extend:
		if err := sel.Toggle(hit.ID); err != nil {
			return nil, err
		}
	case !sel.Contains(hit.ID):
		if err := sel.Set(hit.ID); err != nil {
			return nil, err
		}
	}
	s.notify("select", false)
	return hit, nil
}

// Save hands the current document to st. A failure leaves the session
// untouched.
func (s *Session) Save(ctx context.Context, st store.Store) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	id, err := st.Save(ctx, s.Document())
	if err != nil {
		log.WithError(err).WithField("component", "editor").Warn("save failed")
		return "", fmt.Errorf("editor: save: %w", err)
	}
	log.WithFields(log.Fields{"component": "editor", "id": id}).Info("scene saved")
	return id, nil
}

// Load replaces the scene with document id from st as one undoable step.
func (s *Session) Load(ctx context.Context, st store.Store, id string) error {
	if s.closed {
		return ErrClosed
	}
	doc, err := st.Load(ctx, id)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"component": "editor", "id": id}).Warn("load failed")
		return fmt.Errorf("editor: load %s: %w", id, err)
	}
	return s.Apply("load", doc)
}

// Apply replaces the scene with doc as one undoable step. A document that
// does not decode leaves the scene untouched.
func (s *Session) Apply(action string, doc state.Document) error {
	return s.do(action, func() error {
		return s.scene.Apply(doc)
	})
}
