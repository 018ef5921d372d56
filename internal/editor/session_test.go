package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SceneBoard/internal/state"
	"SceneBoard/internal/store"
)

func newTestSession() (*Session, *Queue) {
	q := NewQueue()
	return NewSession(Options{Loop: q}), q
}

func kinds(s *Session) []state.Kind {
	var out []state.Kind
	for _, o := range s.Scene().Objects() {
		out = append(out, o.Kind)
	}
	return out
}

func pastLen(s *Session) int {
	past, _ := s.History().Len()
	return past
}

func TestAddUndoRedoScenario(t *testing.T) {
	s, _ := newTestSession()

	_, err := s.AddRectangle()
	require.NoError(t, err)
	_, err = s.AddEllipse()
	require.NoError(t, err)

	require.True(t, s.Undo())
	assert.Equal(t, []state.Kind{state.KindRect}, kinds(s))

	require.True(t, s.Redo())
	assert.Equal(t, []state.Kind{state.KindRect, state.KindEllipse}, kinds(s))
}

func TestEveryActionIsOneUndoStep(t *testing.T) {
	s, _ := newTestSession()
	add := []func() (*state.Object, error){
		s.AddRectangle, s.AddEllipse, s.AddLine, s.AddTriangle,
		func() (*state.Object, error) { return s.AddText("") },
	}
	for _, fn := range add {
		_, err := fn()
		require.NoError(t, err)
	}
	require.NoError(t, s.SetBackground("#000000"))
	require.Equal(t, 6, pastLen(s))

	for i := 0; i < 6; i++ {
		require.True(t, s.Undo())
	}
	assert.Equal(t, 0, s.Scene().Len())
	assert.Equal(t, state.DefaultBackground, s.Scene().Background())
	assert.False(t, s.Undo())
}

func TestToolbarDefaults(t *testing.T) {
	s, _ := newTestSession()

	txt, err := s.AddText("")
	require.NoError(t, err)
	assert.Equal(t, "Edit this text", txt.Text)
	assert.Equal(t, 24.0, txt.FontSize)
	assert.Equal(t, "Arial", txt.FontFamily)

	tri, err := s.AddTriangle()
	require.NoError(t, err)
	assert.Equal(t, state.Rect{X: 50, Y: 50, Width: 100, Height: 100}, tri.Bounds())

	line, err := s.AddLine()
	require.NoError(t, err)
	assert.Equal(t, 4.0, line.StrokeWidth)
	assert.Equal(t, []string{line.ID}, s.Selection().IDs())
}

func TestNoopActionsDoNotCommit(t *testing.T) {
	s, _ := newTestSession()
	r, err := s.AddRectangle()
	require.NoError(t, err)
	require.Equal(t, 1, pastLen(s))

	g, err := s.Group()
	require.NoError(t, err)
	assert.Nil(t, g)

	_, err = s.Ungroup()
	require.NoError(t, err)
	require.NoError(t, s.BringToFront())
	require.NoError(t, s.SetProperty(state.AttrText, "not a text"))
	require.NoError(t, s.Select())
	require.NoError(t, s.Delete())
	obj, err := s.Paste()
	require.NoError(t, err)
	assert.Nil(t, obj)

	assert.Equal(t, 1, pastLen(s))
	assert.Equal(t, 1, s.Scene().Len())
	_, ok := s.Scene().Find(r.ID)
	assert.True(t, ok)
}

func TestNewActionClearsRedo(t *testing.T) {
	s, _ := newTestSession()
	_, err := s.AddRectangle()
	require.NoError(t, err)
	require.True(t, s.Undo())
	require.True(t, s.History().CanRedo())

	_, err = s.AddEllipse()
	require.NoError(t, err)
	assert.False(t, s.Redo())
	assert.Equal(t, []state.Kind{state.KindEllipse}, kinds(s))
}

func TestDeleteAndUndo(t *testing.T) {
	s, _ := newTestSession()
	r, _ := s.AddRectangle()
	e, _ := s.AddEllipse()
	require.NoError(t, s.Select(r.ID, e.ID))

	require.NoError(t, s.Delete())
	assert.Equal(t, 0, s.Scene().Len())
	assert.True(t, s.Selection().Empty())

	require.True(t, s.Undo())
	assert.Equal(t, []state.Kind{state.KindRect, state.KindEllipse}, kinds(s))
	assert.True(t, s.Selection().Empty())
}

func TestDuplicateSelectsCopies(t *testing.T) {
	s, _ := newTestSession()
	r, _ := s.AddRectangle()

	dups, err := s.Duplicate()
	require.NoError(t, err)
	require.Len(t, dups, 1)
	assert.Equal(t, r.X+20, dups[0].X)
	assert.Equal(t, []string{dups[0].ID}, s.Selection().IDs())
	assert.Equal(t, 2, pastLen(s))
}

func TestGroupUngroupThroughSession(t *testing.T) {
	s, _ := newTestSession()
	r, _ := s.AddRectangle()
	e, _ := s.AddEllipse()
	require.NoError(t, s.Select(r.ID, e.ID))

	g, err := s.Group()
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, []state.Kind{state.KindGroup}, kinds(s))
	assert.Equal(t, []string{g.ID}, s.Selection().IDs())

	children, err := s.Ungroup()
	require.NoError(t, err)
	assert.Len(t, children, 2)
	assert.Equal(t, []state.Kind{state.KindRect, state.KindEllipse}, kinds(s))

	require.True(t, s.Undo())
	assert.Equal(t, []state.Kind{state.KindGroup}, kinds(s))
	require.True(t, s.Undo())
	assert.Equal(t, []state.Kind{state.KindRect, state.KindEllipse}, kinds(s))
}

func TestCopyPasteText(t *testing.T) {
	s, _ := newTestSession()
	src, err := s.AddText("Hello")
	require.NoError(t, err)
	before := state.EncodeObject(src)

	require.NoError(t, s.Copy())
	pasted, err := s.Paste()
	require.NoError(t, err)
	require.NotNil(t, pasted)

	objs := s.Scene().Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, "Hello", objs[0].Text)
	assert.Equal(t, "Hello", objs[1].Text)
	assert.Equal(t, objs[0].X+20, objs[1].X)
	assert.Equal(t, objs[0].Y+20, objs[1].Y)
	assert.NotEqual(t, objs[0].ID, objs[1].ID)
	assert.Equal(t, []string{pasted.ID}, s.Selection().IDs())
	assert.Equal(t, before, state.EncodeObject(src))

	require.True(t, s.Undo())
	assert.Equal(t, 1, s.Scene().Len())
}

func TestPasteMalformedClipboard(t *testing.T) {
	slot := NewMemorySlot()
	s := NewSession(Options{Clipboard: NewClipboard(slot, "")})
	_, err := s.AddRectangle()
	require.NoError(t, err)
	slot.Set(DefaultClipboardKey, `{"type":"hexagon"}`)

	_, err = s.Paste()
	var de *state.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, s.Scene().Len())
	assert.Equal(t, 1, pastLen(s))
}

func TestEditCommitsOnce(t *testing.T) {
	s, _ := newTestSession()
	r, _ := s.AddRectangle()

	e, err := s.BeginEdit("move")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Move(2, 1))
	}
	require.NoError(t, e.Set(state.AttrOpacity, 0.5))
	assert.Equal(t, 1, pastLen(s), "nothing committed while the edit is open")
	assert.True(t, e.End())
	assert.False(t, e.End())
	assert.Equal(t, 2, pastLen(s))
	assert.Equal(t, 110.0, r.X)

	require.True(t, s.Undo())
	o := s.Scene().Objects()[0]
	assert.Equal(t, 100.0, o.X)
	assert.Equal(t, 1.0, o.Opacity)

	assert.ErrorIs(t, e.Move(1, 1), ErrEditEnded)
}

func TestEditWithoutChangeDoesNotCommit(t *testing.T) {
	s, _ := newTestSession()
	_, _ = s.AddRectangle()

	e, err := s.BeginEdit("drag")
	require.NoError(t, err)
	require.NoError(t, e.Move(0, 0))
	assert.False(t, e.End())
	assert.Equal(t, 1, pastLen(s))
}

func TestActionEndsOpenEdit(t *testing.T) {
	s, _ := newTestSession()
	_, _ = s.AddRectangle()

	e, err := s.BeginEdit("drag")
	require.NoError(t, err)
	require.NoError(t, e.Move(10, 0))
	_, err = s.AddEllipse()
	require.NoError(t, err)
	assert.Equal(t, 3, pastLen(s))
	assert.Equal(t, "add ellipse", s.History().UndoAction())

	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.Equal(t, 100.0, s.Scene().Objects()[0].X)
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) (state.Document, error) {
	return state.Document{}, errors.New("backend down")
}

func (failingStore) Save(context.Context, state.Document) (string, error) {
	return "", errors.New("backend down")
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s, _ := newTestSession()
	_, _ = s.AddRectangle()
	_, _ = s.AddText("saved")
	want := s.Document()

	id, err := s.Save(ctx, mem)
	require.NoError(t, err)

	other, _ := newTestSession()
	require.NoError(t, other.Load(ctx, mem, id))
	assert.Equal(t, want, other.Document())
	assert.Equal(t, 1, pastLen(other))

	require.NoError(t, other.Load(ctx, mem, "never-saved"))
	assert.Equal(t, 0, other.Scene().Len())
	require.True(t, other.Undo())
	assert.Equal(t, want, other.Document())
}

func TestSaveLoadFailuresLeaveStateAlone(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession()
	_, _ = s.AddRectangle()
	before := s.Document()

	_, err := s.Save(ctx, failingStore{})
	assert.Error(t, err)
	err = s.Load(ctx, failingStore{}, "x")
	assert.Error(t, err)

	assert.Equal(t, before, s.Document())
	assert.Equal(t, 1, pastLen(s))
}

func TestOnChange(t *testing.T) {
	s, _ := newTestSession()
	var got []Change
	s.OnChange(func(c Change) { got = append(got, c) })

	r, _ := s.AddRectangle()
	require.NoError(t, s.Select(r.ID))
	require.True(t, s.Undo())

	assert.Equal(t, []Change{
		{Action: "add rect", Scene: true},
		{Action: "select", Scene: false},
		{Action: "undo", Scene: true},
	}, got)
}

func TestSelectAt(t *testing.T) {
	s, _ := newTestSession()
	r, _ := s.AddRectangle()
	e := state.NewEllipse(400, 400, 50, 50)
	_, err := s.Add(e)
	require.NoError(t, err)

	hit, err := s.SelectAt(150, 150, false)
	require.NoError(t, err)
	assert.Same(t, r, hit)
	assert.Equal(t, []string{r.ID}, s.Selection().IDs())

	_, err = s.SelectAt(420, 420, true)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID, e.ID}, s.Selection().IDs())

	_, err = s.SelectAt(420, 420, true)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, s.Selection().IDs())

	hit, err = s.SelectAt(700, 10, false)
	require.NoError(t, err)
	assert.Nil(t, hit)
	assert.True(t, s.Selection().Empty())
}

func TestClosedSession(t *testing.T) {
	s, _ := newTestSession()
	_, _ = s.AddRectangle()
	s.Close()
	s.Close()

	_, err := s.AddEllipse()
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, s.Undo())
	_, err = s.BeginEdit("x")
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, s.Closed())
}

func TestUnknownSelectionIsInvariantError(t *testing.T) {
	s, _ := newTestSession()
	err := s.Select("missing")
	assert.ErrorIs(t, err, state.ErrUnknownObject)
}

func groupedScene(t *testing.T) (*Session, *state.Object, *state.Object, *state.Object) {
	t.Helper()
	s, _ := newTestSession()
	a, err := s.Add(state.NewRect(100, 100, 20, 20))
	require.NoError(t, err)
	b, err := s.Add(state.NewRect(150, 100, 20, 20))
	require.NoError(t, err)
	require.NoError(t, s.Select(a.ID, b.ID))
	g, err := s.Group()
	require.NoError(t, err)
	require.NotNil(t, g)
	return s, g, a, b
}

func TestGroupMemberCannotJoinSelection(t *testing.T) {
	s, g, a, _ := groupedScene(t)
	txt, err := s.AddText("label")
	require.NoError(t, err)
	steps := pastLen(s)

	err = s.Select(g.ID, a.ID)
	assert.ErrorIs(t, err, state.ErrGroupMember)
	assert.Equal(t, []string{txt.ID}, s.Selection().IDs())

	require.NoError(t, s.Select(g.ID))
	require.NoError(t, s.Delete())
	assert.Equal(t, []state.Kind{state.KindText}, kinds(s))
	assert.Equal(t, steps+1, pastLen(s))

	require.True(t, s.Undo())
	assert.Equal(t, []state.Kind{state.KindGroup, state.KindText}, kinds(s))
	require.True(t, s.Undo())
	assert.Equal(t, []state.Kind{state.KindGroup}, kinds(s), "undo steps stay aligned with actions")
}

func TestMovingSelectionMovesEachObjectOnce(t *testing.T) {
	s, g, a, b := groupedScene(t)
	c, err := s.Add(state.NewEllipse(300, 300, 10, 10))
	require.NoError(t, err)
	require.NoError(t, s.Select(g.ID, c.ID))

	e, err := s.BeginEdit("move")
	require.NoError(t, err)
	require.NoError(t, e.Move(10, 5))
	e.End()

	assert.Equal(t, 110.0, a.X)
	assert.Equal(t, 160.0, b.X)
	assert.Equal(t, 105.0, a.Y)
	assert.Equal(t, 310.0, c.X)
	assert.Equal(t, 110.0, g.X)
	assert.Equal(t, 70.0, g.Width)
}

func TestFailedActionIsRolledBack(t *testing.T) {
	s, _ := newTestSession()
	_, err := s.AddRectangle()
	require.NoError(t, err)
	before := s.Document()
	steps := pastLen(s)
	var changes []Change
	s.OnChange(func(c Change) { changes = append(changes, c) })

	boom := errors.New("boom")
	err = s.do("broken", func() error {
		s.scene.Add(state.NewEllipse(0, 0, 5, 5))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, s.Document())
	assert.Equal(t, steps, pastLen(s))
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Scene)

	require.True(t, s.Undo())
	assert.Equal(t, 0, s.Scene().Len())
}

func TestFailedActionWithoutChangeKeepsObjects(t *testing.T) {
	s, _ := newTestSession()
	r, err := s.AddRectangle()
	require.NoError(t, err)

	err = s.do("broken", func() error { return errors.New("boom") })
	assert.Error(t, err)
	found, ok := s.Scene().Find(r.ID)
	require.True(t, ok, "nothing changed, so identifiers survive")
	assert.Same(t, r, found)
}
