package ui

import (
	"bytes"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SceneBoard/internal/config"
	"SceneBoard/internal/editor"
	"SceneBoard/internal/state"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func newTestEditor(t *testing.T, opts Options) *Editor {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	if opts.Config.Canvas.Width == 0 {
		opts.Config = config.Default()
	}
	return NewEditor(a, opts)
}

func pastLen(s *editor.Session) int {
	past, _ := s.History().Len()
	return past
}

func press(pos fyne.Position, mod fyne.KeyModifier) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: pos},
		Button:     desktop.MouseButtonPrimary,
		Modifier:   mod,
	}
}

func TestPreferencesSlot(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	slot := NewPreferencesSlot(a.Preferences())
	assert.Equal(t, "", slot.Get("clip"))
	slot.Set("clip", `{"type":"rect"}`)
	assert.Equal(t, `{"type":"rect"}`, slot.Get("clip"))
}

func TestBoardClickSelectsAndShiftExtends(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := editor.NewSession(editor.Options{})
	r, err := s.Add(state.NewRect(10, 10, 50, 50))
	require.NoError(t, err)
	c, err := s.Add(state.NewEllipse(200, 200, 40, 40))
	require.NoError(t, err)
	b := NewBoard(s)

	b.MouseDown(press(fyne.NewPos(20, 20), 0))
	assert.Equal(t, []string{r.ID}, s.Selection().IDs())

	b.MouseDown(press(fyne.NewPos(210, 210), fyne.KeyModifierShift))
	assert.Equal(t, []string{r.ID, c.ID}, s.Selection().IDs())

	b.MouseDown(press(fyne.NewPos(500, 500), 0))
	assert.True(t, s.Selection().Empty())
}

func TestBoardDragIsOneUndoStep(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := editor.NewSession(editor.Options{})
	r, err := s.Add(state.NewRect(10, 10, 50, 50))
	require.NoError(t, err)
	steps := pastLen(s)
	b := NewBoard(s)

	b.MouseDown(press(fyne.NewPos(20, 20), 0))
	for i := 0; i < 4; i++ {
		b.Dragged(&fyne.DragEvent{Dragged: fyne.NewDelta(5, 2)})
	}
	b.DragEnd()

	assert.Equal(t, 30.0, r.X)
	assert.Equal(t, 18.0, r.Y)
	assert.Equal(t, steps+1, pastLen(s))

	require.True(t, s.Undo())
	moved, ok := s.Scene().Find(s.Scene().Objects()[0].ID)
	require.True(t, ok)
	assert.Equal(t, 10.0, moved.X)
}

func TestBoardDragWithoutSelectionDoesNothing(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := editor.NewSession(editor.Options{})
	_, err := s.Add(state.NewRect(10, 10, 50, 50))
	require.NoError(t, err)
	require.NoError(t, s.Select())
	steps := pastLen(s)
	b := NewBoard(s)

	b.Dragged(&fyne.DragEvent{Dragged: fyne.NewDelta(5, 5)})
	b.DragEnd()
	assert.Equal(t, steps, pastLen(s))
}

func TestBoardRendererOutlinesSelection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := editor.NewSession(editor.Options{})
	_, err := s.Add(state.NewRect(10, 10, 50, 50))
	require.NoError(t, err)
	b := NewBoard(s)
	r := test.WidgetRenderer(b)

	// backdrop, raster and one outline
	assert.Len(t, r.Objects(), 3)
	assert.Equal(t, fyne.NewSize(800, 600), r.MinSize())

	require.NoError(t, s.Select())
	b.Refresh()
	assert.Len(t, r.Objects(), 2)
}

func TestViewerShow(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	src := state.NewScene()
	src.Add(state.NewRect(0, 0, 10, 10))
	src.Add(state.NewText(20, 20, "hello"))

	v := NewViewer(400, 300)
	require.NoError(t, v.Show(state.Encode(src)))
	assert.Equal(t, 2, v.Scene().Len())

	err := v.Show(state.Document{Objects: []state.ObjectDoc{{Type: "star"}}})
	var decErr *state.DecodeError
	assert.ErrorAs(t, err, &decErr)
	assert.Equal(t, 2, v.Scene().Len())
}

func TestEditorPublishesSceneChanges(t *testing.T) {
	var docs []state.Document
	e := newTestEditor(t, Options{OnScene: func(d state.Document) { docs = append(docs, d) }})

	_, err := e.Session().AddRectangle()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Len(t, docs[0].Objects, 1)

	require.NoError(t, e.Session().Select())
	assert.Len(t, docs, 1, "selection changes are not published")
}

func TestEditorPropertiesFollowSelection(t *testing.T) {
	e := newTestEditor(t, Options{})
	assert.Equal(t, "Nothing selected", e.props.kind.Text)
	assert.True(t, e.props.fill.Disabled())

	_, err := e.Session().AddText("")
	require.NoError(t, err)
	assert.Equal(t, "text", e.props.kind.Text)
	assert.Equal(t, "Edit this text", e.props.text.Text)
	assert.Equal(t, "24", e.props.fontSize.Text)
	assert.True(t, e.props.textBox.Visible())

	e.props.fill.OnSubmitted("#ff0000")
	assert.Equal(t, "#ff0000", e.Session().Selection().Primary().Fill)
}

func TestEditorSliderScrubIsOneUndoStep(t *testing.T) {
	e := newTestEditor(t, Options{})
	_, err := e.Session().AddRectangle()
	require.NoError(t, err)
	steps := pastLen(e.Session())

	for _, v := range []float64{3, 5, 8} {
		e.props.strokeWidth.OnChanged(v)
	}
	e.props.strokeWidth.OnChangeEnded(8)

	assert.Equal(t, 8.0, e.Session().Selection().Primary().StrokeWidth)
	assert.Equal(t, steps+1, pastLen(e.Session()))
	require.True(t, e.Session().Undo())
	assert.Equal(t, 2.0, e.Session().Scene().Objects()[0].StrokeWidth)
}

func TestEditorDeleteKey(t *testing.T) {
	e := newTestEditor(t, Options{})
	_, err := e.Session().AddEllipse()
	require.NoError(t, err)

	e.Window().Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyDelete})
	assert.Equal(t, 0, e.Session().Scene().Len())
}

func TestEditorCopyPasteUsesPreferences(t *testing.T) {
	e := newTestEditor(t, Options{})
	_, err := e.Session().AddRectangle()
	require.NoError(t, err)

	e.copy()
	assert.Equal(t, "Copied", e.status.Text)
	e.paste()
	require.Equal(t, 2, e.Session().Scene().Len())
	objs := e.Session().Scene().Objects()
	assert.Equal(t, objs[0].X+state.DuplicateOffset, objs[1].X)
}

func TestEditorGroupNeedsTwoObjects(t *testing.T) {
	e := newTestEditor(t, Options{})
	_, err := e.Session().AddRectangle()
	require.NoError(t, err)

	e.group()
	assert.Equal(t, "Select two or more objects to group", e.status.Text)
	assert.Equal(t, state.KindRect, e.Session().Scene().Objects()[0].Kind)
}

func TestWriteDocument(t *testing.T) {
	s := state.NewScene()
	s.Add(state.NewRect(1, 2, 3, 4))

	var out bufferCloser
	require.NoError(t, writeDocument(&out, state.Encode(s)))
	assert.True(t, out.closed)

	doc, err := state.Unmarshal(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, state.Encode(s), doc)
}

func TestWriteExport(t *testing.T) {
	e := newTestEditor(t, Options{})
	_, err := e.Session().AddTriangle()
	require.NoError(t, err)

	var png bufferCloser
	require.NoError(t, e.writeExport(&png, formatPNG))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	var pdf bufferCloser
	require.NoError(t, e.writeExport(&pdf, formatPDF))
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")))

	var bad bufferCloser
	assert.Error(t, e.writeExport(&bad, format("svg")))
	assert.True(t, bad.closed)
}
