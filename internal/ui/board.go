package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/editor"
	"SceneBoard/internal/export"
	"SceneBoard/internal/state"
)

var (
	backdropColor  = color.NRGBA{R: 0xe4, G: 0xe7, B: 0xeb, A: 0xff}
	selectionColor = color.NRGBA{R: 0x31, G: 0x82, B: 0xce, A: 0xff}
)

// Board shows a Scene at canvas scale. With a Session it is interactive:
// clicks select, shift-clicks extend the selection and drags move it as one
// undo step. Without one it is a read-only viewer.
type Board struct {
	widget.BaseWidget

	session *editor.Session
	scene   *state.Scene
	width   float32
	height  float32
	opts    export.Options

	drag *editor.Edit

	// OnError reports failures of pointer actions.
	OnError func(error)
}

var _ fyne.Widget = (*Board)(nil)
var _ fyne.Draggable = (*Board)(nil)
var _ desktop.Mouseable = (*Board)(nil)

// NewBoard creates an interactive board bound to s.
func NewBoard(s *editor.Session) *Board {
	w, h := s.CanvasSize()
	b := newBoard(s.Scene(), w, h)
	b.session = s
	return b
}

// NewViewer creates a read-only board over its own scene.
func NewViewer(width, height float64) *Board {
	return newBoard(state.NewScene(), width, height)
}

func newBoard(scene *state.Scene, width, height float64) *Board {
	b := &Board{
		scene:  scene,
		width:  float32(width),
		height: float32(height),
		opts: export.Options{
			Width:  width,
			Height: height,
			Font:   theme.DefaultTextFont().Content(),
		},
	}
	b.ExtendBaseWidget(b)
	return b
}

func (b *Board) Scene() *state.Scene { return b.scene }

// Show replaces the scene of a viewer with doc.
func (b *Board) Show(doc state.Document) error {
	if err := b.scene.Apply(doc); err != nil {
		return err
	}
	b.Refresh()
	return nil
}

func (b *Board) MouseDown(e *desktop.MouseEvent) {
	if b.session == nil || e.Button != desktop.MouseButtonPrimary {
		return
	}
	extend := e.Modifier&fyne.KeyModifierShift != 0
	if _, err := b.session.SelectAt(float64(e.Position.X), float64(e.Position.Y), extend); err != nil {
		b.fail(err)
	}
}

func (b *Board) MouseUp(*desktop.MouseEvent) {}

func (b *Board) Dragged(e *fyne.DragEvent) {
	if b.session == nil || b.session.Selection().Empty() {
		return
	}
	if b.drag == nil {
		edit, err := b.session.BeginEdit("move")
		if err != nil {
			b.fail(err)
			return
		}
		b.drag = edit
	}
	if err := b.drag.Move(float64(e.Dragged.DX), float64(e.Dragged.DY)); err != nil {
		b.fail(err)
	}
}

func (b *Board) DragEnd() {
	if b.drag == nil {
		return
	}
	b.drag.End()
	b.drag = nil
}

func (b *Board) fail(err error) {
	log.WithError(err).WithField("component", "board").Warn("pointer action failed")
	if b.OnError != nil {
		b.OnError(err)
	}
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{
		board:    b,
		backdrop: canvas.NewRectangle(backdropColor),
		image:    canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1))),
	}
	r.image.FillMode = canvas.ImageFillStretch
	r.image.ScaleMode = canvas.ImageScalePixels
	r.rebuild()
	return r
}

type boardRenderer struct {
	board    *Board
	backdrop *canvas.Rectangle
	image    *canvas.Image
	outlines []fyne.CanvasObject
	objects  []fyne.CanvasObject
}

func (r *boardRenderer) rebuild() {
	b := r.board
	img, err := export.Raster(b.scene, b.opts)
	if err != nil {
		log.WithError(err).WithField("component", "board").Error("render failed")
	} else {
		r.image.Image = img
	}

	r.outlines = r.outlines[:0]
	for _, o := range b.scene.Selection().Objects() {
		bounds := o.Bounds().Inflate(2)
		outline := canvas.NewRectangle(color.Transparent)
		outline.StrokeColor = selectionColor
		outline.StrokeWidth = 1.5
		outline.Move(fyne.NewPos(float32(bounds.X), float32(bounds.Y)))
		outline.Resize(fyne.NewSize(float32(bounds.Width), float32(bounds.Height)))
		r.outlines = append(r.outlines, outline)
	}

	r.objects = append([]fyne.CanvasObject{r.backdrop, r.image}, r.outlines...)
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.backdrop.Resize(size)
	r.image.Move(fyne.NewPos(0, 0))
	r.image.Resize(fyne.NewSize(r.board.width, r.board.height))
}

func (r *boardRenderer) MinSize() fyne.Size {
	return fyne.NewSize(r.board.width, r.board.height)
}

func (r *boardRenderer) Refresh() {
	r.rebuild()
	r.Layout(r.board.Size())
	r.image.Refresh()
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *boardRenderer) Destroy() {}
