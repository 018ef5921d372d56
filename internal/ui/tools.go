package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"SceneBoard/internal/export"
	"SceneBoard/internal/state"
)

// palette is offered for fill, stroke and background.
var palette = []string{
	"#000000", "#ffffff", "#e53e3e", "#ed8936", "#ecc94b",
	"#48bb78", "#4299e1", "#9f7aea", "#ed64a6", "#718096",
}

type colorSwatch struct {
	widget.BaseWidget
	Value    string
	Color    color.Color
	OnTapped func(string)
}

func newColorSwatch(value string, tapped func(string)) *colorSwatch {
	c, _ := export.ParseColor(value)
	s := &colorSwatch{Value: value, Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(22, 22))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Value)
	}
}

func swatches(tapped func(string)) *fyne.Container {
	box := container.NewHBox()
	for _, c := range palette {
		box.Add(newColorSwatch(c, tapped))
	}
	return box
}

func (e *Editor) newToolbar() fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), e.openDocument),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), e.saveDocument),
		widget.NewToolbarAction(theme.FileImageIcon(), e.importImage),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), e.undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), e.redo),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), e.copy),
		widget.NewToolbarAction(theme.ContentPasteIcon(), e.paste),
		widget.NewToolbarAction(theme.DeleteIcon(), e.remove),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.MoveUpIcon(), func() { e.run(e.session.BringToFront) }),
		widget.NewToolbarAction(theme.MoveDownIcon(), func() { e.run(e.session.SendToBack) }),
	)

	add := func(fn func() (*state.Object, error)) func() {
		return func() {
			e.run(func() error {
				_, err := fn()
				return err
			})
		}
	}
	shapes := container.NewHBox(
		widget.NewButton("Rectangle", add(e.session.AddRectangle)),
		widget.NewButton("Circle", add(e.session.AddEllipse)),
		widget.NewButton("Line", add(e.session.AddLine)),
		widget.NewButton("Triangle", add(e.session.AddTriangle)),
		widget.NewButton("Text", add(func() (*state.Object, error) { return e.session.AddText("") })),
		widget.NewSeparator(),
		widget.NewButton("Group", e.group),
		widget.NewButton("Ungroup", e.ungroup),
		widget.NewButton("Duplicate", e.duplicate),
	)

	setFill := func(c string) { e.run(func() error { return e.session.SetProperty(state.AttrFill, c) }) }
	setBackground := func(c string) { e.run(func() error { return e.session.SetBackground(c) }) }

	return container.NewVBox(
		container.NewHBox(tb, widget.NewSeparator(), shapes, layout.NewSpacer()),
		container.NewHBox(
			widget.NewLabel("Fill:"),
			swatches(setFill),
			widget.NewSeparator(),
			widget.NewLabel("Background:"),
			swatches(setBackground),
			layout.NewSpacer(),
		),
	)
}
