package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"SceneBoard/internal/editor"
	"SceneBoard/internal/state"
)

var fontFamilies = []string{"Arial", "Helvetica", "Times New Roman", "Courier New"}

// propertiesPanel edits the primary selection. Sliders drag inside an Edit
// so a scrub is a single undo step; entries commit on submit.
type propertiesPanel struct {
	e *Editor

	kind        *widget.Label
	fill        *widget.Entry
	stroke      *widget.Entry
	strokeWidth *widget.Slider
	opacity     *widget.Slider
	rotation    *widget.Slider
	text        *widget.Entry
	fontFamily  *widget.Select
	fontSize    *widget.Entry
	textBox     *fyne.Container

	edit    *editor.Edit
	syncing bool
}

func newPropertiesPanel(e *Editor) *propertiesPanel {
	p := &propertiesPanel{
		e:           e,
		kind:        widget.NewLabel(""),
		fill:        widget.NewEntry(),
		stroke:      widget.NewEntry(),
		strokeWidth: widget.NewSlider(0, 20),
		opacity:     widget.NewSlider(0, 1),
		rotation:    widget.NewSlider(-180, 180),
		text:        widget.NewEntry(),
		fontSize:    widget.NewEntry(),
	}
	p.opacity.Step = 0.05
	p.fontFamily = widget.NewSelect(fontFamilies, func(v string) { p.set(state.AttrFontFamily, v) })

	p.fill.OnSubmitted = func(v string) { p.set(state.AttrFill, v) }
	p.stroke.OnSubmitted = func(v string) { p.set(state.AttrStroke, v) }
	p.text.OnSubmitted = func(v string) { p.set(state.AttrText, v) }
	p.fontSize.OnSubmitted = func(v string) {
		size, err := strconv.ParseFloat(v, 64)
		if err != nil || size <= 0 {
			p.e.setStatus("Font size must be a positive number")
			return
		}
		p.set(state.AttrFontSize, size)
	}
	p.scrub(p.strokeWidth, "stroke width", state.AttrStrokeWidth)
	p.scrub(p.opacity, "opacity", state.AttrOpacity)
	p.scrub(p.rotation, "rotate", state.AttrRotation)

	p.textBox = container.NewVBox(
		widget.NewLabel("Text"), p.text,
		widget.NewLabel("Font"), p.fontFamily,
		widget.NewLabel("Size"), p.fontSize,
	)
	return p
}

func (p *propertiesPanel) container() fyne.CanvasObject {
	form := container.NewVBox(
		p.kind,
		widget.NewLabel("Fill"), p.fill,
		widget.NewLabel("Stroke"), p.stroke,
		widget.NewLabel("Stroke width"), p.strokeWidth,
		widget.NewLabel("Opacity"), p.opacity,
		widget.NewLabel("Rotation"), p.rotation,
		p.textBox,
	)
	return container.NewGridWrap(fyne.NewSize(220, form.MinSize().Height), form)
}

func (p *propertiesPanel) set(attr state.Attr, value any) {
	if p.syncing {
		return
	}
	p.e.run(func() error { return p.e.session.SetProperty(attr, value) })
}

// scrub wires a slider to an Edit that ends when the drag is released.
func (p *propertiesPanel) scrub(s *widget.Slider, action string, attr state.Attr) {
	s.OnChanged = func(v float64) {
		if p.syncing {
			return
		}
		if p.edit == nil {
			edit, err := p.e.session.BeginEdit(action)
			if err != nil {
				p.e.fail(err)
				return
			}
			p.edit = edit
		}
		if err := p.edit.Set(attr, v); err != nil {
			p.e.fail(err)
		}
	}
	s.OnChangeEnded = func(float64) {
		if p.edit != nil {
			p.edit.End()
			p.edit = nil
		}
	}
}

// update mirrors the selection into the widgets without committing anything.
func (p *propertiesPanel) update() {
	p.syncing = true
	defer func() { p.syncing = false }()

	v, ok := p.e.session.Selection().View()
	widgets := []fyne.Disableable{p.fill, p.stroke, p.strokeWidth, p.opacity, p.rotation}
	for _, w := range widgets {
		if ok {
			w.Enable()
		} else {
			w.Disable()
		}
	}
	if !ok {
		p.kind.SetText("Nothing selected")
		p.fill.SetText("")
		p.stroke.SetText("")
		p.textBox.Hide()
		return
	}

	label := string(v.Kind)
	if v.Count > 1 {
		label = fmt.Sprintf("%s (+%d more)", v.Kind, v.Count-1)
	}
	p.kind.SetText(label)
	p.fill.SetText(v.Fill)
	p.stroke.SetText(v.Stroke)
	p.strokeWidth.SetValue(v.StrokeWidth)
	p.opacity.SetValue(v.Opacity)
	p.rotation.SetValue(v.Rotation)

	if !v.IsText {
		p.textBox.Hide()
		return
	}
	p.text.SetText(v.Text)
	p.fontFamily.SetSelected(v.FontFamily)
	p.fontSize.SetText(strconv.FormatFloat(v.FontSize, 'f', -1, 64))
	p.textBox.Show()
}
