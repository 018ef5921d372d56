package state

// Selection tracks the active root objects of a Scene by identifier. Group
// members cannot be selected on their own. It holds no references into the
// scene graph; every read resolves through the Scene index, so removed
// objects simply drop out.
type Selection struct {
	scene *Scene
	ids   []string
}

// Set replaces the selection. Duplicate ids are collapsed.
func (sel *Selection) Set(ids ...string) error {
	next := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := sel.check(id); err != nil {
			return err
		}
		if !contains(next, id) {
			next = append(next, id)
		}
	}
	sel.ids = next
	return nil
}

// Add extends the selection with id.
func (sel *Selection) Add(id string) error {
	if err := sel.check(id); err != nil {
		return err
	}
	if !contains(sel.ids, id) {
		sel.ids = append(sel.ids, id)
	}
	return nil
}

// Toggle adds id when absent and removes it when present.
func (sel *Selection) Toggle(id string) error {
	if err := sel.check(id); err != nil {
		return err
	}
	if contains(sel.ids, id) {
		sel.drop(id)
		return nil
	}
	sel.ids = append(sel.ids, id)
	return nil
}

func (sel *Selection) Clear() { sel.ids = nil }

func (sel *Selection) Len() int { return len(sel.ids) }

func (sel *Selection) Empty() bool { return len(sel.ids) == 0 }

func (sel *Selection) Contains(id string) bool { return contains(sel.ids, id) }

// IDs returns the selected identifiers in selection order.
func (sel *Selection) IDs() []string {
	return append([]string(nil), sel.ids...)
}

// Objects resolves the selection against the scene.
func (sel *Selection) Objects() []*Object {
	out := make([]*Object, 0, len(sel.ids))
	for _, id := range sel.ids {
		if e, ok := sel.scene.index[id]; ok {
			out = append(out, e.obj)
		}
	}
	return out
}

// Primary returns the first selected object, or nil.
func (sel *Selection) Primary() *Object {
	for _, id := range sel.ids {
		if e, ok := sel.scene.index[id]; ok {
			return e.obj
		}
	}
	return nil
}

// Groupable reports whether the selection can be grouped: two or more
// objects sharing one parent.
func (sel *Selection) Groupable() bool {
	if len(sel.ids) < 2 {
		return false
	}
	parent := sel.scene.index[sel.ids[0]].parent
	for _, id := range sel.ids[1:] {
		if sel.scene.index[id].parent != parent {
			return false
		}
	}
	return true
}

// PropertyView is the editable-property view of the primary selection.
type PropertyView struct {
	ID          string
	Kind        Kind
	Count       int
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	Rotation    float64

	// Set only for text.
	IsText     bool
	Text       string
	FontFamily string
	FontSize   float64
}

// View derives the property panel state. ok is false when nothing is
// selected.
func (sel *Selection) View() (PropertyView, bool) {
	o := sel.Primary()
	if o == nil {
		return PropertyView{}, false
	}
	v := PropertyView{
		ID:          o.ID,
		Kind:        o.Kind,
		Count:       len(sel.ids),
		Fill:        o.Fill,
		Stroke:      o.Stroke,
		StrokeWidth: o.StrokeWidth,
		Opacity:     o.Opacity,
		Rotation:    o.Rotation,
	}
	if o.Kind == KindText {
		v.IsText = true
		v.Text = o.Text
		v.FontFamily = o.FontFamily
		v.FontSize = o.FontSize
	}
	return v, true
}

// check accepts root objects only.
func (sel *Selection) check(id string) error {
	e, ok := sel.scene.index[id]
	if !ok {
		return unknown("select", id)
	}
	if e.parent != nil {
		return member("select", id)
	}
	return nil
}

func (sel *Selection) drop(id string) {
	out := sel.ids[:0]
	for _, cur := range sel.ids {
		if cur != id {
			out = append(out, cur)
		}
	}
	sel.ids = out
}

// prune removes identifiers no longer present at the root of the scene.
func (sel *Selection) prune() {
	if len(sel.ids) == 0 {
		return
	}
	out := sel.ids[:0]
	for _, id := range sel.ids {
		if e, ok := sel.scene.index[id]; ok && e.parent == nil {
			out = append(out, id)
		}
	}
	sel.ids = out
}

func contains(ids []string, id string) bool {
	for _, cur := range ids {
		if cur == id {
			return true
		}
	}
	return false
}
