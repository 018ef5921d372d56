package state

import (
	"sort"
)

// DuplicateOffset is how far Duplicate and Paste shift the copy on both axes.
const DuplicateOffset = 20

type entry struct {
	obj    *Object
	parent *Object // nil for root objects
}

// Scene is the editable document: ordered root objects, index 0 painted
// first, plus a background colour. Every public method leaves the Scene
// consistent before returning; none of them commits history.
type Scene struct {
	objects    []*Object
	index      map[string]entry
	background string
	selection  *Selection
}

func NewScene() *Scene {
	s := &Scene{
		index:      make(map[string]entry),
		background: DefaultBackground,
	}
	s.selection = &Selection{scene: s}
	return s
}

// Selection returns the scene's single active selection.
func (s *Scene) Selection() *Selection { return s.selection }

func (s *Scene) Background() string { return s.background }

func (s *Scene) SetBackground(color string) {
	if color == "" {
		color = DefaultBackground
	}
	s.background = color
}

// Objects returns the root objects bottom to top. The slice is a copy; the
// objects are live.
func (s *Scene) Objects() []*Object {
	return append([]*Object(nil), s.objects...)
}

// Len returns the number of root objects.
func (s *Scene) Len() int { return len(s.objects) }

// Find looks up any object, group members included.
func (s *Scene) Find(id string) (*Object, bool) {
	e, ok := s.index[id]
	return e.obj, ok
}

// Parent returns the group owning id, or nil for root objects.
func (s *Scene) Parent(id string) (*Object, error) {
	e, ok := s.index[id]
	if !ok {
		return nil, unknown("parent", id)
	}
	return e.parent, nil
}

// IndexOf returns the z position of id among its siblings.
func (s *Scene) IndexOf(id string) (int, error) {
	e, ok := s.index[id]
	if !ok {
		return -1, unknown("index", id)
	}
	return indexIn(*s.siblings(e.parent), id), nil
}

// Add places obj on top of the root z-order. Missing or already-taken
// identifiers are replaced with fresh ones.
func (s *Scene) Add(obj *Object) *Object {
	s.insert(nil, len(s.objects), obj)
	return obj
}

// Remove deletes id, and its subtree, from the scene and from the selection.
func (s *Scene) Remove(id string) error {
	e, ok := s.index[id]
	if !ok {
		return unknown("remove", id)
	}
	sibs := s.siblings(e.parent)
	i := indexIn(*sibs, id)
	*sibs = append((*sibs)[:i:i], (*sibs)[i+1:]...)
	s.afterChange(e.parent)
	return nil
}

// Duplicate inserts a deep copy of id immediately above it, shifted by
// DuplicateOffset, with fresh identifiers throughout.
func (s *Scene) Duplicate(id string) (*Object, error) {
	e, ok := s.index[id]
	if !ok {
		return nil, unknown("duplicate", id)
	}
	dup := e.obj.Clone()
	dup.Walk(func(o *Object) { o.ID = "" })
	dup.Translate(DuplicateOffset, DuplicateOffset)
	i := indexIn(*s.siblings(e.parent), id)
	s.insert(e.parent, i+1, dup)
	return dup, nil
}

// SetProperty sets one attribute of id. The returned bool reports whether
// the variant accepted it.
func (s *Scene) SetProperty(id string, attr Attr, value any) (bool, error) {
	e, ok := s.index[id]
	if !ok {
		return false, unknown("set", id)
	}
	if !e.obj.Set(attr, value) {
		return false, nil
	}
	s.refreshAncestors(e.parent)
	return true, nil
}

// Move translates id by (dx, dy).
func (s *Scene) Move(id string, dx, dy float64) error {
	e, ok := s.index[id]
	if !ok {
		return unknown("move", id)
	}
	e.obj.Translate(dx, dy)
	s.refreshAncestors(e.parent)
	return nil
}

// BringToFront moves id to the top of its siblings.
func (s *Scene) BringToFront(id string) (bool, error) {
	return s.reorder("front", id, func(i, n int) int { return n - 1 })
}

// SendToBack moves id to the bottom of its siblings.
func (s *Scene) SendToBack(id string) (bool, error) {
	return s.reorder("back", id, func(i, n int) int { return 0 })
}

// BringForward swaps id with the sibling directly above it.
func (s *Scene) BringForward(id string) (bool, error) {
	return s.reorder("forward", id, func(i, n int) int { return min(i+1, n-1) })
}

// SendBackward swaps id with the sibling directly below it.
func (s *Scene) SendBackward(id string) (bool, error) {
	return s.reorder("backward", id, func(i, n int) int { return max(i-1, 0) })
}

func (s *Scene) reorder(op, id string, target func(i, n int) int) (bool, error) {
	e, ok := s.index[id]
	if !ok {
		return false, unknown(op, id)
	}
	sibs := s.siblings(e.parent)
	i := indexIn(*sibs, id)
	j := target(i, len(*sibs))
	if i == j {
		return false, nil
	}
	rest := append((*sibs)[:i:i], (*sibs)[i+1:]...)
	*sibs = insertAt(rest, j, e.obj)
	return true, nil
}

// Group replaces two or more siblings with one Group placed at the z position
// of the topmost member. Members keep their relative z-order as children.
// Fewer than two distinct ids, or members with different parents, is a no-op
// returning nil. A new root group becomes the selection.
func (s *Scene) Group(ids []string) (*Object, error) {
	seen := make(map[string]bool, len(ids))
	var parent *Object
	for n, id := range ids {
		e, ok := s.index[id]
		if !ok {
			return nil, unknown("group", id)
		}
		if n > 0 && e.parent != parent {
			return nil, nil
		}
		parent = e.parent
		seen[id] = true
	}
	if len(seen) < 2 {
		return nil, nil
	}

	sibs := s.siblings(parent)
	positions := make([]int, 0, len(seen))
	for i, o := range *sibs {
		if seen[o.ID] {
			positions = append(positions, i)
		}
	}
	sort.Ints(positions)
	top := positions[len(positions)-1]

	members := make([]*Object, 0, len(positions))
	rest := make([]*Object, 0, len(*sibs)-len(positions)+1)
	slot := 0
	for i, o := range *sibs {
		if seen[o.ID] {
			members = append(members, o)
			if i == top {
				slot = len(rest)
			}
			continue
		}
		rest = append(rest, o)
	}

	g := newGroup(members)
	*sibs = insertAt(rest, slot, g)
	s.afterChange(parent)
	if parent == nil {
		s.selection.ids = []string{g.ID}
	}
	return g, nil
}

// Ungroup reinserts the children of group id at the group's z position, in
// their order, and discards the group. The group's opacity is multiplied into
// every child so faded content stays faded; its rotation, fill and stroke are
// not carried over. Ungrouping a non-group is a no-op returning nil. Children
// released at the root become the selection.
func (s *Scene) Ungroup(id string) ([]*Object, error) {
	e, ok := s.index[id]
	if !ok {
		return nil, unknown("ungroup", id)
	}
	if e.obj.Kind != KindGroup {
		return nil, nil
	}
	sibs := s.siblings(e.parent)
	i := indexIn(*sibs, id)
	children := e.obj.Children
	if e.obj.Opacity < 1 {
		for _, c := range children {
			c.Opacity = clamp01(c.Opacity * e.obj.Opacity)
		}
	}
	out := make([]*Object, 0, len(*sibs)-1+len(children))
	out = append(out, (*sibs)[:i]...)
	out = append(out, children...)
	out = append(out, (*sibs)[i+1:]...)
	*sibs = out
	e.obj.Children = nil
	s.afterChange(e.parent)

	if e.parent == nil {
		s.selection.ids = s.selection.ids[:0]
		for _, c := range children {
			s.selection.ids = append(s.selection.ids, c.ID)
		}
	}
	return append([]*Object(nil), children...), nil
}

// Replace swaps the entire content of the scene and resets the selection.
func (s *Scene) Replace(objects []*Object, background string) {
	s.objects = append([]*Object(nil), objects...)
	s.SetBackground(background)
	s.selection.ids = nil
	s.reindex()
}

// ObjectAt returns the topmost root object whose bounds contain the point,
// or nil.
func (s *Scene) ObjectAt(x, y float64) *Object {
	for i := len(s.objects) - 1; i >= 0; i-- {
		o := s.objects[i]
		pad := max(o.StrokeWidth/2, 3)
		if o.Bounds().Inflate(pad).Contains(x, y) {
			return o
		}
	}
	return nil
}

// Bounds returns the area covered by all root objects.
func (s *Scene) Bounds() Rect {
	return BoundsOf(s.objects)
}

func (s *Scene) insert(parent *Object, i int, obj *Object) {
	taken := make(map[string]bool, len(s.index))
	for id := range s.index {
		taken[id] = true
	}
	assignIDs(obj, taken, false)
	sibs := s.siblings(parent)
	*sibs = insertAt(*sibs, i, obj)
	s.afterChange(parent)
}

func (s *Scene) siblings(parent *Object) *[]*Object {
	if parent == nil {
		return &s.objects
	}
	return &parent.Children
}

func (s *Scene) afterChange(parent *Object) {
	s.refreshAncestors(parent)
	s.reindex()
}

func (s *Scene) refreshAncestors(parent *Object) {
	for parent != nil {
		parent.refreshShape()
		parent = s.index[parent.ID].parent
	}
}

// reindex rebuilds the identifier table and drops stale selection entries.
func (s *Scene) reindex() {
	taken := make(map[string]bool)
	s.index = make(map[string]entry)
	var walk func(parent *Object, objs []*Object)
	walk = func(parent *Object, objs []*Object) {
		for _, o := range objs {
			if o.ID == "" || taken[o.ID] {
				o.ID = NewID()
			}
			taken[o.ID] = true
			s.index[o.ID] = entry{obj: o, parent: parent}
			walk(o, o.Children)
		}
	}
	walk(nil, s.objects)
	s.selection.prune()
}

func indexIn(objs []*Object, id string) int {
	for i, o := range objs {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func insertAt(objs []*Object, i int, obj *Object) []*Object {
	i = max(0, min(i, len(objs)))
	objs = append(objs, nil)
	copy(objs[i+1:], objs[i:])
	objs[i] = obj
	return objs
}
