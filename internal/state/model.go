package state

import (
	"fmt"
	"math"

	"github.com/jinzhu/copier"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Kind is the variant discriminator of an Object.
type Kind string

const (
	KindRect    Kind = "rect"
	KindEllipse Kind = "ellipse"
	KindLine    Kind = "line"
	KindPolygon Kind = "polygon"
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindGroup   Kind = "group"
)

// Valid reports whether k names a known variant.
func (k Kind) Valid() bool {
	switch k {
	case KindRect, KindEllipse, KindLine, KindPolygon, KindText, KindImage, KindGroup:
		return true
	}
	return false
}

const (
	DefaultBackground = "#ffffff"
	DefaultFontFamily = "Arial"
	DefaultFontSize   = 24
)

// Object is one drawable entity of a Scene.
//
// Line endpoints and polygon vertices are relative to (X, Y). Group children
// keep absolute scene coordinates and the group's X/Y/Width/Height is the
// union of its children's bounds.
type Object struct {
	ID   string
	Kind Kind

	X           float64
	Y           float64
	Width       float64
	Height      float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	Rotation    float64

	Text       string
	FontFamily string
	FontSize   float64

	X1 float64
	Y1 float64
	X2 float64
	Y2 float64

	Points []Point

	Src           string
	NaturalWidth  float64
	NaturalHeight float64

	Children []*Object
}

func (o *Object) String() string {
	return fmt.Sprintf("Object (%s) Id:%s at (%.1f, %.1f) %.1fx%.1f", o.Kind, o.ID, o.X, o.Y, o.Width, o.Height)
}

func newObject(kind Kind) *Object {
	return &Object{
		Kind:        kind,
		StrokeWidth: 1,
		Opacity:     1,
	}
}

func NewRect(x, y, w, h float64) *Object {
	o := newObject(KindRect)
	o.X, o.Y, o.Width, o.Height = x, y, w, h
	return o
}

func NewEllipse(x, y, w, h float64) *Object {
	o := newObject(KindEllipse)
	o.X, o.Y, o.Width, o.Height = x, y, w, h
	return o
}

// NewLine creates a line between two absolute points.
func NewLine(x1, y1, x2, y2 float64) *Object {
	o := newObject(KindLine)
	o.X, o.Y = math.Min(x1, x2), math.Min(y1, y2)
	o.X1, o.Y1 = x1-o.X, y1-o.Y
	o.X2, o.Y2 = x2-o.X, y2-o.Y
	o.refreshShape()
	return o
}

// NewPolygon creates a polygon from absolute vertices.
func NewPolygon(pts []Point) *Object {
	o := newObject(KindPolygon)
	b := pointsBounds(pts)
	o.X, o.Y = b.X, b.Y
	o.Points = make([]Point, len(pts))
	for i, p := range pts {
		o.Points[i] = Point{X: p.X - b.X, Y: p.Y - b.Y}
	}
	o.refreshShape()
	return o
}

func NewText(x, y float64, text string) *Object {
	o := newObject(KindText)
	o.X, o.Y = x, y
	o.Text = text
	o.FontFamily = DefaultFontFamily
	o.FontSize = DefaultFontSize
	o.StrokeWidth = 0
	o.refreshShape()
	return o
}

// NewImage creates an image shown at its natural size.
func NewImage(x, y float64, src string, naturalWidth, naturalHeight float64) *Object {
	o := newObject(KindImage)
	o.X, o.Y = x, y
	o.Src = src
	o.NaturalWidth, o.NaturalHeight = naturalWidth, naturalHeight
	o.Width, o.Height = naturalWidth, naturalHeight
	o.StrokeWidth = 0
	return o
}

// newGroup takes ownership of children.
func newGroup(children []*Object) *Object {
	o := newObject(KindGroup)
	o.StrokeWidth = 0
	o.Children = children
	o.refreshShape()
	return o
}

// Bounds returns the axis-aligned area covered by the object, ignoring
// rotation.
func (o *Object) Bounds() Rect {
	switch o.Kind {
	case KindLine:
		b := pointsBounds([]Point{{o.X1, o.Y1}, {o.X2, o.Y2}})
		b.X += o.X
		b.Y += o.Y
		return b
	case KindPolygon:
		b := pointsBounds(o.Points)
		b.X += o.X
		b.Y += o.Y
		return b
	}
	return Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// Translate moves the object, and every child of a group, by (dx, dy).
func (o *Object) Translate(dx, dy float64) {
	o.X += dx
	o.Y += dy
	for _, c := range o.Children {
		c.Translate(dx, dy)
	}
}

// Walk calls fn for o and every descendant, parents first.
func (o *Object) Walk(fn func(*Object)) {
	fn(o)
	for _, c := range o.Children {
		c.Walk(fn)
	}
}

// Clone returns a deep copy of the object, identifiers included.
func (o *Object) Clone() *Object {
	dup := &Object{}
	if err := copier.CopyWithOption(dup, o, copier.Option{DeepCopy: true}); err != nil {
		panic(fmt.Sprintf("state: clone %s: %v", o.ID, err))
	}
	return dup
}

// refreshShape recomputes the derived size of variants whose extent follows
// from other attributes.
func (o *Object) refreshShape() {
	switch o.Kind {
	case KindLine, KindPolygon:
		b := o.Bounds()
		o.Width, o.Height = b.Width, b.Height
	case KindText:
		o.Width, o.Height = estimateText(o.Text, o.FontSize)
	case KindGroup:
		if len(o.Children) == 0 {
			o.Width, o.Height = 0, 0
			return
		}
		b := BoundsOf(o.Children)
		o.X, o.Y, o.Width, o.Height = b.X, b.Y, b.Width, b.Height
	}
}

// estimateText approximates the box of a single-line string. Exact metrics
// belong to the rendering surface.
func estimateText(s string, size float64) (float64, float64) {
	n := len([]rune(s))
	return float64(n) * size * 0.6, size * 1.16
}
