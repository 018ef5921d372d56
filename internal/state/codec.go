package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Document is the portable form of a Scene used for save/load, history
// snapshots and, through ObjectDoc, the clipboard.
type Document struct {
	Background string      `json:"background"`
	Objects    []ObjectDoc `json:"objects"`
}

// ObjectDoc is the serialized form of one Object. Type is the variant
// discriminator.
type ObjectDoc struct {
	Type        Kind     `json:"type"`
	Left        float64  `json:"left"`
	Top         float64  `json:"top"`
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
	Fill        string   `json:"fill"`
	Stroke      string   `json:"stroke"`
	StrokeWidth float64  `json:"strokeWidth"`
	Opacity     *float64 `json:"opacity,omitempty"`
	Angle       float64  `json:"angle,omitempty"`

	Text       string  `json:"text,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`

	X1 float64 `json:"x1,omitempty"`
	Y1 float64 `json:"y1,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	Points []Point `json:"points,omitempty"`

	Src           string  `json:"src,omitempty"`
	NaturalWidth  float64 `json:"naturalWidth,omitempty"`
	NaturalHeight float64 `json:"naturalHeight,omitempty"`

	Objects []ObjectDoc `json:"objects,omitempty"`
}

// Encode captures every root object, recursively, and the background.
// Identifiers are not part of the document.
func Encode(s *Scene) Document {
	doc := Document{
		Background: s.background,
		Objects:    make([]ObjectDoc, 0, len(s.objects)),
	}
	for _, o := range s.objects {
		doc.Objects = append(doc.Objects, EncodeObject(o))
	}
	return doc
}

// EncodeObject serializes o and its subtree.
func EncodeObject(o *Object) ObjectDoc {
	opacity := sane(o.Opacity)
	d := ObjectDoc{
		Type:        o.Kind,
		Left:        sane(o.X),
		Top:         sane(o.Y),
		Width:       sane(o.Width),
		Height:      sane(o.Height),
		Fill:        o.Fill,
		Stroke:      o.Stroke,
		StrokeWidth: sane(o.StrokeWidth),
		Opacity:     &opacity,
		Angle:       sane(o.Rotation),
	}
	switch o.Kind {
	case KindText:
		d.Text = o.Text
		d.FontFamily = o.FontFamily
		d.FontSize = sane(o.FontSize)
	case KindLine:
		d.X1, d.Y1 = sane(o.X1), sane(o.Y1)
		d.X2, d.Y2 = sane(o.X2), sane(o.Y2)
	case KindPolygon:
		d.Points = make([]Point, len(o.Points))
		for i, p := range o.Points {
			d.Points[i] = Point{X: sane(p.X), Y: sane(p.Y)}
		}
	case KindImage:
		d.Src = o.Src
		d.NaturalWidth = sane(o.NaturalWidth)
		d.NaturalHeight = sane(o.NaturalHeight)
	case KindGroup:
		d.Objects = make([]ObjectDoc, 0, len(o.Children))
		for _, c := range o.Children {
			d.Objects = append(d.Objects, EncodeObject(c))
		}
	}
	return d
}

// Decode rebuilds the objects and background of doc. Objects come back
// without identifiers; the Scene assigns fresh ones when they are inserted.
func Decode(doc Document) ([]*Object, string, error) {
	objs := make([]*Object, 0, len(doc.Objects))
	for i, d := range doc.Objects {
		o, err := decodeObject(d, fmt.Sprintf("objects[%d]", i))
		if err != nil {
			return nil, "", err
		}
		objs = append(objs, o)
	}
	bg := doc.Background
	if bg == "" {
		bg = DefaultBackground
	}
	return objs, bg, nil
}

// DecodeObject rebuilds a single object and its subtree.
func DecodeObject(d ObjectDoc) (*Object, error) {
	return decodeObject(d, "object")
}

func decodeObject(d ObjectDoc, path string) (*Object, error) {
	if !d.Type.Valid() {
		return nil, &DecodeError{Op: path, Err: fmt.Errorf("unsupported type %q", d.Type)}
	}
	o := newObject(d.Type)
	o.X, o.Y = d.Left, d.Top
	o.Width, o.Height = math.Max(0, d.Width), math.Max(0, d.Height)
	o.Fill, o.Stroke = d.Fill, d.Stroke
	o.StrokeWidth = math.Max(0, d.StrokeWidth)
	if d.Opacity != nil {
		o.Opacity = clamp01(*d.Opacity)
	}
	o.Rotation = d.Angle

	switch d.Type {
	case KindText:
		o.Text = d.Text
		o.FontFamily = d.FontFamily
		if o.FontFamily == "" {
			o.FontFamily = DefaultFontFamily
		}
		o.FontSize = d.FontSize
		if o.FontSize <= 0 {
			o.FontSize = DefaultFontSize
		}
	case KindLine:
		o.X1, o.Y1, o.X2, o.Y2 = d.X1, d.Y1, d.X2, d.Y2
		o.refreshShape()
	case KindPolygon:
		o.Points = append([]Point(nil), d.Points...)
		o.refreshShape()
	case KindImage:
		o.Src = d.Src
		o.NaturalWidth, o.NaturalHeight = d.NaturalWidth, d.NaturalHeight
	case KindGroup:
		o.Children = make([]*Object, 0, len(d.Objects))
		for i, cd := range d.Objects {
			c, err := decodeObject(cd, fmt.Sprintf("%s.objects[%d]", path, i))
			if err != nil {
				return nil, err
			}
			o.Children = append(o.Children, c)
		}
		if len(o.Children) > 0 {
			o.refreshShape()
		}
	}
	return o, nil
}

// Marshal encodes doc as JSON.
func Marshal(doc Document) ([]byte, error) {
	return json.Marshal(doc)
}

// MarshalObject encodes a single object document as JSON.
func MarshalObject(d ObjectDoc) ([]byte, error) {
	return json.Marshal(d)
}

// Unmarshal parses a JSON document. Empty input, invalid JSON and values of
// the wrong JSON type all fail with a *DecodeError.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := unmarshalStrict("document", data, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// UnmarshalObject parses a single serialized object.
func UnmarshalObject(data []byte) (ObjectDoc, error) {
	var d ObjectDoc
	if err := unmarshalStrict("object", data, &d); err != nil {
		return ObjectDoc{}, err
	}
	return d, nil
}

// ErrEmptyDocument is wrapped by the DecodeError for blank input.
var ErrEmptyDocument = errors.New("empty document")

func unmarshalStrict(op string, data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &DecodeError{Op: op, Err: ErrEmptyDocument}
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

// DecodeScene parses data into a fresh Scene.
func DecodeScene(data []byte) (*Scene, error) {
	doc, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	objs, bg, err := Decode(doc)
	if err != nil {
		return nil, err
	}
	s := NewScene()
	s.Replace(objs, bg)
	return s, nil
}

// Restore replaces the content of s with the scene in data. On error s is
// left untouched.
func (s *Scene) Restore(data []byte) error {
	doc, err := Unmarshal(data)
	if err != nil {
		return err
	}
	return s.Apply(doc)
}

// Apply replaces the content of s with doc. On error s is left untouched.
func (s *Scene) Apply(doc Document) error {
	objs, bg, err := Decode(doc)
	if err != nil {
		return decodeErr("document", err)
	}
	s.Replace(objs, bg)
	return nil
}

// snapshotBytes encodes s. The document only holds strings, finite floats
// and slices of them, so marshalling cannot fail.
func snapshotBytes(s *Scene) []byte {
	data, err := Marshal(Encode(s))
	if err != nil {
		panic(fmt.Sprintf("state: encode scene: %v", err))
	}
	return data
}

func sane(f float64) float64 {
	if finite(f) {
		return f
	}
	return 0
}
