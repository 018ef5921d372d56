package state

import "math"

// Attr names an editable attribute of an Object.
type Attr string

const (
	AttrX           Attr = "x"
	AttrY           Attr = "y"
	AttrWidth       Attr = "width"
	AttrHeight      Attr = "height"
	AttrFill        Attr = "fill"
	AttrStroke      Attr = "stroke"
	AttrStrokeWidth Attr = "strokeWidth"
	AttrOpacity     Attr = "opacity"
	AttrRotation    Attr = "rotation"

	AttrText       Attr = "text"
	AttrFontFamily Attr = "fontFamily"
	AttrFontSize   Attr = "fontSize"

	AttrX1 Attr = "x1"
	AttrY1 Attr = "y1"
	AttrX2 Attr = "x2"
	AttrY2 Attr = "y2"

	AttrPoints Attr = "points"

	AttrSrc           Attr = "src"
	AttrNaturalWidth  Attr = "naturalWidth"
	AttrNaturalHeight Attr = "naturalHeight"
)

// Get returns the value of attr. Line endpoints are reported in absolute
// scene coordinates; polygon points relative to the object position.
func (o *Object) Get(attr Attr) (any, bool) {
	switch attr {
	case AttrX:
		return o.X, true
	case AttrY:
		return o.Y, true
	case AttrWidth:
		return o.Width, true
	case AttrHeight:
		return o.Height, true
	case AttrFill:
		return o.Fill, true
	case AttrStroke:
		return o.Stroke, true
	case AttrStrokeWidth:
		return o.StrokeWidth, true
	case AttrOpacity:
		return o.Opacity, true
	case AttrRotation:
		return o.Rotation, true
	}

	switch o.Kind {
	case KindText:
		switch attr {
		case AttrText:
			return o.Text, true
		case AttrFontFamily:
			return o.FontFamily, true
		case AttrFontSize:
			return o.FontSize, true
		}
	case KindLine:
		switch attr {
		case AttrX1:
			return o.X + o.X1, true
		case AttrY1:
			return o.Y + o.Y1, true
		case AttrX2:
			return o.X + o.X2, true
		case AttrY2:
			return o.Y + o.Y2, true
		}
	case KindPolygon:
		if attr == AttrPoints {
			return append([]Point(nil), o.Points...), true
		}
	case KindImage:
		switch attr {
		case AttrSrc:
			return o.Src, true
		case AttrNaturalWidth:
			return o.NaturalWidth, true
		case AttrNaturalHeight:
			return o.NaturalHeight, true
		}
	}
	return nil, false
}

// Set assigns attr and reports whether anything was applied. Attributes the
// variant does not recognise, values of the wrong type and non-finite
// numbers are ignored.
func (o *Object) Set(attr Attr, value any) bool {
	switch attr {
	case AttrX, AttrY:
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		if attr == AttrX {
			o.Translate(v-o.X, 0)
		} else {
			o.Translate(0, v-o.Y)
		}
		return true
	case AttrWidth, AttrHeight:
		switch o.Kind {
		case KindGroup, KindLine, KindPolygon, KindText:
			return false
		}
		v, ok := toFloat(value)
		if !ok || v < 0 {
			return false
		}
		if attr == AttrWidth {
			o.Width = v
		} else {
			o.Height = v
		}
		return true
	case AttrFill:
		return setString(&o.Fill, value)
	case AttrStroke:
		return setString(&o.Stroke, value)
	case AttrStrokeWidth:
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.StrokeWidth = math.Max(0, v)
		return true
	case AttrOpacity:
		v, ok := toFloat(value)
		if !ok {
			return false
		}
		o.Opacity = clamp01(v)
		return true
	case AttrRotation:
		return setFloat(&o.Rotation, value)
	}

	switch o.Kind {
	case KindText:
		return o.setText(attr, value)
	case KindLine:
		return o.setLine(attr, value)
	case KindPolygon:
		if attr != AttrPoints {
			return false
		}
		pts, ok := value.([]Point)
		if !ok {
			return false
		}
		for _, p := range pts {
			if !finite(p.X) || !finite(p.Y) {
				return false
			}
		}
		o.Points = append([]Point(nil), pts...)
		o.refreshShape()
		return true
	case KindImage:
		if attr == AttrSrc {
			return setString(&o.Src, value)
		}
	}
	return false
}

func (o *Object) setText(attr Attr, value any) bool {
	switch attr {
	case AttrText:
		if !setString(&o.Text, value) {
			return false
		}
	case AttrFontFamily:
		if v, ok := value.(string); !ok || v == "" {
			return false
		}
		return setString(&o.FontFamily, value)
	case AttrFontSize:
		v, ok := toFloat(value)
		if !ok || v <= 0 {
			return false
		}
		o.FontSize = v
	default:
		return false
	}
	o.refreshShape()
	return true
}

func (o *Object) setLine(attr Attr, value any) bool {
	v, ok := toFloat(value)
	if !ok {
		return false
	}
	switch attr {
	case AttrX1:
		o.X1 = v - o.X
	case AttrY1:
		o.Y1 = v - o.Y
	case AttrX2:
		o.X2 = v - o.X
	case AttrY2:
		o.Y2 = v - o.Y
	default:
		return false
	}
	o.refreshShape()
	return true
}

func setString(dst *string, value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	*dst = s
	return true
}

func setFloat(dst *float64, value any) bool {
	v, ok := toFloat(value)
	if !ok {
		return false
	}
	*dst = v
	return true
}

func toFloat(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	default:
		return 0, false
	}
	return f, finite(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
