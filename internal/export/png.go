package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/state"
)

type rasterizer struct {
	dc   *gg.Context
	font *text.FontSource
}

func newRasterizer(scene *state.Scene, opts Options) (*rasterizer, error) {
	w, h := opts.size(scene)
	r := &rasterizer{dc: gg.NewContext(int(math.Ceil(w)), int(math.Ceil(h)))}
	var err error
	switch {
	case opts.Font != nil:
		r.font, err = text.NewFontSource(opts.Font)
	case opts.FontPath != "":
		r.font, err = text.NewFontSourceFromFile(opts.FontPath)
	}
	if err != nil {
		r.dc.Close()
		return nil, fmt.Errorf("export: font: %w", err)
	}
	bg, ok := ParseColor(scene.Background())
	if !ok {
		bg = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	r.dc.ClearWithColor(gg.FromColor(bg))
	for _, o := range scene.Objects() {
		if err := r.draw(o, 1); err != nil {
			r.dc.Close()
			return nil, err
		}
	}
	return r, nil
}

// Raster paints the scene bottom to top.
func Raster(scene *state.Scene, opts Options) (image.Image, error) {
	r, err := newRasterizer(scene, opts)
	if err != nil {
		return nil, err
	}
	defer r.dc.Close()
	return r.dc.Image(), nil
}

// WritePNG renders the scene as PNG to w.
func WritePNG(w io.Writer, scene *state.Scene, opts Options) error {
	r, err := newRasterizer(scene, opts)
	if err != nil {
		return err
	}
	defer r.dc.Close()
	return r.dc.EncodePNG(w)
}

// ExportPNG renders the scene to the file at path.
func ExportPNG(path string, scene *state.Scene, opts Options) error {
	var buf bytes.Buffer
	if err := WritePNG(&buf, scene, opts); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func (r *rasterizer) draw(o *state.Object, alpha float64) error {
	alpha *= o.Opacity
	if alpha <= 0 {
		return nil
	}
	dc := r.dc
	dc.Push()
	defer dc.Pop()
	if o.Rotation != 0 {
		b := o.Bounds()
		dc.RotateAbout(o.Rotation*math.Pi/180, b.X+b.Width/2, b.Y+b.Height/2)
	}

	switch o.Kind {
	case state.KindRect:
		dc.DrawRectangle(o.X, o.Y, o.Width, o.Height)
		return r.paint(o, alpha)
	case state.KindEllipse:
		dc.DrawEllipse(o.X+o.Width/2, o.Y+o.Height/2, o.Width/2, o.Height/2)
		return r.paint(o, alpha)
	case state.KindLine:
		dc.MoveTo(o.X+o.X1, o.Y+o.Y1)
		dc.LineTo(o.X+o.X2, o.Y+o.Y2)
		return r.stroke(o, alpha)
	case state.KindPolygon:
		for i, p := range o.Points {
			if i == 0 {
				dc.MoveTo(o.X+p.X, o.Y+p.Y)
			} else {
				dc.LineTo(o.X+p.X, o.Y+p.Y)
			}
		}
		if len(o.Points) > 0 {
			dc.ClosePath()
		}
		return r.paint(o, alpha)
	case state.KindText:
		if r.font == nil || o.Text == "" {
			return nil
		}
		c, ok := Paint(o.Fill, alpha)
		if !ok {
			return nil
		}
		dc.SetFont(r.font.Face(o.FontSize))
		dc.SetColor(c)
		dc.DrawString(o.Text, o.X, o.Y+o.FontSize)
		return nil
	case state.KindImage:
		img, err := LoadSource(o.Src)
		if err != nil {
			log.WithError(err).WithField("object", o.ID).Warn("skipping image")
			return nil
		}
		dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
			X: o.X, Y: o.Y, DstWidth: o.Width, DstHeight: o.Height, Opacity: alpha,
		})
		return nil
	case state.KindGroup:
		for _, c := range o.Children {
			if err := r.draw(c, alpha); err != nil {
				return err
			}
		}
	}
	return nil
}

// paint fills then strokes the current path.
func (r *rasterizer) paint(o *state.Object, alpha float64) error {
	if c, ok := Paint(o.Fill, alpha); ok {
		r.dc.SetColor(c)
		if err := r.dc.FillPreserve(); err != nil {
			return err
		}
	}
	return r.stroke(o, alpha)
}

func (r *rasterizer) stroke(o *state.Object, alpha float64) error {
	c, ok := Paint(o.Stroke, alpha)
	if !ok || o.StrokeWidth <= 0 {
		r.dc.ClearPath()
		return nil
	}
	r.dc.SetColor(c)
	r.dc.SetLineWidth(o.StrokeWidth)
	return r.dc.Stroke()
}
