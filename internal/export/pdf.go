package export

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/state"
)

// Core PDF fonts. Any other family falls back to Helvetica.
var pdfFonts = map[string]string{
	"arial":           "Arial",
	"helvetica":       "Helvetica",
	"times":           "Times",
	"times new roman": "Times",
	"courier":         "Courier",
	"courier new":     "Courier",
}

type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	images int
}

// WritePDF renders the scene onto a single page sized like the canvas, one
// point per scene unit.
func WritePDF(w io.Writer, scene *state.Scene, opts Options) error {
	width, height := opts.size(scene)
	p := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	pw := &pdfWriter{pdf: p, tr: p.UnicodeTranslatorFromDescriptor("")}
	if bg, ok := ParseColor(scene.Background()); ok {
		p.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		p.Rect(0, 0, width, height, "F")
	}
	for _, o := range scene.Objects() {
		pw.draw(o, 1)
	}
	if err := p.Error(); err != nil {
		return fmt.Errorf("export: pdf: %w", err)
	}
	return p.Output(w)
}

// ExportPDF writes the scene to the file at path.
func ExportPDF(path string, scene *state.Scene, opts Options) error {
	var buf bytes.Buffer
	if err := WritePDF(&buf, scene, opts); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func (w *pdfWriter) draw(o *state.Object, alpha float64) {
	alpha *= o.Opacity
	if alpha <= 0 {
		return
	}
	p := w.pdf
	p.TransformBegin()
	defer p.TransformEnd()
	if o.Rotation != 0 {
		b := o.Bounds()
		// PDF rotates counter-clockwise; scene angles are clockwise.
		p.TransformRotate(-o.Rotation, b.X+b.Width/2, b.Y+b.Height/2)
	}
	p.SetAlpha(alpha, "Normal")

	switch o.Kind {
	case state.KindRect:
		if style := w.style(o); style != "" {
			p.Rect(o.X, o.Y, o.Width, o.Height, style)
		}
	case state.KindEllipse:
		if style := w.style(o); style != "" {
			p.Ellipse(o.X+o.Width/2, o.Y+o.Height/2, o.Width/2, o.Height/2, 0, style)
		}
	case state.KindLine:
		if w.setStroke(o) {
			p.Line(o.X+o.X1, o.Y+o.Y1, o.X+o.X2, o.Y+o.Y2)
		}
	case state.KindPolygon:
		pts := make([]gofpdf.PointType, len(o.Points))
		for i, pt := range o.Points {
			pts[i] = gofpdf.PointType{X: o.X + pt.X, Y: o.Y + pt.Y}
		}
		if style := w.style(o); style != "" && len(pts) > 0 {
			p.Polygon(pts, style)
		}
	case state.KindText:
		c, ok := ParseColor(o.Fill)
		if !ok || o.Text == "" {
			return
		}
		family, found := pdfFonts[strings.ToLower(o.FontFamily)]
		if !found {
			family = "Helvetica"
		}
		p.SetFont(family, "", o.FontSize)
		p.SetTextColor(int(c.R), int(c.G), int(c.B))
		p.Text(o.X, o.Y+o.FontSize, w.tr(o.Text))
	case state.KindImage:
		w.image(o)
	case state.KindGroup:
		for _, c := range o.Children {
			w.draw(c, alpha)
		}
	}
}

// style sets the fill and draw colours of o and returns the gofpdf style
// string, empty when there is nothing to paint.
func (w *pdfWriter) style(o *state.Object) string {
	style := ""
	if c, ok := ParseColor(o.Fill); ok {
		w.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		style += "F"
	}
	if w.setStroke(o) {
		style += "D"
	}
	return style
}

func (w *pdfWriter) setStroke(o *state.Object) bool {
	c, ok := ParseColor(o.Stroke)
	if !ok || o.StrokeWidth <= 0 {
		return false
	}
	w.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	w.pdf.SetLineWidth(o.StrokeWidth)
	return true
}

// image re-encodes the source as PNG so every decodable format embeds.
func (w *pdfWriter) image(o *state.Object) {
	img, err := LoadSource(o.Src)
	if err != nil {
		log.WithError(err).WithField("object", o.ID).Warn("skipping image")
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.WithError(err).WithField("object", o.ID).Warn("skipping image")
		return
	}
	w.images++
	name := fmt.Sprintf("image-%d", w.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	w.pdf.RegisterImageOptionsReader(name, opts, &buf)
	w.pdf.ImageOptions(name, o.X, o.Y, o.Width, o.Height, false, opts, 0, "")
}
