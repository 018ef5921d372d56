package export

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SceneBoard/internal/state"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#ff0000", color.NRGBA{255, 0, 0, 255}, true},
		{"#0F0", color.NRGBA{0, 255, 0, 255}, true},
		{"rgb(1, 2, 3)", color.NRGBA{1, 2, 3, 255}, true},
		{"rgba(10,20,30,0.5)", color.NRGBA{10, 20, 30, 128}, true},
		{"navy", color.NRGBA{0, 0, 128, 255}, true},
		{"", color.NRGBA{}, false},
		{"transparent", color.NRGBA{}, false},
		{"rgba(0,0,0,0)", color.NRGBA{}, false},
		{"#zzzzzz", color.NRGBA{}, false},
		{"not-a-colour", color.NRGBA{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseColor(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestPaintAppliesOpacity(t *testing.T) {
	c, ok := Paint("#000000", 0.5)
	require.True(t, ok)
	assert.Equal(t, uint8(128), c.A)

	_, ok = Paint("#000000", 0)
	assert.False(t, ok)
}

func sample(t *testing.T) *state.Scene {
	t.Helper()
	s := state.NewScene()
	s.SetBackground("#ff0000")
	r := state.NewRect(20, 20, 60, 60)
	r.Fill = "#0000ff"
	r.StrokeWidth = 0
	s.Add(r)
	return s
}

func rgb(c color.Color) [3]uint32 {
	r, g, b, _ := c.RGBA()
	return [3]uint32{r >> 8, g >> 8, b >> 8}
}

func TestRasterPaintsBackgroundAndShapes(t *testing.T) {
	img, err := Raster(sample(t), Options{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
	assert.Equal(t, [3]uint32{255, 0, 0}, rgb(img.At(5, 5)))
	assert.Equal(t, [3]uint32{0, 0, 255}, rgb(img.At(50, 50)))
}

func TestRasterHiddenObjectsAreSkipped(t *testing.T) {
	s := sample(t)
	s.Objects()[0].Opacity = 0
	img, err := Raster(s, Options{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{255, 0, 0}, rgb(img.At(50, 50)))
}

func TestDefaultSizeCoversScene(t *testing.T) {
	s := state.NewScene()
	s.Add(state.NewRect(900, 10, 100, 10))
	w, h := Options{}.size(s)
	assert.Equal(t, 1000.0, w)
	assert.Equal(t, 600.0, h)
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func richScene(t *testing.T) *state.Scene {
	s := sample(t)
	s.Add(state.NewImage(10, 10, pngDataURL(t), 8, 8))
	txt := state.NewText(30, 30, "Grüße")
	txt.Fill = "#2d3748"
	s.Add(txt)
	tri := state.NewPolygon([]state.Point{{X: 100, Y: 50}, {X: 50, Y: 150}, {X: 150, Y: 150}})
	tri.Fill, tri.Stroke, tri.StrokeWidth = "#9f7aea", "#805ad5", 2
	tri.Rotation = 45
	s.Add(tri)
	a := s.Add(state.NewLine(0, 0, 50, 50))
	a.Stroke = "black"
	b := s.Add(state.NewEllipse(200, 200, 40, 20))
	b.Fill = "rgba(0,128,0,0.5)"
	_, err := s.Group([]string{a.ID, b.ID})
	require.NoError(t, err)
	return s
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, richScene(t), Options{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExportFiles(t *testing.T) {
	dir := t.TempDir()
	s := richScene(t)

	pdfPath := filepath.Join(dir, "scene.pdf")
	require.NoError(t, ExportPDF(pdfPath, s, Options{}))
	pngPath := filepath.Join(dir, "scene.png")
	require.NoError(t, ExportPNG(pngPath, s, Options{}))

	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)

	info, err := os.Stat(pdfPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestLoadSource(t *testing.T) {
	img, err := LoadSource(pngDataURL(t))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = LoadSource("")
	assert.Error(t, err)
	_, err = LoadSource("data:image/png;base64,@@@")
	assert.Error(t, err)
	_, err = LoadSource(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
