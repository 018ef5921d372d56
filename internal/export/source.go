package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"SceneBoard/internal/state"
)

var errNoSource = errors.New("image has no source")

// LoadSource decodes an image object's src: a base64 data URL or a file
// path.
func LoadSource(src string) (image.Image, error) {
	if src == "" {
		return nil, errNoSource
	}
	var data []byte
	if strings.HasPrefix(src, "data:") {
		comma := strings.IndexByte(src, ',')
		if comma < 0 {
			return nil, fmt.Errorf("export: malformed data url")
		}
		meta, payload := src[len("data:"):comma], src[comma+1:]
		var err error
		if strings.HasSuffix(meta, ";base64") {
			data, err = base64.StdEncoding.DecodeString(payload)
		} else {
			var s string
			s, err = url.PathUnescape(payload)
			data = []byte(s)
		}
		if err != nil {
			return nil, fmt.Errorf("export: data url: %w", err)
		}
	} else {
		var err error
		data, err = os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("export: decode image: %w", err)
	}
	return img, nil
}

// Options controls both exporters. Zero width or height uses the scene
// bounds, never smaller than the default canvas.
type Options struct {
	Width  float64
	Height float64
	// Font (TrueType data) or FontPath is used for text in raster output.
	// Without either, text objects are skipped in PNG; PDF always uses its
	// built-in fonts.
	Font     []byte
	FontPath string
}

func (o Options) size(scene *state.Scene) (float64, float64) {
	w, h := o.Width, o.Height
	b := scene.Bounds()
	if w <= 0 {
		w = math.Max(800, b.Right())
	}
	if h <= 0 {
		h = math.Max(600, b.Bottom())
	}
	return w, h
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
