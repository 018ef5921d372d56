package editor

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/h2non/filetype"
	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"SceneBoard/internal/state"
)

// ErrUnsupportedImage is wrapped when an imported file is not a raster image
// the editor can decode.
var ErrUnsupportedImage = errors.New("unsupported image type")

// AsyncResourceError reports a failed file or image read. Nothing in the
// scene changes when it is returned.
type AsyncResourceError struct {
	Name string
	Err  error
}

func (e *AsyncResourceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("editor: resource %q: %v", e.Name, e.Err)
}

func (e *AsyncResourceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type decodedImage struct {
	src           string
	width, height int
}

// ImportImage reads and decodes r in the background, then adds the image on
// top of the scene as one undo step and calls done on the Loop. Images wider
// than the canvas are scaled down. When the session was closed in the
// meantime the image is dropped and done receives ErrClosed.
func (s *Session) ImportImage(r io.Reader, name string, done func(*state.Object, error)) {
	if done == nil {
		done = func(*state.Object, error) {}
	}
	go func() {
		img, err := readImage(r, name)
		s.loop.Post(func() {
			if s.closed {
				log.WithFields(log.Fields{"component": "editor", "name": name}).Debug("image import discarded")
				done(nil, ErrClosed)
				return
			}
			if err != nil {
				log.WithError(err).WithField("component", "editor").Warn("image import failed")
				done(nil, err)
				return
			}
			obj := s.imageObject(img)
			obj, err = s.Add(obj)
			done(obj, err)
		})
	}()
}

func (s *Session) imageObject(img decodedImage) *state.Object {
	nw, nh := float64(img.width), float64(img.height)
	obj := state.NewImage(0, 0, img.src, nw, nh)
	if nw > s.canvasWidth {
		scale := s.canvasWidth / (nw * 1.2)
		obj.Set(state.AttrWidth, nw*scale)
		obj.Set(state.AttrHeight, nh*scale)
	}
	return obj
}

func readImage(r io.Reader, name string) (decodedImage, error) {
	data, err := readAll(r)
	if err != nil {
		return decodedImage{}, &AsyncResourceError{Name: name, Err: err}
	}
	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return decodedImage{}, &AsyncResourceError{Name: name, Err: ErrUnsupportedImage}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return decodedImage{}, &AsyncResourceError{Name: name, Err: fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, kind.MIME.Value, err)}
	}
	src := "data:" + kind.MIME.Value + ";base64," + base64.StdEncoding.EncodeToString(data)
	return decodedImage{src: src, width: cfg.Width, height: cfg.Height}, nil
}

// ImportDocument reads and parses a scene document in the background, then
// replaces the scene with it as one undo step and calls done on the Loop.
// Read failures are *AsyncResourceError, malformed documents
// *state.DecodeError; either way the scene is untouched.
func (s *Session) ImportDocument(r io.Reader, name string, done func(error)) {
	if done == nil {
		done = func(error) {}
	}
	go func() {
		var doc state.Document
		data, err := readAll(r)
		if err != nil {
			err = &AsyncResourceError{Name: name, Err: err}
		} else {
			doc, err = state.Unmarshal(data)
		}
		s.loop.Post(func() {
			if s.closed {
				log.WithFields(log.Fields{"component": "editor", "name": name}).Debug("document import discarded")
				done(ErrClosed)
				return
			}
			if err == nil {
				err = s.Apply("open", doc)
			}
			if err != nil {
				log.WithError(err).WithField("component", "editor").Warn("document import failed")
			}
			done(err)
		})
	}()
}

func readAll(r io.Reader) ([]byte, error) {
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	return io.ReadAll(r)
}
