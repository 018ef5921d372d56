package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/export"
	"SceneBoard/internal/state"
)

type format string

const (
	formatPNG format = "png"
	formatPDF format = "pdf"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff"}

func (e *Editor) openDocument() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			e.fail(err)
			return
		}
		if reader == nil {
			return
		}
		e.setStatus("Loading file...")
		e.session.ImportDocument(reader, reader.URI().Name(), e.documentLoaded)
	}, e.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

func (e *Editor) documentLoaded(err error) {
	if err != nil {
		e.fail(err)
		return
	}
	e.setStatus(fmt.Sprintf("Loaded %d objects", e.session.Scene().Len()))
}

func (e *Editor) saveDocument() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			e.fail(err)
			return
		}
		if writer == nil {
			return
		}
		if err := writeDocument(writer, e.session.Document()); err != nil {
			e.fail(err)
			return
		}
		e.setStatus("Saved " + writer.URI().Name())
	}, e.window)
	d.SetFileName("scene.json")
	d.Show()
}

// writeDocument writes doc as indented JSON and closes w.
func writeDocument(w io.WriteCloser, doc state.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		w.Close()
		return fmt.Errorf("encode document: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write document: %w", err)
	}
	return w.Close()
}

func (e *Editor) importImage() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			e.fail(err)
			return
		}
		if reader == nil {
			return
		}
		name := reader.URI().Name()
		e.setStatus("Importing " + name + "...")
		e.session.ImportImage(reader, name, func(obj *state.Object, err error) {
			if err != nil {
				e.fail(err)
				return
			}
			e.setStatus(fmt.Sprintf("Imported %s (%.0fx%.0f)", name, obj.NaturalWidth, obj.NaturalHeight))
		})
	}, e.window)
	d.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	d.Show()
}

func (e *Editor) exportScene(f format) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			e.fail(err)
			return
		}
		if writer == nil {
			return
		}
		if err := e.writeExport(writer, f); err != nil {
			e.fail(err)
			return
		}
		log.WithFields(log.Fields{"component": "ui", "file": writer.URI().Name()}).Info("scene exported")
		e.setStatus("Exported " + writer.URI().Name())
	}, e.window)
	d.SetFileName("scene." + string(f))
	d.SetFilter(storage.NewExtensionFileFilter([]string{"." + string(f)}))
	d.Show()
}

// writeExport renders the scene at canvas size to w and closes it.
func (e *Editor) writeExport(w io.WriteCloser, f format) error {
	width, height := e.session.CanvasSize()
	opts := export.Options{Width: width, Height: height}
	var err error
	switch f {
	case formatPNG:
		opts.Font = e.board.opts.Font
		err = export.WritePNG(w, e.session.Scene(), opts)
	case formatPDF:
		err = export.WritePDF(w, e.session.Scene(), opts)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
