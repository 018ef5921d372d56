package ui

import (
	"context"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/config"
	"SceneBoard/internal/editor"
	"SceneBoard/internal/state"
	"SceneBoard/internal/store"
)

const appID = "io.sceneboard.editor"

// Options configures an editor window.
type Options struct {
	Config config.Config
	// Store enables the library actions when set.
	Store store.Store
	// OnScene receives the document after every change to the scene.
	OnScene func(state.Document)
	// Status is shown in the status bar on start.
	Status string
}

// Editor is one editor window around a Session.
type Editor struct {
	window  fyne.Window
	session *editor.Session
	board   *Board
	props   *propertiesPanel
	status  *widget.Label
	store   store.Store
}

// NewEditor builds the editor window. The Session posts asynchronous results
// through fyne.Do, so the app must be running for imports to complete.
func NewEditor(a fyne.App, opts Options) *Editor {
	cfg := opts.Config
	clip := editor.NewClipboard(NewPreferencesSlot(a.Preferences()), cfg.Editor.ClipboardKey)
	sess := editor.NewSession(editor.Options{
		CanvasWidth:  cfg.Canvas.Width,
		CanvasHeight: cfg.Canvas.Height,
		HistoryLimit: cfg.Editor.HistoryLimit,
		Clipboard:    clip,
		Loop:         editor.LoopFunc(fyne.Do),
	})
	sess.Scene().SetBackground(cfg.Canvas.Background)

	e := &Editor{
		window:  a.NewWindow("SceneBoard"),
		session: sess,
		status:  widget.NewLabel("Ready"),
		store:   opts.Store,
	}
	if opts.Status != "" {
		e.status.SetText(opts.Status)
	}
	e.board = NewBoard(sess)
	e.board.OnError = e.fail
	e.props = newPropertiesPanel(e)

	sess.OnChange(func(c editor.Change) {
		e.board.Refresh()
		e.props.update()
		if c.Scene && opts.OnScene != nil {
			opts.OnScene(sess.Document())
		}
	})

	content := container.NewBorder(
		e.newToolbar(),
		e.status,
		nil,
		e.props.container(),
		container.NewScroll(e.board),
	)
	e.window.SetContent(content)
	e.window.SetMainMenu(e.newMenu())
	e.bindShortcuts(e.window.Canvas())
	e.window.Resize(fyne.NewSize(1180, 760))
	e.window.SetOnClosed(sess.Close)
	e.props.update()
	return e
}

func (e *Editor) Session() *editor.Session { return e.session }

func (e *Editor) Window() fyne.Window { return e.window }

// RunEditor opens an editor, optionally loading the document at path, and
// blocks until the window is closed.
func RunEditor(opts Options, path string) error {
	a := app.NewWithID(appID)
	e := NewEditor(a, opts)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		e.setStatus("Loading " + path + "...")
		e.session.ImportDocument(f, path, e.documentLoaded)
	}
	e.window.ShowAndRun()
	return nil
}

func (e *Editor) setStatus(text string) {
	e.status.SetText(text)
}

func (e *Editor) fail(err error) {
	log.WithError(err).WithField("component", "ui").Warn("action failed")
	e.setStatus("Error: " + err.Error())
}

// run performs an action and reports failures in the status bar.
func (e *Editor) run(fn func() error) {
	if err := fn(); err != nil {
		e.fail(err)
	}
}

func (e *Editor) undo() {
	if !e.session.Undo() {
		e.setStatus("Nothing to undo")
	}
}

func (e *Editor) redo() {
	if !e.session.Redo() {
		e.setStatus("Nothing to redo")
	}
}

func (e *Editor) copy() {
	e.run(func() error {
		if e.session.Selection().Empty() {
			return nil
		}
		if err := e.session.Copy(); err != nil {
			return err
		}
		e.setStatus("Copied")
		return nil
	})
}

func (e *Editor) paste() {
	e.run(func() error {
		obj, err := e.session.Paste()
		if err != nil {
			return err
		}
		if obj == nil {
			e.setStatus("Clipboard is empty")
		}
		return nil
	})
}

func (e *Editor) duplicate() {
	e.run(func() error {
		_, err := e.session.Duplicate()
		return err
	})
}

func (e *Editor) remove() {
	e.run(e.session.Delete)
}

func (e *Editor) group() {
	e.run(func() error {
		g, err := e.session.Group()
		if err != nil {
			return err
		}
		if g == nil {
			e.setStatus("Select two or more objects to group")
		}
		return nil
	})
}

func (e *Editor) ungroup() {
	e.run(func() error {
		_, err := e.session.Ungroup()
		return err
	})
}

func (e *Editor) newMenu() *fyne.MainMenu {
	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", e.openDocument),
		fyne.NewMenuItem("Save...", e.saveDocument),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Image...", e.importImage),
		fyne.NewMenuItem("Export PNG...", func() { e.exportScene(formatPNG) }),
		fyne.NewMenuItem("Export PDF...", func() { e.exportScene(formatPDF) }),
	)
	if e.store != nil {
		file.Items = append(file.Items,
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Save to Library", e.saveToLibrary),
			fyne.NewMenuItem("Open from Library...", e.openFromLibrary),
		)
	}
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", e.undo),
		fyne.NewMenuItem("Redo", e.redo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy", e.copy),
		fyne.NewMenuItem("Paste", e.paste),
		fyne.NewMenuItem("Duplicate", e.duplicate),
		fyne.NewMenuItem("Delete", e.remove),
	)
	arrange := fyne.NewMenu("Arrange",
		fyne.NewMenuItem("Group", e.group),
		fyne.NewMenuItem("Ungroup", e.ungroup),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Bring to Front", func() { e.run(e.session.BringToFront) }),
		fyne.NewMenuItem("Bring Forward", func() { e.run(e.session.BringForward) }),
		fyne.NewMenuItem("Send Backward", func() { e.run(e.session.SendBackward) }),
		fyne.NewMenuItem("Send to Back", func() { e.run(e.session.SendToBack) }),
	)
	return fyne.NewMainMenu(file, edit, arrange)
}

func (e *Editor) bindShortcuts(c fyne.Canvas) {
	mod := fyne.KeyModifierShortcutDefault
	bind := func(key fyne.KeyName, m fyne.KeyModifier, fn func()) {
		c.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: m}, func(fyne.Shortcut) { fn() })
	}
	bind(fyne.KeyZ, mod, e.undo)
	bind(fyne.KeyY, mod, e.redo)
	bind(fyne.KeyZ, mod|fyne.KeyModifierShift, e.redo)
	bind(fyne.KeyC, mod, e.copy)
	bind(fyne.KeyV, mod, e.paste)
	bind(fyne.KeyD, mod, e.duplicate)
	bind(fyne.KeyG, mod, e.group)
	bind(fyne.KeyG, mod|fyne.KeyModifierShift, e.ungroup)
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			e.remove()
		}
	})
}

func (e *Editor) saveToLibrary() {
	id, err := e.session.Save(context.Background(), e.store)
	if err != nil {
		e.fail(err)
		return
	}
	e.setStatus("Saved to library as " + id)
}

func (e *Editor) openFromLibrary() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("document id")
	items := []*widget.FormItem{widget.NewFormItem("ID", entry)}
	dialog.ShowForm("Open from Library", "Open", "Cancel", items, func(ok bool) {
		if !ok || entry.Text == "" {
			return
		}
		if err := e.session.Load(context.Background(), e.store, entry.Text); err != nil {
			e.fail(err)
			return
		}
		e.setStatus("Opened " + entry.Text)
	}, e.window)
}
