package ui

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	snet "SceneBoard/internal/net"
	"SceneBoard/internal/state"
)

// RunViewer opens a read-only window that follows the shared scene at url
// until the window is closed.
func RunViewer(url string, width, height float64) error {
	a := app.NewWithID(appID + ".viewer")
	w := a.NewWindow("SceneBoard - " + url)
	board := NewViewer(width, height)
	status := widget.NewLabel("Connecting to " + url + "...")
	w.SetContent(container.NewBorder(nil, status, nil, nil, container.NewScroll(board)))
	w.Resize(fyne.NewSize(float32(width)+40, float32(height)+80))

	ctx, cancel := context.WithCancel(context.Background())
	w.SetOnClosed(cancel)

	go func() {
		err := snet.Follow(ctx, url, func(doc state.Document) {
			fyne.Do(func() {
				if err := board.Show(doc); err != nil {
					log.WithError(err).WithField("component", "viewer").Warn("bad scene from host")
					status.SetText("Received an unreadable scene")
					return
				}
				status.SetText(fmt.Sprintf("Connected to %s (%d objects)", url, board.Scene().Len()))
			})
		})
		if errors.Is(err, context.Canceled) {
			return
		}
		fyne.Do(func() {
			if err != nil {
				status.SetText("Disconnected: " + err.Error())
				return
			}
			status.SetText("Host closed the session")
		})
	}()

	w.ShowAndRun()
	cancel()
	return nil
}
