package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"SharedBoard/internal/board"
	"SharedBoard/internal/raster"
	"SharedBoard/internal/state"
)

// Options is everything the window needs from main.
type Options struct {
	Title   string
	Canvas  *raster.Canvas
	Board   *board.Board
	Session *board.Session
	Palette []state.NamedColor
	// Peer is shown in the status line.
	Peer   string
	Logger *slog.Logger
}

// RunApp opens the whiteboard window and blocks until it is closed. The
// session runs for as long as the window is open.
func RunApp(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "ui")

	a := app.New()
	w := a.NewWindow(opts.Title)

	palette := opts.Palette
	if len(palette) == 0 {
		palette = state.DefaultPalette
	}
	toolbar := NewToolbar(palette, w)
	toolbar.OnExport = func(format string) {
		exportBoard(w, opts.Canvas, format, log)
	}

	bw := NewBoardWidget(opts.Canvas, opts.Session, toolbar.Tools)
	opts.Board.OnChange = bw.Redraw

	status := widget.NewLabel("Connected to " + opts.Peer)
	var lastErr error
	showStatus := func() {
		text := fmt.Sprintf("%s | %s", opts.Peer, opts.Session.State().Counters())
		if lastErr != nil {
			text += " | " + lastErr.Error()
		}
		status.SetText(text)
	}
	opts.Session.OnStatus = func(err error) {
		fyne.Do(func() {
			lastErr = err
			showStatus()
		})
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	closed := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- opts.Session.Run(ctx)
	}()
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				fyne.Do(showStatus)
			}
		}
	}()
	go func() {
		// A signal or parent cancellation closes the window too.
		select {
		case <-parent.Done():
			fyne.Do(a.Quit)
		case <-closed:
		}
	}()

	w.SetContent(container.NewBorder(toolbar.Object(), status, nil, nil, bw))
	width, height := opts.Canvas.Size()
	w.Resize(fyne.NewSize(float32(width), float32(height)+80))
	w.ShowAndRun()

	close(closed)
	cancel()
	err := <-done
	log.Info("session finished", "counters", opts.Session.State().Counters().String())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
