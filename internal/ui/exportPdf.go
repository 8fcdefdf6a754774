package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"SharedBoard/internal/export"
	"SharedBoard/internal/raster"
)

// exportBoard asks for a destination and writes the current canvas to it
// as format ("png" or "pdf").
func exportBoard(win fyne.Window, c *raster.Canvas, format string, log *slog.Logger) {
	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if w == nil {
			return // cancelled
		}
		defer w.Close()

		img := c.Image()
		switch format {
		case "pdf":
			err = export.PDF(w, img)
		case "png":
			err = export.PNG(w, img)
		default:
			err = fmt.Errorf("unknown export format %q", format)
		}
		if err != nil {
			log.Error("export failed", "format", format, "path", w.URI().Path(), "err", err)
			dialog.ShowError(err, win)
			return
		}
		log.Info("board exported", "format", format, "path", w.URI().Path())
	}, win)
	save.SetFileName("board." + format)
	save.Show()
}
