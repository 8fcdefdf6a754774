package ui

import (
	"math"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"SharedBoard/internal/board"
	"SharedBoard/internal/raster"
	"SharedBoard/internal/state"
)

// BoardWidget shows the shared canvas and turns pointer input into
// gestures for the session. It never paints itself; it only submits.
type BoardWidget struct {
	widget.BaseWidget
	canvas  *raster.Canvas
	session *board.Session
	tools   func() state.ToolState

	image   *canvas.Image
	pending atomic.Bool

	pressed bool
	last    state.Point
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(c *raster.Canvas, s *board.Session, tools func() state.ToolState) *BoardWidget {
	b := &BoardWidget{canvas: c, session: s, tools: tools}
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	w, h := b.canvas.Size()
	b.image = canvas.NewImageFromImage(b.canvas.Image())
	b.image.FillMode = canvas.ImageFillStretch
	b.image.ScaleMode = canvas.ImageScalePixels
	b.image.SetMinSize(fyne.NewSize(float32(w), float32(h)))
	return widget.NewSimpleRenderer(b.image)
}

// Redraw schedules a refresh from the canvas. Safe from any goroutine;
// bursts of calls collapse into one refresh.
func (b *BoardWidget) Redraw() {
	if b.pending.Swap(true) {
		return
	}
	fyne.Do(func() {
		b.pending.Store(false)
		if b.image == nil {
			return
		}
		b.image.Image = b.canvas.Image()
		b.image.Refresh()
	})
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.pressed = true
	b.last = b.toCanvas(e.Position)
	b.submit(board.PhasePress, b.last)
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !b.pressed {
		return
	}
	p := b.toCanvas(e.Position)
	if p == b.last {
		return
	}
	b.last = p
	b.submit(board.PhaseDrag, p)
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if !b.pressed {
		return
	}
	b.pressed = false
	b.submit(board.PhaseRelease, b.toCanvas(e.Position))
}

// DragEnd covers drivers that end a drag without a MouseUp.
func (b *BoardWidget) DragEnd() {
	if !b.pressed {
		return
	}
	b.pressed = false
	b.submit(board.PhaseRelease, b.last)
}

func (b *BoardWidget) submit(phase board.Phase, p state.Point) {
	b.session.Submit(board.Gesture{Phase: phase, At: p, Tools: b.tools()})
}

// toCanvas maps a widget position onto canvas pixels. The image is
// stretched over the whole widget, so the two scale independently.
func (b *BoardWidget) toCanvas(pos fyne.Position) state.Point {
	w, h := b.canvas.Size()
	size := b.Size()
	x, y := float64(pos.X), float64(pos.Y)
	if size.Width > 0 {
		x *= float64(w) / float64(size.Width)
	}
	if size.Height > 0 {
		y *= float64(h) / float64(size.Height)
	}
	return state.Point{X: int(math.Round(x)), Y: int(math.Round(y))}
}
