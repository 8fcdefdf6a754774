package raster

import (
	"image"
	"io"
	"sync"

	"github.com/gogpu/gg"

	"SharedBoard/internal/stroke"
)

// Canvas is a Surface backed by a gg software context. It is safe for
// concurrent use; paint calls are serialized.
type Canvas struct {
	mu         sync.Mutex
	dc         *gg.Context
	background stroke.Color
}

var _ Surface = (*Canvas)(nil)

// NewCanvas creates a width x height canvas filled with background.
func NewCanvas(width, height int, background stroke.Color) *Canvas {
	c := &Canvas{
		dc:         gg.NewContext(width, height),
		background: background,
	}
	c.dc.SetLineCap(gg.LineCapRound)
	c.dc.SetLineJoin(gg.LineJoinRound)
	c.Clear()
	return c
}

// Background is the color the eraser paints with.
func (c *Canvas) Background() stroke.Color {
	return c.background
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (width, height int) {
	return c.dc.Width(), c.dc.Height()
}

// Clear repaints the whole canvas with the background color.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.ClearWithColor(gg.FromColor(c.background))
}

func (c *Canvas) DrawLine(p Pen, x1, y1, x2, y2 int) error {
	return c.stroke(p, func(dc *gg.Context) {
		dc.DrawLine(float64(x1), float64(y1), float64(x2), float64(y2))
	})
}

func (c *Canvas) DrawRect(p Pen, x, y, w, h int) error {
	return c.stroke(p, func(dc *gg.Context) {
		dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	})
}

func (c *Canvas) DrawOval(p Pen, x, y, w, h int) error {
	rx, ry := float64(w)/2, float64(h)/2
	return c.stroke(p, func(dc *gg.Context) {
		dc.DrawEllipse(float64(x)+rx, float64(y)+ry, rx, ry)
	})
}

func (c *Canvas) DrawPolygon(p Pen, xs, ys []int) error {
	n := min(len(xs), len(ys))
	if n == 0 {
		return nil
	}
	return c.stroke(p, func(dc *gg.Context) {
		dc.MoveTo(float64(xs[0]), float64(ys[0]))
		for i := 1; i < n; i++ {
			dc.LineTo(float64(xs[i]), float64(ys[i]))
		}
		dc.ClosePath()
	})
}

func (c *Canvas) stroke(p Pen, build func(dc *gg.Context)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dc.ClearPath()
	c.dc.SetColor(p.Color)
	c.dc.SetLineWidth(float64(p.Width))
	build(c.dc)
	return c.dc.Stroke()
}

// Image returns a copy of the current pixels.
func (c *Canvas) Image() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dc.Image().(*image.RGBA)
}

// EncodePNG writes the current pixels as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dc.EncodePNG(w)
}
