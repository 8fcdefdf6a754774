package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SharedBoard/internal/stroke"
)

func isDark(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R < 64 && c.G < 64 && c.B < 64
}

func TestCanvasBackground(t *testing.T) {
	bg := stroke.RGB(0xEE, 0xEE, 0xEE)
	c := NewCanvas(20, 10, bg)
	assert.Equal(t, bg, c.Background())

	w, h := c.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)

	img := c.Image()
	assert.Equal(t, color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}, img.RGBAAt(19, 9))
}

func TestCanvasStrokesOutlineOnly(t *testing.T) {
	c := NewCanvas(120, 120, stroke.White)
	require.NoError(t, Paint(c, stroke.Rectangle, stroke.Black, 3, 50, 80, 10, 20))

	img := c.Image()
	assert.True(t, isDark(img, 10, 50), "left edge")
	assert.True(t, isDark(img, 50, 50), "right edge")
	assert.True(t, isDark(img, 30, 20), "top edge")
	assert.True(t, isDark(img, 30, 80), "bottom edge")
	assert.Equal(t, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, img.RGBAAt(30, 50), "interior stays unfilled")
	assert.Equal(t, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, img.RGBAAt(100, 100))
}

func TestCanvasLine(t *testing.T) {
	c := NewCanvas(100, 100, stroke.White)
	require.NoError(t, c.DrawLine(Pen{Color: stroke.Red, Width: 3}, 10, 50, 90, 50))

	img := c.Image()
	got := img.RGBAAt(50, 50)
	assert.True(t, got.R > 200 && got.G < 64 && got.B < 64, "got %v", got)
	assert.Equal(t, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, img.RGBAAt(50, 40))
}

func TestCanvasOrderIndependentPixels(t *testing.T) {
	for _, shape := range []stroke.ShapeKind{stroke.Rectangle, stroke.Circle} {
		a := NewCanvas(100, 100, stroke.White)
		b := NewCanvas(100, 100, stroke.White)
		require.NoError(t, Paint(a, shape, stroke.Blue, 2, 80, 70, 15, 10))
		require.NoError(t, Paint(b, shape, stroke.Blue, 2, 15, 10, 80, 70))
		assert.Equal(t, a.Image().Pix, b.Image().Pix, shape.String())
	}
}

func TestCanvasClipsOutOfRange(t *testing.T) {
	c := NewCanvas(50, 50, stroke.White)
	require.NoError(t, Paint(c, stroke.Line, stroke.Black, 2, -500, 25, 5000, 25))
	require.NoError(t, Paint(c, stroke.Circle, stroke.Black, 2, -300, -300, 400, 400))
	require.NoError(t, Paint(c, stroke.Triangle, stroke.Black, 2, -100, 900, 100, -900))

	assert.True(t, isDark(c.Image(), 25, 25))
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(40, 40, stroke.White)
	require.NoError(t, Paint(c, stroke.Line, stroke.Black, 4, 0, 20, 40, 20))
	c.Clear()
	assert.Equal(t, NewCanvas(40, 40, stroke.White).Image().Pix, c.Image().Pix)
}

func TestCanvasEncodePNG(t *testing.T) {
	c := NewCanvas(16, 8, stroke.Green)
	var buf bytes.Buffer
	require.NoError(t, c.EncodePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
	assert.Equal(t, stroke.Green, stroke.FromColor(img.At(3, 3)))
}
