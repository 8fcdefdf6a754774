// Package raster paints stroke primitives onto a drawing surface.
//
// Paint is shared by the local and the remote path, so a stroke looks the
// same on every client no matter where it was drawn.
package raster

import (
	"fmt"

	"SharedBoard/internal/stroke"
)

// Pen is the styling applied to an outline.
type Pen struct {
	Color stroke.Color
	Width int
}

// Surface is anything that can stroke the four outline primitives.
// Coordinates outside the surface are clipped, never rejected.
type Surface interface {
	DrawLine(p Pen, x1, y1, x2, y2 int) error
	DrawRect(p Pen, x, y, w, h int) error
	DrawOval(p Pen, x, y, w, h int) error
	DrawPolygon(p Pen, xs, ys []int) error
}

// Paint strokes one shape spanning the two endpoints. Rectangle and Circle
// use the box spanned by the endpoints, so the endpoint order is irrelevant.
func Paint(s Surface, shape stroke.ShapeKind, c stroke.Color, width, x1, y1, x2, y2 int) error {
	pen := Pen{Color: c, Width: width}
	switch shape {
	case stroke.Line:
		return s.DrawLine(pen, x1, y1, x2, y2)
	case stroke.Rectangle:
		x, y, w, h := bounds(x1, y1, x2, y2)
		if w == 0 || h == 0 {
			return nil
		}
		return s.DrawRect(pen, x, y, w, h)
	case stroke.Circle:
		x, y, w, h := bounds(x1, y1, x2, y2)
		if w == 0 || h == 0 {
			return nil
		}
		return s.DrawOval(pen, x, y, w, h)
	case stroke.Triangle:
		xs, ys := TriangleVertices(x1, y1, x2, y2)
		return s.DrawPolygon(pen, xs[:], ys[:])
	default:
		return fmt.Errorf("raster: unknown shape %v", shape)
	}
}

// PaintEvent paints a decoded stroke event.
func PaintEvent(s Surface, e stroke.Event) error {
	return Paint(s, e.Shape, e.Color, e.Width, e.X1, e.Y1, e.X2, e.Y2)
}

// TriangleVertices returns the isosceles triangle whose base runs from x1
// to x2 at y1 and whose apex sits at the horizontal midpoint on y2.
func TriangleVertices(x1, y1, x2, y2 int) (xs, ys [3]int) {
	return [3]int{x1, x2, (x1 + x2) / 2}, [3]int{y1, y1, y2}
}

func bounds(x1, y1, x2, y2 int) (x, y, w, h int) {
	return min(x1, x2), min(y1, y2), abs(x2 - x1), abs(y2 - y1)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
