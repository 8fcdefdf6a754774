// Package state holds the drawing tool state chosen in the toolbar and the
// per-process session bookkeeping.
package state

import (
	"errors"
	"fmt"

	"SharedBoard/internal/stroke"
)

// Stroke width bounds offered by the toolbar.
const (
	MinStrokeWidth = 1
	MaxStrokeWidth = 31
)

var ErrInvalidToolState = errors.New("state: invalid tool state")

// Point is a canvas position in pixels.
type Point struct{ X, Y int }

// ToolState is what the toolbar currently has selected. The eraser is a
// color override, not a shape: the eraser paints the active shape in the
// canvas background color.
type ToolState struct {
	Color       stroke.Color
	Shape       stroke.ShapeKind
	StrokeWidth int
	Eraser      bool
}

// Default is a 1px black line.
func Default() ToolState {
	return ToolState{Color: stroke.Black, Shape: stroke.Line, StrokeWidth: MinStrokeWidth}
}

// WithColor selects c and leaves eraser mode.
func (t ToolState) WithColor(c stroke.Color) ToolState {
	t.Color = c
	t.Eraser = false
	return t
}

// WithShape selects k and leaves eraser mode.
func (t ToolState) WithShape(k stroke.ShapeKind) ToolState {
	t.Shape = k
	t.Eraser = false
	return t
}

// WithStrokeWidth clamps w into the supported range.
func (t ToolState) WithStrokeWidth(w int) ToolState {
	t.StrokeWidth = max(MinStrokeWidth, min(MaxStrokeWidth, w))
	return t
}

// WithEraser turns eraser mode on. The selected color is kept for when a
// color or shape is picked again.
func (t ToolState) WithEraser() ToolState {
	t.Eraser = true
	return t
}

// Resolve returns the color that goes on the wire.
func (t ToolState) Resolve(background stroke.Color) stroke.Color {
	if t.Eraser {
		return background
	}
	return t.Color
}

func (t ToolState) Validate() error {
	if !t.Shape.Valid() {
		return fmt.Errorf("%w: shape %v", ErrInvalidToolState, t.Shape)
	}
	if t.StrokeWidth < MinStrokeWidth || t.StrokeWidth > MaxStrokeWidth {
		return fmt.Errorf("%w: stroke width %d outside [%d,%d]", ErrInvalidToolState, t.StrokeWidth, MinStrokeWidth, MaxStrokeWidth)
	}
	return nil
}

// Event builds the stroke event for the segment from a to b.
func (t ToolState) Event(background stroke.Color, a, b Point) (stroke.Event, error) {
	if err := t.Validate(); err != nil {
		return stroke.Event{}, err
	}
	return stroke.Event{
		Shape: t.Shape,
		Color: t.Resolve(background),
		Width: t.StrokeWidth,
		X1:    a.X,
		Y1:    a.Y,
		X2:    b.X,
		Y2:    b.Y,
	}, nil
}

// NamedColor is a palette entry.
type NamedColor struct {
	Name  string
	Color stroke.Color
}

// DefaultPalette is the toolbar's color dropdown.
var DefaultPalette = []NamedColor{
	{"Black", stroke.Black},
	{"Red", stroke.Red},
	{"Green", stroke.Green},
	{"Blue", stroke.Blue},
}
