package stroke

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidEvent is returned when an event cannot be put on the wire.
var ErrInvalidEvent = errors.New("stroke: invalid event")

// Event is one drawn primitive plus its styling. It has no identity beyond
// its field values.
type Event struct {
	Shape  ShapeKind
	Color  Color
	Width  int
	X1, Y1 int
	X2, Y2 int
}

// Validate checks the invariants every transmitted event must satisfy.
func (e Event) Validate() error {
	if !e.Shape.Valid() {
		return fmt.Errorf("%w: shape %v", ErrInvalidEvent, e.Shape)
	}
	if e.Width < 1 {
		return fmt.Errorf("%w: stroke width %d", ErrInvalidEvent, e.Width)
	}
	if e.Width > math.MaxInt32 {
		return fmt.Errorf("%w: stroke width %d", ErrInvalidEvent, e.Width)
	}
	if e.Color > 0xFFFFFF {
		return fmt.Errorf("%w: color %#x has bits above 24", ErrInvalidEvent, uint32(e.Color))
	}
	for i, v := range [...]int{e.X1, e.Y1, e.X2, e.Y2} {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return fmt.Errorf("%w: %s %d is not a 32-bit integer", ErrInvalidEvent, fieldNames[3+i], v)
		}
	}
	return nil
}

func (e Event) String() string {
	return fmt.Sprintf("%v %s w=%d (%d,%d)-(%d,%d)", e.Shape, e.Color.Hex(), e.Width, e.X1, e.Y1, e.X2, e.Y2)
}
