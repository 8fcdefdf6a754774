// Package stroke defines the stroke event exchanged between whiteboard
// clients and its line-oriented wire encoding.
package stroke

import "fmt"

// ShapeKind is the primitive a stroke event paints.
type ShapeKind int

const (
	Line ShapeKind = iota
	Rectangle
	Circle
	Triangle
)

// Shapes lists every shape kind in toolbar order.
var Shapes = []ShapeKind{Line, Rectangle, Circle, Triangle}

var shapeNames = [...]string{
	Line:      "Line",
	Rectangle: "Rectangle",
	Circle:    "Circle",
	Triangle:  "Triangle",
}

// Valid reports whether k is one of the four known shapes.
func (k ShapeKind) Valid() bool {
	return k >= Line && k <= Triangle
}

// String returns the wire name of the shape.
func (k ShapeKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
	return shapeNames[k]
}

// ParseShapeKind maps a wire name back to its shape. Matching is exact
// and case-sensitive.
func ParseShapeKind(s string) (ShapeKind, error) {
	for k, name := range shapeNames {
		if name == s {
			return ShapeKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", s)
}
