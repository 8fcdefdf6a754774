package raster

import (
	"fmt"
	"sync"
)

// Primitive names the outline a Recorder saw.
type Primitive string

const (
	PrimLine    Primitive = "line"
	PrimRect    Primitive = "rect"
	PrimOval    Primitive = "oval"
	PrimPolygon Primitive = "polygon"
)

// Op is one recorded draw call. Rect and Oval store x, y, w, h in Args;
// Line stores x1, y1, x2, y2; Polygon stores interleaved x, y pairs.
type Op struct {
	Prim Primitive
	Pen  Pen
	Args []int
}

func (o Op) String() string {
	return fmt.Sprintf("%s %s/%d %v", o.Prim, o.Pen.Color.Hex(), o.Pen.Width, o.Args)
}

// Recorder is a Surface that remembers every call instead of drawing.
type Recorder struct {
	mu  sync.Mutex
	ops []Op
}

var _ Surface = (*Recorder)(nil)

func (r *Recorder) DrawLine(p Pen, x1, y1, x2, y2 int) error {
	r.record(PrimLine, p, x1, y1, x2, y2)
	return nil
}

func (r *Recorder) DrawRect(p Pen, x, y, w, h int) error {
	r.record(PrimRect, p, x, y, w, h)
	return nil
}

func (r *Recorder) DrawOval(p Pen, x, y, w, h int) error {
	r.record(PrimOval, p, x, y, w, h)
	return nil
}

func (r *Recorder) DrawPolygon(p Pen, xs, ys []int) error {
	args := make([]int, 0, 2*len(xs))
	for i := range min(len(xs), len(ys)) {
		args = append(args, xs[i], ys[i])
	}
	r.record(PrimPolygon, p, args...)
	return nil
}

func (r *Recorder) record(prim Primitive, p Pen, args ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Prim: prim, Pen: p, Args: args})
}

// Ops returns a copy of the recorded calls in order.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}
