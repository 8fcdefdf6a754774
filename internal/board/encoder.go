package board

import (
	"fmt"
	"log/slog"

	"SharedBoard/internal/state"
	"SharedBoard/internal/stroke"
)

// Encoder turns one gesture at a time into stroke events. Every event is
// painted locally before it is sent, and a failed send never undoes the
// local paint.
//
// Line strokes are sent as one segment per drag sample; the other shapes
// are only sent on release, spanning press point to release point.
type Encoder struct {
	painter    Painter
	out        Sender
	background stroke.Color
	session    *state.Session
	log        *slog.Logger

	anchor state.Point
	active bool
}

func NewEncoder(painter Painter, out Sender, background stroke.Color, session *state.Session, log *slog.Logger) *Encoder {
	if log == nil {
		log = slog.Default()
	}
	if session == nil {
		session = state.NewSession()
	}
	return &Encoder{
		painter:    painter,
		out:        out,
		background: background,
		session:    session,
		log:        log,
	}
}

// Press starts a gesture at p. Nothing is sent yet.
func (e *Encoder) Press(p state.Point) {
	e.anchor = p
	e.active = true
}

// Drag handles one motion sample while the button is held. Only Line
// emits here, advancing the anchor to p.
func (e *Encoder) Drag(p state.Point, tools state.ToolState) error {
	if !e.active || tools.Shape != stroke.Line {
		return nil
	}
	from := e.anchor
	e.anchor = p
	return e.emit(tools, from, p)
}

// Release ends the gesture with the segment from the anchor to p.
func (e *Encoder) Release(p state.Point, tools state.ToolState) error {
	if !e.active {
		return nil
	}
	e.active = false
	return e.emit(tools, e.anchor, p)
}

func (e *Encoder) emit(tools state.ToolState, from, to state.Point) error {
	ev, err := tools.Event(e.background, from, to)
	if err != nil {
		return err
	}
	// Paint errors are logged by the painter; the stroke still goes out.
	_ = e.painter.Paint(ev)

	line, err := stroke.Encode(ev)
	if err != nil {
		return err
	}
	if err := e.out.Send(line); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionBroken, err)
	}
	e.session.Sent()
	e.log.Debug("stroke sent", "line", line)
	return nil
}
