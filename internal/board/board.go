// Package board turns pointer gestures into stroke events and applies
// stroke events received from other clients, painting both the same way.
package board

import (
	"errors"
	"iter"
	"log/slog"

	"SharedBoard/internal/raster"
	"SharedBoard/internal/stroke"
)

var (
	// ErrConnectionBroken wraps a failed send. The stroke was already
	// painted locally.
	ErrConnectionBroken = errors.New("board: connection broken")
	// ErrConnectionLost is returned when the inbound stream ends.
	ErrConnectionLost = errors.New("board: connection lost")
)

// Sender transmits one wire message.
type Sender interface {
	Send(line string) error
}

// Receiver yields inbound wire messages until the stream ends.
type Receiver interface {
	Lines() iter.Seq[string]
	Err() error
}

// Painter applies a stroke event to the canvas.
type Painter interface {
	Paint(ev stroke.Event) error
}

// Board is the shared canvas. Local and remote strokes go through the same
// Paint call.
type Board struct {
	surface    raster.Surface
	background stroke.Color
	log        *slog.Logger

	// OnChange, when set, runs after every successful paint.
	OnChange func()
}

func New(surface raster.Surface, background stroke.Color, log *slog.Logger) *Board {
	if log == nil {
		log = slog.Default()
	}
	return &Board{surface: surface, background: background, log: log}
}

// Background is the color erasing paints with.
func (b *Board) Background() stroke.Color {
	return b.background
}

func (b *Board) Paint(ev stroke.Event) error {
	if err := raster.PaintEvent(b.surface, ev); err != nil {
		b.log.Warn("paint failed", "event", ev.String(), "err", err)
		return err
	}
	if b.OnChange != nil {
		b.OnChange()
	}
	return nil
}
