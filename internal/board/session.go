package board

import (
	"context"
	"errors"
	"log/slog"

	"SharedBoard/internal/state"
	"SharedBoard/internal/stroke"
)

// Phase is the step of a pointer gesture.
type Phase int

const (
	PhasePress Phase = iota
	PhaseDrag
	PhaseRelease
)

func (p Phase) String() string {
	switch p {
	case PhasePress:
		return "press"
	case PhaseDrag:
		return "drag"
	case PhaseRelease:
		return "release"
	}
	return "unknown"
}

// Gesture is one pointer event plus the tool state current at that moment.
type Gesture struct {
	Phase Phase
	At    state.Point
	Tools state.ToolState
}

// Conn is the relay connection a session draws through.
type Conn interface {
	Sender
	Receiver
	Close() error
}

const gestureQueue = 256

// Session owns the canvas for the lifetime of one relay connection. Local
// gestures and remote events are both handled on the goroutine running
// Run, so the canvas is only ever painted from there.
type Session struct {
	board   *Board
	conn    Conn
	enc     *Encoder
	applier *Applier
	state   *state.Session
	log     *slog.Logger

	gestures chan Gesture
	done     chan struct{}

	// OnStatus, when set, is called from Run's goroutine with errors the
	// user should see: a failed send or the lost connection.
	OnStatus func(err error)
}

func NewSession(b *Board, conn Conn, st *state.Session, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	if st == nil {
		st = state.NewSession()
	}
	log = log.With("session", st.ID)
	return &Session{
		board:    b,
		conn:     conn,
		enc:      NewEncoder(b, conn, b.Background(), st, log),
		applier:  NewApplier(st, log),
		state:    st,
		log:      log,
		gestures: make(chan Gesture, gestureQueue),
		done:     make(chan struct{}),
	}
}

// State returns the session's identity and counters.
func (s *Session) State() *state.Session {
	return s.state
}

// Submit queues g for Run. It reports false once Run has returned.
func (s *Session) Submit(g Gesture) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.gestures <- g:
		return true
	case <-s.done:
		return false
	}
}

// Run processes gestures and remote events until ctx is done, then closes
// the connection. Losing the connection is reported but does not stop
// local drawing.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	remote := make(chan stroke.Event)
	applied := make(chan error, 1)
	go func() {
		applied <- s.applier.Run(ctx, s.conn, remote)
	}()

	broken := false
	for {
		select {
		case g := <-s.gestures:
			err := s.handle(g)
			switch {
			case err == nil:
			case errors.Is(err, ErrConnectionBroken):
				if !broken {
					broken = true
					s.log.Error("send failed, strokes are no longer shared", "err", err)
					s.report(err)
				}
			default:
				s.log.Warn("gesture rejected", "phase", g.Phase.String(), "err", err)
				s.report(err)
			}
		case ev := <-remote:
			if err := s.board.Paint(ev); err == nil {
				s.state.Applied()
			}
		case err := <-applied:
			applied = nil
			if ctx.Err() == nil {
				s.log.Error("relay connection ended", "err", err)
				s.report(err)
			}
		case <-ctx.Done():
			// Unblocks the applier's read.
			_ = s.conn.Close()
			return ctx.Err()
		}
	}
}

func (s *Session) handle(g Gesture) error {
	switch g.Phase {
	case PhasePress:
		s.enc.Press(g.At)
		return nil
	case PhaseDrag:
		return s.enc.Drag(g.At, g.Tools)
	case PhaseRelease:
		return s.enc.Release(g.At, g.Tools)
	}
	return nil
}

func (s *Session) report(err error) {
	if s.OnStatus != nil {
		s.OnStatus(err)
	}
}
