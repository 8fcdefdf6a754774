package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"SharedBoard/internal/state"
	"SharedBoard/internal/stroke"
)

// Applier decodes inbound lines into stroke events. A line that fails to
// decode is skipped; it never ends the loop.
type Applier struct {
	session *state.Session
	log     *slog.Logger
}

func NewApplier(session *state.Session, log *slog.Logger) *Applier {
	if log == nil {
		log = slog.Default()
	}
	if session == nil {
		session = state.NewSession()
	}
	return &Applier{session: session, log: log}
}

// Run forwards decoded events on out until in ends, then returns an error
// wrapping ErrConnectionLost. It returns ctx.Err() if ctx is done while
// an event is waiting to be delivered.
func (a *Applier) Run(ctx context.Context, in Receiver, out chan<- stroke.Event) error {
	for line := range in.Lines() {
		ev, err := stroke.Decode(line)
		if err != nil {
			a.session.Malformed()
			a.log.Warn("skipping malformed message", "line", line, "err", err)
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := in.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionLost, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return ErrConnectionLost
}

// IsDisconnect reports whether err means the relay connection is gone.
func IsDisconnect(err error) bool {
	return errors.Is(err, ErrConnectionLost) || errors.Is(err, ErrConnectionBroken)
}
