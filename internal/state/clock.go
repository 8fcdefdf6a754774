package state

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session identifies this process in logs. It never goes on the wire.
type Session struct {
	ID uuid.UUID

	sent      atomic.Uint64
	applied   atomic.Uint64
	malformed atomic.Uint64
}

func NewSession() *Session {
	return &Session{ID: uuid.New()}
}

func (s *Session) Sent() uint64      { return s.sent.Add(1) }
func (s *Session) Applied() uint64   { return s.applied.Add(1) }
func (s *Session) Malformed() uint64 { return s.malformed.Add(1) }

// Counters is a point-in-time copy of the traffic counters.
type Counters struct {
	Sent, Applied, Malformed uint64
}

func (s *Session) Counters() Counters {
	return Counters{
		Sent:      s.sent.Load(),
		Applied:   s.applied.Load(),
		Malformed: s.malformed.Load(),
	}
}

func (c Counters) String() string {
	return fmt.Sprintf("sent %d, received %d, skipped %d", c.Sent, c.Applied, c.Malformed)
}
