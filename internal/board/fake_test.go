package board

import (
	"errors"
	"iter"
	"sync"
)

var errPipe = errors.New("broken pipe")

// fakeConn records sent lines and yields lines pushed onto in.
type fakeConn struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
	readErr error

	in        chan string
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan string, 64), closed: make(chan struct{})}
}

func (f *fakeConn) Send(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, line)
	return nil
}

func (f *fakeConn) failSends(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

func (f *fakeConn) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeConn) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			select {
			case line, ok := <-f.in:
				if !ok {
					return
				}
				if !yield(line) {
					return
				}
			case <-f.closed:
				return
			}
		}
	}
}

func (f *fakeConn) Err() error { return f.readErr }

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}
