package net

import (
	"context"
	"fmt"
	"iter"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relayFixture struct {
	relay *Relay
	addr  string
	ws    *httptest.Server
}

func startRelay(t *testing.T) *relayFixture {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRelay(16, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Serve(ctx, ln)
	}()
	ws := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		<-done
		r.Peers.CloseAll()
		ws.Close()
	})
	return &relayFixture{relay: r, addr: ln.Addr().String(), ws: ws}
}

func (f *relayFixture) dial(t *testing.T, link string) Transport {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, link, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func (f *relayFixture) waitPeers(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.relay.Peers.Len() == n }, 2*time.Second, 5*time.Millisecond)
}

// reader pumps a transport's lines into a channel.
func reader(c Transport) <-chan string {
	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		for line := range c.Lines() {
			ch <- line
		}
	}()
	return ch
}

func next(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case line, ok := <-ch:
		require.True(t, ok, "stream closed")
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for line")
		return ""
	}
}

func TestRelayFansOutWithoutEcho(t *testing.T) {
	f := startRelay(t)
	a := f.dial(t, f.addr)
	b := f.dial(t, f.addr)
	c := f.dial(t, f.addr)
	f.waitPeers(t, 3)

	ra, rb, rc := reader(a), reader(b), reader(c)

	var sent []string
	for i := range 20 {
		line := fmt.Sprintf("Line,0,1,%d,0,%d,1", i, i+1)
		sent = append(sent, line)
		require.NoError(t, a.Send(line))
	}
	for _, want := range sent {
		assert.Equal(t, want, next(t, rb))
		assert.Equal(t, want, next(t, rc))
	}

	require.NoError(t, b.Send("Circle,255,2,1,1,9,9"))
	assert.Equal(t, "Circle,255,2,1,1,9,9", next(t, ra), "sender must not get its own lines back")
	assert.Equal(t, "Circle,255,2,1,1,9,9", next(t, rc))
}

func TestRelayForwardsUnmodified(t *testing.T) {
	f := startRelay(t)
	a := f.dial(t, f.addr)
	b := f.dial(t, f.addr)
	f.waitPeers(t, 2)
	rb := reader(b)

	for _, line := range []string{"not,a,stroke", "Line,-16777216,1,0,0,3,3", "Triangle,0,2,0,0,100,50"} {
		require.NoError(t, a.Send(line))
		assert.Equal(t, line, next(t, rb))
	}
}

func TestRelayBridgesWebSocket(t *testing.T) {
	f := startRelay(t)
	tcp := f.dial(t, f.addr)
	ws := f.dial(t, "ws"+strings.TrimPrefix(f.ws.URL, "http")+WebSocketPath)
	f.waitPeers(t, 2)
	rtcp, rws := reader(tcp), reader(ws)

	require.NoError(t, tcp.Send("Rectangle,0,3,50,80,10,20"))
	assert.Equal(t, "Rectangle,0,3,50,80,10,20", next(t, rws))

	require.NoError(t, ws.Send("Line,65280,4,1,2,3,4"))
	assert.Equal(t, "Line,65280,4,1,2,3,4", next(t, rtcp))
}

func TestRelayRemovesDisconnectedPeer(t *testing.T) {
	f := startRelay(t)
	a := f.dial(t, f.addr)
	_ = f.dial(t, f.addr)
	f.waitPeers(t, 2)

	require.NoError(t, a.Close())
	f.waitPeers(t, 1)
}

func TestClientSeesRelayShutdown(t *testing.T) {
	f := startRelay(t)
	a := f.dial(t, f.addr)
	f.waitPeers(t, 1)
	ra := reader(a)

	f.relay.Peers.CloseAll()
	select {
	case _, ok := <-ra:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end")
	}
}

type stubTransport struct {
	sent   chan string
	closed chan struct{}
	once   sync.Once
}

func newStub() *stubTransport {
	return &stubTransport{sent: make(chan string), closed: make(chan struct{})}
}

func (s *stubTransport) Send(line string) error {
	select {
	case s.sent <- line:
		return nil
	case <-s.closed:
		return net.ErrClosed
	}
}

func (s *stubTransport) Lines() iter.Seq[string] { return func(func(string) bool) { <-s.closed } }
func (s *stubTransport) Err() error              { return nil }
func (s *stubTransport) RemoteAddr() string      { return "stub" }
func (s *stubTransport) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func isClosed(s *stubTransport) bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func TestPeerManagerDropsSlowPeer(t *testing.T) {
	pm := NewPeerManager(2, nil)
	slow := newStub()
	p := pm.Add(slow)

	// The writer holds one line in Send; two more fill the queue.
	for range 4 {
		pm.Broadcast("Line,0,1,0,0,1,1", nil)
	}
	select {
	case <-slow.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("slow peer was not dropped")
	}
	assert.Equal(t, 0, pm.Len(), "dropped peer must be unregistered at once")
	assert.Equal(t, 0, pm.Broadcast("Line,0,1,0,0,1,1", nil))
	pm.Remove(p)
	pm.CloseAll()
	assert.Equal(t, 0, pm.Len())
}

func TestPeerManagerDropKeepsOthers(t *testing.T) {
	pm := NewPeerManager(1, nil)
	slow, fast := newStub(), newStub()
	pm.Add(slow)
	pm.Add(fast)

	got := make(chan string, 16)
	go func() {
		for line := range fast.sent {
			got <- line
		}
	}()

	// slow never reads, so it is dropped by the third line at the latest.
	for i := range 3 {
		pm.Broadcast(fmt.Sprintf("Line,0,1,%d,0,0,0", i), nil)
		if i < 2 {
			// Let fast's writer take the line so only slow falls behind.
			assert.Equal(t, fmt.Sprintf("Line,0,1,%d,0,0,0", i), <-got)
		}
	}
	require.Eventually(t, func() bool { return isClosed(slow) }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, pm.Len())
	assert.Equal(t, "Line,0,1,2,0,0,0", <-got)

	pm.CloseAll()
	close(fast.sent)
}

func TestPeerManagerRefusesAfterCloseAll(t *testing.T) {
	pm := NewPeerManager(4, nil)
	a := newStub()
	pm.Add(a)
	pm.CloseAll()
	assert.True(t, isClosed(a))

	late := newStub()
	assert.Nil(t, pm.Add(late))
	assert.True(t, isClosed(late), "late peer must be disconnected")
	assert.Equal(t, 0, pm.Len())
	assert.Equal(t, 0, pm.Broadcast("hello", nil))

	done := make(chan struct{})
	go func() {
		pm.CloseAll()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("CloseAll blocked on a refused peer")
	}
}

func TestPeerManagerBroadcastExcludesSender(t *testing.T) {
	pm := NewPeerManager(4, nil)
	a, b := newStub(), newStub()
	pa := pm.Add(a)
	pb := pm.Add(b)

	assert.Equal(t, 1, pm.Broadcast("hello", pa))
	assert.Equal(t, "hello", <-b.sent)
	assert.Equal(t, 2, pm.Broadcast("all", nil))

	pm.Remove(pa)
	pm.Remove(pb)
	pm.Remove(pb)
	_ = a.Close()
	_ = b.Close()
	pm.CloseAll()
}
