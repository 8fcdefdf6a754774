package net

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultQueueSize is how many lines a peer may fall behind before the
// relay drops it.
const DefaultQueueSize = 1024

// Peer is one client connected to the relay.
type Peer struct {
	ID   uuid.UUID
	conn Transport
	out  chan string
}

// PeerManager tracks connected peers and fans lines out to them. Each peer
// has its own queue and writer goroutine, so lines from one sender reach
// every other peer in the order they were sent.
type PeerManager struct {
	peers     map[uuid.UUID]*Peer
	mu        sync.RWMutex
	queueSize int
	log       *slog.Logger
	wg        sync.WaitGroup
	closed    bool
}

func NewPeerManager(queueSize int, log *slog.Logger) *PeerManager {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &PeerManager{
		peers:     make(map[uuid.UUID]*Peer),
		queueSize: queueSize,
		log:       log,
	}
}

// Add registers conn and starts its writer. After CloseAll it closes conn
// and returns nil.
func (pm *PeerManager) Add(conn Transport) *Peer {
	p := &Peer{
		ID:   uuid.New(),
		conn: conn,
		out:  make(chan string, pm.queueSize),
	}
	pm.mu.Lock()
	if pm.closed {
		pm.mu.Unlock()
		_ = conn.Close()
		pm.log.Info("peer refused, relay is shutting down", "remote", conn.RemoteAddr())
		return nil
	}
	pm.peers[p.ID] = p
	n := len(pm.peers)
	pm.wg.Add(1)
	pm.mu.Unlock()

	go pm.writeLoop(p)
	pm.log.Info("peer connected", "peer", p.ID, "remote", conn.RemoteAddr(), "peers", n)
	return p
}

// Remove unregisters p and stops its writer once its queue drains.
func (pm *PeerManager) Remove(p *Peer) {
	if p == nil {
		return
	}
	pm.mu.Lock()
	_, ok := pm.peers[p.ID]
	if ok {
		delete(pm.peers, p.ID)
		close(p.out)
	}
	n := len(pm.peers)
	pm.mu.Unlock()
	if ok {
		pm.log.Info("peer disconnected", "peer", p.ID, "peers", n)
	}
}

// Broadcast queues line for every peer except from, which may be nil.
// It returns the number of peers the line was queued for. A peer whose
// queue is full is unregistered and disconnected.
func (pm *PeerManager) Broadcast(line string, from *Peer) int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	n := 0
	for id, p := range pm.peers {
		if from != nil && id == from.ID {
			continue
		}
		select {
		case p.out <- line:
			n++
		default:
			delete(pm.peers, id)
			close(p.out)
			_ = p.conn.Close()
			pm.log.Warn("peer queue full, dropping peer", "peer", id, "peers", len(pm.peers))
		}
	}
	return n
}

// Len returns the number of connected peers.
func (pm *PeerManager) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// CloseAll unregisters and closes every peer, refuses new ones and waits
// for the writers.
func (pm *PeerManager) CloseAll() {
	pm.mu.Lock()
	pm.closed = true
	for id, p := range pm.peers {
		delete(pm.peers, id)
		close(p.out)
		_ = p.conn.Close()
	}
	pm.mu.Unlock()
	pm.wg.Wait()
}

func (pm *PeerManager) writeLoop(p *Peer) {
	defer pm.wg.Done()
	for line := range p.out {
		if err := p.conn.Send(line); err != nil {
			pm.log.Warn("send failed", "peer", p.ID, "err", err)
			_ = p.conn.Close()
			for range p.out {
			}
			return
		}
	}
}

// Relay forwards every line a peer sends, unmodified, to all other peers.
// A sender never receives its own lines back.
type Relay struct {
	Peers    *PeerManager
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewRelay(queueSize int, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}
	return &Relay{
		Peers: NewPeerManager(queueSize, log),
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve accepts TCP peers on ln until ctx is done.
func (r *Relay) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	r.log.Info("relay listening", "addr", ln.Addr().String())

	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			r.log.Warn("accept failed", "err", err)
			continue
		}
		go r.Handle(NewStreamConn(c, r.log))
	}
}

// ServeHTTP upgrades the request and serves it as a WebSocket peer.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ws, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Warn("websocket upgrade failed", "remote", req.RemoteAddr, "err", err)
		return
	}
	r.Handle(NewWSConn(ws))
}

// Handle relays conn's lines until it disconnects.
func (r *Relay) Handle(conn Transport) {
	p := r.Peers.Add(conn)
	if p == nil {
		return
	}
	defer func() {
		r.Peers.Remove(p)
		_ = conn.Close()
	}()

	for line := range conn.Lines() {
		if line == "" {
			continue
		}
		r.Peers.Broadcast(line, p)
	}
	if err := conn.Err(); err != nil {
		r.log.Info("peer read ended", "peer", p.ID, "err", err)
	}
}
