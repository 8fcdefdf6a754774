package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	// Scheme prefixes the share link a relay prints for its clients.
	Scheme      = "sharedboard://"
	DefaultPort = 8080

	// WebSocketPath is where the relay accepts WebSocket peers.
	WebSocketPath = "/board"
)

var ErrBadLink = errors.New("net: bad relay address")

// Endpoint is a parsed relay address.
type Endpoint struct {
	WebSocket bool
	// Address is host:port for TCP and the full URL for WebSocket.
	Address string
}

// ParseLink accepts "sharedboard://host:port", "host:port", a bare host
// (DefaultPort is used) or a ws:// or wss:// URL.
func ParseLink(link string) (Endpoint, error) {
	link = strings.TrimSpace(link)
	if strings.HasPrefix(link, "ws://") || strings.HasPrefix(link, "wss://") {
		return Endpoint{WebSocket: true, Address: link}, nil
	}
	addr := strings.TrimSuffix(strings.TrimPrefix(link, Scheme), "/")
	if addr == "" {
		return Endpoint{}, fmt.Errorf("%w: empty", ErrBadLink)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		if strings.Contains(addr, ":") && !strings.HasPrefix(addr, "[") {
			return Endpoint{}, fmt.Errorf("%w: %q: %v", ErrBadLink, link, err)
		}
		addr = net.JoinHostPort(strings.Trim(addr, "[]"), strconv.Itoa(DefaultPort))
	}
	return Endpoint{Address: addr}, nil
}

// ShareLink formats the link clients pass on the command line.
func ShareLink(host string, port int) string {
	return Scheme + net.JoinHostPort(host, strconv.Itoa(port))
}

// Dial connects to the relay named by link.
func Dial(ctx context.Context, link string, log *slog.Logger) (Transport, error) {
	ep, err := ParseLink(link)
	if err != nil {
		return nil, err
	}
	if ep.WebSocket {
		ws, _, err := websocket.DefaultDialer.DialContext(ctx, ep.Address, nil)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", ep.Address, err)
		}
		return NewWSConn(ws), nil
	}
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", ep.Address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", ep.Address, err)
	}
	return NewStreamConn(c, log), nil
}
