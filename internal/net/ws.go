package net

import (
	"errors"
	"fmt"
	"iter"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeTimeout = time.Second

// WSConn carries one line per WebSocket text message.
type WSConn struct {
	ws  *websocket.Conn
	wmu sync.Mutex

	errMu sync.Mutex
	err   error
}

var _ Transport = (*WSConn)(nil)

func NewWSConn(ws *websocket.Conn) *WSConn {
	ws.SetReadLimit(MaxLineLength)
	return &WSConn{ws: ws}
}

func (c *WSConn) Send(line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return ErrInvalidLine
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Lines yields each text message. A message holding several
// newline-separated lines is split; binary messages are ignored.
func (c *WSConn) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			mt, data, err := c.ws.ReadMessage()
			if err != nil {
				c.setErr(err)
				return
			}
			if mt != websocket.TextMessage {
				continue
			}
			for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
				if !yield(line) {
					return
				}
			}
		}
	}
}

func (c *WSConn) setErr(err error) {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, net.ErrClosed) {
		err = nil
	}
	c.errMu.Lock()
	c.err = err
	c.errMu.Unlock()
}

func (c *WSConn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Close sends a close frame before dropping the connection.
func (c *WSConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeTimeout))
	return c.ws.Close()
}

func (c *WSConn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}
