// Package net carries whiteboard messages between clients and the relay
// as newline-terminated text lines.
package net

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net"
	"strings"
	"sync"
)

// MaxLineLength bounds one inbound message. Longer lines are discarded.
const MaxLineLength = 4096

var ErrInvalidLine = errors.New("net: line contains a line terminator")

// Transport is an ordered, reliable line stream shared with the relay.
//
// Send writes exactly one line and flushes it. Lines yields inbound lines,
// blocking between them, and stops when the peer closes; Err then reports
// why the stream ended (nil for a clean close). Lines must only be ranged
// over by one goroutine.
type Transport interface {
	Send(line string) error
	Lines() iter.Seq[string]
	Err() error
	Close() error
	RemoteAddr() string
}

// StreamConn frames lines with '\n' over a byte stream such as TCP.
type StreamConn struct {
	c   net.Conn
	r   *bufio.Reader
	log *slog.Logger

	wmu sync.Mutex
	w   *bufio.Writer

	errMu sync.Mutex
	err   error
}

var _ Transport = (*StreamConn)(nil)

func NewStreamConn(c net.Conn, log *slog.Logger) *StreamConn {
	if log == nil {
		log = slog.Default()
	}
	return &StreamConn{
		c:   c,
		r:   bufio.NewReaderSize(c, MaxLineLength),
		w:   bufio.NewWriter(c),
		log: log.With("remote", c.RemoteAddr().String()),
	}
}

func (c *StreamConn) Send(line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return ErrInvalidLine
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.w.WriteString(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := c.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (c *StreamConn) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			line, err := c.readLine()
			if err != nil {
				c.setErr(err)
				return
			}
			if !yield(line) {
				return
			}
		}
	}
}

// readLine returns the next line without its terminator. A final line
// that lacks a terminator is still returned before io.EOF.
func (c *StreamConn) readLine() (string, error) {
	for {
		b, err := c.r.ReadSlice('\n')
		switch {
		case err == nil:
			return string(b[:len(b)-1]), nil
		case errors.Is(err, bufio.ErrBufferFull):
			if err := c.discardLine(); err != nil {
				return "", err
			}
			c.log.Warn("discarded overlong line", "limit", MaxLineLength)
		case len(b) > 0 && errors.Is(err, io.EOF):
			return string(b), nil
		default:
			return "", err
		}
	}
}

func (c *StreamConn) discardLine() error {
	for {
		_, err := c.r.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

func (c *StreamConn) setErr(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		err = nil
	}
	c.errMu.Lock()
	c.err = err
	c.errMu.Unlock()
}

func (c *StreamConn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *StreamConn) Close() error {
	return c.c.Close()
}

func (c *StreamConn) RemoteAddr() string {
	return c.c.RemoteAddr().String()
}
