package net

import (
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t Transport) []string {
	var out []string
	for line := range t.Lines() {
		out = append(out, line)
	}
	return out
}

func TestStreamConnSendAndLines(t *testing.T) {
	a, b := net.Pipe()
	ca, cb := NewStreamConn(a, nil), NewStreamConn(b, nil)

	go func() {
		assert.NoError(t, ca.Send("Line,0,1,0,0,5,5"))
		assert.NoError(t, ca.Send("Rectangle,0,3,50,80,10,20"))
		assert.NoError(t, ca.Close())
	}()

	assert.Equal(t, []string{"Line,0,1,0,0,5,5", "Rectangle,0,3,50,80,10,20"}, collect(cb))
	assert.NoError(t, cb.Err())
}

func TestStreamConnRejectsTerminators(t *testing.T) {
	a, _ := net.Pipe()
	c := NewStreamConn(a, nil)
	assert.ErrorIs(t, c.Send("Line\n"), ErrInvalidLine)
	assert.ErrorIs(t, c.Send("Line\r"), ErrInvalidLine)
}

func TestStreamConnUnterminatedLastLine(t *testing.T) {
	a, b := net.Pipe()
	c := NewStreamConn(b, nil)
	go func() {
		_, _ = io.WriteString(a, "first\nsecond")
		_ = a.Close()
	}()
	assert.Equal(t, []string{"first", "second"}, collect(c))
	assert.NoError(t, c.Err())
}

func TestStreamConnSkipsOverlongLine(t *testing.T) {
	a, b := net.Pipe()
	c := NewStreamConn(b, nil)
	go func() {
		_, _ = io.WriteString(a, "before\n"+strings.Repeat("x", 3*MaxLineLength)+"\nafter\n")
		_ = a.Close()
	}()
	assert.Equal(t, []string{"before", "after"}, collect(c))
}

func TestStreamConnSendAfterPeerGone(t *testing.T) {
	a, b := net.Pipe()
	c := NewStreamConn(a, nil)
	require.NoError(t, b.Close())
	assert.Error(t, c.Send("Line,0,1,0,0,1,1"))
}

func TestStreamConnStopEarly(t *testing.T) {
	a, b := net.Pipe()
	c := NewStreamConn(b, nil)
	go func() {
		_, _ = io.WriteString(a, "one\ntwo\n")
	}()
	for line := range c.Lines() {
		assert.Equal(t, "one", line)
		break
	}
	_ = a.Close()
	_ = c.Close()
}
