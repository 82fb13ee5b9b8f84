package client

import (
	"errors"
	"io"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/core"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/protocol"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/square"
)

func startSquareServer(t *testing.T) (string, int) {
	t.Helper()

	srv, err := core.Listen("127.0.0.1:0", &square.Handler{}, core.DispatchConcurrent)
	require.NoError(t, err)
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })

	addr := srv.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

// scriptedServer accepts one connection and hands it to script.
func scriptedServer(t *testing.T, script func(conn net.Conn)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}()
	return ln.Addr().String()
}

func dialScripted(t *testing.T, script func(conn net.Conn)) *Client {
	t.Helper()

	host, portStr, err := net.SplitHostPort(scriptedServer(t, script))
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := New(host, port)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientRoundTrip(t *testing.T) {
	host, port := startSquareServer(t)

	c, err := New(host, port)
	require.NoError(t, err)

	require.NoError(t, c.SendRequest(7))
	y, err := c.GetReply()
	require.NoError(t, err)
	assert.Equal(t, uint64(49), y)

	require.NoError(t, c.SendRequest(0))
	y, err = c.GetReply()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), y)

	require.NoError(t, c.Close())
}

func TestClientPipelinedRequestsKeepOrder(t *testing.T) {
	host, port := startSquareServer(t)

	c, err := New(host, port)
	require.NoError(t, err)
	defer c.Close()

	const n = 100
	for x := uint32(1); x <= n; x++ {
		require.NoError(t, c.SendRequest(x))
	}
	for x := uint64(1); x <= n; x++ {
		y, err := c.GetReply()
		require.NoError(t, err)
		assert.Equal(t, x*x, y)
	}
}

func TestClientConnectionTerminated(t *testing.T) {
	c := dialScripted(t, func(conn net.Conn) {
		protocol.NewReader(conn).ReadLine()
	})

	require.NoError(t, c.SendRequest(3))
	_, err := c.GetReply()
	assert.ErrorIs(t, err, ErrConnectionTerminated)
}

func TestClientProtocolViolation(t *testing.T) {
	c := dialScripted(t, func(conn net.Conn) {
		protocol.NewReader(conn).ReadLine()
		io.WriteString(conn, "banana\n")
	})

	require.NoError(t, c.SendRequest(3))
	_, err := c.GetReply()
	var violation *protocol.ProtocolViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "banana", violation.Line)
	assert.False(t, errors.Is(err, ErrConnectionTerminated))
}

func TestClientRejectedReply(t *testing.T) {
	c := dialScripted(t, func(conn net.Conn) {
		protocol.NewReader(conn).ReadLine()
		io.WriteString(conn, "err\n")
	})

	require.NoError(t, c.SendRequest(3))
	_, err := c.GetReply()
	assert.ErrorIs(t, err, ErrRequestRejected)
}

func TestClientUseAfterClose(t *testing.T) {
	host, port := startSquareServer(t)

	c, err := New(host, port)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Close(), ErrClosed)
	assert.ErrorIs(t, c.SendRequest(1), ErrClosed)
	_, err = c.GetReply()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClientUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	_, err = New("127.0.0.1", port)
	assert.Error(t, err)
}
