package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync/atomic"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/protocol"
)

var (
	// ErrConnectionTerminated means the server closed the connection before
	// the expected reply arrived.
	ErrConnectionTerminated = errors.New("connection terminated unexpectedly")
	// ErrRequestRejected means the server answered "err" to the request.
	ErrRequestRejected = errors.New("request rejected by server")
	// ErrClosed is returned for any use of a client after Close.
	ErrClosed = errors.New("client is closed")
)

// Client sends squaring requests over one connection and reads the replies.
// Replies come back in request order, so the Nth GetReply answers the Nth
// SendRequest. SendRequest and GetReply may run on different goroutines, but
// each must not be called concurrently with itself.
type Client struct {
	conn   net.Conn
	in     *protocol.Reader
	out    *protocol.Writer
	closed atomic.Bool
}

// New connects to a server at host:port.
func New(host string, port int) (*Client, error) {
	return Dial(context.Background(), net.JoinHostPort(host, strconv.Itoa(port)))
}

// Dial connects to a server at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return &Client{
		conn: conn,
		in:   protocol.NewReader(conn),
		out:  protocol.NewWriter(conn),
	}, nil
}

// SendRequest sends x and flushes it to the network immediately.
func (c *Client) SendRequest(x uint32) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.out.WriteRequest(x); err != nil {
		return fmt.Errorf("send request %d: %w", x, err)
	}
	return nil
}

// GetReply blocks for the reply to the oldest unanswered request.
func (c *Client) GetReply() (uint64, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}

	line, err := c.in.ReadLine()
	if errors.Is(err, io.EOF) {
		return 0, ErrConnectionTerminated
	}
	if err != nil {
		return 0, fmt.Errorf("read reply: %w", err)
	}

	reply, err := protocol.ParseReply(line)
	if err != nil {
		return 0, err
	}
	if reply.Rejected {
		return 0, ErrRequestRejected
	}
	return reply.Value, nil
}

// Close releases the connection. A second Close returns ErrClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return c.conn.Close()
}
