package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/logger"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/metrics"
)

var (
	// ErrListenerFailure wraps errors from the listening socket itself.
	// They end Serve.
	ErrListenerFailure = errors.New("listener failure")
	// ErrServerClosed is returned by Serve after Close.
	ErrServerClosed = errors.New("server closed")
)

// Server is the TCP accept loop. It knows nothing about the wire protocol;
// that lives entirely in the ConnectionHandler.
type Server struct {
	Listener          net.Listener
	ConnectionHandler ConnectionHandler
	Mode              DispatchMode

	closed atomic.Bool
}

// NewServer binds the given port on all interfaces. Binding happens here, so a
// port already in use fails before Serve is ever called.
func NewServer(port int, handler ConnectionHandler, mode DispatchMode) (*Server, error) {
	return Listen(net.JoinHostPort("", strconv.Itoa(port)), handler, mode)
}

// Listen is NewServer for an explicit host:port address.
func Listen(addr string, handler ConnectionHandler, mode DispatchMode) (*Server, error) {
	if handler == nil {
		return nil, errors.New("connection handler is required")
	}
	if mode != DispatchSerial && mode != DispatchConcurrent {
		return nil, fmt.Errorf("unknown dispatch mode: %q", mode)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	return &Server{
		Listener:          listener,
		ConnectionHandler: handler,
		Mode:              mode,
	}, nil
}

// Addr returns the bound listening address.
func (s *Server) Addr() net.Addr {
	return s.Listener.Addr()
}

// Serve accepts connections until the listening socket fails or Close is
// called. Failures of individual connections are logged and never end Serve.
func (s *Server) Serve() error {
	logger.Info("Accepting connections", "addr", s.Addr().String(), "mode", s.Mode)

	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			return fmt.Errorf("%w: %w", ErrListenerFailure, err)
		}
		metrics.ConnectionsAccepted.WithLabelValues(string(s.Mode)).Inc()

		if s.Mode == DispatchSerial {
			s.handleConnection(conn)
			continue
		}
		// Spawn and forget: the goroutine owns conn and cleans up after itself.
		go s.handleConnection(conn)
	}
}

// Close stops the listener. Handlers already running are left to finish.
func (s *Server) Close() error {
	s.closed.Store(true)
	return s.Listener.Close()
}

func (s *Server) handleConnection(conn net.Conn) {
	owned := &ownedConn{Conn: conn}
	log := logger.With("conn_id", uuid.NewString(), "remote_addr", conn.RemoteAddr().String())

	metrics.ActiveHandlers.Inc()
	defer metrics.ActiveHandlers.Dec()

	// Runs on every exit path, including a panic inside the handler.
	defer owned.Close()

	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerFailures.WithLabelValues("panic").Inc()
			log.Error("Connection handler panicked", "panic", r)
		}
	}()

	log.Info("Client connected")
	if err := s.ConnectionHandler.HandleConnection(withLogger(context.Background(), log), owned); err != nil {
		metrics.HandlerFailures.WithLabelValues("io").Inc()
		log.Error("Connection failed", "error", err)
		return
	}
	log.Info("Client disconnected")
}

// ownedConn makes Close idempotent so the handler and the server's cleanup
// together close the socket exactly once.
type ownedConn struct {
	net.Conn

	once sync.Once
	err  error
}

func (c *ownedConn) Close() error {
	c.once.Do(func() {
		c.err = c.Conn.Close()
	})
	return c.err
}

// CloseWrite half-closes the output side when the transport supports it.
func (c *ownedConn) CloseWrite() error {
	if cw, ok := c.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}
