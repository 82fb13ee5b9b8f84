package core

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/logger"
)

// ConnectionHandler services one accepted connection until the peer goes away.
// The handler owns the connection: it must close it before returning. A
// returned error is scoped to that connection and never stops the listener.
type ConnectionHandler interface {
	HandleConnection(ctx context.Context, conn net.Conn) error
}

// DispatchMode selects how the accept loop hands connections to the handler.
type DispatchMode string

const (
	// DispatchSerial handles each connection to completion before accepting
	// the next one. At most one client is served at a time.
	DispatchSerial DispatchMode = "single"
	// DispatchConcurrent runs one goroutine per accepted connection.
	DispatchConcurrent DispatchMode = "concurrent"
)

// ParseDispatchMode maps a configuration value to a DispatchMode.
func ParseDispatchMode(s string) (DispatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "serial", "sequential":
		return DispatchSerial, nil
	case "concurrent", "multi", "":
		return DispatchConcurrent, nil
	default:
		return "", fmt.Errorf("unknown dispatch mode: %s (supported: single, concurrent)", s)
	}
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFrom returns the connection-scoped logger stored by the server, or the
// process logger when ctx carries none.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return logger.L()
}
