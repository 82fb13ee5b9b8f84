package square

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"syscall"
	"time"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/core"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/metrics"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/protocol"
)

// Handler answers each request line with the square of its number, or "err"
// for lines that are not a number. It implements core.ConnectionHandler.
type Handler struct {
	// IdleTimeout bounds the wait for the next request. Zero waits forever.
	IdleTimeout time.Duration
}

// HandleConnection takes full ownership of conn. It returns nil when the
// client disconnects and an error when the connection fails mid-session.
// Either way conn is closed before it returns.
func (h *Handler) HandleConnection(ctx context.Context, conn net.Conn) (err error) {
	log := core.LoggerFrom(ctx)

	defer func() {
		err = errors.Join(err, release(conn))
	}()

	in := protocol.NewReader(conn)
	out := protocol.NewWriter(conn)

	for {
		if h.IdleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(h.IdleTimeout)); err != nil {
				return fmt.Errorf("set read deadline: %w", err)
			}
		}

		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}

		var reply protocol.Reply
		switch {
		case err == nil:
			log.Debug("request", "line", line)
			reply = respond(line)
		case protocol.IsMalformed(err):
			log.Debug("request", "error", err)
			reply = protocol.Rejected
		default:
			return fmt.Errorf("read request: %w", err)
		}

		if err := out.WriteReply(reply); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
		logReply(log, reply)
	}
}

func respond(line string) protocol.Reply {
	x, err := protocol.Decode(line)
	if err != nil {
		return protocol.Rejected
	}
	return protocol.Reply{Value: protocol.Square(x)}
}

func logReply(log *slog.Logger, reply protocol.Reply) {
	if reply.Rejected {
		metrics.Replies.WithLabelValues("err").Inc()
		log.Debug("reply", "value", protocol.RejectToken)
		return
	}
	metrics.Replies.WithLabelValues("ok").Inc()
	log.Debug("reply", "value", reply.Value)
}

// release shuts the output side and then the whole connection. The close is
// attempted even when shutting the output side fails.
func release(conn net.Conn) error {
	var errWrite error
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		errWrite = cw.CloseWrite()
		// Peer already gone; nothing to report.
		if errors.Is(errWrite, net.ErrClosed) || errors.Is(errWrite, syscall.ENOTCONN) {
			errWrite = nil
		}
	}
	errClose := conn.Close()
	if errors.Is(errClose, net.ErrClosed) {
		errClose = nil
	}
	return errors.Join(errWrite, errClose)
}
