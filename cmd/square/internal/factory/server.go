package factory

import (
	"fmt"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/config"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/core"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/logger"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/square"
)

// ServerFactory builds the square server from configuration
type ServerFactory struct {
	cfg *config.Config
}

// NewServerFactory creates a new server factory
func NewServerFactory(cfg *config.Config) *ServerFactory {
	return &ServerFactory{cfg: cfg}
}

// Create binds the listening port and wires the square handler to the
// configured dispatch mode
func (f *ServerFactory) Create() (*core.Server, error) {
	handler := f.createHandler()

	switch f.cfg.Mode {
	case core.DispatchSerial:
		logger.Info("Creating single-client server", "port", f.cfg.Port)
	case core.DispatchConcurrent:
		logger.Info("Creating concurrent server", "port", f.cfg.Port)
	default:
		return nil, fmt.Errorf("unknown server mode: %s", f.cfg.Mode)
	}

	server, err := core.NewServer(f.cfg.Port, handler, f.cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s server: %w", f.cfg.Mode, err)
	}
	return server, nil
}

func (f *ServerFactory) createHandler() core.ConnectionHandler {
	if f.cfg.IdleTimeout > 0 {
		logger.Info("Idle timeout enabled", "idle_timeout", f.cfg.IdleTimeout)
	}
	return &square.Handler{IdleTimeout: f.cfg.IdleTimeout}
}
