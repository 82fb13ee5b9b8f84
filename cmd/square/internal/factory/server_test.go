package factory

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/config"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/core"
	"github.com/hasirciogluhq/xsquare/cmd/square/internal/square"
)

func TestServerFactoryCreate(t *testing.T) {
	for _, mode := range []core.DispatchMode{core.DispatchSerial, core.DispatchConcurrent} {
		t.Run(string(mode), func(t *testing.T) {
			srv, err := NewServerFactory(&config.Config{Mode: mode, IdleTimeout: time.Minute}).Create()
			require.NoError(t, err)
			defer srv.Close()

			assert.Equal(t, mode, srv.Mode)
			handler, ok := srv.ConnectionHandler.(*square.Handler)
			require.True(t, ok)
			assert.Equal(t, time.Minute, handler.IdleTimeout)
		})
	}
}

func TestServerFactoryBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := &config.Config{Mode: core.DispatchConcurrent, Port: ln.Addr().(*net.TCPAddr).Port}
	_, err = NewServerFactory(cfg).Create()
	assert.Error(t, err)
}

func TestServerFactoryUnknownMode(t *testing.T) {
	_, err := NewServerFactory(&config.Config{Mode: "pool"}).Create()
	assert.Error(t, err)
}
