package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/errors"
)

func TestServerServesAndShutsDown(t *testing.T) {
	f := newFixture(t)
	cfg := config.DefaultRuntimeConfig().Server
	cfg.Addr = "127.0.0.1:0"

	srv := NewServer(cfg, f.handler)
	ln, err := srv.Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenReportsBusyAddress(t *testing.T) {
	cfg := config.DefaultRuntimeConfig().Server
	cfg.Addr = "127.0.0.1:0"
	first, err := NewServer(cfg, http.NotFoundHandler()).Listen()
	require.NoError(t, err)
	defer first.Close()

	cfg.Addr = first.Addr().String()
	_, err = NewServer(cfg, http.NotFoundHandler()).Listen()
	require.Error(t, err)
	assert.True(t, errors.IsSystemError(err))
}
