package daemon

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/httpapi"
	"github.com/manav03panchal/stepwise/internal/procedures"
	"github.com/manav03panchal/stepwise/internal/session"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDaemon(t *testing.T, ready func(string)) *Daemon {
	t.Helper()
	dir := t.TempDir()
	return New(Options{
		PIDPath:     filepath.Join(dir, "stepwise.pid"),
		StatePath:   filepath.Join(dir, "server.json"),
		Ready:       ready,
		StopTimeout: time.Second,
		Logger:      quietLogger(),
	})
}

// =============================================================================
// PIDFile Tests
// =============================================================================

func TestPIDFile(t *testing.T) {
	p := NewPIDFile(filepath.Join(t.TempDir(), "nested", "stepwise.pid"))

	_, err := p.Read()
	assert.True(t, errors.Is(err, errors.ErrServerNotRunning))
	assert.Zero(t, p.RunningPID())

	require.NoError(t, p.Write())
	pid, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.Equal(t, os.Getpid(), p.RunningPID())

	require.NoError(t, p.Remove())
	require.NoError(t, p.Remove(), "removing twice is fine")
	assert.Zero(t, p.RunningPID())
}

func TestPIDFileInvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stepwise.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	p := NewPIDFile(path)
	_, err := p.Read()
	assert.Error(t, err)
	assert.Zero(t, p.RunningPID())
}

func TestDefaultPaths(t *testing.T) {
	assert.Equal(t, PIDFileName, filepath.Base(NewPIDFile("").Path()))
	assert.Contains(t, DefaultPIDPath(), config.AppName)
	assert.Equal(t, "server.json", filepath.Base(DefaultStatePath()))
}

func TestIsProcessRunning(t *testing.T) {
	assert.True(t, IsProcessRunning(os.Getpid()))
	assert.False(t, IsProcessRunning(0))
	assert.False(t, IsProcessRunning(-1))
}

// =============================================================================
// SignalHandler Tests
// =============================================================================

func TestSignalHandlerStopReleasesWait(t *testing.T) {
	h := NewSignalHandler()
	h.Setup()

	got := make(chan os.Signal, 1)
	go func() { got <- h.Wait(context.Background()) }()

	h.Stop()
	h.Stop()
	select {
	case sig := <-got:
		assert.Nil(t, sig)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Stop")
	}
}

func TestSignalHandlerCancelFollowsParent(t *testing.T) {
	h := NewSignalHandler()
	defer h.Stop()

	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := h.Cancel(parent, nil)
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("derived context outlived its parent")
	}
}

// =============================================================================
// Daemon Tests
// =============================================================================

func TestDaemonRun(t *testing.T) {
	addrCh := make(chan string, 1)
	d := testDaemon(t, func(addr string) { addrCh <- addr })

	sessions := session.NewManager(procedures.Opener{}, session.Options{MaxSessions: 4, Logger: quietLogger()})
	api := httpapi.New(sessions, httpapi.Options{Version: "test", Logger: quietLogger()})
	cfg := config.DefaultRuntimeConfig().Server
	cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx, sessions, httpapi.NewServer(cfg, api.Handler())) }()

	var addr string
	select {
	case addr = <-addrCh:
	case err := <-errCh:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server never became ready")
	}

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status := d.Status()
	assert.True(t, status.Running)
	assert.Equal(t, os.Getpid(), status.PID)
	assert.Equal(t, addr, status.Addr)
	assert.NotEmpty(t, status.Uptime)

	// The PID file now names a live process, so a second run is refused.
	second := New(Options{PIDPath: d.PIDFile().Path(), StatePath: filepath.Join(t.TempDir(), "s.json"), Logger: quietLogger()})
	err = second.Run(context.Background(), sessions, httpapi.NewServer(cfg, api.Handler()))
	assert.True(t, errors.Is(err, errors.ErrServerRunning))

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.False(t, d.Status().Running)
	_, err = os.Stat(d.PIDFile().Path())
	assert.True(t, os.IsNotExist(err), "PID file removed on shutdown")
	assert.Zero(t, sessions.Len(), "sessions closed on shutdown")
}

func TestDaemonRunListenFailure(t *testing.T) {
	d := testDaemon(t, nil)
	sessions := session.NewManager(procedures.Opener{}, session.Options{Logger: quietLogger()})
	cfg := config.DefaultRuntimeConfig().Server
	cfg.Addr = "256.0.0.1:http"

	err := d.Run(context.Background(), sessions, httpapi.NewServer(cfg, http.NotFoundHandler()))
	require.Error(t, err)
	assert.True(t, errors.IsSystemError(err))
	assert.Zero(t, d.PIDFile().RunningPID(), "no PID file is left behind")
}

func TestDaemonStatusIgnoresStaleState(t *testing.T) {
	d := testDaemon(t, nil)
	require.NoError(t, d.PIDFile().Write())
	require.NoError(t, d.writeState(State{PID: os.Getpid() + 1, Addr: "elsewhere"}))

	status := d.Status()
	assert.True(t, status.Running)
	assert.Empty(t, status.Addr, "state from another process is ignored")
}

func TestDaemonStopWithoutServer(t *testing.T) {
	d := testDaemon(t, nil)
	err := d.Stop()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrServerNotRunning))
	assert.False(t, d.Status().Running)

	require.NoError(t, d.PIDFile().WritePID(0))
	assert.True(t, errors.Is(d.Stop(), errors.ErrServerNotRunning), "a dead PID is not running")
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{48 * time.Hour, "2d"},
		{50 * time.Hour, "2d 2h"},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(int(tt.d.Seconds())), func(t *testing.T) {
			assert.Equal(t, tt.want, formatUptime(tt.d))
		})
	}
}
