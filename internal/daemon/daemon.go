package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/adrg/xdg"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/httpapi"
	"github.com/manav03panchal/stepwise/internal/logging"
	"github.com/manav03panchal/stepwise/internal/session"
)

// DefaultStopTimeout is how long Stop waits before killing the server.
const DefaultStopTimeout = 10 * time.Second

// Options configure a Daemon.
type Options struct {
	// PIDPath and StatePath default to files under the XDG state home.
	PIDPath   string
	StatePath string

	// Ready is called with the bound address before the server starts
	// accepting connections.
	Ready func(addr string)

	StopTimeout time.Duration
	Logger      *slog.Logger
}

// Daemon supervises one serving process.
type Daemon struct {
	pidFile   *PIDFile
	statePath string
	opts      Options
	logger    *slog.Logger
}

// State is what a running server records about itself.
type State struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
}

// Status represents the server status as seen from any process.
type Status struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	Addr      string    `json:"addr,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
	Uptime    string    `json:"uptime,omitempty"`
}

// New creates a daemon manager.
func New(opts Options) *Daemon {
	if opts.StatePath == "" {
		opts.StatePath = DefaultStatePath()
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Logger()
	}
	return &Daemon{
		pidFile:   NewPIDFile(opts.PIDPath),
		statePath: opts.StatePath,
		opts:      opts,
		logger:    logger,
	}
}

// DefaultStatePath returns the state file location under the XDG state home.
func DefaultStatePath() string {
	return filepath.Join(xdg.StateHome, config.AppName, "server.json")
}

// PIDFile returns the daemon's PID file.
func (d *Daemon) PIDFile() *PIDFile { return d.pidFile }

// Run serves the API in the foreground until ctx is done or a termination
// signal arrives. It refuses to start while another live process holds the
// PID file. The session sweep runs for as long as the server does.
func (d *Daemon) Run(ctx context.Context, sessions *session.Manager, server *httpapi.Server) error {
	if pid := d.pidFile.RunningPID(); pid > 0 {
		return errors.NewUserErrorWithField("pid", fmt.Sprint(pid), "A server is already running",
			errors.GetSuggestion(errors.ErrServerRunning)).
			WithCause(errors.ErrServerRunning)
	}

	ln, err := server.Listen()
	if err != nil {
		return err
	}
	if err := d.pidFile.Write(); err != nil {
		ln.Close()
		return err
	}
	defer d.cleanup()

	state := State{PID: os.Getpid(), Addr: ln.Addr().String(), StartedAt: time.Now()}
	if err := d.writeState(state); err != nil {
		d.logger.Warn("failed to write server state", logging.KeyError, err, "path", d.statePath)
	}

	if err := sessions.Start(); err != nil {
		ln.Close()
		return err
	}
	defer sessions.Close()

	sigHandler := NewSignalHandler()
	sigHandler.Setup()
	defer sigHandler.Stop()

	runCtx, cancel := sigHandler.Cancel(ctx, func(sig os.Signal) {
		d.logger.Info("received signal", "signal", sig.String())
	})
	defer cancel()

	d.logger.Debug("server started", "pid", state.PID, logging.KeyAddr, state.Addr)
	if d.opts.Ready != nil {
		d.opts.Ready(state.Addr)
	}
	return server.Serve(runCtx, ln)
}

func (d *Daemon) cleanup() {
	if err := d.pidFile.Remove(); err != nil {
		d.logger.Warn("failed to remove PID file", logging.KeyError, err)
	}
	d.removeState()
}

// Status reports whether a server is running and where it listens.
func (d *Daemon) Status() Status {
	pid := d.pidFile.RunningPID()
	if pid == 0 {
		return Status{}
	}
	status := Status{Running: true, PID: pid}
	if state, err := d.readState(); err == nil && state.PID == pid {
		status.Addr = state.Addr
		status.StartedAt = state.StartedAt
		status.Uptime = formatUptime(time.Since(state.StartedAt))
	}
	return status
}

// Stop asks the running server to shut down and waits for it to exit,
// killing it after the stop timeout.
func (d *Daemon) Stop() error {
	pid := d.pidFile.RunningPID()
	if pid == 0 {
		return errors.NewUserError("No server is running", errors.GetSuggestion(errors.ErrServerNotRunning)).
			WithCause(errors.ErrServerNotRunning)
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return errors.NewSystemErrorWithOp("stop", "cannot find server process", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return errors.NewSystemErrorWithOp("stop", "cannot signal server process", err)
	}

	deadline := time.Now().Add(d.opts.StopTimeout)
	for IsProcessRunning(pid) {
		if time.Now().After(deadline) {
			d.logger.Warn("server did not stop in time, killing", "pid", pid)
			if err := process.Kill(); err != nil {
				return errors.NewSystemErrorWithOp("stop", "cannot kill server process", err)
			}
			d.cleanup()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

func (d *Daemon) writeState(state State) error {
	if err := os.MkdirAll(filepath.Dir(d.statePath), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(d.statePath, data, 0o644)
}

func (d *Daemon) readState() (*State, error) {
	data, err := os.ReadFile(d.statePath)
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (d *Daemon) removeState() {
	if err := os.Remove(d.statePath); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("failed to remove server state file", logging.KeyError, err, "path", d.statePath)
	}
}

// formatUptime formats a duration as uptime.
func formatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
