// Package daemon runs the Stepwise HTTP API as a long-lived foreground
// process and lets other invocations find, inspect and stop it.
package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/adrg/xdg"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/errors"
)

// PIDFileName is the PID file name.
const PIDFileName = "stepwise.pid"

// PIDFile records the PID of the serving process.
type PIDFile struct {
	path string
}

// NewPIDFile manages the PID file at path. An empty path uses
// DefaultPIDPath.
func NewPIDFile(path string) *PIDFile {
	if path == "" {
		path = DefaultPIDPath()
	}
	return &PIDFile{path: path}
}

// DefaultPIDPath returns the PID file location under the XDG state home.
func DefaultPIDPath() string {
	return filepath.Join(xdg.StateHome, config.AppName, PIDFileName)
}

// Path returns the PID file path.
func (p *PIDFile) Path() string { return p.path }

// Write records the current process.
func (p *PIDFile) Write() error {
	return p.WritePID(os.Getpid())
}

// WritePID records pid, creating the parent directory.
func (p *PIDFile) WritePID(pid int) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return errors.NewSystemErrorWithOp("write pid", "cannot create state directory", err)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return errors.NewSystemErrorWithOp("write pid", "cannot write PID file", err)
	}
	return nil
}

// Read returns the recorded PID. A missing file reads as
// ErrServerNotRunning.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.NewUserError("No server is running", errors.GetSuggestion(errors.ErrServerNotRunning)).
				WithCause(errors.ErrServerNotRunning)
		}
		return 0, errors.NewSystemErrorWithOp("read pid", "cannot read PID file", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid PID in %s", p.path)
	}
	return pid, nil
}

// Remove deletes the PID file. A missing file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return errors.NewSystemErrorWithOp("remove pid", "cannot remove PID file", err)
	}
	return nil
}

// RunningPID returns the recorded PID if that process is alive, or 0.
func (p *PIDFile) RunningPID() int {
	pid, err := p.Read()
	if err != nil || !IsProcessRunning(pid) {
		return 0
	}
	return pid
}

// IsProcessRunning reports whether a process with pid exists.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess always succeeds on Unix; signal 0 probes for the process.
	return process.Signal(syscall.Signal(0)) == nil
}
