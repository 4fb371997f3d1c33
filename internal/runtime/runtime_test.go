package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/output"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

// =============================================================================
// Context Tests
// =============================================================================

func newContext(t *testing.T, opts Options) *Context {
	t.Helper()
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(t.TempDir(), "missing.yaml")
	}
	opts.LogOutput = io.Discard
	ctx, err := New(opts)
	require.NoError(t, err)
	return ctx
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, config.DefaultPath(), opts.ConfigPath)
	assert.Equal(t, output.FormatCLI, opts.Format)
	assert.Equal(t, output.ColorAuto, opts.ColorMode)
	assert.False(t, opts.Debug)
}

func TestNew(t *testing.T) {
	ctx := newContext(t, Options{})

	assert.NotNil(t, ctx.Formatter)
	assert.NotNil(t, ctx.Registry)
	assert.NotNil(t, ctx.Metrics)
	assert.Equal(t, config.DefaultRuntimeConfig(), ctx.Config, "a missing file yields the defaults")
}

func TestNewWithOptions(t *testing.T) {
	ctx := newContext(t, Options{
		Format:    output.FormatJSON,
		ColorMode: output.ColorNever,
		Debug:     true,
	})

	assert.Equal(t, output.FormatJSON, ctx.Formatter.Format)
	assert.Equal(t, output.ColorNever, ctx.Formatter.ColorMode)
	assert.True(t, ctx.Debug)
}

func TestNewReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  history_capacity: 42\n"), 0o644))

	ctx := newContext(t, Options{ConfigPath: path})
	assert.Equal(t, 42, ctx.Config.Engine.HistoryCapacity)
	assert.Equal(t, path, ctx.ConfigPath)
}

func TestNewWithEnvConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  max_sessions: 7\n"), 0o644))
	t.Setenv(EnvConfigPath, path)

	ctx := newContext(t, Options{ConfigPath: "/nonexistent/ignored.yaml"})
	assert.Equal(t, 7, ctx.Config.Server.MaxSessions)
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Run("bad_yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("engine: [\n"), 0o644))

		_, err := New(Options{ConfigPath: path, LogOutput: io.Discard})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
	})

	t.Run("bad_log_level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644))

		_, err := New(Options{ConfigPath: path, LogOutput: io.Discard})
		require.Error(t, err)
		assert.True(t, errors.IsUserError(err))
	})
}

func TestContextOpener(t *testing.T) {
	ctx := newContext(t, Options{})
	ctx.Config.Engine.PollInterval = time.Millisecond

	in, err := ctx.Opener().Open("insertion", procedures.Params{"values": "2,1"}, 0)
	require.NoError(t, err)
	require.True(t, in.Start())
	wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, in.Wait(wctx))

	families, err := ctx.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "stepwise_runs_started_total", "runs feed the context's registry")
}

func TestContextSessions(t *testing.T) {
	ctx := newContext(t, Options{})
	ctx.Config.Server.MaxSessions = 1

	m := ctx.Sessions()
	defer m.Close()
	_, err := m.Create("bubble", nil, procedures.DefaultSpeed)
	require.NoError(t, err)
	_, err = m.Create("bubble", nil, procedures.DefaultSpeed)
	assert.True(t, errors.Is(err, errors.ErrSessionLimit))
}

func TestContextIsJSON(t *testing.T) {
	t.Run("json_format", func(t *testing.T) {
		ctx := newContext(t, Options{Format: output.FormatJSON})
		assert.True(t, ctx.IsJSON())
	})

	t.Run("cli_format", func(t *testing.T) {
		ctx := newContext(t, Options{Format: output.FormatCLI})
		assert.False(t, ctx.IsJSON())
	})
}

func TestContextDebugf(t *testing.T) {
	t.Run("debug_enabled", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newContext(t, Options{Debug: true})
		ctx.Formatter.Writer = &buf

		ctx.Debugf("value=%d", 3)
		assert.Equal(t, "[DEBUG] value=3\n", buf.String())
	})

	t.Run("debug_disabled", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newContext(t, Options{})
		ctx.Formatter.Writer = &buf

		ctx.Debugf("value=%d", 3)
		assert.Empty(t, buf.String())
	})
}

// =============================================================================
// Error Reporting Tests
// =============================================================================

func TestFormatError(t *testing.T) {
	_, err := procedures.Lookup("bogosort")
	require.Error(t, err)

	msg := FormatError(err)
	assert.Contains(t, msg, "Unknown procedure")
	assert.Contains(t, msg, "stepwise list")
	assert.Contains(t, msg, "Examples:\n  stepwise list\n  stepwise play quick")
}

func TestReportError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Zero(t, ReportError(&buf, output.FormatCLI, nil))
		assert.Empty(t, buf.String())
	})

	t.Run("cli", func(t *testing.T) {
		var buf bytes.Buffer
		code := ReportError(&buf, output.FormatCLI, errors.NewUserError("bad input", ""))
		assert.Equal(t, 2, code)
		assert.Equal(t, "Error: bad input\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		err := errors.NewSystemErrorWithOp("listen", "port busy", errors.New("in use"))
		code := ReportError(&buf, output.FormatJSON, err)
		assert.Equal(t, 3, code)

		var resp output.ErrorResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, "system", resp.Category)
	})
}
