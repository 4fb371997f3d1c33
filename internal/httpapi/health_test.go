package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/stepwise/internal/errors"
)

func TestHealthChecker(t *testing.T) {
	n := 2
	h := NewHealthChecker("1.2.3", func() int { return n })
	status := h.Check()
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, 2, status.Sessions)
	assert.Positive(t, status.Goroutines)
	assert.True(t, h.Healthy())

	h.AddCheck("b", func() error { return nil })
	h.AddCheck("a", func() error { return errors.New("broken") })
	status = h.Check()
	assert.Equal(t, "unhealthy", status.Status)
	require.Len(t, status.Checks, 2)
	assert.Equal(t, "a", status.Checks[0].Name, "checks are reported by name")
	assert.False(t, status.Checks[0].Healthy)
	assert.True(t, status.Checks[1].Healthy)
	assert.False(t, h.Healthy())
}

func TestHealthCheckerWithoutSessions(t *testing.T) {
	assert.Zero(t, NewHealthChecker("", nil).Check().Sessions)
}
