package httpapi

import (
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string        `json:"status"`
	Version       string        `json:"version,omitempty"`
	UptimeSeconds int64         `json:"uptimeSeconds"`
	Sessions      int           `json:"sessions"`
	Goroutines    int           `json:"goroutines"`
	MemoryMB      float64       `json:"memoryMb"`
	Checks        []CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthChecker reports process health for the API server.
type HealthChecker struct {
	mu        sync.RWMutex
	startTime time.Time
	version   string
	sessions  func() int
	checks    map[string]func() error
}

// NewHealthChecker creates a checker. sessions may be nil.
func NewHealthChecker(version string, sessions func() int) *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
		version:   version,
		sessions:  sessions,
		checks:    make(map[string]func() error),
	}
}

// AddCheck registers a named check.
func (h *HealthChecker) AddCheck(name string, check func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Check runs every registered check and returns the status.
func (h *HealthChecker) Check() HealthStatus {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := HealthStatus{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		MemoryMB:      float64(mem.Alloc) / 1024 / 1024,
	}
	if h.sessions != nil {
		status.Sessions = h.sessions()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, name := range slices.Sorted(maps.Keys(h.checks)) {
		check := h.checks[name]
		result := CheckResult{Name: name, Healthy: true}
		if err := check(); err != nil {
			result.Healthy = false
			result.Error = err.Error()
			status.Status = "unhealthy"
		}
		status.Checks = append(status.Checks, result)
	}
	return status
}

// Healthy reports whether every check passes.
func (h *HealthChecker) Healthy() bool {
	return h.Check().Status == "healthy"
}
