// Package session keeps the procedure instances that the HTTP API drives.
// Each session owns one instance; sessions idle for longer than the TTL are
// stopped and evicted by a periodic sweep.
package session

import (
	"cmp"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/logging"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

// DefaultSweepSchedule runs the idle sweep once a minute.
const DefaultSweepSchedule = "@every 1m"

// Session is one procedure instance addressed by id.
type Session struct {
	ID        string
	CreatedAt time.Time

	instance procedures.Instance
	lastUsed atomic.Int64
}

// Instance returns the session's procedure instance.
func (s *Session) Instance() procedures.Instance { return s.instance }

// LastUsed returns when the session was last looked up.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

// Info summarizes a session for listings.
type Info struct {
	ID        string            `json:"id"`
	Procedure string            `json:"procedure"`
	Family    procedures.Family `json:"family"`
	CreatedAt time.Time         `json:"createdAt"`
	LastUsed  time.Time         `json:"lastUsed"`
	Flags     engine.Flags      `json:"flags"`
	Steps     int               `json:"historyLength"`
}

// Info returns a summary of the session.
func (s *Session) Info() Info {
	f := s.instance.Frame()
	return Info{
		ID:        s.ID,
		Procedure: s.instance.Spec().ID,
		Family:    s.instance.Spec().Family,
		CreatedAt: s.CreatedAt,
		LastUsed:  s.LastUsed(),
		Flags:     f.Flags,
		Steps:     f.HistoryLen,
	}
}

// Options configure a Manager.
type Options struct {
	// MaxSessions caps concurrently held sessions.
	MaxSessions int
	// TTL evicts sessions idle for longer than this. Zero disables eviction.
	TTL time.Duration
	// Schedule is the cron spec for the idle sweep.
	Schedule string
	Logger   *slog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Manager owns the live sessions.
type Manager struct {
	opener procedures.Opener
	opts   Options
	logger *slog.Logger
	cron   *cron.Cron

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty manager that opens procedures with opener.
func NewManager(opener procedures.Opener, opts Options) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Schedule == "" {
		opts.Schedule = DefaultSweepSchedule
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Logger()
	}
	return &Manager{
		opener:   opener,
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Opener returns the opener sessions are built with.
func (m *Manager) Opener() procedures.Opener { return m.opener }

// Create opens procedure id with p and stores it under a fresh id.
func (m *Manager) Create(id string, p procedures.Params, speed time.Duration) (*Session, error) {
	m.Sweep()

	if m.full() {
		return nil, m.limitError()
	}

	in, err := m.opener.Open(id, p, speed)
	if err != nil {
		return nil, err
	}

	now := m.opts.Now()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		instance:  in,
	}
	s.touch(now)

	// Another Create may have filled the last slot while this one was opening.
	m.mu.Lock()
	if m.fullLocked() {
		m.mu.Unlock()
		in.Stop()
		return nil, m.limitError()
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created",
		logging.KeySessionID, s.ID,
		logging.KeyProcedure, in.Spec().ID)
	return s, nil
}

func (m *Manager) full() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fullLocked()
}

func (m *Manager) fullLocked() bool {
	return m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions
}

func (m *Manager) limitError() error {
	return errors.NewUserErrorWithField("sessions", strconv.Itoa(m.opts.MaxSessions),
		"Session limit reached",
		errors.GetSuggestion(errors.ErrSessionLimit)).
		WithCause(errors.ErrSessionLimit)
}

// Get returns the session with id and marks it used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	s.touch(m.opts.Now())
	return s, nil
}

// Delete stops the session's run and forgets it.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return notFound(id)
	}
	s.instance.Stop()
	m.logger.Info("session deleted", logging.KeySessionID, id)
	return nil
}

// List returns a summary of every session, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(sessions, func(a, b *Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	out := make([]Info, len(sessions))
	for i, s := range sessions {
		out[i] = s.Info()
	}
	return out
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// it removed. Sessions that are actively running are kept.
func (m *Manager) Sweep() int {
	if m.opts.TTL <= 0 {
		return 0
	}
	cutoff := m.opts.Now().Add(-m.opts.TTL)

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if !s.LastUsed().Before(cutoff) {
			continue
		}
		if f := s.instance.Frame().Flags; f.Running && !f.Paused {
			continue
		}
		expired = append(expired, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.instance.Stop()
		m.logger.Debug("session expired", logging.KeySessionID, s.ID)
	}
	return len(expired)
}

// Start schedules the periodic idle sweep.
func (m *Manager) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(m.opts.Schedule, func() { m.Sweep() }); err != nil {
		return errors.Wrap(err, "schedule session sweep")
	}
	c.Start()
	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()
	return nil
}

// Close stops the sweep and every session.
func (m *Manager) Close() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	for _, s := range sessions {
		s.instance.Stop()
	}
}

func notFound(id string) error {
	return errors.NewUserErrorWithField("session", id,
		"Session not found",
		errors.GetSuggestion(errors.ErrSessionNotFound)).
		WithCause(errors.ErrSessionNotFound)
}
