// Package httpapi exposes the procedure registry and player sessions over
// HTTP. Control endpoints mirror the engine: a call that is invalid for the
// current run state is a no-op and still answers 200 with the frame.
package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/logging"
	"github.com/manav03panchal/stepwise/internal/procedures"
	"github.com/manav03panchal/stepwise/internal/session"
	"github.com/manav03panchal/stepwise/internal/validate"
)

// DefaultStreamInterval is how often the event stream polls a session.
const DefaultStreamInterval = 50 * time.Millisecond

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Options configure the API.
type Options struct {
	Version string
	// Registerer receives the HTTP collectors. Nil skips registration.
	Registerer prometheus.Registerer
	// Gatherer backs GET /metrics. Nil serves the default gatherer.
	Gatherer       prometheus.Gatherer
	StreamInterval time.Duration
	Logger         *slog.Logger
}

// API serves the HTTP endpoints.
type API struct {
	sessions *session.Manager
	health   *HealthChecker
	opts     Options
	logger   *slog.Logger
	requests *prometheus.CounterVec
}

// New creates the API over a session manager.
func New(sessions *session.Manager, opts Options) *API {
	if opts.StreamInterval <= 0 {
		opts.StreamInterval = DefaultStreamInterval
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Logger()
	}
	a := &API{
		sessions: sessions,
		health:   NewHealthChecker(opts.Version, sessions.Len),
		opts:     opts,
		logger:   logger,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
	}
	if opts.Registerer != nil {
		opts.Registerer.MustRegister(a.requests, prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "stepwise_sessions",
				Help: "Number of live player sessions",
			},
			func() float64 { return float64(sessions.Len()) },
		))
	}
	return a
}

// Health returns the checker behind GET /health.
func (a *API) Health() *HealthChecker { return a.health }

// Handler returns the router.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.instrument)

	r.Get("/health", a.getHealth)
	r.Handle("/metrics", promhttp.HandlerFor(a.opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/procedures", a.listProcedures)
		r.Get("/procedures/{procedure}", a.getProcedure)

		r.Get("/sessions", a.listSessions)
		r.Post("/sessions", a.createSession)
		r.Route("/sessions/{session}", func(r chi.Router) {
			r.Get("/", a.getSession)
			r.Delete("/", a.deleteSession)
			r.Get("/events", a.streamSession)
			r.Put("/speed", a.setSpeed)
			r.Post("/seek", a.seek)
			r.Post("/reset", a.reset)
			r.Post("/{action}", a.control)
		})
	})
	return r
}

// instrument tags the request context with an id, logs the request and
// counts it by route pattern.
func (a *API) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logging.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(logging.WithRequestID(r.Context(), id))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		a.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		logging.LoggerFromContext(r.Context()).Debug("request",
			logging.KeyMethod, r.Method,
			logging.KeyRoute, route,
			logging.KeyStatus, status,
			logging.KeyDuration, time.Since(start).Milliseconds())
	})
}

func (a *API) getHealth(w http.ResponseWriter, _ *http.Request) {
	status := a.health.Check()
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (a *API) listProcedures(w http.ResponseWriter, r *http.Request) {
	family := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("family")))
	if family == "" {
		writeJSON(w, http.StatusOK, procedures.All())
		return
	}
	if !slices.Contains(procedures.Families, procedures.Family(family)) {
		a.writeError(w, r, errors.NewUserErrorWithField("family", family,
			"Unknown procedure family",
			"Families are sorting, graph, pathfinding, dp and structures").
			WithCause(errors.ErrInvalidParams))
		return
	}
	writeJSON(w, http.StatusOK, procedures.ByFamily(procedures.Family(family)))
}

func (a *API) getProcedure(w http.ResponseWriter, r *http.Request) {
	spec, err := procedures.Lookup(chi.URLParam(r, "procedure"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

func (a *API) listSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.sessions.List())
}

// CreateRequest is the body of POST /api/sessions.
type CreateRequest struct {
	Procedure string            `json:"procedure"`
	Params    procedures.Params `json:"params,omitempty"`
	// Speed is a Go duration such as "50ms". Empty picks the family
	// default; "0" runs without delay.
	Speed string `json:"speed,omitempty"`
}

func (a *API) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := decodeBody(r, &req, false); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := validate.NonEmpty("procedure", req.Procedure); err != nil {
		a.writeError(w, r, err)
		return
	}
	speed := procedures.DefaultSpeed
	if req.Speed != "" {
		d, err := parseSpeed(req.Speed)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		speed = d
	}
	s, err := a.sessions.Create(req.Procedure, req.Params, speed)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+s.ID)
	writeJSON(w, http.StatusCreated, view(s, nil))
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view(s, nil))
}

func (a *API) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Delete(chi.URLParam(r, "session")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actions maps control verbs to player calls. Each reports whether it
// changed anything.
var actions = map[string]func(procedures.Instance) bool{
	"start":   procedures.Instance.Start,
	"pause":   procedures.Instance.Pause,
	"resume":  procedures.Instance.Resume,
	"stop":    procedures.Instance.Stop,
	"back":    procedures.Instance.StepBack,
	"forward": procedures.Instance.StepForward,
	"restart": func(in procedures.Instance) bool {
		in.Restart()
		return true
	},
}

func (a *API) control(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "action"))
	act, ok := actions[name]
	if !ok {
		a.writeError(w, r, errors.NewUserErrorWithField("action", name,
			"Unknown action",
			"Actions are start, pause, resume, stop, back, forward, restart, reset and seek").
			WithCause(errors.ErrInvalidParams))
		return
	}
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	applied := act(s.Instance())
	logging.LoggerFromContext(r.Context()).Debug("control",
		logging.KeySessionID, s.ID,
		logging.KeyOperation, name,
		"applied", applied)
	writeJSON(w, http.StatusOK, view(s, &applied))
}

// SpeedRequest is the body of PUT /api/sessions/{id}/speed.
type SpeedRequest struct {
	Speed string `json:"speed"`
}

func (a *API) setSpeed(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var req SpeedRequest
	if err := decodeBody(r, &req, false); err != nil {
		a.writeError(w, r, err)
		return
	}
	d, err := parseSpeed(req.Speed)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if d, err = a.sessions.Opener().Speed(s.Instance().Spec().Family, d); err != nil {
		a.writeError(w, r, err)
		return
	}
	s.Instance().SetSpeed(d)
	applied := true
	writeJSON(w, http.StatusOK, view(s, &applied))
}

// SeekRequest is the body of POST /api/sessions/{id}/seek.
type SeekRequest struct {
	Index int `json:"index"`
}

func (a *API) seek(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var req SeekRequest
	if err := decodeBody(r, &req, false); err != nil {
		a.writeError(w, r, err)
		return
	}
	applied := s.Instance().Seek(req.Index)
	writeJSON(w, http.StatusOK, view(s, &applied))
}

// ResetRequest is the optional body of POST /api/sessions/{id}/reset.
// Without params the current input is restored.
type ResetRequest struct {
	Params procedures.Params `json:"params,omitempty"`
}

func (a *API) reset(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var req ResetRequest
	if err := decodeBody(r, &req, true); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.Params == nil {
		s.Instance().Restart()
	} else if err := s.Instance().Reset(req.Params); err != nil {
		a.writeError(w, r, err)
		return
	}
	applied := true
	writeJSON(w, http.StatusOK, view(s, &applied))
}

// streamSession writes a server-sent event whenever the session's frame
// moves, until the client goes away.
func (a *API) streamSession(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.writeError(w, r, errors.NewSystemError("streaming not supported", nil))
		return
	}
	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(a.opts.StreamInterval)
	defer ticker.Stop()

	var last frameKey
	first := true
	for {
		f := s.Instance().Frame()
		if key := keyOf(f); first || key != last {
			first, last = false, key
			data, err := json.Marshal(view(s, nil))
			if err != nil {
				a.logger.Error("encode frame", logging.KeyError, err)
				return
			}
			if _, err := io.WriteString(w, "event: frame\ndata: "+string(data)+"\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// frameKey identifies when a frame is worth resending.
type frameKey struct {
	runID   string
	outcome engine.Outcome
	flags   engine.Flags
	length  int
	cursor  int
	seq     uint64
}

func keyOf(f engine.Frame) frameKey {
	return frameKey{
		runID:   f.LastRun.RunID,
		outcome: f.LastRun.Outcome,
		flags:   f.Flags,
		length:  f.HistoryLen,
		cursor:  f.Cursor,
		seq:     f.Seq,
	}
}

func (a *API) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := a.sessions.Get(chi.URLParam(r, "session"))
	if err != nil {
		a.writeError(w, r, err)
		return nil, false
	}
	return s, true
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID         string            `json:"id"`
	Procedure  string            `json:"procedure"`
	Family     procedures.Family `json:"family"`
	Params     procedures.Params `json:"params,omitempty"`
	Applied    *bool             `json:"applied,omitempty"`
	SourceLine string            `json:"sourceLine,omitempty"`
	Frame      engine.Frame      `json:"frame"`
}

func view(s *session.Session, applied *bool) SessionView {
	in := s.Instance()
	f := in.Frame()
	return SessionView{
		ID:         s.ID,
		Procedure:  in.Spec().ID,
		Family:     in.Spec().Family,
		Params:     in.Params(),
		Applied:    applied,
		SourceLine: in.Spec().SourceLine(f.Line),
		Frame:      f,
	}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error      string `json:"error"`
	Category   string `json:"category"`
	Field      string `json:"field,omitempty"`
	Value      string `json:"value,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	resp := ErrorResponse{
		Error:      err.Error(),
		Category:   errors.Classify(err).String(),
		Suggestion: errors.GetSuggestion(err),
	}
	if ue, ok := errors.AsUserError(err); ok {
		resp.Field = ue.Field
		resp.Value = ue.Value
	}
	if status >= http.StatusInternalServerError {
		logging.LoggerFromContext(r.Context()).Error("request failed", logging.KeyError, err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logging.Error("encode response", logging.KeyError, err)
	}
}

// decodeBody reads a JSON body into v. Unknown fields are rejected.
func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && err == io.EOF {
			return nil
		}
		return errors.NewUserError("Invalid request body: "+err.Error(),
			"Send a JSON object").
			WithCause(errors.ErrInvalidParams)
	}
	return nil
}

func parseSpeed(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d < 0 {
		return 0, errors.NewUserErrorWithField("speed", s,
			"Invalid speed",
			errors.GetSuggestion(errors.ErrSpeedOutOfRange)).
			WithCause(errors.ErrSpeedOutOfRange)
	}
	return d, nil
}
