package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/logging"
)

// Server runs the API until its context is cancelled.
type Server struct {
	cfg config.ServerConfig
	srv *http.Server
}

// NewServer prepares a server for handler with the given settings.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
	}
}

// Listen binds the configured address. Binding separately from Serve lets
// callers report the resolved address before blocking.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, errors.NewSystemErrorWithOp("listen", "cannot bind "+s.cfg.Addr, err)
	}
	return ln, nil
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured timeout. Request contexts derive from
// ctx so open event streams end with it.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()
	logging.Info("api listening", logging.KeyAddr, ln.Addr().String())

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.NewSystemErrorWithOp("serve", "api server stopped", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.NewSystemErrorWithOp("shutdown", "api server did not stop cleanly", err)
	}
	logging.Info("api stopped")
	return nil
}
