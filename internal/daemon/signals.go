package daemon

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalHandler turns termination signals into a shutdown request.
type SignalHandler struct {
	signals chan os.Signal
	done    chan struct{}
	once    sync.Once
}

// NewSignalHandler creates a new signal handler.
func NewSignalHandler() *SignalHandler {
	return &SignalHandler{
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
}

// Setup registers for SIGINT, SIGTERM and SIGHUP.
func (h *SignalHandler) Setup() {
	signal.Notify(h.signals,
		syscall.SIGINT,  // Ctrl+C
		syscall.SIGTERM, // serve stop
		syscall.SIGHUP,  // terminal hangup
	)
}

// Wait blocks until a signal arrives, ctx is done or Stop is called. Only
// a received signal is returned.
func (h *SignalHandler) Wait(ctx context.Context) os.Signal {
	select {
	case sig := <-h.signals:
		return sig
	case <-ctx.Done():
		return nil
	case <-h.done:
		return nil
	}
}

// Cancel returns a context that ends when parent does or when a signal
// arrives. Calling the returned stop function releases the watcher.
func (h *SignalHandler) Cancel(parent context.Context, onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		if sig := h.Wait(ctx); sig != nil {
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		}
	}()
	return ctx, cancel
}

// Stop unregisters the handler and releases any Wait.
func (h *SignalHandler) Stop() {
	signal.Stop(h.signals)
	h.once.Do(func() { close(h.done) })
}
