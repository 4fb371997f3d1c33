package cmd

import (
	"context"
	"os"

	"github.com/manav03panchal/stepwise/internal/daemon"
	"github.com/manav03panchal/stepwise/internal/logging"
)

// signalContext returns a context that ends on SIGINT, SIGTERM or SIGHUP.
func signalContext(parent context.Context) (context.Context, func()) {
	h := daemon.NewSignalHandler()
	h.Setup()
	c, cancel := h.Cancel(parent, func(sig os.Signal) {
		logging.DebugLog("received signal", "signal", sig.String())
	})
	return c, func() {
		cancel()
		h.Stop()
	}
}
