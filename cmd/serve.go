package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/stepwise/internal/daemon"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/httpapi"
	"github.com/manav03panchal/stepwise/internal/logging"
	"github.com/manav03panchal/stepwise/internal/output"
)

var (
	serveFlagAddr    string
	serveFlagPIDFile string
)

// serveCmd runs the HTTP API in the foreground.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve procedures and player sessions over HTTP",
	Long: `Run the HTTP API in the foreground until interrupted. Each session is an
independent player that clients drive with control requests and watch over
a server-sent event stream. Idle sessions are evicted on a schedule.

Endpoints:
  GET    /health                          health and session count
  GET    /metrics                         Prometheus metrics
  GET    /api/procedures[?family=F]       procedure catalogue
  GET    /api/procedures/{id}             one procedure
  GET    /api/sessions                    live sessions
  POST   /api/sessions                    open a session
  GET    /api/sessions/{id}               current frame
  DELETE /api/sessions/{id}               close a session
  GET    /api/sessions/{id}/events        frame stream (text/event-stream)
  POST   /api/sessions/{id}/{action}      start, pause, resume, stop,
                                          back, forward, restart
  PUT    /api/sessions/{id}/speed         change the step delay
  POST   /api/sessions/{id}/seek          jump to a recorded step
  POST   /api/sessions/{id}/reset         rebuild the input

Examples:
  stepwise serve
  stepwise serve --addr :9090
  stepwise serve status
  stepwise serve stop`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a server is running",
	Args:  cobra.NoArgs,
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	Args:  cobra.NoArgs,
	RunE:  runServeStop,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlagAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	serveCmd.PersistentFlags().StringVar(&serveFlagPIDFile, "pid-file", "", "PID file (default $XDG_STATE_HOME/stepwise/stepwise.pid)")
	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

func newDaemon(ready func(string)) *daemon.Daemon {
	return daemon.New(daemon.Options{
		PIDPath: serveFlagPIDFile,
		Ready:   ready,
		Logger:  logging.Logger(),
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := ctx.Config.Server
	if serveFlagAddr != "" {
		cfg.Addr = serveFlagAddr
	}

	sessions := ctx.Sessions()
	api := httpapi.New(sessions, httpapi.Options{
		Version:    Version,
		Registerer: ctx.Registry,
		Gatherer:   ctx.Registry,
		Logger:     logging.Logger(),
	})
	api.Health().AddCheck("sessions", func() error {
		if cfg.MaxSessions > 0 && sessions.Len() >= cfg.MaxSessions {
			return errors.New("session limit reached")
		}
		return nil
	})
	server := httpapi.NewServer(cfg, api.Handler())

	d := newDaemon(func(addr string) {
		if ctx.IsJSON() {
			_ = ctx.Formatter.JSON(map[string]string{"status": "listening", "addr": addr})
			return
		}
		cli := ctx.CLIFormatter()
		cli.Success("Listening on http://" + addr)
		cli.Muted("Press Ctrl+C to stop.")
	})
	return d.Run(cmd.Context(), sessions, server)
}

func runServeStatus(cmd *cobra.Command, args []string) error {
	status := newDaemon(nil).Status()
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(status)
	}
	cli := ctx.CLIFormatter()
	if !status.Running {
		cli.Muted("No server is running.")
		return nil
	}
	cli.Success("Server running")
	cli.Printf("  PID:     %d\n", status.PID)
	if status.Addr != "" {
		cli.Printf("  Address: http://%s\n", status.Addr)
		cli.Printf("  Started: %s\n", output.FormatTime(status.StartedAt))
		cli.Printf("  Uptime:  %s\n", status.Uptime)
	}
	return nil
}

func runServeStop(cmd *cobra.Command, args []string) error {
	if err := newDaemon(nil).Stop(); err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"status": "stopped"})
	}
	ctx.CLIFormatter().Success("Server stopped")
	return nil
}
