package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/runoshun/mdboard/internal/api"
	"github.com/runoshun/mdboard/internal/infra/logging"
)

// newServeCommand creates the serve command.
func newServeCommand(e *env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP",
		Long: `Serve the board and its mutations as a JSON API.

Other mdboard processes can use it with --server <addr>.
The address defaults to [server] addr from the config.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.c.Config.ServerURL != "" {
				return errors.New("serve reads local files and cannot be combined with --server")
			}
			if addr == "" {
				addr = e.c.AppConfig.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := e.c.Logger.With(logging.ComponentKey, "api")
			srv := api.NewServer(e.c.APIServices(), logger)

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", e.c.Config.TasksDir, addr)
			logger.Info("server starting", "addr", addr, "tasks_dir", e.c.Config.TasksDir)
			return api.Serve(ctx, srv, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (host:port)")

	return cmd
}
