package cli

import (
	"net"

	"github.com/cockroachdb/errors"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/server"
	"github.com/vkngwrapper/heapsim/timing"
)

const defaultAddr = "127.0.0.1:8080"

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		open bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulator over HTTP",
		Long: `Serve one simulator over a small JSON API:

  GET  /api/heap              current blocks, status and statistics
  POST /api/allocate          {"size": 64, "strategy": "best-fit"}
  POST /api/blocks/{id}/free  free an allocated block
  POST /api/reset             return to a single free block
  GET  /api/trace             recent simulator events`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			engine := timing.NewSerialEngine()
			logger := slogger(c.Logger)
			engine.AcceptHook(timing.NewEventLogger(logger))
			sim, err := heap.New(logger, engine, cfg.HeapOptions())
			if err != nil {
				return err
			}

			srv := server.New(logger, sim, engine, server.Options{
				Limits:          cfg.SizeLimits(),
				DefaultSize:     cfg.Allocation.DefaultSize,
				DefaultStrategy: cfg.Allocation.DefaultStrategy,
			})

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return errors.Wrapf(err, "listen on %s", addr)
			}

			url := "http://" + listener.Addr().String() + "/api/heap"
			c.Logger.Info("serving", "url", url)

			if open {
				err = browser.OpenURL(url)
				if err != nil {
					c.Logger.Warn("could not open browser", "err", err)
				}
			}

			return srv.Serve(cmd.Context(), listener)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "address to listen on")
	cmd.Flags().BoolVar(&open, "open", false, "open the heap endpoint in a browser")

	return cmd
}
