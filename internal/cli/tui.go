package cli

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/internal/tui"
	"github.com/vkngwrapper/heapsim/timing"
)

// tuiCommand creates the interactive terminal command.
func (c *CLI) tuiCommand() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore the heap interactively in the terminal",
		Long:  `Explore the heap interactively in the terminal. Log output would draw over the screen, so it is discarded unless --log-file is given.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			var w io.Writer = io.Discard
			if logFile != "" {
				file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return errors.Wrapf(err, "open log file %s", logFile)
				}
				defer file.Close()
				w = file
			}
			logger := slogger(newLogger(w, c.Logger.GetLevel()))

			engine := timing.NewSerialEngine()
			engine.AcceptHook(timing.NewEventLogger(logger))

			options := cfg.HeapOptions()
			// bubbletea calls Update from a single goroutine
			options.Flags |= heap.CreateExternallySynchronized

			sim, err := heap.New(logger, engine, options)
			if err != nil {
				return err
			}

			model := tui.NewModel(sim, engine, tui.Options{
				Limits:          cfg.SizeLimits(),
				DefaultSize:     cfg.Allocation.DefaultSize,
				DefaultStrategy: cfg.Allocation.DefaultStrategy,
			})

			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "append log output to this file")

	return cmd
}
