// Package cli implements the heapsim command-line interface.
//
// Every command loads the same TOML settings (see package config) and builds a simulator from
// them. The commands are:
//   - run: play a scenario file and print the resulting heap
//   - tui: explore the heap interactively in the terminal
//   - serve: expose the simulator over HTTP
//   - config: print the effective settings
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/heapsim/config"
)

const appName = "heapsim"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance that logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "heapsim animates a first/best/worst fit heap allocator",
		Long:         `heapsim simulates a heap made of blocks with headers and next links. Allocations split free blocks and frees coalesce them again, one timed phase at a time.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML settings file")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())

	return root
}

// loadConfig reads the --config file, or returns the defaults when none was given.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath == "" {
		return config.Default(), nil
	}

	c.Logger.Debug("loading settings", "path", c.configPath)
	return config.Load(c.configPath)
}
