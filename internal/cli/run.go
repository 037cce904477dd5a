package cli

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/heapsim/scenario"
	"github.com/vkngwrapper/heapsim/timing"
	"github.com/vkngwrapper/heapsim/trace"
)

// traceFile is implemented by the file based trace writers
type traceFile interface {
	io.Closer
	Filename() string
}

type runOptions struct {
	tracePath   string
	traceFormat string
	quiet       bool
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <scenario.toml>",
		Short: "Play a scenario file and print the resulting heap",
		Long: `Play a scenario file step by step on virtual time and print the heap it leaves behind.

Every step must produce its expected outcome (ok, oom or error). The run stops at the first
step that does not.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScenario(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.tracePath, "trace", "", "write every simulator event to this file (extension is added)")
	cmd.Flags().StringVar(&opts.traceFormat, "trace-format", "csv", "trace file format: csv or json")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the step list")

	return cmd
}

func (c *CLI) runScenario(cmd *cobra.Command, path string, opts runOptions) error {
	base, err := c.loadConfig()
	if err != nil {
		return err
	}

	scn, err := scenario.Load(path, base)
	if err != nil {
		return err
	}

	var hooks []timing.Hook
	var traceWriter trace.Writer
	if opts.tracePath != "" {
		format, err := trace.ParseFormat(opts.traceFormat)
		if err != nil {
			return err
		}

		traceWriter, err = trace.NewFileWriter(format, opts.tracePath)
		if err != nil {
			return err
		}

		err = traceWriter.Init()
		if err != nil {
			return err
		}
		hooks = append(hooks, trace.NewTracer(traceWriter))
	}

	logger := slogger(c.Logger)
	runner, err := scenario.NewRunner(logger, scn, hooks...)
	if err != nil {
		return err
	}
	runner.Engine().AcceptHook(timing.NewEventLogger(logger))

	c.Logger.Info("running scenario", "name", scn.Name, "steps", len(scn.Steps))
	report, runErr := runner.Run(cmd.Context())

	out := cmd.OutOrStdout()
	if file, ok := traceWriter.(traceFile); ok {
		err = file.Close()
		if err != nil {
			runErr = errors.CombineErrors(runErr, errors.Wrap(err, "close trace"))
		}
		printKeyValue(out, "Trace", file.Filename())
	}

	if !opts.quiet {
		for i, outcome := range report.Outcomes {
			line := printer.Sprintf("%3d  %-20s %-5s %8s used  t=%s", i+1, outcome.Step.String(), outcome.Result, formatBytes(outcome.Stats.UsedBytes), outcome.Time)
			if outcome.Err != nil {
				line += styleDim.Render("  " + outcome.Err.Error())
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out)
	}

	printBlocks(out, report.Blocks)
	fmt.Fprintln(out)
	printStatistics(out, report.Stats)
	fmt.Fprintln(out)

	if runErr != nil {
		printError(out, "%s failed after %d of %d steps", scn.Name, len(report.Outcomes), len(scn.Steps))
		return runErr
	}

	printSuccess(out, "%s passed %d steps", scn.Name, len(report.Outcomes))
	return nil
}
