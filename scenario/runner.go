package scenario

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/heapsim/heap"
	"github.com/vkngwrapper/heapsim/memutils"
	"github.com/vkngwrapper/heapsim/memutils/metadata"
	"github.com/vkngwrapper/heapsim/timing"
)

// ErrUnexpectedOutcome is returned by Run when a step does not behave as the scenario expects
var ErrUnexpectedOutcome = errors.New("unexpected step outcome")

// Outcome is the result of a single step
type Outcome struct {
	Step   Step
	Result Expectation
	// Err is the error the simulator returned, for steps that were rejected
	Err error
	// Time is the engine time once the step has played out
	Time  timing.VTime
	Stats memutils.Statistics
}

// Report is the result of running a scenario
type Report struct {
	Name     string
	Outcomes []Outcome
	Blocks   []metadata.Block
	Stats    memutils.DetailedStatistics
}

// Runner plays a scenario against its own simulator
type Runner struct {
	logger   *slog.Logger
	scenario *Scenario
	engine   *timing.SerialEngine
	sim      *heap.Simulator
}

// NewRunner creates a simulator configured by scenario. Hooks are registered on the simulator
// before any step runs.
func NewRunner(logger *slog.Logger, scenario *Scenario, hooks ...timing.Hook) (*Runner, error) {
	engine := timing.NewSerialEngine()

	options := scenario.Config().HeapOptions()
	options.Flags |= heap.CreateExternallySynchronized

	sim, err := heap.New(logger, engine, options)
	if err != nil {
		return nil, err
	}

	for _, hook := range hooks {
		sim.AcceptHook(hook)
	}

	return &Runner{
		logger:   logger,
		scenario: scenario,
		engine:   engine,
		sim:      sim,
	}, nil
}

// Engine returns the engine the scenario's phases are scheduled on
func (r *Runner) Engine() *timing.SerialEngine {
	return r.engine
}

// Simulator returns the simulator the scenario runs against
func (r *Runner) Simulator() *heap.Simulator {
	return r.sim
}

// Run applies each step, lets the engine play it out and checks the heap invariants. It stops
// at the first step whose outcome differs from its expectation, or when ctx is done.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{Name: r.scenario.Name}

	for i, step := range r.scenario.Steps {
		err := ctx.Err()
		if err != nil {
			return r.finish(report), err
		}

		outcome := r.apply(step)

		err = r.engine.Run()
		if err != nil {
			return r.finish(report), errors.Wrapf(err, "step %d (%s)", i+1, step)
		}

		err = r.sim.Validate()
		if err != nil {
			return r.finish(report), errors.Wrapf(err, "heap invalid after step %d (%s)", i+1, step)
		}

		outcome.Time = r.engine.Now()
		outcome.Stats = r.sim.Statistics()
		report.Outcomes = append(report.Outcomes, outcome)

		r.logger.LogAttrs(ctx, slog.LevelDebug, "scenario step",
			slog.Int("step", i+1),
			slog.String("op", step.String()),
			slog.String("result", string(outcome.Result)),
		)

		if outcome.Result != step.Expect {
			err = errors.Mark(errors.Newf("step %d (%s): expected %s but got %s", i+1, step, step.Expect, outcome.Result), ErrUnexpectedOutcome)
			if outcome.Err != nil {
				err = errors.WithSecondaryError(err, outcome.Err)
			}
			return r.finish(report), err
		}
	}

	return r.finish(report), nil
}

func (r *Runner) apply(step Step) Outcome {
	outcome := Outcome{Step: step, Result: ExpectOK}

	switch step.Op {
	case OpAlloc:
		result, err := r.sim.Allocate(step.Size, step.Strategy)
		if err != nil {
			outcome.Result = ExpectError
			outcome.Err = err
		} else if result.OutOfMemory {
			outcome.Result = ExpectOutOfMemory
		}
	case OpFree:
		err := r.sim.Free(metadata.BlockID(step.Block))
		if err != nil {
			outcome.Result = ExpectError
			outcome.Err = err
		}
	case OpReset:
		r.sim.Reset()
	}

	return outcome
}

func (r *Runner) finish(report Report) Report {
	report.Blocks = r.sim.Blocks()
	report.Stats = r.sim.DetailedStatistics()
	return report
}
