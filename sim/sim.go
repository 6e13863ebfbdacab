// Package sim drives agents through simulated runs and records their trajectories.
package sim

import (
	"context"
	"fmt"

	"github.com/navsim/go-navsim"
	"golang.org/x/sync/errgroup"
)

// Agent is a simulated agent stepped one tick at a time
type Agent interface {
	// Tick advances the agent by one time unit
	Tick() error
	// AtGoal returns true if the agent believes it has arrived
	AtGoal() bool
	// Goal returns the current goal
	Goal() navsim.Point
	// Belief returns the believed state
	Belief() navsim.State
	// Actual returns the ground truth state
	Actual() navsim.State
	// LastReading returns the last sensor reading
	LastReading() navsim.Measurement
	// Bounds returns world bounds
	Bounds() navsim.Bounds
}

// Run ticks a until it arrives at its goal or maxSteps ticks elapse and returns the recorded trace.
// If a tick fails the trace recorded so far is returned along with the error.
func Run(a Agent, maxSteps int) (*Trace, error) {
	return run(context.Background(), a, maxSteps)
}

// RunBatch runs every agent in its own goroutine and returns their traces in the order of agents.
// Agents must not share state. Cancelling ctx stops the runs between ticks.
// It returns the first error encountered.
func RunBatch(ctx context.Context, agents []Agent, maxSteps int) ([]*Trace, error) {
	traces := make([]*Trace, len(agents))

	g, ctx := errgroup.WithContext(ctx)
	for i, a := range agents {
		i, a := i, a
		g.Go(func() error {
			t, err := run(ctx, a, maxSteps)
			traces[i] = t
			if err != nil {
				return fmt.Errorf("agent %d: %w", i, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return traces, err
	}

	return traces, nil
}

func run(ctx context.Context, a Agent, maxSteps int) (*Trace, error) {
	if a == nil {
		return nil, fmt.Errorf("nil agent: %w", navsim.ErrInvalidParameters)
	}

	if maxSteps <= 0 {
		return nil, fmt.Errorf("invalid max steps %d: %w", maxSteps, navsim.ErrInvalidParameters)
	}

	r := newRecorder(a)
	for i := 0; i < maxSteps && !a.AtGoal(); i++ {
		if err := ctx.Err(); err != nil {
			return r.trace(a), err
		}

		if err := a.Tick(); err != nil {
			return r.trace(a), err
		}

		r.record(a)
	}

	return r.trace(a), nil
}
