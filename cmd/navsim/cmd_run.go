package main

import (
	"fmt"

	"github.com/navsim/go-navsim/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var plotPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single agent until it arrives at the goal",
	Long: `Runs a single agent from the start point until it believes it has arrived
at the goal or the step limit is reached, then prints a run summary.

Example:
  navsim run --goal-x 300 --goal-y 200 --plot trace.png`,
	Args: cobra.NoArgs,
	RunE: runSingle,
}

func runSingle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newAgent(cfg, logger)
	if err != nil {
		return err
	}

	trace, err := sim.Run(a, maxSteps)
	if err != nil {
		return fmt.Errorf("simulation failed after %d ticks: %w", a.Ticks(), err)
	}

	s := trace.Summary()
	logger.Info("run finished",
		zap.Int("ticks", s.Ticks),
		zap.Bool("arrived", s.Arrived),
		zap.Float64("mean_error", s.MeanError),
		zap.Float64("max_error", s.MaxError),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "actual=%v belief=%v\n%v\n", a.Actual(), a.Belief(), s)

	if plotPath == "" {
		return nil
	}

	plt, err := trace.Plot()
	if err != nil {
		return fmt.Errorf("failed to make plot: %w", err)
	}

	if err := sim.SavePlot(plt, plotPath); err != nil {
		return fmt.Errorf("failed to save plot to %s: %w", plotPath, err)
	}

	return nil
}
