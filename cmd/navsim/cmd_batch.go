package main

import (
	"context"
	"fmt"

	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var agents int

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run independent agents in parallel",
	Long: `Runs a number of independent agents towards the same goal in parallel.
Agent i uses noise seed seed+i so every run is reproducible.

Example:
  navsim batch --agents 8 --seed 42`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	if agents <= 0 {
		return fmt.Errorf("invalid number of agents %d: %w", agents, navsim.ErrInvalidParameters)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	batch := make([]sim.Agent, agents)
	for i := range batch {
		c := *cfg
		c.Seed = cfg.Seed + uint64(i)

		a, err := newAgent(&c, logger.With(zap.Int("agent", i)))
		if err != nil {
			return fmt.Errorf("agent %d: %w", i, err)
		}
		batch[i] = a
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	traces, err := sim.RunBatch(ctx, batch, maxSteps)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	arrived := 0
	for i, trace := range traces {
		s := trace.Summary()
		if s.Arrived {
			arrived++
		}
		fmt.Fprintf(out, "agent %d: %v\n", i, s)
	}

	logger.Info("batch finished", zap.Int("agents", agents), zap.Int("arrived", arrived))

	return nil
}
