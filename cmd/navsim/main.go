// Command navsim simulates agents navigating a bounded plane with a noisy IMU and a Kalman filter.
package main

import (
	"fmt"
	"os"

	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/agent"
	"github.com/navsim/go-navsim/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configPath string

	startX, startY float64
	goalX, goalY   float64
	maxSteps       int
	seed           uint64

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "navsim",
	Short: "Simulate IMU guided navigation with a Kalman filter",
	Long: `navsim moves agents towards a goal in a bounded 2D world.

Each tick the agent commands a velocity and heading, its IMU perturbs the motion
with multiplicative noise and a Kalman filter fuses the command with the noisy
reading into the agent belief.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration")

	for _, cmd := range []*cobra.Command{runCmd, batchCmd} {
		cmd.Flags().Float64Var(&startX, "start-x", 0, "start x coordinate")
		cmd.Flags().Float64Var(&startY, "start-y", 0, "start y coordinate")
		cmd.Flags().Float64Var(&goalX, "goal-x", 100, "goal x coordinate")
		cmd.Flags().Float64Var(&goalY, "goal-y", 100, "goal y coordinate")
		cmd.Flags().IntVar(&maxSteps, "steps", 10000, "maximum number of ticks")
		cmd.Flags().Uint64Var(&seed, "seed", 0, "noise seed (overrides configuration)")
	}

	runCmd.Flags().StringVar(&plotPath, "plot", "", "save trajectory plot to file")
	batchCmd.Flags().IntVarP(&agents, "agents", "n", 4, "number of agents")
	configCmd.Flags().StringVarP(&outPath, "out", "o", "navsim.yaml", "output file")

	rootCmd.AddCommand(runCmd, batchCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads configuration from configPath or returns defaults.
// A seed set on the command line overrides the configured one.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}

	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed {
		cfg.Seed = seed
	}

	return cfg, nil
}

// newAgent creates an agent at the start point heading to the goal
func newAgent(cfg *config.Config, l *zap.Logger) (*agent.Agent, error) {
	a, err := agent.NewWithConfig(navsim.Point{X: startX, Y: startY}, cfg, l)
	if err != nil {
		return nil, err
	}

	if err := a.SetGoal(goalX, goalY); err != nil {
		return nil, err
	}

	return a, nil
}
