// Package agent composes the navigator, the IMU and the Kalman filter into a single
// simulated agent stepped by an external caller.
package agent

import (
	"errors"
	"fmt"
	"math"

	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/config"
	"github.com/navsim/go-navsim/estimate"
	"github.com/navsim/go-navsim/imu"
	"github.com/navsim/go-navsim/kalman/kf"
	"github.com/navsim/go-navsim/nav"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Agent is a mobile agent navigating towards a goal using a noisy IMU and a Kalman filter.
// Agent is not safe for concurrent use; independent agents may be ticked in parallel.
type Agent struct {
	bounds  navsim.Bounds
	nav     *nav.Navigator
	imu     *imu.IMU
	kf      *kf.KF
	cmd     navsim.Command
	reading *estimate.Reading
	ticks   int
	logger  *zap.Logger
}

// New creates new agent at (x, y) with default configuration.
func New(x, y float64) (*Agent, error) {
	return NewWithConfig(navsim.Point{X: x, Y: y}, config.DefaultConfig(), nil)
}

// NewWithConfig creates new agent at start configured by cfg.
// The agent starts with zero velocity and heading and no goal.
// It returns error if cfg is invalid or start lies outside of the world.
func NewWithConfig(start navsim.Point, cfg *config.Config, logger *zap.Logger) (*Agent, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg == nil {
		return nil, fmt.Errorf("nil config: %w", navsim.ErrInvalidParameters)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := cfg.Bounds()
	if b.Clamp(start) != start {
		return nil, fmt.Errorf("start %v outside of world: %w", start, navsim.ErrInvalidParameters)
	}

	motion, err := cfg.Noise.Motion.Build(cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("motion noise: %w", err)
	}

	position, err := cfg.Noise.Position.Build(cfg.Seed + 1)
	if err != nil {
		return nil, fmt.Errorf("position noise: %w", err)
	}

	u, err := imu.New(start, motion, position, logger.Named("imu"))
	if err != nil {
		return nil, err
	}

	q, err := filterNoise(cfg.Filter.Q, cfg.Seed+2)
	if err != nil {
		return nil, fmt.Errorf("filter q: %w", err)
	}

	r, err := filterNoise(cfg.Filter.R, cfg.Seed+3)
	if err != nil {
		return nil, fmt.Errorf("filter r: %w", err)
	}

	cov, err := cfg.Filter.InitialCovariance.Matrix(2)
	if err != nil {
		return nil, err
	}

	init := estimate.NewInitCond(navsim.State{X: start.X, Y: start.Y}, cov)
	f, err := kf.New(init, q, r, kf.WithEpsilon(cfg.Filter.Epsilon), kf.WithLogger(logger.Named("kf")))
	if err != nil {
		return nil, err
	}

	n, err := nav.New(
		nav.WithCruiseVelocity(cfg.Navigator.CruiseVelocity),
		nav.WithTolerance(cfg.Navigator.ArrivalTolerance),
		nav.WithLogger(logger.Named("nav")),
	)
	if err != nil {
		return nil, err
	}

	return &Agent{
		bounds: b,
		nav:    n,
		imu:    u,
		kf:     f,
		logger: logger,
	}, nil
}

func filterNoise(rows [][]float64, seed uint64) (navsim.Noise, error) {
	m := config.NoiseModel{Kind: config.KindGaussian, Mean: make([]float64, len(rows)), Cov: rows}

	return m.Build(seed)
}

// Tick advances the simulation by one time unit.
// A singular innovation covariance skips the filter update for this tick and is not returned.
// It returns error wrapping navsim.ErrDistribution if the sensor noise fails; the agent must not be ticked again.
func (a *Agent) Tick() error {
	cmd := a.nav.Command(a.kf.Belief())

	if err := a.imu.Integrate(cmd, a.bounds); err != nil {
		return fmt.Errorf("tick %d: %w", a.ticks, err)
	}

	reading, err := a.imu.Read()
	if err != nil {
		return fmt.Errorf("tick %d: %w", a.ticks, err)
	}

	if _, err := a.kf.Run(cmd, reading, a.bounds); err != nil {
		if !errors.Is(err, navsim.ErrSingularInnovation) {
			return fmt.Errorf("tick %d: %w", a.ticks, err)
		}
		a.logger.Warn("skipping filter update", zap.Int("tick", a.ticks), zap.Error(err))
	}

	a.cmd = cmd
	a.reading = reading
	a.ticks++

	a.logger.Debug("tick",
		zap.Int("tick", a.ticks),
		zap.Float64("velocity", cmd.Velocity),
		zap.Float64("heading", cmd.Heading),
		zap.Stringer("belief", a.kf.Belief()),
		zap.Stringer("actual", a.imu.Actual()),
	)

	return nil
}

// Belief returns the agent belief state
func (a *Agent) Belief() navsim.State {
	return a.kf.Belief()
}

// Actual returns the ground truth state.
// It is meant for tests and visualization only.
func (a *Agent) Actual() navsim.State {
	return a.imu.Actual()
}

// Cov returns belief (velocity, heading) covariance
func (a *Agent) Cov() mat.Symmetric {
	return a.kf.Cov()
}

// Goal returns the goal; it is nav.Unset if no goal is set
func (a *Agent) Goal() navsim.Point {
	return a.nav.Goal()
}

// AtGoal returns true if the belief is within the arrival square of the goal
func (a *Agent) AtGoal() bool {
	return a.nav.AtGoal(a.kf.Belief().Position())
}

// SetGoal sets the goal to (x, y).
// Goals outside of the world reset the goal and return error wrapping navsim.ErrGoalOutOfBounds.
func (a *Agent) SetGoal(x, y float64) error {
	return a.nav.SetGoal(x, y, a.bounds)
}

// SetBeliefMotion overrides believed velocity and heading.
// It is meant for calibration and tests.
func (a *Agent) SetBeliefMotion(velocity, heading float64) {
	a.kf.SetBelief(velocity, heading)
}

// SetNoiseParameters sets mean and standard deviation of a sensor noise channel.
// Setting the position channel applies the parameters to both axes.
// It returns error wrapping navsim.ErrInvalidParameters and keeps the previous
// parameters if they are rejected.
func (a *Agent) SetNoiseParameters(ch navsim.Channel, mean, std float64) error {
	err := a.setNoiseParameters(ch, mean, std)
	if err != nil {
		a.logger.Warn("noise reconfiguration rejected",
			zap.Stringer("channel", ch),
			zap.Float64("mean", mean),
			zap.Float64("std", std),
			zap.Error(err),
		)
		return err
	}

	a.logger.Info("noise reconfigured",
		zap.Stringer("channel", ch),
		zap.Float64("mean", mean),
		zap.Float64("std", std),
	)

	return nil
}

func (a *Agent) setNoiseParameters(ch navsim.Channel, mean, std float64) error {
	switch ch {
	case navsim.Velocity, navsim.Heading:
		r, ok := a.imu.MotionNoise().(navsim.Reconfigurer)
		if !ok {
			return fmt.Errorf("%s noise is not reconfigurable: %w", ch, navsim.ErrInvalidParameters)
		}
		return r.SetChannel(int(ch), mean, std)
	case navsim.Position:
		r, ok := a.imu.PositionNoise().(navsim.Reconfigurer)
		if !ok {
			return fmt.Errorf("%s noise is not reconfigurable: %w", ch, navsim.ErrInvalidParameters)
		}
		return r.Reconfigure([]float64{mean, mean}, mat.NewSymDense(2, []float64{std * std, 0, 0, std * std}))
	}

	return fmt.Errorf("unknown noise channel %s: %w", ch, navsim.ErrInvalidParameters)
}

// SetMotionNoise replaces the joint (velocity, heading) noise mean and covariance.
// It returns error wrapping navsim.ErrInvalidParameters and keeps the previous
// parameters if they are rejected.
func (a *Agent) SetMotionNoise(mean []float64, cov mat.Symmetric) error {
	r, ok := a.imu.MotionNoise().(navsim.Reconfigurer)
	if !ok {
		return fmt.Errorf("motion noise is not reconfigurable: %w", navsim.ErrInvalidParameters)
	}

	if err := r.Reconfigure(mean, cov); err != nil {
		a.logger.Warn("motion noise reconfiguration rejected", zap.Error(err))
		return err
	}

	return nil
}

// NoiseParameters returns mean and standard deviation of a sensor noise channel.
// For the position channel the x axis parameters are returned.
func (a *Agent) NoiseParameters(ch navsim.Channel) (mean, std float64, err error) {
	var (
		n navsim.Noise
		i int
	)

	switch ch {
	case navsim.Velocity, navsim.Heading:
		n, i = a.imu.MotionNoise(), int(ch)
	case navsim.Position:
		n = a.imu.PositionNoise()
	default:
		return 0, 0, fmt.Errorf("unknown noise channel %s: %w", ch, navsim.ErrInvalidParameters)
	}

	if n == nil {
		return 0, 0, fmt.Errorf("%s noise is disabled: %w", ch, navsim.ErrInvalidParameters)
	}

	return n.Mean()[i], math.Sqrt(n.Cov().At(i, i)), nil
}

// LastCommand returns the command issued in the last tick
func (a *Agent) LastCommand() navsim.Command {
	return a.cmd
}

// LastReading returns the sensor reading of the last tick; it is nil before the first tick
func (a *Agent) LastReading() navsim.Measurement {
	if a.reading == nil {
		return nil
	}

	return a.reading
}

// Ticks returns the number of completed ticks
func (a *Agent) Ticks() int {
	return a.ticks
}

// Bounds returns world bounds
func (a *Agent) Bounds() navsim.Bounds {
	return a.bounds
}

// Width returns world width
func (a *Agent) Width() float64 {
	return a.bounds.Width
}

// Height returns world height
func (a *Agent) Height() float64 {
	return a.bounds.Height
}
