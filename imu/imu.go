// Package imu simulates an inertial measurement unit which owns the agent ground truth
// and reports noisy velocity and heading readings.
package imu

import (
	"fmt"
	"math"

	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/estimate"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IMU is a simulated inertial measurement unit.
//
// Errors are multiplicative: a value v is perturbed to v + v*e where e is drawn from the noise.
// A zero value is therefore never perturbed.
type IMU struct {
	// actual is the ground truth state
	actual navsim.State
	// motion is (velocity, heading) noise
	motion navsim.Noise
	// position is (x, y) noise; nil disables position errors
	position navsim.Noise
	// logger logs simulated steps
	logger *zap.Logger
}

// New creates new IMU placed at start with zero velocity and heading.
// It returns error if motion is nil or either noise is not two-dimensional.
func New(start navsim.Point, motion, position navsim.Noise, logger *zap.Logger) (*IMU, error) {
	if motion == nil || len(motion.Mean()) != 2 {
		return nil, fmt.Errorf("invalid motion noise: %w", navsim.ErrInvalidParameters)
	}

	if position != nil && len(position.Mean()) != 2 {
		return nil, fmt.Errorf("invalid position noise: %w", navsim.ErrInvalidParameters)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &IMU{
		actual:   navsim.State{X: start.X, Y: start.Y},
		motion:   motion,
		position: position,
		logger:   logger,
	}, nil
}

// sample draws from n and checks the draw is usable.
func sample(n navsim.Noise) ([]float64, error) {
	s := n.Sample()
	if s == nil || s.Len() != 2 {
		return nil, fmt.Errorf("noise sample has invalid dimension: %w", navsim.ErrDistribution)
	}

	v := []float64{s.AtVec(0), s.AtVec(1)}
	if floats.HasNaN(v) || math.IsInf(v[0], 0) || math.IsInf(v[1], 0) {
		return nil, fmt.Errorf("noise sample %v is not finite: %w", v, navsim.ErrDistribution)
	}

	return v, nil
}

// Integrate advances ground truth by one time unit given commanded velocity and heading.
// Position only changes if the commanded velocity is non-zero and is always clamped into b.
// It returns error wrapping navsim.ErrDistribution if the noise produces an invalid sample.
func (u *IMU) Integrate(cmd navsim.Command, b navsim.Bounds) error {
	e, err := sample(u.motion)
	if err != nil {
		u.logger.Error("motion noise failed", zap.Error(err))
		return err
	}

	u.actual.Velocity = cmd.Velocity + cmd.Velocity*e[0]
	u.actual.Heading = cmd.Heading + cmd.Heading*e[1]

	if cmd.Velocity != 0 {
		p := navsim.Project(u.actual.Position(), u.actual.Velocity, u.actual.Heading)
		if u.position != nil {
			pe, err := sample(u.position)
			if err != nil {
				u.logger.Error("position noise failed", zap.Error(err))
				return err
			}
			p.X += p.X * pe[0]
			p.Y += p.Y * pe[1]
		}
		p = b.Clamp(p)
		u.actual.X, u.actual.Y = p.X, p.Y
	}

	u.logger.Debug("imu integrated",
		zap.Float64("cmd_velocity", cmd.Velocity),
		zap.Float64("cmd_heading", cmd.Heading),
		zap.Stringer("actual", u.actual),
	)

	return nil
}

// Read returns a noisy reading of the actual velocity and heading.
// The reading covariance is diag(v*var_v, h*var_h) with the cross-covariance of the motion noise
// off the diagonal, where v and h are the read values.
// It returns error wrapping navsim.ErrDistribution if the noise produces an invalid sample.
func (u *IMU) Read() (*estimate.Reading, error) {
	e, err := sample(u.motion)
	if err != nil {
		u.logger.Error("motion noise failed", zap.Error(err))
		return nil, err
	}

	v := u.actual.Velocity + u.actual.Velocity*e[0]
	h := u.actual.Heading + u.actual.Heading*e[1]

	nc := u.motion.Cov()
	cov := mat.NewSymDense(2, []float64{
		v * nc.At(0, 0), nc.At(0, 1),
		nc.At(1, 0), h * nc.At(1, 1),
	})

	return estimate.NewReading(mat.NewVecDense(2, []float64{v, h}), cov)
}

// Actual returns ground truth state.
// It is meant for tests and visualization only.
func (u *IMU) Actual() navsim.State {
	return u.actual
}

// MotionNoise returns (velocity, heading) noise
func (u *IMU) MotionNoise() navsim.Noise {
	return u.motion
}

// PositionNoise returns position noise; it is nil if position errors are disabled
func (u *IMU) PositionNoise() navsim.Noise {
	return u.position
}
