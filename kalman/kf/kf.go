package kf

import (
	"fmt"
	"math"

	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/estimate"
	"github.com/navsim/go-navsim/matrix"
	"github.com/navsim/go-navsim/noise"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const (
	// dim is the size of the filtered (velocity, heading) vector
	dim = 2
	// DefaultEpsilon is the default determinant threshold below which the
	// innovation covariance is treated as singular
	DefaultEpsilon = 1e-12
)

// Option configures KF
type Option func(*KF)

// WithEpsilon sets singular innovation covariance threshold
func WithEpsilon(eps float64) Option {
	return func(k *KF) {
		k.eps = eps
	}
}

// WithLogger sets KF logger
func WithLogger(l *zap.Logger) Option {
	return func(k *KF) {
		if l != nil {
			k.logger = l
		}
	}
}

// KF is Kalman Filter over the agent (velocity, heading) belief.
//
// The innovation is framed relative to the issued command rather than the new reading:
//
//	P' = P + Q
//	z  = x - u
//	K  = P'*H' * (H*P'*H' + R)^-1
//	x  = u + K*(z - H*u)
//	P  = (I - K*H) * P'
//
// where x is the prior belief, u is the command and H is the reading covariance.
type KF struct {
	// q is state noise a.k.a. process noise
	q navsim.Noise
	// r is output noise a.k.a. measurement noise
	r navsim.Noise
	// p is the KF covariance matrix
	p *mat.SymDense
	// pNext is the KF predicted covariance matrix
	pNext *mat.SymDense
	// inn is innovation vector
	inn *mat.VecDense
	// k is Kalman gain
	k *mat.Dense
	// belief is the believed agent state
	belief navsim.State
	// eps is singular innovation covariance threshold
	eps float64
	// logger logs filter steps
	logger *zap.Logger
}

// New creates new KF and returns it.
// It accepts the following parameters:
//   - init:   initial condition of the filter
//   - q:      state a.k.a. process noise; nil means zero
//   - r:      output a.k.a. measurement noise; nil means zero
//
// It returns error if either of the following conditions is met:
//   - initial covariance is not 2 x 2 or not positive semi-definite
//   - noise covariance is not 2 x 2
func New(init navsim.InitCond, q, r navsim.Noise, opts ...Option) (*KF, error) {
	if init == nil || init.Cov() == nil || init.Cov().SymmetricDim() != dim {
		return nil, fmt.Errorf("invalid initial condition: %w", navsim.ErrInvalidParameters)
	}

	if !matrix.IsPSD(init.Cov(), 1e-12) {
		return nil, fmt.Errorf("initial covariance is not positive semi-definite: %w", navsim.ErrInvalidParameters)
	}

	if q != nil {
		if q.Cov().SymmetricDim() != dim {
			return nil, fmt.Errorf("invalid state noise dimension %d: %w", q.Cov().SymmetricDim(), navsim.ErrInvalidParameters)
		}
	} else {
		z, err := noise.NewZero(dim)
		if err != nil {
			return nil, fmt.Errorf("failed to create state noise: %w", err)
		}
		q = z
	}

	if r != nil {
		if r.Cov().SymmetricDim() != dim {
			return nil, fmt.Errorf("invalid output noise dimension %d: %w", r.Cov().SymmetricDim(), navsim.ErrInvalidParameters)
		}
	} else {
		z, err := noise.NewZero(dim)
		if err != nil {
			return nil, fmt.Errorf("failed to create output noise: %w", err)
		}
		r = z
	}

	// initialize covariance matrix to initial condition covariance
	p := mat.NewSymDense(dim, nil)
	p.CopySym(init.Cov())

	k := &KF{
		q:      q,
		r:      r,
		p:      p,
		pNext:  mat.NewSymDense(dim, nil),
		inn:    mat.NewVecDense(dim, nil),
		k:      mat.NewDense(dim, dim, nil),
		belief: init.State(),
		eps:    DefaultEpsilon,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(k)
	}

	if !(k.eps > 0) || math.IsInf(k.eps, 0) {
		return nil, fmt.Errorf("invalid epsilon %v: %w", k.eps, navsim.ErrInvalidParameters)
	}

	return k, nil
}

// Predict calculates predicted covariance P' = P + Q and returns it.
func (k *KF) Predict() mat.Symmetric {
	k.pNext.AddSym(k.p, k.q.Cov())

	cov := mat.NewSymDense(dim, nil)
	cov.CopySym(k.pNext)

	return cov
}

// Update corrects prior belief x given command u and reading covariance h and returns corrected estimate.
// It must be called after Predict. Filter state is only changed if Update succeeds.
// It returns error wrapping navsim.ErrSingularInnovation if the innovation covariance can not be inverted.
func (k *KF) Update(x, u mat.Vector, h mat.Symmetric) (*mat.VecDense, error) {
	if x.Len() != dim || u.Len() != dim || h.SymmetricDim() != dim {
		return nil, fmt.Errorf("invalid update dimensions: %w", navsim.ErrInvalidParameters)
	}

	// P*H'
	pxy := mat.NewDense(dim, dim, nil)
	pxy.Mul(k.pNext, h.T())

	// Note: pxy = P * H' so we reuse the result here
	// H*P*H' + R
	pyy := mat.NewDense(dim, dim, nil)
	pyy.Mul(h, pxy)
	pyy.Add(pyy, k.r.Cov())

	det := mat.Det(pyy)
	if math.Abs(det) < k.eps || math.IsNaN(det) {
		return nil, fmt.Errorf("innovation covariance determinant %g: %w", det, navsim.ErrSingularInnovation)
	}

	pyyInv := &mat.Dense{}
	if err := pyyInv.Inverse(pyy); err != nil {
		return nil, fmt.Errorf("failed to invert innovation covariance: %v: %w", err, navsim.ErrSingularInnovation)
	}

	// calculate Kalman gain
	gain := &mat.Dense{}
	gain.Mul(pxy, pyyInv)

	// innovation vector: prior belief relative to the command
	inn := &mat.VecDense{}
	inn.SubVec(x, u)

	// z - H*u
	hu := &mat.VecDense{}
	hu.MulVec(h, u)
	res := &mat.VecDense{}
	res.SubVec(inn, hu)

	// x = u + K*(z - H*u)
	corr := &mat.VecDense{}
	corr.MulVec(gain, res)
	xNext := &mat.VecDense{}
	xNext.AddVec(u, corr)

	// P = (I - K*H) * P'
	eye, err := matrix.Identity(dim)
	if err != nil {
		return nil, err
	}
	a := &mat.Dense{}
	// K*H
	a.Mul(gain, h)
	// eye - K*H
	a.Sub(eye, a)
	pCorr := &mat.Dense{}
	pCorr.Mul(a, k.pNext)

	p, err := matrix.Symmetrize(pCorr)
	if err != nil {
		return nil, err
	}
	matrix.FloorDiag(p, 0)

	k.inn.CopyVec(inn)
	k.k.Copy(gain)
	k.p.CopySym(p)

	return xNext, nil
}

// Run runs one step of KF for command u and reading m and returns new belief estimate.
// The filter is not run while u commands zero velocity: the current estimate is returned unchanged.
// On success the believed position is advanced along the new belief and clamped into b.
// It returns error if the update fails, in which case the belief is left unchanged.
func (k *KF) Run(u navsim.Command, m navsim.Measurement, b navsim.Bounds) (navsim.Estimate, error) {
	if u.Velocity == 0 {
		return k.estimate()
	}

	k.Predict()

	xNext, err := k.Update(k.belief.Motion(), u.Vec(), m.Cov())
	if err != nil {
		return nil, err
	}

	belief := navsim.State{
		Velocity: xNext.AtVec(0),
		Heading:  xNext.AtVec(1),
	}
	pos := navsim.Advance(k.belief.Position(), belief.Velocity, belief.Heading, b)
	belief.X, belief.Y = pos.X, pos.Y
	k.belief = belief

	if ce := k.logger.Check(zap.DebugLevel, "filter update"); ce != nil {
		ce.Write(
			zap.Stringer("belief", belief),
			zap.Float64s("innovation", k.inn.RawVector().Data),
			zap.Float64s("gain", k.k.RawMatrix().Data),
			zap.Float64s("cov", []float64{k.p.At(0, 0), k.p.At(0, 1), k.p.At(1, 1)}),
		)
	}

	return k.estimate()
}

func (k *KF) estimate() (navsim.Estimate, error) {
	est, err := estimate.NewBelief(k.belief, k.p)
	if err != nil {
		return nil, err
	}

	return est, nil
}

// Belief returns current belief state
func (k *KF) Belief() navsim.State {
	return k.belief
}

// SetBelief overrides belief velocity and heading.
// It is meant for calibration and tests.
func (k *KF) SetBelief(velocity, heading float64) {
	k.belief.Velocity = velocity
	k.belief.Heading = heading
}

// StateNoise returns state noise
func (k *KF) StateNoise() navsim.Noise {
	return k.q
}

// OutputNoise returns output noise
func (k *KF) OutputNoise() navsim.Noise {
	return k.r
}

// Cov returns KF covariance
func (k *KF) Cov() mat.Symmetric {
	cov := mat.NewSymDense(k.p.SymmetricDim(), nil)
	cov.CopySym(k.p)

	return cov
}

// SetCov sets KF covariance matrix to cov.
// It returns error if either cov is nil, not 2 x 2 or not positive semi-definite.
func (k *KF) SetCov(cov mat.Symmetric) error {
	if cov == nil {
		return fmt.Errorf("invalid covariance matrix: %w", navsim.ErrInvalidParameters)
	}

	if cov.SymmetricDim() != k.p.SymmetricDim() {
		return fmt.Errorf("invalid covariance matrix dims: [%d x %d]: %w", cov.SymmetricDim(), cov.SymmetricDim(), navsim.ErrInvalidParameters)
	}

	if !matrix.IsPSD(cov, 1e-12) {
		return fmt.Errorf("covariance is not positive semi-definite: %w", navsim.ErrInvalidParameters)
	}

	k.p.CopySym(cov)

	return nil
}

// Gain returns Kalman gain
func (k *KF) Gain() mat.Matrix {
	gain := &mat.Dense{}
	gain.CloneFrom(k.k)

	return gain
}

// Innovation returns the last innovation vector
func (k *KF) Innovation() mat.Vector {
	inn := &mat.VecDense{}
	inn.CloneFromVec(k.inn)

	return inn
}
