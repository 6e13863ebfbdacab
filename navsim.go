package navsim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a position in the world plane
type Point struct {
	X float64
	Y float64
}

// State is the kinematic state of the agent: position, velocity and heading
type State struct {
	X        float64
	Y        float64
	Velocity float64
	Heading  float64
}

// Position returns the (x, y) part of the state
func (s State) Position() Point {
	return Point{X: s.X, Y: s.Y}
}

// Motion returns the (velocity, heading) part of the state as a vector
func (s State) Motion() *mat.VecDense {
	return mat.NewVecDense(2, []float64{s.Velocity, s.Heading})
}

// String implements the Stringer interface.
func (s State) String() string {
	return fmt.Sprintf("State{X=%g Y=%g V=%g H=%g}", s.X, s.Y, s.Velocity, s.Heading)
}

// Command is a (velocity, heading) pair issued to the sensor every tick
type Command struct {
	Velocity float64
	Heading  float64
}

// Vec returns the command as a vector
func (c Command) Vec() *mat.VecDense {
	return mat.NewVecDense(2, []float64{c.Velocity, c.Heading})
}

// Bounds are the world dimensions. Valid positions lie in [0, Width] x [0, Height].
type Bounds struct {
	Width  float64
	Height float64
}

// Clamp clamps p into the world bounds
func (b Bounds) Clamp(p Point) Point {
	return Point{
		X: min(max(p.X, 0), b.Width),
		Y: min(max(p.Y, 0), b.Height),
	}
}

// Contains returns true if p lies strictly inside the world bounds
func (b Bounds) Contains(p Point) bool {
	return p.X > 0 && p.X < b.Width && p.Y > 0 && p.Y < b.Height
}

// Project moves p one time unit along heading at the given velocity.
func Project(p Point, velocity, heading float64) Point {
	return Point{
		X: p.X + math.Cos(heading)*velocity,
		Y: p.Y + math.Sin(heading)*velocity,
	}
}

// Advance projects p one time unit forward and clamps the result into b.
func Advance(p Point, velocity, heading float64, b Bounds) Point {
	return b.Clamp(Project(p, velocity, heading))
}

// Channel identifies a modeled noise channel
type Channel int

const (
	// Velocity is the velocity noise channel
	Velocity Channel = iota
	// Heading is the heading noise channel
	Heading
	// Position is the position noise channel
	Position
)

// String implements the Stringer interface.
func (c Channel) String() string {
	switch c {
	case Velocity:
		return "velocity"
	case Heading:
		return "heading"
	case Position:
		return "position"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// Noise is a source of random error
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset rewinds the noise random stream
	Reset()
}

// Reconfigurer is noise whose parameters can be replaced at runtime.
// Both methods either apply all changes or leave the noise unchanged.
type Reconfigurer interface {
	// Reconfigure replaces noise mean and covariance
	Reconfigure(mean []float64, cov mat.Symmetric) error
	// SetChannel replaces mean and standard deviation of channel i
	SetChannel(i int, mean, std float64) error
}

// Measurement is a sensor reading of (velocity, heading)
type Measurement interface {
	// Val returns measured value
	Val() mat.Vector
	// Cov returns measurement covariance
	Cov() mat.Symmetric
}

// Estimate is a filtered (velocity, heading) estimate and the believed position
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
	// Position returns believed position
	Position() Point
}

// InitCond is initial condition of the estimator
type InitCond interface {
	// State returns initial belief
	State() State
	// Cov returns initial (velocity, heading) covariance
	Cov() mat.Symmetric
}

// Estimator fuses sensor readings into a belief state
type Estimator interface {
	// Run runs one estimation step for command u and measurement m
	Run(u Command, m Measurement, b Bounds) (Estimate, error)
	// Belief returns current belief state
	Belief() State
	// Cov returns current belief covariance
	Cov() mat.Symmetric
}
