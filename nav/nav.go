// Package nav implements goal-directed navigation commands computed from the agent belief.
package nav

import (
	"fmt"
	"math"

	"github.com/navsim/go-navsim"
	"go.uber.org/zap"
)

const (
	// DefaultCruiseVelocity is the default commanded velocity in world units per tick
	DefaultCruiseVelocity = 1.0
	// DefaultTolerance is the default side of the arrival square
	DefaultTolerance = 10.0
)

// Unset is the goal sentinel meaning no goal is set
var Unset = navsim.Point{X: -1, Y: -1}

// HeadingToGoal returns the heading from p to goal in radians.
// Headings of goals left of p lie in (pi/2, pi] or (-pi, -pi/2);
// goals right of and below p map to (3pi/2, 2pi).
func HeadingToGoal(p, goal navsim.Point) float64 {
	dx, dy := goal.X-p.X, goal.Y-p.Y

	if dx == 0 {
		switch {
		case dy > 0:
			return math.Pi / 2
		case dy < 0:
			return -math.Pi / 2
		}
		return 0
	}

	angle := math.Atan(math.Abs(dy) / math.Abs(dx))
	switch {
	case dx > 0 && dy >= 0:
		return angle
	case dx < 0 && dy >= 0:
		return math.Pi - angle
	case dx < 0 && dy < 0:
		return angle - math.Pi
	default:
		return 2*math.Pi - angle
	}
}

// InSquare returns true if p lies in the half-open square [goal, goal+side) on both axes.
func InSquare(p, goal navsim.Point, side float64) bool {
	return goal.X <= p.X && p.X < goal.X+side &&
		goal.Y <= p.Y && p.Y < goal.Y+side
}

// Option configures Navigator
type Option func(*Navigator)

// WithCruiseVelocity sets commanded velocity
func WithCruiseVelocity(v float64) Option {
	return func(n *Navigator) {
		n.cruise = v
	}
}

// WithTolerance sets the side of the arrival square
func WithTolerance(t float64) Option {
	return func(n *Navigator) {
		n.tolerance = t
	}
}

// WithLogger sets Navigator logger
func WithLogger(l *zap.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// Navigator steers the agent towards its goal
type Navigator struct {
	goal      navsim.Point
	cruise    float64
	tolerance float64
	// heading is the last commanded heading
	heading float64
	logger  *zap.Logger
}

// New creates new Navigator with no goal set.
// It returns error if cruise velocity or tolerance are not positive.
func New(opts ...Option) (*Navigator, error) {
	n := &Navigator{
		goal:      Unset,
		cruise:    DefaultCruiseVelocity,
		tolerance: DefaultTolerance,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(n)
	}

	if !(n.cruise > 0) || math.IsInf(n.cruise, 0) {
		return nil, fmt.Errorf("invalid cruise velocity %v: %w", n.cruise, navsim.ErrInvalidParameters)
	}

	if !(n.tolerance > 0) || math.IsInf(n.tolerance, 0) {
		return nil, fmt.Errorf("invalid arrival tolerance %v: %w", n.tolerance, navsim.ErrInvalidParameters)
	}

	return n, nil
}

// Goal returns current goal; it is Unset if no goal is set
func (n *Navigator) Goal() navsim.Point {
	return n.goal
}

// HasGoal returns true if a goal is set
func (n *Navigator) HasGoal() bool {
	return n.goal != Unset
}

// SetGoal sets the goal to (x, y).
// Goals must lie strictly inside b. Otherwise the goal is reset to Unset
// and error wrapping navsim.ErrGoalOutOfBounds is returned.
func (n *Navigator) SetGoal(x, y float64, b navsim.Bounds) error {
	g := navsim.Point{X: x, Y: y}
	if !b.Contains(g) {
		n.goal = Unset
		n.logger.Warn("cannot set goal outside of world bounds",
			zap.Float64("x", x),
			zap.Float64("y", y),
			zap.Float64("width", b.Width),
			zap.Float64("height", b.Height),
		)
		return fmt.Errorf("goal (%g, %g) outside of [0-%g] x [0-%g]: %w", x, y, b.Width, b.Height, navsim.ErrGoalOutOfBounds)
	}

	n.goal = g
	n.logger.Info("goal set", zap.Float64("x", x), zap.Float64("y", y))

	return nil
}

// AtGoal returns true if p lies within the arrival square of the goal.
// It is always false while no goal is set.
func (n *Navigator) AtGoal(p navsim.Point) bool {
	if !n.HasGoal() {
		return false
	}

	return InSquare(p, n.goal, n.tolerance)
}

// Command returns the command for the next tick given the current belief.
// The agent stops, keeping its previous heading, when it has arrived or has no goal.
func (n *Navigator) Command(belief navsim.State) navsim.Command {
	p := belief.Position()
	if !n.HasGoal() || n.AtGoal(p) {
		return navsim.Command{Velocity: 0, Heading: n.heading}
	}

	n.heading = HeadingToGoal(p, n.goal)

	return navsim.Command{Velocity: n.cruise, Heading: n.heading}
}

// CruiseVelocity returns commanded velocity
func (n *Navigator) CruiseVelocity() float64 {
	return n.cruise
}
