package navsim

import "errors"

var (
	// ErrInvalidParameters is returned when noise or filter parameters are rejected
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrSingularInnovation is returned when the innovation covariance can not be inverted
	ErrSingularInnovation = errors.New("singular innovation covariance")
	// ErrGoalOutOfBounds is returned when a goal lies outside of the world
	ErrGoalOutOfBounds = errors.New("goal out of bounds")
	// ErrDistribution is returned when a noise model produces an invalid sample.
	// It indicates a bug in parameter validation and is not recoverable.
	ErrDistribution = errors.New("distribution error")
)
