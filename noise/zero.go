package noise

import (
	"fmt"

	"github.com/navsim/go-navsim"
	"gonum.org/v1/gonum/mat"
)

// Zero is degenerate noise: every sample is a zero vector
type Zero struct {
	size int
}

// NewZero creates new zero noise with size channels.
// It returns error if size is non-positive.
func NewZero(size int) (*Zero, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid noise dimension %d: %w", size, navsim.ErrInvalidParameters)
	}

	return &Zero{size: size}, nil
}

// Sample returns a vector with zero values.
func (e *Zero) Sample() mat.Vector {
	return mat.NewVecDense(e.size, nil)
}

// Cov returns zero covariance matrix.
func (e *Zero) Cov() mat.Symmetric {
	return mat.NewSymDense(e.size, nil)
}

// Mean returns zero mean.
func (e *Zero) Mean() []float64 {
	return make([]float64, e.size)
}

// Reset does nothing: zero noise has no random stream.
func (e *Zero) Reset() {}

// String implements the Stringer interface.
func (e *Zero) String() string {
	return fmt.Sprintf("Zero{\nMean=%v\nCov=%v\n}", e.Mean(), mat.Formatted(e.Cov(), mat.Prefix("    "), mat.Squeeze()))
}
