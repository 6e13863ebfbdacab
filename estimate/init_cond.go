package estimate

import (
	"fmt"

	"github.com/navsim/go-navsim"
	"gonum.org/v1/gonum/mat"
)

// CovInit selects the initial belief covariance
type CovInit string

const (
	// CovIdentity starts the filter with full uncertainty
	CovIdentity CovInit = "identity"
	// CovZero starts the filter with no uncertainty
	CovZero CovInit = "zero"
)

// Matrix returns n x n initial covariance matrix.
// It returns error if c is not a known initial covariance.
func (c CovInit) Matrix(n int) (*mat.SymDense, error) {
	cov := mat.NewSymDense(n, nil)
	switch c {
	case CovIdentity:
		for i := 0; i < n; i++ {
			cov.SetSym(i, i, 1.0)
		}
	case CovZero:
	default:
		return nil, fmt.Errorf("unknown initial covariance %q: %w", string(c), navsim.ErrInvalidParameters)
	}

	return cov, nil
}

// InitCond implements navsim.InitCond
type InitCond struct {
	state navsim.State
	cov   *mat.SymDense
}

// NewInitCond creates new InitCond and returns it
func NewInitCond(state navsim.State, cov mat.Symmetric) *InitCond {
	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &InitCond{
		state: state,
		cov:   c,
	}
}

// State returns initial state
func (c *InitCond) State() navsim.State {
	return c.state
}

// Cov returns initial covariance
func (c *InitCond) Cov() mat.Symmetric {
	cov := mat.NewSymDense(c.cov.SymmetricDim(), nil)
	cov.CopySym(c.cov)

	return cov
}
