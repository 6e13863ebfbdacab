package estimate

import (
	"fmt"

	"github.com/navsim/go-navsim"
	"gonum.org/v1/gonum/mat"
)

// Reading is a sensor reading of (velocity, heading) and its covariance
type Reading struct {
	// val is read value
	val *mat.VecDense
	// cov is reading covariance
	cov *mat.SymDense
}

// NewReading returns reading given value and covariance.
// It returns error if val and cov dimensions do not match.
func NewReading(val mat.Vector, cov mat.Symmetric) (*Reading, error) {
	if val == nil || cov == nil {
		return nil, fmt.Errorf("invalid reading: nil value or covariance")
	}

	if rv, rc := val.Len(), cov.SymmetricDim(); rv != rc {
		return nil, fmt.Errorf("invalid dimensions. Val: %d, Cov: %d x %d", rv, rc, rc)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &Reading{val: v, cov: c}, nil
}

// Val returns read value
func (r *Reading) Val() mat.Vector {
	v := &mat.VecDense{}
	v.CloneFromVec(r.val)

	return v
}

// Cov returns reading covariance
func (r *Reading) Cov() mat.Symmetric {
	cov := mat.NewSymDense(r.cov.SymmetricDim(), nil)
	cov.CopySym(r.cov)

	return cov
}

// Belief is a filtered belief: (velocity, heading) estimate, its covariance and the believed position
type Belief struct {
	state navsim.State
	cov   *mat.SymDense
}

// NewBelief returns belief given state and (velocity, heading) covariance.
// It returns error if cov is not 2 x 2.
func NewBelief(state navsim.State, cov mat.Symmetric) (*Belief, error) {
	if cov == nil || cov.SymmetricDim() != 2 {
		return nil, fmt.Errorf("invalid belief covariance")
	}

	c := mat.NewSymDense(2, nil)
	c.CopySym(cov)

	return &Belief{state: state, cov: c}, nil
}

// Val returns (velocity, heading) estimate
func (b *Belief) Val() mat.Vector {
	return b.state.Motion()
}

// Cov returns (velocity, heading) covariance
func (b *Belief) Cov() mat.Symmetric {
	cov := mat.NewSymDense(2, nil)
	cov.CopySym(b.cov)

	return cov
}

// Position returns believed position
func (b *Belief) Position() navsim.Point {
	return b.state.Position()
}

// State returns full belief state
func (b *Belief) State() navsim.State {
	return b.state
}
