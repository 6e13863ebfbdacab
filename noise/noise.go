// Package noise provides the random error models used by the sensor and the filter.
package noise

import (
	"fmt"
	"math"

	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/matrix"
	"gonum.org/v1/gonum/mat"
)

// psdTol is the eigenvalue tolerance used when validating covariance matrices
const psdTol = 1e-12

func validate(mean []float64, cov mat.Symmetric) error {
	if cov == nil {
		return fmt.Errorf("nil covariance: %w", navsim.ErrInvalidParameters)
	}

	size := cov.SymmetricDim()
	if size == 0 || len(mean) != size {
		return fmt.Errorf("mean length %d does not match covariance dimension %d: %w", len(mean), size, navsim.ErrInvalidParameters)
	}

	for _, m := range mean {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("invalid mean %v: %w", mean, navsim.ErrInvalidParameters)
		}
	}

	if !matrix.IsPSD(cov, psdTol) {
		return fmt.Errorf("covariance is not positive semi-definite: %w", navsim.ErrInvalidParameters)
	}

	return nil
}

func validateStd(i int, std float64) error {
	if std < 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return fmt.Errorf("invalid standard deviation %v for channel %d: %w", std, i, navsim.ErrInvalidParameters)
	}

	return nil
}

func copySym(cov mat.Symmetric) *mat.SymDense {
	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return c
}

// nanVec returns a vector of NaN values which marks a failed draw
func nanVec(n int) *mat.VecDense {
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, math.NaN())
	}

	return v
}
