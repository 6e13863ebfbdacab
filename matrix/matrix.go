package matrix

import (
	"fmt"
	"math"

	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Identity returns n x n identity matrix.
// It returns error if n is non-positive.
func Identity(n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid identity size: %d", n)
	}

	return matrix.NewDenseValIdentity(n, 1.0)
}

// Symmetrize returns (m + m')/2 as a symmetric matrix.
// It returns error if m is not square.
func Symmetrize(m mat.Matrix) (*mat.SymDense, error) {
	r, c := m.Dims()
	if r != c {
		return nil, fmt.Errorf("matrix is not square: [%d x %d]", r, c)
	}

	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, (m.At(i, j)+m.At(j, i))/2)
		}
	}

	return s, nil
}

// FloorDiag raises every diagonal element of s below floor to floor.
func FloorDiag(s *mat.SymDense, floor float64) {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		if s.At(i, i) < floor {
			s.SetSym(i, i, floor)
		}
	}
}

// IsPSD returns true if all eigenvalues of s are greater than -tol.
// Matrices containing NaN or Inf are never positive semi-definite.
func IsPSD(s mat.Symmetric, tol float64) bool {
	n := s.SymmetricDim()
	if n == 0 {
		return true
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if v := s.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(s, false); !ok {
		return false
	}

	for _, v := range eig.Values(nil) {
		if v < -tol {
			return false
		}
	}

	return true
}

// ColSums returns a slice containing m column sums.
// It panics if m is nil.
func ColSums(m *mat.Dense) []float64 {
	_, cols := m.Dims()
	sum := make([]float64, cols)

	for i := 0; i < cols; i++ {
		sum[i] = mat.Sum(m.ColView(i))
	}

	return sum
}

// ColMeans returns a slice containing m column means.
// It panics if m is nil.
func ColMeans(m *mat.Dense) []float64 {
	rows, _ := m.Dims()
	means := ColSums(m)
	floats.Scale(1/float64(rows), means)

	return means
}
