package noise

import (
	"fmt"

	"github.com/navsim/go-navsim"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Sequence replays a fixed list of samples in a loop.
// It is meant for tests which need full control over the drawn noise.
type Sequence struct {
	samples *mat.Dense
	next    int
}

// NewSequence creates new Sequence noise replaying samples.
// It returns error if samples is empty or the samples have different lengths.
func NewSequence(samples [][]float64) (*Sequence, error) {
	if len(samples) == 0 || len(samples[0]) == 0 {
		return nil, fmt.Errorf("empty sample sequence: %w", navsim.ErrInvalidParameters)
	}

	cols := len(samples[0])
	m := mat.NewDense(len(samples), cols, nil)
	for i, s := range samples {
		if len(s) != cols {
			return nil, fmt.Errorf("sample %d has length %d, expected %d: %w", i, len(s), cols, navsim.ErrInvalidParameters)
		}
		m.SetRow(i, s)
	}

	return &Sequence{samples: m}, nil
}

// Sample returns the next sample of the sequence.
func (s *Sequence) Sample() mat.Vector {
	rows, _ := s.samples.Dims()
	sample := mat.VecDenseCopyOf(s.samples.RowView(s.next))
	s.next = (s.next + 1) % rows

	return sample
}

// Mean returns empirical mean of the sequence.
func (s *Sequence) Mean() []float64 {
	_, cols := s.samples.Dims()
	mean := make([]float64, cols)
	for j := range mean {
		mean[j] = stat.Mean(mat.Col(nil, j, s.samples), nil)
	}

	return mean
}

// Cov returns empirical covariance of the sequence.
func (s *Sequence) Cov() mat.Symmetric {
	rows, cols := s.samples.Dims()
	cov := mat.NewSymDense(cols, nil)
	if rows > 1 {
		stat.CovarianceMatrix(cov, s.samples, nil)
	}

	return cov
}

// Reset rewinds the sequence to its first sample.
func (s *Sequence) Reset() {
	s.next = 0
}
