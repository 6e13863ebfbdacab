package noise

import (
	"fmt"
	"math"

	"github.com/navsim/go-navsim"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Independent is noise whose channels are independent univariate gaussians
type Independent struct {
	// seed is the seed of src
	seed uint64
	// src is the source of randomness shared by all channels
	src rand.Source
	// dists stores channel distributions
	dists []distuv.Normal
}

// NewIndependent creates new Independent noise with one channel per element of mean and std.
// It returns error if mean and std lengths differ or if any std is negative.
func NewIndependent(mean, std []float64, seed uint64) (*Independent, error) {
	n := &Independent{
		seed: seed,
		src:  rand.NewSource(seed),
	}

	dists, err := n.newDists(mean, std)
	if err != nil {
		return nil, fmt.Errorf("failed to create Independent noise: %w", err)
	}
	n.dists = dists

	return n, nil
}

func (n *Independent) newDists(mean, std []float64) ([]distuv.Normal, error) {
	if len(mean) == 0 || len(mean) != len(std) {
		return nil, fmt.Errorf("mean length %d does not match std length %d: %w", len(mean), len(std), navsim.ErrInvalidParameters)
	}

	dists := make([]distuv.Normal, len(mean))
	for i := range mean {
		if err := validateStd(i, std[i]); err != nil {
			return nil, err
		}
		dists[i] = distuv.Normal{Mu: mean[i], Sigma: std[i], Src: n.src}
	}

	if err := validate(mean, mat.NewDiagDense(len(std), std)); err != nil {
		return nil, err
	}

	return dists, nil
}

// Sample draws every channel independently and returns the sample.
func (n *Independent) Sample() mat.Vector {
	sample := mat.NewVecDense(len(n.dists), nil)
	for i := range n.dists {
		sample.SetVec(i, n.dists[i].Rand())
	}

	return sample
}

// Mean returns channel means.
func (n *Independent) Mean() []float64 {
	mean := make([]float64, len(n.dists))
	for i := range n.dists {
		mean[i] = n.dists[i].Mu
	}

	return mean
}

// StdDev returns channel standard deviations.
func (n *Independent) StdDev() []float64 {
	std := make([]float64, len(n.dists))
	for i := range n.dists {
		std[i] = n.dists[i].Sigma
	}

	return std
}

// Cov returns diagonal covariance matrix of channel variances.
func (n *Independent) Cov() mat.Symmetric {
	cov := mat.NewSymDense(len(n.dists), nil)
	for i := range n.dists {
		cov.SetSym(i, i, n.dists[i].Sigma*n.dists[i].Sigma)
	}

	return cov
}

// Reset rewinds the random stream to its seed.
func (n *Independent) Reset() {
	n.src.Seed(n.seed)
}

// Reconfigure replaces channel means and variances.
// It returns error and leaves the noise unchanged if cov has non-zero off-diagonal elements,
// negative variances or dimensions not matching the noise channels.
func (n *Independent) Reconfigure(mean []float64, cov mat.Symmetric) error {
	if cov == nil {
		return fmt.Errorf("nil covariance: %w", navsim.ErrInvalidParameters)
	}

	size := cov.SymmetricDim()
	if size != len(n.dists) || len(mean) != len(n.dists) {
		return fmt.Errorf("reconfiguration dimension %d does not match %d channels: %w", size, len(n.dists), navsim.ErrInvalidParameters)
	}

	std := make([]float64, size)
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if cov.At(i, j) != 0 {
				return fmt.Errorf("correlated covariance for independent noise: %w", navsim.ErrInvalidParameters)
			}
		}
		v := cov.At(i, i)
		if v < 0 {
			return fmt.Errorf("negative variance %v for channel %d: %w", v, i, navsim.ErrInvalidParameters)
		}
		std[i] = math.Sqrt(v)
	}

	dists, err := n.newDists(mean, std)
	if err != nil {
		return err
	}
	n.dists = dists

	return nil
}

// SetChannel replaces mean and standard deviation of channel i.
// It returns error and leaves the noise unchanged if i is out of range or std is negative.
func (n *Independent) SetChannel(i int, mean, std float64) error {
	if i < 0 || i >= len(n.dists) {
		return fmt.Errorf("invalid channel %d: %w", i, navsim.ErrInvalidParameters)
	}

	m, s := n.Mean(), n.StdDev()
	m[i], s[i] = mean, std

	dists, err := n.newDists(m, s)
	if err != nil {
		return err
	}
	n.dists = dists

	return nil
}

// String implements the Stringer interface.
func (n *Independent) String() string {
	return fmt.Sprintf("Independent{\nMean=%v\nStdDev=%v\n}", n.Mean(), n.StdDev())
}
