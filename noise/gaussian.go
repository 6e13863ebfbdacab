package noise

import (
	"fmt"
	"math"

	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/rnd"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Gaussian is joint gaussian noise over all of its channels
type Gaussian struct {
	// seed is the seed of src
	seed uint64
	// src is the source of randomness
	src rand.Source
	// dist is a multivariate normal distribution; nil if cov is singular
	dist *distmv.Normal
	// mean is Gaussian mean
	mean []float64
	// cov is Gaussian covariance
	cov *mat.SymDense
}

// NewGaussian creates new Gaussian noise with given mean and covariance drawing from a source seeded with seed.
// It returns error if mean and cov dimensions differ or if cov is not positive semi-definite.
func NewGaussian(mean []float64, cov mat.Symmetric, seed uint64) (*Gaussian, error) {
	if err := validate(mean, cov); err != nil {
		return nil, fmt.Errorf("failed to create Gaussian noise: %w", err)
	}

	g := &Gaussian{
		seed: seed,
		src:  rand.NewSource(seed),
		mean: append([]float64(nil), mean...),
		cov:  copySym(cov),
	}
	g.dist = g.newDist(g.mean, g.cov)

	return g, nil
}

// newDist returns nil if cov is not positive definite; Sample falls back to SVD sampling then.
func (g *Gaussian) newDist(mean []float64, cov mat.Symmetric) *distmv.Normal {
	dist, ok := distmv.NewNormal(mean, cov, g.src)
	if !ok {
		return nil
	}

	return dist
}

// Sample generates a sample from Gaussian noise and returns it.
// A sample of NaN values is returned if the draw fails.
func (g *Gaussian) Sample() mat.Vector {
	if g.dist != nil {
		r := g.dist.Rand(nil)
		return mat.NewVecDense(len(r), r)
	}

	s, err := rnd.WithCovN(g.cov, 1, g.src)
	if err != nil {
		return nanVec(len(g.mean))
	}

	sample := mat.NewVecDense(len(g.mean), nil)
	sample.AddVec(s.ColView(0), mat.NewVecDense(len(g.mean), g.mean))

	return sample
}

// Cov returns covariance matrix of Gaussian noise.
func (g *Gaussian) Cov() mat.Symmetric {
	return copySym(g.cov)
}

// Mean returns Gaussian mean.
func (g *Gaussian) Mean() []float64 {
	return append([]float64(nil), g.mean...)
}

// StdDev returns standard deviations of the individual channels.
func (g *Gaussian) StdDev() []float64 {
	std := make([]float64, len(g.mean))
	for i := range std {
		std[i] = math.Sqrt(g.cov.At(i, i))
	}

	return std
}

// Reset rewinds the random stream to its seed.
func (g *Gaussian) Reset() {
	g.src.Seed(g.seed)
}

// Reconfigure replaces Gaussian mean and covariance.
// It returns error and leaves the noise unchanged if the new parameters are invalid
// or do not match the number of noise channels.
func (g *Gaussian) Reconfigure(mean []float64, cov mat.Symmetric) error {
	if err := validate(mean, cov); err != nil {
		return err
	}

	if size := cov.SymmetricDim(); size != len(g.mean) {
		return fmt.Errorf("reconfiguration dimension %d does not match %d channels: %w", size, len(g.mean), navsim.ErrInvalidParameters)
	}

	m := append([]float64(nil), mean...)
	c := copySym(cov)

	g.dist = g.newDist(m, c)
	g.mean = m
	g.cov = c

	return nil
}

// SetChannel sets mean and variance of channel i keeping the cross-covariances.
// It returns error and leaves the noise unchanged if std is negative
// or the resulting covariance is not positive semi-definite.
func (g *Gaussian) SetChannel(i int, mean, std float64) error {
	if i < 0 || i >= len(g.mean) {
		return fmt.Errorf("invalid channel %d: %w", i, navsim.ErrInvalidParameters)
	}

	if err := validateStd(i, std); err != nil {
		return err
	}

	m := g.Mean()
	m[i] = mean
	c := copySym(g.cov)
	c.SetSym(i, i, std*std)

	return g.Reconfigure(m, c)
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMean=%v\nCov=%v\n}", g.mean, mat.Formatted(g.cov, mat.Prefix("    "), mat.Squeeze()))
}
