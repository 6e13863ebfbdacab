package noise

import (
	"errors"
	"testing"

	"github.com/navsim/go-navsim"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestNewGaussian(t *testing.T) {
	assert := assert.New(t)

	for _, test := range []struct {
		mean []float64
		cov  *mat.SymDense
		ok   bool
	}{
		{mean: []float64{2, 3}, cov: mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}), ok: true},
		{mean: []float64{0, 0}, cov: mat.NewSymDense(2, nil), ok: true},
		{mean: []float64{0, 0}, cov: mat.NewSymDense(2, []float64{1, 1, 1, 1}), ok: true},
		{mean: []float64{0}, cov: mat.NewSymDense(2, []float64{1, 0, 0, 1}), ok: false},
		{mean: []float64{0, 0}, cov: mat.NewSymDense(2, []float64{1, 2, 2, 1}), ok: false},
		{mean: []float64{0, 0}, cov: mat.NewSymDense(2, []float64{-1, 0, 0, 1}), ok: false},
	} {
		g, err := NewGaussian(test.mean, test.cov, 1)
		if test.ok {
			assert.NotNil(g)
			assert.NoError(err)
			continue
		}
		assert.Nil(g)
		assert.True(errors.Is(err, navsim.ErrInvalidParameters))
	}
}

func TestGaussianMeanCov(t *testing.T) {
	assert := assert.New(t)

	mean := []float64{2, 3}
	cov := mat.NewSymDense(2, []float64{1, 0.1, 0.1, 4})

	g, err := NewGaussian(mean, cov, 1)
	assert.NoError(err)

	assert.True(mat.Equal(cov, g.Cov()))
	assert.EqualValues(mean, g.Mean())
	assert.InDeltaSlice([]float64{1, 2}, g.StdDev(), 1e-12)

	// returned values are copies
	g.Mean()[0] = 100
	assert.EqualValues(mean, g.Mean())
	cov.SetSym(0, 0, 50)
	assert.Equal(1.0, g.Cov().At(0, 0))
}

func TestGaussianSampleConverges(t *testing.T) {
	assert := assert.New(t)

	for _, test := range []struct {
		mean []float64
		cov  *mat.SymDense
	}{
		{mean: []float64{0.5, -1}, cov: mat.NewSymDense(2, []float64{0.25, 0.05, 0.05, 0.04})},
		// singular covariance goes through the SVD path
		{mean: []float64{1, 1}, cov: mat.NewSymDense(2, []float64{1, 1, 1, 1})},
	} {
		g, err := NewGaussian(test.mean, test.cov, 42)
		assert.NoError(err)

		n := 20000
		samples := mat.NewDense(n, 2, nil)
		for i := 0; i < n; i++ {
			s := g.Sample()
			samples.Set(i, 0, s.AtVec(0))
			samples.Set(i, 1, s.AtVec(1))
		}

		x, y := mat.Col(nil, 0, samples), mat.Col(nil, 1, samples)
		assert.InDelta(test.mean[0], stat.Mean(x, nil), 0.04)
		assert.InDelta(test.mean[1], stat.Mean(y, nil), 0.04)
		assert.InDelta(test.cov.At(0, 0), stat.Variance(x, nil), 0.05*test.cov.At(0, 0))
		assert.InDelta(test.cov.At(1, 1), stat.Variance(y, nil), 0.05*test.cov.At(1, 1))
		assert.InDelta(test.cov.At(0, 1), stat.Covariance(x, y, nil), 0.05)
	}
}

func TestGaussianZeroCov(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGaussian([]float64{0.3, 0}, mat.NewSymDense(2, nil), 1)
	assert.NoError(err)

	for i := 0; i < 10; i++ {
		s := g.Sample()
		assert.Equal(0.3, s.AtVec(0))
		assert.Equal(0.0, s.AtVec(1))
	}
}

func TestGaussianReset(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGaussian([]float64{2, 3}, mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}), 7)
	assert.NoError(err)

	sample1 := mat.VecDenseCopyOf(g.Sample())
	sample2 := mat.VecDenseCopyOf(g.Sample())
	assert.False(mat.Equal(sample1, sample2))

	g.Reset()
	assert.True(mat.Equal(sample1, g.Sample()))
}

func TestGaussianReconfigure(t *testing.T) {
	assert := assert.New(t)

	cov := mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1})
	g, err := NewGaussian([]float64{0, 0}, cov, 1)
	assert.NoError(err)

	newCov := mat.NewSymDense(2, []float64{2, 0.5, 0.5, 3})
	assert.NoError(g.Reconfigure([]float64{1, 2}, newCov))
	assert.EqualValues([]float64{1, 2}, g.Mean())
	assert.True(mat.Equal(newCov, g.Cov()))

	// invalid parameters leave the noise unchanged
	err = g.Reconfigure([]float64{5, 5}, mat.NewSymDense(2, []float64{1, 3, 3, 1}))
	assert.True(errors.Is(err, navsim.ErrInvalidParameters))
	assert.EqualValues([]float64{1, 2}, g.Mean())
	assert.True(mat.Equal(newCov, g.Cov()))

	err = g.Reconfigure([]float64{5}, newCov)
	assert.True(errors.Is(err, navsim.ErrInvalidParameters))
	assert.EqualValues([]float64{1, 2}, g.Mean())

	err = g.Reconfigure([]float64{0, 0, 0}, mat.NewDiagDense(3, []float64{0.01, 0.01, 0.01}))
	assert.True(errors.Is(err, navsim.ErrInvalidParameters))
	assert.EqualValues([]float64{1, 2}, g.Mean())
	assert.True(mat.Equal(newCov, g.Cov()))
	assert.Equal(2, g.Sample().Len())
}

func TestGaussianSetChannel(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGaussian([]float64{0, 0}, mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}), 1)
	assert.NoError(err)

	assert.NoError(g.SetChannel(1, 0.5, 2))
	assert.EqualValues([]float64{0, 0.5}, g.Mean())
	assert.Equal(4.0, g.Cov().At(1, 1))
	assert.Equal(0.1, g.Cov().At(0, 1))

	assert.True(errors.Is(g.SetChannel(0, 0, -1), navsim.ErrInvalidParameters))
	assert.True(errors.Is(g.SetChannel(2, 0, 1), navsim.ErrInvalidParameters))
	// zero variance with non-zero cross-covariance is not PSD
	assert.True(errors.Is(g.SetChannel(0, 0, 0), navsim.ErrInvalidParameters))
	assert.Equal(1.0, g.Cov().At(0, 0))
}

func TestGaussianString(t *testing.T) {
	assert := assert.New(t)

	str := `Gaussian{
Mean=[2 3]
Cov=⎡  1  0.1⎤
    ⎣0.1    1⎦
}`
	g, err := NewGaussian([]float64{2, 3}, mat.NewSymDense(2, []float64{1, 0.1, 0.1, 1}), 1)
	assert.NoError(err)
	assert.Equal(str, g.String())
}
