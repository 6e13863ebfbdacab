package noise

import (
	"testing"

	"github.com/navsim/go-navsim"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

var (
	_ navsim.Noise        = (*Zero)(nil)
	_ navsim.Noise        = (*Sequence)(nil)
	_ navsim.Noise        = (*Gaussian)(nil)
	_ navsim.Noise        = (*Independent)(nil)
	_ navsim.Reconfigurer = (*Gaussian)(nil)
	_ navsim.Reconfigurer = (*Independent)(nil)
)

func TestNewZero(t *testing.T) {
	assert := assert.New(t)

	e, err := NewZero(2)
	assert.NotNil(e)
	assert.NoError(err)

	e, err = NewZero(-10)
	assert.Nil(e)
	assert.ErrorIs(err, navsim.ErrInvalidParameters)
}

func TestZeroSample(t *testing.T) {
	assert := assert.New(t)

	e, err := NewZero(2)
	assert.NoError(err)

	sample := e.Sample()
	assert.Equal(2, sample.Len())
	assert.Equal(0.0, mat.Norm(sample, 2))
	assert.Equal(0.0, mat.Norm(e.Cov(), 1))
	assert.EqualValues([]float64{0, 0}, e.Mean())
}

func TestZeroString(t *testing.T) {
	assert := assert.New(t)

	str := `Zero{
Mean=[0 0]
Cov=⎡0  0⎤
    ⎣0  0⎦
}`
	e, err := NewZero(2)
	assert.NoError(err)
	assert.Equal(str, e.String())
}

func TestSequence(t *testing.T) {
	assert := assert.New(t)

	s, err := NewSequence([][]float64{{0.1, -0.1}, {0.3, 0.1}})
	assert.NoError(err)

	assert.Equal(0.1, s.Sample().AtVec(0))
	assert.Equal(0.3, s.Sample().AtVec(0))
	assert.Equal(0.1, s.Sample().AtVec(0))

	s.Reset()
	assert.Equal(-0.1, s.Sample().AtVec(1))

	assert.InDeltaSlice([]float64{0.2, 0}, s.Mean(), 1e-12)
	assert.InDelta(0.02, s.Cov().At(0, 0), 1e-12)

	_, err = NewSequence(nil)
	assert.ErrorIs(err, navsim.ErrInvalidParameters)
	_, err = NewSequence([][]float64{{1, 2}, {1}})
	assert.ErrorIs(err, navsim.ErrInvalidParameters)
}
