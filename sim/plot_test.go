package sim

import (
	"path/filepath"
	"testing"

	"github.com/navsim/go-navsim"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNew2DPlot(t *testing.T) {
	assert := assert.New(t)

	actual := mat.NewDense(3, 2, nil)
	measured := mat.NewDense(3, 2, nil)
	belief := mat.NewDense(3, 2, nil)

	plt, err := New2DPlot(actual, measured, belief)
	assert.NotNil(plt)
	assert.NoError(err)

	plt, err = New2DPlot(nil, nil, nil)
	assert.Nil(plt)
	assert.ErrorIs(err, navsim.ErrInvalidParameters)

	testCases := []struct {
		actual, measured, belief *mat.Dense
	}{
		{mat.NewDense(3, 1, nil), measured, belief},
		{actual, mat.NewDense(3, 1, nil), belief},
		{actual, measured, mat.NewDense(3, 1, nil)},
	}

	for _, tc := range testCases {
		plt, err = New2DPlot(tc.actual, tc.measured, tc.belief)
		assert.Nil(plt)
		assert.ErrorIs(err, navsim.ErrInvalidParameters)
	}
}

func TestSavePlot(t *testing.T) {
	assert := assert.New(t)

	data := mat.NewDense(2, 2, []float64{0, 0, 1, 1})
	plt, err := New2DPlot(data, data, data)
	assert.NoError(err)

	path := filepath.Join(t.TempDir(), "trace.png")
	assert.NoError(SavePlot(plt, path))
	assert.FileExists(path)
}
