package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/estimate"
	"github.com/navsim/go-navsim/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "navsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestDefaultConfig(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	assert.NoError(cfg.Validate())
	assert.Equal(navsim.Bounds{Width: 640, Height: 640}, cfg.Bounds())
	assert.Equal(estimate.CovIdentity, cfg.Filter.InitialCovariance)
	assert.Equal([][]float64{{0.01, 0.001}, {0.001, 0.01}}, cfg.Filter.Q)
	assert.Equal(cfg.Filter.Q, cfg.Filter.R)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	path := writeConfig(t, `
seed: 42
world:
  width: 6400
  height: 6400
noise:
  motion:
    kind: gaussian
    mean: [0, 0]
    cov: [[0.0001, 0.00002], [0.00002, 0.0004]]
  position:
    kind: none
filter:
  initial_covariance: zero
navigator:
  cruise_velocity: 2.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(uint64(42), cfg.Seed)
	assert.Equal(navsim.Bounds{Width: 6400, Height: 6400}, cfg.Bounds())
	assert.Equal(KindGaussian, cfg.Noise.Motion.Kind)
	assert.Equal(estimate.CovZero, cfg.Filter.InitialCovariance)
	assert.Equal(2.5, cfg.Navigator.CruiseVelocity)
	// untouched values keep their defaults
	assert.Equal(10.0, cfg.Navigator.ArrivalTolerance)
	assert.Equal(1e-12, cfg.Filter.Epsilon)

	motion, err := cfg.Noise.Motion.Build(cfg.Seed)
	assert.NoError(err)
	assert.IsType(&noise.Gaussian{}, motion)
	assert.Equal(0.00002, motion.Cov().At(0, 1))

	position, err := cfg.Noise.Position.Build(cfg.Seed)
	assert.NoError(err)
	assert.Nil(position)
}

func TestLoadInvalid(t *testing.T) {
	assert := assert.New(t)

	for _, content := range []string{
		"world: {width: -1, height: 10}",
		"noise: {motion: {kind: independent, mean: [0, 0], stddev: [-0.1, 0.1]}}",
		"noise: {motion: {kind: gaussian, mean: [0, 0], cov: [[1, 2], [2, 1]]}}",
		"noise: {motion: {kind: gaussian, mean: [0, 0], cov: [[1, 0.1], [0.2, 1]]}}",
		"noise: {motion: {kind: none}}",
		"noise: {position: {kind: laplace}}",
		"filter: {q: [[1, 0], [0]]}",
		"filter: {initial_covariance: ones}",
		"filter: {epsilon: 0}",
		"navigator: {cruise_velocity: 0}",
	} {
		cfg, err := Load(writeConfig(t, content))
		assert.Nil(cfg, content)
		assert.ErrorIs(err, navsim.ErrInvalidParameters, content)
	}

	cfg, err := Load(writeConfig(t, "world: [1, 2"))
	assert.Nil(cfg)
	assert.Error(err)
}

func TestSaveLoad(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Noise.Motion.Kind = KindZero
	cfg.Navigator.CruiseVelocity = 3

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestSymDense(t *testing.T) {
	assert := assert.New(t)

	s, err := SymDense([][]float64{{1, 0.5}, {0.5, 1}})
	assert.NoError(err)
	assert.Equal(0.5, s.At(1, 0))

	_, err = SymDense(nil)
	assert.ErrorIs(err, navsim.ErrInvalidParameters)
}
