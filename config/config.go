// Package config holds simulation configuration loaded from YAML.
package config

import (
	"fmt"
	"math"
	"os"

	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/estimate"
	"github.com/navsim/go-navsim/matrix"
	"github.com/navsim/go-navsim/noise"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Noise kinds
const (
	KindIndependent = "independent"
	KindGaussian    = "gaussian"
	KindZero        = "zero"
	KindNone        = "none"
)

// Config is the simulation configuration
type Config struct {
	// Seed seeds every noise stream of the agent
	Seed      uint64          `yaml:"seed"`
	World     WorldConfig     `yaml:"world"`
	Noise     NoiseConfig     `yaml:"noise"`
	Filter    FilterConfig    `yaml:"filter"`
	Navigator NavigatorConfig `yaml:"navigator"`
}

// WorldConfig holds world bounds
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// NoiseConfig holds sensor noise models
type NoiseConfig struct {
	// Motion is the joint (velocity, heading) error model
	Motion NoiseModel `yaml:"motion"`
	// Position is the (x, y) error model; kind none disables it
	Position NoiseModel `yaml:"position"`
}

// NoiseModel describes a two-channel noise model.
// StdDev is used by independent noise, Cov by gaussian noise.
type NoiseModel struct {
	Kind   string      `yaml:"kind"`
	Mean   []float64   `yaml:"mean"`
	StdDev []float64   `yaml:"stddev,omitempty"`
	Cov    [][]float64 `yaml:"cov,omitempty"`
}

// FilterConfig holds Kalman filter parameters
type FilterConfig struct {
	// Q is process noise covariance
	Q [][]float64 `yaml:"q"`
	// R is measurement noise covariance
	R [][]float64 `yaml:"r"`
	// InitialCovariance is either identity or zero
	InitialCovariance estimate.CovInit `yaml:"initial_covariance"`
	// Epsilon is the singular innovation covariance threshold
	Epsilon float64 `yaml:"epsilon"`
}

// NavigatorConfig holds navigator parameters
type NavigatorConfig struct {
	CruiseVelocity   float64 `yaml:"cruise_velocity"`
	ArrivalTolerance float64 `yaml:"arrival_tolerance"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Seed: 1,
		World: WorldConfig{
			Width:  640,
			Height: 640,
		},
		Noise: NoiseConfig{
			Motion: NoiseModel{
				Kind:   KindIndependent,
				Mean:   []float64{0, 0},
				StdDev: []float64{0.001, 0.001},
			},
			Position: NoiseModel{
				Kind:   KindIndependent,
				Mean:   []float64{0, 0},
				StdDev: []float64{0.001, 0.001},
			},
		},
		Filter: FilterConfig{
			Q:                 [][]float64{{0.01, 0.001}, {0.001, 0.01}},
			R:                 [][]float64{{0.01, 0.001}, {0.001, 0.01}},
			InitialCovariance: estimate.CovIdentity,
			Epsilon:           1e-12,
		},
		Navigator: NavigatorConfig{
			CruiseVelocity:   1.0,
			ArrivalTolerance: 10,
		},
	}
}

// Load loads configuration from a YAML file at path on top of DefaultConfig.
// Defaults are returned if the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to path as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate validates configuration.
// It returns error wrapping navsim.ErrInvalidParameters.
func (c *Config) Validate() error {
	if !(c.World.Width > 0) || !(c.World.Height > 0) {
		return fmt.Errorf("invalid world size %gx%g: %w", c.World.Width, c.World.Height, navsim.ErrInvalidParameters)
	}

	if c.Noise.Motion.Kind == KindNone {
		return fmt.Errorf("motion noise can not be disabled, use zero: %w", navsim.ErrInvalidParameters)
	}

	if _, err := c.Noise.Motion.Build(c.Seed); err != nil {
		return fmt.Errorf("motion noise: %w", err)
	}

	if _, err := c.Noise.Position.Build(c.Seed + 1); err != nil {
		return fmt.Errorf("position noise: %w", err)
	}

	for name, m := range map[string][][]float64{"q": c.Filter.Q, "r": c.Filter.R} {
		if _, err := SymDense(m); err != nil {
			return fmt.Errorf("filter %s: %w", name, err)
		}
	}

	if _, err := c.Filter.InitialCovariance.Matrix(2); err != nil {
		return err
	}

	if !(c.Filter.Epsilon > 0) {
		return fmt.Errorf("invalid filter epsilon %v: %w", c.Filter.Epsilon, navsim.ErrInvalidParameters)
	}

	if !(c.Navigator.CruiseVelocity > 0) || !(c.Navigator.ArrivalTolerance > 0) {
		return fmt.Errorf("invalid navigator parameters: %w", navsim.ErrInvalidParameters)
	}

	return nil
}

// Bounds returns world bounds
func (c *Config) Bounds() navsim.Bounds {
	return navsim.Bounds{Width: c.World.Width, Height: c.World.Height}
}

// Build creates the noise described by m seeded with seed.
// It returns nil noise for kind none.
func (m NoiseModel) Build(seed uint64) (navsim.Noise, error) {
	var (
		n   navsim.Noise
		err error
	)

	switch m.Kind {
	case KindIndependent:
		n, err = noise.NewIndependent(m.Mean, m.StdDev, seed)
	case KindGaussian:
		cov, cerr := SymDense(m.Cov)
		if cerr != nil {
			return nil, cerr
		}
		n, err = noise.NewGaussian(m.Mean, cov, seed)
	case KindZero:
		n, err = noise.NewZero(2)
	case KindNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q: %w", m.Kind, navsim.ErrInvalidParameters)
	}

	if err != nil {
		return nil, err
	}

	return n, nil
}

// SymDense converts a square, symmetric, positive semi-definite 2-D slice into a matrix.
func SymDense(rows [][]float64) (*mat.SymDense, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("empty matrix: %w", navsim.ErrInvalidParameters)
	}

	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w", i, len(row), n, navsim.ErrInvalidParameters)
		}
		data = append(data, row...)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(rows[i][j]-rows[j][i]) > 1e-12 {
				return nil, fmt.Errorf("matrix is not symmetric: %w", navsim.ErrInvalidParameters)
			}
		}
	}

	s := mat.NewSymDense(n, data)
	if !matrix.IsPSD(s, 1e-12) {
		return nil, fmt.Errorf("matrix is not positive semi-definite: %w", navsim.ErrInvalidParameters)
	}

	return s, nil
}
