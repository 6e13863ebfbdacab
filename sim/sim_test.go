package sim

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/agent"
	"github.com/navsim/go-navsim/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stepper moves one unit along x every tick and fails at tick failAt
type stepper struct {
	pos    navsim.Point
	ticks  int
	failAt int
}

func (s *stepper) Tick() error {
	if s.failAt > 0 && s.ticks == s.failAt {
		return fmt.Errorf("broken sensor: %w", navsim.ErrDistribution)
	}
	s.ticks++
	s.pos.X++

	return nil
}

func (s *stepper) AtGoal() bool         { return false }
func (s *stepper) Goal() navsim.Point   { return navsim.Point{X: 100} }
func (s *stepper) Belief() navsim.State { return navsim.State{X: s.pos.X, Y: s.pos.Y} }
func (s *stepper) Actual() navsim.State { return navsim.State{X: s.pos.X, Y: s.pos.Y} }
func (s *stepper) Bounds() navsim.Bounds {
	return navsim.Bounds{Width: 640, Height: 640}
}
func (s *stepper) LastReading() navsim.Measurement { return nil }

func newAgent(t *testing.T, cfg *config.Config, start, goal navsim.Point) *agent.Agent {
	a, err := agent.NewWithConfig(start, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, a.SetGoal(goal.X, goal.Y))

	return a
}

func noiseless() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Noise.Motion = config.NoiseModel{Kind: config.KindZero}
	cfg.Noise.Position = config.NoiseModel{Kind: config.KindNone}

	return cfg
}

func TestRunNoiseless(t *testing.T) {
	assert := assert.New(t)

	a := newAgent(t, noiseless(), navsim.Point{}, navsim.Point{X: 100, Y: 100})

	trace, err := Run(a, 1000)
	assert.NoError(err)
	assert.True(trace.Arrived)
	assert.Equal(navsim.Point{X: 100, Y: 100}, trace.Goal)
	assert.InDelta(math.Hypot(100, 100), float64(trace.Ticks()), 1.0)

	rows, cols := trace.Actual.Dims()
	assert.Equal(trace.Ticks()+1, rows)
	assert.Equal(2, cols)
	assert.Equal(0.0, trace.Actual.At(0, 0))
	assert.Equal(0.0, trace.Actual.At(0, 1))

	assert.True(mat.Equal(trace.Actual, trace.Belief))
	assert.True(mat.EqualApprox(trace.Actual, trace.Measured, 1e-9))

	s := trace.Summary()
	assert.Equal(trace.Ticks(), s.Ticks)
	assert.True(s.Arrived)
	assert.Equal(0.0, s.MeanError)
	assert.Equal(0.0, s.MaxError)
	assert.Equal([2]float64{0, 0}, s.MeanBias)
	assert.Contains(s.String(), "arrived=true")
}

func TestRunMaxSteps(t *testing.T) {
	assert := assert.New(t)

	a := newAgent(t, config.DefaultConfig(), navsim.Point{}, navsim.Point{X: 600, Y: 600})

	trace, err := Run(a, 10)
	assert.NoError(err)
	assert.False(trace.Arrived)
	assert.Equal(10, trace.Ticks())
	assert.Equal(10, a.Ticks())

	s := trace.Summary()
	assert.True(s.MaxError >= s.MeanError)
}

func TestRunInvalid(t *testing.T) {
	assert := assert.New(t)

	trace, err := Run(nil, 10)
	assert.Nil(trace)
	assert.ErrorIs(err, navsim.ErrInvalidParameters)

	trace, err = Run(&stepper{}, 0)
	assert.Nil(trace)
	assert.ErrorIs(err, navsim.ErrInvalidParameters)
}

func TestRunTickError(t *testing.T) {
	assert := assert.New(t)

	trace, err := Run(&stepper{failAt: 3}, 10)
	assert.ErrorIs(err, navsim.ErrDistribution)
	assert.Equal(3, trace.Ticks())
	assert.Equal(3.0, trace.Actual.At(3, 0))
	// no readings: dead reckoning stays at start
	assert.Equal(0.0, trace.Measured.At(3, 0))
}

func TestSummary(t *testing.T) {
	assert := assert.New(t)

	trace := &Trace{
		Actual:   mat.NewDense(3, 2, []float64{0, 0, 1, 0, 2, 0}),
		Measured: mat.NewDense(3, 2, []float64{0, 0, 1, 1, 2, 2}),
		Belief:   mat.NewDense(3, 2, []float64{0, 0, 1, 3, 6, 0}),
	}

	s := trace.Summary()
	assert.Equal(2, s.Ticks)
	assert.False(s.Arrived)
	assert.InDelta(7.0/3.0, s.MeanError, 1e-12)
	assert.InDelta(4.0, s.MaxError, 1e-12)
	assert.InDelta(4.0/3.0, s.MeanBias[0], 1e-12)
	assert.InDelta(1.0, s.MeanBias[1], 1e-12)
	assert.InDelta(1.0, s.MeasuredMeanError, 1e-12)
}

func TestRunBatch(t *testing.T) {
	assert := assert.New(t)

	agents := make([]Agent, 4)
	for i := range agents {
		cfg := config.DefaultConfig()
		cfg.Seed = uint64(10 + i)
		agents[i] = newAgent(t, cfg, navsim.Point{X: 10, Y: 10}, navsim.Point{X: 200, Y: 150})
	}

	traces, err := RunBatch(context.Background(), agents, 1000)
	assert.NoError(err)
	assert.Len(traces, len(agents))

	for i, trace := range traces {
		assert.True(trace.Arrived, "agent %d", i)
		assert.Equal(agents[i].Actual().X, trace.Actual.At(trace.Ticks(), 0))
	}

	assert.False(mat.Equal(traces[0].Actual, traces[1].Actual))
}

func TestRunBatchDeterministic(t *testing.T) {
	assert := assert.New(t)

	run := func() *Trace {
		cfg := config.DefaultConfig()
		cfg.Seed = 7
		a := newAgent(t, cfg, navsim.Point{X: 10, Y: 10}, navsim.Point{X: 300, Y: 40})
		traces, err := RunBatch(context.Background(), []Agent{a}, 500)
		require.NoError(t, err)

		return traces[0]
	}

	a, b := run(), run()
	assert.True(mat.Equal(a.Actual, b.Actual))
	assert.True(mat.Equal(a.Belief, b.Belief))
}

func TestRunBatchError(t *testing.T) {
	assert := assert.New(t)

	agents := []Agent{&stepper{}, &stepper{failAt: 5}}

	traces, err := RunBatch(context.Background(), agents, 1000)
	assert.ErrorIs(err, navsim.ErrDistribution)
	assert.Contains(err.Error(), "agent 1")
	assert.Equal(5, traces[1].Ticks())
	assert.NotNil(traces[0])
}

func TestRunBatchCancel(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	traces, err := RunBatch(ctx, []Agent{&stepper{}, &stepper{}}, 100)
	assert.ErrorIs(err, context.Canceled)
	for _, trace := range traces {
		assert.Equal(0, trace.Ticks())
	}
}
