package sim

import (
	"fmt"
	"math"

	"github.com/navsim/go-navsim"
	"github.com/navsim/go-navsim/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
)

// Trace is a recorded agent trajectory.
// Each matrix has a row per tick, starting with the initial position, and (x, y) columns.
type Trace struct {
	// Actual holds ground truth positions
	Actual *mat.Dense
	// Measured holds positions dead-reckoned from raw sensor readings
	Measured *mat.Dense
	// Belief holds filtered positions
	Belief *mat.Dense
	// Goal is the goal at the end of the run
	Goal navsim.Point
	// Arrived is true if the agent arrived at its goal
	Arrived bool
}

// Ticks returns the number of recorded ticks
func (t *Trace) Ticks() int {
	r, _ := t.Actual.Dims()

	return r - 1
}

// Summary summarizes trace errors
type Summary struct {
	Ticks   int
	Arrived bool
	// MeanError and MaxError are belief position errors
	MeanError float64
	MaxError  float64
	// MeanBias is the mean (x, y) belief position offset
	MeanBias [2]float64
	// MeasuredMeanError is the mean dead-reckoned position error
	MeasuredMeanError float64
}

// String implements the Stringer interface.
func (s Summary) String() string {
	return fmt.Sprintf("ticks=%d arrived=%t error(mean=%.4f max=%.4f bias=[%.4f %.4f]) dead-reckoning(mean=%.4f)",
		s.Ticks, s.Arrived, s.MeanError, s.MaxError, s.MeanBias[0], s.MeanBias[1], s.MeasuredMeanError)
}

// Summary computes position error statistics of the trace against the actual trajectory
func (t *Trace) Summary() Summary {
	beliefErr := distances(t.Belief, t.Actual)
	measErr := distances(t.Measured, t.Actual)

	diff := &mat.Dense{}
	diff.Sub(t.Belief, t.Actual)
	bias := matrix.ColMeans(diff)

	return Summary{
		Ticks:             t.Ticks(),
		Arrived:           t.Arrived,
		MeanError:         stat.Mean(beliefErr, nil),
		MaxError:          floats.Max(beliefErr),
		MeanBias:          [2]float64{bias[0], bias[1]},
		MeasuredMeanError: stat.Mean(measErr, nil),
	}
}

// Plot returns the trace plot
func (t *Trace) Plot() (*plot.Plot, error) {
	return New2DPlot(t.Actual, t.Measured, t.Belief)
}

func distances(a, b *mat.Dense) []float64 {
	r, _ := a.Dims()
	d := make([]float64, r)
	for i := range d {
		d[i] = math.Hypot(a.At(i, 0)-b.At(i, 0), a.At(i, 1)-b.At(i, 1))
	}

	return d
}

type recorder struct {
	bounds   navsim.Bounds
	measured navsim.Point
	actual   []float64
	meas     []float64
	belief   []float64
}

func newRecorder(a Agent) *recorder {
	start := a.Actual().Position()
	r := &recorder{
		bounds:   a.Bounds(),
		measured: start,
	}
	r.append(a, start)

	return r
}

func (r *recorder) record(a Agent) {
	if m := a.LastReading(); m != nil {
		v := m.Val()
		r.measured = navsim.Advance(r.measured, v.AtVec(0), v.AtVec(1), r.bounds)
	}
	r.append(a, r.measured)
}

func (r *recorder) append(a Agent, measured navsim.Point) {
	actual, belief := a.Actual(), a.Belief()
	r.actual = append(r.actual, actual.X, actual.Y)
	r.meas = append(r.meas, measured.X, measured.Y)
	r.belief = append(r.belief, belief.X, belief.Y)
}

func (r *recorder) trace(a Agent) *Trace {
	rows := len(r.actual) / 2

	return &Trace{
		Actual:   mat.NewDense(rows, 2, append([]float64(nil), r.actual...)),
		Measured: mat.NewDense(rows, 2, append([]float64(nil), r.meas...)),
		Belief:   mat.NewDense(rows, 2, append([]float64(nil), r.belief...)),
		Goal:     a.Goal(),
		Arrived:  a.AtGoal(),
	}
}
