package kalman

import (
	"github.com/navsim/go-navsim"
	"gonum.org/v1/gonum/mat"
)

// Kalman is Kalman Filter
type Kalman interface {
	// navsim.Estimator fuses readings into belief
	navsim.Estimator
	// Gain returns Kalman filter gain
	Gain() mat.Matrix
	// Innovation returns the last innovation vector
	Innovation() mat.Vector
}
