// Package spline fits quintic polynomials to boundary conditions, used to
// synthesize swing foot arcs.
package spline

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// minWindow is the smallest usable fitting window. Below this the 6x6 system
// is effectively singular.
const minWindow = 1e-9

var errDegenerateWindow = errors.New("spline window is degenerate, end time must exceed start time")

// Boundary holds position, velocity and acceleration at one end of a segment.
type Boundary struct {
	Pos float64
	Vel float64
	Acc float64
}

// Quintic is a fifth order polynomial in absolute time.
type Quintic struct {
	coeffs [6]float64
}

// Fit solves for the quintic that meets start at t0 and end at t1. The six
// boundary values determine the six coefficients through a dense 6x6 solve.
func Fit(t0, t1 float64, start, end Boundary) (Quintic, error) {
	if math.IsNaN(t0) || math.IsNaN(t1) || t1-t0 < minWindow {
		return Quintic{}, errors.Wrapf(errDegenerateWindow, "t0=%v t1=%v", t0, t1)
	}

	a := mat.NewDense(6, 6, nil)
	a.SetRow(0, positionRow(t0))
	a.SetRow(1, velocityRow(t0))
	a.SetRow(2, accelerationRow(t0))
	a.SetRow(3, positionRow(t1))
	a.SetRow(4, velocityRow(t1))
	a.SetRow(5, accelerationRow(t1))

	b := mat.NewVecDense(6, []float64{start.Pos, start.Vel, start.Acc, end.Pos, end.Vel, end.Acc})

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return Quintic{}, errors.Wrap(err, "quintic boundary system is singular")
	}

	var q Quintic
	for i := range q.coeffs {
		q.coeffs[i] = x.AtVec(i)
	}
	return q, nil
}

func positionRow(t float64) []float64 {
	return []float64{1, t, t * t, t * t * t, t * t * t * t, t * t * t * t * t}
}

func velocityRow(t float64) []float64 {
	return []float64{0, 1, 2 * t, 3 * t * t, 4 * t * t * t, 5 * t * t * t * t}
}

func accelerationRow(t float64) []float64 {
	return []float64{0, 0, 2, 6 * t, 12 * t * t, 20 * t * t * t}
}

// At evaluates the polynomial at time t.
func (q Quintic) At(t float64) float64 {
	// Horner evaluation.
	v := q.coeffs[5]
	for i := 4; i >= 0; i-- {
		v = v*t + q.coeffs[i]
	}
	return v
}

// Velocity evaluates the first derivative at time t.
func (q Quintic) Velocity(t float64) float64 {
	v := 5 * q.coeffs[5]
	for i := 4; i >= 1; i-- {
		v = v*t + float64(i)*q.coeffs[i]
	}
	return v
}

// Acceleration evaluates the second derivative at time t.
func (q Quintic) Acceleration(t float64) float64 {
	v := 20 * q.coeffs[5]
	for i := 4; i >= 2; i-- {
		v = v*t + float64(i)*float64(i-1)*q.coeffs[i]
	}
	return v
}
