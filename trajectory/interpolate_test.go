package trajectory

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/IoannisDadiotis/casannis-walking/dynamics"
	"github.com/IoannisDadiotis/casannis-walking/planning"
)

// makeSolution chains a synthetic knot trajectory that satisfies the
// triple-integrator relation by construction.
func makeSolution(n int, dt float64) *planning.Solution {
	sol := &planning.Solution{
		States:   make([]dynamics.State, n),
		Controls: make([]r3.Vector, n),
		Forces:   make([][planning.NumContacts]r3.Vector, n),
		Dt:       dt,
	}
	for k := 0; k < n; k++ {
		sol.Controls[k] = r3.Vector{X: 0.1 * float64(k), Y: -0.05, Z: 0.2}
		for c := 0; c < planning.NumContacts; c++ {
			sol.Forces[k][c] = r3.Vector{Z: float64(k * (c + 1))}
		}
		if k > 0 {
			sol.States[k] = dynamics.Integrate(sol.States[k-1], sol.Controls[k-1], dt)
		}
	}
	return sol
}

func TestInterpolateStateConsistency(t *testing.T) {
	sol := makeSolution(5, 0.1)
	trj, err := Interpolate(&Request{Solution: sol, Resolution: 100})
	test.That(t, err, test.ShouldBeNil)

	perKnot := 10
	test.That(t, len(trj.States), test.ShouldEqual, 5*perKnot)
	test.That(t, len(trj.Times), test.ShouldEqual, 5*perKnot)
	test.That(t, trj.Times[1]-trj.Times[0], test.ShouldAlmostEqual, 0.01, 1e-12)
	test.That(t, trj.States[0], test.ShouldResemble, sol.States[0])

	// Every consecutive pair of samples satisfies the integrator exactly
	// under the control held over the knot the earlier sample belongs to.
	for i := 0; i+1 < len(trj.States); i++ {
		u := sol.Controls[i/perKnot]
		next := dynamics.Integrate(trj.States[i], u, 0.01)
		test.That(t, trj.States[i+1].Pos.X, test.ShouldAlmostEqual, next.Pos.X, 1e-12)
		test.That(t, trj.States[i+1].Vel.Y, test.ShouldAlmostEqual, next.Vel.Y, 1e-12)
		test.That(t, trj.States[i+1].Acc.Z, test.ShouldAlmostEqual, next.Acc.Z, 1e-12)
	}
}

func TestInterpolateForcesLinear(t *testing.T) {
	sol := makeSolution(5, 0.1)
	trj, err := Interpolate(&Request{Solution: sol, Resolution: 100})
	test.That(t, err, test.ShouldBeNil)

	// The synthetic force ramps linearly with knot index, so the sampled
	// value is the same line evaluated in continuous time.
	for i, tm := range trj.Times {
		if tm >= 0.4 {
			// Held at the final knot value.
			test.That(t, trj.Forces[i][0].Z, test.ShouldAlmostEqual, 4, 1e-9)
			continue
		}
		test.That(t, trj.Forces[i][0].Z, test.ShouldAlmostEqual, tm/0.1, 1e-9)
		test.That(t, trj.Forces[i][2].Z, test.ShouldAlmostEqual, 3*tm/0.1, 1e-9)
	}
}

func TestInterpolateValidation(t *testing.T) {
	_, err := Interpolate(&Request{Resolution: 100})
	test.That(t, err, test.ShouldNotBeNil)

	sol := makeSolution(5, 0.1)
	_, err = Interpolate(&Request{Solution: sol, Resolution: 0})
	test.That(t, err, test.ShouldNotBeNil)

	// Fewer than one sample per knot cannot represent the solution.
	_, err = Interpolate(&Request{Solution: sol, Resolution: 5})
	test.That(t, err, test.ShouldNotBeNil)
}
