package dynamics

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestIntegrateRoundTrip(t *testing.T) {
	s := State{
		Pos: r3.Vector{X: 0.1, Y: -0.03, Z: 0.02},
		Vel: r3.Vector{X: 0.5, Y: 0.1, Z: -0.2},
		Acc: r3.Vector{X: -1.2, Y: 0.4, Z: 9.0},
	}
	u := r3.Vector{X: 3.5, Y: -7.25, Z: 0.125}
	dt := 0.1

	next := Integrate(s, u, dt)
	recovered := JerkBetween(s, next, dt)
	test.That(t, recovered.X, test.ShouldAlmostEqual, u.X, 1e-9)
	test.That(t, recovered.Y, test.ShouldAlmostEqual, u.Y, 1e-9)
	test.That(t, recovered.Z, test.ShouldAlmostEqual, u.Z, 1e-9)
}

func TestIntegrateZeroJerk(t *testing.T) {
	// Pure ballistic motion: position follows the closed-form parabola.
	s := State{Vel: r3.Vector{X: 1}, Acc: Gravity}
	next := Integrate(s, r3.Vector{}, 0.5)
	test.That(t, next.Pos.X, test.ShouldAlmostEqual, 0.5, 1e-12)
	test.That(t, next.Pos.Z, test.ShouldAlmostEqual, 0.5*-9.81*0.25, 1e-12)
	test.That(t, next.Vel.Z, test.ShouldAlmostEqual, -9.81*0.5, 1e-12)
	test.That(t, next.Acc.Z, test.ShouldAlmostEqual, -9.81, 1e-12)
}

func TestIntegrateComposition(t *testing.T) {
	// Two half steps equal one full step under constant jerk.
	s := State{
		Pos: r3.Vector{X: 1, Y: 2, Z: 3},
		Vel: r3.Vector{X: -0.1, Y: 0.2, Z: 0.3},
	}
	u := r3.Vector{X: 0.4, Y: -0.8, Z: 1.6}

	full := Integrate(s, u, 0.2)
	half := Integrate(Integrate(s, u, 0.1), u, 0.1)
	test.That(t, half.Pos.X, test.ShouldAlmostEqual, full.Pos.X, 1e-12)
	test.That(t, half.Pos.Y, test.ShouldAlmostEqual, full.Pos.Y, 1e-12)
	test.That(t, half.Pos.Z, test.ShouldAlmostEqual, full.Pos.Z, 1e-12)
	test.That(t, half.Vel.X, test.ShouldAlmostEqual, full.Vel.X, 1e-12)
	test.That(t, half.Acc.Z, test.ShouldAlmostEqual, full.Acc.Z, 1e-12)
}

func TestStateSliceRoundTrip(t *testing.T) {
	s := State{
		Pos: r3.Vector{X: 1, Y: 2, Z: 3},
		Vel: r3.Vector{X: 4, Y: 5, Z: 6},
		Acc: r3.Vector{X: 7, Y: 8, Z: 9},
	}
	test.That(t, StateFromSlice(s.Slice()), test.ShouldResemble, s)
}
