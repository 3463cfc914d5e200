// Package dynamics models the robot as a point mass at the center of mass
// driven by jerk, i.e. a triple integrator.
package dynamics

import "github.com/golang/geo/r3"

// Gravity is the gravitational acceleration applied to the CoM.
var Gravity = r3.Vector{Z: -9.81}

// State is the CoM state at one instant: position, velocity and acceleration.
type State struct {
	Pos r3.Vector
	Vel r3.Vector
	Acc r3.Vector
}

// StateFromSlice builds a State from a flat 9-vector laid out as
// position, velocity, acceleration.
func StateFromSlice(x []float64) State {
	return State{
		Pos: r3.Vector{X: x[0], Y: x[1], Z: x[2]},
		Vel: r3.Vector{X: x[3], Y: x[4], Z: x[5]},
		Acc: r3.Vector{X: x[6], Y: x[7], Z: x[8]},
	}
}

// Slice returns the flat 9-vector form of the state.
func (s State) Slice() []float64 {
	return []float64{
		s.Pos.X, s.Pos.Y, s.Pos.Z,
		s.Vel.X, s.Vel.Y, s.Vel.Z,
		s.Acc.X, s.Acc.Y, s.Acc.Z,
	}
}

// Integrate propagates the state under a constant jerk u for dt seconds.
// The propagation is exact, not a numerical scheme:
//
//	p' = p + v*dt + 1/2*a*dt^2 + 1/6*u*dt^3
//	v' = v + a*dt + 1/2*u*dt^2
//	a' = a + u*dt
func Integrate(s State, u r3.Vector, dt float64) State {
	return State{
		Pos: s.Pos.Add(s.Vel.Mul(dt)).Add(s.Acc.Mul(0.5 * dt * dt)).Add(u.Mul(dt * dt * dt / 6)),
		Vel: s.Vel.Add(s.Acc.Mul(dt)).Add(u.Mul(0.5 * dt * dt)),
		Acc: s.Acc.Add(u.Mul(dt)),
	}
}

// JerkBetween recovers the constant jerk that takes the acceleration of from
// to the acceleration of to over dt seconds. It inverts Integrate on the
// acceleration row and is used to cross-check solved control inputs.
func JerkBetween(from, to State, dt float64) r3.Vector {
	return to.Acc.Sub(from.Acc).Mul(1 / dt)
}
