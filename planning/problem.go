// Package planning formulates and solves centroidal trajectory optimization
// problems for a quadruped: given the CoM state, the current footholds and a
// swing schedule, it produces a dynamically consistent CoM trajectory and
// ground reaction force profile over a discretized horizon.
//
// The problem structure (decision vector layout, cost gradient, constraint
// Jacobian) depends only on mass, horizon length, discretization step and
// cost weights, and is cached and shared across solves. Everything scenario
// specific lives in the per-solve bounds and parameters.
package planning

import (
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/IoannisDadiotis/casannis-walking/dynamics"
)

const (
	dimState   = 9  // CoM position, velocity, acceleration
	dimControl = 3  // CoM jerk
	dimForce   = 12 // 4 contacts x 3 force components
	dimContact = 12 // 4 contacts x 3 position components

	// NumContacts is the number of feet.
	NumContacts = 4

	// standingHeight is the nominal CoM height above the mean foothold,
	// penalized by the vertical cost term.
	standingHeight = 0.66
)

var (
	errBadMass    = errors.New("mass must be positive")
	errBadHorizon = errors.New("horizon must span at least two knots")
	errBadStep    = errors.New("discretization step must be positive")
)

// Weights are the per-knot cost weights. Horizontal and Vertical penalize the
// CoM offset from the mean foothold, Jerk regularizes the control and
// TangentForce discourages shear forces.
type Weights struct {
	Horizontal   float64
	Vertical     float64
	Jerk         float64
	TangentForce float64
}

var (
	walkingWeights = Weights{Horizontal: 1e1, Vertical: 1e3, Jerk: 1e-2, TangentForce: 1e-3}
	gaitWeights    = Weights{Horizontal: 1e2, Vertical: 1e3, Jerk: 1e0, TangentForce: 1e-3}
)

// structure is the immutable part of the NLP. The decision vector is laid out
// as all states, then all controls, then all forces:
//
//	[x_0 ... x_{N-1} | u_0 ... u_{N-1} | f_0 ... f_{N-1}]
//
// and the constraint vector stacks, per knot, the Newton (3) and Euler (3)
// residuals followed, for k>0, by the triple-integrator defect (9) between
// knot k-1 and k. All constraints are equalities pinned to zero.
type structure struct {
	mass    float64
	n       int
	dt      float64
	weights Weights

	numVars        int
	numConstraints int
	numParams      int
}

type structureKey struct {
	mass    float64
	n       int
	dt      float64
	weights Weights
}

var (
	structMu    sync.Mutex
	structCache = map[structureKey]*structure{}
)

// newStructure validates the problem dimensions and returns the cached
// structure for this (mass, N, dt, weights) combination if one exists.
func newStructure(mass float64, n int, dt float64, weights Weights) (*structure, error) {
	if mass <= 0 {
		return nil, errors.Wrapf(errBadMass, "got %v", mass)
	}
	if n < 2 {
		return nil, errors.Wrapf(errBadHorizon, "got %d", n)
	}
	if dt <= 0 {
		return nil, errors.Wrapf(errBadStep, "got %v", dt)
	}

	key := structureKey{mass, n, dt, weights}
	structMu.Lock()
	defer structMu.Unlock()
	if s, ok := structCache[key]; ok {
		return s, nil
	}
	s := &structure{
		mass:           mass,
		n:              n,
		dt:             dt,
		weights:        weights,
		numVars:        n * (dimState + dimControl + dimForce),
		numConstraints: 6*n + dimState*(n-1),
		numParams:      n * dimContact,
	}
	structCache[key] = s
	return s, nil
}

func (s *structure) stateIdx(k int) int   { return k * dimState }
func (s *structure) controlIdx(k int) int { return s.n*dimState + k*dimControl }
func (s *structure) forceIdx(k int) int   { return s.n*(dimState+dimControl) + k*dimForce }
func (s *structure) contactIdx(k int) int { return k * dimContact }

// constraintIdx is the row of the first constraint belonging to knot k.
func (s *structure) constraintIdx(k int) int {
	if k == 0 {
		return 0
	}
	return 6 + (k-1)*(6+dimState)
}

// horizon is the total planned duration in seconds.
func (s *structure) horizon() float64 { return float64(s.n) * s.dt }

// knotIndex truncates a time in seconds to its knot index. Fractional swing
// times are floored onto the dt grid, an accepted modeling approximation.
func (s *structure) knotIndex(t float64) int { return int(t / s.dt) }

// objective evaluates the stacked cost and, when grad is non-nil, its exact
// gradient. params holds the per-knot contact positions.
func (s *structure) objective(x, grad, params []float64) float64 {
	if grad != nil {
		for i := range grad {
			grad[i] = 0
		}
	}

	w := s.weights
	cost := 0.0
	for k := 0; k < s.n; k++ {
		xi := s.stateIdx(k)
		ui := s.controlIdx(k)
		fi := s.forceIdx(k)
		pi := s.contactIdx(k)

		var meanX, meanY, meanZ float64
		for c := 0; c < NumContacts; c++ {
			meanX += params[pi+3*c]
			meanY += params[pi+3*c+1]
			meanZ += params[pi+3*c+2]
		}
		meanX *= 0.25
		meanY *= 0.25
		meanZ *= 0.25

		hx := x[xi] - meanX
		hy := x[xi+1] - meanY
		hz := x[xi+2] - meanZ - standingHeight
		cost += w.Horizontal*(hx*hx+hy*hy) + w.Vertical*hz*hz

		for j := 0; j < dimControl; j++ {
			cost += w.Jerk * x[ui+j] * x[ui+j]
		}
		for c := 0; c < NumContacts; c++ {
			fx := x[fi+3*c]
			fy := x[fi+3*c+1]
			cost += w.TangentForce * (fx*fx + fy*fy)
		}

		if grad == nil {
			continue
		}
		grad[xi] = 2 * w.Horizontal * hx
		grad[xi+1] = 2 * w.Horizontal * hy
		grad[xi+2] = 2 * w.Vertical * hz
		for j := 0; j < dimControl; j++ {
			grad[ui+j] = 2 * w.Jerk * x[ui+j]
		}
		for c := 0; c < NumContacts; c++ {
			grad[fi+3*c] = 2 * w.TangentForce * x[fi+3*c]
			grad[fi+3*c+1] = 2 * w.TangentForce * x[fi+3*c+1]
		}
	}
	return cost
}

// constraints evaluates the stacked equality residuals and, when jac is
// non-nil, the dense constraint Jacobian in row-major order.
func (s *structure) constraints(result, x, jac, params []float64) {
	if jac != nil {
		for i := range jac {
			jac[i] = 0
		}
	}
	grav := [3]float64{dynamics.Gravity.X, dynamics.Gravity.Y, dynamics.Gravity.Z}
	for k := 0; k < s.n; k++ {
		xi := s.stateIdx(k)
		fi := s.forceIdx(k)
		pi := s.contactIdx(k)
		row := s.constraintIdx(k)

		// Newton: m*ddc - m*g - sum(f_i) = 0
		for j := 0; j < 3; j++ {
			r := s.mass*x[xi+6+j] - s.mass*grav[j]
			for c := 0; c < NumContacts; c++ {
				r -= x[fi+3*c+j]
			}
			result[row+j] = r
			if jac != nil {
				jac[(row+j)*s.numVars+xi+6+j] = s.mass
				for c := 0; c < NumContacts; c++ {
					jac[(row+j)*s.numVars+fi+3*c+j] = -1
				}
			}
		}

		// Euler at zero angular momentum: sum((p_i - c) x f_i) = 0
		var e0, e1, e2 float64
		for c := 0; c < NumContacts; c++ {
			ax := params[pi+3*c] - x[xi]
			ay := params[pi+3*c+1] - x[xi+1]
			az := params[pi+3*c+2] - x[xi+2]
			fx := x[fi+3*c]
			fy := x[fi+3*c+1]
			fz := x[fi+3*c+2]
			e0 += ay*fz - az*fy
			e1 += az*fx - ax*fz
			e2 += ax*fy - ay*fx

			if jac != nil {
				// d(a x f)/df_i = skew(a_i)
				jac[(row+3)*s.numVars+fi+3*c+1] = -az
				jac[(row+3)*s.numVars+fi+3*c+2] = ay
				jac[(row+4)*s.numVars+fi+3*c] = az
				jac[(row+4)*s.numVars+fi+3*c+2] = -ax
				jac[(row+5)*s.numVars+fi+3*c] = -ay
				jac[(row+5)*s.numVars+fi+3*c+1] = ax
			}
		}
		result[row+3] = e0
		result[row+4] = e1
		result[row+5] = e2
		if jac != nil {
			// d(a x f)/dc = +skew(sum f_i) since a_i = p_i - c
			var sfx, sfy, sfz float64
			for c := 0; c < NumContacts; c++ {
				sfx += x[fi+3*c]
				sfy += x[fi+3*c+1]
				sfz += x[fi+3*c+2]
			}
			jac[(row+3)*s.numVars+xi+1] = -sfz
			jac[(row+3)*s.numVars+xi+2] = sfy
			jac[(row+4)*s.numVars+xi] = sfz
			jac[(row+4)*s.numVars+xi+2] = -sfx
			jac[(row+5)*s.numVars+xi] = -sfy
			jac[(row+5)*s.numVars+xi+1] = sfx
		}

		// Triple-integrator defect between knot k-1 and k.
		if k == 0 {
			continue
		}
		xp := s.stateIdx(k - 1)
		up := s.controlIdx(k - 1)
		prev := dynamics.StateFromSlice(x[xp : xp+dimState])
		u := r3.Vector{X: x[up], Y: x[up+1], Z: x[up+2]}
		pred := dynamics.Integrate(prev, u, s.dt).Slice()
		for j := 0; j < dimState; j++ {
			result[row+6+j] = pred[j] - x[xi+j]
		}
		if jac == nil {
			continue
		}
		dt := s.dt
		for j := 0; j < 3; j++ {
			// position rows
			base := (row + 6 + j) * s.numVars
			jac[base+xp+j] = 1
			jac[base+xp+3+j] = dt
			jac[base+xp+6+j] = 0.5 * dt * dt
			jac[base+up+j] = dt * dt * dt / 6
			jac[base+xi+j] = -1

			// velocity rows
			base = (row + 9 + j) * s.numVars
			jac[base+xp+3+j] = 1
			jac[base+xp+6+j] = dt
			jac[base+up+j] = 0.5 * dt * dt
			jac[base+xi+3+j] = -1

			// acceleration rows
			base = (row + 12 + j) * s.numVars
			jac[base+xp+6+j] = 1
			jac[base+up+j] = dt
			jac[base+xi+6+j] = -1
		}
	}
}

// Solution is the decoded result of one solve. It is a read-only artifact;
// a new one is produced per solve.
type Solution struct {
	// States, Controls and Forces hold one entry per knot.
	States   []dynamics.State
	Controls []r3.Vector
	Forces   [][NumContacts]r3.Vector

	// Dt is the knot spacing the trajectories are sampled at.
	Dt float64

	// Cost is the objective value at the solution, Evaluations the number
	// of objective evaluations the solver spent.
	Cost        float64
	Evaluations int
}

// decode maps the flat solution vector back into structured trajectories. It
// mirrors exactly the slicing used when the problem was built.
func (s *structure) decode(v []float64, cost float64, evals int) *Solution {
	sol := &Solution{
		States:      make([]dynamics.State, s.n),
		Controls:    make([]r3.Vector, s.n),
		Forces:      make([][NumContacts]r3.Vector, s.n),
		Dt:          s.dt,
		Cost:        cost,
		Evaluations: evals,
	}
	for k := 0; k < s.n; k++ {
		xi := s.stateIdx(k)
		ui := s.controlIdx(k)
		fi := s.forceIdx(k)
		sol.States[k] = dynamics.StateFromSlice(v[xi : xi+dimState])
		sol.Controls[k] = r3.Vector{X: v[ui], Y: v[ui+1], Z: v[ui+2]}
		for c := 0; c < NumContacts; c++ {
			sol.Forces[k][c] = r3.Vector{X: v[fi+3*c], Y: v[fi+3*c+1], Z: v[fi+3*c+2]}
		}
	}
	return sol
}
