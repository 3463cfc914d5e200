// Package trajectory densifies a knot-level planning solution into a
// continuous-time trajectory and synthesizes closed-form swing foot paths.
package trajectory

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/IoannisDadiotis/casannis-walking/dynamics"
	"github.com/IoannisDadiotis/casannis-walking/planning"
)

var (
	errNoSolution    = errors.New("a solved trajectory is required")
	errBadResolution = errors.New("resolution must yield at least one sample per knot")
)

// Method selects the swing synthesis strategy.
type Method int

const (
	// Triangle fits two quintic segments through a clearance apex at the
	// horizontal midpoint. Position and velocity are continuous at the
	// apex.
	Triangle Method = iota

	// GaussianBump fits a single quintic from current to target and
	// superimposes a Gaussian bell on the z component for clearance. The
	// bump can introduce non-monotonic velocity near its edges; it is kept
	// as the less physically clean alternative.
	GaussianBump
)

// SwingLeg pairs a leg with its foothold motion for swing synthesis.
type SwingLeg struct {
	Leg     int
	Current r3.Vector
	Target  r3.Vector
	Lift    float64
	Touch   float64
}

// Request configures one interpolation pass over a solved trajectory.
type Request struct {
	Solution *planning.Solution

	// Swings lists the legs to synthesize paths for. The windows must
	// match the ones the solution was planned with.
	Swings []SwingLeg

	// Clearance is the apex height above the higher of the current and
	// target footholds (Triangle method only).
	Clearance float64

	// Resolution is the output sampling rate in samples per second.
	Resolution int

	Method Method
}

// SwingPath is a densely sampled foot path with its arc length diagnostic.
type SwingPath struct {
	Leg       int
	Points    []r3.Vector
	ArcLength float64
}

// Trajectory is the densified output handed to publishing and plotting
// collaborators. It is a read-only artifact of one solve.
type Trajectory struct {
	Times  []float64
	States []dynamics.State
	Forces [][planning.NumContacts]r3.Vector
	Swings []SwingPath
}

// Interpolate densifies the solution onto a uniform grid of
// Resolution samples per second across the whole horizon.
//
// States are not spline-fitted: each knot's held jerk is re-integrated at the
// finer step, so any two consecutive samples satisfy the triple-integrator
// relation exactly. Forces are piecewise-linear across knot times.
func Interpolate(req *Request) (*Trajectory, error) {
	if req.Solution == nil || len(req.Solution.States) == 0 {
		return nil, errNoSolution
	}
	sol := req.Solution
	perKnot := int(sol.Dt * float64(req.Resolution))
	if req.Resolution <= 0 || perKnot < 1 {
		return nil, errors.Wrapf(errBadResolution, "resolution %d at dt %v", req.Resolution, sol.Dt)
	}

	n := len(sol.States)
	total := n * perKnot
	delta := 1.0 / float64(req.Resolution)

	trj := &Trajectory{
		Times:  make([]float64, total),
		States: make([]dynamics.State, 0, total),
		Forces: make([][planning.NumContacts]r3.Vector, total),
	}
	for i := range trj.Times {
		trj.Times[i] = float64(i) * delta
	}

	// Forward re-integration of the held controls.
	x := sol.States[0]
	for k := 0; k < n; k++ {
		u := sol.Controls[k]
		for j := 0; j < perKnot; j++ {
			trj.States = append(trj.States, x)
			x = dynamics.Integrate(x, u, delta)
		}
	}

	for i, t := range trj.Times {
		trj.Forces[i] = sampleForces(sol, t)
	}

	for _, sw := range req.Swings {
		var (
			path SwingPath
			err  error
		)
		switch req.Method {
		case GaussianBump:
			path, err = gaussianSwing(sw, trj.Times)
		default:
			path, err = triangleSwing(sw, req.Clearance, trj.Times)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "swing synthesis for leg %d", sw.Leg)
		}
		trj.Swings = append(trj.Swings, path)
	}

	return trj, nil
}

// sampleForces linearly interpolates the knot forces at time t, holding the
// boundary values beyond the first and last knots.
func sampleForces(sol *planning.Solution, t float64) [planning.NumContacts]r3.Vector {
	n := len(sol.Forces)
	k := int(t / sol.Dt)
	if k >= n-1 {
		return sol.Forces[n-1]
	}
	alpha := (t - float64(k)*sol.Dt) / sol.Dt
	var out [planning.NumContacts]r3.Vector
	for c := 0; c < planning.NumContacts; c++ {
		a := sol.Forces[k][c]
		b := sol.Forces[k+1][c]
		out[c] = a.Add(b.Sub(a).Mul(alpha))
	}
	return out
}
