package planning

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/IoannisDadiotis/casannis-walking/dynamics"
)

// defaultMinForce is the minimum vertical reaction force on a supporting
// foot when the request leaves it unset.
const defaultMinForce = 50.0

// maxVerticalForce caps the vertical reaction force on any foot.
const maxVerticalForce = 1500.0

var (
	errBadSwingLeg    = errors.New("swing leg index out of range")
	errBadSwingWindow = errors.New("swing window is invalid")
	errNoSwing        = errors.New("at least one swing phase is required")
)

// SwingPhase schedules one foot to leave its current foothold at Lift and
// land on Target at Touch, both in seconds from the start of the horizon.
type SwingPhase struct {
	Leg    int
	Target r3.Vector
	Lift   float64
	Touch  float64
}

func (p SwingPhase) validate(horizon float64) error {
	if p.Leg < 0 || p.Leg >= NumContacts {
		return errors.Wrapf(errBadSwingLeg, "leg %d", p.Leg)
	}
	if p.Lift < 0 || p.Touch <= p.Lift || p.Touch > horizon {
		return errors.Wrapf(errBadSwingWindow, "leg %d window [%v, %v] over a %v second horizon",
			p.Leg, p.Lift, p.Touch, horizon)
	}
	return nil
}

// inWindow reports whether knot k falls inside the swing window on the dt
// grid. Both boundary knots count as airborne, matching the force bounds of
// the lift and touchdown instants.
func (p SwingPhase) inWindow(k int, s *structure) bool {
	return k >= s.knotIndex(p.Lift) && k <= s.knotIndex(p.Touch)
}

// apexPosition is the foothold position at maximum clearance: the current
// horizontal position with the clearance height added above the higher of
// the current and target footholds.
func apexPosition(current, target r3.Vector, clearance float64) r3.Vector {
	z := math.Max(current.Z, target.Z) + clearance
	return r3.Vector{X: current.X, Y: current.Y, Z: z}
}

// instance holds everything about one solve that is not problem structure:
// variable bounds and the contact position parameters. Instances are built
// fresh per call and never cached.
type instance struct {
	lower  []float64
	upper  []float64
	params []float64
}

// instanceOptions select the per-variant bound and parameter rules.
type instanceOptions struct {
	minForce float64

	// useApex switches the contact parameter during a swing window to the
	// apex position, shaping the cost toward the mid-swing configuration.
	// Without it the parameter jumps to the target at lift time.
	useApex   bool
	clearance float64

	// heightRange optionally boxes the CoM z position on interior knots.
	heightRange *[2]float64
}

// buildInstance produces bounds and parameters for one scenario. Knot 0 is
// pinned to the initial state, the final knot is pinned to zero velocity and
// acceleration, and any foot inside its swing window has its reaction force
// pinned to zero.
func (s *structure) buildInstance(
	x0 dynamics.State,
	contacts [NumContacts]r3.Vector,
	swings []SwingPhase,
	opts instanceOptions,
) *instance {
	inf := math.Inf(1)
	minF := opts.minForce
	if minF == 0 {
		minF = defaultMinForce
	}

	inst := &instance{
		lower:  make([]float64, s.numVars),
		upper:  make([]float64, s.numVars),
		params: make([]float64, s.numParams),
	}

	for k := 0; k < s.n; k++ {
		xi := s.stateIdx(k)
		ui := s.controlIdx(k)
		fi := s.forceIdx(k)
		pi := s.contactIdx(k)

		// State bounds: exact pin at knot 0, free elsewhere.
		if k == 0 {
			x0s := x0.Slice()
			copy(inst.lower[xi:xi+dimState], x0s)
			copy(inst.upper[xi:xi+dimState], x0s)
		} else {
			for j := 0; j < dimState; j++ {
				inst.lower[xi+j] = -inf
				inst.upper[xi+j] = inf
			}
			if opts.heightRange != nil {
				inst.lower[xi+2] = opts.heightRange[0]
				inst.upper[xi+2] = opts.heightRange[1]
			}
		}

		// Control is shaped only through cost.
		for j := 0; j < dimControl; j++ {
			inst.lower[ui+j] = -inf
			inst.upper[ui+j] = inf
		}

		// Force bounds: unilateral support through the z component.
		for c := 0; c < NumContacts; c++ {
			inst.lower[fi+3*c] = -inf
			inst.upper[fi+3*c] = inf
			inst.lower[fi+3*c+1] = -inf
			inst.upper[fi+3*c+1] = inf
			inst.lower[fi+3*c+2] = minF
			inst.upper[fi+3*c+2] = maxVerticalForce
		}
		for _, sw := range swings {
			if !sw.inWindow(k, s) {
				continue
			}
			// Airborne foot exerts no reaction force.
			for j := 0; j < 3; j++ {
				inst.lower[fi+3*sw.Leg+j] = 0
				inst.upper[fi+3*sw.Leg+j] = 0
			}
		}

		// Contact position parameters follow the schedule.
		for c := 0; c < NumContacts; c++ {
			p := contacts[c]
			for _, sw := range swings {
				if sw.Leg != c {
					continue
				}
				switch {
				case k > s.knotIndex(sw.Touch):
					p = sw.Target
				case opts.useApex && k >= s.knotIndex(sw.Lift):
					p = apexPosition(contacts[c], sw.Target, opts.clearance)
				case !opts.useApex && k >= s.knotIndex(sw.Lift):
					p = sw.Target
				}
			}
			inst.params[pi+3*c] = p.X
			inst.params[pi+3*c+1] = p.Y
			inst.params[pi+3*c+2] = p.Z
		}
	}

	// Terminal stationarity: last knot at rest, position free.
	xi := s.stateIdx(s.n - 1)
	for j := 3; j < dimState; j++ {
		inst.lower[xi+j] = 0
		inst.upper[xi+j] = 0
	}

	return inst
}
