package planning

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/IoannisDadiotis/casannis-walking/dynamics"
	"github.com/IoannisDadiotis/casannis-walking/logging"
)

// Gait plans an arbitrary schedule of steps over the horizon. Swing windows
// of different legs may overlap; each is validated independently against the
// knot grid.
type Gait struct {
	structure *structure
	logger    logging.Logger
}

// NewGait builds a multi-step planner for a robot of the given mass over a
// horizon of n knots spaced dt seconds apart.
func NewGait(mass float64, n int, dt float64, logger logging.Logger) (*Gait, error) {
	s, err := newStructure(mass, n, dt, gaitWeights)
	if err != nil {
		return nil, err
	}
	return &Gait{structure: s, logger: logger}, nil
}

// GaitRequest describes a multi-step scenario.
type GaitRequest struct {
	// Initial is the CoM state at the first knot.
	Initial dynamics.State

	// Contacts are the current foothold positions, ordered front left,
	// front right, hind left, hind right.
	Contacts [NumContacts]r3.Vector

	// Swings is the step schedule.
	Swings []SwingPhase

	// Clearance is the swing apex height above the higher of the current
	// and target footholds. During a swing window the leg's contact
	// parameter is held at the apex position, biasing the CoM cost toward
	// the mid-swing foot configuration. The apex feeds only cost terms,
	// not geometric constraints.
	Clearance float64

	// MinForce is the minimum vertical reaction force on supporting feet.
	// Zero selects the default.
	MinForce float64

	// HeightRange optionally bounds the CoM z position on interior knots.
	HeightRange *[2]float64
}

// Solve runs the trajectory optimization for the request.
func (g *Gait) Solve(ctx context.Context, req *GaitRequest) (*Solution, error) {
	if len(req.Swings) == 0 {
		return nil, errors.Wrap(errNoSwing, "invalid gait request")
	}
	for _, sw := range req.Swings {
		if err := sw.validate(g.structure.horizon()); err != nil {
			return nil, errors.Wrap(err, "invalid gait request")
		}
	}

	g.logger.Debugw("solving gait", "steps", len(req.Swings), "clearance", req.Clearance)

	inst := g.structure.buildInstance(req.Initial, req.Contacts, req.Swings, instanceOptions{
		minForce:    req.MinForce,
		useApex:     true,
		clearance:   req.Clearance,
		heightRange: req.HeightRange,
	})
	return g.structure.solve(ctx, inst, g.logger)
}
