package planning

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/IoannisDadiotis/casannis-walking/dynamics"
	"github.com/IoannisDadiotis/casannis-walking/logging"
)

// Walking plans a single step: one leg swings to a new foothold while the
// other three support the robot. The planner is safe to reuse across solves.
type Walking struct {
	structure *structure
	logger    logging.Logger
}

// NewWalking builds a single-step planner for a robot of the given mass over
// a horizon of n knots spaced dt seconds apart.
func NewWalking(mass float64, n int, dt float64, logger logging.Logger) (*Walking, error) {
	s, err := newStructure(mass, n, dt, walkingWeights)
	if err != nil {
		return nil, err
	}
	return &Walking{structure: s, logger: logger}, nil
}

// WalkingRequest describes one stepping scenario.
type WalkingRequest struct {
	// Initial is the CoM state at the first knot.
	Initial dynamics.State

	// Contacts are the current foothold positions, ordered front left,
	// front right, hind left, hind right.
	Contacts [NumContacts]r3.Vector

	// Swing schedules the stepping leg.
	Swing SwingPhase

	// MinForce is the minimum vertical reaction force on supporting feet.
	// Zero selects the default.
	MinForce float64
}

// Solve runs the trajectory optimization for the request.
func (w *Walking) Solve(ctx context.Context, req *WalkingRequest) (*Solution, error) {
	if err := req.Swing.validate(w.structure.horizon()); err != nil {
		return nil, errors.Wrap(err, "invalid walking request")
	}

	w.logger.Debugw("solving step",
		"leg", req.Swing.Leg,
		"target", req.Swing.Target,
		"window", []float64{req.Swing.Lift, req.Swing.Touch},
	)

	inst := w.structure.buildInstance(req.Initial, req.Contacts, []SwingPhase{req.Swing}, instanceOptions{
		minForce: req.MinForce,
	})
	return w.structure.solve(ctx, inst, w.logger)
}
