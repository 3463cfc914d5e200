package planning

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/IoannisDadiotis/casannis-walking/logging"
)

func TestGaitSolveSingleStep(t *testing.T) {
	logger := logging.NewTestLogger(t)
	g, err := NewGait(95, 10, 0.1, logger)
	test.That(t, err, test.ShouldBeNil)

	req := &GaitRequest{
		Initial:  testInitial,
		Contacts: testContacts,
		Swings: []SwingPhase{{
			Leg:    0,
			Target: testContacts[0].Add(r3.Vector{X: 0.1}),
			Lift:   0.2,
			Touch:  0.5,
		}},
		Clearance: 0.05,
		MinForce:  100,
	}

	sol, err := g.Solve(context.Background(), req)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(sol.States), test.ShouldEqual, 10)

	for k := 2; k <= 5; k++ {
		test.That(t, sol.Forces[k][0].Z, test.ShouldAlmostEqual, 0, 1e-9)
	}
	last := sol.States[len(sol.States)-1]
	test.That(t, last.Vel.Norm(), test.ShouldAlmostEqual, 0, 1e-6)
	test.That(t, last.Acc.Norm(), test.ShouldAlmostEqual, 0, 1e-6)
}

func TestGaitRequestValidation(t *testing.T) {
	logger := logging.NewTestLogger(t)
	g, err := NewGait(95, 10, 0.1, logger)
	test.That(t, err, test.ShouldBeNil)

	_, err = g.Solve(context.Background(), &GaitRequest{
		Initial:  testInitial,
		Contacts: testContacts,
	})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = g.Solve(context.Background(), &GaitRequest{
		Initial:  testInitial,
		Contacts: testContacts,
		Swings:   []SwingPhase{{Leg: 0, Lift: 0.2, Touch: 2.5}},
	})
	// Touch beyond the 1 second horizon.
	test.That(t, err, test.ShouldNotBeNil)
}

// Two-step trot schedule from the reference scenario, reduced to a horizon
// that solves quickly outside short mode.
func TestGaitTwoStepSchedule(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping multi-step solve in short mode")
	}
	logger := logging.NewTestLogger(t)
	g, err := NewGait(95, 50, 0.1, logger)
	test.That(t, err, test.ShouldBeNil)

	req := &GaitRequest{
		Initial:  testInitial,
		Contacts: testContacts,
		Swings: []SwingPhase{
			{Leg: 0, Target: testContacts[0].Add(r3.Vector{X: 0.1}), Lift: 1.0, Touch: 2.5},
			{Leg: 1, Target: testContacts[1].Add(r3.Vector{X: 0.1}), Lift: 3.5, Touch: 5.0},
		},
		Clearance: 0.05,
		MinForce:  100,
	}

	sol, err := g.Solve(context.Background(), req)
	test.That(t, err, test.ShouldBeNil)

	// Each leg is unloaded over its own window only.
	for k := 10; k <= 25; k++ {
		test.That(t, sol.Forces[k][0].Z, test.ShouldAlmostEqual, 0, 1e-9)
	}
	for k := 35; k < 50; k++ {
		test.That(t, sol.Forces[k][1].Z, test.ShouldAlmostEqual, 0, 1e-9)
	}
	// Outside their windows both legs support at least the minimum force.
	test.That(t, sol.Forces[5][0].Z, test.ShouldBeGreaterThanOrEqualTo, 100-1e-6)
	test.That(t, sol.Forces[30][1].Z, test.ShouldBeGreaterThanOrEqualTo, 100-1e-6)
}
