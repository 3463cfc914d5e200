package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/IoannisDadiotis/casannis-walking/dynamics"
	"github.com/IoannisDadiotis/casannis-walking/planning"
	"github.com/IoannisDadiotis/casannis-walking/trajectory"
)

func TestSaveAll(t *testing.T) {
	sol := &planning.Solution{
		States:   make([]dynamics.State, 4),
		Controls: make([]r3.Vector, 4),
		Forces:   make([][planning.NumContacts]r3.Vector, 4),
		Dt:       0.1,
	}
	for k := range sol.States {
		sol.Controls[k] = r3.Vector{Z: 0.1}
		if k > 0 {
			sol.States[k] = dynamics.Integrate(sol.States[k-1], sol.Controls[k-1], 0.1)
		}
	}

	trj, err := trajectory.Interpolate(&trajectory.Request{
		Solution:   sol,
		Resolution: 50,
		Clearance:  0.05,
		Swings: []trajectory.SwingLeg{{
			Leg:     0,
			Current: r3.Vector{X: 0.35, Y: 0.35, Z: -0.7},
			Target:  r3.Vector{X: 0.45, Y: 0.35, Z: -0.7},
			Lift:    0.1,
			Touch:   0.3,
		}},
	})
	test.That(t, err, test.ShouldBeNil)

	dir := t.TempDir()
	test.That(t, SaveAll(trj, dir), test.ShouldBeNil)

	for _, name := range []string{
		"com_position.png", "com_velocity.png", "com_acceleration.png",
		"forces_0.png", "forces_3.png", "swing_0_xz.png",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		test.That(t, err, test.ShouldBeNil)
	}
}
