// Command centroidal-plan runs the planner on a stepping scenario and
// optionally renders the interpolated trajectories to plots.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/IoannisDadiotis/casannis-walking/dynamics"
	"github.com/IoannisDadiotis/casannis-walking/logging"
	"github.com/IoannisDadiotis/casannis-walking/planning"
	"github.com/IoannisDadiotis/casannis-walking/report"
	"github.com/IoannisDadiotis/casannis-walking/trajectory"
)

type swingConfig struct {
	Leg    int        `json:"leg"`
	Target [3]float64 `json:"target"`
	Lift   float64    `json:"lift"`
	Touch  float64    `json:"touch"`
}

type scenarioConfig struct {
	Mass       float64       `json:"mass"`
	Knots      int           `json:"knots"`
	Dt         float64       `json:"dt"`
	Initial    [3]float64    `json:"initial_com"`
	Contacts   [4][3]float64 `json:"contacts"`
	Swings     []swingConfig `json:"swings"`
	Clearance  float64       `json:"clearance"`
	MinForce   float64       `json:"min_force"`
	Resolution int           `json:"resolution"`
}

// defaultScenario is the reference single-step scenario: step the front left
// foot 10 cm forward and 5 cm down over a 3 second swing.
func defaultScenario() scenarioConfig {
	return scenarioConfig{
		Mass:    95,
		Knots:   50,
		Dt:      0.1,
		Initial: [3]float64{0.107729, 0.0000907, -0.02118},
		Contacts: [4][3]float64{
			{0.35, 0.35, -0.7187},
			{0.35, -0.35, -0.7187},
			{-0.35, 0.35, -0.7187},
			{-0.35, -0.35, -0.7187},
		},
		Swings: []swingConfig{
			{Leg: 0, Target: [3]float64{0.45, 0.35, -0.7687}, Lift: 1.0, Touch: 4.0},
		},
		Clearance:  0.1,
		MinForce:   100,
		Resolution: 300,
	}
}

func vec(v [3]float64) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

func main() {
	app := &cli.App{
		Name:  "centroidal-plan",
		Usage: "plan a centroidal CoM trajectory for a stepping quadruped",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scenario", Usage: "JSON scenario file (defaults to the reference step)"},
			&cli.BoolFlag{Name: "gait", Usage: "use the multi-step gait planner"},
			&cli.StringFlag{Name: "plot-dir", Usage: "write trajectory plots into this directory"},
			&cli.DurationFlag{Name: "timeout", Value: 5 * time.Minute, Usage: "solver timeout"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logging.NewLogger("centroidal-plan").Error(err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := logging.NewLogger("centroidal-plan")
	if c.Bool("debug") {
		logger = logging.NewDebugLogger("centroidal-plan")
	}

	cfg := defaultScenario()
	if path := c.String("scenario"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(content, &cfg); err != nil {
			return errors.Wrapf(err, "parsing scenario %s", path)
		}
	}

	var contacts [planning.NumContacts]r3.Vector
	for i, p := range cfg.Contacts {
		contacts[i] = vec(p)
	}
	initial := dynamics.State{Pos: vec(cfg.Initial)}
	swings := make([]planning.SwingPhase, len(cfg.Swings))
	for i, sw := range cfg.Swings {
		swings[i] = planning.SwingPhase{Leg: sw.Leg, Target: vec(sw.Target), Lift: sw.Lift, Touch: sw.Touch}
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	var (
		sol *planning.Solution
		err error
	)
	start := time.Now()
	if c.Bool("gait") {
		var g *planning.Gait
		g, err = planning.NewGait(cfg.Mass, cfg.Knots, cfg.Dt, logger)
		if err != nil {
			return err
		}
		sol, err = g.Solve(ctx, &planning.GaitRequest{
			Initial:   initial,
			Contacts:  contacts,
			Swings:    swings,
			Clearance: cfg.Clearance,
			MinForce:  cfg.MinForce,
		})
	} else {
		if len(swings) != 1 {
			return errors.Errorf("the walking planner takes exactly one swing, got %d", len(swings))
		}
		var w *planning.Walking
		w, err = planning.NewWalking(cfg.Mass, cfg.Knots, cfg.Dt, logger)
		if err != nil {
			return err
		}
		sol, err = w.Solve(ctx, &planning.WalkingRequest{
			Initial:  initial,
			Contacts: contacts,
			Swing:    swings[0],
			MinForce: cfg.MinForce,
		})
	}
	if err != nil {
		return errors.Wrap(err, "planning failed")
	}
	logger.Infow("solve finished",
		"cost", sol.Cost,
		"evaluations", sol.Evaluations,
		"elapsed", time.Since(start).String(),
	)

	swingLegs := make([]trajectory.SwingLeg, len(swings))
	for i, sw := range swings {
		swingLegs[i] = trajectory.SwingLeg{
			Leg:     sw.Leg,
			Current: contacts[sw.Leg],
			Target:  sw.Target,
			Lift:    sw.Lift,
			Touch:   sw.Touch,
		}
	}
	trj, err := trajectory.Interpolate(&trajectory.Request{
		Solution:   sol,
		Swings:     swingLegs,
		Clearance:  cfg.Clearance,
		Resolution: cfg.Resolution,
	})
	if err != nil {
		return errors.Wrap(err, "interpolation failed")
	}

	final := trj.States[len(trj.States)-1]
	logger.Infow("trajectory densified",
		"samples", len(trj.Times),
		"final_com", final.Pos,
	)
	for _, sw := range trj.Swings {
		logger.Infow("swing path", "leg", sw.Leg, "arc_length", sw.ArcLength)
	}

	if dir := c.String("plot-dir"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		if err := report.SaveAll(trj, dir); err != nil {
			return err
		}
		logger.Infof("plots written to %s", dir)
	}
	return nil
}
