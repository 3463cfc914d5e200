// Package report renders interpolated trajectories to image files. It
// consumes only the trajectory value and never reaches into planner state.
package report

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/IoannisDadiotis/casannis-walking/trajectory"
)

var footLabels = []string{"front left", "front right", "hind left", "hind right"}

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// SaveAll writes the CoM, force and swing plots for a trajectory into dir.
func SaveAll(trj *trajectory.Trajectory, dir string) error {
	if err := SaveCoMPlots(trj, dir); err != nil {
		return err
	}
	if err := SaveForcePlots(trj, dir); err != nil {
		return err
	}
	return SaveSwingPlots(trj, dir)
}

// SaveCoMPlots writes position, velocity and acceleration plots of the CoM.
func SaveCoMPlots(trj *trajectory.Trajectory, dir string) error {
	components := []struct {
		name   string
		sample func(i int) (x, y, z float64)
	}{
		{"com_position", func(i int) (float64, float64, float64) {
			p := trj.States[i].Pos
			return p.X, p.Y, p.Z
		}},
		{"com_velocity", func(i int) (float64, float64, float64) {
			v := trj.States[i].Vel
			return v.X, v.Y, v.Z
		}},
		{"com_acceleration", func(i int) (float64, float64, float64) {
			a := trj.States[i].Acc
			return a.X, a.Y, a.Z
		}},
	}

	for _, comp := range components {
		p := plot.New()
		p.Title.Text = comp.name
		p.X.Label.Text = "time [s]"

		xs := make(plotter.XYs, len(trj.Times))
		ys := make(plotter.XYs, len(trj.Times))
		zs := make(plotter.XYs, len(trj.Times))
		for i, t := range trj.Times {
			x, y, z := comp.sample(i)
			xs[i] = plotter.XY{X: t, Y: x}
			ys[i] = plotter.XY{X: t, Y: y}
			zs[i] = plotter.XY{X: t, Y: z}
		}
		if err := addLines(p, map[string]plotter.XYs{"x": xs, "y": ys, "z": zs}); err != nil {
			return err
		}
		if err := p.Save(plotWidth, plotHeight, filepath.Join(dir, comp.name+".png")); err != nil {
			return errors.Wrapf(err, "saving %s", comp.name)
		}
	}
	return nil
}

// SaveForcePlots writes one reaction force plot per foot.
func SaveForcePlots(trj *trajectory.Trajectory, dir string) error {
	for c, label := range footLabels {
		p := plot.New()
		p.Title.Text = label + " reaction force"
		p.X.Label.Text = "time [s]"
		p.Y.Label.Text = "force [N]"

		xs := make(plotter.XYs, len(trj.Times))
		ys := make(plotter.XYs, len(trj.Times))
		zs := make(plotter.XYs, len(trj.Times))
		for i, t := range trj.Times {
			f := trj.Forces[i][c]
			xs[i] = plotter.XY{X: t, Y: f.X}
			ys[i] = plotter.XY{X: t, Y: f.Y}
			zs[i] = plotter.XY{X: t, Y: f.Z}
		}
		if err := addLines(p, map[string]plotter.XYs{"fx": xs, "fy": ys, "fz": zs}); err != nil {
			return err
		}
		name := fmt.Sprintf("forces_%d.png", c)
		if err := p.Save(plotWidth, plotHeight, filepath.Join(dir, name)); err != nil {
			return errors.Wrapf(err, "saving %s", name)
		}
	}
	return nil
}

// SaveSwingPlots writes the x-z profile of each swing foot path.
func SaveSwingPlots(trj *trajectory.Trajectory, dir string) error {
	for _, sw := range trj.Swings {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("swing leg %d", sw.Leg)
		p.X.Label.Text = "x [m]"
		p.Y.Label.Text = "z [m]"

		xz := make(plotter.XYs, len(sw.Points))
		for i, pt := range sw.Points {
			xz[i] = plotter.XY{X: pt.X, Y: pt.Z}
		}
		line, err := plotter.NewLine(xz)
		if err != nil {
			return errors.Wrap(err, "swing line")
		}
		p.Add(line)

		name := fmt.Sprintf("swing_%d_xz.png", sw.Leg)
		if err := p.Save(plotWidth, plotHeight, filepath.Join(dir, name)); err != nil {
			return errors.Wrapf(err, "saving %s", name)
		}
	}
	return nil
}

func plotColor(name string) color.RGBA {
	switch name {
	case "x", "fx":
		return color.RGBA{R: 196, A: 255}
	case "y", "fy":
		return color.RGBA{G: 128, A: 255}
	default:
		return color.RGBA{B: 196, A: 255}
	}
}

func addLines(p *plot.Plot, series map[string]plotter.XYs) error {
	for _, name := range []string{"x", "y", "z", "fx", "fy", "fz"} {
		xys, ok := series[name]
		if !ok {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return errors.Wrapf(err, "line %s", name)
		}
		line.Color = plotColor(name)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	return nil
}
