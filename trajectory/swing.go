package trajectory

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/IoannisDadiotis/casannis-walking/spline"
)

const (
	// apexAccel is the vertical acceleration imposed at the triangle apex
	// to shape the peak of the arc.
	apexAccel = -0.2

	// apexVelGain scales the horizontal pass-through velocity at the apex
	// relative to the mean horizontal velocity over the window.
	apexVelGain = 3.0

	// bumpCenter, bumpWidth and bumpWeight parameterize the Gaussian bell
	// superimposed by the GaussianBump method.
	bumpCenter = 0.48
	bumpWidth  = 0.14
	bumpWeight = 0.16
)

type axisSegments struct {
	first  spline.Quintic
	second spline.Quintic
}

// triangleSwing builds the two-segment swing arc: current to apex, apex to
// target, with rest boundaries at the ends, a horizontal pass-through
// velocity at the apex and a fixed downward acceleration shaping the peak.
// Outside [Lift, Touch] the foot holds its boundary position.
func triangleSwing(sw SwingLeg, clearance float64, times []float64) (SwingPath, error) {
	apex := r3.Vector{
		X: 0.5 * (sw.Current.X + sw.Target.X),
		Y: 0.5 * (sw.Current.Y + sw.Target.Y),
		Z: math.Max(sw.Current.Z, sw.Target.Z) + clearance,
	}
	mid := 0.5 * (sw.Lift + sw.Touch)

	velX := apexVelGain * (sw.Target.X - sw.Current.X) / (sw.Touch - sw.Lift)
	velY := apexVelGain * (sw.Target.Y - sw.Current.Y) / (sw.Touch - sw.Lift)

	fitAxis := func(cur, apexPos, tgt float64, apexVel, apexAcc float64) (axisSegments, error) {
		first, err := spline.Fit(sw.Lift, mid,
			spline.Boundary{Pos: cur},
			spline.Boundary{Pos: apexPos, Vel: apexVel, Acc: apexAcc})
		if err != nil {
			return axisSegments{}, err
		}
		second, err := spline.Fit(mid, sw.Touch,
			spline.Boundary{Pos: apexPos, Vel: apexVel, Acc: apexAcc},
			spline.Boundary{Pos: tgt})
		if err != nil {
			return axisSegments{}, err
		}
		return axisSegments{first, second}, nil
	}

	segX, err := fitAxis(sw.Current.X, apex.X, sw.Target.X, velX, 0)
	if err != nil {
		return SwingPath{}, err
	}
	segY, err := fitAxis(sw.Current.Y, apex.Y, sw.Target.Y, velY, 0)
	if err != nil {
		return SwingPath{}, err
	}
	segZ, err := fitAxis(sw.Current.Z, apex.Z, sw.Target.Z, 0, apexAccel)
	if err != nil {
		return SwingPath{}, err
	}

	points := make([]r3.Vector, len(times))
	for i, t := range times {
		switch {
		case t < sw.Lift:
			points[i] = sw.Current
		case t > sw.Touch:
			points[i] = sw.Target
		case t <= mid:
			points[i] = r3.Vector{X: segX.first.At(t), Y: segY.first.At(t), Z: segZ.first.At(t)}
		default:
			points[i] = r3.Vector{X: segX.second.At(t), Y: segY.second.At(t), Z: segZ.second.At(t)}
		}
	}

	return SwingPath{Leg: sw.Leg, Points: points, ArcLength: arcLength(points)}, nil
}

// gaussianSwing fits a single rest-to-rest quintic per axis over the window
// and adds a Gaussian bell to the z component for clearance. The bell is
// evaluated over the whole output grid, as in the reference profile, so a
// small residue remains near the window edges.
func gaussianSwing(sw SwingLeg, times []float64) (SwingPath, error) {
	fitAxis := func(cur, tgt float64) (spline.Quintic, error) {
		return spline.Fit(sw.Lift, sw.Touch, spline.Boundary{Pos: cur}, spline.Boundary{Pos: tgt})
	}
	qx, err := fitAxis(sw.Current.X, sw.Target.X)
	if err != nil {
		return SwingPath{}, err
	}
	qy, err := fitAxis(sw.Current.Y, sw.Target.Y)
	if err != nil {
		return SwingPath{}, err
	}
	qz, err := fitAxis(sw.Current.Z, sw.Target.Z)
	if err != nil {
		return SwingPath{}, err
	}

	bell := distuv.Normal{
		Mu:    bumpCenter * (sw.Lift + sw.Touch),
		Sigma: bumpWidth * (sw.Touch - sw.Lift),
	}

	points := make([]r3.Vector, len(times))
	for i, t := range times {
		var p r3.Vector
		switch {
		case t < sw.Lift:
			p = sw.Current
		case t > sw.Touch:
			p = sw.Target
		default:
			p = r3.Vector{X: qx.At(t), Y: qy.At(t), Z: qz.At(t)}
		}
		p.Z += bumpWeight * bell.Prob(t)
		points[i] = p
	}

	return SwingPath{Leg: sw.Leg, Points: points, ArcLength: arcLength(points)}, nil
}

func arcLength(points []r3.Vector) float64 {
	length := 0.0
	for i := 1; i < len(points); i++ {
		length += points[i].Sub(points[i-1]).Norm()
	}
	return length
}
