package planning

import (
	"context"
	"math"

	"github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/IoannisDadiotis/casannis-walking/logging"
)

const (
	solverMaxEval = 200000
	solverFtolRel = 1e-10
	equalityTol   = 1e-6
)

var errNoConverge = errors.New("solver did not converge to a feasible solution")

type solveReturn struct {
	vector []float64
	cost   float64
	err    error
}

// solve submits the assembled problem to SLSQP with a zero initial guess and
// decodes the returned vector. The optimizer runs on its own goroutine so the
// call can be force-stopped when ctx expires; a failed or cancelled solve
// never yields a partial trajectory.
func (s *structure) solve(ctx context.Context, inst *instance, logger logging.Logger) (*Solution, error) {
	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(s.numVars))
	if err != nil {
		return nil, errors.Wrap(err, "nlopt creation error")
	}
	defer opt.Destroy()

	evaluations := 0
	objective := func(x, gradient []float64) float64 {
		evaluations++
		return s.objective(x, gradient, inst.params)
	}
	equality := func(result, x, gradient []float64) {
		s.constraints(result, x, gradient, inst.params)
	}

	tol := make([]float64, s.numConstraints)
	for i := range tol {
		tol[i] = equalityTol
	}

	err = multierr.Combine(
		opt.SetLowerBounds(inst.lower),
		opt.SetUpperBounds(inst.upper),
		opt.SetMinObjective(objective),
		opt.AddEqualityMConstraint(equality, tol),
		opt.SetFtolRel(solverFtolRel),
		opt.SetMaxEval(solverMaxEval),
	)
	if err != nil {
		return nil, errors.Wrap(err, "nlopt setup error")
	}

	guess := make([]float64, s.numVars)
	solveChan := make(chan *solveReturn, 1)
	utils.PanicCapturingGo(func() {
		vector, cost, optErr := opt.Optimize(guess)
		solveChan <- &solveReturn{vector, cost, optErr}
	})

	var res *solveReturn
	select {
	case <-ctx.Done():
		stopErr := opt.ForceStop()
		// Wait for the optimizer goroutine to unwind before returning.
		<-solveChan
		return nil, multierr.Combine(ctx.Err(), stopErr)
	case res = <-solveChan:
	}

	if res.err != nil {
		return nil, errors.Wrap(multierr.Combine(res.err, errNoConverge), "solver failure")
	}
	if res.vector == nil || math.IsNaN(res.cost) {
		return nil, errNoConverge
	}

	logger.Debugw("solve finished", "cost", res.cost, "evaluations", evaluations)
	return s.decode(res.vector, res.cost, evaluations), nil
}
