package runner

import (
	"context"
	"fmt"

	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/metrics"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// Parameter is one axis of the search grid.
type Parameter struct {
	Name   string
	Values []fixed.Point
}

// Params is one point of the grid, keyed by parameter name.
type Params map[string]fixed.Point

// Objective scores a finished run; higher is better.
type Objective func(report metrics.Report) fixed.Point

// Evaluation is one scored grid point.
type Evaluation struct {
	Params  Params
	Report  metrics.Report
	Score   fixed.Point
	Outcome Outcome
}

// Optimizer sweeps a parameter grid, running one simulation per grid point
// and ranking them by the objective. Ties keep the earliest grid point, so
// results do not depend on scheduling.
type Optimizer struct {
	runner         *Runner
	objective      Objective
	periodsPerYear int
}

func NewOptimizer(runner *Runner, objective Objective, periodsPerYear int) *Optimizer {
	return &Optimizer{
		runner:         runner,
		objective:      objective,
		periodsPerYear: periodsPerYear,
	}
}

// Optimize expands the grid, builds a job per point via the factory and
// returns every evaluation with the best one first in the second return.
func (o *Optimizer) Optimize(ctx context.Context, candles []market.Candle, grid []Parameter, build func(params Params) Job) ([]Evaluation, *Evaluation, error) {

	points := expand(grid)
	if len(points) == 0 {
		return nil, nil, fmt.Errorf("empty parameter grid")
	}

	jobs := make([]Job, len(points))
	for i, p := range points {
		jobs[i] = build(p)
		if jobs[i].Name == "" {
			jobs[i].Name = fmt.Sprintf("grid-%d", i)
		}
	}

	outcomes, err := o.runner.Run(ctx, candles, jobs)
	if err != nil {
		return nil, nil, err
	}

	evaluations := make([]Evaluation, 0, len(outcomes))
	bestIdx := -1
	for i, outcome := range outcomes {
		if outcome.Err != nil || outcome.Result == nil {
			continue
		}
		report := metrics.Compute(outcome.Result, o.periodsPerYear)
		evaluation := Evaluation{
			Params:  points[i],
			Report:  report,
			Score:   o.objective(report),
			Outcome: outcome,
		}
		evaluations = append(evaluations, evaluation)
		if bestIdx == -1 || evaluation.Score.Gt(evaluations[bestIdx].Score) {
			bestIdx = len(evaluations) - 1
		}
	}

	if bestIdx == -1 {
		return evaluations, nil, fmt.Errorf("no grid point produced a result")
	}
	return evaluations, &evaluations[bestIdx], nil
}

// expand builds the cartesian product of the grid axes, first axis varying
// slowest.
func expand(grid []Parameter) []Params {
	points := []Params{{}}
	for _, parameter := range grid {
		if len(parameter.Values) == 0 {
			return nil
		}
		next := make([]Params, 0, len(points)*len(parameter.Values))
		for _, point := range points {
			for _, value := range parameter.Values {
				extended := make(Params, len(point)+1)
				for k, v := range point {
					extended[k] = v
				}
				extended[parameter.Name] = value
				next = append(next, extended)
			}
		}
		points = next
	}
	return points
}
