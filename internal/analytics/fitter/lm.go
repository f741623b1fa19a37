package fitter

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/soltixdb/curvecast/internal/analytics/growth"
)

const (
	// jacobianStep is the half-width of the parameter perturbation
	jacobianStep = 0.0005

	initialDamping = 1e-3
	minDamping     = 1e-12
	maxDamping     = 1e16

	// minCurvature keeps the damping term positive for parameters the data
	// cannot see at the current iterate.
	minCurvature = 1e-12
)

type solution struct {
	params      growth.Params
	cost        float64
	iterations  int
	evaluations int
}

// lmState tracks one optimizer run
type lmState struct {
	kind        growth.CurveKind
	template    growth.Params
	obs         observations
	model       func(p growth.Params, x float64) float64
	opts        Options
	evaluations int
}

func (s *lmState) params(vec []float64) growth.Params {
	return s.template.FromVector(vec)
}

// residuals returns y - f(x) for every observation and counts one evaluation.
func (s *lmState) residuals(vec []float64) []float64 {
	s.evaluations++
	p := s.params(vec)
	r := make([]float64, len(s.obs.x))
	for i, x := range s.obs.x {
		r[i] = s.obs.y[i] - s.model(p, x)
	}
	return r
}

func sumSquares(r []float64) float64 {
	sum := 0.0
	for _, v := range r {
		sum += v * v
	}
	return sum
}

// jacobian returns d f / d p by symmetric difference, one column per active
// parameter.
func (s *lmState) jacobian(vec []float64) *mat.Dense {
	n, m := len(s.obs.x), len(vec)
	jac := mat.NewDense(n, m, nil)
	probe := append([]float64(nil), vec...)
	for j := 0; j < m; j++ {
		probe[j] = vec[j] + jacobianStep
		up := s.params(probe)
		probe[j] = vec[j] - jacobianStep
		down := s.params(probe)
		probe[j] = vec[j]
		s.evaluations += 2
		for i, x := range s.obs.x {
			jac.Set(i, j, (s.model(up, x)-s.model(down, x))/(2*jacobianStep))
		}
	}
	return jac
}

func (s *lmState) exhausted() bool {
	return s.evaluations > s.opts.MaxEvaluations
}

// levenbergMarquardt minimises the sum of squared residuals over the active
// parameters of guess. Every candidate is clamped by the validator before it is
// evaluated.
func levenbergMarquardt(guess growth.Params, obs observations, model func(growth.Params, float64) float64, opts Options) (*solution, error) {
	s := &lmState{
		kind:     guess.Kind,
		template: guess,
		obs:      obs,
		model:    model,
		opts:     opts,
	}

	vec := validateVector(s.kind, guess.Vector())
	r := s.residuals(vec)
	cost := sumSquares(r)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return nil, fmt.Errorf("fit: initial guess gives non-finite cost: %w", ErrNonConvergence)
	}

	lambda := initialDamping
	m := len(vec)
	// moved records whether any step was accepted
	moved := false
	stalled := func(iter int) (*solution, error) {
		if !moved && cost > opts.Tolerance*s.scale() {
			return nil, fmt.Errorf("fit: no step improves the initial guess: %w", ErrNonConvergence)
		}
		return s.done(vec, cost, iter), nil
	}

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		if cost == 0 {
			return s.done(vec, cost, iter-1), nil
		}

		jac := s.jacobian(vec)
		if mat.Norm(jac, 1) == 0 {
			return nil, fmt.Errorf("fit: curve is flat over the observations at iteration %d: %w", iter, ErrNonConvergence)
		}
		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		jtr := mat.NewVecDense(m, nil)
		jtr.MulVec(jac.T(), mat.NewVecDense(len(r), r))

		accepted := false
		for !accepted {
			if lambda > maxDamping {
				return stalled(iter)
			}
			if s.exhausted() {
				return nil, fmt.Errorf("fit: %d evaluations without convergence: %w", s.evaluations, ErrNonConvergence)
			}

			step, ok := solveDamped(&jtj, jtr, lambda)
			if !ok {
				lambda *= 10
				continue
			}

			cand := make([]float64, m)
			for j := range cand {
				cand[j] = vec[j] + step[j]
			}
			cand = validateVector(s.kind, cand)

			if sameVector(cand, vec) {
				// the validator absorbed the whole step
				return stalled(iter)
			}

			candR := s.residuals(cand)
			candCost := sumSquares(candR)
			if math.IsNaN(candCost) || candCost >= cost {
				lambda *= 10
				continue
			}

			converged := (cost-candCost) <= opts.Tolerance*cost &&
				relativeChange(vec, cand) <= opts.Tolerance
			vec, r, cost = cand, candR, candCost
			lambda = math.Max(lambda/10, minDamping)
			accepted = true
			moved = true

			if converged {
				return s.done(vec, cost, iter), nil
			}
		}
	}

	return nil, fmt.Errorf("fit: %d iterations without convergence: %w", opts.MaxIterations, ErrNonConvergence)
}

// scale is the sum of squared observations, the cost of a zero curve
func (s *lmState) scale() float64 {
	return math.Max(sumSquares(s.obs.y), 1)
}

func (s *lmState) done(vec []float64, cost float64, iterations int) *solution {
	return &solution{
		params:      s.params(vec),
		cost:        cost,
		iterations:  iterations,
		evaluations: s.evaluations,
	}
}

// solveDamped solves (JtJ + lambda*diag(JtJ)) step = Jtr.
func solveDamped(jtj *mat.Dense, jtr *mat.VecDense, lambda float64) ([]float64, bool) {
	m, _ := jtj.Dims()
	a := mat.DenseCopyOf(jtj)
	for j := 0; j < m; j++ {
		d := math.Max(jtj.At(j, j), minCurvature)
		a.Set(j, j, jtj.At(j, j)+lambda*d)
	}

	var step mat.VecDense
	if err := step.SolveVec(a, jtr); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, false
		}
	}

	out := make([]float64, m)
	for j := range out {
		v := step.AtVec(j)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		out[j] = v
	}
	return out, true
}

func sameVector(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// relativeChange is the largest per-parameter change relative to the old value.
func relativeChange(from, to []float64) float64 {
	worst := 0.0
	for i := range from {
		scale := math.Max(math.Abs(from[i]), 1e-12)
		worst = math.Max(worst, math.Abs(to[i]-from[i])/scale)
	}
	return worst
}
