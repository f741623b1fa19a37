package fitter

import (
	"math"

	"github.com/soltixdb/curvecast/internal/analytics/growth"
)

// Bounds is a closed parameter range
type Bounds struct {
	Min float64
	Max float64
}

// Clamp limits v to the range. NaN maps to the lower bound.
func (b Bounds) Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return b.Min
	case v < b.Min:
		return b.Min
	case v > b.Max:
		return b.Max
	}
	return v
}

var (
	capacityBounds  = Bounds{Min: 10, Max: 1e7}
	steepnessBounds = Bounds{Min: 0.03, Max: 0.25}
	midpointBounds  = Bounds{Min: 10, Max: 200}
	shapeBounds     = Bounds{Min: 0.01, Max: 100}

	degenerateSteepnessBounds = Bounds{Min: 0, Max: 2}
	degenerateMidpointBounds  = Bounds{Min: -100, Max: 100}
)

// ParamBounds returns the admissible range of one parameter for a curve kind.
func ParamBounds(kind growth.CurveKind, p growth.Param) Bounds {
	switch p {
	case growth.ParamL:
		return capacityBounds
	case growth.ParamK:
		if kind.Degenerate() {
			return degenerateSteepnessBounds
		}
		return steepnessBounds
	case growth.ParamX0:
		if kind.Degenerate() {
			return degenerateMidpointBounds
		}
		return midpointBounds
	default:
		return shapeBounds
	}
}

// Validate clamps every active parameter of p into its admissible range. It is
// applied to the initial guess and to every candidate the optimizer proposes.
func Validate(p growth.Params) growth.Params {
	p = p.Normalize()
	for _, idx := range p.Kind.ActiveParams() {
		p = p.With(idx, ParamBounds(p.Kind, idx).Clamp(p.Get(idx)))
	}
	return p
}

// validateVector is Validate over a packed active-parameter vector.
func validateVector(kind growth.CurveKind, vec []float64) []float64 {
	out := make([]float64, len(vec))
	for i, idx := range kind.ActiveParams() {
		out[i] = ParamBounds(kind, idx).Clamp(vec[i])
	}
	return out
}
