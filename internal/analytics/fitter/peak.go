package fitter

import (
	"fmt"
	"math"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/growth"
)

// Bracket is the search range of the peak locator, in days since day zero
type Bracket struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// DefaultBracket covers the first 200 days
var DefaultBracket = Bracket{From: 0, To: 200}

// Peak is the day on which the curve grows fastest
type Peak struct {
	Date  time.Time `json:"date"`
	X     float64   `json:"x"`
	Value float64   `json:"value"` // daily growth at X
}

const (
	brentTolerance     = 1e-9
	brentMaxIterations = 100
	machineEpsilon     = 2.220446049250313e-16
	flatTolerance      = 1e-9
)

// FindPeak locates the maximum of the curve's first derivative inside bracket.
// A coarse scan over whole days picks the best day m, then the zero crossing of
// the second derivative is refined on [m-1, m+1]. A maximum on the bracket
// boundary is reported as ErrPeakNotBracketed.
func FindPeak(p growth.Params, dayZero time.Time, bracket Bracket) (*Peak, error) {
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("peak: invalid curve kind %d", int(p.Kind))
	}
	if bracket.From == 0 && bracket.To == 0 {
		bracket = DefaultBracket
	}

	first, last := math.Ceil(bracket.From), math.Floor(bracket.To)
	if last-first < 2 {
		return nil, fmt.Errorf("peak: bracket [%g, %g] too narrow: %w", bracket.From, bracket.To, ErrPeakNotBracketed)
	}

	best, bestRate := first, math.Inf(-1)
	for x := first; x <= last; x++ {
		rate := growth.Derivative(p, x)
		if rate > bestRate {
			best, bestRate = x, rate
		}
	}
	if best == first || best == last || math.IsInf(bestRate, -1) {
		return nil, fmt.Errorf("peak: coarse maximum at day %g lies on the bracket boundary: %w", best, ErrPeakNotBracketed)
	}
	// a constant growth rate has no peak, only rounding noise
	edge := math.Max(growth.Derivative(p, first), growth.Derivative(p, last))
	if bestRate-edge <= flatTolerance*math.Abs(bestRate) {
		return nil, fmt.Errorf("peak: growth rate is flat over [%g, %g]: %w", first, last, ErrPeakNotBracketed)
	}

	curvature := func(x float64) float64 { return growth.SecondDerivative(p, x) }
	x, err := brent(curvature, best-1, best+1)
	if err != nil {
		return nil, fmt.Errorf("peak: near day %g: %w", best, err)
	}

	dayZero = analytics.Day(dayZero)
	return &Peak{
		Date:  analytics.AddDays(dayZero, int(math.Round(x))),
		X:     x,
		Value: growth.Derivative(p, x),
	}, nil
}

// brent finds a root of f in [a, b] with Brent's method. f(a) and f(b) must
// differ in sign.
func brent(f func(float64) float64, a, b float64) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if math.IsNaN(fa) || math.IsNaN(fb) || (fa > 0) == (fb > 0) {
		return 0, fmt.Errorf("no sign change in [%g, %g]: %w", a, b, ErrPeakNotBracketed)
	}

	c, fc := a, fa
	d := b - a
	e := d

	for i := 0; i < brentMaxIterations; i++ {
		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol := 2*machineEpsilon*math.Abs(b) + 0.5*brentTolerance
		mid := 0.5 * (c - b)
		if math.Abs(mid) <= tol || fb == 0 {
			return b, nil
		}

		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			// inverse quadratic interpolation, or secant when only two points differ
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * mid * s
				q = 1 - s
			} else {
				qa := fa / fc
				r := fb / fc
				p = s * (2*mid*qa*(qa-r) - (b-a)*(r-1))
				q = (qa - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*mid*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = mid
				e = d
			}
		} else {
			d = mid
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else if mid > 0 {
			b += tol
		} else {
			b -= tol
		}
		fb = f(b)
	}
	return b, nil
}
