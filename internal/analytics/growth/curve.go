package growth

import (
	"math"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
)

// Curve anchors a parameterised growth curve to the calendar: x counts days
// since DayZero.
type Curve struct {
	Params  Params
	DayZero time.Time
}

// NewCurve creates a curve anchored at dayZero
func NewCurve(p Params, dayZero time.Time) Curve {
	return Curve{Params: p, DayZero: analytics.Day(dayZero)}
}

// X converts a calendar date to the curve's x coordinate
func (c Curve) X(date time.Time) float64 {
	return float64(analytics.DaysBetween(c.DayZero, date))
}

// Date converts an x coordinate to the nearest calendar day
func (c Curve) Date(x float64) time.Time {
	return analytics.AddDays(c.DayZero, int(math.Round(x)))
}

// Total returns the cumulative value predicted for date
func (c Curve) Total(date time.Time) float64 {
	return Evaluate(c.Params, c.X(date))
}

// Daily returns the predicted increase on date, f(x) - f(x-1), matching how
// first differences are taken on observed series.
func (c Curve) Daily(date time.Time) float64 {
	x := c.X(date)
	return Evaluate(c.Params, x) - Evaluate(c.Params, x-1)
}

// Lookup reports the cumulative prediction; a curve is defined on every date.
func (c Curve) Lookup(date time.Time) (float64, bool) {
	return c.Total(date), true
}

// DailyLookup adapts the curve's daily predictions to a Lookup-style source.
func (c Curve) DailyLookup() DailyCurve {
	return DailyCurve{c}
}

// DailyCurve exposes a curve's daily increments through Lookup
type DailyCurve struct {
	Curve Curve
}

// Lookup reports the daily prediction for date
func (d DailyCurve) Lookup(date time.Time) (float64, bool) {
	return d.Curve.Daily(date), true
}

// Project renders the curve over [from, to] as a series, cumulative or daily.
func (c Curve) Project(from, to time.Time, daily bool) *timeseries.TimeSeries {
	from, to = analytics.Day(from), analytics.Day(to)
	n := analytics.DaysBetween(from, to) + 1
	if n < 0 {
		n = 0
	}
	values := make([]float64, n)
	for i := range values {
		d := analytics.AddDays(from, i)
		if daily {
			values[i] = c.Daily(d)
		} else {
			values[i] = c.Total(d)
		}
	}
	return timeseries.New(from, values)
}
