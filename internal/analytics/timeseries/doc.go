// Package timeseries provides the date-indexed daily series used throughout the
// engine and the algebra of derived-series operators over it.
//
// A TimeSeries holds one value per calendar day starting at Start, with no gaps.
// Reads outside the stored range resolve to the series' default value. Series
// are values: every operator returns a new series and never mutates its
// receiver, so a series may be shared between goroutines without locking.
//
// Floating-point edge cases are not trapped. Division by zero in GrowthRate and
// logarithms of non-positive ratios in DoublingTime surface as NaN or ±Inf and
// are left for the caller to filter.
//
// Example:
//
//	s := timeseries.New(analytics.Date(2020, 3, 1), []float64{1, 2, 3, 4})
//	daily := s.Deltas(1)                    // [1 1 1 1]
//	smooth := daily.MovingAverage(7)        // partial windows included
//	total := daily.CumulativeSum()          // [1 3 6 10]
package timeseries
