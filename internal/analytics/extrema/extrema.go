// Package extrema finds the significant local minima and maxima of a series
// for trend narration. Detected extrema always alternate in kind.
package extrema

import (
	"math"
	"sort"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
)

// Kind tags an extremum
type Kind string

const (
	LocalMin Kind = "local_min"
	LocalMax Kind = "local_max"
	Endpoint Kind = "endpoint" // first or last point of the series
)

// DefaultSampleWindow is used when Find is given a window below 1
const DefaultSampleWindow = 7

// kernelRadius is the reach of the smoothing kernel
const kernelRadius = 10

// Record is one extremum with its raw (unsmoothed) value
type Record struct {
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	Kind      Kind      `json:"kind"`
	Synthetic bool      `json:"synthetic,omitempty"` // inserted to keep kinds alternating
}

// Summary is a date-ordered list of extrema
type Summary []Record

// Lookup returns the record on date, if any
func (s Summary) Lookup(date time.Time) (Record, bool) {
	i := sort.Search(len(s), func(i int) bool { return !s[i].Date.Before(date) })
	if i < len(s) && s[i].Date.Equal(date) {
		return s[i], true
	}
	return Record{}, false
}

// Dates returns the record dates in order
func (s Summary) Dates() []time.Time {
	dates := make([]time.Time, len(s))
	for i, r := range s {
		dates[i] = r.Date
	}
	return dates
}

// candidate is an extremum by index before dates are attached
type candidate struct {
	index     int
	kind      Kind
	synthetic bool
}

// Find returns the endpoints of series plus its alternating local extrema.
// Candidates are detected on a lightly smoothed copy of the values; consecutive
// same-kind candidates closer than sampleWindow collapse to the more extreme
// one, and farther apart an opposite-kind extremum is inserted between them.
func Find(series *timeseries.TimeSeries, sampleWindow int) Summary {
	if series == nil || series.IsEmpty() {
		return Summary{}
	}
	if sampleWindow < 1 {
		sampleWindow = DefaultSampleWindow
	}

	raw := series.Values()
	n := len(raw)
	if n == 1 {
		return Summary{{Date: series.Start(), Value: raw[0], Kind: Endpoint}}
	}

	smoothed := smooth(raw)
	found := alternate(detect(raw, smoothed, sampleWindow), raw, sampleWindow)

	out := make(Summary, 0, len(found)+2)
	out = append(out, Record{Date: series.DateAt(0), Value: raw[0], Kind: Endpoint})
	for _, c := range found {
		if c.index == 0 || c.index == n-1 {
			continue
		}
		out = append(out, Record{
			Date:      series.DateAt(c.index),
			Value:     raw[c.index],
			Kind:      c.kind,
			Synthetic: c.synthetic,
		})
	}
	out = append(out, Record{Date: series.DateAt(n - 1), Value: raw[n-1], Kind: Endpoint})
	return out
}

// kernelWeight is 1 at the centre and max(0, 0.01 - 0.001|o|) elsewhere
func kernelWeight(offset int) float64 {
	if offset == 0 {
		return 1
	}
	o := math.Abs(float64(offset))
	return math.Max(0, 0.01-0.001*o)
}

// smooth convolves values with the normalised kernel, skipping NaN and
// clamping at the series bounds.
func smooth(values []float64) []float64 {
	out := make([]float64, len(values))
	for t := range values {
		sum, weight := 0.0, 0.0
		for o := -kernelRadius; o <= kernelRadius; o++ {
			u := t + o
			if u < 0 || u >= len(values) || math.IsNaN(values[u]) {
				continue
			}
			w := kernelWeight(o)
			sum += w * values[u]
			weight += w
		}
		if weight == 0 {
			out[t] = math.NaN()
			continue
		}
		out[t] = sum / weight
	}
	return out
}

// detect marks t as a minimum (maximum) when smoothed[t] is no greater (no
// smaller) than every finite smoothed value within window of t. Points that
// qualify as both sit in a flat neighbourhood and are skipped.
func detect(raw, smoothed []float64, window int) []candidate {
	var out []candidate
	for t, v := range smoothed {
		if math.IsNaN(v) || math.IsNaN(raw[t]) {
			continue
		}
		isMin, isMax := true, true
		lo, hi := max(0, t-window), min(len(smoothed)-1, t+window)
		for u := lo; u <= hi && (isMin || isMax); u++ {
			w := smoothed[u]
			if math.IsNaN(w) || nearlyEqual(v, w) {
				continue
			}
			if v > w {
				isMin = false
			}
			if v < w {
				isMax = false
			}
		}
		switch {
		case isMin && isMax:
		case isMin:
			out = append(out, candidate{index: t, kind: LocalMin})
		case isMax:
			out = append(out, candidate{index: t, kind: LocalMax})
		}
	}
	return out
}

// nearlyEqual absorbs the rounding left by the kernel normalisation, so a flat
// stretch stays flat.
func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-12*math.Max(math.Abs(a), math.Abs(b))
}

// alternate enforces kind alternation over index-ordered candidates.
func alternate(cands []candidate, raw []float64, window int) []candidate {
	out := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if len(out) == 0 || out[len(out)-1].kind != c.kind {
			out = append(out, c)
			continue
		}

		last := out[len(out)-1]
		if c.index-last.index > window {
			if between, ok := argExtreme(raw, last.index+1, c.index, opposite(c.kind)); ok {
				out = append(out, candidate{index: between, kind: opposite(c.kind), synthetic: true}, c)
				continue
			}
		}
		if moreExtreme(c.kind, raw[c.index], raw[last.index]) {
			out[len(out)-1] = c
		}
	}
	return out
}

func opposite(k Kind) Kind {
	if k == LocalMin {
		return LocalMax
	}
	return LocalMin
}

func moreExtreme(k Kind, v, than float64) bool {
	if k == LocalMin {
		return v < than
	}
	return v > than
}

// argExtreme returns the index in [from, to) of the largest (LocalMax) or
// smallest (LocalMin) finite raw value.
func argExtreme(raw []float64, from, to int, k Kind) (int, bool) {
	best := -1
	for i := from; i < to; i++ {
		if math.IsNaN(raw[i]) {
			continue
		}
		if best < 0 || moreExtreme(k, raw[i], raw[best]) {
			best = i
		}
	}
	return best, best >= 0
}
