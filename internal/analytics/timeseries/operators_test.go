package timeseries

import (
	"math"
	"testing"
	"time"
)

func TestScenario_OneTwoThreeFour(t *testing.T) {
	s := New(day0, []float64{1, 2, 3, 4})

	assertValues(t, s.Deltas(1), []float64{1, 1, 1, 1})
	assertValues(t, s.MovingSum(2), []float64{1, 3, 5, 7})
	assertValues(t, s.CumulativeSum(), []float64{1, 3, 6, 10})
}

func TestDeltas_Offset(t *testing.T) {
	s := New(day0, []float64{1, 3, 6, 10})
	assertValues(t, s.Deltas(2), []float64{1, 3, 5, 7})
}

func TestDeltas_NaNDefault(t *testing.T) {
	s := New(day0, []float64{1, 3, 6}, WithDefault(math.NaN()))
	assertValues(t, s.Deltas(1), []float64{math.NaN(), 2, 3})
}

func TestDeltasOfCumulativeSum_Idempotent(t *testing.T) {
	inputs := [][]float64{
		{0, 1, 5, 2, 0, 7},
		{3},
		{10, 10, 10},
		{},
	}

	for _, values := range inputs {
		s := New(day0, values, AsInteger())
		got := s.CumulativeSum().Deltas(1)
		assertValues(t, got, values)
		if !got.Start().Equal(s.Start()) {
			t.Errorf("Expected start %v, got %v", s.Start(), got.Start())
		}
	}
}

func TestMovingAverage_Partial(t *testing.T) {
	s := New(day0, []float64{2, 4, 6, 8})
	assertValues(t, s.MovingAverage(2), []float64{2, 3, 5, 7})
}

func TestMovingAverage_Alignment(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i * i)
	}
	s := New(day0, values)

	for n := 1; n <= 25; n++ {
		ma := s.MovingAverage(n, ExcludePartial())
		wantLen := len(values) - n + 1
		if wantLen < 0 {
			wantLen = 0
		}
		if ma.Len() != wantLen {
			t.Errorf("n=%d: expected %d values, got %d", n, wantLen, ma.Len())
		}
		if !ma.Start().Equal(day0.AddDate(0, 0, n-1)) {
			t.Errorf("n=%d: expected start %v, got %v", n, day0.AddDate(0, 0, n-1), ma.Start())
		}
	}
}

func TestMovingAverage_NonZeroOnly(t *testing.T) {
	s := New(day0, []float64{0, 4, 0, 0, 0})
	got := s.MovingAverage(2, NonZeroOnly())
	assertValues(t, got, []float64{math.NaN(), 4, 4, math.NaN(), math.NaN()})
}

func TestMovingSum_ExcludePartial(t *testing.T) {
	s := New(day0, []float64{1, 2, 3, 4}, AsInteger())
	got := s.MovingSum(3, ExcludePartial())
	assertValues(t, got, []float64{6, 9})
	if !got.Start().Equal(day0.AddDate(0, 0, 2)) {
		t.Errorf("Expected start shifted by 2 days, got %v", got.Start())
	}
	if !got.IsInteger() {
		t.Error("Moving sum of an integer series should stay integer")
	}
}

func TestOperators_EmptySeries(t *testing.T) {
	s := Empty(day0)
	ops := map[string]*TimeSeries{
		"deltas":          s.Deltas(1),
		"moving average":  s.MovingAverage(7),
		"moving sum":      s.MovingSum(7, ExcludePartial()),
		"cumulative":      s.CumulativeSum(),
		"growth rate":     s.GrowthRate(0),
		"doubling time":   s.DoublingTime(),
		"coerce":          s.CoerceMonotonic(),
		"cumulative from": s.CumulativeSumSince(day0.AddDate(0, 0, 3)),
	}
	for name, got := range ops {
		if !got.IsEmpty() {
			t.Errorf("%s: expected empty result, got %v", name, got.Values())
		}
	}
}

func TestCumulativeSumSince(t *testing.T) {
	s := New(day0, []float64{5, 1, 2, 3})
	got := s.CumulativeSumSince(day0.AddDate(0, 0, 1))
	assertValues(t, got, []float64{1, 3, 6})
	if !got.Start().Equal(day0.AddDate(0, 0, 1)) {
		t.Errorf("Expected start on day 1, got %v", got.Start())
	}
}

func TestGrowthRate(t *testing.T) {
	s := New(day0, []float64{0, 2, 4, 4, 0})
	got := s.GrowthRate(0)
	// day 0: 0/0 (default), day 1: 2/0
	assertValues(t, got, []float64{math.NaN(), math.Inf(1), 2, 1, 0})

	lagged := New(day0, []float64{1, 2, 4, 8}).GrowthRate(1)
	assertValues(t, lagged, []float64{math.Inf(1), math.Inf(1), 4, 4})
}

func TestDoublingTime(t *testing.T) {
	s := New(day0, []float64{1, 2, 4, 4, 2})
	got := s.DoublingTime()

	if got.At(1) != 1 || got.At(2) != 1 {
		t.Errorf("Expected doubling every day, got %v", got.Values())
	}
	if !math.IsInf(got.At(3), 1) {
		t.Errorf("Flat growth should give +Inf doubling time, got %v", got.At(3))
	}
	if got.At(4) != -1 {
		t.Errorf("Halving should give -1, got %v", got.At(4))
	}
}

func TestCoerceMonotonic(t *testing.T) {
	s := New(day0, []float64{1, 3, 2, math.NaN(), 5, 4})
	assertValues(t, s.CoerceMonotonic(), []float64{1, 3, 3, 3, 5, 5})
}

func TestOperators_DoNotMutate(t *testing.T) {
	s := New(day0, []float64{1, 2, 3, 4})
	before := s.Values()

	_ = s.Deltas(1)
	_ = s.MovingAverage(2, ExcludePartial())
	_ = s.CumulativeSum()
	_ = s.CoerceMonotonic()
	_ = s.Add(New(day0, []float64{9}))

	assertValues(t, s, before)
	if !s.Start().Equal(day0) {
		t.Errorf("Start changed: %v", s.Start())
	}
}

func TestDoublingTime_KeepsStart(t *testing.T) {
	start := day0.Add(5 * time.Hour)
	s := New(start, []float64{1, 2})
	if !s.DoublingTime().Start().Equal(day0) {
		t.Errorf("Expected start truncated to %v", day0)
	}
}
