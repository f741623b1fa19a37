package fitter

import (
	"errors"
	"math"
	"testing"

	"github.com/soltixdb/curvecast/internal/analytics/growth"
)

func TestFindPeak_Logistic(t *testing.T) {
	p := growth.NewParams(growth.Logistic, 1000, 0.1, 50, 0)

	peak, err := FindPeak(p, day0, Bracket{})
	if err != nil {
		t.Fatalf("FindPeak failed: %v", err)
	}
	if math.Abs(peak.X-50) > 1e-4 {
		t.Errorf("Expected peak at x=50, got %v", peak.X)
	}
	// L*k/4
	if math.Abs(peak.Value-25) > 1e-4 {
		t.Errorf("Expected peak daily value 25, got %v", peak.Value)
	}
	if !peak.Date.Equal(day0.AddDate(0, 0, 50)) {
		t.Errorf("Expected peak date %v, got %v", day0.AddDate(0, 0, 50), peak.Date)
	}
}

func TestFindPeak_FractionalMidpoint(t *testing.T) {
	p := growth.NewParams(growth.Gaussian, 1000, 0.05, 72.3, 0)

	peak, err := FindPeak(p, day0, DefaultBracket)
	if err != nil {
		t.Fatalf("FindPeak failed: %v", err)
	}
	if math.Abs(peak.X-72.3) > 1e-4 {
		t.Errorf("Expected peak at x=72.3, got %v", peak.X)
	}
	if !peak.Date.Equal(day0.AddDate(0, 0, 72)) {
		t.Errorf("Expected peak date rounded to day 72, got %v", peak.Date)
	}
}

func TestFindPeak_Gompertz(t *testing.T) {
	// the Gompertz inflection is at x0
	p := growth.NewParams(growth.Gompertz, 5000, 0.08, 60, 0)

	peak, err := FindPeak(p, day0, DefaultBracket)
	if err != nil {
		t.Fatalf("FindPeak failed: %v", err)
	}
	if math.Abs(peak.X-60) > 1e-3 {
		t.Errorf("Expected peak at x=60, got %v", peak.X)
	}
}

func TestFindPeak_NotBracketed(t *testing.T) {
	tests := []struct {
		name    string
		params  growth.Params
		bracket Bracket
	}{
		{"peak beyond horizon", growth.NewParams(growth.Logistic, 1000, 0.1, 250, 0), DefaultBracket},
		{"peak before horizon", growth.NewParams(growth.Logistic, 1000, 0.1, 50, 0), Bracket{From: 100, To: 200}},
		{"accelerating curve", growth.NewParams(growth.Quadratic, 0, 1, 0, 0), DefaultBracket},
		{"constant growth", growth.NewParams(growth.Linear, 0, 1.5, 0, 0), DefaultBracket},
		{"bracket too narrow", growth.NewParams(growth.Logistic, 1000, 0.1, 50, 0), Bracket{From: 49.5, To: 50.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindPeak(tt.params, day0, tt.bracket)
			if !errors.Is(err, ErrPeakNotBracketed) {
				t.Errorf("Expected ErrPeakNotBracketed, got %v", err)
			}
		})
	}
}

func TestBrent(t *testing.T) {
	root, err := brent(func(x float64) float64 { return x*x - 2 }, 0, 2)
	if err != nil {
		t.Fatalf("brent failed: %v", err)
	}
	if math.Abs(root-math.Sqrt2) > 1e-8 {
		t.Errorf("Expected sqrt(2), got %v", root)
	}

	if _, err := brent(func(x float64) float64 { return x*x + 1 }, -1, 1); !errors.Is(err, ErrPeakNotBracketed) {
		t.Errorf("Expected ErrPeakNotBracketed without a sign change, got %v", err)
	}
}
